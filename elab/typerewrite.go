package elab

import (
	"github.com/cottand/strata/ast"
)

// RewriteType replaces every heap-class occurrence in t with the HeapRef
// sort, recursing through type arguments, tuples, maps, sets and function
// types. Positions are preserved. The rewrite is idempotent: HeapRef is a
// sort, so a second application finds nothing left to replace.
func (x *Elaborator) RewriteType(t ast.Type) ast.Type {
	return ast.TransformType(t, func(t ast.Type) ast.Type {
		if classType, ok := t.(*ast.ClassType); ok && x.isHeapClass(classType.Id) {
			return &ast.SortType{Range: classType.Range, Id: ast.HeapRefID}
		}
		return t
	})
}

func (x *Elaborator) rewriteTypes(types []ast.Type) []ast.Type {
	if types == nil {
		return nil
	}
	rewritten := make([]ast.Type, len(types))
	for i, t := range types {
		rewritten[i] = x.RewriteType(t)
	}
	return rewritten
}

// classValueType is the type of the class value stored in a heap cell:
// the class itself with rewritten type arguments. It deliberately does not
// collapse to HeapRef; heap cells hold the object, references point to it.
func (x *Elaborator) classValueType(classType *ast.ClassType) *ast.ClassType {
	return &ast.ClassType{
		Range:    classType.Range,
		Id:       classType.Id,
		TypeArgs: x.rewriteTypes(classType.TypeArgs),
	}
}

func (x *Elaborator) rewriteValDef(def ast.ValDef) ast.ValDef {
	def.Tpe = x.RewriteType(def.Tpe)
	return def
}

func (x *Elaborator) rewriteValDefs(defs []ast.ValDef) []ast.ValDef {
	rewritten := make([]ast.ValDef, len(defs))
	for i, def := range defs {
		rewritten[i] = x.rewriteValDef(def)
	}
	return rewritten
}
