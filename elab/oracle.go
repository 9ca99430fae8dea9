package elab

import (
	"github.com/cottand/strata/ast"
	"github.com/cottand/strata/util"
	"github.com/pkg/errors"
)

// IsHeapType reports whether values of t live on the heap after
// elaboration: t is a class type whose transitive parents include the
// anyHeapRef marker (or the marker itself). Every other type shape is a
// value type.
func (x *Elaborator) IsHeapType(t ast.Type) bool {
	classType, ok := t.(*ast.ClassType)
	if !ok {
		return false
	}
	return x.isHeapClass(classType.Id)
}

func (x *Elaborator) isHeapClass(id ast.Identifier) bool {
	if cached, ok := x.heapClasses.get(id); ok {
		return cached
	}
	visiting := util.NewEmptySet[ast.Identifier]()
	return x.isHeapClassWalk(id, visiting)
}

// isHeapClassWalk memoizes one class at a time so each class is inspected
// at most once per pass. The front-end promises an acyclic hierarchy;
// visiting catches a broken promise instead of looping.
func (x *Elaborator) isHeapClassWalk(id ast.Identifier, visiting util.MSet[ast.Identifier]) bool {
	return x.heapClasses.getOrCompute(id, func() bool {
		if visiting.Contains(id) {
			panic(errors.Errorf("class hierarchy contains a cycle through %v", id))
		}
		visiting.Add(id)
		def, ok := x.symbols.Class(id)
		if !ok {
			panic(errors.Errorf("heap oracle: no class %v in symbols", id))
		}
		if def.Flags.Has(ast.AnyHeapRef.FlagName()) {
			return true
		}
		for _, parent := range x.symbols.ParentsOf(def) {
			if x.isHeapClassWalk(parent.Id, visiting) {
				return true
			}
		}
		return false
	})
}
