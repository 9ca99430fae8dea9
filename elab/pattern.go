package elab

import (
	"github.com/cottand/strata/ast"
)

// rewritePattern turns patterns over heap classes into extractor patterns
// over the current heap, and heap-rewrites the binder types of everything
// else.
func (rw *exprRewriter) rewritePattern(p ast.Pattern, e env) ast.Pattern {
	switch p := p.(type) {
	case *ast.WildcardPattern:
		copied := *p
		copied.Binder = rw.rewriteBinderPtr(p.Binder)
		return &copied

	case *ast.ClassPattern:
		if !rw.isHeapClass(p.Tpe.Id) {
			copied := *p
			copied.Binder = rw.rewriteBinderPtr(p.Binder)
			copied.Tpe = rw.classValueType(p.Tpe)
			copied.Sub = rw.rewritePatterns(p.Sub, e)
			return &copied
		}
		return rw.rewriteHeapClassPattern(p, e)

	case *ast.TuplePattern:
		copied := *p
		copied.Binder = rw.rewriteBinderPtr(p.Binder)
		copied.Sub = rw.rewritePatterns(p.Sub, e)
		return &copied

	case *ast.LiteralPattern:
		copied := *p
		copied.Lit = rw.rewrite(p.Lit, e)
		return &copied

	case *ast.UnapplyPattern:
		copied := *p
		copied.Binder = rw.rewriteBinderPtr(p.Binder)
		copied.TypeArgs = rw.rewriteTypes(p.TypeArgs)
		copied.RecArgs = rw.rewriteAll(p.RecArgs, e)
		copied.Sub = rw.rewritePatterns(p.Sub, e)
		return &copied

	default:
		return p
	}
}

func (rw *exprRewriter) rewritePatterns(patterns []ast.Pattern, e env) []ast.Pattern {
	rewritten := make([]ast.Pattern, len(patterns))
	for i, sub := range patterns {
		rewritten[i] = rw.rewritePattern(sub, e)
	}
	return rewritten
}

func (rw *exprRewriter) rewriteBinderPtr(binder *ast.ValDef) *ast.ValDef {
	if binder == nil {
		return nil
	}
	rewritten := rw.rewriteValDef(*binder)
	return &rewritten
}

// rewriteHeapClassPattern compiles `case C(subs)` over a heap class into
// `case unapply_C(heap, readsDom)(subs')`: the extractor dereferences the
// scrutinee in the current heap and yields the stored object when it has
// the matched class.
func (rw *exprRewriter) rewriteHeapClassPattern(p *ast.ClassPattern, e env) ast.Pattern {
	readsFrame := rw.expectReads(e, p, "match against a heap object")
	heapVd := rw.heapBinder(e)

	var readsDomArg ast.Expr
	if readsFrame.restricted() {
		readsDomArg = &ast.Call{
			Callee:   ast.SomeID,
			TypeArgs: []ast.Type{ast.HeapRefSetType()},
			Args:     []ast.Expr{readsFrame.dom.ToVar()},
		}
	} else {
		readsDomArg = &ast.Call{
			Callee:   ast.NoneID,
			TypeArgs: []ast.Type{ast.HeapRefSetType()},
		}
	}

	inner := &ast.ClassPattern{
		Range: p.Range,
		Tpe:   rw.classValueType(p.Tpe),
		Sub:   rw.rewritePatterns(p.Sub, e),
	}
	return &ast.UnapplyPattern{
		Range:    p.Range,
		Binder:   rw.rewriteBinderPtr(p.Binder),
		Id:       rw.unapplyID(p.Tpe.Id),
		TypeArgs: rw.rewriteTypes(p.Tpe.TypeArgs),
		RecArgs:  []ast.Expr{heapVd.ToVar(), readsDomArg},
		Sub:      []ast.Pattern{inner},
	}
}

// synthesizeUnapply builds the extractor for a heap class:
//
//	unapply_C(heap, readsDom, x): Option[C]
//
// requiring that x is inside readsDom unless readsDom is none, and
// returning the object stored at x when its dynamic type matches.
func (x *Elaborator) synthesizeUnapply(classDef *ast.ClassDef) *ast.FunDef {
	id := x.unapplyID(classDef.Id)

	typeArgs := make([]ast.Type, 0, len(classDef.TypeParams))
	for _, typeParam := range classDef.TypeParams {
		typeArgs = append(typeArgs, &ast.TypeParamUse{Id: typeParam})
	}
	valueType := &ast.ClassType{Id: classDef.Id, TypeArgs: typeArgs}

	heap := ast.ValDef{Id: ast.DerivedNamed(id, "heap"), Tpe: &ast.HeapType{}}
	readsDom := ast.ValDef{Id: ast.DerivedNamed(id, "readsDom"), Tpe: ast.OptionTypeOf(ast.HeapRefSetType())}
	scrutinee := ast.ValDef{Id: ast.DerivedNamed(id, "x"), Tpe: ast.HeapRefType()}

	stored := &ast.MapApply{Map: heap.ToVar(), Key: scrutinee.ToVar()}
	requires := &ast.Or{
		Lhs: &ast.Call{
			Callee:   ast.OptionIsEmptyID,
			TypeArgs: []ast.Type{ast.HeapRefSetType()},
			Args:     []ast.Expr{readsDom.ToVar()},
		},
		Rhs: &ast.SetContains{
			Set: &ast.Call{
				Callee:   ast.OptionGetID,
				TypeArgs: []ast.Type{ast.HeapRefSetType()},
				Args:     []ast.Expr{readsDom.ToVar()},
			},
			Elem: scrutinee.ToVar(),
		},
	}
	body := &ast.If{
		Cond: &ast.IsInstance{X: stored, Tpe: valueType},
		Then: &ast.Call{
			Callee:   ast.SomeID,
			TypeArgs: []ast.Type{valueType},
			Args:     []ast.Expr{&ast.AsInstance{X: stored, Tpe: valueType}},
		},
		Else: &ast.Call{
			Callee:   ast.NoneID,
			TypeArgs: []ast.Type{valueType},
		},
	}

	return &ast.FunDef{
		Id:         id,
		TypeParams: classDef.TypeParams,
		Params:     []ast.ValDef{heap, readsDom, scrutinee},
		ReturnType: ast.OptionTypeOf(valueType),
		Spec:       ast.FunSpec{Requires: []ast.Expr{requires}},
		Body:       body,
		Flags: ast.FlagSet{}.With(
			ast.Synthetic,
			ast.DropVCs,
			ast.IsUnapply{IsEmpty: ast.OptionIsEmptyID, Get: ast.OptionGetID},
		),
	}
}
