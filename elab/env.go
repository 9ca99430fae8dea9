package elab

import (
	"go/token"

	"github.com/cottand/strata/ast"
	"github.com/cottand/strata/verr"
	"github.com/pkg/errors"
)

// frame is one of the two access frames of an environment. A nil *frame
// forbids the access entirely; a frame with a nil dom allows it anywhere;
// a frame with a dom restricts it to the set bound to dom.
type frame struct {
	dom *ast.ValDef
}

var allowAll = &frame{}

func restrictedTo(dom ast.ValDef) *frame {
	return &frame{dom: &dom}
}

func (f *frame) restricted() bool { return f != nil && f.dom != nil }

// env is the environment the expression rewriter is parameterized by. It
// also carries the static types of the binders in scope (types), needed to
// classify receivers, and the pre-state heap binder (preHeap) which is only
// set while rewriting a postcondition.
type env struct {
	heap     *ast.ValDef
	reads    *frame
	modifies *frame
	preHeap  *ast.ValDef
	types    map[ast.Identifier]ast.Type
}

func (e env) withBinder(binder ast.ValDef, tpe ast.Type) env {
	types := make(map[ast.Identifier]ast.Type, len(e.types)+1)
	for id, t := range e.types {
		types[id] = t
	}
	types[binder.Id] = tpe
	e.types = types
	return e
}

func (e env) withBinders(binders []ast.ValDef) env {
	for _, binder := range binders {
		e = e.withBinder(binder, binder.Tpe)
	}
	return e
}

// expectHeap returns the current heap binder, or reports a diagnostic and
// falls back to a dummy binding so rewriting can continue and further
// errors still surface in the same run.
func (x *Elaborator) expectHeap(e env, at ast.Positioner, usage string) ast.ValDef {
	if e.heap != nil {
		return *e.heap
	}
	x.reporter.Report(verr.New(verr.NewHeapConstruct{
		Positioner: ast.RangeOf(at),
		Usage:      usage,
	}))
	return ast.ValDef{
		Id:  ast.DerivedNamed(ast.DummyHeapID, "heapErr"),
		Tpe: &ast.HeapType{},
	}
}

func (x *Elaborator) expectReads(e env, at ast.Positioner, usage string) *frame {
	if e.reads != nil {
		return e.reads
	}
	x.reporter.Report(verr.New(verr.NewMissingReadsClause{
		Positioner: ast.RangeOf(at),
		Usage:      usage,
	}))
	return allowAll
}

func (x *Elaborator) expectModifies(e env, at ast.Positioner, usage string) *frame {
	if e.modifies != nil {
		return e.modifies
	}
	if e.reads != nil {
		// the function can see the heap but never declared write access
		x.reporter.Report(verr.New(verr.NewModifyInReadOnly{
			Positioner: ast.RangeOf(at),
		}))
	} else {
		x.reporter.Report(verr.New(verr.NewMissingModifiesClause{
			Positioner: ast.RangeOf(at),
			Usage:      usage,
		}))
	}
	return allowAll
}

// typeOf computes the static type of an input-tree expression. Binders are
// looked up in the environment; definitions in the input symbol table.
// The result is an input-universe type: it has not been heap-rewritten.
func (x *Elaborator) typeOf(e ast.Expr, env env) ast.Type {
	switch e := e.(type) {
	case *ast.Var:
		if tpe, ok := env.types[e.Id]; ok {
			return tpe
		}
		return &ast.AnyType{}
	case *ast.Literal:
		if e.Kind == token.STRING {
			return &ast.StringType{}
		}
		return &ast.IntType{}
	case *ast.BoolLit:
		return &ast.BoolType{}
	case *ast.UnitLit:
		return &ast.UnitType{}
	case *ast.Let:
		return x.typeOf(e.Body, env.withBinder(e.Binder, e.Binder.Tpe))
	case *ast.LetMut:
		return x.typeOf(e.Body, env.withBinder(e.Binder, e.Binder.Tpe))
	case *ast.Assign:
		return &ast.UnitType{}
	case *ast.Block:
		if len(e.Exprs) == 0 {
			return &ast.UnitType{}
		}
		return x.typeOf(e.Exprs[len(e.Exprs)-1], env)
	case *ast.Lambda:
		from := make([]ast.Type, 0, len(e.Params))
		for _, param := range e.Params {
			from = append(from, param.Tpe)
		}
		return &ast.FunctionType{From: from, To: x.typeOf(e.Body, env.withBinders(e.Params))}
	case *ast.Call:
		def, ok := x.symbols.Function(e.Callee)
		if !ok {
			return &ast.AnyType{}
		}
		return instantiate(def.ReturnType, def.TypeParams, e.TypeArgs)
	case *ast.ClassNew:
		return e.Class
	case *ast.FieldSelect:
		recvType := x.typeOf(e.Recv, env)
		classType, ok := recvType.(*ast.ClassType)
		if !ok {
			return &ast.AnyType{}
		}
		classDef, ok := x.symbols.Class(classType.Id)
		if !ok {
			return &ast.AnyType{}
		}
		field, ok := classDef.FieldNamed(e.Field)
		if !ok {
			return &ast.AnyType{}
		}
		return instantiate(field.Tpe, classDef.TypeParams, classType.TypeArgs)
	case *ast.FieldAssign:
		return &ast.UnitType{}
	case *ast.IsInstance:
		return &ast.BoolType{}
	case *ast.AsInstance:
		return e.Tpe
	case *ast.RefEq, *ast.Equals, *ast.And, *ast.Or,
		*ast.SetContains, *ast.SetSubset:
		return &ast.BoolType{}
	case *ast.ObjectIdentity:
		return &ast.IntType{}
	case *ast.Old:
		return x.typeOf(e.X, env)
	case *ast.If:
		return x.typeOf(e.Then, env)
	case *ast.Match:
		if len(e.Cases) == 0 {
			return &ast.AnyType{}
		}
		caseEnv := env
		for _, binder := range patternBinders(e.Cases[0].Pattern) {
			caseEnv = caseEnv.withBinder(binder, binder.Tpe)
		}
		return x.typeOf(e.Cases[0].Body, caseEnv)
	case *ast.Assert:
		return x.typeOf(e.Body, env)
	case *ast.Assume:
		return x.typeOf(e.Body, env)
	case *ast.Choose:
		return e.Binder.Tpe
	case *ast.Tuple:
		bases := make([]ast.Type, 0, len(e.Exprs))
		for _, sub := range e.Exprs {
			bases = append(bases, x.typeOf(sub, env))
		}
		return &ast.TupleType{Bases: bases}
	case *ast.TupleSelect:
		tupleType, ok := x.typeOf(e.X, env).(*ast.TupleType)
		if !ok || e.Index < 1 || e.Index > len(tupleType.Bases) {
			return &ast.AnyType{}
		}
		return tupleType.Bases[e.Index-1]
	case *ast.MapApply:
		mapType, ok := x.typeOf(e.Map, env).(*ast.MapType)
		if !ok {
			return &ast.AnyType{}
		}
		return mapType.To
	case *ast.MapUpdated, *ast.MapMerge:
		return x.typeOf(mapOperand(e), env)
	case *ast.FiniteSet:
		return &ast.SetType{Base: e.Base}
	case *ast.SetUnion:
		return x.typeOf(e.Lhs, env)
	case *ast.ErrorExpr:
		return e.Tpe
	default:
		panic(errors.Errorf("typeOf: unknown expression node %T", e))
	}
}

func mapOperand(e ast.Expr) ast.Expr {
	switch e := e.(type) {
	case *ast.MapUpdated:
		return e.Map
	case *ast.MapMerge:
		return e.Left
	default:
		panic(errors.Errorf("mapOperand: not a map expression: %T", e))
	}
}

// instantiate substitutes type arguments for the matching type parameters.
func instantiate(t ast.Type, params []ast.Identifier, args []ast.Type) ast.Type {
	if t == nil || len(params) == 0 || len(params) != len(args) {
		return t
	}
	substitution := make(map[ast.Identifier]ast.Type, len(params))
	for i, param := range params {
		substitution[param] = args[i]
	}
	return ast.TransformType(t, func(t ast.Type) ast.Type {
		if use, ok := t.(*ast.TypeParamUse); ok {
			if replacement, ok := substitution[use.Id]; ok {
				return replacement
			}
		}
		return t
	})
}

func patternBinders(p ast.Pattern) []ast.ValDef {
	var binders []ast.ValDef
	var walk func(p ast.Pattern)
	walk = func(p ast.Pattern) {
		switch p := p.(type) {
		case *ast.WildcardPattern:
			if p.Binder != nil {
				binders = append(binders, *p.Binder)
			}
		case *ast.ClassPattern:
			if p.Binder != nil {
				binders = append(binders, *p.Binder)
			}
			for _, sub := range p.Sub {
				walk(sub)
			}
		case *ast.TuplePattern:
			if p.Binder != nil {
				binders = append(binders, *p.Binder)
			}
			for _, sub := range p.Sub {
				walk(sub)
			}
		case *ast.UnapplyPattern:
			if p.Binder != nil {
				binders = append(binders, *p.Binder)
			}
			for _, sub := range p.Sub {
				walk(sub)
			}
		case *ast.LiteralPattern:
		}
	}
	walk(p)
	return binders
}
