package elab

import (
	"encoding/binary"
	"hash/fnv"

	"github.com/cottand/strata/ast"
	"github.com/pkg/errors"
)

// exprRewriter rewrites the expressions of one definition. Fresh binders
// are numbered per definition and derived from the owner id, keeping the
// output a pure function of the input.
type exprRewriter struct {
	*Elaborator
	owner ast.Identifier
	fresh uint64
}

func (x *Elaborator) rewriterFor(owner ast.Identifier) *exprRewriter {
	return &exprRewriter{Elaborator: x, owner: owner}
}

func (rw *exprRewriter) freshBinder(name string, tpe ast.Type) ast.ValDef {
	rw.fresh++
	h := fnv.New64a()
	arr := []byte(name)
	arr = binary.LittleEndian.AppendUint64(arr, rw.owner.Gid)
	arr = binary.LittleEndian.AppendUint64(arr, rw.fresh)
	_, _ = h.Write(arr)
	_, _ = h.Write([]byte(rw.owner.Name))
	return ast.ValDef{
		Id:  ast.Identifier{Name: name, Gid: h.Sum64()},
		Tpe: tpe,
	}
}

// heapBinder is the current heap without diagnostics; callers that gate on
// a frame let expectReads or expectModifies do the reporting.
func (rw *exprRewriter) heapBinder(e env) ast.ValDef {
	if e.heap != nil {
		return *e.heap
	}
	return ast.ValDef{
		Id:  ast.DerivedNamed(ast.DummyHeapID, "heapErr"),
		Tpe: &ast.HeapType{},
	}
}

func emptyHeapRefSet() ast.Expr {
	return &ast.FiniteSet{Base: ast.HeapRefType()}
}

// assertIn guards body with an `elem ∈ frame` assertion when the frame is
// restricted and contract checking is on; otherwise body passes through.
func (rw *exprRewriter) assertIn(f *frame, elem ast.Expr, msg string, body ast.Expr) ast.Expr {
	if !f.restricted() || !rw.config.CheckHeapContracts {
		return body
	}
	return &ast.Assert{
		Pred: &ast.SetContains{Set: f.dom.ToVar(), Elem: elem},
		Msg:  msg,
		Body: body,
	}
}

func (rw *exprRewriter) rewriteAll(exprs []ast.Expr, e env) []ast.Expr {
	rewritten := make([]ast.Expr, len(exprs))
	for i, sub := range exprs {
		rewritten[i] = rw.rewrite(sub, e)
	}
	return rewritten
}

// rewrite compiles away every heap-accessing construct of expr, keeping
// all other forms structurally intact. Source positions survive on the
// rewritten node; only synthesized assertions carry no position.
func (rw *exprRewriter) rewrite(expr ast.Expr, e env) ast.Expr {
	if expr == nil {
		return nil
	}
	switch expr := expr.(type) {
	case *ast.Var, *ast.Literal, *ast.BoolLit, *ast.UnitLit, *ast.ErrorExpr:
		return expr.Transform(func(e ast.Expr) ast.Expr { return e })

	case *ast.RefEq:
		return &ast.Equals{
			Range: expr.Range,
			Lhs:   rw.rewrite(expr.Lhs, e),
			Rhs:   rw.rewrite(expr.Rhs, e),
		}

	case *ast.ClassNew:
		if !rw.isHeapClass(expr.Class.Id) {
			copied := *expr
			copied.Class = rw.classValueType(expr.Class)
			copied.Args = rw.rewriteAll(expr.Args, e)
			return &copied
		}
		return rw.rewriteAllocation(expr, e)

	case *ast.FieldSelect:
		recvType := rw.typeOf(expr.Recv, e)
		if !rw.IsHeapType(recvType) {
			copied := *expr
			copied.Recv = rw.rewrite(expr.Recv, e)
			return &copied
		}
		return rw.rewriteHeapRead(expr, recvType.(*ast.ClassType), e)

	case *ast.FieldAssign:
		recvType := rw.typeOf(expr.Recv, e)
		if !rw.IsHeapType(recvType) {
			copied := *expr
			copied.Recv = rw.rewrite(expr.Recv, e)
			copied.Value = rw.rewrite(expr.Value, e)
			return &copied
		}
		return rw.rewriteHeapWrite(expr, recvType.(*ast.ClassType), e)

	case *ast.IsInstance:
		if !rw.IsHeapType(expr.Tpe) && !rw.IsHeapType(rw.typeOf(expr.X, e)) {
			copied := *expr
			copied.X = rw.rewrite(expr.X, e)
			copied.Tpe = rw.RewriteType(expr.Tpe)
			return &copied
		}
		return rw.rewriteHeapTypeTest(expr, e)

	case *ast.AsInstance:
		copied := *expr
		copied.X = rw.rewrite(expr.X, e)
		copied.Tpe = rw.RewriteType(expr.Tpe)
		return &copied

	case *ast.ObjectIdentity:
		return &ast.FieldSelect{
			Range: expr.Range,
			Recv:  rw.rewrite(expr.X, e),
			Field: ast.HeapRefIdentityField,
		}

	case *ast.Call:
		return rw.rewriteCall(expr, e)

	case *ast.Old:
		if e.preHeap == nil {
			// only meaningful inside a postcondition; left for the
			// postcondition rewrite to pick apart
			return expr
		}
		preEnv := e
		preEnv.heap = e.preHeap
		return rw.rewrite(expr.X, preEnv)

	case *ast.Match:
		return rw.rewriteMatch(expr, e)

	case *ast.Let:
		copied := *expr
		copied.Binder = rw.rewriteValDef(expr.Binder)
		copied.Value = rw.rewrite(expr.Value, e)
		copied.Body = rw.rewrite(expr.Body, e.withBinder(expr.Binder, expr.Binder.Tpe))
		return &copied

	case *ast.LetMut:
		copied := *expr
		copied.Binder = rw.rewriteValDef(expr.Binder)
		copied.Value = rw.rewrite(expr.Value, e)
		copied.Body = rw.rewrite(expr.Body, e.withBinder(expr.Binder, expr.Binder.Tpe))
		return &copied

	case *ast.Assign:
		copied := *expr
		copied.Value = rw.rewrite(expr.Value, e)
		return &copied

	case *ast.Block:
		copied := *expr
		copied.Exprs = rw.rewriteAll(expr.Exprs, e)
		return &copied

	case *ast.Lambda:
		copied := *expr
		copied.Params = rw.rewriteValDefs(expr.Params)
		copied.Body = rw.rewrite(expr.Body, e.withBinders(expr.Params))
		return &copied

	case *ast.Equals:
		copied := *expr
		copied.Lhs = rw.rewrite(expr.Lhs, e)
		copied.Rhs = rw.rewrite(expr.Rhs, e)
		return &copied

	case *ast.And:
		copied := *expr
		copied.Lhs = rw.rewrite(expr.Lhs, e)
		copied.Rhs = rw.rewrite(expr.Rhs, e)
		return &copied

	case *ast.Or:
		copied := *expr
		copied.Lhs = rw.rewrite(expr.Lhs, e)
		copied.Rhs = rw.rewrite(expr.Rhs, e)
		return &copied

	case *ast.If:
		copied := *expr
		copied.Cond = rw.rewrite(expr.Cond, e)
		copied.Then = rw.rewrite(expr.Then, e)
		copied.Else = rw.rewrite(expr.Else, e)
		return &copied

	case *ast.Assert:
		copied := *expr
		copied.Pred = rw.rewrite(expr.Pred, e)
		copied.Body = rw.rewrite(expr.Body, e)
		return &copied

	case *ast.Assume:
		copied := *expr
		copied.Pred = rw.rewrite(expr.Pred, e)
		copied.Body = rw.rewrite(expr.Body, e)
		return &copied

	case *ast.Choose:
		copied := *expr
		copied.Binder = rw.rewriteValDef(expr.Binder)
		copied.Pred = rw.rewrite(expr.Pred, e.withBinder(expr.Binder, expr.Binder.Tpe))
		return &copied

	case *ast.Tuple:
		copied := *expr
		copied.Exprs = rw.rewriteAll(expr.Exprs, e)
		return &copied

	case *ast.TupleSelect:
		copied := *expr
		copied.X = rw.rewrite(expr.X, e)
		return &copied

	case *ast.MapApply:
		copied := *expr
		copied.Map = rw.rewrite(expr.Map, e)
		copied.Key = rw.rewrite(expr.Key, e)
		return &copied

	case *ast.MapUpdated:
		copied := *expr
		copied.Map = rw.rewrite(expr.Map, e)
		copied.Key = rw.rewrite(expr.Key, e)
		copied.Value = rw.rewrite(expr.Value, e)
		return &copied

	case *ast.MapMerge:
		copied := *expr
		copied.Mask = rw.rewrite(expr.Mask, e)
		copied.Left = rw.rewrite(expr.Left, e)
		copied.Right = rw.rewrite(expr.Right, e)
		return &copied

	case *ast.FiniteSet:
		copied := *expr
		copied.Elems = rw.rewriteAll(expr.Elems, e)
		copied.Base = rw.RewriteType(expr.Base)
		return &copied

	case *ast.SetContains:
		copied := *expr
		copied.Set = rw.rewrite(expr.Set, e)
		copied.Elem = rw.rewrite(expr.Elem, e)
		return &copied

	case *ast.SetSubset:
		copied := *expr
		copied.Lhs = rw.rewrite(expr.Lhs, e)
		copied.Rhs = rw.rewrite(expr.Rhs, e)
		return &copied

	case *ast.SetUnion:
		copied := *expr
		copied.Lhs = rw.rewrite(expr.Lhs, e)
		copied.Rhs = rw.rewrite(expr.Rhs, e)
		return &copied

	default:
		panic(errors.Errorf("rewrite: unknown expression node %T", expr))
	}
}

// rewriteAllocation compiles `new C(args)` into: choose a fresh reference,
// store the constructed value at it, evaluate to the reference. Nothing
// constrains the choice away from existing references; ruling out aliasing
// is left to later analyses.
func (rw *exprRewriter) rewriteAllocation(expr *ast.ClassNew, e env) ast.Expr {
	heapVd := rw.expectHeap(e, expr, expr.Describe())
	chooseBinder := rw.freshBinder("r", ast.HeapRefType())
	refBinder := rw.freshBinder("ref", ast.HeapRefType())
	object := &ast.ClassNew{
		Range: expr.Range,
		Class: rw.classValueType(expr.Class),
		Args:  rw.rewriteAll(expr.Args, e),
	}
	return &ast.Let{
		Range:  expr.Range,
		Binder: refBinder,
		Value:  &ast.Choose{Binder: chooseBinder, Pred: &ast.BoolLit{Value: true}},
		Body: &ast.Block{Exprs: []ast.Expr{
			&ast.Assign{
				Id: heapVd.Id,
				Value: &ast.MapUpdated{
					Map:   heapVd.ToVar(),
					Key:   refBinder.ToVar(),
					Value: object,
				},
			},
			refBinder.ToVar(),
		}},
	}
}

// rewriteHeapRead compiles `obj.f` into a read of the heap map at obj's
// reference, under the reads frame.
func (rw *exprRewriter) rewriteHeapRead(expr *ast.FieldSelect, recvType *ast.ClassType, e env) ast.Expr {
	readsFrame := rw.expectReads(e, expr, "read from heap object")
	heapVd := rw.heapBinder(e)
	valueType := rw.classValueType(recvType)
	refBinder := rw.freshBinder("r", ast.HeapRefType())
	objBinder := rw.freshBinder("obj", &ast.AnyType{})
	projection := &ast.Let{
		Binder: objBinder,
		Value:  &ast.MapApply{Map: heapVd.ToVar(), Key: refBinder.ToVar()},
		Body: &ast.Assume{
			Pred: &ast.IsInstance{X: objBinder.ToVar(), Tpe: valueType},
			Body: &ast.FieldSelect{
				Range: expr.Range,
				Recv:  &ast.AsInstance{X: objBinder.ToVar(), Tpe: valueType},
				Field: expr.Field,
			},
		},
	}
	return &ast.Let{
		Range:  expr.Range,
		Binder: refBinder,
		Value:  rw.rewrite(expr.Recv, e),
		Body:   rw.assertIn(readsFrame, refBinder.ToVar(), "read outside reads set", projection),
	}
}

// rewriteHeapWrite compiles `obj.f = v` into an update of the heap map
// with a copy of the stored object, f replaced. The modifies assertion
// comes after the update so the state effect stays visible even when the
// assertion fails.
func (rw *exprRewriter) rewriteHeapWrite(expr *ast.FieldAssign, recvType *ast.ClassType, e env) ast.Expr {
	modifiesFrame := rw.expectModifies(e, expr, "write to heap object")
	heapVd := rw.heapBinder(e)
	valueType := rw.classValueType(recvType)
	classDef := rw.symbols.MustClass(recvType.Id)

	refBinder := rw.freshBinder("r", ast.HeapRefType())
	valueBinder := rw.freshBinder("v", rw.RewriteType(rw.typeOf(expr.Value, e)))

	stored := &ast.AsInstance{
		X:   &ast.MapApply{Map: heapVd.ToVar(), Key: refBinder.ToVar()},
		Tpe: valueType,
	}
	fieldValues := make([]ast.Expr, 0, len(classDef.Fields))
	for _, field := range classDef.Fields {
		if field.Id == expr.Field {
			fieldValues = append(fieldValues, valueBinder.ToVar())
			continue
		}
		fieldValues = append(fieldValues, &ast.FieldSelect{Recv: stored, Field: field.Id})
	}

	return &ast.Let{
		Range:  expr.Range,
		Binder: refBinder,
		Value:  rw.rewrite(expr.Recv, e),
		Body: &ast.Let{
			Binder: valueBinder,
			Value:  rw.rewrite(expr.Value, e),
			Body: &ast.Block{Exprs: []ast.Expr{
				&ast.Assign{
					Id: heapVd.Id,
					Value: &ast.MapUpdated{
						Map:   heapVd.ToVar(),
						Key:   refBinder.ToVar(),
						Value: &ast.ClassNew{Class: valueType, Args: fieldValues},
					},
				},
				rw.assertIn(modifiesFrame, refBinder.ToVar(), "write outside modifies set", &ast.UnitLit{}),
			}},
		},
	}
}

// rewriteHeapTypeTest compiles `obj is C` into a type test on the value
// stored at obj's reference.
func (rw *exprRewriter) rewriteHeapTypeTest(expr *ast.IsInstance, e env) ast.Expr {
	readsFrame := rw.expectReads(e, expr, "type-test a heap object")
	heapVd := rw.heapBinder(e)

	classType, ok := expr.Tpe.(*ast.ClassType)
	if !ok {
		panic(errors.Errorf("type test on heap value against non-class type %v", ast.TypeString(expr.Tpe)))
	}
	refBinder := rw.freshBinder("r", ast.HeapRefType())
	return &ast.Let{
		Range:  expr.Range,
		Binder: refBinder,
		Value:  rw.rewrite(expr.X, e),
		Body: rw.assertIn(readsFrame, refBinder.ToVar(), "read outside reads set", &ast.IsInstance{
			Range: expr.Range,
			X:     &ast.MapApply{Map: heapVd.ToVar(), Key: refBinder.ToVar()},
			Tpe:   rw.classValueType(classType),
		}),
	}
}

// rewriteCall keeps pure calls in place and redirects effectful calls to
// the callee's shim, prepending the heap and the caller's frames.
func (rw *exprRewriter) rewriteCall(expr *ast.Call, e env) ast.Expr {
	def, ok := rw.symbols.Function(expr.Callee)
	if !ok {
		panic(errors.Errorf("call to unknown function %v", expr.Callee))
	}
	effect := rw.EffectLevel(expr.Callee)
	if !effect.Effectful() {
		return &ast.Call{
			Range:    expr.Range,
			Callee:   expr.Callee,
			TypeArgs: rw.rewriteTypes(expr.TypeArgs),
			Args:     rw.rewriteAll(expr.Args, e),
		}
	}

	readsFrame := rw.expectReads(e, expr, "call a heap function")
	heapVd := rw.heapBinder(e)

	frameArg := func(f *frame) ast.Expr {
		if f.restricted() {
			return f.dom.ToVar()
		}
		return emptyHeapRefSet()
	}

	args := []ast.Expr{heapVd.ToVar(), frameArg(readsFrame)}
	if effect.Writes() {
		modifiesFrame := rw.expectModifies(e, expr, "call a heap-modifying function")
		args = append(args, frameArg(modifiesFrame))
	}
	args = append(args, rw.rewriteAll(expr.Args, e)...)

	shimCall := &ast.Call{
		Range:    expr.Range,
		Callee:   rw.shimID(expr.Callee),
		TypeArgs: rw.rewriteTypes(expr.TypeArgs),
		Args:     args,
	}
	if !effect.Writes() {
		return shimCall
	}

	returned := rw.RewriteType(instantiate(def.ReturnType, def.TypeParams, expr.TypeArgs))
	pairBinder := rw.freshBinder("res", &ast.TupleType{Bases: []ast.Type{returned, &ast.HeapType{}}})
	return &ast.Let{
		Range:  expr.Range,
		Binder: pairBinder,
		Value:  shimCall,
		Body: &ast.Block{Exprs: []ast.Expr{
			&ast.Assign{Id: heapVd.Id, Value: &ast.TupleSelect{X: pairBinder.ToVar(), Index: 2}},
			&ast.TupleSelect{X: pairBinder.ToVar(), Index: 1},
		}},
	}
}

func (rw *exprRewriter) rewriteMatch(expr *ast.Match, e env) ast.Expr {
	copied := *expr
	copied.Scrutinee = rw.rewrite(expr.Scrutinee, e)
	copied.Cases = make([]ast.MatchCase, len(expr.Cases))
	for i, matchCase := range expr.Cases {
		caseEnv := e
		for _, binder := range patternBinders(matchCase.Pattern) {
			caseEnv = caseEnv.withBinder(binder, binder.Tpe)
		}
		copied.Cases[i] = ast.MatchCase{
			Range:   matchCase.Range,
			Pattern: rw.rewritePattern(matchCase.Pattern, e),
			Body:    rw.rewrite(matchCase.Body, caseEnv),
		}
		if matchCase.Guard != nil {
			copied.Cases[i].Guard = rw.rewrite(matchCase.Guard, caseEnv)
		}
	}
	return &copied
}
