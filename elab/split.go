package elab

import (
	"github.com/cottand/strata/ast"
	"github.com/cottand/strata/util"
	"github.com/cottand/strata/verr"
)

// ExtractFunction rewrites one function of the input table. Pure functions
// come back alone; effectful ones come back as the pair (inner, shim).
// Functions whose body is built-in reference equality come back empty:
// every use of them was already rewritten to plain equality on HeapRef.
func (x *Elaborator) ExtractFunction(f *ast.FunDef) []*ast.FunDef {
	if f.Flags.Has(ast.RefEqBuiltin.FlagName()) {
		return nil
	}
	effect := x.EffectLevel(f.Id)
	x.Debug("extracting function", "id", f.Id.Name, "effect", effect.String())
	if !effect.Effectful() {
		return []*ast.FunDef{x.extractPure(f)}
	}
	split := x.splitFunction(f, effect)
	if f.Body != nil {
		x.Debug("split effectful function", "id", f.Id.Name, "inner", ast.Slog(split.Fst.Body))
	}
	return []*ast.FunDef{split.Fst, split.Snd}
}

// readsClause is the reads set of an effectful function. A modifies clause
// implies reads, so a function that only declares modifies reads exactly
// what it modifies.
func readsClause(f *ast.FunDef) ast.Expr {
	if f.Spec.Reads != nil {
		return f.Spec.Reads
	}
	return f.Spec.Modifies
}

func paramEnv(params []ast.ValDef) env {
	types := make(map[ast.Identifier]ast.Type, len(params))
	for _, param := range params {
		types[param.Id] = param.Tpe
	}
	return env{types: types}
}

// guard wraps body in an assertion unless contract checking is disabled,
// in which case the assertion collapses to its continuation.
func (x *Elaborator) guard(pred ast.Expr, msg string, body ast.Expr) ast.Expr {
	if !x.config.CheckHeapContracts {
		return body
	}
	return &ast.Assert{Pred: pred, Msg: msg, Body: body}
}

// extractPure rewrites a function that never touches the heap. The
// environment forbids heap access outright, so any leftover heap construct
// in the body surfaces as a diagnostic.
func (x *Elaborator) extractPure(f *ast.FunDef) *ast.FunDef {
	rw := x.rewriterFor(f.Id)
	e := paramEnv(f.Params)

	copied := *f
	copied.Params = x.rewriteValDefs(f.Params)
	copied.ReturnType = x.RewriteType(f.ReturnType)
	if f.Body != nil {
		copied.Body = rw.rewrite(f.Body, e)
	}
	copied.Spec = x.rewriteSpecClauses(rw, f, e)
	copied.Spec.Ensures = x.rewritePureEnsures(rw, f, e)
	return &copied
}

// rewriteSpecClauses handles requires and decreases, which see the heap and
// reads frame of the given environment, but never write.
func (x *Elaborator) rewriteSpecClauses(rw *exprRewriter, f *ast.FunDef, e env) ast.FunSpec {
	specEnv := e
	specEnv.modifies = nil
	spec := ast.FunSpec{}
	for _, requires := range f.Spec.Requires {
		spec.Requires = append(spec.Requires, rw.rewrite(requires, specEnv))
	}
	if f.Spec.Decreases != nil {
		spec.Decreases = rw.rewrite(f.Spec.Decreases, specEnv)
	}
	return spec
}

func (x *Elaborator) rewritePureEnsures(rw *exprRewriter, f *ast.FunDef, e env) []ast.Postcondition {
	ensures := make([]ast.Postcondition, 0, len(f.Spec.Ensures))
	for _, post := range f.Spec.Ensures {
		postEnv := e.withBinder(post.Binder, post.Binder.Tpe)
		ensures = append(ensures, ast.Postcondition{
			Range:  post.Range,
			Binder: x.rewriteValDef(post.Binder),
			Pred:   rw.rewrite(post.Pred, postEnv),
		})
	}
	return ensures
}

// splitFunction produces the inner implementation and its frame-checking
// shim for an effectful function.
func (x *Elaborator) splitFunction(f *ast.FunDef, effect Effect) util.Pair[*ast.FunDef, *ast.FunDef] {
	return util.NewPair(x.extractInner(f, effect), x.extractShim(f, effect))
}

// extractInner rewrites the implementation: the heap becomes the first
// parameter, the reads and modifies clauses become local frame bindings,
// and a writing body threads a locally mutable heap which is returned
// alongside the result.
func (x *Elaborator) extractInner(f *ast.FunDef, effect Effect) *ast.FunDef {
	rw := x.rewriterFor(f.Id)
	baseEnv := paramEnv(f.Params)

	heap0 := ast.ValDef{Id: ast.DerivedNamed(f.Id, "heap0"), Tpe: &ast.HeapType{}}
	specEnv := baseEnv
	specEnv.heap = &heap0
	// the reads clause itself is translated with reads unrestricted; the
	// shim separately checks the clause against the caller's domain, which
	// avoids the bootstrap of a reads clause needing itself
	specEnv.reads = allowAll

	readsBinder := ast.ValDef{Id: ast.DerivedNamed(f.Id, "reads"), Tpe: ast.HeapRefSetType()}
	readsExpr := rw.rewrite(readsClause(f), specEnv)
	// a second, evaluated copy keeps the clause subject to the frame checks
	// the shim installs on the heap it passes in
	readsExprCopy := rw.rewrite(readsClause(f), specEnv)

	returned := x.RewriteType(f.ReturnType)

	copied := *f
	copied.Params = append([]ast.ValDef{heap0}, x.rewriteValDefs(f.Params)...)
	copied.Spec = x.rewriteSpecClauses(rw, f, specEnv)

	if !effect.Writes() {
		bodyEnv := baseEnv
		bodyEnv.heap = &heap0
		bodyEnv.reads = restrictedTo(readsBinder)

		copied.ReturnType = returned
		if f.Body != nil {
			copied.Body = &ast.Let{
				Binder: readsBinder,
				Value:  readsExpr,
				Body: &ast.Block{Exprs: []ast.Expr{
					readsExprCopy,
					rw.rewrite(f.Body, bodyEnv),
				}},
			}
		}
		copied.Spec.Ensures = x.rewriteReadsEnsures(rw, f, baseEnv, heap0, returned)
		copied.Flags = f.Flags
		return &copied
	}

	modifiesBinder := ast.ValDef{Id: ast.DerivedNamed(f.Id, "modifies"), Tpe: ast.HeapRefSetType()}
	modifiesExpr := rw.rewrite(f.Spec.Modifies, specEnv)
	heapVd := ast.ValDef{Id: ast.DerivedNamed(f.Id, "heap"), Tpe: &ast.HeapType{}}

	bodyEnv := baseEnv
	bodyEnv.heap = &heapVd
	bodyEnv.reads = restrictedTo(readsBinder)
	bodyEnv.modifies = restrictedTo(modifiesBinder)

	copied.ReturnType = &ast.TupleType{Bases: []ast.Type{returned, &ast.HeapType{}}}
	if f.Body != nil {
		copied.Body = &ast.Let{
			Binder: readsBinder,
			Value:  readsExpr,
			Body: &ast.Block{Exprs: []ast.Expr{
				readsExprCopy,
				&ast.Let{
					Binder: modifiesBinder,
					Value:  modifiesExpr,
					Body: &ast.Assert{
						Pred: &ast.SetSubset{Lhs: modifiesBinder.ToVar(), Rhs: readsBinder.ToVar()},
						Msg:  "modifies set not within reads set",
						Body: &ast.LetMut{
							Binder: heapVd,
							Value:  heap0.ToVar(),
							Body: &ast.Tuple{Exprs: []ast.Expr{
								rw.rewrite(f.Body, bodyEnv),
								heapVd.ToVar(),
							}},
						},
					},
				},
			}},
		}
	}
	copied.Spec.Ensures = x.rewriteWritesEnsures(rw, f, baseEnv, heap0, returned)
	copied.Flags = f.Flags
	return &copied
}

// rewriteReadsEnsures keeps the single result binder; pre-state and
// post-state coincide for a read-only function, so both old(…) and plain
// sub-expressions read heap0.
func (x *Elaborator) rewriteReadsEnsures(rw *exprRewriter, f *ast.FunDef, baseEnv env, heap0 ast.ValDef, returned ast.Type) []ast.Postcondition {
	ensures := make([]ast.Postcondition, 0, len(f.Spec.Ensures))
	for _, post := range f.Spec.Ensures {
		postEnv := baseEnv.withBinder(post.Binder, post.Binder.Tpe)
		postEnv.heap = &heap0
		postEnv.preHeap = &heap0
		postEnv.reads = allowAll
		ensures = append(ensures, ast.Postcondition{
			Range:  post.Range,
			Binder: ast.ValDef{Range: post.Binder.Range, Id: post.Binder.Id, Tpe: returned},
			Pred:   rw.rewrite(post.Pred, postEnv),
		})
	}
	return ensures
}

// rewriteWritesEnsures splits the result binder of a writing function: the
// postcondition now binds the (value, heap) pair, re-binds the original
// result name to the value component and a fresh heap1 to the heap
// component. old(…) sub-expressions evaluate in heap0, the rest in heap1.
func (x *Elaborator) rewriteWritesEnsures(rw *exprRewriter, f *ast.FunDef, baseEnv env, heap0 ast.ValDef, returned ast.Type) []ast.Postcondition {
	ensures := make([]ast.Postcondition, 0, len(f.Spec.Ensures))
	for _, post := range f.Spec.Ensures {
		pairBinder := ast.ValDef{
			Range: post.Binder.Range,
			Id:    ast.DerivedNamed(f.Id, "res"),
			Tpe:   &ast.TupleType{Bases: []ast.Type{returned, &ast.HeapType{}}},
		}
		resBinder := ast.ValDef{Range: post.Binder.Range, Id: post.Binder.Id, Tpe: returned}
		heap1 := ast.ValDef{Id: ast.DerivedNamed(f.Id, "heap1"), Tpe: &ast.HeapType{}}

		postEnv := baseEnv.withBinder(post.Binder, post.Binder.Tpe)
		postEnv.heap = &heap1
		postEnv.preHeap = &heap0
		postEnv.reads = allowAll

		pred := &ast.Let{
			Binder: resBinder,
			Value:  &ast.TupleSelect{X: pairBinder.ToVar(), Index: 1},
			Body: &ast.Let{
				Binder: heap1,
				Value:  &ast.TupleSelect{X: pairBinder.ToVar(), Index: 2},
				Body:   rw.rewrite(post.Pred, postEnv),
			},
		}
		ensures = append(ensures, ast.Postcondition{
			Range:  post.Range,
			Binder: pairBinder,
			Pred:   pred,
		})
	}
	return ensures
}

// extractShim builds the externally visible entry point of an effectful
// function. It translates the callee's frames, checks them against the
// caller's domains, blanks the unreadable part of the heap for the inner
// call, and writes back only the modifiable part of the result heap.
// Assertions and the inner call carry no position so an inliner can stamp
// the call site's later.
func (x *Elaborator) extractShim(f *ast.FunDef, effect Effect) *ast.FunDef {
	shimID := x.shimID(f.Id)
	rw := x.rewriterFor(shimID)

	heapP := ast.ValDef{Id: ast.DerivedNamed(shimID, "heap"), Tpe: &ast.HeapType{}}
	readsDom := ast.ValDef{Id: ast.DerivedNamed(shimID, "readsDom"), Tpe: ast.HeapRefSetType()}
	modifiesDom := ast.ValDef{Id: ast.DerivedNamed(shimID, "modifiesDom"), Tpe: ast.HeapRefSetType()}

	realParams := x.rewriteValDefs(f.Params)
	params := []ast.ValDef{heapP, readsDom}
	if effect.Writes() {
		params = append(params, modifiesDom)
	}
	params = append(params, realParams...)

	specEnv := paramEnv(f.Params)
	specEnv.heap = &heapP
	specEnv.reads = allowAll

	readsBinder := ast.ValDef{Id: ast.DerivedNamed(shimID, "reads"), Tpe: ast.HeapRefSetType()}
	modifiesBinder := ast.ValDef{Id: ast.DerivedNamed(shimID, "modifies"), Tpe: ast.HeapRefSetType()}
	heapIn := ast.ValDef{Id: ast.DerivedNamed(shimID, "heapIn"), Tpe: &ast.HeapType{}}

	typeArgs := make([]ast.Type, 0, len(f.TypeParams))
	for _, typeParam := range f.TypeParams {
		typeArgs = append(typeArgs, &ast.TypeParamUse{Id: typeParam})
	}
	innerArgs := []ast.Expr{heapIn.ToVar()}
	for _, param := range realParams {
		innerArgs = append(innerArgs, param.ToVar())
	}
	innerCall := &ast.Call{Callee: f.Id, TypeArgs: typeArgs, Args: innerArgs}

	returned := x.RewriteType(f.ReturnType)

	mergedIn := &ast.MapMerge{
		Mask:  readsBinder.ToVar(),
		Left:  heapP.ToVar(),
		Right: &ast.Call{Callee: ast.DummyHeapID},
	}

	var tail ast.Expr
	returnType := returned
	if effect.Writes() {
		resBinder := ast.ValDef{
			Id:  ast.DerivedNamed(shimID, "res"),
			Tpe: &ast.TupleType{Bases: []ast.Type{returned, &ast.HeapType{}}},
		}
		returnType = &ast.TupleType{Bases: []ast.Type{returned, &ast.HeapType{}}}
		tail = &ast.Let{
			Binder: heapIn,
			Value:  mergedIn,
			Body: &ast.Let{
				Binder: resBinder,
				Value:  innerCall,
				Body: &ast.Tuple{Exprs: []ast.Expr{
					&ast.TupleSelect{X: resBinder.ToVar(), Index: 1},
					&ast.MapMerge{
						Mask:  modifiesBinder.ToVar(),
						Left:  &ast.TupleSelect{X: resBinder.ToVar(), Index: 2},
						Right: heapP.ToVar(),
					},
				}},
			},
		}
		tail = x.guard(
			&ast.SetSubset{Lhs: modifiesBinder.ToVar(), Rhs: modifiesDom.ToVar()},
			"modifies set not within modifies domain",
			tail,
		)
	} else {
		tail = &ast.Let{Binder: heapIn, Value: mergedIn, Body: innerCall}
	}

	tail = x.guard(
		&ast.SetSubset{Lhs: readsBinder.ToVar(), Rhs: readsDom.ToVar()},
		"reads set not within reads domain",
		tail,
	)

	if effect.Writes() {
		tail = &ast.Let{
			Binder: modifiesBinder,
			Value:  rw.rewrite(f.Spec.Modifies, specEnv),
			Body:   tail,
		}
	}
	body := &ast.Let{
		Binder: readsBinder,
		Value:  rw.rewrite(readsClause(f), specEnv),
		Body:   tail,
	}

	return &ast.FunDef{
		Range:      f.Range,
		Id:         shimID,
		TypeParams: f.TypeParams,
		Params:     params,
		ReturnType: returnType,
		Body:       body,
		Flags:      f.Flags.With(ast.Synthetic, ast.DropVCs, ast.InlineOnce),
	}
}

// ExtractClass rewrites a class definition and, when the class lives on
// the heap, synthesizes its extractor. The anyHeapRef marker disappears
// from parent lists; field types are heap-rewritten.
func (x *Elaborator) ExtractClass(c *ast.ClassDef) (*ast.ClassDef, *ast.FunDef) {
	copied := *c
	copied.Parents = make([]*ast.ClassType, 0, len(c.Parents))
	for _, parent := range c.Parents {
		parentDef := x.symbols.MustClass(parent.Id)
		if parentDef.Flags.Has(ast.AnyHeapRef.FlagName()) {
			continue
		}
		copied.Parents = append(copied.Parents, &ast.ClassType{
			Range:    parent.Range,
			Id:       parent.Id,
			TypeArgs: x.rewriteTypes(parent.TypeArgs),
		})
	}

	isHeap := x.isHeapClass(c.Id)
	copied.Fields = make([]ast.Field, len(c.Fields))
	for i, field := range c.Fields {
		if _, isFunction := field.Tpe.(*ast.FunctionType); isFunction && isHeap {
			x.reporter.Report(verr.New(verr.NewFunctionValuedHeapField{
				Positioner: ast.RangeOf(field),
				ClassName:  c.Id.Name,
				FieldName:  field.Id.Name,
			}))
		}
		copied.Fields[i] = ast.Field{ValDef: x.rewriteValDef(field.ValDef), IsVar: field.IsVar}
	}

	if !isHeap {
		return &copied, nil
	}
	return &copied, x.synthesizeUnapply(c)
}

// ExtractSort rewrites the constructor field types of an algebraic sort.
func (x *Elaborator) ExtractSort(s *ast.SortDef) *ast.SortDef {
	copied := *s
	copied.Constructors = make([]ast.ConstructorDef, len(s.Constructors))
	for i, cons := range s.Constructors {
		copied.Constructors[i] = ast.ConstructorDef{
			Range:  cons.Range,
			Id:     cons.Id,
			Fields: x.rewriteValDefs(cons.Fields),
		}
	}
	return &copied
}

// ExtractTypeDef rewrites the body of a type alias.
func (x *Elaborator) ExtractTypeDef(d *ast.TypeDef) *ast.TypeDef {
	copied := *d
	copied.Body = x.RewriteType(d.Body)
	return &copied
}
