package elab_test

import (
	"testing"

	"github.com/cottand/strata/ast"
	"github.com/cottand/strata/elab"
	"github.com/cottand/strata/verr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// test program vocabulary, shared by the scenario tests below

var (
	anyRefID   = ast.NewIdentifier("AnyHeapRef", 1)
	cellID     = ast.NewIdentifier("Cell", 2)
	valueField = ast.NewIdentifier("value", 3)
	boxID      = ast.NewIdentifier("Box", 4)
)

func anyRefClass() *ast.ClassDef {
	return &ast.ClassDef{
		Id:    anyRefID,
		Flags: ast.FlagSet{}.With(ast.AnyHeapRef),
	}
}

func cellClass() *ast.ClassDef {
	return &ast.ClassDef{
		Id:      cellID,
		Parents: []*ast.ClassType{{Id: anyRefID}},
		Fields: []ast.Field{{
			ValDef: ast.ValDef{Id: valueField, Tpe: &ast.IntType{}},
			IsVar:  true,
		}},
	}
}

// boxClass is heap-resident only transitively, through Cell.
func boxClass() *ast.ClassDef {
	return &ast.ClassDef{
		Id:      boxID,
		Parents: []*ast.ClassType{{Id: cellID}},
	}
}

func cellType() *ast.ClassType { return &ast.ClassType{Id: cellID} }

func cellParam(name string, gid uint64) ast.ValDef {
	return ast.ValDef{Id: ast.NewIdentifier(name, gid), Tpe: cellType()}
}

func frameOf(params ...ast.ValDef) *ast.FiniteSet {
	elems := make([]ast.Expr, 0, len(params))
	for _, param := range params {
		elems = append(elems, param.ToVar())
	}
	return &ast.FiniteSet{Elems: elems, Base: cellType()}
}

func newElaborator(t *testing.T, symbols *ast.Symbols) (*elab.Elaborator, *verr.Reporter) {
	t.Helper()
	reporter := verr.NewReporter()
	return elab.NewElaborator(symbols, reporter, elab.DefaultConfig()), reporter
}

// subExprs returns every expression node reachable from e; defExprs does the
// same for a whole definition, including its clause and postcondition
// expressions.
func subExprs(e ast.Expr) []ast.Expr {
	if e == nil {
		return nil
	}
	var out []ast.Expr
	e.Transform(func(sub ast.Expr) ast.Expr {
		out = append(out, sub)
		return sub
	})
	return out
}

func defExprs(def *ast.FunDef) []ast.Expr {
	out := subExprs(def.Body)
	for _, requires := range def.Spec.Requires {
		out = append(out, subExprs(requires)...)
	}
	if def.Spec.Decreases != nil {
		out = append(out, subExprs(def.Spec.Decreases)...)
	}
	if def.Spec.Reads != nil {
		out = append(out, subExprs(def.Spec.Reads)...)
	}
	if def.Spec.Modifies != nil {
		out = append(out, subExprs(def.Spec.Modifies)...)
	}
	for _, post := range def.Spec.Ensures {
		out = append(out, subExprs(post.Pred)...)
	}
	return out
}

func functionNamed(t *testing.T, symbols *ast.Symbols, name string) *ast.FunDef {
	t.Helper()
	var found *ast.FunDef
	for _, id := range symbols.SortedFunctionIDs() {
		if id.Name == name {
			require.Nil(t, found, "more than one function named %s", name)
			def, ok := symbols.Function(id)
			require.True(t, ok)
			found = def
		}
	}
	require.NotNil(t, found, "no function named %s", name)
	return found
}

func functionsNamed(symbols *ast.Symbols, name string) []*ast.FunDef {
	var found []*ast.FunDef
	for _, id := range symbols.SortedFunctionIDs() {
		if id.Name == name {
			def, _ := symbols.Function(id)
			found = append(found, def)
		}
	}
	return found
}

func peekFun() *ast.FunDef {
	param := cellParam("c", 10)
	return &ast.FunDef{
		Id:         ast.NewIdentifier("peek", 11),
		Params:     []ast.ValDef{param},
		ReturnType: &ast.IntType{},
		Spec:       ast.FunSpec{Reads: frameOf(param)},
		Body:       &ast.FieldSelect{Recv: param.ToVar(), Field: valueField},
	}
}

func bumpFun() *ast.FunDef {
	param := cellParam("c", 20)
	return &ast.FunDef{
		Id:         ast.NewIdentifier("bump", 21),
		Params:     []ast.ValDef{param},
		ReturnType: &ast.UnitType{},
		Spec: ast.FunSpec{
			Reads:    frameOf(param),
			Modifies: frameOf(param),
		},
		Body: &ast.FieldAssign{
			Recv:  param.ToVar(),
			Field: valueField,
			Value: &ast.FieldSelect{Recv: param.ToVar(), Field: valueField},
		},
	}
}

func heapSymbols(funs ...*ast.FunDef) *ast.Symbols {
	return ast.NewSymbols(funs, []*ast.ClassDef{anyRefClass(), cellClass()}, nil, nil)
}

// S1: a pure function passes through with the same id and no new params.
func TestPurePassThrough(t *testing.T) {
	param := ast.ValDef{Id: ast.NewIdentifier("x", 30), Tpe: &ast.IntType{}}
	identity := &ast.FunDef{
		Id:         ast.NewIdentifier("id", 31),
		Params:     []ast.ValDef{param},
		ReturnType: &ast.IntType{},
		Body:       param.ToVar(),
	}
	symbols := ast.NewSymbols([]*ast.FunDef{identity}, nil, nil, nil)
	x, reporter := newElaborator(t, symbols)
	out := x.Run()

	assert.False(t, reporter.HasError())
	assert.Len(t, functionsNamed(out, "id"), 1)

	outId := functionNamed(t, out, "id")
	assert.Equal(t, identity.Id, outId.Id)
	require.Len(t, outId.Params, 1)
	assert.Equal(t, param.Id, outId.Params[0].Id)
	assert.Empty(t, functionsNamed(out, "id__shim"))

	for _, sub := range defExprs(outId) {
		if call, ok := sub.(*ast.Call); ok {
			assert.NotEqual(t, ast.HeapRefID.Name, call.Callee.Name)
		}
	}
}

// S2: a read-only function splits into an inner taking the heap and a shim
// checking reads containment before merging the heap it passes on.
func TestReadOnlyAccess(t *testing.T) {
	symbols := heapSymbols(peekFun())
	x, reporter := newElaborator(t, symbols)
	out := x.Run()

	assert.False(t, reporter.HasError())

	inner := functionNamed(t, out, "peek")
	require.Len(t, inner.Params, 2)
	assert.IsType(t, &ast.HeapType{}, inner.Params[0].Tpe)
	assert.Equal(t, "heap0", inner.Params[0].Id.Name)
	paramType, ok := inner.Params[1].Tpe.(*ast.SortType)
	require.True(t, ok, "heap-class parameter should become a HeapRef, got %v", ast.TypeString(inner.Params[1].Tpe))
	assert.Equal(t, ast.HeapRefID, paramType.Id)
	assert.IsType(t, &ast.IntType{}, inner.ReturnType)

	// the body binds the translated reads set, then dereferences the heap
	readsLet, ok := inner.Body.(*ast.Let)
	require.True(t, ok)
	assert.Equal(t, "reads", readsLet.Binder.Id.Name)
	assert.IsType(t, &ast.FiniteSet{}, readsLet.Value)

	var containsAssert *ast.Assert
	var heapApply *ast.MapApply
	for _, sub := range subExprs(inner.Body) {
		switch sub := sub.(type) {
		case *ast.Assert:
			if _, ok := sub.Pred.(*ast.SetContains); ok {
				containsAssert = sub
			}
		case *ast.MapApply:
			heapApply = sub
		}
	}
	require.NotNil(t, containsAssert, "heap read should assert reads membership")
	require.NotNil(t, heapApply, "heap read should look up the heap map")
	heapVar, ok := heapApply.Map.(*ast.Var)
	require.True(t, ok)
	assert.Equal(t, "heap0", heapVar.Id.Name)

	shim := functionNamed(t, out, "peek__shim")
	require.Len(t, shim.Params, 3)
	assert.IsType(t, &ast.HeapType{}, shim.Params[0].Tpe)
	assert.IsType(t, &ast.SetType{}, shim.Params[1].Tpe)
	assert.True(t, shim.Flags.Has(ast.Synthetic.FlagName()))
	assert.True(t, shim.Flags.Has(ast.DropVCs.FlagName()))
	assert.True(t, shim.Flags.Has(ast.InlineOnce.FlagName()))

	var subsetAssert *ast.Assert
	var merge *ast.MapMerge
	var innerCall *ast.Call
	for _, sub := range subExprs(shim.Body) {
		switch sub := sub.(type) {
		case *ast.Assert:
			if _, ok := sub.Pred.(*ast.SetSubset); ok {
				subsetAssert = sub
			}
		case *ast.MapMerge:
			merge = sub
		case *ast.Call:
			if sub.Callee == inner.Id {
				innerCall = sub
			}
		}
	}
	require.NotNil(t, subsetAssert, "shim should assert reads within readsDom")
	require.NotNil(t, merge, "shim should merge the caller heap with dummyHeap")
	require.NotNil(t, innerCall, "shim should call the inner function")
	dummy, ok := merge.Right.(*ast.Call)
	require.True(t, ok)
	assert.Equal(t, ast.DummyHeapID, dummy.Callee)
	// synthesized call sites carry no position for the inliner to stamp
	assert.Equal(t, ast.Range{}, ast.RangeOf(innerCall))
}

// S3: a writing function's inner returns the (value, heap) pair and the
// shim merges only the modifies frame back into the caller's heap.
func TestWrite(t *testing.T) {
	symbols := heapSymbols(bumpFun())
	x, reporter := newElaborator(t, symbols)
	out := x.Run()

	assert.False(t, reporter.HasError())

	inner := functionNamed(t, out, "bump")
	require.Len(t, inner.Params, 2)
	assert.IsType(t, &ast.HeapType{}, inner.Params[0].Tpe)
	pair, ok := inner.ReturnType.(*ast.TupleType)
	require.True(t, ok)
	require.Len(t, pair.Bases, 2)
	assert.IsType(t, &ast.UnitType{}, pair.Bases[0])
	assert.IsType(t, &ast.HeapType{}, pair.Bases[1])

	var letMut *ast.LetMut
	var updated *ast.MapUpdated
	var resultTuple *ast.Tuple
	var modifiesSubset *ast.Assert
	for _, sub := range subExprs(inner.Body) {
		switch sub := sub.(type) {
		case *ast.LetMut:
			letMut = sub
		case *ast.MapUpdated:
			updated = sub
		case *ast.Tuple:
			resultTuple = sub
		case *ast.Assert:
			if sub.Msg == "modifies set not within reads set" {
				modifiesSubset = sub
			}
		}
	}
	require.NotNil(t, letMut, "writing body should allocate a mutable heap binding")
	assert.Equal(t, "heap", letMut.Binder.Id.Name)
	require.NotNil(t, updated, "field write should update the heap map")
	require.NotNil(t, resultTuple, "writing body should return the (value, heap) pair")
	require.NotNil(t, modifiesSubset, "inner should assert modifies within reads")

	shim := functionNamed(t, out, "bump__shim")
	require.Len(t, shim.Params, 4)
	assert.IsType(t, &ast.HeapType{}, shim.Params[0].Tpe)
	assert.IsType(t, &ast.SetType{}, shim.Params[1].Tpe)
	assert.IsType(t, &ast.SetType{}, shim.Params[2].Tpe)
	shimPair, ok := shim.ReturnType.(*ast.TupleType)
	require.True(t, ok)
	assert.IsType(t, &ast.HeapType{}, shimPair.Bases[1])

	merges := 0
	for _, sub := range subExprs(shim.Body) {
		if _, ok := sub.(*ast.MapMerge); ok {
			merges++
		}
	}
	// one merge going in (reads mask), one coming out (modifies mask)
	assert.Equal(t, 2, merges)
}

// S4: in a writing function's postcondition, old(…) reads the input heap
// and everything else reads the output heap.
func TestPostconditionOldSplitsHeaps(t *testing.T) {
	a := cellParam("a", 40)
	b := cellParam("b", 41)
	resBinder := ast.ValDef{Id: ast.NewIdentifier("res", 42), Tpe: &ast.UnitType{}}
	swap := &ast.FunDef{
		Id:         ast.NewIdentifier("swap", 43),
		Params:     []ast.ValDef{a, b},
		ReturnType: &ast.UnitType{},
		Spec: ast.FunSpec{
			Reads:    frameOf(a, b),
			Modifies: frameOf(a, b),
			Ensures: []ast.Postcondition{{
				Binder: resBinder,
				Pred: &ast.Equals{
					Lhs: &ast.FieldSelect{Recv: a.ToVar(), Field: valueField},
					Rhs: &ast.Old{X: &ast.FieldSelect{Recv: b.ToVar(), Field: valueField}},
				},
			}},
		},
		Body: &ast.UnitLit{},
	}
	symbols := heapSymbols(swap)
	x, reporter := newElaborator(t, symbols)
	out := x.Run()

	assert.False(t, reporter.HasError())
	inner := functionNamed(t, out, "swap")
	require.Len(t, inner.Spec.Ensures, 1)

	post := inner.Spec.Ensures[0]
	pairType, ok := post.Binder.Tpe.(*ast.TupleType)
	require.True(t, ok, "postcondition binder should bind the (value, heap) pair")
	assert.IsType(t, &ast.HeapType{}, pairType.Bases[1])

	heapsRead := map[string]bool{}
	for _, sub := range subExprs(post.Pred) {
		apply, ok := sub.(*ast.MapApply)
		if !ok {
			continue
		}
		if mapVar, ok := apply.Map.(*ast.Var); ok {
			heapsRead[mapVar.Id.Name] = true
		}
	}
	assert.True(t, heapsRead["heap1"], "plain sub-expressions should read the output heap")
	assert.True(t, heapsRead["heap0"], "old(…) should read the input heap")

	// no old(…) marker survives the rewrite
	for _, sub := range subExprs(post.Pred) {
		_, isOld := sub.(*ast.Old)
		assert.False(t, isOld)
	}
}

// S5: a class pattern over a heap class becomes an unapply pattern that
// passes the heap and a some(reads) domain.
func TestHeapClassPattern(t *testing.T) {
	param := cellParam("m", 50)
	binder := ast.ValDef{Id: ast.NewIdentifier("v", 51), Tpe: &ast.IntType{}}
	matcher := &ast.FunDef{
		Id:         ast.NewIdentifier("open", 52),
		Params:     []ast.ValDef{param},
		ReturnType: &ast.IntType{},
		Spec:       ast.FunSpec{Reads: frameOf(param)},
		Body: &ast.Match{
			Scrutinee: param.ToVar(),
			Cases: []ast.MatchCase{{
				Pattern: &ast.ClassPattern{
					Tpe: cellType(),
					Sub: []ast.Pattern{&ast.WildcardPattern{Binder: &binder}},
				},
				Body: binder.ToVar(),
			}},
		},
	}
	symbols := heapSymbols(matcher)
	x, reporter := newElaborator(t, symbols)
	out := x.Run()

	assert.False(t, reporter.HasError())
	inner := functionNamed(t, out, "open")

	var match *ast.Match
	for _, sub := range subExprs(inner.Body) {
		if found, ok := sub.(*ast.Match); ok {
			match = found
		}
	}
	require.NotNil(t, match)
	require.Len(t, match.Cases, 1)

	unapply, ok := match.Cases[0].Pattern.(*ast.UnapplyPattern)
	require.True(t, ok, "heap class pattern should become an unapply pattern")
	assert.Equal(t, "unapply_Cell", unapply.Id.Name)
	require.Len(t, unapply.RecArgs, 2)

	heapArg, ok := unapply.RecArgs[0].(*ast.Var)
	require.True(t, ok)
	assert.Equal(t, "heap0", heapArg.Id.Name)

	someCall, ok := unapply.RecArgs[1].(*ast.Call)
	require.True(t, ok)
	assert.Equal(t, ast.SomeID, someCall.Callee)
	require.Len(t, someCall.Args, 1)
	readsArg, ok := someCall.Args[0].(*ast.Var)
	require.True(t, ok)
	assert.Equal(t, "reads", readsArg.Id.Name)

	require.Len(t, unapply.Sub, 1)
	innerPattern, ok := unapply.Sub[0].(*ast.ClassPattern)
	require.True(t, ok)
	assert.Equal(t, cellID, innerPattern.Tpe.Id)

	// the extractor itself is in the output table, flagged for downstream
	extractor := functionNamed(t, out, "unapply_Cell")
	assert.True(t, extractor.Flags.Has(ast.Synthetic.FlagName()))
	assert.True(t, extractor.Flags.Has(ast.DropVCs.FlagName()))
	assert.True(t, extractor.Flags.Has("isUnapply"))
	require.Len(t, extractor.Spec.Requires, 1)
	assert.IsType(t, &ast.Or{}, extractor.Spec.Requires[0])
}

// S6: reading a heap field in a function without a reads clause reports
// exactly one diagnostic and the pass still completes.
func TestMissingReadsClauseDiagnostic(t *testing.T) {
	param := cellParam("c", 60)
	bad := &ast.FunDef{
		Id:         ast.NewIdentifier("bad", 61),
		Params:     []ast.ValDef{param},
		ReturnType: &ast.IntType{},
		Body:       &ast.FieldSelect{Recv: param.ToVar(), Field: valueField},
	}
	symbols := heapSymbols(bad)
	x, reporter := newElaborator(t, symbols)
	out := x.Run()

	require.NotNil(t, out)
	errs := reporter.Errors().Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "Cannot read from heap object without a reads clause", errs[0].Error())
	assert.Equal(t, verr.MissingReadsClause, errs[0].Code())

	// the table still contains the function, rewritten best-effort
	assert.Len(t, functionsNamed(out, "bad"), 1)
}
