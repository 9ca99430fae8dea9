package ast_test

import (
	"testing"

	"github.com/cottand/strata/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivedIdentifiersAreDeterministic(t *testing.T) {
	base := ast.NewIdentifier("peek", 11)

	shim1 := ast.DerivedIdentifier(base, "__shim")
	shim2 := ast.DerivedIdentifier(base, "__shim")
	assert.Equal(t, shim1, shim2)
	assert.Equal(t, "peek__shim", shim1.Name)

	named1 := ast.DerivedNamed(base, "heap0")
	named2 := ast.DerivedNamed(base, "heap0")
	assert.Equal(t, named1, named2)
	assert.Equal(t, "heap0", named1.Name)

	other := ast.DerivedIdentifier(ast.NewIdentifier("peek", 12), "__shim")
	assert.NotEqual(t, shim1.Gid, other.Gid, "different bases should derive different ids")
}

func TestSymbolsAreImmutable(t *testing.T) {
	funA := &ast.FunDef{Id: ast.NewIdentifier("a", 1), ReturnType: &ast.IntType{}}
	funB := &ast.FunDef{Id: ast.NewIdentifier("b", 2), ReturnType: &ast.IntType{}}

	before := ast.NewSymbols([]*ast.FunDef{funA}, nil, nil, nil)
	after := before.WithFunctions(funB)

	_, inBefore := before.Function(funB.Id)
	assert.False(t, inBefore, "extending a table must not mutate the original")
	_, inAfter := after.Function(funB.Id)
	assert.True(t, inAfter)
	_, stillThere := after.Function(funA.Id)
	assert.True(t, stillThere)
}

func TestSortedIDsAreStableAndDeduped(t *testing.T) {
	funA := &ast.FunDef{Id: ast.NewIdentifier("a", 1)}
	funB := &ast.FunDef{Id: ast.NewIdentifier("b", 2)}
	funA2 := &ast.FunDef{Id: ast.NewIdentifier("a", 3)}

	symbols := ast.NewSymbols([]*ast.FunDef{funB, funA2, funA}, nil, nil, nil)
	ids := symbols.SortedFunctionIDs()
	require.Len(t, ids, 3)
	assert.Equal(t, "a", ids[0].Name)
	assert.Equal(t, uint64(1), ids[0].Gid)
	assert.Equal(t, "a", ids[1].Name)
	assert.Equal(t, uint64(3), ids[1].Gid)
	assert.Equal(t, "b", ids[2].Name)

	// registering the same definition twice keeps one entry
	again := symbols.WithFunctions(funA)
	assert.Len(t, again.SortedFunctionIDs(), 3)
}

func TestTransformCopiesBottomUp(t *testing.T) {
	original := &ast.Equals{
		Lhs: &ast.Var{Id: ast.NewIdentifier("x", 1)},
		Rhs: &ast.Literal{Syntax: "1"},
	}

	var visited []string
	result := original.Transform(func(e ast.Expr) ast.Expr {
		visited = append(visited, e.Describe())
		if v, ok := e.(*ast.Var); ok {
			v.Id = ast.NewIdentifier("y", 2)
			return v
		}
		return e
	})

	assert.Equal(t, []string{"variable", "literal", "equality"}, visited)
	assert.Equal(t, "x", original.Lhs.(*ast.Var).Id.Name, "the original tree is untouched")
	assert.Equal(t, "y", result.(*ast.Equals).Lhs.(*ast.Var).Id.Name)
}

func TestFlagSetOperations(t *testing.T) {
	flags := ast.FlagSet{}.With(ast.Synthetic, ast.DropVCs)
	assert.True(t, flags.Has("synthetic"))
	assert.True(t, flags.Has("dropVCs"))
	assert.False(t, flags.Has("inlineOnce"))

	// With skips names already present
	same := flags.With(ast.Synthetic)
	assert.Len(t, same, 2)

	unapply := flags.With(ast.IsUnapply{IsEmpty: ast.OptionIsEmptyID, Get: ast.OptionGetID})
	assert.True(t, unapply.Has("isUnapply"))

	without := unapply.Without("dropVCs")
	assert.False(t, without.Has("dropVCs"))
	assert.True(t, without.Has("synthetic"))
}

func TestStructurallyEqualTreesHashEqual(t *testing.T) {
	build := func() ast.Expr {
		return &ast.Let{
			Binder: ast.ValDef{Id: ast.NewIdentifier("x", 1), Tpe: &ast.IntType{}},
			Value:  &ast.Literal{Syntax: "1"},
			Body:   &ast.Var{Id: ast.NewIdentifier("x", 1)},
		}
	}
	assert.Equal(t, build().Hash(), build().Hash())

	different := &ast.Let{
		Binder: ast.ValDef{Id: ast.NewIdentifier("x", 1), Tpe: &ast.IntType{}},
		Value:  &ast.Literal{Syntax: "2"},
		Body:   &ast.Var{Id: ast.NewIdentifier("x", 1)},
	}
	assert.NotEqual(t, build().Hash(), different.Hash())
}
