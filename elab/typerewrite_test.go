package elab_test

import (
	"testing"

	"github.com/cottand/strata/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewriteTypeReplacesHeapClasses(t *testing.T) {
	symbols := ast.NewSymbols(nil, []*ast.ClassDef{anyRefClass(), cellClass()}, nil, nil)
	x, _ := newElaborator(t, symbols)

	rewritten := x.RewriteType(cellType())
	sortType, ok := rewritten.(*ast.SortType)
	require.True(t, ok)
	assert.Equal(t, ast.HeapRefID, sortType.Id)
}

func TestRewriteTypeRecursesThroughShapes(t *testing.T) {
	symbols := ast.NewSymbols(nil, []*ast.ClassDef{anyRefClass(), cellClass()}, nil, nil)
	x, _ := newElaborator(t, symbols)

	nested := &ast.TupleType{Bases: []ast.Type{
		&ast.SetType{Base: cellType()},
		&ast.FunctionType{From: []ast.Type{cellType()}, To: &ast.IntType{}},
		&ast.MapType{From: &ast.IntType{}, To: cellType()},
	}}
	rewritten := x.RewriteType(nested)

	var sawClass bool
	ast.TransformType(rewritten, func(t ast.Type) ast.Type {
		if _, ok := t.(*ast.ClassType); ok {
			sawClass = true
		}
		return t
	})
	assert.False(t, sawClass, "no heap class type may survive the rewrite")
}

func TestRewriteTypePreservesPositions(t *testing.T) {
	symbols := ast.NewSymbols(nil, []*ast.ClassDef{anyRefClass(), cellClass()}, nil, nil)
	x, _ := newElaborator(t, symbols)

	at := ast.Range{PosStart: 5, PosEnd: 9}
	rewritten := x.RewriteType(&ast.ClassType{Range: at, Id: cellID})
	assert.Equal(t, at, ast.RangeOf(rewritten))
}

func TestRewriteTypeIsIdempotent(t *testing.T) {
	symbols := ast.NewSymbols(nil, []*ast.ClassDef{anyRefClass(), cellClass(), boxClass()}, nil, nil)
	x, _ := newElaborator(t, symbols)

	for _, tpe := range []ast.Type{
		cellType(),
		&ast.ClassType{Id: boxID},
		&ast.TupleType{Bases: []ast.Type{cellType(), &ast.IntType{}}},
		&ast.SetType{Base: &ast.ClassType{Id: boxID}},
		&ast.IntType{},
	} {
		once := x.RewriteType(tpe)
		twice := x.RewriteType(once)
		assert.Equal(t, once.Hash(), twice.Hash(), "rewriting %v twice should equal rewriting once", ast.TypeString(tpe))
	}
}

func TestRewriteTypeLeavesValueClasses(t *testing.T) {
	plainID := ast.NewIdentifier("Plain", 90)
	plain := &ast.ClassDef{Id: plainID}
	symbols := ast.NewSymbols(nil, []*ast.ClassDef{anyRefClass(), cellClass(), plain}, nil, nil)
	x, _ := newElaborator(t, symbols)

	rewritten := x.RewriteType(&ast.ClassType{Id: plainID})
	classType, ok := rewritten.(*ast.ClassType)
	require.True(t, ok)
	assert.Equal(t, plainID, classType.Id)
}
