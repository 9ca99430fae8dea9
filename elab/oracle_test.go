package elab_test

import (
	"testing"

	"github.com/cottand/strata/ast"
	"github.com/stretchr/testify/assert"
)

func TestOracleMarkerAndDescendants(t *testing.T) {
	plainID := ast.NewIdentifier("Plain", 70)
	plain := &ast.ClassDef{Id: plainID}
	symbols := ast.NewSymbols(nil, []*ast.ClassDef{anyRefClass(), cellClass(), boxClass(), plain}, nil, nil)
	x, _ := newElaborator(t, symbols)

	assert.True(t, x.IsHeapType(&ast.ClassType{Id: anyRefID}), "the marker class itself is heap-resident")
	assert.True(t, x.IsHeapType(&ast.ClassType{Id: cellID}), "direct children of the marker are heap-resident")
	assert.True(t, x.IsHeapType(&ast.ClassType{Id: boxID}), "heap-residency is transitive")
	assert.False(t, x.IsHeapType(&ast.ClassType{Id: plainID}), "classes outside the marker hierarchy are values")
}

func TestOracleNonClassShapes(t *testing.T) {
	symbols := ast.NewSymbols(nil, []*ast.ClassDef{anyRefClass(), cellClass()}, nil, nil)
	x, _ := newElaborator(t, symbols)

	heapCell := &ast.ClassType{Id: cellID}
	for _, tpe := range []ast.Type{
		&ast.IntType{},
		&ast.BoolType{},
		&ast.TupleType{Bases: []ast.Type{heapCell}},
		&ast.FunctionType{From: []ast.Type{heapCell}, To: heapCell},
		&ast.SetType{Base: heapCell},
		&ast.SortType{Id: ast.HeapRefID},
		&ast.TypeParamUse{Id: ast.NewIdentifier("T", 71)},
	} {
		assert.False(t, x.IsHeapType(tpe), "%v should not be heap-resident", ast.TypeString(tpe))
	}
}

func TestOracleAnswersAreStable(t *testing.T) {
	symbols := ast.NewSymbols(nil, []*ast.ClassDef{anyRefClass(), cellClass(), boxClass()}, nil, nil)
	x, _ := newElaborator(t, symbols)

	// both queries agree with each other and with a fresh elaborator
	first := x.IsHeapType(&ast.ClassType{Id: boxID})
	second := x.IsHeapType(&ast.ClassType{Id: boxID})
	assert.Equal(t, first, second)

	fresh, _ := newElaborator(t, symbols)
	assert.Equal(t, first, fresh.IsHeapType(&ast.ClassType{Id: boxID}))
}
