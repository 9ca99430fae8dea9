package elab_test

import (
	"testing"

	"github.com/cottand/strata/ast"
	"github.com/cottand/strata/elab"
	"github.com/stretchr/testify/assert"
)

func TestEffectClassification(t *testing.T) {
	param := cellParam("c", 80)
	pure := &ast.FunDef{
		Id:         ast.NewIdentifier("pureFn", 81),
		ReturnType: &ast.IntType{},
		Body:       &ast.Literal{Syntax: "1"},
	}
	readsOnly := &ast.FunDef{
		Id:         ast.NewIdentifier("readsFn", 82),
		Params:     []ast.ValDef{param},
		ReturnType: &ast.UnitType{},
		Spec:       ast.FunSpec{Reads: frameOf(param)},
		Body:       &ast.UnitLit{},
	}
	writer := &ast.FunDef{
		Id:         ast.NewIdentifier("writesFn", 83),
		Params:     []ast.ValDef{param},
		ReturnType: &ast.UnitType{},
		Spec:       ast.FunSpec{Reads: frameOf(param), Modifies: frameOf(param)},
		Body:       &ast.UnitLit{},
	}
	// a modifies clause alone still implies reads
	writerNoReads := &ast.FunDef{
		Id:         ast.NewIdentifier("writesOnlyFn", 84),
		Params:     []ast.ValDef{param},
		ReturnType: &ast.UnitType{},
		Spec:       ast.FunSpec{Modifies: frameOf(param)},
		Body:       &ast.UnitLit{},
	}

	symbols := ast.NewSymbols(
		[]*ast.FunDef{pure, readsOnly, writer, writerNoReads},
		[]*ast.ClassDef{anyRefClass(), cellClass()},
		nil, nil,
	)
	x, _ := newElaborator(t, symbols)

	assert.Equal(t, elab.Pure, x.EffectLevel(pure.Id))
	assert.Equal(t, elab.Reads, x.EffectLevel(readsOnly.Id))
	assert.Equal(t, elab.ReadsWrites, x.EffectLevel(writer.Id))
	assert.Equal(t, elab.ReadsWrites, x.EffectLevel(writerNoReads.Id))

	assert.False(t, elab.Pure.Effectful())
	assert.True(t, elab.Reads.Effectful())
	assert.False(t, elab.Reads.Writes())
	assert.True(t, elab.ReadsWrites.Writes())
}
