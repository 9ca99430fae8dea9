package verr

import (
	"fmt"

	"github.com/cottand/strata/ast"
)

// NewHeapConstruct reports a heap-accessing construct in a context where no
// heap is available at all, like a pure function body.
type NewHeapConstruct struct {
	ast.Positioner
	Usage string
	stack []byte
}

func (e NewHeapConstruct) Error() string {
	return fmt.Sprintf("Cannot use heap-accessing construct (%s) here", e.Usage)
}
func (e NewHeapConstruct) Code() ErrCode    { return HeapConstruct }
func (e NewHeapConstruct) getStack() []byte { return e.stack }
func (e NewHeapConstruct) withStack(stack []byte) Error {
	e.stack = stack
	return e
}

type NewMissingReadsClause struct {
	ast.Positioner
	Usage string
	stack []byte
}

func (e NewMissingReadsClause) Error() string {
	return fmt.Sprintf("Cannot %s without a reads clause", e.Usage)
}
func (e NewMissingReadsClause) Code() ErrCode    { return MissingReadsClause }
func (e NewMissingReadsClause) getStack() []byte { return e.stack }
func (e NewMissingReadsClause) withStack(stack []byte) Error {
	e.stack = stack
	return e
}

type NewMissingModifiesClause struct {
	ast.Positioner
	Usage string
	stack []byte
}

func (e NewMissingModifiesClause) Error() string {
	return fmt.Sprintf("Cannot %s without a modifies clause", e.Usage)
}
func (e NewMissingModifiesClause) Code() ErrCode    { return MissingModifiesClause }
func (e NewMissingModifiesClause) getStack() []byte { return e.stack }
func (e NewMissingModifiesClause) withStack(stack []byte) Error {
	e.stack = stack
	return e
}

type NewModifyInReadOnly struct {
	ast.Positioner
	stack []byte
}

func (e NewModifyInReadOnly) Error() string {
	return "Can't modify heap in read-only context"
}
func (e NewModifyInReadOnly) Code() ErrCode    { return ModifyInReadOnly }
func (e NewModifyInReadOnly) getStack() []byte { return e.stack }
func (e NewModifyInReadOnly) withStack(stack []byte) Error {
	e.stack = stack
	return e
}

// NewFunctionValuedHeapField rejects storing a first-class function in a
// heap class; threading the heap through function values is not supported.
type NewFunctionValuedHeapField struct {
	ast.Positioner
	ClassName string
	FieldName string
	stack     []byte
}

func (e NewFunctionValuedHeapField) Error() string {
	return fmt.Sprintf("heap class '%s' cannot store function-valued field '%s'", e.ClassName, e.FieldName)
}
func (e NewFunctionValuedHeapField) Code() ErrCode    { return FunctionValuedHeapField }
func (e NewFunctionValuedHeapField) getStack() []byte { return e.stack }
func (e NewFunctionValuedHeapField) withStack(stack []byte) Error {
	e.stack = stack
	return e
}
