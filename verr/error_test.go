package verr_test

import (
	"sync"
	"testing"

	"github.com/cottand/strata/ast"
	"github.com/cottand/strata/verr"
	"github.com/stretchr/testify/assert"
)

func TestErrorsNilReceiverIsEmpty(t *testing.T) {
	var errs *verr.Errors
	assert.False(t, errs.HasError())
	assert.Empty(t, errs.Errors())

	errs = errs.With(verr.New(verr.NewModifyInReadOnly{Positioner: ast.Range{}}))
	assert.True(t, errs.HasError())
	assert.Len(t, errs.Errors(), 1)
}

func TestErrorMessages(t *testing.T) {
	cases := []struct {
		err      verr.Error
		expected string
	}{
		{verr.NewHeapConstruct{Positioner: ast.Range{}, Usage: "class constructor"}, "Cannot use heap-accessing construct (class constructor) here"},
		{verr.NewMissingReadsClause{Positioner: ast.Range{}, Usage: "read from heap object"}, "Cannot read from heap object without a reads clause"},
		{verr.NewMissingModifiesClause{Positioner: ast.Range{}, Usage: "write to heap object"}, "Cannot write to heap object without a modifies clause"},
		{verr.NewModifyInReadOnly{Positioner: ast.Range{}}, "Can't modify heap in read-only context"},
	}
	for _, c := range cases {
		assert.Equal(t, c.expected, c.err.Error())
	}
}

func TestReporterIsSafeForConcurrentUse(t *testing.T) {
	reporter := verr.NewReporter()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reporter.Report(verr.New(verr.NewModifyInReadOnly{Positioner: ast.Range{}}))
		}()
	}
	wg.Wait()
	assert.Equal(t, 32, reporter.Count())
	assert.True(t, reporter.HasError())
}
