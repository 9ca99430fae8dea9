package verr

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/cottand/strata/ast"
)

// enableDebugErrorPrinting makes errors include their stacktrace when printed
const enableDebugErrorPrinting bool = true
const enableDebugFullStacktrace bool = false

type ErrCode int

const (
	None ErrCode = iota
	HeapConstruct
	MissingReadsClause
	MissingModifiesClause
	ModifyInReadOnly
	FunctionValuedHeapField
)

// Error is a diagnostic with a position in the user's program.
type Error interface {
	Error() string
	Code() ErrCode
	ast.Positioner

	withStack([]byte) Error
	getStack() []byte
}

func FormatWithCode(e Error) string {
	if enableDebugErrorPrinting && e.getStack() != nil {
		stack := string(e.getStack())
		if !enableDebugFullStacktrace {
			stack = strings.Split(stack, "\n")[6]
		}
		return fmt.Sprintf("%s:(E%03d) %s", stack, e.Code(), e.Error())
	}
	return fmt.Sprintf("(E%03d) %s", e.Code(), e.Error())
}

func New[E Error](err E) Error {
	return err.withStack(debug.Stack())
}

// Errors accumulates diagnostics. The nil *Errors is a valid empty value.
type Errors struct {
	errs []Error
}

func (r *Errors) With(err ...Error) *Errors {
	if r == nil {
		return &Errors{errs: err}
	}
	for _, err := range err {
		r.errs = append(r.errs, err)
	}
	return r
}

func (r *Errors) Merge(err *Errors) *Errors {
	if r == nil {
		return err
	}
	if err == nil {
		return r
	}
	if len(err.errs) == 0 {
		return r
	}
	return r.With(err.errs...)
}

func (r *Errors) Errors() []Error {
	if r == nil {
		return nil
	}
	return r.errs
}

func (r *Errors) HasError() bool {
	if r == nil {
		return false
	}
	return len(r.errs) > 0
}

func (r *Errors) LogValue() slog.Value {
	var vals []slog.Attr
	for i, v := range r.errs {
		vals = append(vals, slog.Attr{
			Key: fmt.Sprint("e", i),
			Value: slog.GroupValue(
				slog.Attr{
					Key:   "msg",
					Value: slog.StringValue(FormatWithCode(v)),
				},
			),
		})
	}
	return slog.GroupValue(vals...)
}

// Reporter is the sink passes report diagnostics to. Definitions are
// rewritten in parallel, so every method is safe for concurrent use.
type Reporter struct {
	mu   sync.Mutex
	errs *Errors
}

func NewReporter() *Reporter {
	return &Reporter{}
}

func (r *Reporter) Report(errs ...Error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = r.errs.With(errs...)
}

func (r *Reporter) Errors() *Errors {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errs
}

func (r *Reporter) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs.Errors())
}

func (r *Reporter) HasError() bool {
	return r.Count() > 0
}
