// Package elab compiles heap-manipulating object operations away into pure
// functions over an explicit heap value.
//
// Functions that declare a reads or modifies clause are split in two: an
// inner function taking the heap as a leading parameter (and returning the
// updated heap when it writes), and a shim that checks the caller's frame
// against the callee's and merges the two heaps. Every call site of an
// effectful function is redirected to its shim. Classes below the
// anyHeapRef marker become cells of the heap map and their types collapse
// to the opaque HeapRef sort.
package elab

import (
	"log/slog"

	"github.com/cottand/strata/ast"
	"github.com/cottand/strata/internal/log"
	"github.com/cottand/strata/verr"
)

// Config carries the pass options.
type Config struct {
	// CheckHeapContracts inserts the frame-condition assertions (reads and
	// modifies membership at access sites, frame inclusion in shims). When
	// false the assertions collapse to their continuations.
	CheckHeapContracts bool
}

func DefaultConfig() Config {
	return Config{CheckHeapContracts: true}
}

// Elaborator is one run of the pass over a symbol table. It may rewrite
// independent definitions from several goroutines; the caches are safe to
// share and the reporter is assumed thread-safe.
type Elaborator struct {
	symbols  *ast.Symbols
	reporter *verr.Reporter
	config   Config

	heapClasses *onceMap[ast.Identifier, bool]
	effects     *onceMap[ast.Identifier, Effect]
	shimIDs     *onceMap[ast.Identifier, ast.Identifier]
	unapplyIDs  *onceMap[ast.Identifier, ast.Identifier]

	*slog.Logger
}

func NewElaborator(symbols *ast.Symbols, reporter *verr.Reporter, config Config) *Elaborator {
	return &Elaborator{
		symbols:     symbols,
		reporter:    reporter,
		config:      config,
		heapClasses: newOnceMap[ast.Identifier, bool](),
		effects:     newOnceMap[ast.Identifier, Effect](),
		shimIDs:     newOnceMap[ast.Identifier, ast.Identifier](),
		unapplyIDs:  newOnceMap[ast.Identifier, ast.Identifier](),
		Logger:      log.DefaultLogger.With("section", "elab"),
	}
}

// shimID returns the identifier of the frame-checking wrapper of an
// effectful function. Derived from the function's own id, so it is the
// same across runs and across goroutines.
func (x *Elaborator) shimID(id ast.Identifier) ast.Identifier {
	return x.shimIDs.getOrCompute(id, func() ast.Identifier {
		return ast.DerivedIdentifier(id, "__shim")
	})
}

// unapplyID returns the identifier of the extractor synthesized for a heap
// class.
func (x *Elaborator) unapplyID(id ast.Identifier) ast.Identifier {
	return x.unapplyIDs.getOrCompute(id, func() ast.Identifier {
		return ast.DerivedNamed(id, "unapply_"+id.Name)
	})
}
