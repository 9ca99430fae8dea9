package elab

import (
	"sync"

	"github.com/cottand/strata/ast"
	"github.com/cottand/strata/verr"
	"github.com/hashicorp/go-set/v3"
)

// Run elaborates a whole symbol table with the default configuration.
func Run(symbols *ast.Symbols, reporter *verr.Reporter) *ast.Symbols {
	return NewElaborator(symbols, reporter, DefaultConfig()).Run()
}

// Run rewrites every definition of the input table and assembles the
// output table: definitions carrying the anyHeapRef or refEq markers are
// dropped, every heap class gains its extractor, every effectful function
// its shim, and the support preamble is added.
//
// Definitions are independent of each other, so they are rewritten
// concurrently; results land in slots indexed by the deterministic id
// order, which keeps the output identical no matter how the goroutines
// interleave.
func (x *Elaborator) Run() *ast.Symbols {
	funIDs := x.symbols.SortedFunctionIDs()
	classIDs := x.symbols.SortedClassIDs()
	sortIDs := x.symbols.SortedSortIDs()
	typeDefIDs := x.symbols.SortedTypeDefIDs()

	dropped := set.New[ast.Identifier](0)
	for _, id := range classIDs {
		if x.symbols.MustClass(id).Flags.Has(ast.AnyHeapRef.FlagName()) {
			dropped.Insert(id)
		}
	}
	for _, id := range funIDs {
		if x.symbols.MustFunction(id).Flags.Has(ast.RefEqBuiltin.FlagName()) {
			dropped.Insert(id)
		}
	}

	funResults := make([][]*ast.FunDef, len(funIDs))
	classResults := make([]*ast.ClassDef, len(classIDs))
	unapplyResults := make([]*ast.FunDef, len(classIDs))
	sortResults := make([]*ast.SortDef, len(sortIDs))
	typeDefResults := make([]*ast.TypeDef, len(typeDefIDs))

	var wg sync.WaitGroup
	for i, id := range funIDs {
		if dropped.Contains(id) {
			continue
		}
		wg.Add(1)
		go func(slot int, def *ast.FunDef) {
			defer wg.Done()
			funResults[slot] = x.ExtractFunction(def)
		}(i, x.symbols.MustFunction(id))
	}
	for i, id := range classIDs {
		if dropped.Contains(id) {
			continue
		}
		wg.Add(1)
		go func(slot int, def *ast.ClassDef) {
			defer wg.Done()
			classResults[slot], unapplyResults[slot] = x.ExtractClass(def)
		}(i, x.symbols.MustClass(id))
	}
	for i, id := range sortIDs {
		wg.Add(1)
		go func(slot int, id ast.Identifier) {
			defer wg.Done()
			def, _ := x.symbols.Sort(id)
			sortResults[slot] = x.ExtractSort(def)
		}(i, id)
	}
	for i, id := range typeDefIDs {
		wg.Add(1)
		go func(slot int, id ast.Identifier) {
			defer wg.Done()
			def, _ := x.symbols.TypeDef(id)
			typeDefResults[slot] = x.ExtractTypeDef(def)
		}(i, id)
	}
	wg.Wait()

	functions := preambleFunctions()
	for _, defs := range funResults {
		functions = append(functions, defs...)
	}
	for _, unapply := range unapplyResults {
		if unapply != nil {
			functions = append(functions, unapply)
		}
	}
	classes := make([]*ast.ClassDef, 0, len(classResults))
	for _, def := range classResults {
		if def != nil {
			classes = append(classes, def)
		}
	}
	sorts := preambleSorts()
	sorts = append(sorts, sortResults...)

	x.Debug("elaboration done",
		"functions", len(functions),
		"classes", len(classes),
		"errors", x.reporter.Count(),
	)
	return ast.NewSymbols(functions, classes, sorts, typeDefResults)
}
