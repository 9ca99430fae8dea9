package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/cottand/strata/ast"
	"github.com/cottand/strata/elab"
	"github.com/cottand/strata/internal/log"
	"github.com/cottand/strata/verr"
	"github.com/spf13/cobra"
)

var ElabCmd = &cobra.Command{
	Use:          "elab",
	Short:        "Run the heap elaboration pass over the built-in demo program and print both tables",
	RunE:         runElab,
	SilenceUsage: true,
}

var (
	checkHeapContracts *bool
	logLevel           *int
)

func init() {
	checkHeapContracts = ElabCmd.Flags().Bool("check-heap-contracts", true, "insert frame-condition assertions")
	logLevel = ElabCmd.Flags().IntP("log-level", "l", int(slog.LevelError), "log level")
}

func runElab(cmd *cobra.Command, args []string) error {
	log.SetLevel(slog.Level(*logLevel))

	symbols := demoSymbols()
	fmt.Println("== input ==")
	printSymbols(symbols)

	reporter := verr.NewReporter()
	out := elab.NewElaborator(symbols, reporter, elab.Config{
		CheckHeapContracts: *checkHeapContracts,
	}).Run()

	fmt.Println("== output ==")
	printSymbols(out)

	if reporter.HasError() {
		sb := &strings.Builder{}
		for _, err := range reporter.Errors().Errors() {
			sb.WriteString("\n")
			sb.WriteString(verr.FormatWithCode(err))
		}
		return fmt.Errorf("errors found during elaboration:%s", sb.String())
	}
	return nil
}

func printSymbols(symbols *ast.Symbols) {
	for _, id := range symbols.SortedClassIDs() {
		def, _ := symbols.Class(id)
		fields := make([]string, 0, len(def.Fields))
		for _, field := range def.Fields {
			fields = append(fields, field.Id.Name+": "+ast.TypeString(field.Tpe))
		}
		parents := ""
		if len(def.Parents) > 0 {
			names := make([]string, 0, len(def.Parents))
			for _, parent := range def.Parents {
				names = append(names, parent.TypeName())
			}
			parents = " extends " + strings.Join(names, ", ")
		}
		fmt.Printf("class %s(%s)%s\n", def.Id.Name, strings.Join(fields, ", "), parents)
	}
	for _, id := range symbols.SortedSortIDs() {
		def, _ := symbols.Sort(id)
		fmt.Printf("sort %s with %d constructors\n", def.Id.Name, len(def.Constructors))
	}
	for _, id := range symbols.SortedFunctionIDs() {
		def, _ := symbols.Function(id)
		fmt.Println(ast.FunDefString(def))
	}
}

// demoSymbols is a tiny program exercising the pass end to end: a heap
// class, a read-only getter and a writing field update.
func demoSymbols() *ast.Symbols {
	anyRefID := ast.NewIdentifier("AnyHeapRef", 1)
	cellID := ast.NewIdentifier("Cell", 2)
	valueField := ast.NewIdentifier("value", 3)

	anyRef := &ast.ClassDef{
		Id:    anyRefID,
		Flags: ast.FlagSet{}.With(ast.AnyHeapRef),
	}
	cell := &ast.ClassDef{
		Id:      cellID,
		Parents: []*ast.ClassType{{Id: anyRefID}},
		Fields: []ast.Field{{
			ValDef: ast.ValDef{Id: valueField, Tpe: &ast.IntType{}},
			IsVar:  true,
		}},
	}

	cellParam := func(gid uint64) ast.ValDef {
		return ast.ValDef{
			Id:  ast.NewIdentifier("c", gid),
			Tpe: &ast.ClassType{Id: cellID},
		}
	}

	peekParam := cellParam(10)
	peek := &ast.FunDef{
		Id:         ast.NewIdentifier("peek", 11),
		Params:     []ast.ValDef{peekParam},
		ReturnType: &ast.IntType{},
		Spec: ast.FunSpec{
			Reads: &ast.FiniteSet{Elems: []ast.Expr{peekParam.ToVar()}, Base: &ast.ClassType{Id: cellID}},
		},
		Body: &ast.FieldSelect{Recv: peekParam.ToVar(), Field: valueField},
	}

	bumpParam := cellParam(20)
	frame := func() *ast.FiniteSet {
		return &ast.FiniteSet{Elems: []ast.Expr{bumpParam.ToVar()}, Base: &ast.ClassType{Id: cellID}}
	}
	bump := &ast.FunDef{
		Id:         ast.NewIdentifier("bump", 21),
		Params:     []ast.ValDef{bumpParam},
		ReturnType: &ast.UnitType{},
		Spec: ast.FunSpec{
			Reads:    frame(),
			Modifies: frame(),
		},
		Body: &ast.FieldAssign{
			Recv:  bumpParam.ToVar(),
			Field: valueField,
			Value: &ast.FieldSelect{Recv: bumpParam.ToVar(), Field: valueField},
		},
	}

	return ast.NewSymbols([]*ast.FunDef{peek, bump}, []*ast.ClassDef{anyRef, cell}, nil, nil)
}
