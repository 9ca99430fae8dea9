package elab

import (
	"github.com/cottand/strata/ast"
)

// preambleSorts declares the support sorts every elaborated table needs:
// the opaque HeapRef record and the Option sort extractors return.
func preambleSorts() []*ast.SortDef {
	heapRef := &ast.SortDef{
		Id: ast.HeapRefID,
		Constructors: []ast.ConstructorDef{{
			Id: ast.HeapRefConsID,
			Fields: []ast.ValDef{{
				Id:  ast.HeapRefIdentityField,
				Tpe: &ast.IntType{},
			}},
		}},
		Flags: ast.FlagSet{}.With(ast.Synthetic),
	}
	option := &ast.SortDef{
		Id:         ast.OptionID,
		TypeParams: []ast.Identifier{ast.OptionTypeParam},
		Constructors: []ast.ConstructorDef{
			{Id: ast.NoneID},
			{Id: ast.SomeID, Fields: []ast.ValDef{{
				Id:  ast.SomeValueField,
				Tpe: &ast.TypeParamUse{Id: ast.OptionTypeParam},
			}}},
		},
		Flags: ast.FlagSet{}.With(ast.Synthetic),
	}
	return []*ast.SortDef{heapRef, option}
}

// preambleFunctions declares dummyHeap and the Option helpers. They are
// given no body here; the backend knows their meaning, and DropVCs keeps
// the verification-condition generator away from them.
func preambleFunctions() []*ast.FunDef {
	supportFlags := ast.FlagSet{}.With(ast.Synthetic, ast.DropVCs)
	optionParam := func(name string) ast.ValDef {
		return ast.ValDef{
			Id:  ast.DerivedNamed(ast.OptionID, name),
			Tpe: ast.OptionTypeOf(&ast.TypeParamUse{Id: ast.OptionTypeParam}),
		}
	}
	dummyHeap := &ast.FunDef{
		Id:         ast.DummyHeapID,
		ReturnType: &ast.HeapType{},
		Flags:      supportFlags,
	}
	none := &ast.FunDef{
		Id:         ast.NoneID,
		TypeParams: []ast.Identifier{ast.OptionTypeParam},
		ReturnType: ast.OptionTypeOf(&ast.TypeParamUse{Id: ast.OptionTypeParam}),
		Flags:      supportFlags,
	}
	someValue := ast.ValDef{
		Id:  ast.DerivedNamed(ast.SomeID, "value"),
		Tpe: &ast.TypeParamUse{Id: ast.OptionTypeParam},
	}
	some := &ast.FunDef{
		Id:         ast.SomeID,
		TypeParams: []ast.Identifier{ast.OptionTypeParam},
		Params:     []ast.ValDef{someValue},
		ReturnType: ast.OptionTypeOf(&ast.TypeParamUse{Id: ast.OptionTypeParam}),
		Flags:      supportFlags,
	}
	isEmpty := &ast.FunDef{
		Id:         ast.OptionIsEmptyID,
		TypeParams: []ast.Identifier{ast.OptionTypeParam},
		Params:     []ast.ValDef{optionParam("o")},
		ReturnType: &ast.BoolType{},
		Flags:      supportFlags,
	}
	get := &ast.FunDef{
		Id:         ast.OptionGetID,
		TypeParams: []ast.Identifier{ast.OptionTypeParam},
		Params:     []ast.ValDef{optionParam("o")},
		ReturnType: &ast.TypeParamUse{Id: ast.OptionTypeParam},
		Flags:      supportFlags,
	}
	return []*ast.FunDef{dummyHeap, none, some, isEmpty, get}
}
