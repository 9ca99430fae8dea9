package ast

import (
	"encoding/binary"
	"hash/fnv"
	"strings"
)

var (
	_ Type = (*ClassType)(nil)
	_ Type = (*SortType)(nil)
	_ Type = (*TypeParamUse)(nil)
	_ Type = (*FunctionType)(nil)
	_ Type = (*TupleType)(nil)
	_ Type = (*MapType)(nil)
	_ Type = (*SetType)(nil)
	_ Type = (*HeapType)(nil)
	_ Type = (*IntType)(nil)
	_ Type = (*BoolType)(nil)
	_ Type = (*UnitType)(nil)
	_ Type = (*StringType)(nil)
	_ Type = (*AnyType)(nil)
)

// ClassType is a (possibly parametric) reference to a ClassDef.
type ClassType struct {
	Range
	Id       Identifier
	TypeArgs []Type
}

func (t *ClassType) TypeName() string { return showApplied(t.Id.Name, t.TypeArgs) }

func (t *ClassType) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("ClassType")
	arr = binary.LittleEndian.AppendUint64(arr, t.Id.Hash())
	arr = hashChildren(arr, t.TypeArgs...)
	_, _ = h.Write(arr)
	return h.Sum64()
}

// SortType is a reference to an algebraic SortDef.
type SortType struct {
	Range
	Id       Identifier
	TypeArgs []Type
}

func (t *SortType) TypeName() string { return showApplied(t.Id.Name, t.TypeArgs) }

func (t *SortType) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("SortType")
	arr = binary.LittleEndian.AppendUint64(arr, t.Id.Hash())
	arr = hashChildren(arr, t.TypeArgs...)
	_, _ = h.Write(arr)
	return h.Sum64()
}

// TypeParamUse is an occurrence of an enclosing definition's type parameter.
type TypeParamUse struct {
	Range
	Id Identifier
}

func (t *TypeParamUse) TypeName() string { return t.Id.Name }

func (t *TypeParamUse) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("TypeParamUse")
	arr = binary.LittleEndian.AppendUint64(arr, t.Id.Hash())
	_, _ = h.Write(arr)
	return h.Sum64()
}

// FunctionType is the type of first-class functions.
type FunctionType struct {
	Range
	From []Type
	To   Type
}

func (t *FunctionType) TypeName() string {
	args := make([]string, 0, len(t.From))
	for _, from := range t.From {
		args = append(args, from.TypeName())
	}
	return "(" + strings.Join(args, ", ") + ") => " + t.To.TypeName()
}

func (t *FunctionType) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("FunctionType")
	arr = hashChildren(arr, t.From...)
	arr = hashChildren(arr, t.To)
	_, _ = h.Write(arr)
	return h.Sum64()
}

// TupleType is the type of tuples of known width.
type TupleType struct {
	Range
	Bases []Type
}

func (t *TupleType) TypeName() string {
	bases := make([]string, 0, len(t.Bases))
	for _, base := range t.Bases {
		bases = append(bases, base.TypeName())
	}
	return "(" + strings.Join(bases, ", ") + ")"
}

func (t *TupleType) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("TupleType")
	arr = hashChildren(arr, t.Bases...)
	_, _ = h.Write(arr)
	return h.Sum64()
}

// MapType is a total map with a default value.
type MapType struct {
	Range
	From Type
	To   Type
}

func (t *MapType) TypeName() string {
	return "Map[" + t.From.TypeName() + ", " + t.To.TypeName() + "]"
}

func (t *MapType) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("MapType")
	arr = hashChildren(arr, t.From, t.To)
	_, _ = h.Write(arr)
	return h.Sum64()
}

// SetType is a finite set.
type SetType struct {
	Range
	Base Type
}

func (t *SetType) TypeName() string { return "Set[" + t.Base.TypeName() + "]" }

func (t *SetType) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("SetType")
	arr = hashChildren(arr, t.Base)
	_, _ = h.Write(arr)
	return h.Sum64()
}

// HeapType is the abstract map from heap references to the dynamic class
// value stored at each of them.
type HeapType struct {
	Range
}

func (t *HeapType) TypeName() string { return "Heap" }

func (t *HeapType) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("HeapType"))
	return h.Sum64()
}

type IntType struct{ Range }

func (t *IntType) TypeName() string { return "Int" }

func (t *IntType) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("IntType"))
	return h.Sum64()
}

type BoolType struct{ Range }

func (t *BoolType) TypeName() string { return "Boolean" }

func (t *BoolType) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("BoolType"))
	return h.Sum64()
}

type UnitType struct{ Range }

func (t *UnitType) TypeName() string { return "Unit" }

func (t *UnitType) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("UnitType"))
	return h.Sum64()
}

type StringType struct{ Range }

func (t *StringType) TypeName() string { return "String" }

func (t *StringType) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("StringType"))
	return h.Sum64()
}

// AnyType is the top of the subtyping lattice; it is the codomain of the
// heap map, since any class value may live at a reference.
type AnyType struct{ Range }

func (t *AnyType) TypeName() string { return "Any" }

func (t *AnyType) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("AnyType"))
	return h.Sum64()
}

func showApplied(name string, args []Type) string {
	if len(args) == 0 {
		return name
	}
	shown := make([]string, 0, len(args))
	for _, arg := range args {
		shown = append(shown, arg.TypeName())
	}
	return name + "[" + strings.Join(shown, ", ") + "]"
}
