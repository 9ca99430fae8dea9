package ast

import "hash/fnv"

// builtinID returns the fixed Identifier of a support-library definition.
// The Gid is a hash of the name so the ids are stable across runs.
func builtinID(name string) Identifier {
	h := fnv.New64a()
	_, _ = h.Write([]byte("builtin:" + name))
	return Identifier{Name: name, Gid: h.Sum64()}
}

var (
	// HeapRefID names the opaque reference sort: a single constructor
	// holding one identity field
	HeapRefID            = builtinID("HeapRef")
	HeapRefConsID        = builtinID("HeapRefCons")
	HeapRefIdentityField = builtinID("id")

	// DummyHeapID names the nullary heap constant used by shims to blank
	// out the part of the heap a callee may not read
	DummyHeapID = builtinID("dummyHeap")

	OptionID        = builtinID("Option")
	OptionTypeParam = builtinID("A")
	NoneID          = builtinID("None")
	SomeID          = builtinID("Some")
	SomeValueField  = builtinID("value")
	OptionIsEmptyID = builtinID("isEmpty")
	OptionGetID     = builtinID("get")
)

// HeapRefType is the codomain of all heap references after elaboration.
func HeapRefType() *SortType {
	return &SortType{Id: HeapRefID}
}

// HeapRefSetType is the type of reads and modifies frames.
func HeapRefSetType() *SetType {
	return &SetType{Base: HeapRefType()}
}

func OptionTypeOf(base Type) *SortType {
	return &SortType{Id: OptionID, TypeArgs: []Type{base}}
}
