package ast

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
)

// Identifier names a definition or a binder. Gid disambiguates same-named
// definitions; two Identifiers are the same binding iff they are ==.
type Identifier struct {
	Name string
	Gid  uint64
}

func NewIdentifier(name string, gid uint64) Identifier {
	return Identifier{Name: name, Gid: gid}
}

// DerivedIdentifier returns an Identifier for a definition synthesized from
// base. The Gid is a hash of the base Gid and the suffix, so the choice is
// a pure function of the input program.
func DerivedIdentifier(base Identifier, suffix string) Identifier {
	h := fnv.New64a()
	arr := []byte{}
	arr = binary.LittleEndian.AppendUint64(arr, base.Gid)
	_, _ = h.Write(arr)
	_, _ = h.Write([]byte(base.Name))
	_, _ = h.Write([]byte(suffix))
	return Identifier{
		Name: base.Name + suffix,
		Gid:  h.Sum64(),
	}
}

// DerivedNamed is like DerivedIdentifier but picks a whole new display
// name, for binders synthesized inside a rewritten definition.
func DerivedNamed(base Identifier, name string) Identifier {
	h := fnv.New64a()
	arr := []byte{}
	arr = binary.LittleEndian.AppendUint64(arr, base.Gid)
	_, _ = h.Write(arr)
	_, _ = h.Write([]byte(base.Name))
	_, _ = h.Write([]byte("named:" + name))
	return Identifier{
		Name: name,
		Gid:  h.Sum64(),
	}
}

func (id Identifier) String() string {
	return fmt.Sprintf("%s$%d", id.Name, id.Gid)
}

func (id Identifier) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte(id.Name)
	arr = binary.LittleEndian.AppendUint64(arr, id.Gid)
	_, _ = h.Write(arr)
	return h.Sum64()
}

// Expr is the interface for all expression nodes.
type Expr interface {
	Positioner
	// ExprName is the name of the syntax-type of the expression.
	ExprName() string
	// Describe is what to call this expression in error messages
	Describe() string

	// Transform should, in order:
	//  - copy the expression
	//  - call Transform(f) on any child expressions (thus copying them too)
	//  - call f on this Expr
	// In practice this means first copying the entire tree, applying f to each component bottom-up,
	// and returning the result
	Transform(f func(Expr) Expr) Expr
	Hash() uint64
}

// Type is the interface for all type nodes.
type Type interface {
	Positioner
	TypeName() string
	Hash() uint64
}

// Pattern is the interface for all match patterns.
type Pattern interface {
	Positioner
	PatternName() string
	Hash() uint64
}

// Def is any top-level definition held in a Symbols table.
type Def interface {
	Positioner
	DefID() Identifier
	DefFlags() FlagSet
}

// hashChildren folds the hashes of children into arr, tolerating nils.
func hashChildren[N interface{ Hash() uint64 }](arr []byte, children ...N) []byte {
	for _, child := range children {
		var asAny any = child
		if asAny == nil {
			continue
		}
		arr = binary.LittleEndian.AppendUint64(arr, child.Hash())
	}
	return arr
}
