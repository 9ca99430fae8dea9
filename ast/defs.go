package ast

import (
	"encoding/binary"
	"hash/fnv"
)

var (
	_ Def = (*FunDef)(nil)
	_ Def = (*ClassDef)(nil)
	_ Def = (*SortDef)(nil)
	_ Def = (*TypeDef)(nil)
)

// ValDef is a typed binder: a parameter, a let binder, or a field.
type ValDef struct {
	Range
	Id  Identifier
	Tpe Type
}

func (d ValDef) ToVar() *Var {
	return &Var{Range: d.Range, Id: d.Id}
}

func (d ValDef) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("ValDef")
	arr = binary.LittleEndian.AppendUint64(arr, d.Id.Hash())
	arr = hashChildren(arr, d.Tpe)
	_, _ = h.Write(arr)
	return h.Sum64()
}

// Flag is an annotation carried by a definition through the pipeline.
type Flag interface {
	FlagName() string
	Hash() uint64
}

type simpleFlag string

func (f simpleFlag) FlagName() string { return string(f) }

func (f simpleFlag) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("Flag"))
	_, _ = h.Write([]byte(f))
	return h.Sum64()
}

const (
	// AnyHeapRef marks the root marker class; its descendants live on the heap
	AnyHeapRef simpleFlag = "anyHeapRef"
	// RefEqBuiltin marks functions whose body is built-in reference equality
	RefEqBuiltin simpleFlag = "refEq"
	// Synthetic marks definitions produced by a pass rather than the user
	Synthetic simpleFlag = "synthetic"
	// DropVCs tells the verification-condition generator to skip a definition
	DropVCs simpleFlag = "dropVCs"
	// InlineOnce asks the inliner to unfold one call layer
	InlineOnce simpleFlag = "inlineOnce"
)

// IsUnapply marks extractor functions; IsEmpty and Get name the option-sort
// helpers used to compile the pattern match.
type IsUnapply struct {
	IsEmpty Identifier
	Get     Identifier
}

func (f IsUnapply) FlagName() string { return "isUnapply" }

func (f IsUnapply) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("IsUnapply")
	arr = binary.LittleEndian.AppendUint64(arr, f.IsEmpty.Hash())
	arr = binary.LittleEndian.AppendUint64(arr, f.Get.Hash())
	_, _ = h.Write(arr)
	return h.Sum64()
}

type FlagSet []Flag

func (fs FlagSet) Has(name string) bool {
	for _, flag := range fs {
		if flag.FlagName() == name {
			return true
		}
	}
	return false
}

// With returns fs extended with the given flags, skipping names already present.
func (fs FlagSet) With(flags ...Flag) FlagSet {
	result := make(FlagSet, len(fs), len(fs)+len(flags))
	copy(result, fs)
	for _, flag := range flags {
		if !result.Has(flag.FlagName()) {
			result = append(result, flag)
		}
	}
	return result
}

// Without returns fs with every flag of the given name removed.
func (fs FlagSet) Without(name string) FlagSet {
	result := make(FlagSet, 0, len(fs))
	for _, flag := range fs {
		if flag.FlagName() != name {
			result = append(result, flag)
		}
	}
	return result
}

func (fs FlagSet) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("FlagSet")
	for _, flag := range fs {
		arr = binary.LittleEndian.AppendUint64(arr, flag.Hash())
	}
	_, _ = h.Write(arr)
	return h.Sum64()
}

// Postcondition is an `ensures` clause: Pred may refer to the result of the
// function through Binder, and to the pre-state through Old.
type Postcondition struct {
	Range
	Binder ValDef
	Pred   Expr
}

func (p Postcondition) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Postcondition")
	arr = binary.LittleEndian.AppendUint64(arr, p.Binder.Hash())
	arr = hashChildren(arr, p.Pred)
	_, _ = h.Write(arr)
	return h.Sum64()
}

// FunSpec holds the specification clauses of a function. A nil Reads or
// Modifies means the clause is absent, which is not the same as an empty
// frame: absence is what makes a function pure.
type FunSpec struct {
	Reads     Expr
	Modifies  Expr
	Requires  []Expr
	Decreases Expr
	Ensures   []Postcondition
}

func (s FunSpec) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("FunSpec")
	arr = hashChildren(arr, s.Reads, s.Modifies, s.Decreases)
	arr = hashChildren(arr, s.Requires...)
	for _, post := range s.Ensures {
		arr = binary.LittleEndian.AppendUint64(arr, post.Hash())
	}
	_, _ = h.Write(arr)
	return h.Sum64()
}

type FunDef struct {
	Range
	Id         Identifier
	TypeParams []Identifier
	Params     []ValDef
	ReturnType Type
	Spec       FunSpec
	// Body may be nil for functions declared without an implementation
	Body  Expr
	Flags FlagSet
}

func (d *FunDef) DefID() Identifier { return d.Id }
func (d *FunDef) DefFlags() FlagSet { return d.Flags }

func (d *FunDef) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("FunDef")
	arr = binary.LittleEndian.AppendUint64(arr, d.Id.Hash())
	for _, typeParam := range d.TypeParams {
		arr = binary.LittleEndian.AppendUint64(arr, typeParam.Hash())
	}
	for _, param := range d.Params {
		arr = binary.LittleEndian.AppendUint64(arr, param.Hash())
	}
	arr = hashChildren(arr, d.ReturnType)
	arr = binary.LittleEndian.AppendUint64(arr, d.Spec.Hash())
	arr = hashChildren(arr, d.Body)
	arr = binary.LittleEndian.AppendUint64(arr, d.Flags.Hash())
	_, _ = h.Write(arr)
	return h.Sum64()
}

// Field is a class field; IsVar fields may be the target of a FieldAssign.
type Field struct {
	ValDef
	IsVar bool
}

func (f Field) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Field")
	arr = binary.LittleEndian.AppendUint64(arr, f.ValDef.Hash())
	if f.IsVar {
		arr = append(arr, 1)
	}
	_, _ = h.Write(arr)
	return h.Sum64()
}

type ClassDef struct {
	Range
	Id         Identifier
	TypeParams []Identifier
	Parents    []*ClassType
	Fields     []Field
	Flags      FlagSet
}

func (d *ClassDef) DefID() Identifier { return d.Id }
func (d *ClassDef) DefFlags() FlagSet { return d.Flags }

// FieldNamed returns the field with the given identifier, if any.
func (d *ClassDef) FieldNamed(id Identifier) (Field, bool) {
	for _, field := range d.Fields {
		if field.Id == id {
			return field, true
		}
	}
	return Field{}, false
}

func (d *ClassDef) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("ClassDef")
	arr = binary.LittleEndian.AppendUint64(arr, d.Id.Hash())
	for _, typeParam := range d.TypeParams {
		arr = binary.LittleEndian.AppendUint64(arr, typeParam.Hash())
	}
	for _, parent := range d.Parents {
		arr = binary.LittleEndian.AppendUint64(arr, parent.Hash())
	}
	for _, field := range d.Fields {
		arr = binary.LittleEndian.AppendUint64(arr, field.Hash())
	}
	arr = binary.LittleEndian.AppendUint64(arr, d.Flags.Hash())
	_, _ = h.Write(arr)
	return h.Sum64()
}

// ConstructorDef is one variant of a SortDef.
type ConstructorDef struct {
	Range
	Id     Identifier
	Fields []ValDef
}

func (c ConstructorDef) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("ConstructorDef")
	arr = binary.LittleEndian.AppendUint64(arr, c.Id.Hash())
	for _, field := range c.Fields {
		arr = binary.LittleEndian.AppendUint64(arr, field.Hash())
	}
	_, _ = h.Write(arr)
	return h.Sum64()
}

// SortDef is an algebraic data type.
type SortDef struct {
	Range
	Id           Identifier
	TypeParams   []Identifier
	Constructors []ConstructorDef
	Flags        FlagSet
}

func (d *SortDef) DefID() Identifier { return d.Id }
func (d *SortDef) DefFlags() FlagSet { return d.Flags }

func (d *SortDef) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("SortDef")
	arr = binary.LittleEndian.AppendUint64(arr, d.Id.Hash())
	for _, typeParam := range d.TypeParams {
		arr = binary.LittleEndian.AppendUint64(arr, typeParam.Hash())
	}
	for _, cons := range d.Constructors {
		arr = binary.LittleEndian.AppendUint64(arr, cons.Hash())
	}
	arr = binary.LittleEndian.AppendUint64(arr, d.Flags.Hash())
	_, _ = h.Write(arr)
	return h.Sum64()
}

// TypeDef is a type alias.
type TypeDef struct {
	Range
	Id         Identifier
	TypeParams []Identifier
	Body       Type
	Flags      FlagSet
}

func (d *TypeDef) DefID() Identifier { return d.Id }
func (d *TypeDef) DefFlags() FlagSet { return d.Flags }

func (d *TypeDef) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("TypeDef")
	arr = binary.LittleEndian.AppendUint64(arr, d.Id.Hash())
	for _, typeParam := range d.TypeParams {
		arr = binary.LittleEndian.AppendUint64(arr, typeParam.Hash())
	}
	arr = hashChildren(arr, d.Body)
	arr = binary.LittleEndian.AppendUint64(arr, d.Flags.Hash())
	_, _ = h.Write(arr)
	return h.Sum64()
}
