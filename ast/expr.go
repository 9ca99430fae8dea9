package ast

import (
	"encoding/binary"
	"go/token"
	"hash/fnv"
)

var (
	_ Expr = (*Var)(nil)
	_ Expr = (*Literal)(nil)
	_ Expr = (*BoolLit)(nil)
	_ Expr = (*UnitLit)(nil)
	_ Expr = (*Let)(nil)
	_ Expr = (*LetMut)(nil)
	_ Expr = (*Assign)(nil)
	_ Expr = (*Block)(nil)
	_ Expr = (*Lambda)(nil)
	_ Expr = (*Call)(nil)
	_ Expr = (*ClassNew)(nil)
	_ Expr = (*FieldSelect)(nil)
	_ Expr = (*FieldAssign)(nil)
	_ Expr = (*IsInstance)(nil)
	_ Expr = (*AsInstance)(nil)
	_ Expr = (*RefEq)(nil)
	_ Expr = (*Equals)(nil)
	_ Expr = (*ObjectIdentity)(nil)
	_ Expr = (*Old)(nil)
	_ Expr = (*If)(nil)
	_ Expr = (*Match)(nil)
	_ Expr = (*Assert)(nil)
	_ Expr = (*Assume)(nil)
	_ Expr = (*Choose)(nil)
	_ Expr = (*Tuple)(nil)
	_ Expr = (*TupleSelect)(nil)
	_ Expr = (*MapApply)(nil)
	_ Expr = (*MapUpdated)(nil)
	_ Expr = (*MapMerge)(nil)
	_ Expr = (*FiniteSet)(nil)
	_ Expr = (*SetContains)(nil)
	_ Expr = (*SetSubset)(nil)
	_ Expr = (*SetUnion)(nil)
	_ Expr = (*And)(nil)
	_ Expr = (*Or)(nil)
	_ Expr = (*ErrorExpr)(nil)
)

// Var is an occurrence of a bound variable.
type Var struct {
	Range
	Id Identifier
}

func (e *Var) ExprName() string { return "Var" }
func (e *Var) Describe() string { return "variable" }

func (e *Var) Transform(f func(Expr) Expr) Expr {
	copied := *e
	return f(&copied)
}

func (e *Var) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Var")
	arr = binary.LittleEndian.AppendUint64(arr, e.Id.Hash())
	_, _ = h.Write(arr)
	return h.Sum64()
}

// Literal is a semi-opaque literal value.
//
// Kind should be one of token.INT or token.STRING
type Literal struct {
	Range
	Kind   token.Token
	Syntax string
}

func (e *Literal) ExprName() string { return e.Syntax }
func (e *Literal) Describe() string { return "literal" }

func (e *Literal) Transform(f func(Expr) Expr) Expr {
	copied := *e
	return f(&copied)
}

func (e *Literal) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Literal")
	_, _ = h.Write([]byte(e.Syntax))
	_, _ = h.Write([]byte(e.Kind.String()))
	_, _ = h.Write(arr)
	return h.Sum64()
}

type BoolLit struct {
	Range
	Value bool
}

func (e *BoolLit) ExprName() string { return "BoolLit" }
func (e *BoolLit) Describe() string { return "boolean literal" }

func (e *BoolLit) Transform(f func(Expr) Expr) Expr {
	copied := *e
	return f(&copied)
}

func (e *BoolLit) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("BoolLit")
	if e.Value {
		arr = append(arr, 1)
	} else {
		arr = append(arr, 0)
	}
	_, _ = h.Write(arr)
	return h.Sum64()
}

type UnitLit struct {
	Range
}

func (e *UnitLit) ExprName() string { return "UnitLit" }
func (e *UnitLit) Describe() string { return "unit literal" }

func (e *UnitLit) Transform(f func(Expr) Expr) Expr {
	copied := *e
	return f(&copied)
}

func (e *UnitLit) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("UnitLit"))
	return h.Sum64()
}

// Let is an immutable binding scoped over Body.
type Let struct {
	Range
	Binder ValDef
	Value  Expr
	Body   Expr
}

func (e *Let) ExprName() string { return "Let" }
func (e *Let) Describe() string { return "let binding" }

func (e *Let) Transform(f func(Expr) Expr) Expr {
	copied := *e
	copied.Value = e.Value.Transform(f)
	copied.Body = e.Body.Transform(f)
	return f(&copied)
}

func (e *Let) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Let")
	arr = binary.LittleEndian.AppendUint64(arr, e.Binder.Hash())
	arr = hashChildren(arr, e.Value, e.Body)
	_, _ = h.Write(arr)
	return h.Sum64()
}

// LetMut is a mutable binding scoped over Body; the binder is the only
// assignable kind of variable, via Assign.
type LetMut struct {
	Range
	Binder ValDef
	Value  Expr
	Body   Expr
}

func (e *LetMut) ExprName() string { return "LetMut" }
func (e *LetMut) Describe() string { return "mutable let binding" }

func (e *LetMut) Transform(f func(Expr) Expr) Expr {
	copied := *e
	copied.Value = e.Value.Transform(f)
	copied.Body = e.Body.Transform(f)
	return f(&copied)
}

func (e *LetMut) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("LetMut")
	arr = binary.LittleEndian.AppendUint64(arr, e.Binder.Hash())
	arr = hashChildren(arr, e.Value, e.Body)
	_, _ = h.Write(arr)
	return h.Sum64()
}

// Assign writes a new value to an enclosing LetMut binder. Evaluates to unit.
type Assign struct {
	Range
	Id    Identifier
	Value Expr
}

func (e *Assign) ExprName() string { return "Assign" }
func (e *Assign) Describe() string { return "assignment" }

func (e *Assign) Transform(f func(Expr) Expr) Expr {
	copied := *e
	copied.Value = e.Value.Transform(f)
	return f(&copied)
}

func (e *Assign) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Assign")
	arr = binary.LittleEndian.AppendUint64(arr, e.Id.Hash())
	arr = hashChildren(arr, e.Value)
	_, _ = h.Write(arr)
	return h.Sum64()
}

// Block evaluates its expressions in order and yields the last one.
type Block struct {
	Range
	Exprs []Expr
}

func (e *Block) ExprName() string { return "Block" }
func (e *Block) Describe() string { return "block" }

func (e *Block) Transform(f func(Expr) Expr) Expr {
	copied := *e
	copied.Exprs = make([]Expr, len(e.Exprs))
	for i, sub := range e.Exprs {
		copied.Exprs[i] = sub.Transform(f)
	}
	return f(&copied)
}

func (e *Block) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Block")
	arr = hashChildren(arr, e.Exprs...)
	_, _ = h.Write(arr)
	return h.Sum64()
}

// Lambda is an anonymous function literal.
type Lambda struct {
	Range
	Params []ValDef
	Body   Expr
}

func (e *Lambda) ExprName() string { return "Lambda" }
func (e *Lambda) Describe() string { return "function literal" }

func (e *Lambda) Transform(f func(Expr) Expr) Expr {
	copied := *e
	copied.Body = e.Body.Transform(f)
	return f(&copied)
}

func (e *Lambda) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Lambda")
	for _, param := range e.Params {
		arr = binary.LittleEndian.AppendUint64(arr, param.Hash())
	}
	arr = hashChildren(arr, e.Body)
	_, _ = h.Write(arr)
	return h.Sum64()
}

// Call invokes a named function from the Symbols table.
type Call struct {
	Range
	Callee   Identifier
	TypeArgs []Type
	Args     []Expr
}

func (e *Call) ExprName() string { return "Call" }
func (e *Call) Describe() string { return "function call" }

func (e *Call) Transform(f func(Expr) Expr) Expr {
	copied := *e
	copied.Args = make([]Expr, len(e.Args))
	for i, arg := range e.Args {
		copied.Args[i] = arg.Transform(f)
	}
	return f(&copied)
}

func (e *Call) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Call")
	arr = binary.LittleEndian.AppendUint64(arr, e.Callee.Hash())
	arr = hashChildren(arr, e.TypeArgs...)
	arr = hashChildren(arr, e.Args...)
	_, _ = h.Write(arr)
	return h.Sum64()
}

// ClassNew constructs a new instance of Class from field values.
type ClassNew struct {
	Range
	Class *ClassType
	Args  []Expr
}

func (e *ClassNew) ExprName() string { return "ClassNew" }
func (e *ClassNew) Describe() string { return "class constructor" }

func (e *ClassNew) Transform(f func(Expr) Expr) Expr {
	copied := *e
	copied.Args = make([]Expr, len(e.Args))
	for i, arg := range e.Args {
		copied.Args[i] = arg.Transform(f)
	}
	return f(&copied)
}

func (e *ClassNew) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("ClassNew")
	arr = hashChildren(arr, Type(e.Class))
	arr = hashChildren(arr, e.Args...)
	_, _ = h.Write(arr)
	return h.Sum64()
}

// FieldSelect reads a field of a class value.
type FieldSelect struct {
	Range
	Recv  Expr
	Field Identifier
}

func (e *FieldSelect) ExprName() string { return "FieldSelect" }
func (e *FieldSelect) Describe() string { return "field selection" }

func (e *FieldSelect) Transform(f func(Expr) Expr) Expr {
	copied := *e
	copied.Recv = e.Recv.Transform(f)
	return f(&copied)
}

func (e *FieldSelect) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("FieldSelect")
	arr = binary.LittleEndian.AppendUint64(arr, e.Field.Hash())
	arr = hashChildren(arr, e.Recv)
	_, _ = h.Write(arr)
	return h.Sum64()
}

// FieldAssign writes a field of a class value. Evaluates to unit.
type FieldAssign struct {
	Range
	Recv  Expr
	Field Identifier
	Value Expr
}

func (e *FieldAssign) ExprName() string { return "FieldAssign" }
func (e *FieldAssign) Describe() string { return "field assignment" }

func (e *FieldAssign) Transform(f func(Expr) Expr) Expr {
	copied := *e
	copied.Recv = e.Recv.Transform(f)
	copied.Value = e.Value.Transform(f)
	return f(&copied)
}

func (e *FieldAssign) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("FieldAssign")
	arr = binary.LittleEndian.AppendUint64(arr, e.Field.Hash())
	arr = hashChildren(arr, e.Recv, e.Value)
	_, _ = h.Write(arr)
	return h.Sum64()
}

// IsInstance tests the dynamic type of X against Tpe.
type IsInstance struct {
	Range
	X   Expr
	Tpe Type
}

func (e *IsInstance) ExprName() string { return "IsInstance" }
func (e *IsInstance) Describe() string { return "type test" }

func (e *IsInstance) Transform(f func(Expr) Expr) Expr {
	copied := *e
	copied.X = e.X.Transform(f)
	return f(&copied)
}

func (e *IsInstance) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("IsInstance")
	arr = hashChildren(arr, e.Tpe)
	arr = hashChildren(arr, e.X)
	_, _ = h.Write(arr)
	return h.Sum64()
}

// AsInstance refines the static type of X to Tpe; a verification condition
// is emitted downstream unless the cast is known to hold.
type AsInstance struct {
	Range
	X   Expr
	Tpe Type
}

func (e *AsInstance) ExprName() string { return "AsInstance" }
func (e *AsInstance) Describe() string { return "type cast" }

func (e *AsInstance) Transform(f func(Expr) Expr) Expr {
	copied := *e
	copied.X = e.X.Transform(f)
	return f(&copied)
}

func (e *AsInstance) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("AsInstance")
	arr = hashChildren(arr, e.Tpe)
	arr = hashChildren(arr, e.X)
	_, _ = h.Write(arr)
	return h.Sum64()
}

// RefEq compares two class instances by identity, not by structure.
type RefEq struct {
	Range
	Lhs Expr
	Rhs Expr
}

func (e *RefEq) ExprName() string { return "RefEq" }
func (e *RefEq) Describe() string { return "reference equality" }

func (e *RefEq) Transform(f func(Expr) Expr) Expr {
	copied := *e
	copied.Lhs = e.Lhs.Transform(f)
	copied.Rhs = e.Rhs.Transform(f)
	return f(&copied)
}

func (e *RefEq) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("RefEq")
	arr = hashChildren(arr, e.Lhs, e.Rhs)
	_, _ = h.Write(arr)
	return h.Sum64()
}

// Equals is structural equality.
type Equals struct {
	Range
	Lhs Expr
	Rhs Expr
}

func (e *Equals) ExprName() string { return "Equals" }
func (e *Equals) Describe() string { return "equality" }

func (e *Equals) Transform(f func(Expr) Expr) Expr {
	copied := *e
	copied.Lhs = e.Lhs.Transform(f)
	copied.Rhs = e.Rhs.Transform(f)
	return f(&copied)
}

func (e *Equals) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Equals")
	arr = hashChildren(arr, e.Lhs, e.Rhs)
	_, _ = h.Write(arr)
	return h.Sum64()
}

// ObjectIdentity projects the numeric identity of a class instance.
type ObjectIdentity struct {
	Range
	X Expr
}

func (e *ObjectIdentity) ExprName() string { return "ObjectIdentity" }
func (e *ObjectIdentity) Describe() string { return "object identity" }

func (e *ObjectIdentity) Transform(f func(Expr) Expr) Expr {
	copied := *e
	copied.X = e.X.Transform(f)
	return f(&copied)
}

func (e *ObjectIdentity) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("ObjectIdentity")
	arr = hashChildren(arr, e.X)
	_, _ = h.Write(arr)
	return h.Sum64()
}

// Old wraps a sub-expression of a postcondition that must be evaluated in
// the pre-state of the call.
type Old struct {
	Range
	X Expr
}

func (e *Old) ExprName() string { return "Old" }
func (e *Old) Describe() string { return "pre-state expression" }

func (e *Old) Transform(f func(Expr) Expr) Expr {
	copied := *e
	copied.X = e.X.Transform(f)
	return f(&copied)
}

func (e *Old) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Old")
	arr = hashChildren(arr, e.X)
	_, _ = h.Write(arr)
	return h.Sum64()
}

type If struct {
	Range
	Cond Expr
	Then Expr
	Else Expr
}

func (e *If) ExprName() string { return "If" }
func (e *If) Describe() string { return "conditional" }

func (e *If) Transform(f func(Expr) Expr) Expr {
	copied := *e
	copied.Cond = e.Cond.Transform(f)
	copied.Then = e.Then.Transform(f)
	copied.Else = e.Else.Transform(f)
	return f(&copied)
}

func (e *If) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("If")
	arr = hashChildren(arr, e.Cond, e.Then, e.Else)
	_, _ = h.Write(arr)
	return h.Sum64()
}

// MatchCase is one alternative of a Match. Guard may be nil.
type MatchCase struct {
	Range
	Pattern Pattern
	Guard   Expr
	Body    Expr
}

func (c *MatchCase) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("MatchCase")
	arr = hashChildren(arr, c.Pattern)
	arr = hashChildren(arr, c.Guard, c.Body)
	_, _ = h.Write(arr)
	return h.Sum64()
}

type Match struct {
	Range
	Scrutinee Expr
	Cases     []MatchCase
}

func (e *Match) ExprName() string { return "Match" }
func (e *Match) Describe() string { return "pattern match" }

func (e *Match) Transform(f func(Expr) Expr) Expr {
	copied := *e
	copied.Scrutinee = e.Scrutinee.Transform(f)
	copied.Cases = make([]MatchCase, len(e.Cases))
	for i, matchCase := range e.Cases {
		copied.Cases[i] = matchCase
		if matchCase.Guard != nil {
			copied.Cases[i].Guard = matchCase.Guard.Transform(f)
		}
		copied.Cases[i].Body = matchCase.Body.Transform(f)
	}
	return f(&copied)
}

func (e *Match) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Match")
	arr = hashChildren(arr, e.Scrutinee)
	for _, matchCase := range e.Cases {
		arr = binary.LittleEndian.AppendUint64(arr, matchCase.Hash())
	}
	_, _ = h.Write(arr)
	return h.Sum64()
}

// Assert checks Pred, then evaluates to Body.
type Assert struct {
	Range
	Pred Expr
	Msg  string
	Body Expr
}

func (e *Assert) ExprName() string { return "Assert" }
func (e *Assert) Describe() string { return "assertion" }

func (e *Assert) Transform(f func(Expr) Expr) Expr {
	copied := *e
	copied.Pred = e.Pred.Transform(f)
	copied.Body = e.Body.Transform(f)
	return f(&copied)
}

func (e *Assert) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Assert")
	_, _ = h.Write([]byte(e.Msg))
	arr = hashChildren(arr, e.Pred, e.Body)
	_, _ = h.Write(arr)
	return h.Sum64()
}

// Assume introduces Pred as a fact, then evaluates to Body.
type Assume struct {
	Range
	Pred Expr
	Body Expr
}

func (e *Assume) ExprName() string { return "Assume" }
func (e *Assume) Describe() string { return "assumption" }

func (e *Assume) Transform(f func(Expr) Expr) Expr {
	copied := *e
	copied.Pred = e.Pred.Transform(f)
	copied.Body = e.Body.Transform(f)
	return f(&copied)
}

func (e *Assume) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Assume")
	arr = hashChildren(arr, e.Pred, e.Body)
	_, _ = h.Write(arr)
	return h.Sum64()
}

// Choose evaluates to a non-deterministic value of the binder's type
// satisfying Pred.
type Choose struct {
	Range
	Binder ValDef
	Pred   Expr
}

func (e *Choose) ExprName() string { return "Choose" }
func (e *Choose) Describe() string { return "choice" }

func (e *Choose) Transform(f func(Expr) Expr) Expr {
	copied := *e
	copied.Pred = e.Pred.Transform(f)
	return f(&copied)
}

func (e *Choose) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Choose")
	arr = binary.LittleEndian.AppendUint64(arr, e.Binder.Hash())
	arr = hashChildren(arr, e.Pred)
	_, _ = h.Write(arr)
	return h.Sum64()
}

type Tuple struct {
	Range
	Exprs []Expr
}

func (e *Tuple) ExprName() string { return "Tuple" }
func (e *Tuple) Describe() string { return "tuple" }

func (e *Tuple) Transform(f func(Expr) Expr) Expr {
	copied := *e
	copied.Exprs = make([]Expr, len(e.Exprs))
	for i, sub := range e.Exprs {
		copied.Exprs[i] = sub.Transform(f)
	}
	return f(&copied)
}

func (e *Tuple) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Tuple")
	arr = hashChildren(arr, e.Exprs...)
	_, _ = h.Write(arr)
	return h.Sum64()
}

// TupleSelect projects the Index-th component of a tuple, starting at 1.
type TupleSelect struct {
	Range
	X     Expr
	Index int
}

func (e *TupleSelect) ExprName() string { return "TupleSelect" }
func (e *TupleSelect) Describe() string { return "tuple projection" }

func (e *TupleSelect) Transform(f func(Expr) Expr) Expr {
	copied := *e
	copied.X = e.X.Transform(f)
	return f(&copied)
}

func (e *TupleSelect) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("TupleSelect")
	arr = binary.LittleEndian.AppendUint64(arr, uint64(e.Index))
	arr = hashChildren(arr, e.X)
	_, _ = h.Write(arr)
	return h.Sum64()
}

type MapApply struct {
	Range
	Map Expr
	Key Expr
}

func (e *MapApply) ExprName() string { return "MapApply" }
func (e *MapApply) Describe() string { return "map lookup" }

func (e *MapApply) Transform(f func(Expr) Expr) Expr {
	copied := *e
	copied.Map = e.Map.Transform(f)
	copied.Key = e.Key.Transform(f)
	return f(&copied)
}

func (e *MapApply) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("MapApply")
	arr = hashChildren(arr, e.Map, e.Key)
	_, _ = h.Write(arr)
	return h.Sum64()
}

type MapUpdated struct {
	Range
	Map   Expr
	Key   Expr
	Value Expr
}

func (e *MapUpdated) ExprName() string { return "MapUpdated" }
func (e *MapUpdated) Describe() string { return "map update" }

func (e *MapUpdated) Transform(f func(Expr) Expr) Expr {
	copied := *e
	copied.Map = e.Map.Transform(f)
	copied.Key = e.Key.Transform(f)
	copied.Value = e.Value.Transform(f)
	return f(&copied)
}

func (e *MapUpdated) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("MapUpdated")
	arr = hashChildren(arr, e.Map, e.Key, e.Value)
	_, _ = h.Write(arr)
	return h.Sum64()
}

// MapMerge equals Left on the keys in Mask and Right elsewhere.
type MapMerge struct {
	Range
	Mask  Expr
	Left  Expr
	Right Expr
}

func (e *MapMerge) ExprName() string { return "MapMerge" }
func (e *MapMerge) Describe() string { return "map merge" }

func (e *MapMerge) Transform(f func(Expr) Expr) Expr {
	copied := *e
	copied.Mask = e.Mask.Transform(f)
	copied.Left = e.Left.Transform(f)
	copied.Right = e.Right.Transform(f)
	return f(&copied)
}

func (e *MapMerge) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("MapMerge")
	arr = hashChildren(arr, e.Mask, e.Left, e.Right)
	_, _ = h.Write(arr)
	return h.Sum64()
}

// FiniteSet is a set literal; Base is the element type, kept explicitly so
// the empty set stays well-typed.
type FiniteSet struct {
	Range
	Elems []Expr
	Base  Type
}

func (e *FiniteSet) ExprName() string { return "FiniteSet" }
func (e *FiniteSet) Describe() string { return "set literal" }

func (e *FiniteSet) Transform(f func(Expr) Expr) Expr {
	copied := *e
	copied.Elems = make([]Expr, len(e.Elems))
	for i, elem := range e.Elems {
		copied.Elems[i] = elem.Transform(f)
	}
	return f(&copied)
}

func (e *FiniteSet) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("FiniteSet")
	arr = hashChildren(arr, e.Base)
	arr = hashChildren(arr, e.Elems...)
	_, _ = h.Write(arr)
	return h.Sum64()
}

type SetContains struct {
	Range
	Set  Expr
	Elem Expr
}

func (e *SetContains) ExprName() string { return "SetContains" }
func (e *SetContains) Describe() string { return "set membership" }

func (e *SetContains) Transform(f func(Expr) Expr) Expr {
	copied := *e
	copied.Set = e.Set.Transform(f)
	copied.Elem = e.Elem.Transform(f)
	return f(&copied)
}

func (e *SetContains) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("SetContains")
	arr = hashChildren(arr, e.Set, e.Elem)
	_, _ = h.Write(arr)
	return h.Sum64()
}

type SetSubset struct {
	Range
	Lhs Expr
	Rhs Expr
}

func (e *SetSubset) ExprName() string { return "SetSubset" }
func (e *SetSubset) Describe() string { return "subset test" }

func (e *SetSubset) Transform(f func(Expr) Expr) Expr {
	copied := *e
	copied.Lhs = e.Lhs.Transform(f)
	copied.Rhs = e.Rhs.Transform(f)
	return f(&copied)
}

func (e *SetSubset) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("SetSubset")
	arr = hashChildren(arr, e.Lhs, e.Rhs)
	_, _ = h.Write(arr)
	return h.Sum64()
}

type SetUnion struct {
	Range
	Lhs Expr
	Rhs Expr
}

func (e *SetUnion) ExprName() string { return "SetUnion" }
func (e *SetUnion) Describe() string { return "set union" }

func (e *SetUnion) Transform(f func(Expr) Expr) Expr {
	copied := *e
	copied.Lhs = e.Lhs.Transform(f)
	copied.Rhs = e.Rhs.Transform(f)
	return f(&copied)
}

func (e *SetUnion) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("SetUnion")
	arr = hashChildren(arr, e.Lhs, e.Rhs)
	_, _ = h.Write(arr)
	return h.Sum64()
}

type And struct {
	Range
	Lhs Expr
	Rhs Expr
}

func (e *And) ExprName() string { return "And" }
func (e *And) Describe() string { return "conjunction" }

func (e *And) Transform(f func(Expr) Expr) Expr {
	copied := *e
	copied.Lhs = e.Lhs.Transform(f)
	copied.Rhs = e.Rhs.Transform(f)
	return f(&copied)
}

func (e *And) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("And")
	arr = hashChildren(arr, e.Lhs, e.Rhs)
	_, _ = h.Write(arr)
	return h.Sum64()
}

type Or struct {
	Range
	Lhs Expr
	Rhs Expr
}

func (e *Or) ExprName() string { return "Or" }
func (e *Or) Describe() string { return "disjunction" }

func (e *Or) Transform(f func(Expr) Expr) Expr {
	copied := *e
	copied.Lhs = e.Lhs.Transform(f)
	copied.Rhs = e.Rhs.Transform(f)
	return f(&copied)
}

func (e *Or) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Or")
	arr = hashChildren(arr, e.Lhs, e.Rhs)
	_, _ = h.Write(arr)
	return h.Sum64()
}

// ErrorExpr is a well-typed placeholder produced after a diagnostic, so a
// single run can surface more than one error.
type ErrorExpr struct {
	Range
	Tpe Type
}

func (e *ErrorExpr) ExprName() string { return "ErrorExpr" }
func (e *ErrorExpr) Describe() string { return "error expression" }

func (e *ErrorExpr) Transform(f func(Expr) Expr) Expr {
	copied := *e
	return f(&copied)
}

func (e *ErrorExpr) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("ErrorExpr")
	arr = hashChildren(arr, e.Tpe)
	_, _ = h.Write(arr)
	return h.Sum64()
}
