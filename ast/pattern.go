package ast

import (
	"encoding/binary"
	"hash/fnv"
)

var (
	_ Pattern = (*WildcardPattern)(nil)
	_ Pattern = (*ClassPattern)(nil)
	_ Pattern = (*TuplePattern)(nil)
	_ Pattern = (*LiteralPattern)(nil)
	_ Pattern = (*UnapplyPattern)(nil)
)

// WildcardPattern matches anything; Binder may be nil for a discard.
type WildcardPattern struct {
	Range
	Binder *ValDef
}

func (p *WildcardPattern) PatternName() string { return "WildcardPattern" }

func (p *WildcardPattern) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("WildcardPattern")
	if p.Binder != nil {
		arr = binary.LittleEndian.AppendUint64(arr, p.Binder.Hash())
	}
	_, _ = h.Write(arr)
	return h.Sum64()
}

// ClassPattern matches a value of class Tpe and destructures its fields.
type ClassPattern struct {
	Range
	Binder *ValDef
	Tpe    *ClassType
	Sub    []Pattern
}

func (p *ClassPattern) PatternName() string { return "ClassPattern" }

func (p *ClassPattern) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("ClassPattern")
	if p.Binder != nil {
		arr = binary.LittleEndian.AppendUint64(arr, p.Binder.Hash())
	}
	arr = hashChildren(arr, Type(p.Tpe))
	arr = hashChildren(arr, p.Sub...)
	_, _ = h.Write(arr)
	return h.Sum64()
}

type TuplePattern struct {
	Range
	Binder *ValDef
	Sub    []Pattern
}

func (p *TuplePattern) PatternName() string { return "TuplePattern" }

func (p *TuplePattern) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("TuplePattern")
	if p.Binder != nil {
		arr = binary.LittleEndian.AppendUint64(arr, p.Binder.Hash())
	}
	arr = hashChildren(arr, p.Sub...)
	_, _ = h.Write(arr)
	return h.Sum64()
}

type LiteralPattern struct {
	Range
	Lit Expr
}

func (p *LiteralPattern) PatternName() string { return "LiteralPattern" }

func (p *LiteralPattern) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("LiteralPattern")
	arr = hashChildren(arr, p.Lit)
	_, _ = h.Write(arr)
	return h.Sum64()
}

// UnapplyPattern matches by calling an extractor function. RecArgs are
// passed to the extractor ahead of the scrutinee; for heap extractors they
// carry the current heap and the reads domain.
type UnapplyPattern struct {
	Range
	Binder   *ValDef
	Id       Identifier
	TypeArgs []Type
	RecArgs  []Expr
	Sub      []Pattern
}

func (p *UnapplyPattern) PatternName() string { return "UnapplyPattern" }

func (p *UnapplyPattern) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("UnapplyPattern")
	if p.Binder != nil {
		arr = binary.LittleEndian.AppendUint64(arr, p.Binder.Hash())
	}
	arr = binary.LittleEndian.AppendUint64(arr, p.Id.Hash())
	arr = hashChildren(arr, p.TypeArgs...)
	arr = hashChildren(arr, p.RecArgs...)
	arr = hashChildren(arr, p.Sub...)
	_, _ = h.Write(arr)
	return h.Sum64()
}
