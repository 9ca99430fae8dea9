package elab

import (
	"github.com/cottand/strata/ast"
	"github.com/pkg/errors"
)

// Effect is how much of the heap a function may touch, derived from its
// specification clauses alone.
type Effect uint8

const (
	Pure Effect = iota
	Reads
	ReadsWrites
)

func (e Effect) String() string {
	switch e {
	case Pure:
		return "pure"
	case Reads:
		return "reads"
	case ReadsWrites:
		return "reads+writes"
	default:
		return "invalid"
	}
}

// Writes reports whether the function may update the heap.
func (e Effect) Writes() bool { return e == ReadsWrites }

// Effectful reports whether the function needs the heap at all.
func (e Effect) Effectful() bool { return e != Pure }

// EffectLevel classifies the function with the given id. A modifies clause
// implies reads; a reads clause alone is read-only; neither makes the
// function pure. Cached per pass.
func (x *Elaborator) EffectLevel(id ast.Identifier) Effect {
	return x.effects.getOrCompute(id, func() Effect {
		def, ok := x.symbols.Function(id)
		if !ok {
			panic(errors.Errorf("effect classifier: no function %v in symbols", id))
		}
		switch {
		case def.Spec.Modifies != nil:
			return ReadsWrites
		case def.Spec.Reads != nil:
			return Reads
		default:
			return Pure
		}
	})
}
