package ast

import "fmt"

// TransformType copies t, rewrites its component types bottom-up, and
// applies f to every node on the way out. It is the type-level analogue of
// Expr.Transform.
func TransformType(t Type, f func(Type) Type) Type {
	if t == nil {
		return nil
	}
	switch t := t.(type) {
	case *ClassType:
		copied := *t
		copied.TypeArgs = transformTypes(t.TypeArgs, f)
		return f(&copied)
	case *SortType:
		copied := *t
		copied.TypeArgs = transformTypes(t.TypeArgs, f)
		return f(&copied)
	case *TypeParamUse:
		copied := *t
		return f(&copied)
	case *FunctionType:
		copied := *t
		copied.From = transformTypes(t.From, f)
		copied.To = TransformType(t.To, f)
		return f(&copied)
	case *TupleType:
		copied := *t
		copied.Bases = transformTypes(t.Bases, f)
		return f(&copied)
	case *MapType:
		copied := *t
		copied.From = TransformType(t.From, f)
		copied.To = TransformType(t.To, f)
		return f(&copied)
	case *SetType:
		copied := *t
		copied.Base = TransformType(t.Base, f)
		return f(&copied)
	case *HeapType:
		copied := *t
		return f(&copied)
	case *IntType:
		copied := *t
		return f(&copied)
	case *BoolType:
		copied := *t
		return f(&copied)
	case *UnitType:
		copied := *t
		return f(&copied)
	case *StringType:
		copied := *t
		return f(&copied)
	case *AnyType:
		copied := *t
		return f(&copied)
	default:
		panic(fmt.Sprintf("TransformType: unknown type node %T", t))
	}
}

func transformTypes(types []Type, f func(Type) Type) []Type {
	if types == nil {
		return nil
	}
	copied := make([]Type, len(types))
	for i, t := range types {
		copied[i] = TransformType(t, f)
	}
	return copied
}
