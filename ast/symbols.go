package ast

import (
	"fmt"
	"sort"

	"github.com/benbjohnson/immutable"
	"github.com/xtgo/set"
)

// Symbols is the lookup table of every definition visible to a pass.
//
// The maps are persistent: a pass derives a fresh output table with the
// With… builders and never mutates its input.
type Symbols struct {
	functions *immutable.Map[Identifier, *FunDef]
	classes   *immutable.Map[Identifier, *ClassDef]
	sorts     *immutable.Map[Identifier, *SortDef]
	typeDefs  *immutable.Map[Identifier, *TypeDef]
}

type identHasher struct{}

func (identHasher) Hash(id Identifier) uint32 { return uint32(id.Hash()) }
func (identHasher) Equal(a, b Identifier) bool {
	return a == b
}

func emptyIdentMap[D any]() *immutable.Map[Identifier, D] {
	return immutable.NewMap[Identifier, D](identHasher{})
}

func NewSymbols(functions []*FunDef, classes []*ClassDef, sorts []*SortDef, typeDefs []*TypeDef) *Symbols {
	symbols := &Symbols{
		functions: emptyIdentMap[*FunDef](),
		classes:   emptyIdentMap[*ClassDef](),
		sorts:     emptyIdentMap[*SortDef](),
		typeDefs:  emptyIdentMap[*TypeDef](),
	}
	return symbols.
		WithFunctions(functions...).
		WithClasses(classes...).
		WithSorts(sorts...).
		WithTypeDefs(typeDefs...)
}

func (s *Symbols) WithFunctions(functions ...*FunDef) *Symbols {
	copied := *s
	for _, def := range functions {
		copied.functions = copied.functions.Set(def.Id, def)
	}
	return &copied
}

func (s *Symbols) WithClasses(classes ...*ClassDef) *Symbols {
	copied := *s
	for _, def := range classes {
		copied.classes = copied.classes.Set(def.Id, def)
	}
	return &copied
}

func (s *Symbols) WithSorts(sorts ...*SortDef) *Symbols {
	copied := *s
	for _, def := range sorts {
		copied.sorts = copied.sorts.Set(def.Id, def)
	}
	return &copied
}

func (s *Symbols) WithTypeDefs(typeDefs ...*TypeDef) *Symbols {
	copied := *s
	for _, def := range typeDefs {
		copied.typeDefs = copied.typeDefs.Set(def.Id, def)
	}
	return &copied
}

func (s *Symbols) Function(id Identifier) (*FunDef, bool) { return s.functions.Get(id) }
func (s *Symbols) Class(id Identifier) (*ClassDef, bool)  { return s.classes.Get(id) }
func (s *Symbols) Sort(id Identifier) (*SortDef, bool)    { return s.sorts.Get(id) }
func (s *Symbols) TypeDef(id Identifier) (*TypeDef, bool) { return s.typeDefs.Get(id) }

// MustClass looks up a class that the caller knows is present; absence is a
// broken invariant of the tree, not a user error.
func (s *Symbols) MustClass(id Identifier) *ClassDef {
	def, ok := s.classes.Get(id)
	if !ok {
		panic(fmt.Sprintf("symbols: no class %v", id))
	}
	return def
}

func (s *Symbols) MustFunction(id Identifier) *FunDef {
	def, ok := s.functions.Get(id)
	if !ok {
		panic(fmt.Sprintf("symbols: no function %v", id))
	}
	return def
}

// identSlice sorts by name first so rendered output stays readable, with
// Gid as the tie-break to keep the order total.
type identSlice []Identifier

func (s identSlice) Len() int      { return len(s) }
func (s identSlice) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s identSlice) Less(i, j int) bool {
	if s[i].Name != s[j].Name {
		return s[i].Name < s[j].Name
	}
	return s[i].Gid < s[j].Gid
}

func sortedIDs(ids []Identifier) []Identifier {
	sort.Sort(identSlice(ids))
	n := set.Uniq(identSlice(ids))
	return ids[:n]
}

func mapIDs[D any](m *immutable.Map[Identifier, D]) []Identifier {
	ids := make([]Identifier, 0, m.Len())
	iterator := m.Iterator()
	for !iterator.Done() {
		id, _, _ := iterator.Next()
		ids = append(ids, id)
	}
	return sortedIDs(ids)
}

// SortedFunctionIDs returns every function id in a deterministic order.
func (s *Symbols) SortedFunctionIDs() []Identifier { return mapIDs(s.functions) }
func (s *Symbols) SortedClassIDs() []Identifier    { return mapIDs(s.classes) }
func (s *Symbols) SortedSortIDs() []Identifier     { return mapIDs(s.sorts) }
func (s *Symbols) SortedTypeDefIDs() []Identifier  { return mapIDs(s.typeDefs) }

// ParentsOf returns the declared parent classes of a class definition.
func (s *Symbols) ParentsOf(def *ClassDef) []*ClassDef {
	parents := make([]*ClassDef, 0, len(def.Parents))
	for _, parent := range def.Parents {
		parents = append(parents, s.MustClass(parent.Id))
	}
	return parents
}
