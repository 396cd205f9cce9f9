package light2d

import (
	"cmp"
	"reflect"
	"slices"
)

// Queries visit matching entities in ascending EntityId order, whatever
// archetype they live in. Extraction depends on this to hand out stable
// per-frame buffer indices.
type Query1[A any] struct{ ecs *Ecs }
type Query2[A, B any] struct{ ecs *Ecs }
type Query3[A, B, C any] struct{ ecs *Ecs }
type Query4[A, B, C, D any] struct{ ecs *Ecs }

func MakeQuery1[A any](cmd *Commands) Query1[A]             { return Query1[A]{ecs: cmd.app.ecs} }
func MakeQuery2[A, B any](cmd *Commands) Query2[A, B]       { return Query2[A, B]{ecs: cmd.app.ecs} }
func MakeQuery3[A, B, C any](cmd *Commands) Query3[A, B, C] { return Query3[A, B, C]{ecs: cmd.app.ecs} }
func MakeQuery4[A, B, C, D any](cmd *Commands) Query4[A, B, C, D] {
	return Query4[A, B, C, D]{ecs: cmd.app.ecs}
}

type queryMatch struct {
	entity EntityId
	arch   *archetype
	row    row
}

// match collects every entity whose archetype holds all required components.
// Components listed in optional may be absent; their pointer is then nil.
func (ecs *Ecs) match(required []componentId, optional set[componentId]) []queryMatch {
	var matches []queryMatch
	for _, arch := range ecs.archetypes {
		ok := true
		for _, id := range required {
			if _, opt := optional[id]; !arch.has(id) && !opt {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		for entityId, r := range arch.entities {
			matches = append(matches, queryMatch{entity: entityId, arch: arch, row: r})
		}
	}

	slices.SortFunc(matches, func(a, b queryMatch) int {
		return cmp.Compare(a.entity, b.entity)
	})
	return matches
}

func componentAt[T any](m queryMatch, id componentId) *T {
	data, ok := m.arch.componentData[id]
	if !ok {
		return nil
	}
	return &data.([]T)[m.row]
}

func (q Query1[A]) Map(m func(EntityId, *A) bool, optionals ...any) {
	id1 := identifyComponent[A](q.ecs)
	for _, e := range q.ecs.match([]componentId{id1}, identifyOptionals(q.ecs, optionals...)) {
		if !m(e.entity, componentAt[A](e, id1)) {
			return
		}
	}
}

func (q Query2[A, B]) Map(m func(EntityId, *A, *B) bool, optionals ...any) {
	id1, id2 := identifyComponent[A](q.ecs), identifyComponent[B](q.ecs)
	for _, e := range q.ecs.match([]componentId{id1, id2}, identifyOptionals(q.ecs, optionals...)) {
		if !m(e.entity, componentAt[A](e, id1), componentAt[B](e, id2)) {
			return
		}
	}
}

func (q Query3[A, B, C]) Map(m func(EntityId, *A, *B, *C) bool, optionals ...any) {
	id1, id2, id3 := identifyComponent[A](q.ecs), identifyComponent[B](q.ecs), identifyComponent[C](q.ecs)
	for _, e := range q.ecs.match([]componentId{id1, id2, id3}, identifyOptionals(q.ecs, optionals...)) {
		if !m(e.entity, componentAt[A](e, id1), componentAt[B](e, id2), componentAt[C](e, id3)) {
			return
		}
	}
}

func (q Query4[A, B, C, D]) Map(m func(EntityId, *A, *B, *C, *D) bool, optionals ...any) {
	id1, id2 := identifyComponent[A](q.ecs), identifyComponent[B](q.ecs)
	id3, id4 := identifyComponent[C](q.ecs), identifyComponent[D](q.ecs)
	for _, e := range q.ecs.match([]componentId{id1, id2, id3, id4}, identifyOptionals(q.ecs, optionals...)) {
		if !m(e.entity, componentAt[A](e, id1), componentAt[B](e, id2), componentAt[C](e, id3), componentAt[D](e, id4)) {
			return
		}
	}
}

// Count returns the number of entities the query would visit.
func (q Query1[A]) Count() int {
	return len(q.ecs.match([]componentId{identifyComponent[A](q.ecs)}, nil))
}

func identifyOptionals(ecs *Ecs, components ...any) set[componentId] {
	res := make(set[componentId])
	for _, c := range components {
		res[ecs.getComponentId(componentType(c))] = struct{}{}
	}
	return res
}

func identifyComponent[A any](ecs *Ecs) componentId {
	return ecs.getComponentId(reflect.TypeFor[A]())
}
