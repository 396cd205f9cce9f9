package light2d

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuery_Map(t *testing.T) {
	type Comp1 struct{ a int }
	type Comp2 struct{ b float32 }
	type Comp3 struct{}

	ecs := MakeEcs()
	ecs.addEntity(Comp1{a: 1})                                 // comp1 only                       -- shouldn't match
	id2 := ecs.addEntity(Comp1{a: 2}, Comp2{b: 1.37})          // comp1 & comp2                    -- should match
	id3 := ecs.addEntity(Comp1{a: 3}, Comp2{b: 4.20}, Comp3{}) // comp1 & comp2 + something extra  -- should match
	ecs.addEntity(Comp1{a: 4}, Comp3{})                        // comp1 + something extra          -- shouldn't match
	ecs.addEntity(Comp2{b: 3.14})                              // comp2 only                       -- shouldn't match

	query := Query2[Comp1, Comp2]{ecs: &ecs}

	var ids []EntityId
	var as []Comp1
	var bs []Comp2
	query.Map(func(entityId EntityId, comp1 *Comp1, comp2 *Comp2) bool {
		ids = append(ids, entityId)
		as = append(as, *comp1)
		bs = append(bs, *comp2)
		return true
	})

	assert.Equal(t, []EntityId{id2, id3}, ids)
	assert.Equal(t, []Comp1{{a: 2}, {a: 3}}, as)
	assert.Equal(t, []Comp2{{b: 1.37}, {b: 4.20}}, bs)
}

func TestQuery_MapVisitsEntitiesInIdOrderAcrossArchetypes(t *testing.T) {
	type Light struct{ n int }
	type Tag struct{}
	type Other struct{}

	ecs := MakeEcs()
	var want []EntityId
	for i := range 12 {
		// Spread entities over three archetypes.
		switch i % 3 {
		case 0:
			want = append(want, ecs.addEntity(Light{n: i}))
		case 1:
			want = append(want, ecs.addEntity(Light{n: i}, Tag{}))
		default:
			want = append(want, ecs.addEntity(Light{n: i}, Other{}))
		}
	}

	for range 5 {
		var got []EntityId
		Query1[Light]{ecs: &ecs}.Map(func(id EntityId, l *Light) bool {
			got = append(got, id)
			return true
		})
		assert.Equal(t, want, got)
	}
}

func TestQuery_MapStopsWhenCallbackReturnsFalse(t *testing.T) {
	type Comp struct{}

	ecs := MakeEcs()
	for range 4 {
		ecs.addEntity(Comp{})
	}

	visited := 0
	Query1[Comp]{ecs: &ecs}.Map(func(EntityId, *Comp) bool {
		visited++
		return false
	})
	assert.Equal(t, 1, visited)
}

func TestQuery_MapOptionalComponent(t *testing.T) {
	type Required struct{ v int }
	type Optional struct{ v int }

	ecs := MakeEcs()
	withOpt := ecs.addEntity(Required{v: 1}, Optional{v: 10})
	withoutOpt := ecs.addEntity(Required{v: 2})

	seen := map[EntityId]*Optional{}
	Query2[Required, Optional]{ecs: &ecs}.Map(func(id EntityId, r *Required, o *Optional) bool {
		seen[id] = o
		return true
	}, Optional{})

	assert.Len(t, seen, 2)
	if assert.NotNil(t, seen[withOpt]) {
		assert.Equal(t, 10, seen[withOpt].v)
	}
	assert.Nil(t, seen[withoutOpt])
}

func TestQuery_MapWritesThrough(t *testing.T) {
	type Counter struct{ n int }

	ecs := MakeEcs()
	id := ecs.addEntity(Counter{})
	q := Query1[Counter]{ecs: &ecs}
	q.Map(func(_ EntityId, c *Counter) bool {
		c.n = 7
		return true
	})

	q.Map(func(got EntityId, c *Counter) bool {
		assert.Equal(t, id, got)
		assert.Equal(t, 7, c.n)
		return true
	})
	assert.Equal(t, 1, q.Count())
}
