package light2d

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEcs_MakeEcs(t *testing.T) {
	ecs := MakeEcs()

	assert.Empty(t, ecs.archetypes)
	assert.Empty(t, ecs.entityIndex)
	assert.Equal(t, EntityId(0), ecs.entityIdCounter)
	assert.Equal(t, componentId(0), ecs.componentIdCounter)
}

func TestEcs_AddEntity(t *testing.T) {
	type TestComponent struct{ x string }

	ecs := MakeEcs()
	entityId := ecs.addEntity()
	require.Contains(t, ecs.entityIndex, entityId)

	entityId2 := ecs.addEntity(TestComponent{x: "test"})
	require.Contains(t, ecs.entityIndex, entityId2)

	assert.NotEqual(t, ecs.entityIndex[entityId], ecs.entityIndex[entityId2],
		"entities with different components should not share an archetype")
}

func TestEcs_AddComponents(t *testing.T) {
	type TestComponent0 struct{ a int }
	type TestComponent1 struct{ x string }
	type TestComponent2 struct{ y string }
	type TestComponent3 struct{ z string }

	ecs := MakeEcs()
	entityId := ecs.addEntity(TestComponent0{a: 1337})

	ecs.addComponents(entityId, TestComponent1{x: "test"}, TestComponent2{y: "hello"})
	// Pointers are stored by value.
	ecs.addComponents(entityId, &TestComponent3{z: "test-2"})

	arch := ecs.archetypes[ecs.entityIndex[entityId]]
	require.Len(t, arch.componentData, 4)

	r := arch.entities[entityId]
	id0 := ecs.getComponentId(reflect.TypeFor[TestComponent0]())
	id3 := ecs.getComponentId(reflect.TypeFor[TestComponent3]())
	assert.Equal(t, 1337, arch.componentData[id0].([]TestComponent0)[r].a)
	assert.Equal(t, "test-2", arch.componentData[id3].([]TestComponent3)[r].z)
}

func TestEcs_AddComponentsOverwritesExisting(t *testing.T) {
	type Counter struct{ n int }

	ecs := MakeEcs()
	id := ecs.addEntity(Counter{n: 1})
	archBefore := ecs.entityIndex[id]

	ecs.addComponents(id, Counter{n: 2})

	assert.Equal(t, archBefore, ecs.entityIndex[id])
	arch := ecs.archetypes[archBefore]
	compId := ecs.getComponentId(reflect.TypeFor[Counter]())
	assert.Equal(t, 2, arch.componentData[compId].([]Counter)[arch.entities[id]].n)
}

func TestEcs_RemoveComponents(t *testing.T) {
	type A struct{ v int }
	type B struct{ v int }

	ecs := MakeEcs()
	id := ecs.addEntity(A{v: 1}, B{v: 2})
	ecs.removeComponents(id, B{})

	arch := ecs.archetypes[ecs.entityIndex[id]]
	require.Len(t, arch.componentData, 1)
	compId := ecs.getComponentId(reflect.TypeFor[A]())
	assert.Equal(t, 1, arch.componentData[compId].([]A)[arch.entities[id]].v)
}

func TestEcs_AddInvalidComponentShouldPanic(t *testing.T) {
	ecs := MakeEcs()
	assert.Panics(t, func() { ecs.addEntity(123) })
}

func TestEcs_ComponentRegistration(t *testing.T) {
	type Position struct{ x, y float64 }

	ecs := MakeEcs()
	id1 := ecs.getComponentId(reflect.TypeOf(Position{}))
	id2 := ecs.getComponentId(reflect.TypeOf(Position{}))

	assert.Equal(t, id1, id2)
	assert.Equal(t, reflect.TypeOf(Position{}), ecs.getComponentType(id1))
	assert.Panics(t, func() { ecs.getComponentType(id1 + 100) })
}

func TestEcs_ArchetypeKeyIsSortedAndDeduplicated(t *testing.T) {
	key := dedupAndSortArchetypeKey([]componentId{3, 1, 2, 1, 3})
	assert.Equal(t, archetypeKey{1, 2, 3}, key)

	assert.Equal(t,
		getArchetypeId(archetypeKey{1, 2, 3}),
		getArchetypeId(dedupAndSortArchetypeKey([]componentId{2, 3, 1})))
}

func TestEcs_RemoveEntity(t *testing.T) {
	type Position struct{ X, Y float64 }

	ecs := MakeEcs()
	id := ecs.addEntity(Position{1, 2})
	ecs.removeEntity(id)

	assert.NotContains(t, ecs.entityIndex, id)

	// Removing twice is harmless.
	ecs.removeEntity(id)
}

func TestEcs_RecycledRowIsReused(t *testing.T) {
	type Position struct{ X, Y float64 }

	ecs := MakeEcs()
	first := ecs.addEntity(Position{1, 2})
	arch := ecs.archetypes[ecs.entityIndex[first]]
	freed := arch.entities[first]

	ecs.removeEntity(first)
	second := ecs.addEntity(Position{3, 4})

	assert.Equal(t, freed, arch.entities[second])
	compId := ecs.getComponentId(reflect.TypeFor[Position]())
	assert.Len(t, arch.componentData[compId].([]Position), 1)
	assert.Equal(t, Position{3, 4}, arch.componentData[compId].([]Position)[freed])
}
