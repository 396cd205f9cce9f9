package light2d

// HierarchyModule keeps the world transform of parented entities in sync, so
// that a light or occluder can follow another entity.
type HierarchyModule struct{}

func (HierarchyModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(TransformHierarchySystem).
			InStage(PostUpdate).
			RunAlways(),
	)
}

// maxHierarchyDepth bounds propagation; deeper chains converge over frames.
const maxHierarchyDepth = 8

func TransformHierarchySystem(cmd *Commands) {
	world := make(map[EntityId]TransformComponent)
	MakeQuery1[TransformComponent](cmd).Map(func(eid EntityId, tr *TransformComponent) bool {
		world[eid] = *tr
		return true
	})

	for pass := 0; pass < maxHierarchyDepth; pass++ {
		changed := false
		MakeQuery3[LocalTransformComponent, Parent, TransformComponent](cmd).Map(
			func(eid EntityId, local *LocalTransformComponent, parent *Parent, tr *TransformComponent) bool {
				parentWorld, ok := world[parent.Entity]
				if !ok {
					return true
				}
				next := composeTransform(parentWorld, *local)
				if next != *tr {
					*tr = next
					world[eid] = next
					changed = true
				}
				return true
			})
		if !changed {
			break
		}
	}
}
