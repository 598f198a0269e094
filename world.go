// Package kessoku is an archetype-based Entity Component System whose storage
// layout is compiled from plain Go struct declarations.
//
// A bundle is a struct whose fields are components. Spawning a bundle compiles
// it once into a canonical Signature: component types ordered by decreasing
// alignment and then by identity, so every declaration of the same component
// set maps to the same archetype. Declaring a component type twice in one
// bundle is a schema error that fails fast.
//
// A query is a struct of pointers to components. Its fields are matched
// against archetypes in declaration order, optional fields yield nil when the
// component is absent, and access to each component type is borrowed shared or
// exclusively for as long as the query is iterating.
//
//	type StaticMesh struct {
//	    Mesh     MeshID
//	    Position Position
//	}
//
//	type Render struct {
//	    Mesh     *MeshID
//	    Position *Position `ecs:"mut"`
//	}
//
//	w := kessoku.NewWorld(1024)
//	kessoku.Spawn(w, StaticMesh{Mesh: "crate.gltf", Position: Position{1, 2, 3}})
//	for e, r := range kessoku.NewQuery[Render](w).All() {
//	    ...
//	}
//
// Bundle and query declarations can also be generated from a YAML schema with
// cmd/kessokugen.
//
//go:generate go run ./cmd/kessokugen generate --schema internal/testschema/schema.yaml --out internal/testschema/schema_generated.go
package kessoku

import (
	"log/slog"
	"reflect"
	"unsafe"

	"github.com/rotisserie/eris"
)

// World owns the entities, their archetypes and the borrow state shared by
// all queries over it. A World is not safe for concurrent use.
type World struct {
	archetypes      *archetypeTable
	events          *EventBus
	logger          *slog.Logger
	entities        entityRegistry
	resources       Resources
	borrows         BorrowState
	locks           int    // number of queries currently holding borrows
	mutationVersion uint32 // incremented on entity mutations
}

// NewWorld creates a World with room for initialCapacity entities before the
// entity registry has to grow.
func NewWorld(initialCapacity int, opts ...Option) *World {
	cfg := newWorldConfig(opts)
	w := &World{
		entities: newEntityRegistry(initialCapacity),
		events:   cfg.events,
		logger:   cfg.logger,
	}
	w.archetypes = newArchetypeTable(w.archetypeCreated)
	// Pre-create the empty archetype.
	w.archetypes.Allocate(nil)
	return w
}

func (w *World) archetypeCreated(a *Archetype) {
	w.logger.Debug("archetype allocated",
		slog.Uint64("id", uint64(a.id)),
		slog.String("signature", a.signature.String()))
	Publish(w.events, ArchetypeCreated{ID: a.id, Signature: a.signature})
}

// Resolver returns the world's archetype table.
func (w *World) Resolver() ArchetypeResolver {
	return w.archetypes
}

// Archetype returns the archetype with the given id, or nil.
func (w *World) Archetype(id ArchetypeID) *Archetype {
	if int(id) >= len(w.archetypes.archetypes) {
		return nil
	}
	return w.archetypes.get(id)
}

// ArchetypeCount returns the number of archetypes allocated so far, including
// the empty archetype.
func (w *World) ArchetypeCount() int {
	return len(w.archetypes.archetypes)
}

// Borrows returns the world's borrow coordinator.
func (w *World) Borrows() *BorrowState {
	return &w.borrows
}

// Events returns the bus the world publishes its events on.
func (w *World) Events() *EventBus {
	return w.events
}

// Resources returns the world's resource store.
func (w *World) Resources() *Resources {
	return &w.resources
}

// Version returns a counter that changes whenever an entity is spawned,
// removed or moved to another archetype. Systems use it to detect that
// cached entity state went out of date.
func (w *World) Version() uint32 {
	return w.mutationVersion
}

// Len returns the number of live entities.
func (w *World) Len() int {
	return w.entities.alive
}

// IsValid checks if the entity is currently alive in the world.
func (w *World) IsValid(e Entity) bool {
	return w.entities.meta(e) != nil
}

// ArchetypeOf returns the archetype holding e, or nil if e is not alive.
func (w *World) ArchetypeOf(e Entity) *Archetype {
	m := w.entities.meta(e)
	if m == nil {
		return nil
	}
	return w.archetypes.get(m.archetype)
}

// checkUnlocked panics if a query is iterating, since moving rows would
// invalidate the pointers it hands out.
func (w *World) checkUnlocked(op string) {
	if w.locks > 0 {
		panic(eris.Wrapf(ErrWorldLocked, "%s with %d active queries", op, w.locks))
	}
}

// CreateEntity creates a new entity with no components.
func (w *World) CreateEntity() Entity {
	w.checkUnlocked("create entity")
	a := w.archetypes.get(0)
	idx := a.reserve()
	return w.placed(a, idx)
}

// Spawn creates an entity holding every component of bundle. The bundle's
// archetype is looked up by signature and allocated on first use.
//
// Parameters:
//   - w: The World to spawn into.
//   - bundle: A bundle struct value whose fields are the components.
//
// Returns:
//   - The new entity.
//
// Spawn panics if B is not a valid bundle or a query is iterating.
func Spawn[B any](w *World, bundle B) Entity {
	info := BundleOf[B]()
	w.checkUnlocked("spawn " + info.Name)
	a := w.archetypes.get(info.archetypeIn(w.archetypes))
	return w.spawnInto(info, a, unsafe.Pointer(&bundle))
}

// spawnInto stores the bundle value at src in a fresh row of a.
func (w *World) spawnInto(info *BundleInfo, a *Archetype, src unsafe.Pointer) Entity {
	idx := a.reserve()
	info.store(src, a, idx)
	return w.placed(a, idx)
}

// placed registers a new entity for the just-written row idx of a.
func (w *World) placed(a *Archetype, idx int) Entity {
	e := w.entities.create(a.id, idx)
	a.entities[idx] = e
	w.mutationVersion++
	Publish(w.events, EntitySpawned{Entity: e, Archetype: a.id})
	return e
}

// SpawnDynamic creates an entity from a component set only known at run time.
// Unlike Spawn it reports a repeated component type as an error wrapping
// ErrDuplicateComponent instead of panicking.
func (w *World) SpawnDynamic(components ...any) (Entity, error) {
	descs := make([]TypeDescriptor, len(components))
	for i, c := range components {
		if c == nil {
			return Entity{}, eris.Errorf("kessoku: component %d is nil", i)
		}
		descs[i] = descriptorOf(reflect.TypeOf(c))
	}
	sorted, err := canonicalOrder("dynamic bundle", descs)
	if err != nil {
		return Entity{}, err
	}
	w.checkUnlocked("spawn dynamic bundle")
	a := w.archetypes.resolve(signatureOf(sorted), sorted)
	idx := a.reserve()
	for i, c := range components {
		v := reflect.New(descs[i].Type)
		v.Elem().Set(reflect.ValueOf(c))
		a.put(&descs[i], v.UnsafePointer(), idx)
	}
	return w.placed(a, idx), nil
}

// RemoveEntity removes a single entity. It returns false if e is not alive.
func (w *World) RemoveEntity(e Entity) bool {
	m := w.entities.meta(e)
	if m == nil {
		return false
	}
	w.checkUnlocked("remove entity")
	a := w.archetypes.get(m.archetype)
	if moved, ok := a.swapRemove(m.index); ok {
		w.entities.metas[moved.ID].index = m.index
	}
	w.entities.free(e)
	w.mutationVersion++
	Publish(w.events, EntityDespawned{Entity: e})
	return true
}

// RemoveEntities removes a batch of entities.
func (w *World) RemoveEntities(ents []Entity) {
	for _, e := range ents {
		w.RemoveEntity(e)
	}
}

// moveEntity relocates e from archetype from to archetype to, copying every
// component both archetypes share. Components only in to are left
// uninitialized for the caller to write.
func (w *World) moveEntity(e Entity, m *entityMeta, from, to *Archetype) {
	idx := to.reserve()
	for i := range from.columns {
		c := &from.columns[i]
		if to.mask.has(c.desc.ID) {
			to.put(&c.desc, c.at(m.index), idx)
		}
	}
	to.entities[idx] = e
	if moved, ok := from.swapRemove(m.index); ok {
		w.entities.metas[moved.ID].index = m.index
	}
	m.archetype = to.id
	m.index = idx
	w.mutationVersion++
}
