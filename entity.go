package kessoku

// Entity represents a unique identifier for an object in the World. It combines
// a 32-bit ID with a 32-bit version so that recycled IDs are not confused with
// new entities.
type Entity struct {
	// ID is the unique, recyclable identifier for the entity.
	ID uint32
	// Version is a generation counter to protect against stale entity references.
	// It is incremented each time an entity ID is reused.
	Version uint32
}

// entityMeta holds the internal location and state of an entity.
type entityMeta struct {
	archetype ArchetypeID // archetype holding the entity
	index     int         // row inside the archetype
	version   uint32      // current version, 0 if the entity is dead
}

// entityRegistry tracks entity ids, versions and locations.
type entityRegistry struct {
	freeIDs       []uint32     // stack of recycled entity IDs
	metas         []entityMeta // indexed by entity ID
	capacity      int          // current maximum number of entities
	nextEntityVer uint32       // version for the next created entity
	alive         int
}

func newEntityRegistry(initialCapacity int) entityRegistry {
	r := entityRegistry{
		capacity:      initialCapacity,
		freeIDs:       make([]uint32, initialCapacity),
		metas:         make([]entityMeta, initialCapacity),
		nextEntityVer: 1,
	}
	for i := range r.freeIDs {
		r.freeIDs[i] = uint32(initialCapacity - 1 - i)
	}
	return r
}

// expand increases capacity when the free list runs dry.
func (r *entityRegistry) expand(additional int) {
	oldCap := r.capacity
	newCap := max(oldCap*2, oldCap+additional, 1)
	delta := newCap - oldCap
	r.metas = append(r.metas, make([]entityMeta, delta)...)
	for i := range delta {
		r.freeIDs = append(r.freeIDs, uint32(newCap-1-i))
	}
	r.capacity = newCap
}

// create pops a free id and records the entity at row index of archetype a.
func (r *entityRegistry) create(a ArchetypeID, index int) Entity {
	if len(r.freeIDs) == 0 {
		r.expand(1)
	}
	last := len(r.freeIDs) - 1
	id := r.freeIDs[last]
	r.freeIDs = r.freeIDs[:last]
	meta := &r.metas[id]
	meta.archetype = a
	meta.index = index
	meta.version = r.nextEntityVer
	r.nextEntityVer++
	// Version 0 marks a dead slot.
	if r.nextEntityVer == 0 {
		r.nextEntityVer = 1
	}
	r.alive++
	return Entity{ID: id, Version: meta.version}
}

// meta returns the metadata for a live entity, or nil when e is stale or
// out of range.
func (r *entityRegistry) meta(e Entity) *entityMeta {
	if int(e.ID) >= len(r.metas) {
		return nil
	}
	m := &r.metas[e.ID]
	if m.version == 0 || m.version != e.Version {
		return nil
	}
	return m
}

// free invalidates e and recycles its id.
func (r *entityRegistry) free(e Entity) {
	m := &r.metas[e.ID]
	m.version = 0
	m.index = -1
	r.freeIDs = append(r.freeIDs, e.ID)
	r.alive--
}
