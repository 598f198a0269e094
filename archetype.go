package kessoku

import (
	"reflect"
	"unsafe"
)

// ArchetypeID identifies an archetype within a World.
type ArchetypeID uint32

// minArchetypeCapacity is the number of rows allocated the first time an
// archetype receives an entity.
const minArchetypeCapacity = 64

// ArchetypeResolver maps canonical signatures to archetypes. Bundles always
// call Lookup first and only Allocate on a miss.
type ArchetypeResolver interface {
	// Lookup returns the archetype registered for sig, if any.
	Lookup(sig Signature) (ArchetypeID, bool)
	// Allocate returns the archetype holding exactly descs, creating it when
	// needed. descs may be in any order but must not contain duplicates.
	Allocate(descs []TypeDescriptor) ArchetypeID
}

// column is the storage of one component type inside an archetype.
type column struct {
	desc TypeDescriptor
	data reflect.Value // []T, len == cap
	base unsafe.Pointer
}

// Archetype stores every entity that has exactly one particular set of
// component types. Each component type owns one column; row i of every column
// belongs to entities[i].
type Archetype struct {
	signature Signature
	columns   []column                 // in signature order
	entities  []Entity                 // len == cap of the columns
	slots     [MaxComponentTypes]uint8 // column index per component ID
	mask      bitmask256               // which component IDs this archetype holds
	id        ArchetypeID
	size      int // number of live rows
}

func newArchetype(id ArchetypeID, sorted []TypeDescriptor) *Archetype {
	a := &Archetype{
		id:        id,
		signature: signatureOf(sorted),
		columns:   make([]column, len(sorted)),
	}
	for i, d := range sorted {
		a.columns[i].desc = d
		a.slots[d.ID] = uint8(i)
		a.mask.set(d.ID)
	}
	return a
}

// ID returns the archetype's identifier.
func (a *Archetype) ID() ArchetypeID {
	return a.id
}

// Signature returns the canonical signature of the archetype.
func (a *Archetype) Signature() Signature {
	return a.signature
}

// Len returns the number of entities stored in the archetype.
func (a *Archetype) Len() int {
	return a.size
}

// Has reports whether the archetype stores components of the given type.
func (a *Archetype) Has(id ComponentID) bool {
	return a.mask.has(id)
}

// Entities returns the live entities in row order. The slice is owned by the
// archetype and is invalidated by the next structural change.
func (a *Archetype) Entities() []Entity {
	return a.entities[:a.size]
}

// column returns the column for id, or nil if the archetype lacks it.
func (a *Archetype) column(id ComponentID) *column {
	if !a.mask.has(id) {
		return nil
	}
	return &a.columns[a.slots[id]]
}

// at returns the address of row index in c.
func (c *column) at(index int) unsafe.Pointer {
	return unsafe.Add(c.base, uintptr(index)*c.desc.Size)
}

// reserve appends an uninitialized row and returns its index.
func (a *Archetype) reserve() int {
	if a.size == len(a.entities) {
		a.grow(1)
	}
	idx := a.size
	a.size++
	return idx
}

// grow reallocates every column so at least n more rows fit.
func (a *Archetype) grow(n int) {
	newCap := max(2*len(a.entities), a.size+n, minArchetypeCapacity)
	ents := make([]Entity, newCap)
	copy(ents, a.entities[:a.size])
	a.entities = ents
	for i := range a.columns {
		c := &a.columns[i]
		data := reflect.MakeSlice(reflect.SliceOf(c.desc.Type), newCap, newCap)
		if c.data.IsValid() {
			reflect.Copy(data, c.data.Slice(0, a.size))
		}
		c.data = data
		c.base = data.UnsafePointer()
	}
}

// put writes the component at src into row index.
//
// The row must have been reserved and not yet written for this component.
func (a *Archetype) put(d *TypeDescriptor, src unsafe.Pointer, index int) {
	c := &a.columns[a.slots[d.ID]]
	copyComponent(&c.desc, c.at(index), src)
}

// swapRemove deletes row index by moving the last row into it. It returns the
// entity that moved, if any.
func (a *Archetype) swapRemove(index int) (Entity, bool) {
	last := a.size - 1
	var moved Entity
	ok := false
	if index < last {
		moved = a.entities[last]
		a.entities[index] = moved
		for i := range a.columns {
			c := &a.columns[i]
			copyComponent(&c.desc, c.at(index), c.at(last))
		}
		ok = true
	}
	for i := range a.columns {
		c := &a.columns[i]
		zeroComponent(&c.desc, c.at(last))
	}
	a.entities[last] = Entity{}
	a.size--
	return moved, ok
}

// archetypeTable is the world's ArchetypeResolver.
type archetypeTable struct {
	index      map[string]ArchetypeID // signature key -> archetype
	archetypes []*Archetype
	onCreate   func(*Archetype)
	version    uint32 // incremented when a new archetype is created
}

func newArchetypeTable(onCreate func(*Archetype)) *archetypeTable {
	return &archetypeTable{
		index:      make(map[string]ArchetypeID),
		archetypes: make([]*Archetype, 0, 16),
		onCreate:   onCreate,
	}
}

// Lookup implements ArchetypeResolver.
func (t *archetypeTable) Lookup(sig Signature) (ArchetypeID, bool) {
	id, ok := t.index[sig.Key()]
	return id, ok
}

// Allocate implements ArchetypeResolver. It panics if descs holds the same
// component type twice.
func (t *archetypeTable) Allocate(descs []TypeDescriptor) ArchetypeID {
	sorted, err := canonicalOrder("archetype", descs)
	if err != nil {
		panic(err)
	}
	key := signatureOf(sorted).Key()
	if id, ok := t.index[key]; ok {
		return id
	}
	a := newArchetype(ArchetypeID(len(t.archetypes)), sorted)
	t.archetypes = append(t.archetypes, a)
	t.index[key] = a.id
	t.version++
	if t.onCreate != nil {
		t.onCreate(a)
	}
	return a.id
}

// get returns the archetype with the given id.
func (t *archetypeTable) get(id ArchetypeID) *Archetype {
	return t.archetypes[id]
}

// resolve looks up the archetype for sorted descriptors, allocating on miss.
func (t *archetypeTable) resolve(sig Signature, sorted []TypeDescriptor) *Archetype {
	if id, ok := t.Lookup(sig); ok {
		return t.archetypes[id]
	}
	return t.archetypes[t.Allocate(sorted)]
}
