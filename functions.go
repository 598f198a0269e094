package kessoku

import (
	"reflect"
	"slices"

	"github.com/rotisserie/eris"
)

// Get retrieves a pointer to the component of type T for the given entity.
//
// If the entity is invalid or does not have the component, Get returns nil.
// The pointer stays valid until the entity's archetype changes.
//
// Get panics with an error wrapping ErrBorrowConflict while a query holds
// exclusive access to T.
func Get[T any](w *World, e Entity) *T {
	m := w.entities.meta(e)
	if m == nil {
		return nil
	}
	d, ok := lookupDescriptor(reflect.TypeFor[T]())
	if !ok {
		return nil
	}
	c := w.archetypes.get(m.archetype).column(d.ID)
	if c == nil {
		return nil
	}
	if w.borrows.Exclusive(d.ID) {
		panic(eris.Wrapf(ErrBorrowConflict, "get %s: borrowed exclusively", d.Name))
	}
	return (*T)(c.at(m.index))
}

// Has reports whether the entity holds a component of type T.
func Has[T any](w *World, e Entity) bool {
	m := w.entities.meta(e)
	if m == nil {
		return false
	}
	d, ok := lookupDescriptor(reflect.TypeFor[T]())
	return ok && w.archetypes.get(m.archetype).Has(d.ID)
}

// Set adds a component of type T with the given value to an entity, or
// updates it if the component already exists.
//
// Adding a component moves the entity to the archetype of its new component
// set, which is resolved through the same canonical signatures bundles use.
// Set returns false if the entity is invalid.
//
// Updating in place needs momentary exclusive access to T: Set panics with an
// error wrapping ErrBorrowConflict while a query borrows T.
func Set[T any](w *World, e Entity, val T) bool {
	m := w.entities.meta(e)
	if m == nil {
		return false
	}
	d := DescriptorOf[T]()
	a := w.archetypes.get(m.archetype)
	if c := a.column(d.ID); c != nil {
		if err := w.borrows.TryBorrow(d.ID, AccessExclusive); err != nil {
			panic(eris.Wrapf(err, "set %s", d.Name))
		}
		*(*T)(c.at(m.index)) = val
		w.borrows.Release(d.ID, AccessExclusive)
		return true
	}

	w.checkUnlocked("set " + d.Name)
	descs := append(a.descriptors(), d)
	sorted, err := canonicalOrder("archetype", descs)
	if err != nil {
		panic(err)
	}
	target := w.archetypes.resolve(signatureOf(sorted), sorted)
	w.moveEntity(e, m, a, target)
	*(*T)(target.column(d.ID).at(m.index)) = val
	return true
}

// Remove removes the component of type T from the entity, moving it to the
// archetype of its remaining components. It returns false if the entity is
// invalid or does not have the component.
func Remove[T any](w *World, e Entity) bool {
	m := w.entities.meta(e)
	if m == nil {
		return false
	}
	d, ok := lookupDescriptor(reflect.TypeFor[T]())
	if !ok {
		return false
	}
	a := w.archetypes.get(m.archetype)
	if !a.Has(d.ID) {
		return false
	}

	w.checkUnlocked("remove " + d.Name)
	descs := slices.DeleteFunc(a.descriptors(), func(x TypeDescriptor) bool { return x.ID == d.ID })
	sorted, err := canonicalOrder("archetype", descs)
	if err != nil {
		panic(err)
	}
	target := w.archetypes.resolve(signatureOf(sorted), sorted)
	w.moveEntity(e, m, a, target)
	return true
}

// descriptors returns a fresh slice of the archetype's component descriptors
// in signature order.
func (a *Archetype) descriptors() []TypeDescriptor {
	descs := make([]TypeDescriptor, len(a.columns), len(a.columns)+1)
	for i := range a.columns {
		descs[i] = a.columns[i].desc
	}
	return descs
}
