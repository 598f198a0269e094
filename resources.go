package kessoku

import (
	"reflect"

	"github.com/rotisserie/eris"
)

// Resources holds world-wide singletons, such as a clock or an asset cache,
// that belong to no entity. At most one resource of each type is stored.
// Resources are kept behind pointers, so callers mutate them in place.
type Resources struct {
	items   []any
	types   map[reflect.Type]int
	freeIDs []int
}

// Add stores res and returns its slot. It returns an error wrapping
// ErrDuplicateResource if a resource of the same type is already present.
// Slots of removed resources are reused.
func (r *Resources) Add(res any) (int, error) {
	if res == nil {
		return -1, eris.New("kessoku: cannot add nil resource")
	}
	t := reflect.TypeOf(res)
	if r.types == nil {
		r.types = make(map[reflect.Type]int)
	}
	if _, ok := r.types[t]; ok {
		return -1, eris.Wrapf(ErrDuplicateResource, "%s", t)
	}
	var id int
	if n := len(r.freeIDs); n > 0 {
		id = r.freeIDs[n-1]
		r.freeIDs = r.freeIDs[:n-1]
		r.items[id] = res
	} else {
		r.items = append(r.items, res)
		id = len(r.items) - 1
	}
	r.types[t] = id
	return id, nil
}

// Has checks if a resource occupies the slot.
func (r *Resources) Has(id int) bool {
	return id >= 0 && id < len(r.items) && r.items[id] != nil
}

// Get returns the resource in the slot, or nil.
func (r *Resources) Get(id int) any {
	if !r.Has(id) {
		return nil
	}
	return r.items[id]
}

// Remove empties the slot, if occupied, and frees it for reuse.
func (r *Resources) Remove(id int) {
	if !r.Has(id) {
		return
	}
	delete(r.types, reflect.TypeOf(r.items[id]))
	r.items[id] = nil
	r.freeIDs = append(r.freeIDs, id)
}

// Len returns the number of stored resources.
func (r *Resources) Len() int {
	return len(r.types)
}

// Clear removes all resources.
func (r *Resources) Clear() {
	clear(r.items)
	r.items = r.items[:0]
	clear(r.types)
	r.freeIDs = r.freeIDs[:0]
}

// AddResource stores res as the world's resource of type T.
//
// It panics with an error wrapping ErrDuplicateResource if w already holds a
// *T.
func AddResource[T any](w *World, res *T) {
	if _, err := w.resources.Add(res); err != nil {
		panic(err)
	}
	w.logger.Debug("resource added", "type", reflect.TypeFor[T]().String())
}

// Resource returns the world's resource of type T, or nil.
func Resource[T any](w *World) *T {
	id, ok := w.resources.types[reflect.TypeFor[*T]()]
	if !ok {
		return nil
	}
	return w.resources.items[id].(*T)
}

// HasResource reports whether the world holds a resource of type T.
func HasResource[T any](w *World) bool {
	_, ok := w.resources.types[reflect.TypeFor[*T]()]
	return ok
}

// RemoveResource removes the world's resource of type T. It returns false if
// there was none.
func RemoveResource[T any](w *World) bool {
	id, ok := w.resources.types[reflect.TypeFor[*T]()]
	if ok {
		w.resources.Remove(id)
	}
	return ok
}
