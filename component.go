package kessoku

import (
	"fmt"
	"reflect"
	"sync"
	"unsafe"
)

// MaxComponentTypes defines the maximum number of unique component types that can be
// registered in a process. This value is fixed at 256.
const MaxComponentTypes = 256

// ComponentID is the process-wide identity of a component type. IDs are handed
// out in first-use order, so they are unique, stable for the lifetime of the
// process and totally ordered.
type ComponentID uint8

// TypeDescriptor describes a component type. It is created once per type and
// shared by every bundle and query that references it.
type TypeDescriptor struct {
	// Type is the Go type of the component.
	Type reflect.Type
	// Name is the display name used in error messages and logs.
	Name string
	// Size is the size of one component value in bytes.
	Size uintptr
	// Align is the required alignment of the component in bytes.
	Align uintptr
	// ID is the process-wide identity of the component type.
	ID ComponentID

	pointers bool // true when values must be copied with write barriers
}

// componentRegistry is the process-wide descriptor table.
type componentRegistry struct {
	mu     sync.RWMutex
	byType map[reflect.Type]TypeDescriptor
	byID   [MaxComponentTypes]TypeDescriptor
	next   uint16 // counter for assigning new component IDs
}

var components = componentRegistry{
	byType: make(map[reflect.Type]TypeDescriptor, 16),
}

// DescriptorOf returns the descriptor of the component type T, registering it
// on first use.
//
// It panics if more than MaxComponentTypes distinct types are registered.
func DescriptorOf[T any]() TypeDescriptor {
	return descriptorOf(reflect.TypeFor[T]())
}

// descriptorOf registers or fetches the descriptor for t.
func descriptorOf(t reflect.Type) TypeDescriptor {
	components.mu.RLock()
	d, ok := components.byType[t]
	components.mu.RUnlock()
	if ok {
		return d
	}

	components.mu.Lock()
	defer components.mu.Unlock()
	// Re-check under lock in case another goroutine registered t meanwhile.
	if d, ok := components.byType[t]; ok {
		return d
	}
	if components.next >= MaxComponentTypes {
		panic(fmt.Sprintf("kessoku: cannot register component %s: maximum number of component types (%d) reached", t, MaxComponentTypes))
	}
	d = TypeDescriptor{
		Type:     t,
		Name:     t.String(),
		Size:     t.Size(),
		Align:    uintptr(t.Align()),
		ID:       ComponentID(components.next),
		pointers: containsPointers(t),
	}
	components.byType[t] = d
	components.byID[d.ID] = d
	components.next++
	return d
}

// descriptorByID returns the descriptor registered under id.
func descriptorByID(id ComponentID) TypeDescriptor {
	components.mu.RLock()
	defer components.mu.RUnlock()
	return components.byID[id]
}

// lookupDescriptor returns the descriptor for t without registering it.
func lookupDescriptor(t reflect.Type) (TypeDescriptor, bool) {
	components.mu.RLock()
	defer components.mu.RUnlock()
	d, ok := components.byType[t]
	return d, ok
}

// compareLayout orders descriptors for a canonical layout:
// larger alignment first, ties broken by ascending identity.
func compareLayout(a, b TypeDescriptor) int {
	switch {
	case a.Align > b.Align:
		return -1
	case a.Align < b.Align:
		return 1
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	}
	return 0
}

// containsPointers reports whether values of t hold pointers the garbage
// collector must see.
func containsPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return t.Len() > 0 && containsPointers(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if containsPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	}
	return true
}

// copyComponent copies one value of d's type from src to dst.
func copyComponent(d *TypeDescriptor, dst, src unsafe.Pointer) {
	if d.pointers {
		reflect.NewAt(d.Type, dst).Elem().Set(reflect.NewAt(d.Type, src).Elem())
		return
	}
	memCopy(dst, src, d.Size)
}

// zeroComponent clears the value of d's type at p so it no longer retains
// references.
func zeroComponent(d *TypeDescriptor, p unsafe.Pointer) {
	if d.pointers {
		reflect.NewAt(d.Type, p).Elem().SetZero()
	}
}

// memCopy copies size bytes from src to dst using built-in copy for performance.
func memCopy(dst, src unsafe.Pointer, size uintptr) {
	if size == 0 {
		return
	}
	dstBytes := unsafe.Slice((*byte)(dst), size)
	srcBytes := unsafe.Slice((*byte)(src), size)
	copy(dstBytes, srcBytes)
}
