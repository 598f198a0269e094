package kessoku

import (
	"reflect"
	"unsafe"

	"github.com/rotisserie/eris"
)

// BundleInfo is the compiled schema of a bundle: a struct type whose fields
// are the components inserted together when an entity is spawned. It is
// computed once per bundle type and shared for the lifetime of the process.
type BundleInfo struct {
	// Type is the bundle's Go struct type.
	Type reflect.Type
	// Name is the bundle's display name.
	Name string
	// Signature is the canonical signature of the bundle's component set.
	Signature Signature

	fields []bundleField    // in signature order
	sorted []TypeDescriptor // in signature order
}

type bundleField struct {
	desc   TypeDescriptor
	name   string
	offset uintptr
}

var bundles schemaCache[*BundleInfo]

// BundleOf returns the compiled schema of bundle type B, compiling it on first
// use. Every non-blank field of B is one component.
//
// BundleOf panics if B is not a struct or declares the same component type
// twice. The failure is cached: later calls panic with the identical error,
// since such a bundle can never become valid.
func BundleOf[B any]() *BundleInfo {
	info, err := CompileBundle(reflect.TypeFor[B]())
	if err != nil {
		panic(err)
	}
	return info
}

// MustRegisterBundle compiles bundle type B ahead of first use. Generated code
// calls it from init so that schema errors surface at program start.
func MustRegisterBundle[B any]() {
	BundleOf[B]()
}

// CompileBundle is the non-panicking form of BundleOf.
func CompileBundle(t reflect.Type) (*BundleInfo, error) {
	if t == nil {
		return nil, eris.Wrap(ErrNotStruct, "bundle type is nil")
	}
	return bundles.load(t, compileBundle)
}

func compileBundle(t reflect.Type) (*BundleInfo, error) {
	name := t.Name()
	if name == "" {
		name = t.String()
	}
	if t.Kind() != reflect.Struct {
		return nil, eris.Wrapf(ErrNotStruct, "bundle %s", name)
	}

	fields := make([]bundleField, 0, t.NumField())
	descs := make([]TypeDescriptor, 0, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)
		if f.Name == "_" {
			continue
		}
		d := descriptorOf(f.Type)
		descs = append(descs, d)
		fields = append(fields, bundleField{desc: d, name: f.Name, offset: f.Offset})
	}

	sorted, err := canonicalOrder(name, descs)
	if err != nil {
		return nil, err
	}

	info := &BundleInfo{
		Type:      t,
		Name:      name,
		Signature: signatureOf(sorted),
		fields:    make([]bundleField, 0, len(fields)),
		sorted:    sorted,
	}
	for _, d := range sorted {
		for _, f := range fields {
			if f.desc.ID == d.ID {
				info.fields = append(info.fields, f)
				break
			}
		}
	}
	return info, nil
}

// Descriptors returns the bundle's component descriptors in signature order.
func (b *BundleInfo) Descriptors() []TypeDescriptor {
	return b.sorted
}

// archetypeIn resolves the bundle's archetype, allocating it on a miss.
func (b *BundleInfo) archetypeIn(r ArchetypeResolver) ArchetypeID {
	if id, ok := r.Lookup(b.Signature); ok {
		return id
	}
	return r.Allocate(b.sorted)
}

// store writes every field of the bundle value at src into row index of a.
//
// The caller guarantees that a holds this bundle's signature and that index
// was just reserved, so no column at that row has been initialized. Breaking
// either condition corrupts the archetype; it is not detected here.
func (b *BundleInfo) store(src unsafe.Pointer, a *Archetype, index int) {
	for i := range b.fields {
		f := &b.fields[i]
		a.put(&f.desc, unsafe.Add(src, f.offset), index)
	}
}
