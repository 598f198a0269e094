package kessoku

import (
	"reflect"
	"strings"

	"github.com/rotisserie/eris"
)

// queryTag is the struct tag that configures query field access.
const queryTag = "ecs"

// FieldSpec describes one field of a query: which component it reads and how.
type FieldSpec struct {
	// Name is the Go field name.
	Name string
	// Component is the descriptor of the component the field points at.
	Component TypeDescriptor
	// Access is the access mode borrowed for the component.
	Access Access
	// Optional fields match archetypes that lack the component and yield nil.
	Optional bool

	offset uintptr // field offset inside the item struct
}

// QuerySpec is the compiled form of a query item type. Fields keep their
// declaration order, which is the order used to test archetypes and to
// borrow component access.
//
// An item type is a struct of pointers to components:
//
//	type Movement struct {
//	    Pos  *Position `ecs:"mut"`
//	    Vel  *Velocity
//	    Tint *Color    `ecs:"opt"`
//	}
//
// Tag options: "mut" requests exclusive access, "opt" makes the field optional
// and "-" skips the field.
type QuerySpec struct {
	// Type is the query item's Go struct type.
	Type reflect.Type
	// Name is the query's display name.
	Name string
	// Fields lists the query fields in declaration order.
	Fields []FieldSpec

	required bitmask256 // components every matching archetype must hold
}

var queries schemaCache[*QuerySpec]

// QueryOf returns the compiled spec of query item type Q, compiling it once.
// It panics if Q is not a valid query item or requests conflicting access to
// one component type.
func QueryOf[Q any]() *QuerySpec {
	spec, err := CompileQuery(reflect.TypeFor[Q]())
	if err != nil {
		panic(err)
	}
	return spec
}

// MustRegisterQuery compiles query item type Q ahead of first use.
func MustRegisterQuery[Q any]() {
	QueryOf[Q]()
}

// CompileQuery is the non-panicking form of QueryOf.
func CompileQuery(t reflect.Type) (*QuerySpec, error) {
	if t == nil {
		return nil, eris.Wrap(ErrNotStruct, "query type is nil")
	}
	return queries.load(t, compileQuery)
}

func compileQuery(t reflect.Type) (*QuerySpec, error) {
	name := t.Name()
	if name == "" {
		name = t.String()
	}
	if t.Kind() != reflect.Struct {
		return nil, eris.Wrapf(ErrNotStruct, "query %s", name)
	}

	spec := &QuerySpec{Type: t, Name: name}
	modes := make(map[ComponentID]Access, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)
		field, skip, err := parseQueryField(name, f)
		if err != nil {
			return nil, err
		}
		if skip {
			continue
		}
		id := field.Component.ID
		if prev, seen := modes[id]; seen {
			if prev == AccessExclusive || field.Access == AccessExclusive {
				return nil, eris.Wrapf(ErrAccessConflict,
					"query %s requests %s %s and %s", name, field.Component.Name, prev, field.Access)
			}
		}
		modes[id] = field.Access
		if !field.Optional {
			spec.required.set(id)
		}
		spec.Fields = append(spec.Fields, field)
	}
	return spec, nil
}

func parseQueryField(query string, f reflect.StructField) (FieldSpec, bool, error) {
	field := FieldSpec{Name: f.Name, Access: AccessShared, offset: f.Offset}
	tag, hasTag := f.Tag.Lookup(queryTag)
	if tag == "-" || f.Name == "_" {
		return field, true, nil
	}
	if f.Type.Kind() != reflect.Pointer {
		return field, false, eris.Wrapf(ErrInvalidQueryField,
			"%s.%s must be a pointer to a component, got %s", query, f.Name, f.Type)
	}
	if hasTag && tag != "" {
		for _, opt := range strings.Split(tag, ",") {
			switch strings.TrimSpace(opt) {
			case "":
			case "mut":
				field.Access = AccessExclusive
			case "opt":
				field.Optional = true
			default:
				return field, false, eris.Wrapf(ErrInvalidQueryField,
					"%s.%s has unknown tag option %q", query, f.Name, opt)
			}
		}
	}
	field.Component = descriptorOf(f.Type.Elem())
	return field, false, nil
}

// Matches reports whether archetype a holds every non-optional component of
// the query.
func (s *QuerySpec) Matches(a *Archetype) bool {
	return a.mask.contains(s.required)
}

// Borrow acquires access for every field in declaration order. If a field
// conflicts with borrows held elsewhere, the fields already borrowed are
// released and Borrow panics with an error wrapping ErrBorrowConflict.
func (s *QuerySpec) Borrow(state *BorrowState) {
	for i := range s.Fields {
		f := &s.Fields[i]
		if err := state.TryBorrow(f.Component.ID, f.Access); err != nil {
			s.releaseFirst(state, i)
			panic(eris.Wrapf(err, "query %s", s.Name))
		}
	}
}

// Release gives back the access taken by Borrow, in reverse declaration
// order. Every Borrow must be matched by exactly one Release.
func (s *QuerySpec) Release(state *BorrowState) {
	s.releaseFirst(state, len(s.Fields))
}

// releaseFirst releases the first n fields in reverse order.
func (s *QuerySpec) releaseFirst(state *BorrowState, n int) {
	for i := n - 1; i >= 0; i-- {
		f := &s.Fields[i]
		state.Release(f.Component.ID, f.Access)
	}
}
