package kessoku

import (
	"slices"
	"strings"

	"github.com/rotisserie/eris"
)

// Signature is the canonical, layout-ordered sequence of component IDs that
// identifies an archetype. Two component sets with the same members always
// produce equal signatures, whatever order they were declared in.
type Signature []ComponentID

// Canonicalize turns an unordered set of component descriptors into a
// signature. Components are ordered by decreasing alignment, and by ascending
// identity for equal alignment, so contiguous layouts need minimal padding and
// the result depends only on the set of types.
//
// A component type that appears more than once yields an error wrapping
// ErrDuplicateComponent.
func Canonicalize(descs ...TypeDescriptor) (Signature, error) {
	sorted, err := canonicalOrder("component set", descs)
	if err != nil {
		return nil, err
	}
	return signatureOf(sorted), nil
}

// canonicalOrder returns a sorted copy of descs. owner names the bundle in
// duplicate errors.
func canonicalOrder(owner string, descs []TypeDescriptor) ([]TypeDescriptor, error) {
	var seen bitmask256
	for _, d := range descs {
		if seen.has(d.ID) {
			return nil, eris.Wrapf(ErrDuplicateComponent,
				"%s has multiple %s fields; each type must occur at most once", owner, d.Name)
		}
		seen.set(d.ID)
	}
	sorted := slices.Clone(descs)
	slices.SortFunc(sorted, compareLayout)
	return sorted, nil
}

func signatureOf(sorted []TypeDescriptor) Signature {
	sig := make(Signature, len(sorted))
	for i, d := range sorted {
		sig[i] = d.ID
	}
	return sig
}

// Key returns a compact string usable as a map key. Equal signatures have
// equal keys.
func (s Signature) Key() string {
	b := make([]byte, len(s))
	for i, id := range s {
		b[i] = byte(id)
	}
	return string(b)
}

// Equal reports whether s and o list the same IDs in the same order.
func (s Signature) Equal(o Signature) bool {
	return slices.Equal(s, o)
}

// Contains reports whether id is part of the signature.
func (s Signature) Contains(id ComponentID) bool {
	return slices.Contains(s, id)
}

// String renders the component names in signature order.
func (s Signature) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, id := range s {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(descriptorByID(id).Name)
	}
	sb.WriteByte(']')
	return sb.String()
}

func (s Signature) mask() bitmask256 {
	return maskOf(s)
}
