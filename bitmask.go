package kessoku

// bitmask256 represents a set of up to 256 component IDs. Each bit corresponds
// to a component ID; a set bit means the component is part of the set.
type bitmask256 [4]uint64

// set enables the bit corresponding to the given component ID.
func (m *bitmask256) set(id ComponentID) {
	m[id>>6] |= uint64(1) << (id & 63)
}

// has checks if a specific bit is set in the mask.
func (m bitmask256) has(id ComponentID) bool {
	return m[id>>6]&(uint64(1)<<(id&63)) != 0
}

// contains checks if all the bits set in sub are also set in m. It is used
// to test whether an archetype holds every required component of a query.
//
// Returns:
//   - true if m is a superset of sub.
func (m bitmask256) contains(sub bitmask256) bool {
	return (m[0]&sub[0]) == sub[0] &&
		(m[1]&sub[1]) == sub[1] &&
		(m[2]&sub[2]) == sub[2] &&
		(m[3]&sub[3]) == sub[3]
}

// maskOf builds a mask from a list of component IDs.
func maskOf(ids []ComponentID) bitmask256 {
	var m bitmask256
	for _, id := range ids {
		m.set(id)
	}
	return m
}
