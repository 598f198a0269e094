package kessoku

import "unsafe"

// fieldFetch is the per-field state of a fetch over one archetype.
type fieldFetch struct {
	base   unsafe.Pointer // column base; nil for an absent optional field
	stride uintptr
	offset uintptr // field offset inside the item struct
}

// Fetch streams the items of one query out of one archetype. It combines one
// sub-fetch per query field; all of them advance together.
type Fetch struct {
	fields []fieldFetch
	index  int
	len    int
}

// Get tests archetype a against the query. Fields are tried in declaration
// order and the first non-optional field whose component a lacks ends the
// attempt with false: a is simply not part of the query's result.
func (s *QuerySpec) Get(a *Archetype) (*Fetch, bool) {
	f := &Fetch{}
	if !f.reset(s, a) {
		return nil, false
	}
	return f, true
}

// reset repositions f on row 0 of a, reusing its field storage.
func (f *Fetch) reset(s *QuerySpec, a *Archetype) bool {
	if cap(f.fields) < len(s.Fields) {
		f.fields = make([]fieldFetch, len(s.Fields))
	}
	f.fields = f.fields[:len(s.Fields)]
	for i := range s.Fields {
		sf := &s.Fields[i]
		c := a.column(sf.Component.ID)
		if c == nil {
			if !sf.Optional {
				f.len = 0
				return false
			}
			f.fields[i] = fieldFetch{offset: sf.offset}
			continue
		}
		f.fields[i] = fieldFetch{base: c.base, stride: c.desc.Size, offset: sf.offset}
	}
	f.index = 0
	f.len = a.size
	return true
}

// Len returns the number of items left in the fetch.
func (f *Fetch) Len() int {
	return f.len - f.index
}

// Next stores one pointer per field of the current row into the item struct
// at item and advances to the next row. Absent optional fields are set to nil.
//
// Next does not check bounds: the caller invokes it exactly Len times.
func (f *Fetch) Next(item unsafe.Pointer) {
	for i := range f.fields {
		ff := &f.fields[i]
		var p unsafe.Pointer
		if ff.base != nil {
			p = unsafe.Add(ff.base, uintptr(f.index)*ff.stride)
		}
		*(*unsafe.Pointer)(unsafe.Add(item, ff.offset)) = p
	}
	f.index++
}
