package kessoku

import (
	"iter"
	"unsafe"
)

// Query iterates over every entity whose archetype satisfies the query item
// type Q. The query discovers and caches the matching archetypes and refreshes
// that cache when new archetypes appear.
//
// The first call to Next borrows access to every component of Q from the
// world's BorrowState. The borrows are released exactly once, when iteration
// is exhausted, when Close or Reset is called, or when a range loop over All
// ends early. While borrows are held the world refuses structural changes.
type Query[Q any] struct {
	world       *World
	spec        *QuerySpec
	matching    []*Archetype
	curEntities []Entity
	fetch       Fetch
	item        Q
	curEnt      Entity
	matchIdx    int    // index into matching
	version     uint32 // archetype table version the cache was built from
	active      bool   // borrows are held
	done        bool   // iteration exhausted or abandoned
}

// NewQuery creates a query over w for item type Q.
//
// It panics if Q is not a valid query item type.
//
// Parameters:
//   - w: The World to iterate.
//
// Returns:
//   - A query that holds no borrows until iteration starts.
func NewQuery[Q any](w *World) *Query[Q] {
	q := &Query[Q]{
		world:    w,
		spec:     QueryOf[Q](),
		matchIdx: -1,
	}
	q.updateMatching()
	return q
}

// Spec returns the compiled query spec.
func (q *Query[Q]) Spec() *QuerySpec {
	return q.spec
}

// IsStale reports whether archetypes were created since the matching cache
// was built.
func (q *Query[Q]) IsStale() bool {
	return q.version != q.world.archetypes.version
}

func (q *Query[Q]) updateMatching() {
	q.matching = q.matching[:0]
	for _, a := range q.world.archetypes.archetypes {
		if q.spec.Matches(a) {
			q.matching = append(q.matching, a)
		}
	}
	q.version = q.world.archetypes.version
}

// Reset releases any borrows and rewinds the query to the beginning.
func (q *Query[Q]) Reset() {
	q.release()
	q.done = false
	q.matchIdx = -1
	q.fetch.index, q.fetch.len = 0, 0
}

// Close abandons the iteration and releases its borrows. It is safe to call
// more than once.
func (q *Query[Q]) Close() {
	q.release()
	q.done = true
}

// Next advances to the next matching entity. It returns false when the
// iteration is complete.
//
// Example:
//
//	q := kessoku.NewQuery[Movement](w)
//	for q.Next() {
//	    m := q.Get()
//	    m.Pos.X += m.Vel.X
//	}
func (q *Query[Q]) Next() bool {
	if q.done {
		return false
	}
	if !q.active {
		q.acquire()
	}
	for q.fetch.Len() == 0 {
		q.matchIdx++
		if q.matchIdx >= len(q.matching) {
			q.Close()
			return false
		}
		a := q.matching[q.matchIdx]
		if a.size == 0 || !q.fetch.reset(q.spec, a) {
			continue
		}
		q.curEntities = a.entities
	}
	q.curEnt = q.curEntities[q.fetch.index]
	q.fetch.Next(unsafe.Pointer(&q.item))
	return true
}

// Entity returns the current entity. Only valid after Next returned true.
func (q *Query[Q]) Entity() Entity {
	return q.curEnt
}

// Get returns the current item. Only valid after Next returned true; the
// item is overwritten by the following call to Next.
func (q *Query[Q]) Get() *Q {
	return &q.item
}

// Count returns the number of entities the query currently matches. It does
// not borrow.
func (q *Query[Q]) Count() int {
	if q.IsStale() {
		q.updateMatching()
	}
	n := 0
	for _, a := range q.matching {
		n += a.size
	}
	return n
}

// All returns an iterator over the matching entities and their items. The
// borrows are released when the loop ends, including on break.
func (q *Query[Q]) All() iter.Seq2[Entity, *Q] {
	return func(yield func(Entity, *Q) bool) {
		q.Reset()
		defer q.Close()
		for q.Next() {
			if !yield(q.curEnt, &q.item) {
				return
			}
		}
	}
}

func (q *Query[Q]) acquire() {
	if q.IsStale() {
		q.updateMatching()
	}
	q.spec.Borrow(&q.world.borrows)
	q.world.locks++
	q.active = true
}

func (q *Query[Q]) release() {
	if !q.active {
		return
	}
	q.spec.Release(&q.world.borrows)
	q.world.locks--
	q.active = false
}
