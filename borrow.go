package kessoku

import (
	"sync/atomic"

	"github.com/rotisserie/eris"
)

// Access is the kind of access a query field declares on a component type.
type Access uint8

const (
	// AccessShared allows any number of concurrent readers.
	AccessShared Access = iota + 1
	// AccessExclusive allows exactly one writer and no readers.
	AccessExclusive
)

func (a Access) String() string {
	switch a {
	case AccessShared:
		return "shared"
	case AccessExclusive:
		return "exclusive"
	default:
		return "unknown"
	}
}

// exclusiveBorrow marks a counter held by a single exclusive borrow.
const exclusiveBorrow = -1

// BorrowState tracks the outstanding access to every component type. A
// positive counter is the number of shared borrows; exclusiveBorrow marks one
// exclusive borrow. Counters are only changed through Borrow and Release.
//
// Accounting is commutative, so the order in which borrows are released does
// not matter to BorrowState itself.
type BorrowState struct {
	counters [MaxComponentTypes]atomic.Int32
}

// TryBorrow acquires access to component id, or returns an error wrapping
// ErrBorrowConflict when the access is incompatible with existing borrows.
func (s *BorrowState) TryBorrow(id ComponentID, mode Access) error {
	c := &s.counters[id]
	if mode == AccessExclusive {
		if !c.CompareAndSwap(0, exclusiveBorrow) {
			return eris.Wrapf(ErrBorrowConflict, "%s cannot be borrowed exclusively (%s)", descriptorByID(id).Name, s.describe(id))
		}
		return nil
	}
	for {
		v := c.Load()
		if v == exclusiveBorrow {
			return eris.Wrapf(ErrBorrowConflict, "%s cannot be borrowed shared (borrowed exclusively)", descriptorByID(id).Name)
		}
		if c.CompareAndSwap(v, v+1) {
			return nil
		}
	}
}

// Borrow is like TryBorrow but panics on conflict.
func (s *BorrowState) Borrow(id ComponentID, mode Access) {
	if err := s.TryBorrow(id, mode); err != nil {
		panic(err)
	}
}

// Release gives back access previously acquired with the same mode. It panics
// if no such borrow is outstanding.
func (s *BorrowState) Release(id ComponentID, mode Access) {
	c := &s.counters[id]
	if mode == AccessExclusive {
		if !c.CompareAndSwap(exclusiveBorrow, 0) {
			panic(eris.Errorf("kessoku: release of %s without an exclusive borrow", descriptorByID(id).Name))
		}
		return
	}
	for {
		v := c.Load()
		if v <= 0 {
			panic(eris.Errorf("kessoku: release of %s without a shared borrow", descriptorByID(id).Name))
		}
		if c.CompareAndSwap(v, v-1) {
			return
		}
	}
}

// Shared returns the number of outstanding shared borrows of id.
func (s *BorrowState) Shared(id ComponentID) int {
	return max(int(s.counters[id].Load()), 0)
}

// Exclusive reports whether id is borrowed exclusively.
func (s *BorrowState) Exclusive(id ComponentID) bool {
	return s.counters[id].Load() == exclusiveBorrow
}

func (s *BorrowState) describe(id ComponentID) string {
	if s.Exclusive(id) {
		return "borrowed exclusively"
	}
	return "borrowed shared"
}
