package kessoku

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type borrowX struct{ V int }
type borrowY struct{ V int }
type borrowZ struct{ V int }

func TestBorrowStateShared(t *testing.T) {
	var s BorrowState
	id := DescriptorOf[borrowX]().ID

	require.NoError(t, s.TryBorrow(id, AccessShared))
	require.NoError(t, s.TryBorrow(id, AccessShared))
	assert.Equal(t, 2, s.Shared(id))
	assert.False(t, s.Exclusive(id))

	err := s.TryBorrow(id, AccessExclusive)
	assert.True(t, eris.Is(err, ErrBorrowConflict))

	s.Release(id, AccessShared)
	s.Release(id, AccessShared)
	assert.Equal(t, 0, s.Shared(id))
	require.NoError(t, s.TryBorrow(id, AccessExclusive))
	s.Release(id, AccessExclusive)
}

func TestBorrowStateExclusive(t *testing.T) {
	var s BorrowState
	id := DescriptorOf[borrowX]().ID

	s.Borrow(id, AccessExclusive)
	assert.True(t, s.Exclusive(id))
	assert.Equal(t, 0, s.Shared(id))
	assert.True(t, eris.Is(s.TryBorrow(id, AccessShared), ErrBorrowConflict))
	assert.True(t, eris.Is(s.TryBorrow(id, AccessExclusive), ErrBorrowConflict))
	assert.Panics(t, func() { s.Borrow(id, AccessShared) })

	s.Release(id, AccessExclusive)
	assert.False(t, s.Exclusive(id))
}

func TestBorrowStateUnmatchedRelease(t *testing.T) {
	var s BorrowState
	id := DescriptorOf[borrowY]().ID
	assert.Panics(t, func() { s.Release(id, AccessShared) })
	assert.Panics(t, func() { s.Release(id, AccessExclusive) })

	s.Borrow(id, AccessShared)
	assert.Panics(t, func() { s.Release(id, AccessExclusive) }, "mode must match")
	s.Release(id, AccessShared)
}

type borrowReadXY struct {
	X *borrowX
	Y *borrowY
}

type borrowWriteYZ struct {
	Z *borrowZ
	Y *borrowY `ecs:"mut"`
}

func TestQuerySpecBorrowReleasesOnConflict(t *testing.T) {
	var s BorrowState
	reader := QueryOf[borrowReadXY]()
	writer := QueryOf[borrowWriteYZ]()
	z := DescriptorOf[borrowZ]().ID
	y := DescriptorOf[borrowY]().ID

	reader.Borrow(&s)
	v := capturePanic(func() { writer.Borrow(&s) })
	require.NotNil(t, v)
	err, ok := v.(error)
	require.True(t, ok)
	assert.True(t, eris.Is(err, ErrBorrowConflict))
	assert.Contains(t, err.Error(), "borrowWriteYZ")

	// Z was taken before Y failed and must have been given back.
	assert.Equal(t, 0, s.Shared(z))
	assert.Equal(t, 1, s.Shared(y))

	reader.Release(&s)
	writer.Borrow(&s)
	assert.True(t, s.Exclusive(y))
	writer.Release(&s)
	assert.False(t, s.Exclusive(y))
}

// Any interleaving of borrows and releases that pairs every Borrow with a
// Release leaves every counter at zero.
func TestBorrowStateBalanced(t *testing.T) {
	ids := []ComponentID{
		DescriptorOf[borrowX]().ID,
		DescriptorOf[borrowY]().ID,
		DescriptorOf[borrowZ]().ID,
	}
	rapid.Check(t, func(t *rapid.T) {
		var s BorrowState
		type held struct {
			id   ComponentID
			mode Access
		}
		var stack []held
		steps := rapid.IntRange(1, 50).Draw(t, "steps")
		for range steps {
			if len(stack) > 0 && rapid.Bool().Draw(t, "release") {
				i := rapid.IntRange(0, len(stack)-1).Draw(t, "which")
				h := stack[i]
				stack = append(stack[:i], stack[i+1:]...)
				s.Release(h.id, h.mode)
				continue
			}
			id := rapid.SampledFrom(ids).Draw(t, "id")
			mode := rapid.SampledFrom([]Access{AccessShared, AccessExclusive}).Draw(t, "mode")
			if s.TryBorrow(id, mode) == nil {
				stack = append(stack, held{id, mode})
			}
		}
		for _, h := range stack {
			s.Release(h.id, h.mode)
		}
		for _, id := range ids {
			if s.Shared(id) != 0 || s.Exclusive(id) {
				t.Fatalf("component %d still borrowed", id)
			}
		}
	})
}

func TestAccessString(t *testing.T) {
	assert.Equal(t, "shared", AccessShared.String())
	assert.Equal(t, "exclusive", AccessExclusive.String())
	assert.Equal(t, "unknown", Access(0).String())
}
