package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s4vector/rga/s4vector"
)

func id(seq uint64) s4vector.S4Vector {
	return s4vector.S4Vector{SSN: 1, Sum: seq, SID: 1, Seq: seq}
}

func TestInsertRejectsDuplicateID(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert(Node{ID: id(1), Value: "A"}))
	err := s.Insert(Node{ID: id(1), Value: "B"})
	assert.ErrorIs(t, err, ErrAlreadyPresent)
}

func TestGetReturnsNotFoundForAbsentID(t *testing.T) {
	s := New()
	_, err := s.Get(id(1))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetReturnsStoredCopy(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert(Node{ID: id(1), Value: "A"}))
	n, err := s.Get(id(1))
	require.NoError(t, err)
	assert.Equal(t, "A", n.Value)
}

func TestSetLinkUpdatesNeighbor(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert(Node{ID: id(1)}))
	require.NoError(t, s.SetLink(id(1), Right, PresentLink(id(2))))

	n, err := s.Get(id(1))
	require.NoError(t, err)
	assert.True(t, n.Right.Present)
	assert.Equal(t, id(2), n.Right.ID)
}

func TestSetLinkFailsOnUnknownID(t *testing.T) {
	s := New()
	err := s.SetLink(id(1), Left, AbsentLink)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkTombstoneIsIdempotent(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert(Node{ID: id(1)}))
	require.NoError(t, s.MarkTombstone(id(1)))
	require.NoError(t, s.MarkTombstone(id(1)))

	n, _ := s.Get(id(1))
	assert.True(t, n.Tombstone)
}

func TestMarkTombstoneFailsOnUnknownID(t *testing.T) {
	s := New()
	assert.True(t, errors.Is(s.MarkTombstone(id(99)), ErrNotFound))
}

func TestSetValueFailsOnTombstonedNode(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert(Node{ID: id(1), Value: "A"}))
	require.NoError(t, s.MarkTombstone(id(1)))

	err := s.SetValue(id(1), "B")
	assert.ErrorIs(t, err, ErrTombstoned)
}

func TestSetValueUpdatesLiveNode(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert(Node{ID: id(1), Value: "A"}))
	require.NoError(t, s.SetValue(id(1), "B"))

	n, _ := s.Get(id(1))
	assert.Equal(t, "B", n.Value)
}

func TestLenCountsLiveAndTombstoned(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert(Node{ID: id(1)}))
	require.NoError(t, s.Insert(Node{ID: id(2)}))
	require.NoError(t, s.MarkTombstone(id(2)))
	assert.Equal(t, 2, s.Len())
}
