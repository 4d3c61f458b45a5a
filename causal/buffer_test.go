package causal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s4vector/rga/engine"
	"github.com/s4vector/rga/s4vector"
)

// fakeApplier is a minimal DependencyChecker + Applier double that records
// applied ops in memory for buffer-level tests.
type fakeApplier struct {
	applied []engine.OpRecord
	present map[s4vector.S4Vector]bool
	failing map[s4vector.S4Vector]bool
}

func newFakeApplier() *fakeApplier {
	return &fakeApplier{present: make(map[s4vector.S4Vector]bool), failing: make(map[s4vector.S4Vector]bool)}
}

func (f *fakeApplier) Has(id s4vector.S4Vector) bool { return f.present[id] }

func (f *fakeApplier) ApplyRemote(op engine.OpRecord) error {
	if f.failing[op.ID] {
		return errors.New("boom")
	}
	f.applied = append(f.applied, op)
	f.present[op.ID] = true
	return nil
}

func id(seq uint64) s4vector.S4Vector {
	return s4vector.S4Vector{SSN: 1, Sum: seq, SID: 1, Seq: seq}
}

func TestSubmitAppliedWhenNoDependencies(t *testing.T) {
	f := newFakeApplier()
	b := New(f, f)

	status := b.Submit(engine.OpRecord{Kind: engine.Insert, ID: id(1)})
	assert.Equal(t, Applied, status)
	assert.Equal(t, 0, b.Len())
}

func TestSubmitBufferedWhenDependencyMissing(t *testing.T) {
	f := newFakeApplier()
	b := New(f, f)

	parent := id(1)
	child := id(2)
	op := engine.OpRecord{Kind: engine.Insert, ID: child, Left: engine.PresentAnchor(parent)}

	status := b.Submit(op)
	assert.Equal(t, Buffered, status)
	assert.Equal(t, 1, b.Len())
}

func TestSubmitDropsDuplicateBufferedOp(t *testing.T) {
	f := newFakeApplier()
	b := New(f, f)

	parent := id(1)
	child := id(2)
	op := engine.OpRecord{Kind: engine.Insert, ID: child, Left: engine.PresentAnchor(parent)}

	require.Equal(t, Buffered, b.Submit(op))
	assert.Equal(t, Dropped, b.Submit(op))
	assert.Equal(t, 1, b.Len())
}

func TestNotifyInsertedDrainsReadyOp(t *testing.T) {
	f := newFakeApplier()
	b := New(f, f)

	parent := id(1)
	child := id(2)
	op := engine.OpRecord{Kind: engine.Insert, ID: child, Left: engine.PresentAnchor(parent)}

	require.Equal(t, Buffered, b.Submit(op))

	f.present[parent] = true
	b.NotifyInserted(parent)

	require.Len(t, f.applied, 1)
	assert.Equal(t, child, f.applied[0].ID)
	assert.Equal(t, 0, b.Len())
}

func TestNotifyInsertedCascadesThroughChainOfInserts(t *testing.T) {
	f := newFakeApplier()
	b := New(f, f)

	a := id(1)
	bID := id(2)
	c := id(3)

	opB := engine.OpRecord{Kind: engine.Insert, ID: bID, Left: engine.PresentAnchor(a)}
	opC := engine.OpRecord{Kind: engine.Insert, ID: c, Left: engine.PresentAnchor(bID)}

	require.Equal(t, Buffered, b.Submit(opC)) // depends on B, which doesn't exist yet
	require.Equal(t, Buffered, b.Submit(opB)) // depends on A

	f.present[a] = true
	b.NotifyInserted(a)

	require.Len(t, f.applied, 2)
	assert.Equal(t, bID, f.applied[0].ID)
	assert.Equal(t, c, f.applied[1].ID)
	assert.Equal(t, 0, b.Len())
}

func TestNotifyInsertedReleasesInDependencyOrderConsistentWithOrdering(t *testing.T) {
	f := newFakeApplier()
	b := New(f, f)

	parent := id(1)
	small := s4vector.S4Vector{SSN: 1, Sum: 1, SID: 1, Seq: 50}
	big := s4vector.S4Vector{SSN: 1, Sum: 1, SID: 2, Seq: 50}

	opBig := engine.OpRecord{Kind: engine.Insert, ID: big, Left: engine.PresentAnchor(parent)}
	opSmall := engine.OpRecord{Kind: engine.Insert, ID: small, Left: engine.PresentAnchor(parent)}

	require.Equal(t, Buffered, b.Submit(opBig))
	require.Equal(t, Buffered, b.Submit(opSmall))

	f.present[parent] = true
	b.NotifyInserted(parent)

	require.Len(t, f.applied, 2)
	assert.Equal(t, small, f.applied[0].ID)
	assert.Equal(t, big, f.applied[1].ID)
}

func TestNotifyInsertedDoesNotCascadeOnApplyFailure(t *testing.T) {
	f := newFakeApplier()
	b := New(f, f)

	a := id(1)
	bID := id(2)
	c := id(3)

	opB := engine.OpRecord{Kind: engine.Insert, ID: bID, Left: engine.PresentAnchor(a)}
	opC := engine.OpRecord{Kind: engine.Insert, ID: c, Left: engine.PresentAnchor(bID)}

	require.Equal(t, Buffered, b.Submit(opC))
	require.Equal(t, Buffered, b.Submit(opB))

	f.failing[bID] = true
	f.present[a] = true
	b.NotifyInserted(a)

	assert.Empty(t, f.applied)
}
