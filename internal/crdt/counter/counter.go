// Package counter carries the teacher library's sibling grow-only and
// PN-counter CRDTs forward as a demonstration of composing another
// join-semilattice alongside the S4Vector RGA engine: cmd/rgademo attaches
// a PNCounter per replica to track applied-operation counts per site.
//
// These are not part of the replicated sequence engine (packages
// s4vector/store/engine/causal/replica implement spec.md's core in full);
// they are carried-over, adapted teacher code exercised as an optional
// demo feature (SPEC_FULL.md §4).
package counter

// CRDT is the common interface satisfied by every convergent type in this
// package, mirroring the teacher's top-level gocrdt.CRDT interface.
//
// Merge implementations must be commutative, associative, and idempotent
// to satisfy the join-semilattice laws.
type CRDT interface {
	Merge(other CRDT) error
}

// ErrIncompatibleType is returned when Merge is given a CRDT of a
// different concrete type.
type ErrIncompatibleType struct {
	Want, Got string
}

func (e *ErrIncompatibleType) Error() string {
	return "counter: cannot merge " + e.Got + " into " + e.Want
}
