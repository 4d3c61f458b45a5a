package engine

import (
	"github.com/s4vector/rga/s4vector"
	"github.com/s4vector/rga/store"
)

// anchorLink converts an OpRecord Anchor into a store.Link.
func anchorLink(a Anchor) store.Link {
	if !a.Present {
		return store.AbsentLink
	}
	return store.PresentLink(a.ID)
}

// sameAnchor reports whether two links name the same anchor (including
// both being the virtual head).
func sameAnchor(a, b store.Link) bool {
	if a.Present != b.Present {
		return false
	}
	return !a.Present || a.ID == b.ID
}

// placementScan implements spec.md §4.3's "Placement algorithm for remote
// inserts", reused for local inserts too so that a single deterministic
// rule governs every insert the engine ever performs:
//
//  1. Locate L = leftAnchor (or the virtual head) and scan rightward.
//  2. While the next node C was itself originally anchored at L (i.e. is
//     a sibling of the node being placed) and C.id ≻ new.id, advance
//     L ← C: this skips past siblings that outrank the new insert.
//  3. Stop when the next node is rightAnchor, was anchored elsewhere (we
//     have walked past the concurrent-insert zone), or outranks nothing.
//
// It returns the resolved immediate predecessor and successor links to
// splice the new node between.
func (e *Engine) placementScan(leftAnchor, rightAnchor Anchor, newID s4vector.S4Vector) (prev, next store.Link) {
	anchor := anchorLink(leftAnchor)
	rightBound := anchorLink(rightAnchor)

	prev = anchor
	next = e.successorOf(anchor)

	for next.Present {
		if rightBound.Present && next.ID == rightBound.ID {
			break
		}
		cur, err := e.nodes.Get(next.ID)
		if err != nil {
			// The store is corrupt relative to its own chain: a linked
			// id vanished. This violates I1-I3 and is a bug, not a
			// runtime condition.
			panic("engine: chain references missing node " + err.Error())
		}
		if !sameAnchor(cur.Anchor, anchor) {
			break
		}
		if cur.ID.Greater(newID) {
			// cur outranks the new node: cur stays closer to the anchor,
			// keep scanning further right for new's resting place.
			prev = next
			next = cur.Right
			continue
		}
		break
	}
	return prev, next
}

// successorOf returns the link immediately following anchor: the node's
// current Right pointer if anchor is present, or the replica's head link
// if anchor is the virtual head.
func (e *Engine) successorOf(anchor store.Link) store.Link {
	if !anchor.Present {
		return e.head
	}
	n, err := e.nodes.Get(anchor.ID)
	if err != nil {
		panic("engine: anchor id missing from store: " + err.Error())
	}
	return n.Right
}
