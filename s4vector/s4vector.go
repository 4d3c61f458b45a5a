// Package s4vector provides the S4Vector identifier algebra used to name
// and totally order operations in the replicated sequence engine.
//
// An S4Vector is a 4-tuple (ssn, sum, sid, seq). ssn identifies the
// collaboration session, sid identifies the originating replica, seq is a
// per-replica monotonic counter, and sum is a logical-position hint used to
// bias placement toward a cheap approximate order. sum is never assumed to
// be unique: the full tuple order below is what disambiguates concurrent
// inserts.
package s4vector

// S4Vector is an immutable, comparable operation/node identifier.
//
// The sum field is computed as an integer average of neighboring sums
// (see Generate) and can collide after many concurrent inserts land in a
// narrow gap. This is a known limitation inherited from the source design:
// a denser scheme (e.g. promoting sum to a sequence of integers) would
// avoid it, but is out of scope here.
type S4Vector struct {
	SSN uint64
	Sum uint64
	SID uint64
	Seq uint64
}

// Less reports whether a precedes b in the total order ≺ used for
// tie-breaking concurrent operations. The order compares SSN, then Sum,
// then SID, then Seq, in that order; it never examines positional
// placement.
func (a S4Vector) Less(b S4Vector) bool {
	if a.SSN != b.SSN {
		return a.SSN < b.SSN
	}
	if a.Sum != b.Sum {
		return a.Sum < b.Sum
	}
	if a.SID != b.SID {
		return a.SID < b.SID
	}
	return a.Seq < b.Seq
}

// Greater reports whether a succeeds b in the total order ≺.
func (a S4Vector) Greater(b S4Vector) bool {
	return b.Less(a)
}

// Equal reports whether a and b name the same operation. Equality requires
// all four components to match.
func (a S4Vector) Equal(b S4Vector) bool {
	return a == b
}

// Zero is the all-zero S4Vector. It is not a not-present sentinel for
// optional S4Vector fields: callers that need an explicit "no neighbor" must use a separate
// presence flag (see engine.Anchor) rather than relying on this value,
// since (0,0,0,0) is itself a legal S4Vector for ssn==sid==seq==0.
var Zero = S4Vector{}

// Generator allocates S4Vectors for a single replica. It owns the
// replica's local monotonic sequence counter; it is not safe for
// concurrent use without external synchronization, matching the rest of
// the engine's single-critical-section concurrency model (see §5).
type Generator struct {
	SSN      uint64
	SID      uint64
	localSeq uint64
}

// NewGenerator creates a Generator for the given session and site.
func NewGenerator(ssn, sid uint64) *Generator {
	return &Generator{SSN: ssn, SID: sid}
}

// LocalSeq returns the most recently issued sequence number (0 if none
// have been issued yet).
func (g *Generator) LocalSeq() uint64 {
	return g.localSeq
}

// Observe advances the generator's local sequence counter so that future
// Generate calls never reuse a seq at or below the given id's Seq. The
// engine calls it for every remote insert it applies, so fresh local ids
// also stay clear of ids minted earlier by this same site (e.g. after a
// replica restore).
func (g *Generator) Observe(seq uint64) {
	if seq > g.localSeq {
		g.localSeq = seq
	}
}

// Neighbor carries an optional neighboring S4Vector and its sum, used by
// Generate to compute a new position hint.
type Neighbor struct {
	ID      S4Vector
	Present bool
}

// Present wraps id as a present neighbor.
func Present(id S4Vector) Neighbor { return Neighbor{ID: id, Present: true} }

// Absent is the canonical "no neighbor" value.
var Absent = Neighbor{}

// Generate allocates a new S4Vector for a local insert between left and
// right (either may be Absent), per spec.md §4.1:
//
//  1. increment the local sequence counter;
//  2. compute sum from the neighbors' sums;
//  3. return (ssn, sum, sid, seq).
func (g *Generator) Generate(left, right Neighbor) S4Vector {
	g.localSeq++
	return S4Vector{
		SSN: g.SSN,
		Sum: computeSum(left, right),
		SID: g.SID,
		Seq: g.localSeq,
	}
}

func computeSum(left, right Neighbor) uint64 {
	switch {
	case left.Present && right.Present:
		return (left.ID.Sum + right.ID.Sum) / 2
	case left.Present:
		return left.ID.Sum + 1
	case right.Present:
		return right.ID.Sum / 2
	default:
		return 1
	}
}
