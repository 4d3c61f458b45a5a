package engine

import "github.com/s4vector/rga/s4vector"

// Kind tags the closed variant of operation an OpRecord carries.
type Kind int

const (
	// Insert creates a new live node between two optional neighbors.
	Insert Kind = iota
	// Delete tombstones an existing node.
	Delete
	// Update changes the value of an existing, non-tombstoned node.
	Update
)

// String renders Kind for logging and test failure output.
func (k Kind) String() string {
	switch k {
	case Insert:
		return "Insert"
	case Delete:
		return "Delete"
	case Update:
		return "Update"
	default:
		return "Unknown"
	}
}

// Anchor is an optional neighbor reference carried by an Insert OpRecord:
// the intended neighbor identifier at the originating replica at
// generation time. It is distinct from a node's live Left/Right chain
// pointers, which may be rewritten as later inserts splice in between.
type Anchor struct {
	ID      s4vector.S4Vector
	Present bool
}

// PresentAnchor wraps id as a present anchor.
func PresentAnchor(id s4vector.S4Vector) Anchor { return Anchor{ID: id, Present: true} }

// AbsentAnchor is the canonical "no neighbor" anchor value.
var AbsentAnchor = Anchor{}

// OpRecord is the abstract, transport-agnostic operation emitted by a
// local mutation and consumed by RemoteApply, per spec.md §3 and §6. How
// it is framed on a wire is left to a transport collaborator.
type OpRecord struct {
	Kind  Kind
	ID    s4vector.S4Vector
	Value string // meaningful for Insert and Update only

	// Left/Right are meaningful for Insert only: the intended neighbor
	// anchors at the originating replica at generation time.
	Left  Anchor
	Right Anchor
}

// DependencyIDs returns the ids this op requires to already be present in
// the store before it can be applied, per spec.md §4.3's dependency rule.
func (op OpRecord) DependencyIDs() []s4vector.S4Vector {
	switch op.Kind {
	case Insert:
		var deps []s4vector.S4Vector
		if op.Left.Present {
			deps = append(deps, op.Left.ID)
		}
		if op.Right.Present {
			deps = append(deps, op.Right.ID)
		}
		return deps
	case Delete, Update:
		return []s4vector.S4Vector{op.ID}
	default:
		return nil
	}
}
