// Package engine implements the replicated sequence engine of spec.md §4.3:
// it applies local and remote insert/delete/update operations, maintains
// the node store's link invariants (I1-I6), and produces ordered reads.
//
// The engine is single-threaded cooperative (spec.md §5): all exported
// methods are synchronous, and a single mutex makes the node store, head
// pointer, and id generator one critical section. Hosting a replica across
// OS threads is the caller's concern.
package engine

import (
	"sync"

	"go.uber.org/zap"

	"github.com/s4vector/rga/s4vector"
	"github.com/s4vector/rga/store"
)

// Engine owns one replica's node store, S4Vector generator, and head
// pointer, and applies operations against them.
type Engine struct {
	mu     sync.Mutex
	nodes  *store.Store
	gen    *s4vector.Generator
	head   store.Link
	logger *zap.Logger
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLogger attaches a structured logger. A nil logger is treated as
// zap.NewNop(); omitting WithLogger entirely has the same effect.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an engine driven by gen, initially empty.
func New(gen *s4vector.Generator, opts ...Option) *Engine {
	e := &Engine{
		nodes:  store.New(),
		gen:    gen,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store exposes the underlying node store for read-only collaborators
// (e.g. a snapshotting transport). Per spec.md §5 no reference handed out
// survives a subsequent mutation; callers should treat this as a
// short-lived borrow.
func (e *Engine) Store() *store.Store {
	return e.nodes
}

// LocalInsert implements spec.md §4.3's local_insert: it allocates a new
// S4Vector, places the new node deterministically among any existing
// siblings of the same anchor, splices it into the chain, and returns the
// OpRecord to broadcast.
func (e *Engine) LocalInsert(value string, left, right Anchor) (OpRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if left.Present && !e.nodes.Has(left.ID) {
		return OpRecord{}, ErrUnknownReference
	}
	if right.Present && !e.nodes.Has(right.ID) {
		return OpRecord{}, ErrUnknownReference
	}

	newID := e.gen.Generate(toS4Neighbor(left), toS4Neighbor(right))

	if err := e.spliceInsert(newID, value, left, right); err != nil {
		return OpRecord{}, err
	}

	return OpRecord{Kind: Insert, ID: newID, Value: value, Left: left, Right: right}, nil
}

// LocalDelete implements spec.md §4.3's local_delete: idempotent, and it
// returns a record even when the node was already tombstoned so that
// convergence is preserved across replicas. An unknown id returns
// ErrUnknownReference.
func (e *Engine) LocalDelete(id s4vector.S4Vector) (OpRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.nodes.MarkTombstone(id); err != nil {
		return OpRecord{}, ErrUnknownReference
	}
	return OpRecord{Kind: Delete, ID: id}, nil
}

// LocalUpdate implements spec.md §4.3's local_update. Per the Open
// Question resolved in DESIGN.md, updating a tombstoned node returns
// ErrTombstonedTarget and no OpRecord: nothing is broadcast.
func (e *Engine) LocalUpdate(id s4vector.S4Vector, value string) (OpRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.nodes.Has(id) {
		return OpRecord{}, ErrUnknownReference
	}
	if err := e.nodes.SetValue(id, value); err != nil {
		e.logger.Warn("local update on tombstoned node dropped", zap.Any("id", id))
		return OpRecord{}, ErrTombstonedTarget
	}
	return OpRecord{Kind: Update, ID: id, Value: value}, nil
}

// ApplyRemote applies an already-dependency-resolved OpRecord. It is the
// backend RemoteApply calls through the causal buffer (see package
// causal); it performs no dependency admission of its own.
func (e *Engine) ApplyRemote(op OpRecord) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch op.Kind {
	case Insert:
		return e.applyRemoteInsert(op)
	case Delete:
		return e.applyRemoteDelete(op)
	case Update:
		return e.applyRemoteUpdate(op)
	default:
		e.logger.Error("unknown op kind", zap.Int("kind", int(op.Kind)))
		return nil
	}
}

func (e *Engine) applyRemoteInsert(op OpRecord) error {
	if e.nodes.Has(op.ID) {
		// Remote DuplicateIdentifier is treated as an idempotent success
		// (spec.md §7): the op is already applied.
		e.logger.Debug("duplicate remote insert ignored", zap.Any("id", op.ID))
		return nil
	}
	e.gen.Observe(op.ID.Seq)
	return e.spliceInsert(op.ID, op.Value, op.Left, op.Right)
}

func (e *Engine) applyRemoteDelete(op OpRecord) error {
	if err := e.nodes.MarkTombstone(op.ID); err != nil {
		// UnknownReference is impossible by construction here: the
		// causal buffer only releases ops whose dependencies resolved.
		e.logger.Error("remote delete for unknown id", zap.Any("id", op.ID))
		return ErrUnknownReference
	}
	return nil
}

func (e *Engine) applyRemoteUpdate(op OpRecord) error {
	if !e.nodes.Has(op.ID) {
		e.logger.Error("remote update for unknown id", zap.Any("id", op.ID))
		return ErrUnknownReference
	}
	if err := e.nodes.SetValue(op.ID, op.Value); err != nil {
		// Remote TombstonedTarget is silently dropped to preserve
		// convergence: update-after-delete loses deterministically.
		e.logger.Warn("remote update on tombstoned node dropped", zap.Any("id", op.ID))
		return nil
	}
	return nil
}

// spliceInsert places a node with the given id/value/anchors into the
// chain via the shared placement scan, then links it in. It is used by
// both local and remote insert paths so exactly one placement rule governs
// the whole engine.
func (e *Engine) spliceInsert(id s4vector.S4Vector, value string, left, right Anchor) error {
	prev, next := e.placementScan(left, right, id)

	node := store.Node{
		Value:  value,
		ID:     id,
		Left:   prev,
		Right:  next,
		Anchor: anchorLink(left),
	}
	if err := e.nodes.Insert(node); err != nil {
		return ErrDuplicateIdentifier
	}

	if prev.Present {
		if err := e.nodes.SetLink(prev.ID, store.Right, store.PresentLink(id)); err != nil {
			panic("engine: predecessor vanished mid-splice: " + err.Error())
		}
	} else {
		e.head = store.PresentLink(id)
	}
	if next.Present {
		if err := e.nodes.SetLink(next.ID, store.Left, store.PresentLink(id)); err != nil {
			panic("engine: successor vanished mid-splice: " + err.Error())
		}
	}
	return nil
}

// Read implements spec.md §4.3's read: walk the chain from head and emit
// the value of every non-tombstoned node, in order.
func (e *Engine) Read() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := []string{}
	cur := e.head
	for cur.Present {
		n, err := e.nodes.Get(cur.ID)
		if err != nil {
			panic("engine: head chain references missing node: " + err.Error())
		}
		if !n.Tombstone {
			out = append(out, n.Value)
		}
		cur = n.Right
	}
	return out
}

func toS4Neighbor(a Anchor) s4vector.Neighbor {
	if !a.Present {
		return s4vector.Absent
	}
	return s4vector.Present(a.ID)
}
