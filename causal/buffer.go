// Package causal implements the causal buffer of spec.md §4.4: it holds
// remote operations whose dependencies have not yet been observed locally,
// and re-drives them as soon as those dependencies arrive.
package causal

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/s4vector/rga/engine"
	"github.com/s4vector/rga/s4vector"
)

// Status is the outcome of Submit.
type Status int

const (
	// Applied means dependencies are met; the caller must apply the op.
	Applied Status = iota
	// Buffered means the op was stored pending unmet dependencies.
	Buffered
	// Dropped means an op with the same id was already buffered and the
	// new one was suppressed as a duplicate. Submit does not detect an op
	// that was already applied: for such an op it reports Applied again.
	Dropped
)

// DependencyChecker reports whether an id is already present in the
// engine's node store. *store.Store satisfies this directly.
type DependencyChecker interface {
	Has(id s4vector.S4Vector) bool
}

// Applier applies a dependency-resolved op. *engine.Engine satisfies this
// via ApplyRemote.
type Applier interface {
	ApplyRemote(op engine.OpRecord) error
}

type pendingOp struct {
	op    engine.OpRecord
	unmet map[s4vector.S4Vector]struct{}
}

// Buffer holds remote ops with unmet dependencies and drains them as
// dependencies resolve. It is not safe for concurrent use beyond the
// single critical section the rest of a replica's state shares (§5).
type Buffer struct {
	mu      sync.Mutex
	deps    DependencyChecker
	applier Applier
	logger  *zap.Logger

	pending map[s4vector.S4Vector]*pendingOp   // keyed by op.ID
	waiters map[s4vector.S4Vector][]s4vector.S4Vector // dep id -> waiting op ids
}

// Option configures a Buffer at construction time.
type Option func(*Buffer)

// WithLogger attaches a structured logger; nil is treated as a no-op
// logger.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Buffer) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New creates an empty causal buffer backed by deps for dependency checks
// and applier for draining ready ops.
func New(deps DependencyChecker, applier Applier, opts ...Option) *Buffer {
	b := &Buffer{
		deps:    deps,
		applier: applier,
		logger:  zap.NewNop(),
		pending: make(map[s4vector.S4Vector]*pendingOp),
		waiters: make(map[s4vector.S4Vector][]s4vector.S4Vector),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Submit admits op per spec.md §4.4: if all of op's dependencies are
// already in the store, it returns Applied and the caller must apply op
// itself. Otherwise op is buffered and Buffered is returned. An op already
// buffered under the same id is dropped rather than re-enqueued.
func (b *Buffer) Submit(op engine.OpRecord) Status {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, already := b.pending[op.ID]; already {
		b.logger.Debug("duplicate buffered op dropped", zap.Any("id", op.ID))
		return Dropped
	}

	unmet := b.unmetDeps(op)
	if len(unmet) == 0 {
		return Applied
	}

	p := &pendingOp{op: op, unmet: unmet}
	b.pending[op.ID] = p
	for depID := range unmet {
		b.waiters[depID] = append(b.waiters[depID], op.ID)
	}
	b.logger.Info("op buffered pending dependencies",
		zap.Any("id", op.ID), zap.Int("unmet", len(unmet)))
	return Buffered
}

func (b *Buffer) unmetDeps(op engine.OpRecord) map[s4vector.S4Vector]struct{} {
	unmet := make(map[s4vector.S4Vector]struct{})
	for _, dep := range op.DependencyIDs() {
		if !b.deps.Has(dep) {
			unmet[dep] = struct{}{}
		}
	}
	return unmet
}

// NotifyInserted is called by the caller after every successful insert
// (whether applied directly from Submit's Applied result or drained from
// the buffer itself). Any buffered op whose unmet set becomes empty is
// released; released ops are applied in an order consistent with ≺ on
// their ids, and a released Insert cascades into a further
// NotifyInserted for its own id.
func (b *Buffer) NotifyInserted(id s4vector.S4Vector) {
	b.mu.Lock()
	defer b.mu.Unlock()

	queue := []s4vector.S4Vector{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		waiting := b.waiters[cur]
		delete(b.waiters, cur)

		var ready []*pendingOp
		for _, opID := range waiting {
			p, ok := b.pending[opID]
			if !ok {
				continue
			}
			delete(p.unmet, cur)
			if len(p.unmet) == 0 {
				ready = append(ready, p)
				delete(b.pending, opID)
			}
		}
		sort.Slice(ready, func(i, j int) bool {
			return ready[i].op.ID.Less(ready[j].op.ID)
		})

		for _, p := range ready {
			op := p.op
			if err := b.applier.ApplyRemote(op); err != nil {
				b.logger.Error("buffered op failed to apply", zap.Any("id", op.ID), zap.Error(err))
				continue
			}
			if op.Kind == engine.Insert {
				queue = append(queue, op.ID)
			}
		}
	}
}

// Len returns the number of ops currently buffered, for diagnostics and
// tests.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}
