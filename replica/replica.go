// Package replica assembles the S4Vector generator, node store, sequence
// engine, and causal buffer into the single aggregate state described by
// spec.md §3's "Replica state": { ssn, sid, local_seq, head, index, buffer }.
package replica

import (
	"go.uber.org/zap"

	"github.com/s4vector/rga/causal"
	"github.com/s4vector/rga/engine"
	"github.com/s4vector/rga/s4vector"
)

// Replica is one participant in an S4Vector RGA collaboration session. It
// is single-threaded cooperative per spec.md §5: all exported methods are
// synchronous and assume the caller supplies any cross-thread
// synchronization needed.
type Replica struct {
	ssn uint64
	sid uint64

	gen    *s4vector.Generator
	engine *engine.Engine
	buffer *causal.Buffer
	logger *zap.Logger
}

// Option configures a Replica at construction time.
type Option func(*config)

type config struct {
	logger *zap.Logger
}

// WithLogger attaches a structured logger shared by the engine and the
// causal buffer. Omitting it defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates an empty replica for session ssn, identified within that
// session by site id sid.
func New(ssn, sid uint64, opts ...Option) *Replica {
	cfg := &config{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(cfg)
	}

	gen := s4vector.NewGenerator(ssn, sid)
	eng := engine.New(gen, engine.WithLogger(cfg.logger))
	buf := causal.New(eng.Store(), eng, causal.WithLogger(cfg.logger))

	return &Replica{
		ssn:    ssn,
		sid:    sid,
		gen:    gen,
		engine: eng,
		buffer: buf,
		logger: cfg.logger,
	}
}

// SSN returns the replica's session id.
func (r *Replica) SSN() uint64 { return r.ssn }

// SID returns the replica's site id.
func (r *Replica) SID() uint64 { return r.sid }

// LocalSeq returns the most recently issued local sequence number.
func (r *Replica) LocalSeq() uint64 { return r.gen.LocalSeq() }

// Insert performs a local insert between left and right (either may be
// absent) and returns the OpRecord to broadcast to peers.
func (r *Replica) Insert(value string, left, right engine.Anchor) (engine.OpRecord, error) {
	return r.engine.LocalInsert(value, left, right)
}

// Delete performs a local delete and returns the OpRecord to broadcast.
func (r *Replica) Delete(id s4vector.S4Vector) (engine.OpRecord, error) {
	return r.engine.LocalDelete(id)
}

// Update performs a local update and returns the OpRecord to broadcast, or
// ErrTombstonedTarget if id has already been deleted.
func (r *Replica) Update(id s4vector.S4Vector, value string) (engine.OpRecord, error) {
	return r.engine.LocalUpdate(id, value)
}

// Read returns the current linearized, tombstone-filtered sequence.
func (r *Replica) Read() []string {
	return r.engine.Read()
}

// RemoteApply is the sole entry point for operations originating
// elsewhere (spec.md §4.3). It submits op to the causal buffer; if
// dependencies are met it applies the op immediately and drives any
// cascading releases, otherwise the op waits and RemoteApply returns nil
// (BufferedPending is informational, not an error).
func (r *Replica) RemoteApply(op engine.OpRecord) error {
	switch r.buffer.Submit(op) {
	case causal.Applied:
		if err := r.engine.ApplyRemote(op); err != nil {
			return err
		}
		if op.Kind == engine.Insert {
			r.buffer.NotifyInserted(op.ID)
		}
		return nil
	case causal.Buffered, causal.Dropped:
		return nil
	default:
		return nil
	}
}

// BufferLen returns the number of operations currently held in the causal
// buffer, for diagnostics and tests.
func (r *Replica) BufferLen() int {
	return r.buffer.Len()
}
