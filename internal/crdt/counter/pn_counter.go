package counter

// PNCounter is a positive-negative counter CRDT: increments and
// decrements are tracked in two independent GCounters so the underlying
// state stays monotonic (grow-only) in both directions, which is what
// makes merging well-defined.
type PNCounter struct {
	positive *GCounter
	negative *GCounter
}

// NewPNCounter creates a PNCounter for siteID.
func NewPNCounter(siteID string) *PNCounter {
	return &PNCounter{
		positive: NewGCounter(siteID),
		negative: NewGCounter(siteID),
	}
}

// Increment adds delta to the counter.
func (c *PNCounter) Increment(delta uint64) {
	c.positive.Increment(delta)
}

// Decrement subtracts delta from the counter.
func (c *PNCounter) Decrement(delta uint64) {
	c.negative.Increment(delta)
}

// Value returns positive total minus negative total.
func (c *PNCounter) Value() int64 {
	return int64(c.positive.Value()) - int64(c.negative.Value())
}

// Merge merges the positive and negative GCounters independently.
func (c *PNCounter) Merge(other CRDT) error {
	o, ok := other.(*PNCounter)
	if !ok {
		return &ErrIncompatibleType{Want: "*PNCounter", Got: typeName(other)}
	}
	if err := c.positive.Merge(o.positive); err != nil {
		return err
	}
	return c.negative.Merge(o.negative)
}
