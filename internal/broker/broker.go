// Package broker is the "deliver at-least-once to peers" collaborator
// spec.md §6 assumes exists outside the engine: a thin Redis pub/sub
// relay that republishes every accepted operation to every other
// subscribed replica process. It never inspects operation semantics —
// it moves bytes — so convergence correctness still lives entirely in
// package engine/causal.
package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/s4vector/rga/internal/transport"
)

// Broker publishes and subscribes to a single Redis channel shared by all
// replicas in a collaboration session.
type Broker struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// New creates a Broker backed by client, relaying operations over
// channel. channel is typically derived from the session's ssn so
// unrelated sessions don't cross-talk.
func New(client *redis.Client, channel string, logger *zap.Logger) *Broker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broker{client: client, channel: channel, logger: logger}
}

// Publish serializes op and publishes it to the shared channel.
func (b *Broker) Publish(ctx context.Context, op transport.WireOp) error {
	payload, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("broker: marshal op: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("broker: publish: %w", err)
	}
	return nil
}

// Subscribe subscribes to the shared channel and invokes handle for every
// received operation until ctx is cancelled or the subscription errors.
// Malformed payloads are logged and skipped rather than terminating the
// loop, since a single corrupt peer message must not take down a replica
// process.
func (b *Broker) Subscribe(ctx context.Context, handle func(transport.WireOp)) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var op transport.WireOp
			if err := json.Unmarshal([]byte(msg.Payload), &op); err != nil {
				b.logger.Warn("broker: dropping malformed message", zap.Error(err))
				continue
			}
			handle(op)
		}
	}
}

// Close releases the underlying Redis client.
func (b *Broker) Close() error {
	return b.client.Close()
}
