// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package realtime

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ManuGH/vidshare/internal/log"
	"github.com/ManuGH/vidshare/internal/metrics"
)

const dropLogEvery = 100

var dropCount atomic.Uint64

// MemoryBus is an in-process Bus.
type MemoryBus struct {
	mu     sync.RWMutex
	subs   map[*memSub]struct{}
	closed bool
}

// NewMemory returns an empty bus.
func NewMemory() *MemoryBus {
	return &MemoryBus{subs: make(map[*memSub]struct{})}
}

func (b *MemoryBus) Publish(ctx context.Context, ev VideoCreated) error {
	if ctx == nil {
		return fmt.Errorf("publish context is nil")
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}

	// Sends happen under the read lock so Close cannot close a channel
	// mid-send.
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	for sub := range b.subs {
		deliver(sub.ch, ev)
	}
	metrics.RecordRealtimeEvent("published")
	return nil
}

// deliver hands ev to ch without blocking.
func deliver(ch chan VideoCreated, ev VideoCreated) {
	select {
	case ch <- ev:
	default:
		metrics.RecordRealtimeEvent("dropped")
		if n := dropCount.Add(1); n%dropLogEvery == 1 {
			logger := log.WithComponent("realtime")
			logger.Warn().
				Str(log.FieldEvent, "realtime.dropped").
				Str(log.FieldVideoID, ev.Video.ID).
				Uint64("dropped", n).
				Msg("subscriber buffer full, event dropped")
		}
	}
}

func (b *MemoryBus) Subscribe(ctx context.Context) (Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sub := &memSub{b: b, ch: make(chan VideoCreated, subscriberBuffer)}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	b.subs[sub] = struct{}{}
	metrics.AddRealtimeSubscribers(1)
	return sub, nil
}

// Close ends every subscription.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for sub := range b.subs {
		sub.closeLocked()
	}
	return nil
}

type memSub struct {
	b    *MemoryBus
	ch   chan VideoCreated
	once sync.Once
}

func (s *memSub) C() <-chan VideoCreated { return s.ch }

func (s *memSub) Close() error {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	s.closeLocked()
	return nil
}

// closeLocked must be called with the bus lock held.
func (s *memSub) closeLocked() {
	s.once.Do(func() {
		delete(s.b.subs, s)
		close(s.ch)
		metrics.AddRealtimeSubscribers(-1)
	})
}

var _ Bus = (*MemoryBus)(nil)
