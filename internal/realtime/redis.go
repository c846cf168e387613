// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ManuGH/vidshare/internal/log"
	"github.com/ManuGH/vidshare/internal/metrics"
)

// DefaultChannel is the redis pub/sub channel used when none is configured.
const DefaultChannel = "vidshare:videos:created"

// RedisBus relays events through redis pub/sub so every daemon replica
// sees uploads accepted by the others.
type RedisBus struct {
	client  redis.UniversalClient
	channel string
	logger  zerolog.Logger
}

// NewRedis wraps client. The caller owns the client.
func NewRedis(client redis.UniversalClient, channel string) *RedisBus {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBus{
		client:  client,
		channel: channel,
		logger:  log.WithComponent("realtime"),
	}
}

func (b *RedisBus) Publish(ctx context.Context, ev VideoCreated) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode %s: %w", ev.Type, err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	metrics.RecordRealtimeEvent("published")
	return nil
}

// Subscribe returns once redis has confirmed the subscription.
func (b *RedisBus) Subscribe(ctx context.Context) (Subscription, error) {
	ps := b.client.Subscribe(ctx, b.channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", b.channel, err)
	}

	sub := &redisSub{
		ps:     ps,
		ch:     make(chan VideoCreated, subscriberBuffer),
		done:   make(chan struct{}),
		logger: b.logger,
	}
	metrics.AddRealtimeSubscribers(1)
	go sub.pump()
	return sub, nil
}

type redisSub struct {
	ps     *redis.PubSub
	ch     chan VideoCreated
	done   chan struct{}
	once   sync.Once
	logger zerolog.Logger
}

func (s *redisSub) pump() {
	defer close(s.done)
	defer close(s.ch)

	for msg := range s.ps.Channel() {
		var ev VideoCreated
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			s.logger.Warn().Err(err).
				Str(log.FieldEvent, "realtime.decode_failed").
				Msg("discarding undecodable event")
			continue
		}
		if ev.Type == "" {
			ev.Type = EventVideoCreated
		}
		metrics.RecordRealtimeEvent("received")
		deliver(s.ch, ev)
	}
}

func (s *redisSub) C() <-chan VideoCreated { return s.ch }

func (s *redisSub) Close() error {
	var err error
	s.once.Do(func() {
		err = s.ps.Close()
		<-s.done
		metrics.AddRealtimeSubscribers(-1)
	})
	return err
}

var _ Bus = (*RedisBus)(nil)
