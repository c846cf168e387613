// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package engagement applies user interactions locally before the remote
// write confirms them, and rolls them back when it does not.
package engagement

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ManuGH/vidshare/internal/log"
	"github.com/ManuGH/vidshare/internal/metrics"
)

// ErrRemoteFailed wraps the cause of a rolled back update.
var ErrRemoteFailed = errors.New("remote update failed")

// Cell is a locally displayed value.
type Cell[T any] struct {
	mu sync.Mutex
	v  T
}

// NewCell returns a cell holding v.
func NewCell[T any](v T) *Cell[T] {
	return &Cell[T]{v: v}
}

// Load returns the current value.
func (c *Cell[T]) Load() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

// Store replaces the value.
func (c *Cell[T]) Store(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.v = v
}

// swap applies fn and returns the value it replaced.
func (c *Cell[T]) swap(fn func(T) T) (prev, next T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev = c.v
	c.v = fn(prev)
	return prev, c.v
}

// Optimistic applies apply to cell, runs remote, and restores the exact
// snapshot taken before apply if remote fails. op labels the rollback
// metric and log line.
func Optimistic[T any](ctx context.Context, op string, cell *Cell[T], apply func(T) T, remote func(context.Context, T) error) (T, error) {
	return Reconcile(ctx, op, cell, apply, func(ctx context.Context, next T) (T, error) {
		return next, remote(ctx, next)
	})
}

// Reconcile is Optimistic for remotes that answer with the authoritative
// value, which replaces the local one on success.
func Reconcile[T any](ctx context.Context, op string, cell *Cell[T], apply func(T) T, remote func(context.Context, T) (T, error)) (T, error) {
	snapshot, next := cell.swap(apply)

	confirmed, err := remote(ctx, next)
	if err != nil {
		cell.Store(snapshot)
		metrics.RecordOptimisticRollback(op)
		logger := log.WithComponentFromContext(ctx, "engagement")
		logger.Warn().Err(err).
			Str(log.FieldEvent, "optimistic.rollback").
			Str(log.FieldAction, op).
			Msg("remote update failed, local change rolled back")
		return snapshot, fmt.Errorf("%s: %w: %w", op, ErrRemoteFailed, err)
	}

	cell.Store(confirmed)
	return confirmed, nil
}
