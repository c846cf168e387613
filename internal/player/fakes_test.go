// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package player

import (
	"sync"
	"time"
)

type fakeElement struct {
	mu      sync.Mutex
	calls   []string
	playErr error
	time    float64
	volume  float64
	muted   bool
	rate    float64
}

func (f *fakeElement) record(c string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeElement) Play() error {
	f.record("play")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.playErr
}

func (f *fakeElement) Pause() { f.record("pause") }

func (f *fakeElement) SetCurrentTime(s float64) {
	f.record("seek")
	f.mu.Lock()
	f.time = s
	f.mu.Unlock()
}

func (f *fakeElement) SetVolume(v float64) {
	f.mu.Lock()
	f.volume = v
	f.mu.Unlock()
}

func (f *fakeElement) SetMuted(m bool) {
	f.mu.Lock()
	f.muted = m
	f.mu.Unlock()
}

func (f *fakeElement) SetPlaybackRate(r float64) {
	f.mu.Lock()
	f.rate = r
	f.mu.Unlock()
}

func (f *fakeElement) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeDisplay struct {
	enterErr error
	exitErr  error
	enters   int
	exits    int
}

func (d *fakeDisplay) Enter() error {
	d.enters++
	return d.enterErr
}

func (d *fakeDisplay) Exit() error {
	d.exits++
	return d.exitErr
}

type fakeSession struct {
	mu       sync.Mutex
	metadata Metadata
	handlers map[Action]func()
}

func newFakeSession() *fakeSession {
	return &fakeSession{handlers: make(map[Action]func())}
}

func (s *fakeSession) SetMetadata(md Metadata) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metadata = md
}

func (s *fakeSession) SetActionHandler(a Action, h func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h == nil {
		delete(s.handlers, a)
		return
	}
	s.handlers[a] = h
}

func (s *fakeSession) trigger(a Action) bool {
	s.mu.Lock()
	h := s.handlers[a]
	s.mu.Unlock()
	if h == nil {
		return false
	}
	h()
	return true
}

func (s *fakeSession) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handlers)
}

// manualClock fires timers only when advanced.
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []func()
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t.f)
		}
	}
	c.mu.Unlock()
	for _, f := range due {
		f()
	}
}

func (c *manualClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}
