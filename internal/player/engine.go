// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package player

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/vidshare/internal/domain/video"
	xglog "github.com/ManuGH/vidshare/internal/log"
)

const (
	DefaultHideControlsAfter = 3 * time.Second
	DefaultSkipSeconds       = 10.0
	// SessionArtist is shown as the artist in OS media controls.
	SessionArtist = "ABISINYA STREAMING"
)

// PlaybackRates are the only rates the engine accepts.
var PlaybackRates = []float64{0.5, 0.75, 1, 1.25, 1.5, 2}

var (
	ErrNoElement       = errors.New("player: media element is required")
	ErrUnsupportedRate = errors.New("player: unsupported playback rate")
)

// Options wires an Engine to its platform ports. Only Element is required.
type Options struct {
	Element          MediaElement
	Fullscreen       DisplayMode
	PictureInPicture DisplayMode
	Session          MediaSession
	Clock            Clock
	Logger           *zerolog.Logger

	// Metadata is published to Session. Title and artwork usually come from the record.
	Metadata Metadata

	HideControlsAfter time.Duration
	SkipSeconds       float64

	// OnChange receives a snapshot after every observable change.
	OnChange func(Snapshot)
}

// Snapshot is a copy of the engine's observable state.
type Snapshot struct {
	State            State   `json:"state"`
	IsPlaying        bool    `json:"is_playing"`
	CurrentTime      float64 `json:"current_time"`
	Duration         float64 `json:"duration"`
	Unbounded        bool    `json:"unbounded,omitempty"`
	Volume           float64 `json:"volume"`
	IsMuted          bool    `json:"is_muted"`
	PlaybackRate     float64 `json:"playback_rate"`
	ControlsVisible  bool    `json:"controls_visible"`
	Fullscreen       bool    `json:"fullscreen"`
	PictureInPicture bool    `json:"picture_in_picture"`
	LastError        string  `json:"last_error,omitempty"`
}

// Engine is the transport controller for a direct-link source. It owns the
// controls-hide timer and, when a session port is given, the media-session
// action handlers. All methods are safe for concurrent use and become no-ops
// after Close.
type Engine struct {
	src    video.DirectLink
	el     MediaElement
	fs     DisplayMode
	pip    DisplayMode
	sess   MediaSession
	clock  Clock
	logger zerolog.Logger

	hideAfter time.Duration
	skip      float64
	onChange  func(Snapshot)

	mu            sync.Mutex
	closed        bool
	state         State
	currentTime   float64
	duration      float64
	unbounded     bool
	volume        float64
	muted         bool
	rate          float64
	controls      bool
	fullscreen    bool
	pictureInPic  bool
	lastErr       string
	controlsTimer Timer
	controlsGen   uint64
}

// NewEngine builds an engine for src and registers media-session handlers.
func NewEngine(src video.DirectLink, opts Options) (*Engine, error) {
	if opts.Element == nil {
		return nil, ErrNoElement
	}
	e := &Engine{
		src:       src,
		el:        opts.Element,
		fs:        opts.Fullscreen,
		pip:       opts.PictureInPicture,
		sess:      opts.Session,
		clock:     opts.Clock,
		hideAfter: opts.HideControlsAfter,
		skip:      opts.SkipSeconds,
		onChange:  opts.OnChange,
		state:     StateIdle,
		volume:    1,
		rate:      1,
		controls:  true,
	}
	if e.clock == nil {
		e.clock = SystemClock()
	}
	if e.hideAfter <= 0 {
		e.hideAfter = DefaultHideControlsAfter
	}
	if e.skip <= 0 {
		e.skip = DefaultSkipSeconds
	}
	if opts.Logger != nil {
		e.logger = opts.Logger.With().Str(xglog.FieldComponent, "player").Logger()
	} else {
		e.logger = xglog.WithComponent("player")
	}
	e.attachSession(opts.Metadata)
	return e, nil
}

// Source returns the source the engine plays.
func (e *Engine) Source() video.Source { return e.src }

type effect func()

// update runs fn under the lock, then runs the returned port calls and the
// change callback without it so ports may call back into the engine.
func (e *Engine) update(fn func() []effect) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	before := e.snapshotLocked()
	effects := fn()
	after := e.snapshotLocked()
	onChange := e.onChange
	e.mu.Unlock()

	for _, f := range effects {
		f()
	}
	if onChange != nil && before != after {
		onChange(after)
	}
}

// fireLocked applies ev and reports whether the state changed.
func (e *Engine) fireLocked(ev EventKind) bool {
	tr, ok := TransitionFor(e.state, ev)
	if !ok {
		return false
	}
	e.logger.Debug().
		Str(xglog.FieldEvent, "player.transition").
		Str(xglog.FieldOldState, tr.From.String()).
		Str(xglog.FieldNewState, tr.To.String()).
		Msg("playback state changed")
	e.state = tr.To
	return true
}

// Snapshot returns the current observable state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		State:            e.state,
		IsPlaying:        e.state == StatePlaying,
		CurrentTime:      e.currentTime,
		Duration:         e.duration,
		Unbounded:        e.unbounded,
		Volume:           e.volume,
		IsMuted:          e.muted,
		PlaybackRate:     e.rate,
		ControlsVisible:  e.controls,
		Fullscreen:       e.fullscreen,
		PictureInPicture: e.pictureInPic,
		LastError:        e.lastErr,
	}
}

// Play starts or resumes playback. Playing from ended restarts at zero.
func (e *Engine) Play() {
	e.update(func() []effect {
		prev := e.state
		if !e.fireLocked(EvPlay) {
			return nil
		}
		var fx []effect
		if prev == StateEnded {
			e.currentTime = 0
			fx = append(fx, func() { e.el.SetCurrentTime(0) })
		}
		e.lastErr = ""
		e.armControlsLocked()
		return append(fx, func() {
			if err := e.el.Play(); err != nil {
				e.playRejected(prev, err)
			}
		})
	})
}

func (e *Engine) playRejected(prev State, err error) {
	e.logger.Debug().Err(err).Str(xglog.FieldEvent, "player.play_rejected").Msg("platform refused playback")
	e.update(func() []effect {
		if e.state == StatePlaying {
			e.state = prev
			e.controls = true
		}
		return nil
	})
}

// Pause pauses playback. It is a no-op unless playing.
func (e *Engine) Pause() {
	e.update(func() []effect {
		if !e.fireLocked(EvPause) {
			return nil
		}
		e.controls = true
		return []effect{e.el.Pause}
	})
}

// TogglePlay switches between Play and Pause.
func (e *Engine) TogglePlay() {
	if e.Snapshot().IsPlaying {
		e.Pause()
		return
	}
	e.Play()
}

// Seek moves to t, clamped to [0, duration]. Unbounded media only clamps at
// zero. Play/pause state is preserved; seeking out of ended lands paused.
func (e *Engine) Seek(t float64) {
	e.update(func() []effect {
		return e.seekLocked(t)
	})
}

func (e *Engine) seekLocked(t float64) []effect {
	t = clamp(t, 0, e.upperLocked())
	e.currentTime = t
	e.fireLocked(EvSeek)
	if e.state == StateIdle {
		return nil
	}
	return []effect{func() { e.el.SetCurrentTime(t) }}
}

// Skip seeks relative to the current position.
func (e *Engine) Skip(delta float64) {
	e.update(func() []effect {
		return e.seekLocked(e.currentTime + delta)
	})
}

// SetVolume clamps v to [0,1]. Zero mutes; a positive volume leaves the mute
// flag as it was.
func (e *Engine) SetVolume(v float64) {
	e.update(func() []effect {
		v = clamp(v, 0, 1)
		e.volume = v
		fx := []effect{func() { e.el.SetVolume(v) }}
		if v == 0 && !e.muted {
			e.muted = true
			fx = append(fx, func() { e.el.SetMuted(true) })
		}
		return fx
	})
}

// ToggleMute flips the mute flag without touching the stored volume.
func (e *Engine) ToggleMute() {
	e.update(func() []effect {
		e.muted = !e.muted
		muted := e.muted
		return []effect{func() { e.el.SetMuted(muted) }}
	})
}

// SetPlaybackRate applies one of PlaybackRates.
func (e *Engine) SetPlaybackRate(rate float64) error {
	if !slices.Contains(PlaybackRates, rate) {
		return fmt.Errorf("%w: %v", ErrUnsupportedRate, rate)
	}
	e.update(func() []effect {
		e.rate = rate
		return []effect{func() { e.el.SetPlaybackRate(rate) }}
	})
	return nil
}

// MetadataLoaded records the media duration. Live sources report an unknown
// (infinite or NaN) duration; Duration stays zero and Unbounded is set.
func (e *Engine) MetadataLoaded(duration float64) {
	e.update(func() []effect {
		e.unbounded = math.IsNaN(duration) || math.IsInf(duration, 0)
		if e.unbounded || duration < 0 {
			duration = 0
		}
		e.duration = duration
		e.currentTime = clamp(e.currentTime, 0, e.upperLocked())
		e.fireLocked(EvMetadataLoaded)
		return nil
	})
}

// upperLocked is the largest valid position.
func (e *Engine) upperLocked() float64 {
	if e.unbounded {
		return math.Inf(1)
	}
	return e.duration
}

// TimeUpdate records the element's playback position.
func (e *Engine) TimeUpdate(t float64) {
	e.update(func() []effect {
		if math.IsNaN(t) || t < 0 {
			t = 0
		}
		if !e.unbounded && e.duration > 0 {
			t = min(t, e.duration)
		}
		e.currentTime = t
		return nil
	})
}

// Ended is reported by the element when playback reaches the end.
func (e *Engine) Ended() {
	e.update(func() []effect {
		if e.fireLocked(EvEnded) {
			if !e.unbounded {
				e.currentTime = e.duration
			}
			e.controls = true
		}
		return nil
	})
}

// Failed is reported when the resource cannot be decoded or fetched. The
// engine returns to idle and keeps the error for display.
func (e *Engine) Failed(err error) {
	e.logger.Debug().Err(err).Str(xglog.FieldEvent, "player.media_failed").Msg("media resource failed")
	e.update(func() []effect {
		e.fireLocked(EvFailed)
		e.duration = 0
		e.unbounded = false
		e.currentTime = 0
		e.controls = true
		if err != nil {
			e.lastErr = err.Error()
		} else {
			e.lastErr = "media unavailable"
		}
		return nil
	})
}

// Close detaches media-session handlers and cancels the controls timer.
// Every later call on the engine is a no-op.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.stopControlsLocked()
	e.mu.Unlock()

	e.detachSession()
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return max(lo, min(v, hi))
}
