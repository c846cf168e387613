// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package player

import (
	"errors"
	"fmt"
	"math"

	"github.com/ManuGH/vidshare/internal/domain/video"
)

// FrameAllow is the permission list granted to embedded third-party players.
const FrameAllow = "accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture"

var (
	ErrNoSource          = errors.New("player: no source")
	ErrUnsupportedSource = errors.New("player: unsupported source")
)

// Surface is what a watch view mounts for a source.
type Surface interface {
	Source() video.Source
	Close()
}

// Frame is the passive surface for embeds. The third-party player owns
// transport; the engine exposes no controls for it.
type Frame struct {
	src             video.Embed
	Title           string
	Allow           string
	AllowFullscreen bool
}

// NewFrame builds the frame surface for src.
func NewFrame(src video.Embed, title string) *Frame {
	return &Frame{src: src, Title: title, Allow: FrameAllow, AllowFullscreen: true}
}

func (f *Frame) Source() video.Source { return f.src }

// Src is the frame URL.
func (f *Frame) Src() string { return f.src.URL }

// Close is a no-op; frames hold no handlers or timers.
func (f *Frame) Close() {}

// Open mounts the surface matching the source variant.
func Open(src video.Source, opts Options) (Surface, error) {
	switch s := src.(type) {
	case video.DirectLink:
		e, err := NewEngine(s, opts)
		if err != nil {
			return nil, err
		}
		return e, nil
	case video.Embed:
		return NewFrame(s, opts.Metadata.Title), nil
	case nil:
		return nil, ErrNoSource
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedSource, src)
	}
}

// Transport describes the native controls offered for direct links.
type Transport struct {
	PlaybackRates       []float64 `json:"playback_rates"`
	SkipSeconds         float64   `json:"skip_seconds"`
	HideControlsAfterMS int64     `json:"hide_controls_after_ms"`
	MediaSession        bool      `json:"media_session"`
}

// Descriptor tells a client how to mount a source.
type Descriptor struct {
	Mode            string     `json:"mode"`
	Src             string     `json:"src"`
	Allow           string     `json:"allow,omitempty"`
	AllowFullscreen bool       `json:"allow_fullscreen"`
	Transport       *Transport `json:"transport,omitempty"`
}

const (
	ModeNative = "native"
	ModeFrame  = "frame"
)

// Describe returns the mount descriptor for src.
func Describe(src video.Source) (Descriptor, error) {
	switch s := src.(type) {
	case video.DirectLink:
		return Descriptor{
			Mode:            ModeNative,
			Src:             s.URL,
			AllowFullscreen: true,
			Transport: &Transport{
				PlaybackRates:       PlaybackRates,
				SkipSeconds:         DefaultSkipSeconds,
				HideControlsAfterMS: DefaultHideControlsAfter.Milliseconds(),
				MediaSession:        true,
			},
		}, nil
	case video.Embed:
		return Descriptor{Mode: ModeFrame, Src: s.URL, Allow: FrameAllow, AllowFullscreen: true}, nil
	case nil:
		return Descriptor{}, ErrNoSource
	default:
		return Descriptor{}, fmt.Errorf("%w: %T", ErrUnsupportedSource, src)
	}
}

// FormatTime renders seconds as m:ss.
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
