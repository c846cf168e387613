// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package player

import "time"

// MediaElement is the native media element driven by the engine. The element
// reports back through Engine.MetadataLoaded, TimeUpdate, Ended and Failed.
type MediaElement interface {
	// Play starts playback; an error means the platform refused (autoplay policy).
	Play() error
	Pause()
	SetCurrentTime(seconds float64)
	SetVolume(v float64)
	SetMuted(muted bool)
	SetPlaybackRate(rate float64)
}

// DisplayMode is a presentation mode such as fullscreen or picture-in-picture.
// Enter and Exit may fail when the platform denies the request.
type DisplayMode interface {
	Enter() error
	Exit() error
}

// Action is a media-session action name.
type Action string

const (
	ActionPlay         Action = "play"
	ActionPause        Action = "pause"
	ActionSeekBackward Action = "seekbackward"
	ActionSeekForward  Action = "seekforward"
)

var sessionActions = []Action{ActionPlay, ActionPause, ActionSeekBackward, ActionSeekForward}

// Artwork is one image advertised to the OS media controls.
type Artwork struct {
	Src   string
	Sizes string
	Type  string
}

// Metadata is what the OS media controls display for the current item.
type Metadata struct {
	Title   string
	Artist  string
	Artwork []Artwork
}

// MediaSession is the OS-level media control surface. A nil handler clears
// the action.
type MediaSession interface {
	SetMetadata(Metadata)
	SetActionHandler(action Action, handler func())
}

// Timer is a cancellable scheduled callback.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock returns a Clock backed by time.AfterFunc.
func SystemClock() Clock { return systemClock{} }
