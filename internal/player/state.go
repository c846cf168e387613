// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package player

// State is the playback lifecycle of a single media resource.
type State int

const (
	StateIdle State = iota // no metadata yet
	StateReady             // duration known, never started
	StatePlaying
	StatePaused
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReady:
		return "ready"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// MarshalText renders the state name in JSON payloads.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// EventKind is an input that may move the engine between states.
type EventKind int

const (
	EvUnknown EventKind = iota
	EvMetadataLoaded
	EvPlay
	EvPause
	EvSeek
	EvEnded
	EvFailed
)

// Transition is a single allowed edge in the playback state machine.
type Transition struct {
	From  State
	To    State
	Event EventKind
}

// transitionsTable lists every edge. Events with no edge from the current
// state leave it unchanged.
var transitionsTable = []Transition{
	// Metadata
	{From: StateIdle, To: StateReady, Event: EvMetadataLoaded},

	// Play; from idle the element buffers before time advances
	{From: StateIdle, To: StatePlaying, Event: EvPlay},
	{From: StateReady, To: StatePlaying, Event: EvPlay},
	{From: StatePaused, To: StatePlaying, Event: EvPlay},
	{From: StateEnded, To: StatePlaying, Event: EvPlay},

	// Pause
	{From: StatePlaying, To: StatePaused, Event: EvPause},

	// Seeking out of ended lands paused at the new position
	{From: StateEnded, To: StatePaused, Event: EvSeek},

	// End of media
	{From: StatePlaying, To: StateEnded, Event: EvEnded},

	// Decode/network failure drops back to idle
	{From: StateReady, To: StateIdle, Event: EvFailed},
	{From: StatePlaying, To: StateIdle, Event: EvFailed},
	{From: StatePaused, To: StateIdle, Event: EvFailed},
	{From: StateEnded, To: StateIdle, Event: EvFailed},
}

// TransitionFor returns the edge taken from state on ev, if any.
func TransitionFor(from State, ev EventKind) (Transition, bool) {
	for _, tr := range transitionsTable {
		if tr.From == from && tr.Event == ev {
			return tr, true
		}
	}
	return Transition{}, false
}
