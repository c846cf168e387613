// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/vidshare/internal/domain/video"
)

func TestTransitionTableHasNoDuplicateEdges(t *testing.T) {
	seen := map[[2]int]bool{}
	for _, tr := range transitionsTable {
		key := [2]int{int(tr.From), int(tr.Event)}
		assert.False(t, seen[key], "duplicate edge %s/%d", tr.From, tr.Event)
		seen[key] = true
		assert.NotEqual(t, tr.From, tr.To, "self edge %s", tr.From)
	}
}

func TestNoEdgeLeadsFromActiveStatesToIdleExceptFailure(t *testing.T) {
	for _, tr := range transitionsTable {
		if tr.To == StateIdle {
			assert.Equal(t, EvFailed, tr.Event)
		}
	}
	_, ok := TransitionFor(StateEnded, EvSeek)
	assert.True(t, ok)
	_, ok = TransitionFor(StateIdle, EvPause)
	assert.False(t, ok)
}

func TestOpenDispatchesOnSource(t *testing.T) {
	s, err := Open(video.Embed{URL: "https://www.youtube.com/embed/dQw4w9WgXcQ"}, Options{Metadata: Metadata{Title: "t"}})
	require.NoError(t, err)
	frame, ok := s.(*Frame)
	require.True(t, ok)
	assert.Equal(t, "https://www.youtube.com/embed/dQw4w9WgXcQ", frame.Src())
	assert.Equal(t, FrameAllow, frame.Allow)
	assert.True(t, frame.AllowFullscreen)
	frame.Close()

	s, err = Open(video.DirectLink{URL: "https://cdn/x.mp4"}, Options{Element: &fakeElement{}, Clock: &manualClock{}})
	require.NoError(t, err)
	eng, ok := s.(*Engine)
	require.True(t, ok)
	assert.Equal(t, video.KindDirectLink, eng.Source().Kind())
	eng.Close()

	_, err = Open(video.DirectLink{URL: "x"}, Options{})
	assert.ErrorIs(t, err, ErrNoElement)
	_, err = Open(nil, Options{})
	assert.ErrorIs(t, err, ErrNoSource)
}

func TestEmbedGetsNoSessionHandlers(t *testing.T) {
	sess := newFakeSession()
	_, err := Open(video.Embed{URL: "https://player.vimeo.com/video/1"}, Options{Session: sess})
	require.NoError(t, err)
	assert.Zero(t, sess.count())
}

func TestDescribe(t *testing.T) {
	d, err := Describe(video.Embed{URL: "https://player.vimeo.com/video/1"})
	require.NoError(t, err)
	assert.Equal(t, ModeFrame, d.Mode)
	assert.Nil(t, d.Transport)
	assert.Equal(t, FrameAllow, d.Allow)

	d, err = Describe(video.DirectLink{URL: "https://cdn/x.mp4"})
	require.NoError(t, err)
	assert.Equal(t, ModeNative, d.Mode)
	require.NotNil(t, d.Transport)
	assert.Equal(t, PlaybackRates, d.Transport.PlaybackRates)
	assert.EqualValues(t, 3000, d.Transport.HideControlsAfterMS)
	assert.Equal(t, 10.0, d.Transport.SkipSeconds)

	_, err = Describe(nil)
	assert.ErrorIs(t, err, ErrNoSource)
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "0:00", FormatTime(0))
	assert.Equal(t, "1:05", FormatTime(65.9))
	assert.Equal(t, "61:01", FormatTime(3661))
	assert.Equal(t, "0:00", FormatTime(-3))
}

func TestStateString(t *testing.T) {
	b, err := StatePaused.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "paused", string(b))
	assert.Equal(t, "unknown", State(99).String())
}
