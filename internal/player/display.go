// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package player

import xglog "github.com/ManuGH/vidshare/internal/log"

const (
	modeFullscreen       = "fullscreen"
	modePictureInPicture = "picture_in_picture"
)

// RequestFullscreen enters fullscreen. It is a no-op when already fullscreen.
// Denied requests and missing platform support leave the flag unchanged
// without surfacing an error.
func (e *Engine) RequestFullscreen() {
	e.setDisplay(modeFullscreen, e.fs, &e.fullscreen, true)
}

// ExitFullscreen leaves fullscreen. It is a no-op when not fullscreen.
func (e *Engine) ExitFullscreen() {
	e.setDisplay(modeFullscreen, e.fs, &e.fullscreen, false)
}

// ToggleFullscreen enters or leaves fullscreen.
func (e *Engine) ToggleFullscreen() {
	if e.Snapshot().Fullscreen {
		e.ExitFullscreen()
		return
	}
	e.RequestFullscreen()
}

// RequestPictureInPicture opens the picture-in-picture window, with the same
// failure handling as RequestFullscreen.
func (e *Engine) RequestPictureInPicture() {
	e.setDisplay(modePictureInPicture, e.pip, &e.pictureInPic, true)
}

// ExitPictureInPicture closes the picture-in-picture window.
func (e *Engine) ExitPictureInPicture() {
	e.setDisplay(modePictureInPicture, e.pip, &e.pictureInPic, false)
}

// TogglePictureInPicture enters or leaves picture-in-picture.
func (e *Engine) TogglePictureInPicture() {
	if e.Snapshot().PictureInPicture {
		e.ExitPictureInPicture()
		return
	}
	e.RequestPictureInPicture()
}

// FullscreenChanged syncs the flag when the platform leaves fullscreen on its own.
func (e *Engine) FullscreenChanged(active bool) {
	e.update(func() []effect {
		e.fullscreen = active
		return nil
	})
}

// PictureInPictureChanged syncs the flag when the platform closes the PiP window.
func (e *Engine) PictureInPictureChanged(active bool) {
	e.update(func() []effect {
		e.pictureInPic = active
		return nil
	})
}

// setDisplay drives port towards want. The port is not called when the flag
// already matches.
func (e *Engine) setDisplay(name string, port DisplayMode, flag *bool, want bool) {
	if port == nil {
		return
	}
	e.mu.Lock()
	if e.closed || *flag == want {
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	var err error
	if want {
		err = port.Enter()
	} else {
		err = port.Exit()
	}
	if err != nil {
		e.logger.Debug().Err(err).
			Str("mode", name).
			Bool("enter", want).
			Str(xglog.FieldEvent, "player.display_denied").
			Msg("display mode request denied")
		return
	}
	e.update(func() []effect {
		*flag = want
		return nil
	})
}
