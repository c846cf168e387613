// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package player

// attachSession publishes metadata and routes OS media keys through the same
// paths as the in-app buttons.
func (e *Engine) attachSession(md Metadata) {
	if e.sess == nil {
		return
	}
	if md.Artist == "" {
		md.Artist = SessionArtist
	}
	e.sess.SetMetadata(md)
	e.sess.SetActionHandler(ActionPlay, e.Play)
	e.sess.SetActionHandler(ActionPause, e.Pause)
	e.sess.SetActionHandler(ActionSeekBackward, func() { e.Skip(-e.skip) })
	e.sess.SetActionHandler(ActionSeekForward, func() { e.Skip(e.skip) })
}

func (e *Engine) detachSession() {
	if e.sess == nil {
		return
	}
	for _, a := range sessionActions {
		e.sess.SetActionHandler(a, nil)
	}
}
