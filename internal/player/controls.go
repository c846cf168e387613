// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package player

// PointerActivity shows the controls and restarts the hide countdown.
func (e *Engine) PointerActivity() {
	e.update(func() []effect {
		e.controls = true
		e.armControlsLocked()
		return nil
	})
}

// PointerLeave hides the controls straight away while playing.
func (e *Engine) PointerLeave() {
	e.update(func() []effect {
		if e.state == StatePlaying {
			e.stopControlsLocked()
			e.controls = false
		}
		return nil
	})
}

func (e *Engine) armControlsLocked() {
	e.stopControlsLocked()
	gen := e.controlsGen
	e.controlsTimer = e.clock.AfterFunc(e.hideAfter, func() {
		e.controlsExpired(gen)
	})
}

// stopControlsLocked cancels a pending countdown. Bumping the generation also
// neutralises a callback that already fired and is waiting on the lock.
func (e *Engine) stopControlsLocked() {
	e.controlsGen++
	if e.controlsTimer != nil {
		e.controlsTimer.Stop()
		e.controlsTimer = nil
	}
}

func (e *Engine) controlsExpired(gen uint64) {
	e.update(func() []effect {
		if gen != e.controlsGen {
			return nil
		}
		e.controlsTimer = nil
		if e.state == StatePlaying {
			e.controls = false
		}
		return nil
	})
}
