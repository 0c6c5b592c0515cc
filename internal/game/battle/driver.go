package battle

import (
	"fmt"
	"iter"
)

// Driver steps a suspension sequence from a single-threaded frame loop.
// Each Step either keeps waiting on the current suspension or resumes the
// sequence up to its next one.
type Driver struct {
	show  Presenter
	next  func() (Wait, bool)
	stop  func()
	cur   Wait
	held  bool
	done  bool
	steps int
}

// NewDriver prepares seq for stepping. Nothing runs until the first Step.
//
// Precondition: show must be non-nil.
func NewDriver(show Presenter, seq iter.Seq[Wait]) *Driver {
	next, stop := iter.Pull(seq)
	return &Driver{show: show, next: next, stop: stop}
}

// Step advances the driver by one frame.
//
// Postcondition: returns true once the sequence is exhausted; further calls
// are no-ops returning true.
func (d *Driver) Step() bool {
	if d.done {
		return true
	}
	d.steps++
	if d.held {
		switch d.cur.Kind {
		case WaitKindAnimation:
			if d.cur.Char != nil && d.show.Occupied(d.cur.Char) {
				return false
			}
		case WaitKindFrames:
			d.cur.Frames--
			if d.cur.Frames > 0 {
				return false
			}
		}
		d.held = false
	}
	w, ok := d.next()
	if !ok {
		d.Close()
		return true
	}
	d.cur, d.held = w, true
	return false
}

// Steps returns how many frames the driver has been stepped.
func (d *Driver) Steps() int { return d.steps }

// Run steps until the sequence is exhausted, calling tick after every frame
// that did not finish it.
//
// Postcondition: returns an error if the sequence is still suspended after
// limit frames; the sequence is then stopped.
func (d *Driver) Run(limit int, tick func()) error {
	for range limit {
		if d.Step() {
			return nil
		}
		if tick != nil {
			tick()
		}
	}
	d.Close()
	return fmt.Errorf("battle: resolution still suspended after %d frames", limit)
}

// Close stops the sequence early. It is safe to call more than once.
func (d *Driver) Close() {
	if !d.done {
		d.done = true
		d.stop()
	}
}
