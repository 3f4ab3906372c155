// Package commitment implements the delay-based commitment protocol: once
// enough real time has elapsed since an observation was taken, the
// Inference Engine's best trajectory up to that point is frozen.
package commitment

import "time"

// Clock produces monotonic time-points. Satisfied by time.Now in
// production; tests supply a fake.
type Clock interface {
	Now() time.Time
}

// SystemClock is a Clock backed by the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Engine is the subset of the Inference Engine the Controller drives.
type Engine interface {
	TopT() int
	TopBindT() int
	Commit(timestep int) error
}

// Controller maps each observation timestep to the wall-clock time it was
// taken, and commits the oldest pending timesteps once they age past
// delay. Commitment is purely time-triggered: frames may arrive at any
// rate, including bursts after an occlusion, and the controller must
// never commit up to the current frontier since recent disagreements may
// still be overturned by evidence that hasn't arrived yet.
type Controller struct {
	engine     Engine
	delay      time.Duration
	timestamps map[int]time.Time
}

// NewController constructs a controller driving engine, committing
// timesteps once they are older than delay.
func NewController(engine Engine, delay time.Duration) *Controller {
	return &Controller{
		engine:     engine,
		delay:      delay,
		timestamps: make(map[int]time.Time),
	}
}

// Observe records the wall-clock time a timestep's observation was taken.
// Call this once per Advance call, with the same timestep.
func (c *Controller) Observe(timestep int, now time.Time) {
	c.timestamps[timestep] = now
}

// Poll scans the pending timesteps (top_bind_t, top_t) and commits the
// newest one old enough that now - timestamps[t] >= delay. Returns
// whether a commit happened. A failed commit (e.g. BeamEmpty) is reported
// upward rather than retried; the caller should poll again on the next
// tick regardless.
func (c *Controller) Poll(now time.Time) (bool, error) {
	best := -1
	for t := c.engine.TopBindT() + 1; t < c.engine.TopT(); t++ {
		ts, ok := c.timestamps[t]
		if !ok {
			continue
		}
		if now.Sub(ts) >= c.delay {
			best = t
		}
	}
	if best < 0 {
		return false, nil
	}

	if err := c.engine.Commit(best); err != nil {
		return false, err
	}
	for t := range c.timestamps {
		if t <= best {
			delete(c.timestamps, t)
		}
	}
	return true, nil
}
