package realtime

import "time"

// DefaultTickInterval is the usual cadence of a round countdown.
const DefaultTickInterval = time.Second

// Countdown holds the timing state of a single per-round countdown: the value it
// started from, the seconds remaining and when the next tick is due.
// It does not hold game-specific state; the game composes it and reacts to the
// results of Advance(now).
type Countdown struct {
	Interval  time.Duration
	From      int
	Remaining int
	nextTick  time.Time
	running   bool
}

// Start resets the countdown to from and schedules the first tick one interval
// after now. Any schedule already running is replaced.
func (c *Countdown) Start(from int, now time.Time) {
	if c.Interval <= 0 {
		c.Interval = DefaultTickInterval
	}
	if from < 0 {
		from = 0
	}
	c.From = from
	c.Remaining = from
	c.nextTick = now.Add(c.Interval)
	c.running = true
}

// Stop halts ticking. Remaining keeps its current value.
func (c *Countdown) Stop() {
	c.running = false
	c.nextTick = time.Time{}
}

// Running reports whether ticks are scheduled.
func (c *Countdown) Running() bool {
	return c.running
}

// NextWake returns when the next tick is due, and whether one is scheduled.
func (c *Countdown) NextWake() (time.Time, bool) {
	if !c.running {
		return time.Time{}, false
	}
	return c.nextTick, true
}

// Advance applies every tick due at or before now. ticks is the number of
// seconds consumed; timedOut is true on the call that brought Remaining to
// zero. After timing out the countdown holds at zero until the next Start.
func (c *Countdown) Advance(now time.Time) (ticks int, timedOut bool) {
	for c.running && !now.Before(c.nextTick) {
		c.Remaining--
		ticks++
		c.nextTick = c.nextTick.Add(c.Interval)
		if c.Remaining <= 0 {
			c.Remaining = 0
			c.Stop()
			return ticks, true
		}
	}
	return ticks, false
}
