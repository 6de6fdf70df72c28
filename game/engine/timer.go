package engine

import (
	"fmt"
	"time"
)

const (
	DefaultRoundDuration = 3 * time.Minute
	DefaultTickInterval  = time.Second
)

// RoundTimer counts a round down in fixed ticks.
//
// The timer does not own a goroutine; the host calls Tick once per interval.
// Ticks are ignored unless the timer is running, so pausing keeps the
// remaining time exactly.
type RoundTimer struct {
	duration  time.Duration
	interval  time.Duration
	remaining time.Duration
	running   bool
	expired   bool
}

// NewRoundTimer returns a stopped timer holding the full duration.
func NewRoundTimer(duration, interval time.Duration) *RoundTimer {
	if duration <= 0 {
		duration = DefaultRoundDuration
	}
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &RoundTimer{duration: duration, interval: interval, remaining: duration}
}

// Start begins ticking from the current remaining time.
func (t *RoundTimer) Start() {
	if !t.expired {
		t.running = true
	}
}

// Pause stops ticking; the remaining time is kept.
func (t *RoundTimer) Pause() {
	t.running = false
}

// Resume continues ticking from the kept remaining time.
func (t *RoundTimer) Resume() {
	t.Start()
}

// Stop halts the timer at the end of a round.
func (t *RoundTimer) Stop() {
	t.running = false
}

// Reset restores the full duration and stops the timer.
func (t *RoundTimer) Reset() {
	t.remaining = t.duration
	t.running = false
	t.expired = false
}

// Tick advances the clock by one interval. It returns true exactly once,
// on the tick that reaches zero.
func (t *RoundTimer) Tick() bool {
	if !t.running || t.expired {
		return false
	}
	t.remaining -= t.interval
	if t.remaining > 0 {
		return false
	}
	t.remaining = 0
	t.running = false
	t.expired = true
	return true
}

// Remaining returns the time left, never negative.
func (t *RoundTimer) Remaining() time.Duration {
	return t.remaining
}

// RemainingMillis returns the time left in milliseconds.
func (t *RoundTimer) RemainingMillis() int64 {
	return t.remaining.Milliseconds()
}

// Duration returns the full round length.
func (t *RoundTimer) Duration() time.Duration {
	return t.duration
}

// Interval returns the tick length.
func (t *RoundTimer) Interval() time.Duration {
	return t.interval
}

// Running reports whether ticks currently advance the clock.
func (t *RoundTimer) Running() bool {
	return t.running
}

// Expired reports whether the clock has reached zero.
func (t *RoundTimer) Expired() bool {
	return t.expired
}

// Display formats the remaining time as MM:SS.
func (t *RoundTimer) Display() string {
	return FormatClock(t.remaining)
}

// FormatClock floors d to whole seconds and formats it as MM:SS.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
