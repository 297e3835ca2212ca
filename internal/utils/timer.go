package utils

import "time"

// Timer measures the latency of one request.
type Timer struct {
	startTime time.Time
	duration  time.Duration
}

// NewTimer returns a running Timer.
func NewTimer() *Timer {
	return &Timer{startTime: time.Now()}
}

// Stop captures the time elapsed since NewTimer and returns it.
func (t *Timer) Stop() time.Duration {
	t.duration = time.Since(t.startTime)
	return t.duration
}

// GetDuration returns the duration captured by Stop, or zero before Stop.
func (t *Timer) GetDuration() time.Duration {
	return t.duration
}
