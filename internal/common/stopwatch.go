// Package common holds small helpers shared across the validation packages.
package common

import "time"

// Stopwatch measures the wall time of a validation step or run. Obtain one
// from StartStopwatch; the zero value reports times since the epoch.
type Stopwatch struct {
	start time.Time
}

// StartStopwatch begins timing immediately.
func StartStopwatch() *Stopwatch {
	return &Stopwatch{start: time.Now()}
}

// Elapsed returns the time since the stopwatch was started.
func (s *Stopwatch) Elapsed() time.Duration {
	return time.Since(s.start)
}

// ElapsedMS returns the elapsed time in fractional milliseconds, the unit
// validation results report processing time in.
func (s *Stopwatch) ElapsedMS() float64 {
	return float64(s.Elapsed()) / float64(time.Millisecond)
}
