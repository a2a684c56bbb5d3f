package timeline

import "time"

// Fade maps wall-clock time onto fade-in progress.
type Fade struct {
	Start    time.Time
	Duration time.Duration
}

// NewFade starts a fade at now. A non-positive duration falls back to
// DefaultFadeDuration.
func NewFade(now time.Time, d time.Duration) Fade {
	if d <= 0 {
		d = DefaultFadeDuration
	}
	return Fade{Start: now, Duration: d}
}

// ProgressAt returns the linear progress at t, clamped to [0, 1].
func (f Fade) ProgressAt(t time.Time) float64 {
	elapsed := t.Sub(f.Start)
	if elapsed <= 0 {
		return 0
	}
	if elapsed >= f.Duration {
		return 1
	}
	return float64(elapsed) / float64(f.Duration)
}

// Done reports whether the fade has finished at t.
func (f Fade) Done(t time.Time) bool {
	return t.Sub(f.Start) >= f.Duration
}
