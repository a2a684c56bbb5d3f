// Package timeline holds the payment timeline domain for paytrail: the
// entries returned by the API and the screen state that a load cycle and
// the fade-in animation move through.
//
// State is a value type. Every transition returns a new State and never
// mutates the receiver, so the TUI can keep it inside a BubbleTea model
// and tests can drive it without a terminal.
package timeline

import "time"

// Entry is one event in a client's payment history.
// CreatedAt is kept exactly as the server sent it (ISO-8601); formatting
// is a presentation concern.
type Entry struct {
	CreatedAt   string `json:"createdAt"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Response is the payload of GET clients/get-timeline.
type Response struct {
	Success  bool    `json:"success"`
	Timeline []Entry `json:"timeline"`
}

// HasEntries reports whether the response carries anything to show.
// A nil response, success=false, a missing timeline and an empty
// timeline are all the same thing to the screen.
func (r *Response) HasEntries() bool {
	return r != nil && r.Success && len(r.Timeline) > 0
}

// Outcome names how the most recent load cycle ended.
type Outcome int

const (
	// OutcomePending means a load is in flight (or none has run yet).
	OutcomePending Outcome = iota
	// OutcomeLoaded means entries were received.
	OutcomeLoaded
	// OutcomeEmpty means the request succeeded but had nothing to show.
	OutcomeEmpty
	// OutcomeFailed means the request failed; the screen shows the
	// empty state and the error is only logged.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeLoaded:
		return "loaded"
	case OutcomeEmpty:
		return "empty"
	case OutcomeFailed:
		return "empty-due-to-error"
	default:
		return "unknown"
	}
}

// Mode is one of the three mutually exclusive render modes.
type Mode int

const (
	ModeLoading Mode = iota
	ModeEmpty
	ModePopulated
)

func (m Mode) String() string {
	switch m {
	case ModeLoading:
		return "loading"
	case ModeEmpty:
		return "empty"
	case ModePopulated:
		return "populated"
	default:
		return "unknown"
	}
}

// DefaultFadeDuration is how long the fade-in takes after a load.
const DefaultFadeDuration = 1000 * time.Millisecond

// State is everything the screen renders from.
type State struct {
	Loading  bool
	Entries  []Entry
	Progress float64 // fade-in opacity, 0..1
	Outcome  Outcome
	Err      error // set only for OutcomeFailed
	Cycle    int   // incremented on every BeginLoad
}

// Mount returns the state of a freshly mounted screen.
func Mount() State {
	return State{Loading: true}
}

// BeginLoad starts a new load cycle: loading, no entries, fade reset.
func (s State) BeginLoad() State {
	return State{
		Loading: true,
		Outcome: OutcomePending,
		Cycle:   s.Cycle + 1,
	}
}

// ApplyResponse applies a successful request. It reports whether the
// fade-in should start, which is true only when entries arrived.
func (s State) ApplyResponse(resp *Response) (State, bool) {
	next := State{Cycle: s.Cycle}
	if !resp.HasEntries() {
		next.Outcome = OutcomeEmpty
		return next, false
	}

	entries := make([]Entry, len(resp.Timeline))
	copy(entries, resp.Timeline)
	next.Entries = entries
	next.Outcome = OutcomeLoaded
	return next, true
}

// ApplyFailure applies a failed request. The screen falls back to the
// empty state; err is retained for diagnostics only.
func (s State) ApplyFailure(err error) State {
	return State{
		Cycle:   s.Cycle,
		Outcome: OutcomeFailed,
		Err:     err,
	}
}

// AdvanceFade moves the fade-in forward to p. Progress never goes
// backwards and never exceeds 1; a p that would not increase it is
// ignored, and so is any p while loading.
func (s State) AdvanceFade(p float64) State {
	if s.Loading || s.Outcome != OutcomeLoaded {
		return s
	}
	if p > 1 {
		p = 1
	}
	if p <= s.Progress {
		return s
	}
	s.Progress = p
	return s
}

// FadeComplete reports whether the fade has reached full opacity.
func (s State) FadeComplete() bool {
	return s.Progress >= 1
}

// Visible returns the entries to render. While loading there are none,
// whatever Entries holds.
func (s State) Visible() []Entry {
	if s.Loading {
		return nil
	}
	return s.Entries
}

// Mode derives the render mode.
func (s State) Mode() Mode {
	switch {
	case s.Loading:
		return ModeLoading
	case len(s.Entries) == 0:
		return ModeEmpty
	default:
		return ModePopulated
	}
}
