package timeline

import (
	"errors"
	"testing"
	"time"
)

func sampleEntries() []Entry {
	return []Entry{
		{CreatedAt: "2024-01-01T10:00:00Z", Title: "Order Placed", Description: "Your order was placed"},
		{CreatedAt: "2024-01-01T10:05:00Z", Title: "Payment Authorized", Description: "Card ending 4242"},
		{CreatedAt: "2024-01-01T11:00:00Z", Title: "Payment Captured", Description: "Funds captured"},
	}
}

// TestMountIsLoading verifies a new screen starts in loading mode with
// nothing visible.
func TestMountIsLoading(t *testing.T) {
	s := Mount()
	if s.Mode() != ModeLoading {
		t.Fatalf("expected loading mode, got %s", s.Mode())
	}
	if len(s.Visible()) != 0 {
		t.Errorf("expected no visible entries while loading")
	}
}

// TestBeginLoadResets verifies a new cycle clears entries and the fade.
func TestBeginLoadResets(t *testing.T) {
	s, _ := Mount().BeginLoad().ApplyResponse(&Response{Success: true, Timeline: sampleEntries()})
	s = s.AdvanceFade(0.5)

	next := s.BeginLoad()
	if !next.Loading {
		t.Errorf("expected loading=true")
	}
	if len(next.Entries) != 0 {
		t.Errorf("expected entries cleared, got %d", len(next.Entries))
	}
	if next.Progress != 0 {
		t.Errorf("expected progress reset, got %.2f", next.Progress)
	}
	if next.Cycle != s.Cycle+1 {
		t.Errorf("expected cycle %d, got %d", s.Cycle+1, next.Cycle)
	}
}

// TestApplyResponseEmptyVariants covers success=false, missing timeline,
// empty timeline and a nil response.
func TestApplyResponseEmptyVariants(t *testing.T) {
	cases := map[string]*Response{
		"nil":           nil,
		"success false": {Success: false, Timeline: sampleEntries()},
		"missing":       {Success: true},
		"empty":         {Success: true, Timeline: []Entry{}},
	}

	for name, resp := range cases {
		s, fade := Mount().BeginLoad().ApplyResponse(resp)
		if fade {
			t.Errorf("%s: fade should not start", name)
		}
		if s.Loading {
			t.Errorf("%s: expected loading=false", name)
		}
		if len(s.Entries) != 0 {
			t.Errorf("%s: expected no entries, got %d", name, len(s.Entries))
		}
		if s.Outcome != OutcomeEmpty {
			t.Errorf("%s: expected outcome empty, got %s", name, s.Outcome)
		}
		if s.Mode() != ModeEmpty {
			t.Errorf("%s: expected empty mode, got %s", name, s.Mode())
		}
	}
}

// TestApplyResponsePreservesOrder verifies entries keep server order and
// are copied rather than aliased.
func TestApplyResponsePreservesOrder(t *testing.T) {
	in := sampleEntries()
	s, fade := Mount().BeginLoad().ApplyResponse(&Response{Success: true, Timeline: in})
	if !fade {
		t.Fatalf("expected fade to start")
	}
	if s.Outcome != OutcomeLoaded || s.Mode() != ModePopulated {
		t.Fatalf("expected loaded/populated, got %s/%s", s.Outcome, s.Mode())
	}
	if len(s.Entries) != len(in) {
		t.Fatalf("expected %d entries, got %d", len(in), len(s.Entries))
	}
	for i := range in {
		if s.Entries[i] != in[i] {
			t.Errorf("entry %d: expected %+v, got %+v", i, in[i], s.Entries[i])
		}
	}

	in[0].Title = "mutated"
	if s.Entries[0].Title == "mutated" {
		t.Errorf("state must not alias the response slice")
	}
}

// TestApplyFailure verifies the failed outcome renders as empty and keeps
// the error.
func TestApplyFailure(t *testing.T) {
	boom := errors.New("boom")
	s := Mount().BeginLoad().ApplyFailure(boom)
	if s.Loading {
		t.Errorf("expected loading=false")
	}
	if s.Mode() != ModeEmpty {
		t.Errorf("expected empty mode, got %s", s.Mode())
	}
	if s.Outcome != OutcomeFailed {
		t.Errorf("expected failed outcome, got %s", s.Outcome)
	}
	if !errors.Is(s.Err, boom) {
		t.Errorf("expected error retained, got %v", s.Err)
	}
	if s.Outcome.String() != "empty-due-to-error" {
		t.Errorf("unexpected outcome name %q", s.Outcome.String())
	}
}

// TestAdvanceFadeMonotonic verifies progress never decreases and is
// capped at 1.
func TestAdvanceFadeMonotonic(t *testing.T) {
	s, _ := Mount().BeginLoad().ApplyResponse(&Response{Success: true, Timeline: sampleEntries()})

	s = s.AdvanceFade(0.4)
	if s.Progress != 0.4 {
		t.Fatalf("expected 0.4, got %.2f", s.Progress)
	}
	s = s.AdvanceFade(0.2)
	if s.Progress != 0.4 {
		t.Errorf("progress went backwards: %.2f", s.Progress)
	}
	s = s.AdvanceFade(7)
	if s.Progress != 1 || !s.FadeComplete() {
		t.Errorf("expected progress capped at 1, got %.2f", s.Progress)
	}
}

// TestAdvanceFadeIgnoredWithoutEntries verifies the fade never runs after
// an empty or failed load.
func TestAdvanceFadeIgnoredWithoutEntries(t *testing.T) {
	empty, _ := Mount().BeginLoad().ApplyResponse(&Response{Success: true})
	if got := empty.AdvanceFade(0.5).Progress; got != 0 {
		t.Errorf("empty: expected progress 0, got %.2f", got)
	}

	failed := Mount().BeginLoad().ApplyFailure(errors.New("x"))
	if got := failed.AdvanceFade(0.5).Progress; got != 0 {
		t.Errorf("failed: expected progress 0, got %.2f", got)
	}

	if got := Mount().BeginLoad().AdvanceFade(0.5).Progress; got != 0 {
		t.Errorf("loading: expected progress 0, got %.2f", got)
	}
}

func TestFadeProgress(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f := NewFade(start, 0)
	if f.Duration != DefaultFadeDuration {
		t.Fatalf("expected default duration, got %s", f.Duration)
	}

	prev := -1.0
	for ms := 0; ms <= 1000; ms += 50 {
		p := f.ProgressAt(start.Add(time.Duration(ms) * time.Millisecond))
		if p <= prev {
			t.Fatalf("progress not strictly increasing at %dms: %.3f <= %.3f", ms, p, prev)
		}
		prev = p
	}
	if prev != 1 {
		t.Errorf("expected progress 1 at the end, got %.3f", prev)
	}
	if !f.Done(start.Add(time.Second)) {
		t.Errorf("expected fade done after its duration")
	}
	if f.ProgressAt(start.Add(-time.Second)) != 0 {
		t.Errorf("expected 0 before start")
	}
}
