package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, h http.HandlerFunc, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL + "/v1", Token: token, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c
}

func TestFetchTimeline(t *testing.T) {
	var gotPath, gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"timeline":[
			{"createdAt":"2024-01-01T10:00:00Z","title":"Order Placed","description":"Your order was placed"},
			{"createdAt":"2024-01-01T10:05:00Z","title":"Payment Captured","description":"Done"}
		]}`))
	}, "secret")

	resp, err := c.FetchTimeline(context.Background())
	if err != nil {
		t.Fatalf("FetchTimeline failed: %v", err)
	}
	if gotPath != "/v1/clients/get-timeline" {
		t.Errorf("expected path /v1/clients/get-timeline, got %s", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("expected bearer token, got %q", gotAuth)
	}
	if !resp.Success || len(resp.Timeline) != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Timeline[0].Title != "Order Placed" || resp.Timeline[1].Title != "Payment Captured" {
		t.Errorf("order not preserved: %+v", resp.Timeline)
	}
}

// TestFetchTimelineMissingFields verifies absent fields decode to the
// zero values the screen treats as empty.
func TestFetchTimelineMissingFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}, "")

	resp, err := c.FetchTimeline(context.Background())
	if err != nil {
		t.Fatalf("FetchTimeline failed: %v", err)
	}
	if resp.HasEntries() {
		t.Errorf("expected no entries, got %+v", resp)
	}
}

func TestFetchTimelineStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("expected no auth header without a token")
		}
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}, "")

	_, err := c.FetchTimeline(context.Background())
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if se.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", se.Code)
	}
	if se.Body != "unauthorized" {
		t.Errorf("expected body captured, got %q", se.Body)
	}
}

func TestFetchTimelineDecodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}, "")

	if _, err := c.FetchTimeline(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestFetchTimelineCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.FetchTimeline(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewClientValidation(t *testing.T) {
	for _, raw := range []string{"", "ftp://example.com", "::bad"} {
		if _, err := NewClient(Config{BaseURL: raw}); err == nil {
			t.Errorf("NewClient(%q): expected error", raw)
		}
	}

	c, err := NewClient(Config{BaseURL: "https://api.example.com/v2"})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if c.BaseURL() != "https://api.example.com/v2/" {
		t.Errorf("expected trailing slash added, got %s", c.BaseURL())
	}
}
