package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/Mr-Dark-debug/paytrail/internal/database"
)

// demoSteps is the payment lifecycle loaded by Seed, oldest first.
var demoSteps = []struct {
	after       time.Duration
	title       string
	description string
}{
	{0, "Order Placed", "Your order was placed"},
	{2 * time.Minute, "Payment Initiated", "Payment request sent to your bank"},
	{3 * time.Minute, "Payment Authorized", "Your bank approved the payment"},
	{45 * time.Minute, "Payment Captured", "Funds were captured from your account"},
	{26 * time.Hour, "Settlement Completed", "The merchant received the funds"},
}

// Seed creates (or refreshes) a client with the given token and, if its
// timeline is empty, loads a demo payment lifecycle ending at now.
func Seed(store database.Store, name, token string, now time.Time) (*database.Client, int, error) {
	existing, err := store.ClientByToken(token)
	switch {
	case err == nil:
		existing.Name = name
	case errors.Is(err, database.ErrNotFound):
		existing = &database.Client{Name: name, APIToken: token}
	default:
		return nil, 0, fmt.Errorf("looking up seed client: %w", err)
	}
	if err := store.UpsertClient(existing); err != nil {
		return nil, 0, fmt.Errorf("seeding client: %w", err)
	}

	stats, err := store.GetTimelineStats(existing.ClientID)
	if err != nil {
		return nil, 0, fmt.Errorf("checking seed timeline: %w", err)
	}
	if stats.EventCount > 0 {
		return existing, 0, nil
	}

	last := demoSteps[len(demoSteps)-1].after
	start := now.Add(-last)
	events := make([]*database.TimelineEvent, 0, len(demoSteps))
	for _, step := range demoSteps {
		events = append(events, &database.TimelineEvent{
			ClientID:    existing.ClientID,
			CreatedAt:   start.Add(step.after).UnixNano(),
			Title:       step.title,
			Description: step.description,
		})
	}
	if err := store.BatchInsertEvents(events); err != nil {
		return nil, 0, fmt.Errorf("seeding timeline: %w", err)
	}
	return existing, len(events), nil
}
