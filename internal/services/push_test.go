package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"daily-moments-backend/internal/config"
	"daily-moments-backend/internal/models"
)

type fakeTokenLister struct{}

func (fakeTokenLister) ListPushTokens(ctx context.Context) ([]string, error) {
	return nil, nil
}

// stepClock is a settable clock safe for use across goroutines.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func TestRunFiresOnHourRolloverNotOnStartup(t *testing.T) {
	hub := NewHub()
	events := dialHubConn(t, hub, "alice")

	clock := &stepClock{now: at(12, 30)}
	notifier, err := NewAPNSNotifier(config.APNSConfig{}, fakeTokenLister{}, hub, clock.Now)
	if err != nil {
		t.Fatalf("NewAPNSNotifier: %v", err)
	}
	notifier.tick = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	midi := models.TimeWindow{Label: "Midi", StartHour: 12, EndHour: 13}
	soir := models.TimeWindow{Label: "Soir", StartHour: 19, EndHour: 22}
	for _, w := range []models.TimeWindow{midi, soir} {
		trigger := Trigger{
			ID:      TriggerID(w),
			Hour:    w.StartHour,
			Message: ReminderMessage(w),
			Payload: TriggerPayload{Label: w.Label, StartHour: w.StartHour, EndHour: w.EndHour, Action: "capture"},
		}
		if err := notifier.Install(ctx, trigger); err != nil {
			t.Fatalf("Install: %v", err)
		}
	}

	go notifier.Run(ctx)

	// Restarting at 12:30 must not re-fire the 12:00 reminder.
	select {
	case event := <-events:
		t.Fatalf("hour already underway at startup fired %+v", event)
	case <-time.After(100 * time.Millisecond):
	}

	clock.Set(at(19, 0))
	select {
	case event := <-events:
		if event.Type != EventWindowOpen {
			t.Fatalf("rollover fired %q, want %q", event.Type, EventWindowOpen)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("hour rollover never fired the due trigger")
	}
}
