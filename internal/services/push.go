package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"daily-moments-backend/internal/config"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

// TokenLister supplies the registered device tokens reminders go to
type TokenLister interface {
	ListPushTokens(ctx context.Context) ([]string, error)
}

// APNSNotifier implements NotificationPort on top of Apple push. It
// keeps the installed trigger registry in memory and fires each
// trigger's reminder at its hour via APNs, plus a websocket event for
// connected clients.
type APNSNotifier struct {
	mu       sync.RWMutex
	triggers map[string]Trigger

	client   *apns2.Client
	topic    string
	profiles TokenLister
	hub      *Hub
	clock    Clock
	tick     time.Duration
}

// NewAPNSNotifier creates an APNs-backed notifier using token auth.
// Without a key path the notifier still runs, firing websocket events
// only.
func NewAPNSNotifier(cfg config.APNSConfig, profiles TokenLister, hub *Hub, clock Clock) (*APNSNotifier, error) {
	var client *apns2.Client
	if cfg.KeyPath != "" {
		authKey, err := token.AuthKeyFromFile(cfg.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load APNs auth key: %w", err)
		}

		client = apns2.NewTokenClient(&token.Token{
			AuthKey: authKey,
			KeyID:   cfg.KeyID,
			TeamID:  cfg.TeamID,
		})
		if cfg.Production {
			client = client.Production()
		} else {
			client = client.Development()
		}
	}

	return &APNSNotifier{
		triggers: make(map[string]Trigger),
		client:   client,
		topic:    cfg.Topic,
		profiles: profiles,
		hub:      hub,
		clock:    clock,
		tick:     time.Minute,
	}, nil
}

// Install registers a recurring daily trigger
func (n *APNSNotifier) Install(ctx context.Context, trigger Trigger) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.triggers[trigger.ID] = trigger
	return nil
}

// ListPending returns the ids of every installed trigger
func (n *APNSNotifier) ListPending(ctx context.Context) ([]string, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	ids := make([]string, 0, len(n.triggers))
	for id := range n.triggers {
		ids = append(ids, id)
	}
	return ids, nil
}

// Cancel removes the given triggers
func (n *APNSNotifier) Cancel(ctx context.Context, ids []string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, id := range ids {
		delete(n.triggers, id)
	}
	return nil
}

// Run fires due triggers until ctx is cancelled. A trigger is due
// when the local hour ticks over to its hour. The hour underway at
// startup never fires: its reminder was either already delivered
// before the restart or is stale.
func (n *APNSNotifier) Run(ctx context.Context) {
	ticker := time.NewTicker(n.tick)
	defer ticker.Stop()

	lastHour := n.clock().Hour()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			hour := n.clock().Hour()
			if hour == lastHour {
				continue
			}
			lastHour = hour
			n.fireHour(ctx, hour)
		}
	}
}

func (n *APNSNotifier) fireHour(ctx context.Context, hour int) {
	n.mu.RLock()
	var due []Trigger
	for _, trigger := range n.triggers {
		if trigger.Hour == hour {
			due = append(due, trigger)
		}
	}
	n.mu.RUnlock()

	for _, trigger := range due {
		n.fire(ctx, trigger)
	}
}

func (n *APNSNotifier) fire(ctx context.Context, trigger Trigger) {
	if n.hub != nil {
		n.hub.Broadcast(Event{Type: EventWindowOpen, Data: trigger.Payload})
	}

	if n.client == nil {
		return
	}

	tokens, err := n.profiles.ListPushTokens(ctx)
	if err != nil {
		log.Error().Err(err).Str("trigger_id", trigger.ID).Msg("Failed to list push tokens")
		return
	}

	body := payload.NewPayload().
		Alert(trigger.Message).
		Sound("default").
		Custom("label", trigger.Payload.Label).
		Custom("start_hour", trigger.Payload.StartHour).
		Custom("end_hour", trigger.Payload.EndHour).
		Custom("action", trigger.Payload.Action)

	for _, deviceToken := range tokens {
		notification := &apns2.Notification{
			DeviceToken: deviceToken,
			Topic:       n.topic,
			Payload:     body,
		}
		resp, err := n.client.PushWithContext(ctx, notification)
		if err != nil {
			log.Error().Err(err).Str("trigger_id", trigger.ID).Msg("Failed to push reminder")
			continue
		}
		if !resp.Sent() {
			log.Warn().
				Str("trigger_id", trigger.ID).
				Int("status", resp.StatusCode).
				Str("reason", resp.Reason).
				Msg("Reminder rejected by APNs")
		}
	}

	log.Info().
		Str("trigger_id", trigger.ID).
		Int("devices", len(tokens)).
		Msg("Window reminder fired")
}
