package services

import (
	"context"
	"fmt"
	"strings"

	"daily-moments-backend/internal/models"
)

// TriggerPrefix namespaces this subsystem's reminders so rescheduling
// never disturbs unrelated notifications.
const TriggerPrefix = "window-reminder-"

// reminderMessages are the candidate reminder texts. Selection is
// start hour mod len, so a given window always shows the same message
// across reschedules.
var reminderMessages = []string{
	"Time to share your moment!",
	"A posting window just opened.",
	"Your friends are waiting — capture something.",
	"The window is open. What are you up to?",
}

// TriggerPayload is carried on every installed trigger so the
// delivery handler can route a capture action without re-querying the
// window list.
type TriggerPayload struct {
	Label     string `json:"label"`
	StartHour int    `json:"start_hour"`
	EndHour   int    `json:"end_hour"`
	Action    string `json:"action"`
}

// Trigger is one recurring daily reminder, firing at Hour:00 local time
type Trigger struct {
	ID      string
	Hour    int
	Message string
	Payload TriggerPayload
}

// NotificationPort is the platform surface reminders are installed on
type NotificationPort interface {
	Install(ctx context.Context, trigger Trigger) error
	ListPending(ctx context.Context) ([]string, error)
	Cancel(ctx context.Context, ids []string) error
}

// Scheduler converts the window set into recurring reminders.
// Scheduling is idempotent convergence: the same window set yields
// the same installed trigger set no matter how often it runs.
type Scheduler struct {
	port       NotificationPort
	authorized func() bool
}

// NewScheduler creates a new scheduler. authorized gates every
// scheduling call; when it returns false, Schedule is a no-op.
func NewScheduler(port NotificationPort, authorized func() bool) *Scheduler {
	return &Scheduler{port: port, authorized: authorized}
}

// TriggerID derives the deterministic identifier for a window's
// reminder from its hour range.
func TriggerID(w models.TimeWindow) string {
	return fmt.Sprintf("%s%02d-%02d", TriggerPrefix, w.StartHour, w.EndHour)
}

// ReminderMessage returns the reminder text for a window
func ReminderMessage(w models.TimeWindow) string {
	return reminderMessages[w.StartHour%len(reminderMessages)]
}

// Schedule reconciles the installed reminders with windows and
// returns how many were installed. The desired set is computed first,
// then every pending trigger under the namespace prefix is removed,
// then the desired set is installed. Clearing first guarantees
// convergence when the window set shrinks or a message changes.
func (s *Scheduler) Schedule(ctx context.Context, windows []models.TimeWindow) (int, error) {
	if !s.authorized() {
		return 0, nil
	}

	desired := make([]Trigger, 0, len(windows))
	for _, w := range windows {
		desired = append(desired, Trigger{
			ID:      TriggerID(w),
			Hour:    w.StartHour,
			Message: ReminderMessage(w),
			Payload: TriggerPayload{
				Label:     w.Label,
				StartHour: w.StartHour,
				EndHour:   w.EndHour,
				Action:    "capture",
			},
		})
	}

	if err := s.clearNamespace(ctx); err != nil {
		return 0, err
	}
	for _, trigger := range desired {
		if err := s.port.Install(ctx, trigger); err != nil {
			return 0, fmt.Errorf("failed to install trigger %s: %w", trigger.ID, err)
		}
	}
	return len(desired), nil
}

// CancelAll removes every reminder under the namespace prefix
func (s *Scheduler) CancelAll(ctx context.Context) error {
	return s.clearNamespace(ctx)
}

func (s *Scheduler) clearNamespace(ctx context.Context) error {
	pending, err := s.port.ListPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pending triggers: %w", err)
	}
	var ours []string
	for _, id := range pending {
		if strings.HasPrefix(id, TriggerPrefix) {
			ours = append(ours, id)
		}
	}
	if len(ours) == 0 {
		return nil
	}
	if err := s.port.Cancel(ctx, ours); err != nil {
		return fmt.Errorf("failed to cancel triggers: %w", err)
	}
	return nil
}
