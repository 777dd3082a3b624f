package services

import (
	"time"

	"daily-moments-backend/internal/models"
)

// Clock supplies "now" in the device-local timezone. Injected so
// window gating is testable without real time passing.
type Clock func() time.Time

// OpenWindows returns the windows open at now. A window is open when
// start <= hour(now) < end, so a window with start == end is never
// open. Windows do not wrap across midnight.
func OpenWindows(now time.Time, windows []models.TimeWindow) []models.TimeWindow {
	hour := now.Hour()
	var open []models.TimeWindow
	for _, w := range windows {
		if w.StartHour <= hour && hour < w.EndHour {
			open = append(open, w)
		}
	}
	return open
}

// NextWindow returns the window with the smallest start strictly
// greater than the current hour. If none remain today, the earliest
// window is returned, interpreted as tomorrow's. Nil for an empty set.
func NextWindow(now time.Time, windows []models.TimeWindow) *models.TimeWindow {
	if len(windows) == 0 {
		return nil
	}

	hour := now.Hour()
	var next, earliest *models.TimeWindow
	for i := range windows {
		w := &windows[i]
		if earliest == nil || w.StartHour < earliest.StartHour {
			earliest = w
		}
		if w.StartHour > hour && (next == nil || w.StartHour < next.StartHour) {
			next = w
		}
	}
	if next == nil {
		next = earliest
	}
	out := *next
	return &out
}

// WindowService exposes the session's configured window set to
// handlers alongside an injected clock.
type WindowService struct {
	windows []models.TimeWindow
	clock   Clock
}

// NewWindowService creates a new window service. Windows are
// configuration data loaded once per session.
func NewWindowService(windows []models.TimeWindow, clock Clock) *WindowService {
	return &WindowService{windows: windows, clock: clock}
}

// Windows returns the configured window set
func (s *WindowService) Windows() []models.TimeWindow {
	return s.windows
}

// Open returns the currently open windows
func (s *WindowService) Open() []models.TimeWindow {
	return OpenWindows(s.clock(), s.windows)
}

// Next returns the next window to open, nil when none are configured
func (s *WindowService) Next() *models.TimeWindow {
	return NextWindow(s.clock(), s.windows)
}
