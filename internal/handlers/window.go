package handlers

import (
	"net/http"

	"daily-moments-backend/internal/middleware"
	"daily-moments-backend/internal/models"
	"daily-moments-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// WindowHandler exposes the posting windows and gate state
type WindowHandler struct {
	windowService *services.WindowService
	momentService *services.MomentService
}

// NewWindowHandler creates a new window handler
func NewWindowHandler(windowService *services.WindowService, momentService *services.MomentService) *WindowHandler {
	return &WindowHandler{
		windowService: windowService,
		momentService: momentService,
	}
}

// WindowsResponse drives the gating UI
type WindowsResponse struct {
	Windows []models.TimeWindow `json:"windows"`
	Open    []models.TimeWindow `json:"open"`
	Next    *models.TimeWindow  `json:"next,omitempty"`
	CanPost bool                `json:"can_post"`
}

// GetWindows handles GET /api/v1/windows
func (h *WindowHandler) GetWindows(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	canPost, err := h.momentService.CanPostNow(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to compute posting gate")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, WindowsResponse{
		Windows: h.windowService.Windows(),
		Open:    h.windowService.Open(),
		Next:    h.windowService.Next(),
		CanPost: canPost,
	})
}
