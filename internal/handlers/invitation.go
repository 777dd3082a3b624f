package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"daily-moments-backend/internal/middleware"
	"daily-moments-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// InvitationHandler handles invitation-related HTTP requests
type InvitationHandler struct {
	invitationService *services.InvitationService
	hub               *services.Hub
}

// NewInvitationHandler creates a new invitation handler
func NewInvitationHandler(invitationService *services.InvitationService, hub *services.Hub) *InvitationHandler {
	return &InvitationHandler{
		invitationService: invitationService,
		hub:               hub,
	}
}

// InvitationResponse carries a shareable code
type InvitationResponse struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// GetOrCreate handles POST /api/v1/invitations
func (h *InvitationHandler) GetOrCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	invitation, err := h.invitationService.GetOrCreate(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to get or create invitation")
		respondDomainError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("code", invitation.Code).
		Time("expires_at", invitation.ExpiresAt).
		Msg("Invitation issued")

	respondJSON(w, http.StatusOK, InvitationResponse{
		Code:      invitation.Code,
		ExpiresAt: invitation.ExpiresAt,
	})
}

// AcceptInvitationRequest carries the code being redeemed
type AcceptInvitationRequest struct {
	Code string `json:"code"`
}

// Accept handles POST /api/v1/invitations/accept
func (h *InvitationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req AcceptInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Code) != 8 {
		respondError(w, "code must be 8 characters", http.StatusBadRequest)
		return
	}

	creator, err := h.invitationService.Accept(ctx, req.Code, userID)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Msg("Failed to accept invitation")
		respondDomainError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("creator_id", creator.ID).
		Msg("Invitation accepted")

	if h.hub.IsOnline(creator.ID) {
		if err := h.hub.SendToUser(creator.ID, services.Event{
			Type: services.EventFriendAdded,
			Data: map[string]interface{}{"friend_id": userID},
		}); err != nil {
			log.Error().Err(err).Str("user_id", creator.ID).Msg("Failed to notify creator about new friend")
		}
	}

	respondJSON(w, http.StatusOK, creator)
}
