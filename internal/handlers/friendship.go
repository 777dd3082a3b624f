package handlers

import (
	"encoding/json"
	"net/http"

	"daily-moments-backend/internal/middleware"
	"daily-moments-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// FriendshipHandler handles friendship-related HTTP requests
type FriendshipHandler struct {
	friendshipService *services.FriendshipService
	hub               *services.Hub
}

// NewFriendshipHandler creates a new friendship handler
func NewFriendshipHandler(friendshipService *services.FriendshipService, hub *services.Hub) *FriendshipHandler {
	return &FriendshipHandler{
		friendshipService: friendshipService,
		hub:               hub,
	}
}

// ListFriends handles GET /api/v1/friends
func (h *FriendshipHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	friends, err := h.friendshipService.Friends(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list friends")
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"friends": friends})
}

// ListPending handles GET /api/v1/friends/requests
func (h *FriendshipHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	requests, err := h.friendshipService.PendingRequests(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list pending requests")
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"requests": requests})
}

// FriendRequestBody carries the target of a direct friend request
type FriendRequestBody struct {
	FriendID string `json:"friend_id"`
}

// SendRequest handles POST /api/v1/friends/requests
func (h *FriendshipHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req FriendRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.FriendID == "" {
		respondError(w, "friend_id is required", http.StatusBadRequest)
		return
	}

	friendship, err := h.friendshipService.SendRequest(ctx, userID, req.FriendID)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("friend_id", req.FriendID).
			Msg("Failed to send friend request")
		respondDomainError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("friend_id", req.FriendID).
		Msg("Friend request sent")

	respondJSON(w, http.StatusOK, friendship)
}

// AcceptRequest handles POST /api/v1/friends/requests/{user_id}/accept
func (h *FriendshipHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	requesterID := chi.URLParam(r, "user_id")

	if requesterID == "" {
		respondError(w, "user_id is required", http.StatusBadRequest)
		return
	}

	friendship, err := h.friendshipService.AcceptRequest(ctx, userID, requesterID)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("requester_id", requesterID).
			Msg("Failed to accept friend request")
		respondDomainError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("requester_id", requesterID).
		Msg("Friend request accepted")

	if h.hub.IsOnline(requesterID) {
		if err := h.hub.SendToUser(requesterID, services.Event{
			Type: services.EventFriendAdded,
			Data: map[string]interface{}{"friend_id": userID},
		}); err != nil {
			log.Error().Err(err).Str("user_id", requesterID).Msg("Failed to notify requester")
		}
	}

	respondJSON(w, http.StatusOK, friendship)
}

// RemoveFriend handles DELETE /api/v1/friends/{friend_id}
func (h *FriendshipHandler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	friendID := chi.URLParam(r, "friend_id")

	if friendID == "" {
		respondError(w, "friend_id is required", http.StatusBadRequest)
		return
	}

	if err := h.friendshipService.Remove(ctx, userID, friendID); err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("friend_id", friendID).
			Msg("Failed to remove friend")
		respondDomainError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("friend_id", friendID).
		Msg("Friendship removed")

	if h.hub.IsOnline(friendID) {
		if err := h.hub.SendToUser(friendID, services.Event{
			Type: services.EventFriendshipRemoved,
			Data: map[string]interface{}{"friend_id": userID},
		}); err != nil {
			log.Error().Err(err).Str("user_id", friendID).Msg("Failed to notify removed friend")
		}
	}

	w.WriteHeader(http.StatusNoContent)
}
