package handlers

import (
	"encoding/json"
	"net/http"

	"daily-moments-backend/internal/middleware"
	"daily-moments-backend/internal/models"
	"daily-moments-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// MomentHandler handles moment-related HTTP requests
type MomentHandler struct {
	momentService     *services.MomentService
	friendshipService *services.FriendshipService
	blobs             services.BlobStore
	hub               *services.Hub
}

// NewMomentHandler creates a new moment handler
func NewMomentHandler(momentService *services.MomentService, friendshipService *services.FriendshipService, blobs services.BlobStore, hub *services.Hub) *MomentHandler {
	return &MomentHandler{
		momentService:     momentService,
		friendshipService: friendshipService,
		blobs:             blobs,
		hub:               hub,
	}
}

// MomentUploadRequest asks for a pre-signed moment image upload URL
type MomentUploadRequest struct {
	ContentType string `json:"content_type"`
}

// Upload handles POST /api/v1/moments/upload
func (h *MomentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req MomentUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ContentType == "" {
		req.ContentType = "image/jpeg"
	}

	path := services.BlobPath(userID, "moments", "jpg")
	uploadURL, err := h.blobs.PresignUpload(ctx, path, req.ContentType)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to presign moment upload")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, UploadResponse{
		UploadURL: uploadURL,
		Path:      path,
		ExpiresIn: 300,
	})
}

// CreateMomentRequest is the moment creation body
type CreateMomentRequest struct {
	ImagePath   *string `json:"image_path,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Create handles POST /api/v1/moments
func (h *MomentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req CreateMomentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	moment, err := h.momentService.Create(ctx, userID, req.ImagePath, req.Description)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to create moment")
		respondDomainError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("moment_id", moment.ID).
		Msg("Moment created")

	// Friends online right now learn about the new moment immediately.
	friendIDs, err := h.friendshipService.FriendIDs(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list friends for notification")
	} else {
		h.hub.SendToUsers(friendIDs, services.Event{
			Type: services.EventMomentCreated,
			Data: map[string]interface{}{"moment_id": moment.ID, "author_id": userID},
		})
	}

	respondJSON(w, http.StatusOK, moment)
}

// Feed handles GET /api/v1/moments/feed
func (h *MomentHandler) Feed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	moments, err := h.momentService.Feed(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to load feed")
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"moments": moments,
		"total":   len(moments),
	})
}

// Delete handles DELETE /api/v1/moments/{moment_id}
func (h *MomentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	momentID := chi.URLParam(r, "moment_id")

	if momentID == "" {
		respondError(w, "moment_id is required", http.StatusBadRequest)
		return
	}

	if err := h.momentService.Delete(ctx, userID, momentID); err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("moment_id", momentID).
			Msg("Failed to delete moment")
		respondDomainError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("moment_id", momentID).
		Msg("Moment deleted")

	w.WriteHeader(http.StatusNoContent)
}

// CreateReactionRequest is the reaction creation body
type CreateReactionRequest struct {
	Kind       models.ReactionKind `json:"kind"`
	Content    *string             `json:"content,omitempty"`
	DurationMS *int                `json:"duration_ms,omitempty"`
	AudioPath  *string             `json:"audio_path,omitempty"`
}

// AddReaction handles POST /api/v1/moments/{moment_id}/reactions
func (h *MomentHandler) AddReaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	momentID := chi.URLParam(r, "moment_id")

	if momentID == "" {
		respondError(w, "moment_id is required", http.StatusBadRequest)
		return
	}

	var req CreateReactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	reaction, err := h.momentService.AddReaction(ctx, userID, momentID, req.Kind, req.Content, req.DurationMS, req.AudioPath)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("moment_id", momentID).
			Msg("Failed to add reaction")
		respondDomainError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("moment_id", momentID).
		Str("reaction_id", reaction.ID).
		Msg("Reaction added")

	respondJSON(w, http.StatusOK, reaction)
}

// VoiceUploadRequest asks for a pre-signed voice reaction upload URL
type VoiceUploadRequest struct {
	ContentType string `json:"content_type"`
}

// UploadVoice handles POST /api/v1/moments/reactions/upload
func (h *MomentHandler) UploadVoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req VoiceUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ContentType == "" {
		req.ContentType = "audio/m4a"
	}

	path := services.BlobPath(userID, "reactions", "m4a")
	uploadURL, err := h.blobs.PresignUpload(ctx, path, req.ContentType)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to presign voice upload")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, UploadResponse{
		UploadURL: uploadURL,
		Path:      path,
		ExpiresIn: 300,
	})
}
