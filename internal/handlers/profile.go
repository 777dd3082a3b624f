package handlers

import (
	"encoding/json"
	"net/http"

	"daily-moments-backend/internal/middleware"
	"daily-moments-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// ProfileHandler handles profile-related HTTP requests
type ProfileHandler struct {
	profileService *services.ProfileService
	blobs          services.BlobStore
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *services.ProfileService, blobs services.BlobStore) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		blobs:          blobs,
	}
}

// CreateProfileRequest is the signup request body
type CreateProfileRequest struct {
	DisplayName string `json:"display_name"`
	AvatarColor string `json:"avatar_color"`
}

// CreateProfileResponse carries the new profile and its session token
type CreateProfileResponse struct {
	Profile interface{} `json:"profile"`
	Token   string      `json:"token"`
}

// CreateProfile handles POST /api/v1/profiles
func (h *ProfileHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.DisplayName == "" {
		respondError(w, "display_name is required", http.StatusBadRequest)
		return
	}
	if req.AvatarColor == "" {
		respondError(w, "avatar_color is required", http.StatusBadRequest)
		return
	}

	profile, token, err := h.profileService.Create(ctx, req.DisplayName, req.AvatarColor)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create profile")
		respondDomainError(w, err)
		return
	}

	log.Info().
		Str("user_id", profile.ID).
		Str("display_name", profile.DisplayName).
		Msg("Profile created")

	respondJSON(w, http.StatusOK, CreateProfileResponse{Profile: profile, Token: token})
}

// GetMe handles GET /api/v1/me
func (h *ProfileHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	profile, err := h.profileService.Get(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to get profile")
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// UpdateProfileRequest is the profile update body
type UpdateProfileRequest struct {
	DisplayName string  `json:"display_name"`
	AvatarColor string  `json:"avatar_color"`
	AvatarPath  *string `json:"avatar_path,omitempty"`
}

// UpdateMe handles PATCH /api/v1/me
func (h *ProfileHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.DisplayName == "" {
		respondError(w, "display_name is required", http.StatusBadRequest)
		return
	}

	profile, err := h.profileService.Update(ctx, userID, req.DisplayName, req.AvatarColor, req.AvatarPath)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to update profile")
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// PushTokenRequest registers or clears a device token
type PushTokenRequest struct {
	PushToken *string `json:"push_token"`
}

// SetPushToken handles PUT /api/v1/me/push-token
func (h *ProfileHandler) SetPushToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req PushTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.profileService.SetPushToken(ctx, userID, req.PushToken); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to set push token")
		respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AvatarUploadRequest asks for a pre-signed avatar upload URL
type AvatarUploadRequest struct {
	ContentType string `json:"content_type"`
}

// UploadResponse carries a pre-signed upload URL and the blob path to
// reference afterwards
type UploadResponse struct {
	UploadURL string `json:"upload_url"`
	Path      string `json:"path"`
	ExpiresIn int    `json:"expires_in"`
}

// UploadAvatar handles POST /api/v1/me/avatar/upload
func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req AvatarUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ContentType == "" {
		req.ContentType = "image/jpeg"
	}

	path := services.BlobPath(userID, "avatars", "jpg")
	uploadURL, err := h.blobs.PresignUpload(ctx, path, req.ContentType)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to presign avatar upload")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, UploadResponse{
		UploadURL: uploadURL,
		Path:      path,
		ExpiresIn: 300,
	})
}
