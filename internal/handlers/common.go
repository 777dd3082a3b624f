package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"daily-moments-backend/internal/repository"
	"daily-moments-backend/internal/services"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// statusForError maps domain errors to HTTP status codes. Unclassified
// errors are transient: the client gets a generic retry message.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrNotFoundOrExpired),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrNotOwner),
		errors.Is(err, services.ErrNotFriends),
		errors.Is(err, services.ErrPostingClosed):
		return http.StatusForbidden
	case errors.Is(err, services.ErrSelfAcceptance),
		errors.Is(err, services.ErrAlreadyFriends),
		errors.Is(err, services.ErrAlreadyPosted),
		errors.Is(err, services.ErrConflict),
		errors.Is(err, repository.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondDomainError sends an error response for a service-layer error
func respondDomainError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "temporarily unavailable, try again"
	}
	respondError(w, message, status)
}
