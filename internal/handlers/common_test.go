package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"daily-moments-backend/internal/repository"
	"daily-moments-backend/internal/services"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{services.ErrNotAuthenticated, http.StatusUnauthorized},
		{services.ErrNotFoundOrExpired, http.StatusNotFound},
		{services.ErrSelfAcceptance, http.StatusConflict},
		{services.ErrAlreadyFriends, http.StatusConflict},
		{services.ErrAlreadyPosted, http.StatusConflict},
		{services.ErrPostingClosed, http.StatusForbidden},
		{services.ErrNotOwner, http.StatusForbidden},
		{services.ErrNotFriends, http.StatusForbidden},
		{repository.ErrNotFound, http.StatusNotFound},
		{repository.ErrConflict, http.StatusConflict},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusForError(tt.err); got != tt.want {
			t.Errorf("statusForError(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestStatusForErrorSeesThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("failed to redeem invitation: %w", services.ErrAlreadyFriends)
	if got := statusForError(wrapped); got != http.StatusConflict {
		t.Fatalf("statusForError(wrapped) = %d, want %d", got, http.StatusConflict)
	}
}
