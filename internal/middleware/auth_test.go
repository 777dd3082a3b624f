package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"daily-moments-backend/internal/services"
)

func newProfileService() *services.ProfileService {
	return services.NewProfileService(nil, "test-secret", time.Now)
}

func TestAuthMiddlewarePassesUserIDThrough(t *testing.T) {
	svc := newProfileService()
	token, err := svc.GenerateJWT("alice")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	var gotUserID string
	handler := AuthMiddleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = GetUserID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotUserID != "alice" {
		t.Fatalf("user id in context = %q, want alice", gotUserID)
	}
}

func TestAuthMiddlewareRejectsMissingAndMalformedHeaders(t *testing.T) {
	handler := AuthMiddleware(newProfileService())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without a valid token")
	}))

	for _, header := range []string{"", "Bearer", "Basic abc", "Bearer not-a-jwt"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, rec.Code)
		}
	}
}

func TestValidateWebSocketToken(t *testing.T) {
	svc := newProfileService()

	if _, err := ValidateWebSocketToken("", svc); !errors.Is(err, services.ErrNotAuthenticated) {
		t.Fatalf("empty token = %v, want ErrNotAuthenticated", err)
	}
	if _, err := ValidateWebSocketToken("garbage", svc); !errors.Is(err, services.ErrNotAuthenticated) {
		t.Fatalf("garbage token = %v, want ErrNotAuthenticated", err)
	}

	token, err := svc.GenerateJWT("alice")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	userID, err := ValidateWebSocketToken(token, svc)
	if err != nil {
		t.Fatalf("valid token: %v", err)
	}
	if userID != "alice" {
		t.Fatalf("user id = %q, want alice", userID)
	}
}
