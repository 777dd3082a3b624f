package services

import (
	"context"
	"fmt"

	"daily-moments-backend/internal/models"
	"daily-moments-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const jwtExpDays = 365

// ProfileStore is the persistence surface for profiles
type ProfileStore interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	Update(ctx context.Context, id, displayName, avatarColor string, avatarPath *string) error
	UpdatePushToken(ctx context.Context, id string, pushToken *string) error
	ListPushTokens(ctx context.Context) ([]string, error)
}

// ProfileService handles identity and session logic
type ProfileService struct {
	profiles  ProfileStore
	jwtSecret string
	clock     Clock
}

// NewProfileService creates a new profile service
func NewProfileService(profiles ProfileStore, jwtSecret string, clock Clock) *ProfileService {
	return &ProfileService{
		profiles:  profiles,
		jwtSecret: jwtSecret,
		clock:     clock,
	}
}

// GenerateJWT generates a session token for a user
func (s *ProfileService) GenerateJWT(userID string) (string, error) {
	now := s.clock()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     now.AddDate(0, 0, jwtExpDays).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateJWT validates a session token and returns the user ID
func (s *ProfileService) ValidateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}
	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", fmt.Errorf("user_id not found in token")
	}
	return userID, nil
}

// Create creates a new profile and returns it with a session token
func (s *ProfileService) Create(ctx context.Context, displayName, avatarColor string) (*models.Profile, string, error) {
	profile := &models.Profile{
		ID:          uuid.New().String(),
		DisplayName: displayName,
		AvatarColor: avatarColor,
		CreatedAt:   s.clock(),
	}

	token, err := s.GenerateJWT(profile.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, "", fmt.Errorf("failed to create profile: %w", err)
	}
	return profile, token, nil
}

// Get retrieves a profile by id
func (s *ProfileService) Get(ctx context.Context, id string) (*models.Profile, error) {
	return s.profiles.GetByID(ctx, id)
}

// Update updates the mutable fields of the caller's own profile
func (s *ProfileService) Update(ctx context.Context, id, displayName, avatarColor string, avatarPath *string) (*models.Profile, error) {
	if err := s.profiles.Update(ctx, id, displayName, avatarColor, avatarPath); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.profiles.GetByID(ctx, id)
}

// SetPushToken registers or clears a device token
func (s *ProfileService) SetPushToken(ctx context.Context, id string, pushToken *string) error {
	return s.profiles.UpdatePushToken(ctx, id, pushToken)
}

var _ ProfileStore = (*repository.ProfileRepository)(nil)
var _ TokenLister = (*repository.ProfileRepository)(nil)
