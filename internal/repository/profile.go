package repository

import (
	"context"
	"fmt"

	"daily-moments-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProfileRepository handles database operations for profiles
type ProfileRepository struct {
	db *pgxpool.Pool
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create creates a new profile
func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (id, display_name, avatar_color, avatar_path, push_token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		profile.ID, profile.DisplayName, profile.AvatarColor,
		profile.AvatarPath, profile.PushToken, profile.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// GetByID retrieves a profile by ID
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	query := `
		SELECT id, display_name, avatar_color, avatar_path, push_token, created_at
		FROM profiles
		WHERE id = $1
	`
	var profile models.Profile
	err := r.db.QueryRow(ctx, query, id).Scan(
		&profile.ID, &profile.DisplayName, &profile.AvatarColor,
		&profile.AvatarPath, &profile.PushToken, &profile.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("profile: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

// Update updates the mutable fields of a profile
func (r *ProfileRepository) Update(ctx context.Context, id, displayName, avatarColor string, avatarPath *string) error {
	query := `
		UPDATE profiles
		SET display_name = $1, avatar_color = $2, avatar_path = $3
		WHERE id = $4
	`
	result, err := r.db.Exec(ctx, query, displayName, avatarColor, avatarPath, id)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("profile: %w", ErrNotFound)
	}
	return nil
}

// UpdatePushToken updates the push token for a profile
func (r *ProfileRepository) UpdatePushToken(ctx context.Context, id string, pushToken *string) error {
	query := `UPDATE profiles SET push_token = $1 WHERE id = $2`
	_, err := r.db.Exec(ctx, query, pushToken, id)
	if err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	return nil
}

// ListPushTokens returns every registered device token
func (r *ProfileRepository) ListPushTokens(ctx context.Context) ([]string, error) {
	query := `SELECT push_token FROM profiles WHERE push_token IS NOT NULL`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list push tokens: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("failed to scan push token: %w", err)
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating push tokens: %w", err)
	}
	return tokens, nil
}
