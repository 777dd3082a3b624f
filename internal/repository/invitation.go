package repository

import (
	"context"
	"fmt"
	"time"

	"daily-moments-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InvitationRepository handles database operations for invitations
type InvitationRepository struct {
	db *pgxpool.Pool
}

// NewInvitationRepository creates a new invitation repository
func NewInvitationRepository(db *pgxpool.Pool) *InvitationRepository {
	return &InvitationRepository{db: db}
}

// Create creates a new invitation
func (r *InvitationRepository) Create(ctx context.Context, invitation *models.Invitation) error {
	query := `
		INSERT INTO invitations (id, creator_id, code, is_used, expires_at, used_by, used_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		invitation.ID, invitation.CreatorID, invitation.Code, invitation.IsUsed,
		invitation.ExpiresAt, invitation.UsedBy, invitation.UsedAt, invitation.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invitation code: %w", ErrConflict)
		}
		return fmt.Errorf("failed to create invitation: %w", err)
	}
	return nil
}

// ActiveByCreator retrieves the newest unused, unexpired invitation
// created by creatorID
func (r *InvitationRepository) ActiveByCreator(ctx context.Context, creatorID string, now time.Time) (*models.Invitation, error) {
	query := `
		SELECT id, creator_id, code, is_used, expires_at, used_by, used_at, created_at
		FROM invitations
		WHERE creator_id = $1 AND is_used = false AND expires_at > $2
		ORDER BY created_at DESC
		LIMIT 1
	`
	var invitation models.Invitation
	err := r.db.QueryRow(ctx, query, creatorID, now).Scan(
		&invitation.ID, &invitation.CreatorID, &invitation.Code, &invitation.IsUsed,
		&invitation.ExpiresAt, &invitation.UsedBy, &invitation.UsedAt, &invitation.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("active invitation: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get active invitation: %w", err)
	}
	return &invitation, nil
}

// GetActiveByCode retrieves an invitation by code iff it is unused and
// unexpired. Expired and missing codes are indistinguishable.
func (r *InvitationRepository) GetActiveByCode(ctx context.Context, code string, now time.Time) (*models.Invitation, error) {
	query := `
		SELECT id, creator_id, code, is_used, expires_at, used_by, used_at, created_at
		FROM invitations
		WHERE code = $1 AND is_used = false AND expires_at > $2
	`
	var invitation models.Invitation
	err := r.db.QueryRow(ctx, query, code, now).Scan(
		&invitation.ID, &invitation.CreatorID, &invitation.Code, &invitation.IsUsed,
		&invitation.ExpiresAt, &invitation.UsedBy, &invitation.UsedAt, &invitation.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("invitation: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get invitation by code: %w", err)
	}
	return &invitation, nil
}

// Redeem marks an invitation used and creates the accepted friendship
// row in a single transaction. Returns ErrNotFound if the invitation
// was already used by a concurrent redeem, ErrConflict if the
// friendship pair already exists.
func (r *InvitationRepository) Redeem(ctx context.Context, invitationID string, friendship *models.Friendship, usedBy string, usedAt time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin redeem transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	markUsed := `
		UPDATE invitations
		SET is_used = true, used_by = $1, used_at = $2
		WHERE id = $3 AND is_used = false
	`
	result, err := tx.Exec(ctx, markUsed, usedBy, usedAt, invitationID)
	if err != nil {
		return fmt.Errorf("failed to mark invitation used: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("invitation already used: %w", ErrNotFound)
	}

	createFriendship := `
		INSERT INTO friendships (id, user_id, friend_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = tx.Exec(ctx, createFriendship,
		friendship.ID, friendship.UserID, friendship.FriendID,
		friendship.Status, friendship.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("friendship pair: %w", ErrConflict)
		}
		return fmt.Errorf("failed to create friendship: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit redeem transaction: %w", err)
	}
	return nil
}
