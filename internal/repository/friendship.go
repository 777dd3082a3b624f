package repository

import (
	"context"
	"fmt"

	"daily-moments-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FriendshipRepository handles database operations for friendships.
// Rows are directed (user_id, friend_id) but the relation is
// undirected, so existence checks query both orderings.
type FriendshipRepository struct {
	db *pgxpool.Pool
}

// NewFriendshipRepository creates a new friendship repository
func NewFriendshipRepository(db *pgxpool.Pool) *FriendshipRepository {
	return &FriendshipRepository{db: db}
}

// Create creates a new friendship row
func (r *FriendshipRepository) Create(ctx context.Context, friendship *models.Friendship) error {
	query := `
		INSERT INTO friendships (id, user_id, friend_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query,
		friendship.ID, friendship.UserID, friendship.FriendID,
		friendship.Status, friendship.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("friendship pair: %w", ErrConflict)
		}
		return fmt.Errorf("failed to create friendship: %w", err)
	}
	return nil
}

// GetBetween retrieves the friendship row between two users in either
// direction, regardless of status
func (r *FriendshipRepository) GetBetween(ctx context.Context, userID, otherID string) (*models.Friendship, error) {
	query := `
		SELECT id, user_id, friend_id, status, created_at
		FROM friendships
		WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
		LIMIT 1
	`
	var friendship models.Friendship
	err := r.db.QueryRow(ctx, query, userID, otherID).Scan(
		&friendship.ID, &friendship.UserID, &friendship.FriendID,
		&friendship.Status, &friendship.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("friendship: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get friendship: %w", err)
	}
	return &friendship, nil
}

// AcceptedExists checks whether an accepted friendship exists between
// two users in either direction
func (r *FriendshipRepository) AcceptedExists(ctx context.Context, userID, otherID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM friendships
			WHERE status = 'accepted'
			  AND ((user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1))
		)
	`
	var exists bool
	err := r.db.QueryRow(ctx, query, userID, otherID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check friendship existence: %w", err)
	}
	return exists, nil
}

// GetPending retrieves the pending request sent by fromID to toID
func (r *FriendshipRepository) GetPending(ctx context.Context, fromID, toID string) (*models.Friendship, error) {
	query := `
		SELECT id, user_id, friend_id, status, created_at
		FROM friendships
		WHERE user_id = $1 AND friend_id = $2 AND status = 'pending'
	`
	var friendship models.Friendship
	err := r.db.QueryRow(ctx, query, fromID, toID).Scan(
		&friendship.ID, &friendship.UserID, &friendship.FriendID,
		&friendship.Status, &friendship.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("pending request: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get pending request: %w", err)
	}
	return &friendship, nil
}

// UpdateStatus updates the status of a friendship row
func (r *FriendshipRepository) UpdateStatus(ctx context.Context, id string, status models.FriendshipStatus) error {
	query := `UPDATE friendships SET status = $1 WHERE id = $2`
	result, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update friendship status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("friendship: %w", ErrNotFound)
	}
	return nil
}

// DeleteBetween deletes the friendship rows between two users in
// either direction
func (r *FriendshipRepository) DeleteBetween(ctx context.Context, userID, otherID string) error {
	query := `
		DELETE FROM friendships
		WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
	`
	result, err := r.db.Exec(ctx, query, userID, otherID)
	if err != nil {
		return fmt.Errorf("failed to delete friendship: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("friendship: %w", ErrNotFound)
	}
	return nil
}

// ListFriendIDs returns the ids of every user with an accepted
// friendship with userID, whichever direction the row points
func (r *FriendshipRepository) ListFriendIDs(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT CASE WHEN user_id = $1 THEN friend_id ELSE user_id END
		FROM friendships
		WHERE status = 'accepted' AND (user_id = $1 OR friend_id = $1)
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friend ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan friend id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating friend ids: %w", err)
	}
	return ids, nil
}

// ListPendingFor returns the pending requests addressed to userID
func (r *FriendshipRepository) ListPendingFor(ctx context.Context, userID string) ([]*models.Friendship, error) {
	query := `
		SELECT id, user_id, friend_id, status, created_at
		FROM friendships
		WHERE friend_id = $1 AND status = 'pending'
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.Friendship
	for rows.Next() {
		var friendship models.Friendship
		err := rows.Scan(
			&friendship.ID, &friendship.UserID, &friendship.FriendID,
			&friendship.Status, &friendship.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pending request: %w", err)
		}
		requests = append(requests, &friendship)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pending requests: %w", err)
	}
	return requests, nil
}
