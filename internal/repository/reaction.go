package repository

import (
	"context"
	"fmt"

	"daily-moments-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ReactionRepository handles database operations for reactions
type ReactionRepository struct {
	db *pgxpool.Pool
}

// NewReactionRepository creates a new reaction repository
func NewReactionRepository(db *pgxpool.Pool) *ReactionRepository {
	return &ReactionRepository{db: db}
}

// Create creates a new reaction
func (r *ReactionRepository) Create(ctx context.Context, reaction *models.Reaction) error {
	query := `
		INSERT INTO reactions (id, moment_id, author_id, kind, content, duration_ms, audio_path, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		reaction.ID, reaction.MomentID, reaction.AuthorID, reaction.Kind,
		reaction.Content, reaction.DurationMS, reaction.AudioPath, reaction.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create reaction: %w", err)
	}
	return nil
}

// ListByMoments retrieves the reactions for the given moments in
// creation order
func (r *ReactionRepository) ListByMoments(ctx context.Context, momentIDs []string) ([]*models.Reaction, error) {
	query := `
		SELECT id, moment_id, author_id, kind, content, duration_ms, audio_path, created_at
		FROM reactions
		WHERE moment_id = ANY($1)
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, momentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list reactions: %w", err)
	}
	defer rows.Close()

	var reactions []*models.Reaction
	for rows.Next() {
		var reaction models.Reaction
		err := rows.Scan(
			&reaction.ID, &reaction.MomentID, &reaction.AuthorID, &reaction.Kind,
			&reaction.Content, &reaction.DurationMS, &reaction.AudioPath, &reaction.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reaction: %w", err)
		}
		reactions = append(reactions, &reaction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reactions: %w", err)
	}
	return reactions, nil
}

// DeleteByMoment deletes every reaction attached to a moment
func (r *ReactionRepository) DeleteByMoment(ctx context.Context, momentID string) error {
	query := `DELETE FROM reactions WHERE moment_id = $1`
	_, err := r.db.Exec(ctx, query, momentID)
	if err != nil {
		return fmt.Errorf("failed to delete reactions: %w", err)
	}
	return nil
}
