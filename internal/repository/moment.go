package repository

import (
	"context"
	"fmt"
	"time"

	"daily-moments-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MomentRepository handles database operations for moments
type MomentRepository struct {
	db *pgxpool.Pool
}

// NewMomentRepository creates a new moment repository
func NewMomentRepository(db *pgxpool.Pool) *MomentRepository {
	return &MomentRepository{db: db}
}

// Create creates a new moment
func (r *MomentRepository) Create(ctx context.Context, moment *models.Moment) error {
	query := `
		INSERT INTO moments (id, author_id, image_path, description, captured_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		moment.ID, moment.AuthorID, moment.ImagePath, moment.Description,
		moment.CapturedAt, moment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create moment: %w", err)
	}
	return nil
}

// GetByID retrieves a moment by ID
func (r *MomentRepository) GetByID(ctx context.Context, id string) (*models.Moment, error) {
	query := `
		SELECT id, author_id, image_path, description, captured_at, created_at
		FROM moments
		WHERE id = $1
	`
	var moment models.Moment
	err := r.db.QueryRow(ctx, query, id).Scan(
		&moment.ID, &moment.AuthorID, &moment.ImagePath, &moment.Description,
		&moment.CapturedAt, &moment.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("moment: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get moment: %w", err)
	}
	return &moment, nil
}

// LatestByAuthor retrieves the most recent moment posted by authorID
func (r *MomentRepository) LatestByAuthor(ctx context.Context, authorID string) (*models.Moment, error) {
	query := `
		SELECT id, author_id, image_path, description, captured_at, created_at
		FROM moments
		WHERE author_id = $1
		ORDER BY captured_at DESC
		LIMIT 1
	`
	var moment models.Moment
	err := r.db.QueryRow(ctx, query, authorID).Scan(
		&moment.ID, &moment.AuthorID, &moment.ImagePath, &moment.Description,
		&moment.CapturedAt, &moment.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("moment: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get latest moment: %w", err)
	}
	return &moment, nil
}

// ListForDay retrieves the moments captured by the given authors
// within [dayStart, dayEnd), newest first, with author profiles joined
func (r *MomentRepository) ListForDay(ctx context.Context, authorIDs []string, dayStart, dayEnd time.Time) ([]*models.Moment, error) {
	query := `
		SELECT m.id, m.author_id, m.image_path, m.description, m.captured_at, m.created_at,
		       p.id, p.display_name, p.avatar_color, p.avatar_path, p.created_at
		FROM moments m
		JOIN profiles p ON p.id = m.author_id
		WHERE m.author_id = ANY($1)
		  AND m.captured_at >= $2 AND m.captured_at < $3
		ORDER BY m.captured_at DESC
	`
	rows, err := r.db.Query(ctx, query, authorIDs, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list moments: %w", err)
	}
	defer rows.Close()

	var moments []*models.Moment
	for rows.Next() {
		var moment models.Moment
		var author models.Profile
		err := rows.Scan(
			&moment.ID, &moment.AuthorID, &moment.ImagePath, &moment.Description,
			&moment.CapturedAt, &moment.CreatedAt,
			&author.ID, &author.DisplayName, &author.AvatarColor,
			&author.AvatarPath, &author.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan moment: %w", err)
		}
		moment.Author = &author
		moments = append(moments, &moment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating moments: %w", err)
	}
	return moments, nil
}

// Delete deletes a moment by ID
func (r *MomentRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM moments WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete moment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("moment: %w", ErrNotFound)
	}
	return nil
}
