package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"daily-moments-backend/internal/models"
	"daily-moments-backend/internal/repository"

	"github.com/google/uuid"
)

// MomentStore is the persistence surface for moments
type MomentStore interface {
	Create(ctx context.Context, moment *models.Moment) error
	GetByID(ctx context.Context, id string) (*models.Moment, error)
	LatestByAuthor(ctx context.Context, authorID string) (*models.Moment, error)
	ListForDay(ctx context.Context, authorIDs []string, dayStart, dayEnd time.Time) ([]*models.Moment, error)
	Delete(ctx context.Context, id string) error
}

// ReactionStore is the persistence surface for reactions
type ReactionStore interface {
	Create(ctx context.Context, reaction *models.Reaction) error
	ListByMoments(ctx context.Context, momentIDs []string) ([]*models.Reaction, error)
	DeleteByMoment(ctx context.Context, momentID string) error
}

// SameCalendarDay reports whether a and b fall on the same calendar
// day in a's location. Day boundaries are local, not UTC.
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}

// CanPost reports whether a new moment may be created now: some
// window must be open and the author must not have posted today.
func CanPost(now time.Time, windows []models.TimeWindow, hasPostedToday bool) bool {
	if hasPostedToday {
		return false
	}
	return len(OpenWindows(now, windows)) > 0
}

// CanView reports whether viewerID may see moment: the viewer is the
// author or a friend of the author, and the moment was captured
// during the current calendar day.
func CanView(moment *models.Moment, viewerID string, friendIDs []string, now time.Time) bool {
	if !SameCalendarDay(now, moment.CapturedAt) {
		return false
	}
	if moment.AuthorID == viewerID {
		return true
	}
	for _, id := range friendIDs {
		if id == moment.AuthorID {
			return true
		}
	}
	return false
}

// MomentService handles the moment and reaction lifecycle
type MomentService struct {
	moments     MomentStore
	reactions   ReactionStore
	friendships FriendshipStore
	blobs       BlobStore
	windows     []models.TimeWindow
	clock       Clock
}

// NewMomentService creates a new moment service
func NewMomentService(moments MomentStore, reactions ReactionStore, friendships FriendshipStore, blobs BlobStore, windows []models.TimeWindow, clock Clock) *MomentService {
	return &MomentService{
		moments:     moments,
		reactions:   reactions,
		friendships: friendships,
		blobs:       blobs,
		windows:     windows,
		clock:       clock,
	}
}

// HasPostedToday reports whether userID already posted a moment
// during the current local calendar day. The store's latest moment is
// the source of truth; a concurrent double-post from two devices is
// not prevented here.
func (s *MomentService) HasPostedToday(ctx context.Context, userID string) (bool, error) {
	latest, err := s.moments.LatestByAuthor(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load latest moment: %w", err)
	}
	return SameCalendarDay(s.clock(), latest.CapturedAt), nil
}

// CanPostNow reports whether userID may create a moment right now
func (s *MomentService) CanPostNow(ctx context.Context, userID string) (bool, error) {
	hasPosted, err := s.HasPostedToday(ctx, userID)
	if err != nil {
		return false, err
	}
	return CanPost(s.clock(), s.windows, hasPosted), nil
}

// Create creates a new moment for authorID, enforcing the posting gate
func (s *MomentService) Create(ctx context.Context, authorID string, imagePath, description *string) (*models.Moment, error) {
	now := s.clock()

	if len(OpenWindows(now, s.windows)) == 0 {
		return nil, ErrPostingClosed
	}
	hasPosted, err := s.HasPostedToday(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if hasPosted {
		return nil, ErrAlreadyPosted
	}

	moment := &models.Moment{
		ID:          uuid.New().String(),
		AuthorID:    authorID,
		ImagePath:   imagePath,
		Description: description,
		CapturedAt:  now,
		CreatedAt:   now,
	}
	if err := s.moments.Create(ctx, moment); err != nil {
		return nil, fmt.Errorf("failed to create moment: %w", err)
	}
	return moment, nil
}

// Feed returns the moments visible to viewerID for the current
// calendar day: their own plus their friends', newest first, with
// authors and reactions attached.
func (s *MomentService) Feed(ctx context.Context, viewerID string) ([]*models.Moment, error) {
	friendIDs, err := s.friendships.ListFriendIDs(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	authorIDs := append([]string{viewerID}, friendIDs...)

	now := s.clock()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	moments, err := s.moments.ListForDay(ctx, authorIDs, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list moments: %w", err)
	}
	if len(moments) == 0 {
		return moments, nil
	}

	momentIDs := make([]string, len(moments))
	byID := make(map[string]*models.Moment, len(moments))
	for i, m := range moments {
		momentIDs[i] = m.ID
		byID[m.ID] = m
	}
	reactions, err := s.reactions.ListByMoments(ctx, momentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list reactions: %w", err)
	}
	for _, reaction := range reactions {
		if m, ok := byID[reaction.MomentID]; ok {
			m.Reactions = append(m.Reactions, reaction)
		}
	}
	return moments, nil
}

// Delete deletes a moment. Only the author may delete; the image blob,
// voice reaction audio, and reaction rows are removed with it.
func (s *MomentService) Delete(ctx context.Context, userID, momentID string) error {
	moment, err := s.moments.GetByID(ctx, momentID)
	if err != nil {
		return fmt.Errorf("failed to load moment: %w", err)
	}
	if moment.AuthorID != userID {
		return ErrNotOwner
	}

	reactions, err := s.reactions.ListByMoments(ctx, []string{momentID})
	if err != nil {
		return fmt.Errorf("failed to list reactions: %w", err)
	}
	for _, reaction := range reactions {
		if reaction.AudioPath != nil {
			if err := s.blobs.Delete(ctx, *reaction.AudioPath); err != nil {
				return fmt.Errorf("failed to delete reaction audio: %w", err)
			}
		}
	}
	if moment.ImagePath != nil {
		if err := s.blobs.Delete(ctx, *moment.ImagePath); err != nil {
			return fmt.Errorf("failed to delete moment image: %w", err)
		}
	}

	if err := s.reactions.DeleteByMoment(ctx, momentID); err != nil {
		return fmt.Errorf("failed to delete reactions: %w", err)
	}
	if err := s.moments.Delete(ctx, momentID); err != nil {
		return fmt.Errorf("failed to delete moment: %w", err)
	}
	return nil
}

// AddReaction attaches a text or voice reaction to a moment the
// author can see
func (s *MomentService) AddReaction(ctx context.Context, authorID, momentID string, kind models.ReactionKind, content *string, durationMS *int, audioPath *string) (*models.Reaction, error) {
	switch kind {
	case models.ReactionText:
		if content == nil || *content == "" {
			return nil, fmt.Errorf("text reaction requires content")
		}
	case models.ReactionVoice:
		if audioPath == nil || durationMS == nil {
			return nil, fmt.Errorf("voice reaction requires audio and duration")
		}
	default:
		return nil, fmt.Errorf("unknown reaction kind %q", kind)
	}

	moment, err := s.moments.GetByID(ctx, momentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load moment: %w", err)
	}
	friendIDs, err := s.friendships.ListFriendIDs(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	now := s.clock()
	if !CanView(moment, authorID, friendIDs, now) {
		return nil, ErrNotFriends
	}

	reaction := &models.Reaction{
		ID:         uuid.New().String(),
		MomentID:   momentID,
		AuthorID:   authorID,
		Kind:       kind,
		Content:    content,
		DurationMS: durationMS,
		AudioPath:  audioPath,
		CreatedAt:  now,
	}
	if err := s.reactions.Create(ctx, reaction); err != nil {
		return nil, fmt.Errorf("failed to create reaction: %w", err)
	}
	return reaction, nil
}

var _ MomentStore = (*repository.MomentRepository)(nil)
var _ ReactionStore = (*repository.ReactionRepository)(nil)
