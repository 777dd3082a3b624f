package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"daily-moments-backend/internal/models"
	"daily-moments-backend/internal/repository"
)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

type fakeProfileStore struct {
	profiles map[string]*models.Profile
}

func newFakeProfileStore(profiles ...*models.Profile) *fakeProfileStore {
	s := &fakeProfileStore{profiles: make(map[string]*models.Profile)}
	for _, p := range profiles {
		s.profiles[p.ID] = p
	}
	return s
}

func (s *fakeProfileStore) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	p, ok := s.profiles[id]
	if !ok {
		return nil, fmt.Errorf("profile: %w", repository.ErrNotFound)
	}
	return p, nil
}

type fakeFriendshipStore struct {
	rows []*models.Friendship
}

func (s *fakeFriendshipStore) pairExists(userID, otherID string) bool {
	for _, f := range s.rows {
		if (f.UserID == userID && f.FriendID == otherID) ||
			(f.UserID == otherID && f.FriendID == userID) {
			return true
		}
	}
	return false
}

func (s *fakeFriendshipStore) Create(ctx context.Context, friendship *models.Friendship) error {
	for _, f := range s.rows {
		if f.UserID == friendship.UserID && f.FriendID == friendship.FriendID {
			return fmt.Errorf("friendship pair: %w", repository.ErrConflict)
		}
	}
	s.rows = append(s.rows, friendship)
	return nil
}

func (s *fakeFriendshipStore) GetBetween(ctx context.Context, userID, otherID string) (*models.Friendship, error) {
	for _, f := range s.rows {
		if (f.UserID == userID && f.FriendID == otherID) ||
			(f.UserID == otherID && f.FriendID == userID) {
			return f, nil
		}
	}
	return nil, fmt.Errorf("friendship: %w", repository.ErrNotFound)
}

func (s *fakeFriendshipStore) AcceptedExists(ctx context.Context, userID, otherID string) (bool, error) {
	for _, f := range s.rows {
		if f.Status != models.FriendshipAccepted {
			continue
		}
		if (f.UserID == userID && f.FriendID == otherID) ||
			(f.UserID == otherID && f.FriendID == userID) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeFriendshipStore) GetPending(ctx context.Context, fromID, toID string) (*models.Friendship, error) {
	for _, f := range s.rows {
		if f.UserID == fromID && f.FriendID == toID && f.Status == models.FriendshipPending {
			return f, nil
		}
	}
	return nil, fmt.Errorf("pending request: %w", repository.ErrNotFound)
}

func (s *fakeFriendshipStore) UpdateStatus(ctx context.Context, id string, status models.FriendshipStatus) error {
	for _, f := range s.rows {
		if f.ID == id {
			f.Status = status
			return nil
		}
	}
	return fmt.Errorf("friendship: %w", repository.ErrNotFound)
}

func (s *fakeFriendshipStore) DeleteBetween(ctx context.Context, userID, otherID string) error {
	kept := s.rows[:0]
	deleted := false
	for _, f := range s.rows {
		match := (f.UserID == userID && f.FriendID == otherID) ||
			(f.UserID == otherID && f.FriendID == userID)
		if match {
			deleted = true
			continue
		}
		kept = append(kept, f)
	}
	s.rows = kept
	if !deleted {
		return fmt.Errorf("friendship: %w", repository.ErrNotFound)
	}
	return nil
}

func (s *fakeFriendshipStore) ListFriendIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	for _, f := range s.rows {
		if f.Status != models.FriendshipAccepted {
			continue
		}
		if f.UserID == userID {
			ids = append(ids, f.FriendID)
		} else if f.FriendID == userID {
			ids = append(ids, f.UserID)
		}
	}
	return ids, nil
}

func (s *fakeFriendshipStore) ListPendingFor(ctx context.Context, userID string) ([]*models.Friendship, error) {
	var requests []*models.Friendship
	for _, f := range s.rows {
		if f.FriendID == userID && f.Status == models.FriendshipPending {
			requests = append(requests, f)
		}
	}
	return requests, nil
}

type fakeInvitationStore struct {
	invitations []*models.Invitation
	friendships *fakeFriendshipStore
	created     int
}

func (s *fakeInvitationStore) Create(ctx context.Context, invitation *models.Invitation) error {
	for _, inv := range s.invitations {
		if inv.Code == invitation.Code {
			return fmt.Errorf("invitation code: %w", repository.ErrConflict)
		}
	}
	s.invitations = append(s.invitations, invitation)
	s.created++
	return nil
}

func (s *fakeInvitationStore) ActiveByCreator(ctx context.Context, creatorID string, now time.Time) (*models.Invitation, error) {
	var active []*models.Invitation
	for _, inv := range s.invitations {
		if inv.CreatorID == creatorID && !inv.IsUsed && inv.ExpiresAt.After(now) {
			active = append(active, inv)
		}
	}
	if len(active) == 0 {
		return nil, fmt.Errorf("active invitation: %w", repository.ErrNotFound)
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].CreatedAt.After(active[j].CreatedAt)
	})
	return active[0], nil
}

func (s *fakeInvitationStore) GetActiveByCode(ctx context.Context, code string, now time.Time) (*models.Invitation, error) {
	for _, inv := range s.invitations {
		if inv.Code == code && !inv.IsUsed && inv.ExpiresAt.After(now) {
			return inv, nil
		}
	}
	return nil, fmt.Errorf("invitation: %w", repository.ErrNotFound)
}

func (s *fakeInvitationStore) Redeem(ctx context.Context, invitationID string, friendship *models.Friendship, usedBy string, usedAt time.Time) error {
	var target *models.Invitation
	for _, inv := range s.invitations {
		if inv.ID == invitationID {
			target = inv
			break
		}
	}
	if target == nil || target.IsUsed {
		return fmt.Errorf("invitation already used: %w", repository.ErrNotFound)
	}
	if s.friendships.pairExists(friendship.UserID, friendship.FriendID) {
		return fmt.Errorf("friendship pair: %w", repository.ErrConflict)
	}
	target.IsUsed = true
	target.UsedBy = &usedBy
	target.UsedAt = &usedAt
	s.friendships.rows = append(s.friendships.rows, friendship)
	return nil
}

type fakeMomentStore struct {
	moments []*models.Moment
}

func (s *fakeMomentStore) Create(ctx context.Context, moment *models.Moment) error {
	s.moments = append(s.moments, moment)
	return nil
}

func (s *fakeMomentStore) GetByID(ctx context.Context, id string) (*models.Moment, error) {
	for _, m := range s.moments {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, fmt.Errorf("moment: %w", repository.ErrNotFound)
}

func (s *fakeMomentStore) LatestByAuthor(ctx context.Context, authorID string) (*models.Moment, error) {
	var latest *models.Moment
	for _, m := range s.moments {
		if m.AuthorID != authorID {
			continue
		}
		if latest == nil || m.CapturedAt.After(latest.CapturedAt) {
			latest = m
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("moment: %w", repository.ErrNotFound)
	}
	return latest, nil
}

func (s *fakeMomentStore) ListForDay(ctx context.Context, authorIDs []string, dayStart, dayEnd time.Time) ([]*models.Moment, error) {
	allowed := make(map[string]bool, len(authorIDs))
	for _, id := range authorIDs {
		allowed[id] = true
	}
	var result []*models.Moment
	for _, m := range s.moments {
		if !allowed[m.AuthorID] {
			continue
		}
		if m.CapturedAt.Before(dayStart) || !m.CapturedAt.Before(dayEnd) {
			continue
		}
		result = append(result, m)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CapturedAt.After(result[j].CapturedAt)
	})
	return result, nil
}

func (s *fakeMomentStore) Delete(ctx context.Context, id string) error {
	for i, m := range s.moments {
		if m.ID == id {
			s.moments = append(s.moments[:i], s.moments[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("moment: %w", repository.ErrNotFound)
}

type fakeReactionStore struct {
	reactions []*models.Reaction
}

func (s *fakeReactionStore) Create(ctx context.Context, reaction *models.Reaction) error {
	s.reactions = append(s.reactions, reaction)
	return nil
}

func (s *fakeReactionStore) ListByMoments(ctx context.Context, momentIDs []string) ([]*models.Reaction, error) {
	allowed := make(map[string]bool, len(momentIDs))
	for _, id := range momentIDs {
		allowed[id] = true
	}
	var result []*models.Reaction
	for _, r := range s.reactions {
		if allowed[r.MomentID] {
			result = append(result, r)
		}
	}
	return result, nil
}

func (s *fakeReactionStore) DeleteByMoment(ctx context.Context, momentID string) error {
	kept := s.reactions[:0]
	for _, r := range s.reactions {
		if r.MomentID != momentID {
			kept = append(kept, r)
		}
	}
	s.reactions = kept
	return nil
}

type fakeBlobStore struct {
	deleted []string
}

func (s *fakeBlobStore) PresignUpload(ctx context.Context, path, contentType string) (string, error) {
	return "https://upload.test/" + path, nil
}

func (s *fakeBlobStore) PublicURL(path string) string {
	return "https://cdn.test/" + path
}

func (s *fakeBlobStore) Delete(ctx context.Context, path string) error {
	s.deleted = append(s.deleted, path)
	return nil
}
