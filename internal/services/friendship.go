package services

import (
	"context"
	"errors"
	"fmt"

	"daily-moments-backend/internal/models"
	"daily-moments-backend/internal/repository"

	"github.com/google/uuid"
)

// FriendshipStore is the persistence surface for the undirected
// friendship relation
type FriendshipStore interface {
	Create(ctx context.Context, friendship *models.Friendship) error
	GetBetween(ctx context.Context, userID, otherID string) (*models.Friendship, error)
	AcceptedExists(ctx context.Context, userID, otherID string) (bool, error)
	GetPending(ctx context.Context, fromID, toID string) (*models.Friendship, error)
	UpdateStatus(ctx context.Context, id string, status models.FriendshipStatus) error
	DeleteBetween(ctx context.Context, userID, otherID string) error
	ListFriendIDs(ctx context.Context, userID string) ([]string, error)
	ListPendingFor(ctx context.Context, userID string) ([]*models.Friendship, error)
}

// FriendshipService handles the direct (non-code) friendship path
type FriendshipService struct {
	friendships FriendshipStore
	profiles    ProfileGetter
	clock       Clock
}

// NewFriendshipService creates a new friendship service
func NewFriendshipService(friendships FriendshipStore, profiles ProfileGetter, clock Clock) *FriendshipService {
	return &FriendshipService{
		friendships: friendships,
		profiles:    profiles,
		clock:       clock,
	}
}

// SendRequest creates a pending friendship row from userID to friendID
func (s *FriendshipService) SendRequest(ctx context.Context, userID, friendID string) (*models.Friendship, error) {
	if userID == friendID {
		return nil, ErrSelfAcceptance
	}

	if _, err := s.profiles.GetByID(ctx, friendID); err != nil {
		return nil, fmt.Errorf("failed to load target profile: %w", err)
	}

	// Either direction counts: an existing row in any status blocks a
	// duplicate request.
	existing, err := s.friendships.GetBetween(ctx, userID, friendID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing friendship: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyFriends
	}

	friendship := &models.Friendship{
		ID:        uuid.New().String(),
		UserID:    userID,
		FriendID:  friendID,
		Status:    models.FriendshipPending,
		CreatedAt: s.clock(),
	}
	if err := s.friendships.Create(ctx, friendship); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyFriends
		}
		return nil, fmt.Errorf("failed to create friend request: %w", err)
	}
	return friendship, nil
}

// AcceptRequest flips the pending request from requesterID to userID
// to accepted
func (s *FriendshipService) AcceptRequest(ctx context.Context, userID, requesterID string) (*models.Friendship, error) {
	pending, err := s.friendships.GetPending(ctx, requesterID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFoundOrExpired
		}
		return nil, fmt.Errorf("failed to load pending request: %w", err)
	}

	if err := s.friendships.UpdateStatus(ctx, pending.ID, models.FriendshipAccepted); err != nil {
		return nil, fmt.Errorf("failed to accept friend request: %w", err)
	}
	pending.Status = models.FriendshipAccepted
	return pending, nil
}

// Remove deletes the friendship between userID and friendID outright,
// from either party's perspective. No declined state is retained.
func (s *FriendshipService) Remove(ctx context.Context, userID, friendID string) error {
	if err := s.friendships.DeleteBetween(ctx, userID, friendID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFriends
		}
		return fmt.Errorf("failed to remove friendship: %w", err)
	}
	return nil
}

// FriendIDs returns the ids of every accepted friend of userID
func (s *FriendshipService) FriendIDs(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.friendships.ListFriendIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	return ids, nil
}

// Friends returns the profiles of every accepted friend of userID
func (s *FriendshipService) Friends(ctx context.Context, userID string) ([]*models.Profile, error) {
	ids, err := s.FriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	profiles := make([]*models.Profile, 0, len(ids))
	for _, id := range ids {
		profile, err := s.profiles.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load friend profile: %w", err)
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// PendingRequests returns the pending requests addressed to userID
func (s *FriendshipService) PendingRequests(ctx context.Context, userID string) ([]*models.Friendship, error) {
	requests, err := s.friendships.ListPendingFor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	return requests, nil
}

var _ FriendshipStore = (*repository.FriendshipRepository)(nil)
var _ InvitationStore = (*repository.InvitationRepository)(nil)
