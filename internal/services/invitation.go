package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"daily-moments-backend/internal/models"
	"daily-moments-backend/internal/repository"

	"github.com/google/uuid"
)

const (
	inviteCodeLength = 8
	// 32 symbols; visually confusable characters (0/O, 1/I) excluded
	inviteCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	maxCodeAttempts = 5
)

// InvitationStore is the persistence surface the invitation engine needs
type InvitationStore interface {
	Create(ctx context.Context, invitation *models.Invitation) error
	ActiveByCreator(ctx context.Context, creatorID string, now time.Time) (*models.Invitation, error)
	GetActiveByCode(ctx context.Context, code string, now time.Time) (*models.Invitation, error)
	Redeem(ctx context.Context, invitationID string, friendship *models.Friendship, usedBy string, usedAt time.Time) error
}

// ProfileGetter fetches profiles by id
type ProfileGetter interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
}

// InvitationService converts shareable codes into accepted friendships
type InvitationService struct {
	invitations InvitationStore
	friendships FriendshipStore
	profiles    ProfileGetter
	ttl         time.Duration
	clock       Clock
}

// NewInvitationService creates a new invitation service
func NewInvitationService(invitations InvitationStore, friendships FriendshipStore, profiles ProfileGetter, ttl time.Duration, clock Clock) *InvitationService {
	return &InvitationService{
		invitations: invitations,
		friendships: friendships,
		profiles:    profiles,
		ttl:         ttl,
		clock:       clock,
	}
}

// generateInviteCode generates a random 8-character code
func generateInviteCode() string {
	code := make([]byte, inviteCodeLength)
	for i := range code {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(inviteCodeChars))))
		code[i] = inviteCodeChars[n.Int64()]
	}
	return string(code)
}

// GetOrCreate returns the caller's active invitation, minting a new
// one only when none exists. Sequential calls without an intervening
// expiry return the same code.
func (s *InvitationService) GetOrCreate(ctx context.Context, userID string) (*models.Invitation, error) {
	now := s.clock()

	invitation, err := s.invitations.ActiveByCreator(ctx, userID, now)
	if err == nil {
		return invitation, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up active invitation: %w", err)
	}

	// Code collisions surface as a store uniqueness conflict; mint a
	// fresh code and retry.
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		invitation = &models.Invitation{
			ID:        uuid.New().String(),
			CreatorID: userID,
			Code:      generateInviteCode(),
			ExpiresAt: now.Add(s.ttl),
			CreatedAt: now,
		}
		err := s.invitations.Create(ctx, invitation)
		if err == nil {
			return invitation, nil
		}
		if errors.Is(err, repository.ErrConflict) {
			continue
		}
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}
	return nil, fmt.Errorf("failed to mint a unique code after %d attempts: %w", maxCodeAttempts, ErrConflict)
}

// Validate returns the invitation iff the code exists, is unused, and
// is unexpired; otherwise ErrNotFoundOrExpired. Whether a code ever
// existed is never leaked.
func (s *InvitationService) Validate(ctx context.Context, code string) (*models.Invitation, error) {
	invitation, err := s.invitations.GetActiveByCode(ctx, code, s.clock())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFoundOrExpired
		}
		return nil, fmt.Errorf("failed to validate code: %w", err)
	}
	return invitation, nil
}

// Accept redeems a code on behalf of acceptorID and returns the
// creator's profile. Domain checks run before any mutation; marking
// the invitation used and creating the accepted friendship commit
// atomically in the store.
func (s *InvitationService) Accept(ctx context.Context, code, acceptorID string) (*models.Profile, error) {
	invitation, err := s.Validate(ctx, code)
	if err != nil {
		return nil, err
	}

	if invitation.CreatorID == acceptorID {
		return nil, ErrSelfAcceptance
	}

	exists, err := s.friendships.AcceptedExists(ctx, invitation.CreatorID, acceptorID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing friendship: %w", err)
	}
	if exists {
		return nil, ErrAlreadyFriends
	}

	now := s.clock()
	friendship := &models.Friendship{
		ID:        uuid.New().String(),
		UserID:    invitation.CreatorID,
		FriendID:  acceptorID,
		Status:    models.FriendshipAccepted,
		CreatedAt: now,
	}
	if err := s.invitations.Redeem(ctx, invitation.ID, friendship, acceptorID, now); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			// Lost the race to another path creating the same pair.
			return nil, ErrAlreadyFriends
		case errors.Is(err, repository.ErrNotFound):
			// Lost the race to another redeem of the same code.
			return nil, ErrNotFoundOrExpired
		}
		return nil, fmt.Errorf("failed to redeem invitation: %w", err)
	}

	creator, err := s.profiles.GetByID(ctx, invitation.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load creator profile: %w", err)
	}
	return creator, nil
}
