package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"daily-moments-backend/internal/models"
)

func newInvitationService(invitations *fakeInvitationStore, friendships *fakeFriendshipStore, profiles *fakeProfileStore, now time.Time) *InvitationService {
	return NewInvitationService(invitations, friendships, profiles, 48*time.Hour, fixedClock(now))
}

func TestGenerateInviteCodeAlphabet(t *testing.T) {
	if len(inviteCodeChars) != 32 {
		t.Fatalf("alphabet has %d symbols, want 32", len(inviteCodeChars))
	}
	for _, banned := range "0O1I" {
		if strings.ContainsRune(inviteCodeChars, banned) {
			t.Errorf("alphabet contains confusable character %q", banned)
		}
	}

	for i := 0; i < 50; i++ {
		code := generateInviteCode()
		if len(code) != 8 {
			t.Fatalf("code %q has length %d, want 8", code, len(code))
		}
		for _, c := range code {
			if !strings.ContainsRune(inviteCodeChars, c) {
				t.Fatalf("code %q contains %q outside the alphabet", code, c)
			}
		}
	}
}

func TestGetOrCreateReturnsSameCodeTwice(t *testing.T) {
	ctx := context.Background()
	now := at(10, 0)
	friendships := &fakeFriendshipStore{}
	invitations := &fakeInvitationStore{friendships: friendships}
	svc := newInvitationService(invitations, friendships, newFakeProfileStore(), now)

	first, err := svc.GetOrCreate(ctx, "alice")
	if err != nil {
		t.Fatalf("first GetOrCreate: %v", err)
	}
	second, err := svc.GetOrCreate(ctx, "alice")
	if err != nil {
		t.Fatalf("second GetOrCreate: %v", err)
	}
	if first.Code != second.Code {
		t.Fatalf("codes differ: %q vs %q", first.Code, second.Code)
	}
	if invitations.created != 1 {
		t.Fatalf("%d invitations created, want 1", invitations.created)
	}
}

func TestGetOrCreateMintsFreshCodeAfterExpiry(t *testing.T) {
	ctx := context.Background()
	friendships := &fakeFriendshipStore{}
	invitations := &fakeInvitationStore{friendships: friendships}

	early := newInvitationService(invitations, friendships, newFakeProfileStore(), at(10, 0))
	first, err := early.GetOrCreate(ctx, "alice")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	// Three days later the first invitation is expired and inert.
	late := newInvitationService(invitations, friendships, newFakeProfileStore(), at(10, 0).AddDate(0, 0, 3))
	second, err := late.GetOrCreate(ctx, "alice")
	if err != nil {
		t.Fatalf("GetOrCreate after expiry: %v", err)
	}
	if first.Code == second.Code {
		t.Fatal("expired invitation must not be reused")
	}
	if len(invitations.invitations) != 2 {
		t.Fatalf("expired invitations are kept, want 2 rows, have %d", len(invitations.invitations))
	}
}

func TestValidateExpiredCodeIsNotFound(t *testing.T) {
	ctx := context.Background()
	now := at(10, 0)
	friendships := &fakeFriendshipStore{}
	invitations := &fakeInvitationStore{
		friendships: friendships,
		invitations: []*models.Invitation{{
			ID:        "inv1",
			CreatorID: "alice",
			Code:      "AB3XQ9KZ",
			ExpiresAt: now.AddDate(0, 0, -1),
			CreatedAt: now.AddDate(0, 0, -3),
		}},
	}
	svc := newInvitationService(invitations, friendships, newFakeProfileStore(), now)

	_, err := svc.Validate(ctx, "AB3XQ9KZ")
	if !errors.Is(err, ErrNotFoundOrExpired) {
		t.Fatalf("Validate expired code = %v, want ErrNotFoundOrExpired", err)
	}

	_, err = svc.Validate(ctx, "NEVRMADE")
	if !errors.Is(err, ErrNotFoundOrExpired) {
		t.Fatalf("Validate unknown code = %v, want ErrNotFoundOrExpired", err)
	}
}

func TestAcceptCreatesAcceptedFriendship(t *testing.T) {
	ctx := context.Background()
	now := at(10, 0)
	friendships := &fakeFriendshipStore{}
	invitations := &fakeInvitationStore{friendships: friendships}
	profiles := newFakeProfileStore(
		&models.Profile{ID: "alice", DisplayName: "Alice"},
		&models.Profile{ID: "bob", DisplayName: "Bob"},
	)
	svc := newInvitationService(invitations, friendships, profiles, now)

	invitation, err := svc.GetOrCreate(ctx, "alice")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	creator, err := svc.Accept(ctx, invitation.Code, "bob")
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if creator.ID != "alice" {
		t.Fatalf("Accept returned profile %q, want the creator's", creator.ID)
	}

	if !invitations.invitations[0].IsUsed {
		t.Error("invitation must be marked used")
	}
	if invitations.invitations[0].UsedBy == nil || *invitations.invitations[0].UsedBy != "bob" {
		t.Error("usedBy must record the acceptor")
	}
	accepted, err := friendships.AcceptedExists(ctx, "alice", "bob")
	if err != nil || !accepted {
		t.Fatalf("accepted friendship must exist, got %v %v", accepted, err)
	}
}

func TestAcceptOwnCodeRejected(t *testing.T) {
	ctx := context.Background()
	friendships := &fakeFriendshipStore{}
	invitations := &fakeInvitationStore{friendships: friendships}
	svc := newInvitationService(invitations, friendships, newFakeProfileStore(), at(10, 0))

	invitation, err := svc.GetOrCreate(ctx, "alice")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	_, err = svc.Accept(ctx, invitation.Code, "alice")
	if !errors.Is(err, ErrSelfAcceptance) {
		t.Fatalf("self acceptance = %v, want ErrSelfAcceptance", err)
	}
	if invitations.invitations[0].IsUsed {
		t.Fatal("rejected acceptance must not mark the invitation used")
	}
}

func TestAcceptWhenAlreadyFriendsRejectedBeforeMutation(t *testing.T) {
	ctx := context.Background()
	now := at(10, 0)
	// Accepted pair (alice, bob); bob redeems a fresh code from alice.
	friendships := &fakeFriendshipStore{rows: []*models.Friendship{
		{ID: "f1", UserID: "alice", FriendID: "bob", Status: models.FriendshipAccepted},
	}}
	invitations := &fakeInvitationStore{friendships: friendships}
	svc := newInvitationService(invitations, friendships, newFakeProfileStore(), now)

	invitation, err := svc.GetOrCreate(ctx, "alice")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	_, err = svc.Accept(ctx, invitation.Code, "bob")
	if !errors.Is(err, ErrAlreadyFriends) {
		t.Fatalf("accept between friends = %v, want ErrAlreadyFriends", err)
	}
	if invitations.invitations[0].IsUsed {
		t.Fatal("isUsed must be untouched when the friendship check fails")
	}
	if len(friendships.rows) != 1 {
		t.Fatalf("no second friendship row may appear, have %d", len(friendships.rows))
	}
}

func TestAcceptReversedDirectionStillAlreadyFriends(t *testing.T) {
	ctx := context.Background()
	// Row points (bob -> alice); alice's code redeemed by bob must
	// still collide.
	friendships := &fakeFriendshipStore{rows: []*models.Friendship{
		{ID: "f1", UserID: "bob", FriendID: "alice", Status: models.FriendshipAccepted},
	}}
	invitations := &fakeInvitationStore{friendships: friendships}
	svc := newInvitationService(invitations, friendships, newFakeProfileStore(), at(10, 0))

	invitation, err := svc.GetOrCreate(ctx, "alice")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if _, err := svc.Accept(ctx, invitation.Code, "bob"); !errors.Is(err, ErrAlreadyFriends) {
		t.Fatalf("reversed pair = %v, want ErrAlreadyFriends", err)
	}
}

func TestAcceptUsedCodeFailsWithoutSecondFriendship(t *testing.T) {
	ctx := context.Background()
	now := at(10, 0)
	friendships := &fakeFriendshipStore{}
	invitations := &fakeInvitationStore{friendships: friendships}
	profiles := newFakeProfileStore(
		&models.Profile{ID: "alice", DisplayName: "Alice"},
		&models.Profile{ID: "bob", DisplayName: "Bob"},
		&models.Profile{ID: "carol", DisplayName: "Carol"},
	)
	svc := newInvitationService(invitations, friendships, profiles, now)

	invitation, err := svc.GetOrCreate(ctx, "alice")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if _, err := svc.Accept(ctx, invitation.Code, "bob"); err != nil {
		t.Fatalf("first Accept: %v", err)
	}

	// The code is terminal once used: retries and other users both
	// see a plain miss.
	if _, err := svc.Accept(ctx, invitation.Code, "bob"); !errors.Is(err, ErrNotFoundOrExpired) {
		t.Fatalf("retry with used code = %v, want ErrNotFoundOrExpired", err)
	}
	if _, err := svc.Accept(ctx, invitation.Code, "carol"); !errors.Is(err, ErrNotFoundOrExpired) {
		t.Fatalf("third party with used code = %v, want ErrNotFoundOrExpired", err)
	}
	if len(friendships.rows) != 1 {
		t.Fatalf("exactly one friendship may exist, have %d", len(friendships.rows))
	}
}
