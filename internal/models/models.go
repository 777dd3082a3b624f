package models

import "time"

// Profile represents a user in the system
type Profile struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	AvatarColor string    `json:"avatar_color"`
	AvatarPath  *string   `json:"avatar_path,omitempty"`
	PushToken   *string   `json:"push_token,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TimeWindow is a daily recurring hour range during which posting is allowed
type TimeWindow struct {
	Label     string `json:"label"`
	StartHour int    `json:"start_hour"`
	EndHour   int    `json:"end_hour"`
}

// Moment represents one user's post for a capture instant
type Moment struct {
	ID          string      `json:"id"`
	AuthorID    string      `json:"author_id"`
	ImagePath   *string     `json:"image_path,omitempty"`
	Description *string     `json:"description,omitempty"`
	CapturedAt  time.Time   `json:"captured_at"`
	CreatedAt   time.Time   `json:"created_at"`
	Author      *Profile    `json:"author,omitempty"`
	Reactions   []*Reaction `json:"reactions,omitempty"`
}

// ReactionKind discriminates the reaction variant
type ReactionKind string

const (
	ReactionText  ReactionKind = "text"
	ReactionVoice ReactionKind = "voice"
)

// Reaction belongs to exactly one moment
type Reaction struct {
	ID         string       `json:"id"`
	MomentID   string       `json:"moment_id"`
	AuthorID   string       `json:"author_id"`
	Kind       ReactionKind `json:"kind"`
	Content    *string      `json:"content,omitempty"`
	DurationMS *int         `json:"duration_ms,omitempty"`
	AudioPath  *string      `json:"audio_path,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}

// FriendshipStatus is the lifecycle state of a friendship row
type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
)

// Friendship is a directed row realizing an undirected relation.
// For any unordered pair at most one accepted row exists; lookups
// must check both orderings.
type Friendship struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	FriendID  string           `json:"friend_id"`
	Status    FriendshipStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}

// Invitation is a single-use, expiring code that establishes a friendship
type Invitation struct {
	ID        string     `json:"id"`
	CreatorID string     `json:"creator_id"`
	Code      string     `json:"code"`
	IsUsed    bool       `json:"is_used"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedBy    *string    `json:"used_by,omitempty"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
