package services

import "errors"

// Domain errors surfaced to handlers. Handlers map these to HTTP
// status codes with errors.Is; anything unclassified is treated as
// transient and retryable.
var (
	// ErrNotAuthenticated means no active session
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrNotFoundOrExpired means an invitation lookup missed; expired
	// and never-existed codes are deliberately indistinguishable
	ErrNotFoundOrExpired = errors.New("invitation not found or expired")
	// ErrSelfAcceptance means a user tried to redeem their own code
	ErrSelfAcceptance = errors.New("cannot accept your own invitation")
	// ErrAlreadyFriends means an accepted friendship already exists
	ErrAlreadyFriends = errors.New("users are already friends")
	// ErrNotFriends means the viewer may not see the target content
	ErrNotFriends = errors.New("users are not friends")
	// ErrNotOwner means the caller does not own the target entity
	ErrNotOwner = errors.New("caller does not own this entity")
	// ErrPostingClosed means no posting window is currently open
	ErrPostingClosed = errors.New("no posting window is open")
	// ErrAlreadyPosted means the author already posted a moment today
	ErrAlreadyPosted = errors.New("already posted today")
	// ErrConflict means a uniqueness constraint fired
	ErrConflict = errors.New("conflict")
)
