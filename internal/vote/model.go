// Package vote implements the vote ledger and karma model: one active vote
// per (post, user), idempotent re-votes, and a diminishing-returns karma
// score derived from upvote counts.
package vote

import (
	"errors"
	"time"
)

// Common errors for vote operations.
var (
	// ErrInvalidVoteType is returned for a vote type outside {upvote, downvote}.
	ErrInvalidVoteType = errors.New("invalid vote type")
)

// Type is the direction of a vote.
type Type string

// Valid vote types.
const (
	Upvote   Type = "upvote"
	Downvote Type = "downvote"
)

// ParseType validates a raw vote type string.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case Upvote, Downvote:
		return Type(s), nil
	default:
		return "", ErrInvalidVoteType
	}
}

// Vote is a single user's active vote on a post. Identity is the
// (PostID, UserID) pair; re-voting replaces the record, never duplicates it.
type Vote struct {
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	Type      Type      `json:"vote_type"`
	CreatedAt time.Time `json:"created_at"`
}
