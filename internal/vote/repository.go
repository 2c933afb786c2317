package vote

import (
	"context"
	"sync"
)

// Repository defines the storage contract for the vote ledger.
// At most one record exists per (post, user).
type Repository interface {
	// Get returns the user's active vote on a post, or ok=false if none.
	Get(ctx context.Context, postID, userID string) (Vote, bool, error)

	// Put inserts or replaces the user's vote on a post.
	Put(ctx context.Context, v Vote) error

	// DeleteByPost removes all votes for a post. Used when a post is deleted.
	DeleteByPost(ctx context.Context, postID string) error
}

// InMemoryRepository is an in-memory vote ledger store. Thread-safe via
// RWMutex.
type InMemoryRepository struct {
	mu    sync.RWMutex
	votes map[string]map[string]Vote // postID -> userID -> Vote
}

// NewInMemoryRepository creates an empty in-memory vote store.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		votes: make(map[string]map[string]Vote),
	}
}

// Get returns the user's active vote on a post.
func (r *InMemoryRepository) Get(_ context.Context, postID, userID string) (Vote, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byUser, ok := r.votes[postID]
	if !ok {
		return Vote{}, false, nil
	}
	v, ok := byUser[userID]
	return v, ok, nil
}

// Put inserts or replaces the user's vote on a post.
func (r *InMemoryRepository) Put(_ context.Context, v Vote) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byUser, ok := r.votes[v.PostID]
	if !ok {
		byUser = make(map[string]Vote)
		r.votes[v.PostID] = byUser
	}
	byUser[v.UserID] = v
	return nil
}

// DeleteByPost removes all votes for a post.
func (r *InMemoryRepository) DeleteByPost(_ context.Context, postID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.votes, postID)
	return nil
}
