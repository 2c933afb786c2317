package post

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the storage contract for posts. The feed and the vote
// ledger treat it as a synchronous, consistent document store; implementations
// own the records and hand out snapshots only.
type Repository interface {
	// Create inserts a new post, assigning its ID and CreatedAt and zeroing
	// the vote and karma fields.
	Create(ctx context.Context, p *Post) (*Post, error)

	// GetByID retrieves a post by ID. Returns ErrPostNotFound if absent.
	GetByID(ctx context.Context, id string) (*Post, error)

	// List retrieves posts ordered by created_at DESC, id ASC (tie-break),
	// skipping the first skip posts and returning at most limit.
	List(ctx context.Context, skip, limit int) ([]*Post, error)

	// Save persists updated mutable fields (vote counts, karma, title,
	// description). Returns ErrPostNotFound if the post does not exist.
	Save(ctx context.Context, p *Post) error

	// Delete removes a post and its votes. Returns ErrPostNotFound if absent.
	Delete(ctx context.Context, id string) error
}

// InMemoryRepository is an in-memory Repository used for local development
// and tests. Thread-safe via RWMutex.
type InMemoryRepository struct {
	mu    sync.RWMutex
	posts map[string]*Post
}

// NewInMemoryRepository creates an empty in-memory post repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		posts: make(map[string]*Post),
	}
}

// Create inserts a new post with a generated UUID and zeroed vote state.
func (r *InMemoryRepository) Create(_ context.Context, p *Post) (*Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := p.clone()
	stored.ID = uuid.New().String()
	stored.CreatedAt = time.Now().UTC()
	stored.UpvoteCount = 0
	stored.DownvoteCount = 0
	stored.Karma = 0

	r.posts[stored.ID] = stored
	return stored.clone(), nil
}

// GetByID retrieves a post snapshot by ID.
func (r *InMemoryRepository) GetByID(_ context.Context, id string) (*Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.posts[id]
	if !ok {
		return nil, ErrPostNotFound
	}
	return p.clone(), nil
}

// List retrieves post snapshots ordered by created_at DESC, id ASC.
func (r *InMemoryRepository) List(_ context.Context, skip, limit int) ([]*Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if skip < 0 {
		skip = 0
	}
	if limit < 0 {
		limit = 0
	}

	candidates := make([]*Post, 0, len(r.posts))
	for _, p := range r.posts {
		candidates = append(candidates, p)
	}
	sortPostsByCreatedDesc(candidates)

	if skip >= len(candidates) {
		return []*Post{}, nil
	}
	candidates = candidates[skip:]
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	results := make([]*Post, len(candidates))
	for i, p := range candidates {
		results[i] = p.clone()
	}
	return results, nil
}

// Save persists updated post fields.
func (r *InMemoryRepository) Save(_ context.Context, p *Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.posts[p.ID]
	if !ok {
		return ErrPostNotFound
	}

	// ID and CreatedAt are immutable; everything else follows the snapshot.
	updated := p.clone()
	updated.CreatedAt = existing.CreatedAt
	r.posts[p.ID] = updated
	return nil
}

// Delete removes a post.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[id]; !ok {
		return ErrPostNotFound
	}
	delete(r.posts, id)
	return nil
}

// sortPostsByCreatedDesc sorts posts by created_at DESC, then by ID ASC for
// tie-breaking, giving a stable feed order.
func sortPostsByCreatedDesc(posts []*Post) {
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].CreatedAt.After(posts[j].CreatedAt) {
			return true
		}
		if posts[i].CreatedAt.Before(posts[j].CreatedAt) {
			return false
		}
		return posts[i].ID < posts[j].ID
	})
}
