package vote

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alivegrid/alivegrid/internal/post"
)

// Ledger coordinates vote state transitions: it owns the (post, user) vote
// records, keeps a post's counters consistent with them, and recomputes
// karma after every transition.
//
// Concurrent votes on the same post are serialized by a per-post mutex so
// each CastVote is one logical read-modify-write against the post
// repository.
type Ledger struct {
	posts post.Repository
	votes Repository

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLedger creates a vote ledger over the given post and vote stores.
func NewLedger(posts post.Repository, votes Repository) *Ledger {
	return &Ledger{
		posts: posts,
		votes: votes,
		locks: make(map[string]*sync.Mutex),
	}
}

// postLock returns the mutex serializing mutations for one post.
func (l *Ledger) postLock(postID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[postID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[postID] = lock
	}
	return lock
}

// CastVote records a user's vote on a post and returns the post's updated
// karma.
//
// Transitions:
//   - no prior vote: the matching counter is incremented.
//   - prior vote of a different type: the old counter is decremented and the
//     new one incremented — a user contributes to exactly one counter.
//   - prior vote of the same type: counters are untouched (idempotent); the
//     vote record's timestamp is refreshed.
//
// Returns post.ErrPostNotFound for an unknown post and ErrInvalidVoteType
// for a vote type outside {upvote, downvote}. Re-voting is a normal state
// transition, never an error.
func (l *Ledger) CastVote(ctx context.Context, postID, userID string, t Type) (float64, error) {
	if _, err := ParseType(string(t)); err != nil {
		return 0, err
	}

	lock := l.postLock(postID)
	lock.Lock()
	defer lock.Unlock()

	p, err := l.posts.GetByID(ctx, postID)
	if err != nil {
		return 0, err
	}

	prior, hasPrior, err := l.votes.Get(ctx, postID, userID)
	if err != nil {
		return 0, fmt.Errorf("read vote: %w", err)
	}

	record := Vote{
		PostID:    postID,
		UserID:    userID,
		Type:      t,
		CreatedAt: time.Now().UTC(),
	}

	if hasPrior && prior.Type == t {
		// Repeated identical vote: counters stay put, no double counting.
		if err := l.votes.Put(ctx, record); err != nil {
			return 0, fmt.Errorf("write vote: %w", err)
		}
		return p.Karma, nil
	}

	if hasPrior {
		switch prior.Type {
		case Upvote:
			p.UpvoteCount--
		case Downvote:
			p.DownvoteCount--
		}
		// Counters can only drift negative if the stores disagree; clamp and
		// log rather than persisting a negative count.
		if p.UpvoteCount < 0 || p.DownvoteCount < 0 {
			slog.Warn("vote counters out of sync with ledger, clamping",
				"post_id", postID,
				"upvotes", p.UpvoteCount,
				"downvotes", p.DownvoteCount)
			p.UpvoteCount = max(p.UpvoteCount, 0)
			p.DownvoteCount = max(p.DownvoteCount, 0)
		}
	}

	switch t {
	case Upvote:
		p.UpvoteCount++
	case Downvote:
		p.DownvoteCount++
	}

	p.Karma = Karma(p.UpvoteCount)

	if err := l.votes.Put(ctx, record); err != nil {
		return 0, fmt.Errorf("write vote: %w", err)
	}
	if err := l.posts.Save(ctx, p); err != nil {
		return 0, fmt.Errorf("persist vote counts: %w", err)
	}

	return p.Karma, nil
}

// DeletePost removes a post together with its vote records.
func (l *Ledger) DeletePost(ctx context.Context, postID string) error {
	lock := l.postLock(postID)
	lock.Lock()
	defer lock.Unlock()

	if err := l.posts.Delete(ctx, postID); err != nil {
		return err
	}
	if err := l.votes.DeleteByPost(ctx, postID); err != nil {
		return fmt.Errorf("delete votes: %w", err)
	}

	l.mu.Lock()
	delete(l.locks, postID)
	l.mu.Unlock()

	return nil
}
