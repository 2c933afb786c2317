package ranking

import (
	"sort"
	"time"

	"github.com/alivegrid/alivegrid/internal/geo"
	"github.com/alivegrid/alivegrid/internal/post"
)

// Reranker reorders feed pages by relevance for a requesting user. It is
// stateless apart from its weight configuration and safe for concurrent use.
type Reranker struct {
	weights *Weights
	now     func() time.Time
}

// NewReranker creates a Reranker with the given weights (nil uses defaults).
func NewReranker(w *Weights) *Reranker {
	if w == nil {
		w = DefaultWeights()
	}
	return &Reranker{weights: w, now: time.Now}
}

// Rerank returns the posts reordered descending by composite relevance score
// against the requester's coordinate. The result is a pure permutation of
// the input: nothing is added, dropped, or mutated. Ties break by original
// input position, so reranking the same input twice yields the same order.
//
// Per-post scoring problems (missing location, zero timestamp) degrade that
// post's sub-score to neutral; they never abort the batch. Validating the
// requester coordinate is the caller's responsibility — an invalid one means
// the caller should skip reranking entirely.
func (r *Reranker) Rerank(posts []*post.Post, requester geo.Coordinate) []*post.Post {
	if len(posts) <= 1 {
		out := make([]*post.Post, len(posts))
		copy(out, posts)
		return out
	}

	now := r.now().UTC()

	type scored struct {
		post  *post.Post
		score float64
		index int
	}

	candidates := make([]scored, len(posts))
	for i, p := range posts {
		location := LocationScore(p.Geolocation, requester)
		popularity := PopularityScore(p.UpvoteCount, p.DownvoteCount)
		recency := RecencyScore(p.CreatedAt, now)

		candidates[i] = scored{
			post:  p,
			score: CompositeScore(location, popularity, recency, r.weights),
			index: i,
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		// Deterministic tie-break: original input position.
		return candidates[i].index < candidates[j].index
	})

	out := make([]*post.Post, len(candidates))
	for i, c := range candidates {
		out[i] = c.post
	}
	return out
}
