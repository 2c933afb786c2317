package ranking

import (
	"math"
	"time"

	"github.com/alivegrid/alivegrid/internal/geo"
)

// NeutralScore is the sub-score used when a signal is absent: posts without
// a location, without votes, or without a parseable timestamp are neither
// penalized nor boosted.
const NeutralScore = 0.5

// locationDecayKm is the characteristic scale of the location score's
// exponential decay. Nearby posts dominate while distant ones are never
// fully zeroed.
const locationDecayKm = 10.0

// popularityCeiling is the soft upvote ceiling: log(1+upvotes) is normalized
// so that 99 upvotes reach a popularity score of 1.0.
const popularityCeiling = 100.0

// recencyHalfLifeHours controls the recency decay; a post exactly 24 hours
// old scores exp(-1) ≈ 0.368, favoring same-day reports.
const recencyHalfLifeHours = 24.0

// LocationScore computes the proximity sub-score of a post location against
// the requester's coordinate: exp(-d/10) over the great-circle distance d in
// kilometers, clamped to [0, 1].
//
// A missing or invalid post location yields NeutralScore. The requester
// coordinate is assumed validated by the caller; if it is somehow invalid
// the post degrades to NeutralScore rather than failing the batch.
func LocationScore(postLoc *geo.Coordinate, requester geo.Coordinate) float64 {
	if postLoc == nil {
		return NeutralScore
	}
	d, err := geo.Distance(requester, *postLoc)
	if err != nil {
		return NeutralScore
	}
	return clamp01(math.Exp(-d / locationDecayKm))
}

// PopularityScore computes the vote sub-score: log(1+upvotes)/log(100),
// clamped to [0, 1]. Posts with no votes at all score NeutralScore so that
// fresh reports are not buried under voted ones.
func PopularityScore(upvotes, downvotes int) float64 {
	if upvotes < 0 {
		upvotes = 0
	}
	if downvotes < 0 {
		downvotes = 0
	}
	if upvotes+downvotes == 0 {
		return NeutralScore
	}
	return clamp01(math.Log(1+float64(upvotes)) / math.Log(popularityCeiling))
}

// RecencyScore computes the age sub-score: exp(-ageHours/24), clamped to
// [0, 1]. A zero createdAt (missing or unparseable upstream) yields
// NeutralScore; a future timestamp clamps to 1.
func RecencyScore(createdAt, now time.Time) float64 {
	if createdAt.IsZero() {
		return NeutralScore
	}
	ageHours := now.Sub(createdAt).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	return clamp01(math.Exp(-ageHours / recencyHalfLifeHours))
}

// CompositeScore combines the three sub-scores with the given weights.
func CompositeScore(location, popularity, recency float64, w *Weights) float64 {
	if w == nil {
		w = DefaultWeights()
	}
	return location*w.Location + popularity*w.Popularity + recency*w.Recency
}

// clamp01 clamps a score to [0.0, 1.0]. The formulas stay in range
// analytically; this guards the floating point edges.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
