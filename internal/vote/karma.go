package vote

import "math"

// Karma derives a post's karma score from its upvote count using a
// diminishing-returns series:
//
//	karma = Σ 1/√i for i in 1..upvotes, 0 when upvotes <= 0
//
// Early votes are worth the most (the first is worth 1.0, the fourth 0.5),
// so the score rewards early momentum while resisting runaway popularity:
// 100 upvotes yield ~18.6 karma, not 100. Downvotes do not feed karma; they
// only dilute the popularity score at feed-ranking time.
func Karma(upvotes int) float64 {
	if upvotes <= 0 {
		return 0
	}
	karma := 0.0
	for i := 1; i <= upvotes; i++ {
		karma += 1 / math.Sqrt(float64(i))
	}
	return karma
}
