// Package ranking scores and reorders civic reports by relevance to a
// requesting user. Each post gets three independent sub-scores in [0, 1] —
// location proximity, vote popularity, and recency — combined with fixed
// calibrated weights. Scoring is a pure function of its inputs: no I/O, no
// mutation of the candidate posts, safe for concurrent use.
package ranking
