package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alivegrid/alivegrid/internal/middleware"
	"github.com/alivegrid/alivegrid/internal/post"
	"github.com/alivegrid/alivegrid/internal/vote"
)

// VoteHandlers serves POST /posts/{id}/vote.
type VoteHandlers struct {
	ledger *vote.Ledger
}

// NewVoteHandlers creates vote handlers over the given ledger.
func NewVoteHandlers(ledger *vote.Ledger) *VoteHandlers {
	return &VoteHandlers{ledger: ledger}
}

type voteRequest struct {
	UserID   string `json:"user_id"`
	VoteType string `json:"vote_type"`
}

type voteResponse struct {
	Karma float64 `json:"karma"`
}

// Cast records a vote and returns the post's updated karma.
func (h *VoteHandlers) Cast(w http.ResponseWriter, r *http.Request, postID string) {
	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	// Authenticated requests vote as themselves; the body field covers
	// anonymous device-scoped voting.
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		userID = req.UserID
	}
	if userID == "" {
		WriteError(w, r, http.StatusBadRequest, ErrCodeValidation, "user_id is required")
		return
	}

	karma, err := h.ledger.CastVote(r.Context(), postID, userID, vote.Type(req.VoteType))
	if err != nil {
		switch {
		case errors.Is(err, vote.ErrInvalidVoteType):
			WriteError(w, r, http.StatusBadRequest, ErrCodeInvalidVoteType, "vote_type must be \"upvote\" or \"downvote\"")
		case errors.Is(err, post.ErrPostNotFound):
			WriteError(w, r, http.StatusNotFound, ErrCodeNotFound, "Post not found")
		default:
			slog.ErrorContext(r.Context(), "failed to cast vote", "post_id", postID, "error", err)
			WriteError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to cast vote")
		}
		return
	}

	writeJSON(w, r, http.StatusOK, voteResponse{Karma: karma})
}
