package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/alivegrid/alivegrid/internal/geo"
	"github.com/alivegrid/alivegrid/internal/post"
	"github.com/alivegrid/alivegrid/internal/ranking"
)

// Pagination bounds for the feed endpoints.
const (
	defaultFeedLimit = 10
	maxFeedLimit     = 100
)

// FeedHandlers serves the short and long post feeds, reranked by relevance
// when the requester shares a location.
type FeedHandlers struct {
	posts    post.Repository
	reranker *ranking.Reranker
}

// NewFeedHandlers creates feed handlers over the given repository and
// reranker.
func NewFeedHandlers(posts post.Repository, reranker *ranking.Reranker) *FeedHandlers {
	return &FeedHandlers{posts: posts, reranker: reranker}
}

// shortPost is the trimmed feed representation: enough for a card in the
// scrolling feed, nothing more. Geohash stands in for exact coordinates.
type shortPost struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Username      string         `json:"username"`
	ImageURL      string         `json:"image_url,omitempty"`
	Geohash       string         `json:"geohash,omitempty"`
	Category      *post.Category `json:"category,omitempty"`
	UpvoteCount   int            `json:"upvote_count"`
	DownvoteCount int            `json:"downvote_count"`
	Karma         float64        `json:"karma"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Short handles GET /posts/short.
func (h *FeedHandlers) Short(w http.ResponseWriter, r *http.Request) {
	posts, ok := h.feedPage(w, r)
	if !ok {
		return
	}

	items := make([]shortPost, len(posts))
	for i, p := range posts {
		items[i] = shortPost{
			ID:            p.ID,
			Title:         p.Title,
			Username:      p.Username,
			ImageURL:      p.ImageURL,
			Geohash:       p.DisplayGeohash(),
			Category:      p.Category,
			UpvoteCount:   p.UpvoteCount,
			DownvoteCount: p.DownvoteCount,
			Karma:         p.Karma,
			CreatedAt:     p.CreatedAt,
		}
	}

	writeJSON(w, r, http.StatusOK, map[string]any{"posts": items})
}

// Long handles GET /posts/long: the same page selection, full records.
func (h *FeedHandlers) Long(w http.ResponseWriter, r *http.Request) {
	posts, ok := h.feedPage(w, r)
	if !ok {
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{"posts": posts})
}

// feedPage loads one page of posts and reranks it when the request carries a
// valid requester location. On validation failure it writes the error
// response and returns ok=false.
func (h *FeedHandlers) feedPage(w http.ResponseWriter, r *http.Request) ([]*post.Post, bool) {
	skip, limit, err := parsePagination(r)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return nil, false
	}

	requester, err := parseRequesterLocation(r)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return nil, false
	}

	posts, err := h.posts.List(r.Context(), skip, limit)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list posts", "error", err)
		WriteError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to list posts")
		return nil, false
	}

	if requester != nil {
		posts = h.reranker.Rerank(posts, *requester)
	}
	return posts, true
}

// parsePagination reads skip (>= 0, default 0) and limit (1..100, default 10)
// from the query string.
func parsePagination(r *http.Request) (skip, limit int, err error) {
	skip, limit = 0, defaultFeedLimit
	q := r.URL.Query()

	if raw := q.Get("skip"); raw != "" {
		skip, err = strconv.Atoi(raw)
		if err != nil || skip < 0 {
			return 0, 0, errors.New("skip must be a non-negative integer")
		}
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxFeedLimit {
			return 0, 0, errors.New("limit must be an integer between 1 and 100")
		}
	}
	return skip, limit, nil
}

// parseRequesterLocation reads user_lat/user_lng. Both absent means no
// reranking; a half-specified or out-of-range coordinate is a client error,
// not something to silently ignore.
func parseRequesterLocation(r *http.Request) (*geo.Coordinate, error) {
	q := r.URL.Query()
	latRaw, lngRaw := q.Get("user_lat"), q.Get("user_lng")

	if latRaw == "" && lngRaw == "" {
		return nil, nil
	}
	if latRaw == "" || lngRaw == "" {
		return nil, errors.New("user_lat and user_lng must be provided together")
	}

	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil {
		return nil, errors.New("user_lat must be a number")
	}
	lng, err := strconv.ParseFloat(lngRaw, 64)
	if err != nil {
		return nil, errors.New("user_lng must be a number")
	}

	c := geo.Coordinate{Lat: lat, Lng: lng}
	if err := c.Validate(); err != nil {
		return nil, errors.New("user_lat must be in [-90, 90] and user_lng in [-180, 180]")
	}
	return &c, nil
}
