package api

import (
	"net/http"
	"strings"
)

// Handlers bundles the HTTP surface for route registration.
type Handlers struct {
	Posts  *PostHandlers
	Feed   *FeedHandlers
	Votes  *VoteHandlers
	Health *HealthHandlers
}

// Register wires all routes onto the mux. Method dispatch happens inside the
// handlers because ServeMux patterns here match by path prefix only.
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("/posts", h.handlePostCollection)
	mux.HandleFunc("/posts/", h.handlePostSubtree)
	mux.HandleFunc("/health", h.Health.Health)
	mux.HandleFunc("/ready", h.Health.Ready)
}

// handlePostCollection serves /posts: GET lists, POST creates.
func (h *Handlers) handlePostCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.Posts.List(w, r)
	case http.MethodPost:
		h.Posts.Create(w, r)
	default:
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
	}
}

// handlePostSubtree dispatches everything under /posts/: the short and long
// feeds, single-post operations, and voting.
func (h *Handlers) handlePostSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/posts/"), "/")
	parts := strings.Split(rest, "/")

	switch {
	case len(parts) == 1 && parts[0] == "short":
		h.requireGet(w, r, h.Feed.Short)
	case len(parts) == 1 && parts[0] == "long":
		h.requireGet(w, r, h.Feed.Long)
	case len(parts) == 1 && parts[0] != "":
		h.handleSinglePost(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "vote":
		if r.Method != http.MethodPost {
			WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
			return
		}
		h.Votes.Cast(w, r, parts[0])
	default:
		WriteError(w, r, http.StatusNotFound, ErrCodeNotFound, "Not found")
	}
}

func (h *Handlers) handleSinglePost(w http.ResponseWriter, r *http.Request, postID string) {
	switch r.Method {
	case http.MethodGet:
		h.Posts.Get(w, r, postID)
	case http.MethodDelete:
		h.Posts.Delete(w, r, postID)
	default:
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
	}
}

func (h *Handlers) requireGet(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	if r.Method != http.MethodGet {
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
		return
	}
	next(w, r)
}
