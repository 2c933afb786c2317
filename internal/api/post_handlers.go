package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alivegrid/alivegrid/internal/classify"
	"github.com/alivegrid/alivegrid/internal/geo"
	"github.com/alivegrid/alivegrid/internal/middleware"
	"github.com/alivegrid/alivegrid/internal/post"
	"github.com/alivegrid/alivegrid/internal/validate"
	"github.com/alivegrid/alivegrid/internal/vote"
)

// PostHandlers serves post CRUD operations.
type PostHandlers struct {
	posts      post.Repository
	ledger     *vote.Ledger
	classifier classify.Classifier
}

// NewPostHandlers creates post handlers over the given stores. A nil
// classifier falls back to the static one.
func NewPostHandlers(posts post.Repository, ledger *vote.Ledger, classifier classify.Classifier) *PostHandlers {
	if classifier == nil {
		classifier = classify.Static{}
	}
	return &PostHandlers{
		posts:      posts,
		ledger:     ledger,
		classifier: classifier,
	}
}

// createPostRequest is the body for POST /posts. Latitude and longitude are
// pointers so "absent" and "zero" stay distinguishable; a report on the
// equator is a valid report.
type createPostRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Username    string         `json:"username"`
	ImageURL    string         `json:"image_url"`
	Latitude    *float64       `json:"latitude"`
	Longitude   *float64       `json:"longitude"`
	Category    *post.Category `json:"category"`
}

// Create handles POST /posts.
func (h *PostHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	title, err := validate.PostTitle(req.Title)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, ErrCodeValidation, "Invalid title: "+err.Error())
		return
	}

	description, err := validate.Description(req.Description)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, ErrCodeValidation, "Invalid description: "+err.Error())
		return
	}

	// Anonymous reports are allowed; named ones must pass handle validation.
	username := "anonymous"
	if req.Username != "" {
		username, err = validate.Username(req.Username)
		if err != nil {
			WriteError(w, r, http.StatusBadRequest, ErrCodeValidation, "Invalid username: "+err.Error())
			return
		}
	}

	imageURL := ""
	if req.ImageURL != "" {
		imageURL, err = validate.ImageURL(req.ImageURL)
		if err != nil {
			WriteError(w, r, http.StatusBadRequest, ErrCodeValidation, "Invalid image_url: "+err.Error())
			return
		}
	}

	var location *geo.Coordinate
	switch {
	case req.Latitude == nil && req.Longitude == nil:
		// Location is optional.
	case req.Latitude == nil || req.Longitude == nil:
		WriteError(w, r, http.StatusBadRequest, ErrCodeValidation, "latitude and longitude must be provided together")
		return
	default:
		c := geo.Coordinate{Lat: *req.Latitude, Lng: *req.Longitude}
		if err := c.Validate(); err != nil {
			WriteError(w, r, http.StatusBadRequest, ErrCodeValidation, "Invalid coordinates: "+err.Error())
			return
		}
		location = &c
	}

	category := req.Category
	if category == nil {
		cat, err := h.classifier.Categorize(r.Context(), title, description)
		if err != nil {
			// Classification is best-effort; the report still gets created.
			slog.WarnContext(r.Context(), "classifier unavailable, post created uncategorized", "error", err)
		} else {
			category = &cat
		}
	}

	created, err := h.posts.Create(r.Context(), &post.Post{
		Title:       title,
		Description: description,
		Username:    username,
		UserID:      middleware.GetUserID(r.Context()),
		ImageURL:    imageURL,
		Geolocation: location,
		Category:    category,
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to create post", "error", err)
		WriteError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to create post")
		return
	}

	writeJSON(w, r, http.StatusCreated, created)
}

// Get handles GET /posts/{id}.
func (h *PostHandlers) Get(w http.ResponseWriter, r *http.Request, postID string) {
	p, err := h.posts.GetByID(r.Context(), postID)
	if err != nil {
		if errors.Is(err, post.ErrPostNotFound) {
			WriteError(w, r, http.StatusNotFound, ErrCodeNotFound, "Post not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to get post", "post_id", postID, "error", err)
		WriteError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to get post")
		return
	}

	writeJSON(w, r, http.StatusOK, p)
}

// Delete handles DELETE /posts/{id}. Votes are removed with the post.
func (h *PostHandlers) Delete(w http.ResponseWriter, r *http.Request, postID string) {
	if err := h.ledger.DeletePost(r.Context(), postID); err != nil {
		if errors.Is(err, post.ErrPostNotFound) {
			WriteError(w, r, http.StatusNotFound, ErrCodeNotFound, "Post not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to delete post", "post_id", postID, "error", err)
		WriteError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to delete post")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /posts: full posts in creation order, newest first.
func (h *PostHandlers) List(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := parsePagination(r)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	posts, err := h.posts.List(r.Context(), skip, limit)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list posts", "error", err)
		WriteError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to list posts")
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{"posts": posts})
}
