package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/alivegrid/alivegrid/internal/geo"
	"github.com/alivegrid/alivegrid/internal/post"
)

func TestCreatePost(t *testing.T) {
	lat, lng := 40.7128, -74.006

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{
			name: "valid post with location",
			body: map[string]any{
				"title":       "Flooding on 5th Avenue",
				"description": "Water covering both lanes near the park entrance",
				"username":    "ward_watch",
				"latitude":    lat,
				"longitude":   lng,
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "valid post without location",
			body: map[string]any{
				"title": "Streetlight out on Main",
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "empty title rejected",
			body:       map[string]any{"title": "", "username": "ward_watch"},
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeValidation,
		},
		{
			name: "invalid username rejected",
			body: map[string]any{
				"title":    "Pothole cluster",
				"username": "not a valid handle!",
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeValidation,
		},
		{
			name: "latitude without longitude rejected",
			body: map[string]any{
				"title":    "Pothole cluster",
				"latitude": lat,
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeValidation,
		},
		{
			name: "out-of-range latitude rejected",
			body: map[string]any{
				"title":     "Pothole cluster",
				"latitude":  91.0,
				"longitude": lng,
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeValidation,
		},
		{
			name: "private image URL rejected",
			body: map[string]any{
				"title":     "Pothole cluster",
				"image_url": "http://192.168.1.10/image.jpg",
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t)
			w := srv.do(http.MethodPost, "/posts", tt.body)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantCode != "" {
				if resp := decodeError(t, w); resp.Error.Code != tt.wantCode {
					t.Errorf("error code = %q, want %q", resp.Error.Code, tt.wantCode)
				}
			}
		})
	}
}

func TestCreatePost_Defaults(t *testing.T) {
	srv := newTestServer(t)
	w := srv.do(http.MethodPost, "/posts", map[string]any{
		"title": "Water main break on Elm",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, http.StatusCreated, w.Body.String())
	}

	var created post.Post
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode created post: %v", err)
	}
	if created.ID == "" {
		t.Error("created post has no ID")
	}
	if created.Username != "anonymous" {
		t.Errorf("username = %q, want anonymous", created.Username)
	}
	if created.UpvoteCount != 0 || created.DownvoteCount != 0 || created.Karma != 0 {
		t.Errorf("vote state not zeroed: up=%d down=%d karma=%v",
			created.UpvoteCount, created.DownvoteCount, created.Karma)
	}
	if created.CreatedAt.IsZero() {
		t.Error("created_at not assigned")
	}
	// The static classifier files everything as general information.
	if created.Category == nil || created.Category.Location != "general" || created.Category.Condition != "information" {
		t.Errorf("category = %+v, want general/information", created.Category)
	}
}

func TestCreatePost_InvalidJSON(t *testing.T) {
	srv := newTestServer(t)

	// Empty body: the decoder hits EOF before any JSON value.
	w := srv.do(http.MethodPost, "/posts", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if resp := decodeError(t, w); resp.Error.Code != ErrCodeBadRequest {
		t.Errorf("error code = %q, want %q", resp.Error.Code, ErrCodeBadRequest)
	}
}

func TestGetPost(t *testing.T) {
	srv := newTestServer(t)
	seeded := srv.seedPost(t, "Downed power line", &geo.Coordinate{Lat: 40.7, Lng: -74.0})

	w := srv.do(http.MethodGet, "/posts/"+seeded.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var got post.Post
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode post: %v", err)
	}
	if got.ID != seeded.ID || got.Title != seeded.Title {
		t.Errorf("got %q/%q, want %q/%q", got.ID, got.Title, seeded.ID, seeded.Title)
	}
}

func TestGetPost_NotFound(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(http.MethodGet, "/posts/does-not-exist", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if resp := decodeError(t, w); resp.Error.Code != ErrCodeNotFound {
		t.Errorf("error code = %q, want %q", resp.Error.Code, ErrCodeNotFound)
	}
}

func TestDeletePost(t *testing.T) {
	srv := newTestServer(t)
	seeded := srv.seedPost(t, "Resolved: gas leak on Oak", nil)

	w := srv.do(http.MethodDelete, "/posts/"+seeded.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNoContent)
	}

	w = srv.do(http.MethodGet, "/posts/"+seeded.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("post still retrievable after delete, status = %d", w.Code)
	}
}

func TestDeletePost_NotFound(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(http.MethodDelete, "/posts/does-not-exist", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestListPosts(t *testing.T) {
	srv := newTestServer(t)
	srv.seedPost(t, "First report", nil)
	srv.seedPost(t, "Second report", nil)
	srv.seedPost(t, "Third report", nil)

	w := srv.do(http.MethodGet, "/posts?limit=2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp struct {
		Posts []*post.Post `json:"posts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(resp.Posts) != 2 {
		t.Errorf("got %d posts, want 2", len(resp.Posts))
	}
}

func TestPostRoutes_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)
	seeded := srv.seedPost(t, "Some report", nil)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPut, "/posts"},
		{http.MethodPut, "/posts/" + seeded.ID},
		{http.MethodGet, "/posts/" + seeded.ID + "/vote"},
		{http.MethodPost, "/posts/short"},
		{http.MethodDelete, "/posts/long"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := srv.do(tt.method, tt.path, nil)
			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
			}
		})
	}
}

func TestPostSubtree_UnknownRoute(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(http.MethodGet, "/posts/123/unknown", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
