package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alivegrid/alivegrid/internal/geo"
	"github.com/alivegrid/alivegrid/internal/post"
	"github.com/alivegrid/alivegrid/internal/ranking"
	"github.com/alivegrid/alivegrid/internal/vote"
)

// testServer bundles the handler stack with direct store access for seeding.
type testServer struct {
	mux    *http.ServeMux
	posts  *post.InMemoryRepository
	ledger *vote.Ledger
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	posts := post.NewInMemoryRepository()
	votes := vote.NewInMemoryRepository()
	ledger := vote.NewLedger(posts, votes)

	h := &Handlers{
		Posts:  NewPostHandlers(posts, ledger, nil),
		Feed:   NewFeedHandlers(posts, ranking.NewReranker(nil)),
		Votes:  NewVoteHandlers(ledger),
		Health: NewHealthHandlers(),
	}

	mux := http.NewServeMux()
	h.Register(mux)

	return &testServer{mux: mux, posts: posts, ledger: ledger}
}

func (s *testServer) seedPost(t *testing.T, title string, loc *geo.Coordinate) *post.Post {
	t.Helper()

	// Keep CreatedAt strictly increasing so feed-order assertions are
	// deterministic.
	time.Sleep(time.Millisecond)

	created, err := s.posts.Create(context.Background(), &post.Post{
		Title:       title,
		Description: "seeded report",
		Username:    "seed_user",
		Geolocation: loc,
	})
	if err != nil {
		t.Fatalf("failed to seed post: %v", err)
	}
	return created
}

func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v (body %q)", err, w.Body.String())
	}
	return resp
}
