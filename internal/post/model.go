// Package post provides the report model and repositories for the
// civic-alert feed.
package post

import (
	"errors"
	"time"

	"github.com/alivegrid/alivegrid/internal/geo"
)

// Common errors for post operations.
var (
	ErrPostNotFound = errors.New("post not found")
)

// Category is the pair of labels assigned by the external classifier:
// a location category and a condition category. Both are opaque strings;
// the platform never interprets them.
type Category struct {
	Location  string `json:"location"`
	Condition string `json:"condition"`
}

// Post is a location-tagged civic report.
//
// UpvoteCount, DownvoteCount and Karma are owned by the vote ledger and are
// never set directly by clients. CreatedAt is assigned at creation and
// immutable; it serializes as RFC 3339 UTC.
type Post struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Username    string          `json:"username"`
	UserID      string          `json:"user_id"`
	ImageURL    string          `json:"image_url,omitempty"`
	Geolocation *geo.Coordinate `json:"geolocation,omitempty"`

	UpvoteCount   int     `json:"upvote_count"`
	DownvoteCount int     `json:"downvote_count"`
	Karma         float64 `json:"karma"`

	Category *Category `json:"category,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// HasLocation reports whether the post carries a valid geolocation.
// Posts without one still rank, with a neutral location score.
func (p *Post) HasLocation() bool {
	return p.Geolocation != nil && p.Geolocation.Validate() == nil
}

// DisplayGeohash returns the coarse geohash for public map display, or an
// empty string when the post has no valid location.
func (p *Post) DisplayGeohash() string {
	if !p.HasLocation() {
		return ""
	}
	return geo.Encode(*p.Geolocation, geo.DisplayPrecision)
}

// clone returns a deep copy so repository callers can never mutate stored
// records.
func (p *Post) clone() *Post {
	cp := *p
	if p.Geolocation != nil {
		loc := *p.Geolocation
		cp.Geolocation = &loc
	}
	if p.Category != nil {
		cat := *p.Category
		cp.Category = &cat
	}
	return &cp
}
