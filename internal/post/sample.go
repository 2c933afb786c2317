package post

import (
	"context"
	"fmt"
	"time"

	"github.com/alivegrid/alivegrid/internal/geo"
)

// SampleData returns a small set of seed reports for local development when
// no database is configured. Vote counts come pre-populated so the feed has
// popularity signal to rank on out of the box.
func SampleData() []*Post {
	base := time.Now().UTC().Add(-12 * time.Hour)
	blr := geo.Coordinate{Lat: 12.9716, Lng: 77.5946}

	seeds := []*Post{
		{
			Title:         "Heavy Traffic on MG Road",
			Description:   "Heavy traffic on MG Road near Brigade Road junction. Avoid this route if possible.",
			Username:      "traffic_reporter",
			UserID:        "user_123",
			UpvoteCount:   15,
			DownvoteCount: 2,
			Category:      &Category{Location: "traffic", Condition: "road"},
		},
		{
			Title:         "Rain Alert - Bangalore",
			Description:   "Heavy rainfall is expected in Bangalore today. Carry umbrellas and expect delays.",
			Username:      "weather_watcher",
			UserID:        "user_456",
			UpvoteCount:   23,
			DownvoteCount: 1,
			Category:      &Category{Location: "weather", Condition: "rain"},
		},
		{
			Title:         "Waterlogging near Silk Board",
			Description:   "Underpass at Silk Board junction is waterlogged after the morning downpour.",
			Username:      "commute_alerts",
			UserID:        "user_789",
			UpvoteCount:   45,
			DownvoteCount: 3,
			Category:      &Category{Location: "road", Condition: "flooding"},
		},
		{
			Title:         "Power Cut in Koramangala",
			Description:   "Scheduled maintenance has cut power across Koramangala 4th block until evening.",
			Username:      "grid_watch",
			UserID:        "user_101",
			UpvoteCount:   8,
			DownvoteCount: 0,
			Category:      &Category{Location: "koramangala", Condition: "outage"},
		},
		{
			Title:         "Fallen Tree on Old Airport Road",
			Description:   "A tree has fallen across one lane on Old Airport Road near Domlur. Traffic moving slowly.",
			Username:      "city_eyes",
			UserID:        "user_202",
			UpvoteCount:   31,
			DownvoteCount: 2,
			Category:      &Category{Location: "domlur", Condition: "obstruction"},
		},
	}

	for i, p := range seeds {
		loc := blr
		p.Geolocation = &loc
		p.CreatedAt = base.Add(time.Duration(i) * time.Hour)
	}
	return seeds
}

// Seed loads posts into a repository, preserving their vote counts by saving
// after create. Used by cmd/api when running on the in-memory store.
func Seed(ctx context.Context, repo Repository, posts []*Post) error {
	for _, p := range posts {
		created, err := repo.Create(ctx, p)
		if err != nil {
			return fmt.Errorf("seed create: %w", err)
		}
		created.UpvoteCount = p.UpvoteCount
		created.DownvoteCount = p.DownvoteCount
		created.Karma = p.Karma
		if err := repo.Save(ctx, created); err != nil {
			return fmt.Errorf("seed save: %w", err)
		}
	}
	return nil
}
