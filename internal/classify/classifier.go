// Package classify defines the boundary to the external report classifier.
// The real classifier is a hosted language-model service; the platform only
// consumes its output as two opaque category strings.
package classify

import (
	"context"

	"github.com/alivegrid/alivegrid/internal/post"
)

// Classifier assigns a (location, condition) category pair to a report.
// Implementations may call out to an external service; errors mean the
// report goes uncategorized, never that creation fails.
type Classifier interface {
	Categorize(ctx context.Context, title, description string) (post.Category, error)
}

// Static is the fallback classifier used when no external service is
// configured. It mirrors the platform's behavior with categorization
// disabled: every report is filed as general information.
type Static struct{}

// Categorize returns the fixed fallback category pair.
func (Static) Categorize(_ context.Context, _, _ string) (post.Category, error) {
	return post.Category{Location: "general", Condition: "information"}, nil
}
