package vote

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alivegrid/alivegrid/internal/tracing"
)

// PostgresRepository is a vote ledger store backed by PostgreSQL.
// Schema lives in migrations/000002_create_votes.up.sql.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a Postgres-backed vote store.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get returns the user's active vote on a post.
func (r *PostgresRepository) Get(ctx context.Context, postID, userID string) (v Vote, ok bool, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "votes", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	row := r.db.QueryRowContext(ctx, `
		SELECT post_id, user_id, vote_type, created_at
		FROM votes WHERE post_id = $1 AND user_id = $2`,
		postID, userID)

	var rawType string
	err = row.Scan(&v.PostID, &v.UserID, &rawType, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Vote{}, false, nil
	}
	if err != nil {
		return Vote{}, false, fmt.Errorf("get vote: %w", err)
	}
	v.Type = Type(rawType)
	v.CreatedAt = v.CreatedAt.UTC()
	return v, true, nil
}

// Put inserts or replaces the user's vote on a post.
func (r *PostgresRepository) Put(ctx context.Context, v Vote) (err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "votes", tracing.DBOperationInsert)
	defer func() { endSpan(err) }()

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO votes (post_id, user_id, vote_type, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (post_id, user_id)
		DO UPDATE SET vote_type = EXCLUDED.vote_type, created_at = EXCLUDED.created_at`,
		v.PostID, v.UserID, string(v.Type), v.CreatedAt)
	if err != nil {
		return fmt.Errorf("put vote: %w", err)
	}
	return nil
}

// DeleteByPost removes all votes for a post.
func (r *PostgresRepository) DeleteByPost(ctx context.Context, postID string) (err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "votes", tracing.DBOperationDelete)
	defer func() { endSpan(err) }()

	if _, err = r.db.ExecContext(ctx, `DELETE FROM votes WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("delete votes: %w", err)
	}
	return nil
}
