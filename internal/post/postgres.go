package post

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alivegrid/alivegrid/internal/geo"
	"github.com/alivegrid/alivegrid/internal/tracing"
)

// PostgresRepository is a Repository backed by PostgreSQL.
// Schema lives in migrations/000001_create_posts.up.sql.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a Postgres-backed post repository.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const postColumns = `id, title, description, username, user_id, image_url,
	lat, lng, upvote_count, downvote_count, karma,
	category_location, category_condition, created_at`

// Create inserts a new post with a generated UUID and zeroed vote state.
func (r *PostgresRepository) Create(ctx context.Context, p *Post) (created *Post, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "posts", tracing.DBOperationInsert)
	defer func() { endSpan(err) }()

	stored := p.clone()
	stored.ID = uuid.New().String()
	stored.CreatedAt = time.Now().UTC()
	stored.UpvoteCount = 0
	stored.DownvoteCount = 0
	stored.Karma = 0

	var lat, lng sql.NullFloat64
	if stored.Geolocation != nil {
		lat = sql.NullFloat64{Float64: stored.Geolocation.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: stored.Geolocation.Lng, Valid: true}
	}
	var catLoc, catCond sql.NullString
	if stored.Category != nil {
		catLoc = sql.NullString{String: stored.Category.Location, Valid: true}
		catCond = sql.NullString{String: stored.Category.Condition, Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO posts (id, title, description, username, user_id, image_url,
			lat, lng, upvote_count, downvote_count, karma,
			category_location, category_condition, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		stored.ID, stored.Title, stored.Description, stored.Username, stored.UserID,
		stored.ImageURL, lat, lng, stored.UpvoteCount, stored.DownvoteCount,
		stored.Karma, catLoc, catCond, stored.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	return stored, nil
}

// GetByID retrieves a post by ID.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (p *Post, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "posts", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	row := r.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = $1`, id)

	p, err = scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

// List retrieves posts ordered by created_at DESC, id ASC.
func (r *PostgresRepository) List(ctx context.Context, skip, limit int) (posts []*Post, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "posts", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	if skip < 0 {
		skip = 0
	}
	if limit < 0 {
		limit = 0
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts
		 ORDER BY created_at DESC, id ASC
		 OFFSET $1 LIMIT $2`, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts = []*Post{}
	for rows.Next() {
		p, scanErr := scanPost(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan post: %w", scanErr)
		}
		posts = append(posts, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// Save persists updated mutable post fields.
func (r *PostgresRepository) Save(ctx context.Context, p *Post) (err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "posts", tracing.DBOperationUpdate)
	defer func() { endSpan(err) }()

	var lat, lng sql.NullFloat64
	if p.Geolocation != nil {
		lat = sql.NullFloat64{Float64: p.Geolocation.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: p.Geolocation.Lng, Valid: true}
	}
	var catLoc, catCond sql.NullString
	if p.Category != nil {
		catLoc = sql.NullString{String: p.Category.Location, Valid: true}
		catCond = sql.NullString{String: p.Category.Condition, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE posts SET title = $2, description = $3, username = $4,
			image_url = $5, lat = $6, lng = $7,
			upvote_count = $8, downvote_count = $9, karma = $10,
			category_location = $11, category_condition = $12
		WHERE id = $1`,
		p.ID, p.Title, p.Description, p.Username, p.ImageURL, lat, lng,
		p.UpvoteCount, p.DownvoteCount, p.Karma, catLoc, catCond,
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if n == 0 {
		return ErrPostNotFound
	}
	return nil
}

// Delete removes a post. Votes cascade via the schema's foreign key.
func (r *PostgresRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "posts", tracing.DBOperationDelete)
	defer func() { endSpan(err) }()

	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if n == 0 {
		return ErrPostNotFound
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPost(s scanner) (*Post, error) {
	var (
		post            Post
		createdAt       time.Time
		lat, lng        sql.NullFloat64
		imageURL        sql.NullString
		catLoc, catCond sql.NullString
	)
	err := s.Scan(
		&post.ID, &post.Title, &post.Description, &post.Username, &post.UserID,
		&imageURL, &lat, &lng, &post.UpvoteCount, &post.DownvoteCount,
		&post.Karma, &catLoc, &catCond, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	post.CreatedAt = createdAt.UTC()
	post.ImageURL = imageURL.String
	if lat.Valid && lng.Valid {
		post.Geolocation = &geo.Coordinate{Lat: lat.Float64, Lng: lng.Float64}
	}
	if catLoc.Valid || catCond.Valid {
		post.Category = &Category{Location: catLoc.String, Condition: catCond.String}
	}
	return &post, nil
}
