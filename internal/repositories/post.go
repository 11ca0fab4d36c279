package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dkotenko/social-feed/internal/logger"
	"github.com/dkotenko/social-feed/internal/models"
)

type PostReadRepository struct {
	db *sqlx.DB
}

func NewPostReadRepository(db *sqlx.DB) *PostReadRepository {
	return &PostReadRepository{db: db}
}

// GetByID returns the post joined with its author's display fields, or nil when
// absent. The password hash is never part of the projection.
func (r *PostReadRepository) GetByID(ctx context.Context, postID uuid.UUID) (*models.PostWithAuthor, error) {
	const query = `
		SELECT p.post_id, p.user_id, p.content, p.media_url, p.created_at,
		       u.username, u.profile_picture
		FROM posts p
		JOIN users u ON u.user_id = p.user_id
		WHERE p.post_id = $1
	`

	var post models.PostWithAuthor
	err := r.db.GetContext(ctx, &post, query, postID)

	logger.Log.Infow("post query",
		"query", squash(query),
		"args", []any{postID},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &post, nil
}

// ListAll returns every post with author fields, newest first.
func (r *PostReadRepository) ListAll(ctx context.Context) ([]models.PostWithAuthor, error) {
	const query = `
		SELECT p.post_id, p.user_id, p.content, p.media_url, p.created_at,
		       u.username, u.profile_picture
		FROM posts p
		JOIN users u ON u.user_id = p.user_id
		ORDER BY p.created_at DESC
	`

	var posts []models.PostWithAuthor
	err := r.db.SelectContext(ctx, &posts, query)

	logger.Log.Infow("post query",
		"query", squash(query),
		"count", len(posts),
		"error", err,
	)

	if err != nil {
		return nil, err
	}

	return posts, nil
}

type PostWriteRepository struct {
	db *sqlx.DB
}

func NewPostWriteRepository(db *sqlx.DB) *PostWriteRepository {
	return &PostWriteRepository{db: db}
}

// Save inserts a new post record.
func (r *PostWriteRepository) Save(ctx context.Context, post models.PostDB) error {
	const query = `
		INSERT INTO posts (post_id, user_id, content, media_url, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	args := []any{post.PostID, post.UserID, post.Content, post.MediaURL, post.CreatedAt}

	_, err := r.db.ExecContext(ctx, query, args...)

	logger.Log.Infow("post insert",
		"query", squash(query),
		"args", args,
		"error", err,
	)

	return err
}

// Update applies only the supplied fields; nil parameters leave the column
// untouched. Returns nil when no post with the given id exists.
func (r *PostWriteRepository) Update(ctx context.Context, postID uuid.UUID, content, mediaURL *string) (*models.PostDB, error) {
	const query = `
		UPDATE posts
		SET content = COALESCE($2, content),
		    media_url = COALESCE($3, media_url)
		WHERE post_id = $1
		RETURNING post_id, user_id, content, media_url, created_at
	`
	args := []any{postID, content, mediaURL}

	var post models.PostDB
	err := r.db.GetContext(ctx, &post, query, args...)

	logger.Log.Infow("post update",
		"query", squash(query),
		"args", args,
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &post, nil
}

// Delete removes the post and reports whether a row was actually deleted.
func (r *PostWriteRepository) Delete(ctx context.Context, postID uuid.UUID) (bool, error) {
	const query = `DELETE FROM posts WHERE post_id = $1`

	res, err := r.db.ExecContext(ctx, query, postID)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow("post delete",
		"query", squash(query),
		"args", []any{postID},
		"rows", rowsAffected,
		"error", err,
	)

	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}
