package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"

	"github.com/dkotenko/social-feed/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()

	mockDb, mock, err := sqlmock.New()
	assert.NoError(t, err)

	db := sqlx.NewDb(mockDb, "sqlmock")
	return db, mock, func() { db.Close() }
}

var postColumns = []string{"post_id", "user_id", "content", "media_url", "created_at"}
var postWithAuthorColumns = []string{"post_id", "user_id", "content", "media_url", "created_at", "username", "profile_picture"}

func TestPostReadRepository_GetByID(t *testing.T) {
	db, mock, closeFn := newMockDB(t)
	defer closeFn()

	repo := NewPostReadRepository(db)
	ctx := context.Background()

	postID := uuid.New()
	userID := uuid.New()
	now := time.Now()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT p\.post_id, p\.user_id, p\.content, p\.media_url, p\.created_at`).
			WithArgs(postID).
			WillReturnRows(sqlmock.NewRows(postWithAuthorColumns).
				AddRow(postID, userID, "hello", nil, now, "alice", "http://pic/a"))

		post, err := repo.GetByID(ctx, postID)
		assert.NoError(t, err)
		assert.NotNil(t, post)
		assert.Equal(t, postID, post.PostID)
		assert.Equal(t, "alice", post.Username)
		assert.Nil(t, post.MediaURL)
	})

	t.Run("absent returns nil", func(t *testing.T) {
		mock.ExpectQuery(`SELECT p\.post_id`).
			WithArgs(postID).
			WillReturnError(sql.ErrNoRows)

		post, err := repo.GetByID(ctx, postID)
		assert.NoError(t, err)
		assert.Nil(t, post)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostReadRepository_ListAll(t *testing.T) {
	db, mock, closeFn := newMockDB(t)
	defer closeFn()

	repo := NewPostReadRepository(db)
	ctx := context.Background()

	now := time.Now()
	older := now.Add(-time.Hour)
	mediaURL := "http://localhost:9000/social-feed/media/clip.mp4"

	mock.ExpectQuery(`ORDER BY p\.created_at DESC`).
		WillReturnRows(sqlmock.NewRows(postWithAuthorColumns).
			AddRow(uuid.New(), uuid.New(), "newest", &mediaURL, now, "alice", "http://pic/a").
			AddRow(uuid.New(), uuid.New(), "older", nil, older, "bob", "http://pic/b"))

	posts, err := repo.ListAll(ctx)
	assert.NoError(t, err)
	assert.Len(t, posts, 2)
	assert.Equal(t, "newest", posts[0].Content)
	assert.Equal(t, mediaURL, *posts[0].MediaURL)
	assert.Equal(t, "older", posts[1].Content)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostWriteRepository_Save(t *testing.T) {
	db, mock, closeFn := newMockDB(t)
	defer closeFn()

	repo := NewPostWriteRepository(db)
	ctx := context.Background()

	post := models.PostDB{
		PostID:    uuid.New(),
		UserID:    uuid.New(),
		Content:   "hello",
		CreatedAt: time.Now(),
	}

	mock.ExpectExec(`INSERT INTO posts`).
		WithArgs(post.PostID, post.UserID, post.Content, nil, post.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Save(ctx, post))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostWriteRepository_Update(t *testing.T) {
	db, mock, closeFn := newMockDB(t)
	defer closeFn()

	repo := NewPostWriteRepository(db)
	ctx := context.Background()

	postID := uuid.New()
	userID := uuid.New()
	now := time.Now()

	t.Run("content only", func(t *testing.T) {
		newContent := "edited"
		mock.ExpectQuery(`UPDATE posts`).
			WithArgs(postID, &newContent, nil).
			WillReturnRows(sqlmock.NewRows(postColumns).
				AddRow(postID, userID, "edited", nil, now))

		post, err := repo.Update(ctx, postID, &newContent, nil)
		assert.NoError(t, err)
		assert.NotNil(t, post)
		assert.Equal(t, "edited", post.Content)
	})

	t.Run("absent returns nil", func(t *testing.T) {
		newContent := "edited"
		mock.ExpectQuery(`UPDATE posts`).
			WithArgs(postID, &newContent, nil).
			WillReturnError(sql.ErrNoRows)

		post, err := repo.Update(ctx, postID, &newContent, nil)
		assert.NoError(t, err)
		assert.Nil(t, post)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostWriteRepository_Delete(t *testing.T) {
	db, mock, closeFn := newMockDB(t)
	defer closeFn()

	repo := NewPostWriteRepository(db)
	ctx := context.Background()

	postID := uuid.New()

	t.Run("deletes existing row", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM posts`).
			WithArgs(postID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		deleted, err := repo.Delete(ctx, postID)
		assert.NoError(t, err)
		assert.True(t, deleted)
	})

	t.Run("absent row reports false", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM posts`).
			WithArgs(postID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		deleted, err := repo.Delete(ctx, postID)
		assert.NoError(t, err)
		assert.False(t, deleted)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
