package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/dkotenko/social-feed/internal/logger"
	"github.com/dkotenko/social-feed/internal/models"
	"github.com/dkotenko/social-feed/internal/uploads"
)

var (
	// ErrPostNotFound is returned when a post id resolves to nothing.
	ErrPostNotFound = errors.New("post not found")
	// ErrPermissionDenied is returned when the authenticated user does not own
	// the resource being modified.
	ErrPermissionDenied = errors.New("permission denied")
)

// PostReader defines read-only operations for posts.
type PostReader interface {
	GetByID(ctx context.Context, postID uuid.UUID) (*models.PostWithAuthor, error)
	ListAll(ctx context.Context) ([]models.PostWithAuthor, error)
}

// PostWriter defines write operations for posts.
type PostWriter interface {
	Save(ctx context.Context, post models.PostDB) error
	Update(ctx context.Context, postID uuid.UUID, content, mediaURL *string) (*models.PostDB, error)
	Delete(ctx context.Context, postID uuid.UUID) (bool, error)
}

// FeedCache caches the joined post feed.
type FeedCache interface {
	Get(ctx context.Context) ([]models.PostWithAuthor, error)
	Set(ctx context.Context, posts []models.PostWithAuthor) error
	Invalidate(ctx context.Context) error
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// Event is the record published to Kafka after a successful write.
type Event struct {
	EventID   string `json:"event_id"`
	Type      string `json:"type"`
	SubjectID string `json:"subject_id"`
	UserID    string `json:"user_id"`
	At        int64  `json:"at"`
}

// publishEvent publishes a domain event to Kafka. Publishing failures are
// logged and never surfaced to the client.
func publishEvent(ctx context.Context, w KafkaWriter, eventType string, subjectID, userID uuid.UUID) {
	if w == nil {
		logger.Log.Warnw("Kafka writer not configured, skipping publishing", "type", eventType)
		return
	}

	evt := Event{
		EventID:   uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID.String(),
		UserID:    userID.String(),
		At:        time.Now().Unix(),
	}

	data, err := json.Marshal(evt)
	if err != nil {
		logger.Log.Errorw("failed to marshal event", "type", eventType, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(evt.SubjectID),
		Value: data,
	}

	if err := w.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("failed to publish event", "type", eventType, "error", err)
	} else {
		logger.Log.Infow("event published", "type", eventType, "subject_id", evt.SubjectID)
	}
}

// PostService handles the post lifecycle: media upload sequencing, persistence,
// feed caching and event publishing.
type PostService struct {
	reader      PostReader
	writer      PostWriter
	uploader    MediaUploader
	cache       FeedCache
	kafkaWriter KafkaWriter
}

// NewPostService creates a new PostService.
func NewPostService(reader PostReader, writer PostWriter, uploader MediaUploader, cache FeedCache, kafkaWriter KafkaWriter) *PostService {
	return &PostService{
		reader:      reader,
		writer:      writer,
		uploader:    uploader,
		cache:       cache,
		kafkaWriter: kafkaWriter,
	}
}

func (s *PostService) invalidateFeed(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.Log.Errorw("failed to invalidate feed cache", "error", err)
	}
}

// Create persists a new post for the given user. When media is present the
// upload must be confirmed before the record is written; an upload failure
// aborts the pipeline and nothing is persisted.
func (s *PostService) Create(ctx context.Context, userID uuid.UUID, content string, media []byte) (*models.PostDB, error) {
	var mediaURL *string
	if len(media) > 0 {
		res := <-s.uploader.Upload(ctx, media, uploads.KindAuto)
		if res.Err != nil {
			logger.Log.Errorw("media upload failed", "user_id", userID, "err", res.Err)
			return nil, fmt.Errorf("%w: %v", ErrUploadFailed, res.Err)
		}
		mediaURL = &res.URL
	}

	post := models.PostDB{
		PostID:    uuid.New(),
		UserID:    userID,
		Content:   content,
		MediaURL:  mediaURL,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.writer.Save(ctx, post); err != nil {
		logger.Log.Errorw("failed to save post", "err", err)
		return nil, err
	}

	s.invalidateFeed(ctx)
	publishEvent(ctx, s.kafkaWriter, "post_created", post.PostID, userID)

	return &post, nil
}

// Get returns a single post with its author's display fields.
func (s *PostService) Get(ctx context.Context, postID uuid.UUID) (*models.PostWithAuthor, error) {
	post, err := s.reader.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}

// List returns the full feed, served from cache when fresh. Cache failures
// degrade to a database read, never to a request failure.
func (s *PostService) List(ctx context.Context) ([]models.PostWithAuthor, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx)
		if err != nil {
			logger.Log.Errorw("feed cache read failed", "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	posts, err := s.reader.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, posts); err != nil {
			logger.Log.Errorw("feed cache write failed", "error", err)
		}
	}

	return posts, nil
}

// Update applies a partial update to a post owned by the caller. Media, when
// supplied, is uploaded and confirmed before the record is touched.
func (s *PostService) Update(ctx context.Context, callerID, postID uuid.UUID, content *string, media []byte) (*models.PostDB, error) {
	existing, err := s.reader.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrPostNotFound
	}
	if existing.UserID != callerID {
		return nil, ErrPermissionDenied
	}

	var mediaURL *string
	if len(media) > 0 {
		res := <-s.uploader.Upload(ctx, media, uploads.KindAuto)
		if res.Err != nil {
			logger.Log.Errorw("media upload failed", "post_id", postID, "err", res.Err)
			return nil, fmt.Errorf("%w: %v", ErrUploadFailed, res.Err)
		}
		mediaURL = &res.URL
	}

	updated, err := s.writer.Update(ctx, postID, content, mediaURL)
	if err != nil {
		logger.Log.Errorw("failed to update post", "err", err)
		return nil, err
	}
	if updated == nil {
		return nil, ErrPostNotFound
	}

	s.invalidateFeed(ctx)
	publishEvent(ctx, s.kafkaWriter, "post_updated", postID, callerID)

	return updated, nil
}

// Delete removes a post owned by the caller. Deleting an absent id reports
// ErrPostNotFound on every call.
func (s *PostService) Delete(ctx context.Context, callerID, postID uuid.UUID) error {
	existing, err := s.reader.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrPostNotFound
	}
	if existing.UserID != callerID {
		return ErrPermissionDenied
	}

	deleted, err := s.writer.Delete(ctx, postID)
	if err != nil {
		logger.Log.Errorw("failed to delete post", "err", err)
		return err
	}
	if !deleted {
		return ErrPostNotFound
	}

	s.invalidateFeed(ctx)
	publishEvent(ctx, s.kafkaWriter, "post_deleted", postID, callerID)

	return nil
}
