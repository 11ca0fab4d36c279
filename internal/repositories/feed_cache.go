package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dkotenko/social-feed/internal/logger"
	"github.com/dkotenko/social-feed/internal/models"
)

const feedCacheKey = "posts:feed"

// FeedCacheRepository caches the joined post feed in Redis with a TTL.
type FeedCacheRepository struct {
	client *redis.Client
	exp    time.Duration
}

// NewFeedCacheRepository creates a new repository instance with the given TTL.
func NewFeedCacheRepository(client *redis.Client, expiration time.Duration) *FeedCacheRepository {
	return &FeedCacheRepository{
		client: client,
		exp:    expiration,
	}
}

// Get returns the cached feed, or nil on a cache miss.
func (r *FeedCacheRepository) Get(ctx context.Context) ([]models.PostWithAuthor, error) {
	val, err := r.client.Get(ctx, feedCacheKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		logger.Log.Infow("feed cache get",
			"key", feedCacheKey,
			"error", err,
		)
		return nil, err
	}

	var posts []models.PostWithAuthor
	if err := json.Unmarshal([]byte(val), &posts); err != nil {
		logger.Log.Infow("feed cache decode",
			"key", feedCacheKey,
			"error", err,
		)
		return nil, err
	}

	logger.Log.Infow("feed cache hit",
		"key", feedCacheKey,
		"count", len(posts),
	)

	return posts, nil
}

// Set stores the feed with the configured expiration.
func (r *FeedCacheRepository) Set(ctx context.Context, posts []models.PostWithAuthor) error {
	data, err := json.Marshal(posts)
	if err != nil {
		return err
	}

	err = r.client.Set(ctx, feedCacheKey, data, r.exp).Err()

	logger.Log.Infow("feed cache set",
		"key", feedCacheKey,
		"count", len(posts),
		"error", err,
	)

	return err
}

// Invalidate drops the cached feed after any post write.
func (r *FeedCacheRepository) Invalidate(ctx context.Context) error {
	err := r.client.Del(ctx, feedCacheKey).Err()

	logger.Log.Infow("feed cache invalidate",
		"key", feedCacheKey,
		"error", err,
	)

	return err
}
