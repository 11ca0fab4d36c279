package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dkotenko/social-feed/internal/logger"
	"github.com/dkotenko/social-feed/internal/models"
)

// PostLister defines the interface that the post service must implement.
type PostLister interface {
	List(ctx context.Context) ([]models.PostWithAuthor, error)
}

// NewPostListHandler returns an HTTP handler for the post feed.
func NewPostListHandler(svc PostLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := svc.List(r.Context())
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(MessageResponse{Message: "Error fetching posts"})
			return
		}

		if posts == nil {
			posts = []models.PostWithAuthor{}
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(posts)
	}
}
