package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dkotenko/social-feed/internal/logger"
	"github.com/dkotenko/social-feed/internal/models"
	"github.com/dkotenko/social-feed/internal/services"
)

// PostGetter defines the interface that the post service must implement.
type PostGetter interface {
	Get(ctx context.Context, postID uuid.UUID) (*models.PostWithAuthor, error)
}

// NewPostGetHandler returns an HTTP handler for fetching a single post with
// its author's display fields.
func NewPostGetHandler(svc PostGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(MessageResponse{Message: "Invalid post id"})
			return
		}

		post, err := svc.Get(r.Context(), postID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrPostNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(MessageResponse{Message: "Post not found"})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(MessageResponse{Message: "Error fetching post"})
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(post)
	}
}
