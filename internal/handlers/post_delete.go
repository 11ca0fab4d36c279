package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dkotenko/social-feed/internal/logger"
	"github.com/dkotenko/social-feed/internal/middlewares"
	"github.com/dkotenko/social-feed/internal/services"
)

// PostDeleter defines the interface that the post service must implement.
type PostDeleter interface {
	Delete(ctx context.Context, callerID, postID uuid.UUID) error
}

// NewPostDeleteHandler returns an HTTP handler that deletes a post owned by
// the authenticated user.
func NewPostDeleteHandler(svc PostDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middlewares.GetUserIDFromContext(r.Context())
		if userID == uuid.Nil {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(MessageResponse{Message: "Authentication required"})
			return
		}

		postID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(MessageResponse{Message: "Invalid post id"})
			return
		}

		if err := svc.Delete(r.Context(), userID, postID); err != nil {
			switch {
			case errors.Is(err, services.ErrPostNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(MessageResponse{Message: "Post not found"})
			case errors.Is(err, services.ErrPermissionDenied):
				w.WriteHeader(http.StatusForbidden)
				json.NewEncoder(w).Encode(MessageResponse{Message: "You can only modify your own posts"})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(MessageResponse{Message: "Error deleting post"})
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(MessageResponse{Message: "Post deleted successfully"})
	}
}
