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
	"github.com/dkotenko/social-feed/internal/models"
	"github.com/dkotenko/social-feed/internal/services"
)

// PostUpdater defines the interface that the post service must implement.
type PostUpdater interface {
	Update(ctx context.Context, callerID, postID uuid.UUID, content *string, media []byte) (*models.PostDB, error)
}

// formValueIfSet returns a pointer to the multipart field value when the field
// was supplied, nil otherwise. Partial updates must not blank out omitted fields.
func formValueIfSet(r *http.Request, field string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	if vals, ok := r.MultipartForm.Value[field]; ok && len(vals) > 0 {
		return &vals[0]
	}
	return nil
}

// NewPostUpdateHandler returns an HTTP handler for partial post updates by the
// post's owner.
func NewPostUpdateHandler(svc PostUpdater) http.HandlerFunc {
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

		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(MessageResponse{Message: "Invalid multipart form"})
			return
		}

		content := formValueIfSet(r, "content")

		media, err := readOptionalFile(r, "media")
		if err != nil {
			logger.Log.Errorw("failed to read media", "err", err)
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(MessageResponse{Message: "Invalid media file"})
			return
		}

		post, err := svc.Update(r.Context(), userID, postID, content, media)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrPostNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(MessageResponse{Message: "Post not found"})
			case errors.Is(err, services.ErrPermissionDenied):
				w.WriteHeader(http.StatusForbidden)
				json.NewEncoder(w).Encode(MessageResponse{Message: "You can only modify your own posts"})
			case errors.Is(err, services.ErrUploadFailed):
				w.WriteHeader(http.StatusBadGateway)
				json.NewEncoder(w).Encode(MessageResponse{Message: "Upload failed"})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(MessageResponse{Message: "Error updating post"})
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(PostResponse{
			Message: "Post updated successfully",
			Post:    post,
		})
	}
}
