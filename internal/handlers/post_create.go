package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/dkotenko/social-feed/internal/logger"
	"github.com/dkotenko/social-feed/internal/middlewares"
	"github.com/dkotenko/social-feed/internal/models"
	"github.com/dkotenko/social-feed/internal/services"
)

// PostCreator defines the interface that the post service must implement.
type PostCreator interface {
	Create(ctx context.Context, userID uuid.UUID, content string, media []byte) (*models.PostDB, error)
}

// PostResponse wraps a post in a message envelope.
type PostResponse struct {
	Message string         `json:"message"`
	Post    *models.PostDB `json:"post"`
}

// readOptionalFile reads a multipart file field that may be absent. A missing
// field returns nil bytes and no error.
func readOptionalFile(r *http.Request, field string) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// NewPostCreateHandler returns an HTTP handler that creates a post for the
// authenticated user. Media is optional; when present, its upload must be
// confirmed before the record is written.
func NewPostCreateHandler(svc PostCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middlewares.GetUserIDFromContext(r.Context())
		if userID == uuid.Nil {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(MessageResponse{Message: "Authentication required"})
			return
		}

		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(MessageResponse{Message: "Invalid multipart form"})
			return
		}

		content := r.FormValue("content")
		if content == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(MessageResponse{Message: "Content is required"})
			return
		}

		media, err := readOptionalFile(r, "media")
		if err != nil {
			logger.Log.Errorw("failed to read media", "err", err)
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(MessageResponse{Message: "Invalid media file"})
			return
		}

		post, err := svc.Create(r.Context(), userID, content, media)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUploadFailed):
				w.WriteHeader(http.StatusBadGateway)
				json.NewEncoder(w).Encode(MessageResponse{Message: "Upload failed"})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(MessageResponse{Message: "Error creating post"})
			}
			return
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(PostResponse{
			Message: "Post created successfully",
			Post:    post,
		})
	}
}
