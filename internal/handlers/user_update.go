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

// UserUpdater defines the interface that the user service must implement.
type UserUpdater interface {
	Update(ctx context.Context, callerID, targetID uuid.UUID, username, password *string, picture []byte) (*models.UserPublic, error)
}

// UserResponse wraps a user in a message envelope.
type UserResponse struct {
	Message string             `json:"message"`
	User    *models.UserPublic `json:"user"`
}

// NewUserUpdateHandler returns an HTTP handler for partial self-updates of an
// account (username, password, profile picture).
func NewUserUpdateHandler(svc UserUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID := middlewares.GetUserIDFromContext(r.Context())
		if callerID == uuid.Nil {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(MessageResponse{Message: "Authentication required"})
			return
		}

		targetID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(MessageResponse{Message: "Invalid user id"})
			return
		}

		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(MessageResponse{Message: "Invalid multipart form"})
			return
		}

		username := formValueIfSet(r, "username")
		password := formValueIfSet(r, "password")

		picture, err := readOptionalFile(r, "profilePicture")
		if err != nil {
			logger.Log.Errorw("failed to read profile picture", "err", err)
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(MessageResponse{Message: "Invalid profile picture file"})
			return
		}

		user, err := svc.Update(r.Context(), callerID, targetID, username, password, picture)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUserNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(MessageResponse{Message: "User not found"})
			case errors.Is(err, services.ErrPermissionDenied):
				w.WriteHeader(http.StatusForbidden)
				json.NewEncoder(w).Encode(MessageResponse{Message: "You can only modify your own account"})
			case errors.Is(err, services.ErrUserAlreadyExists):
				w.WriteHeader(http.StatusConflict)
				json.NewEncoder(w).Encode(MessageResponse{Message: "Username already exists"})
			case errors.Is(err, services.ErrUploadFailed):
				w.WriteHeader(http.StatusBadGateway)
				json.NewEncoder(w).Encode(MessageResponse{Message: "Upload failed"})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(MessageResponse{Message: "Error updating user"})
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(UserResponse{
			Message: "User updated successfully",
			User:    user,
		})
	}
}
