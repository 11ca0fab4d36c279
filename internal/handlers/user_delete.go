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

// UserDeleter defines the interface that the user service must implement.
type UserDeleter interface {
	Delete(ctx context.Context, callerID, targetID uuid.UUID) error
}

// NewUserDeleteHandler returns an HTTP handler that deletes the authenticated
// user's own account.
func NewUserDeleteHandler(svc UserDeleter) http.HandlerFunc {
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

		if err := svc.Delete(r.Context(), callerID, targetID); err != nil {
			switch {
			case errors.Is(err, services.ErrUserNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(MessageResponse{Message: "User not found"})
			case errors.Is(err, services.ErrPermissionDenied):
				w.WriteHeader(http.StatusForbidden)
				json.NewEncoder(w).Encode(MessageResponse{Message: "You can only modify your own account"})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(MessageResponse{Message: "Error deleting user"})
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(MessageResponse{Message: "User deleted successfully"})
	}
}
