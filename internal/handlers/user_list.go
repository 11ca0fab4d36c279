package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dkotenko/social-feed/internal/logger"
	"github.com/dkotenko/social-feed/internal/models"
)

// UserLister defines the interface that the user service must implement.
type UserLister interface {
	List(ctx context.Context) ([]models.UserPublic, error)
}

// NewUserListHandler returns an HTTP handler listing all users in their
// public shape.
func NewUserListHandler(svc UserLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := svc.List(r.Context())
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(MessageResponse{Message: "Error fetching users"})
			return
		}

		if users == nil {
			users = []models.UserPublic{}
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(users)
	}
}
