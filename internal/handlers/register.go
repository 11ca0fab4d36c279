package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/dkotenko/social-feed/internal/logger"
	"github.com/dkotenko/social-feed/internal/services"
)

// maxMultipartMemory bounds how much of a multipart body is held in memory.
const maxMultipartMemory = 32 << 20

// MessageResponse is the common shape for message-only replies and errors.
type MessageResponse struct {
	Message string `json:"message"`
}

// Registerer defines the interface that the registration service must implement.
type Registerer interface {
	Register(ctx context.Context, username, password string, picture []byte) (string, error)
}

// RegisterForm represents the multipart fields for user registration.
type RegisterForm struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// RegisterResponse represents a successful registration response.
type RegisterResponse struct {
	Message        string `json:"message"`
	ProfilePicture string `json:"profilePicture"`
}

// NewRegisterHandler returns an HTTP handler for user registration. The
// profile picture file is required and is rejected before any remote call.
func NewRegisterHandler(svc Registerer) http.HandlerFunc {
	validate := validator.New()

	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(MessageResponse{Message: "Invalid multipart form"})
			return
		}

		form := RegisterForm{
			Username: r.FormValue("username"),
			Password: r.FormValue("password"),
		}
		if err := validate.Struct(form); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(MessageResponse{Message: "Username and password are required"})
			return
		}

		file, _, err := r.FormFile("profilePicture")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(MessageResponse{Message: "Profile picture is required"})
			return
		}
		defer file.Close()

		picture, err := io.ReadAll(file)
		if err != nil {
			logger.Log.Errorw("failed to read profile picture", "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(MessageResponse{Message: "Error creating user"})
			return
		}

		url, err := svc.Register(r.Context(), form.Username, form.Password, picture)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUserAlreadyExists):
				w.WriteHeader(http.StatusConflict)
				json.NewEncoder(w).Encode(MessageResponse{Message: "Username already exists"})
			case errors.Is(err, services.ErrUploadFailed):
				w.WriteHeader(http.StatusBadGateway)
				json.NewEncoder(w).Encode(MessageResponse{Message: "Upload failed"})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(MessageResponse{Message: "Error creating user"})
			}
			return
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(RegisterResponse{
			Message:        "User created successfully",
			ProfilePicture: url,
		})
	}
}
