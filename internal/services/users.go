package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dkotenko/social-feed/internal/logger"
	"github.com/dkotenko/social-feed/internal/models"
	"github.com/dkotenko/social-feed/internal/repositories"
	"github.com/dkotenko/social-feed/internal/uploads"
)

// ErrUserNotFound is returned when a user id resolves to nothing.
var ErrUserNotFound = errors.New("user not found")

// UserService handles profile reads and self-service account changes.
type UserService struct {
	reader      UserReader
	writer      UserWriter
	uploader    MediaUploader
	kafkaWriter KafkaWriter
}

// NewUserService creates a new UserService.
func NewUserService(reader UserReader, writer UserWriter, uploader MediaUploader, kafkaWriter KafkaWriter) *UserService {
	return &UserService{
		reader:      reader,
		writer:      writer,
		uploader:    uploader,
		kafkaWriter: kafkaWriter,
	}
}

// List returns all users in their public shape.
func (s *UserService) List(ctx context.Context) ([]models.UserPublic, error) {
	users, err := s.reader.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	public := make([]models.UserPublic, 0, len(users))
	for _, u := range users {
		public = append(public, u.Public())
	}
	return public, nil
}

// Get returns one user in its public shape.
func (s *UserService) Get(ctx context.Context, userID uuid.UUID) (*models.UserPublic, error) {
	user, err := s.reader.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	public := user.Public()
	return &public, nil
}

// Update applies a partial update to the caller's own account. A new profile
// picture is uploaded and confirmed before the record is touched; a supplied
// password is re-hashed. Omitted fields stay untouched.
func (s *UserService) Update(ctx context.Context, callerID, targetID uuid.UUID, username, password *string, picture []byte) (*models.UserPublic, error) {
	if callerID != targetID {
		return nil, ErrPermissionDenied
	}

	var profilePicture *string
	if len(picture) > 0 {
		res := <-s.uploader.Upload(ctx, picture, uploads.KindAuto)
		if res.Err != nil {
			logger.Log.Errorw("profile picture upload failed", "user_id", targetID, "err", res.Err)
			return nil, fmt.Errorf("%w: %v", ErrUploadFailed, res.Err)
		}
		profilePicture = &res.URL
	}

	var passwordHash *string
	if password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
		if err != nil {
			logger.Log.Errorw("failed to hash password", "err", err)
			return nil, err
		}
		h := string(hashed)
		passwordHash = &h
	}

	updated, err := s.writer.Update(ctx, targetID, username, passwordHash, profilePicture)
	if err != nil {
		if errors.Is(err, repositories.ErrUniqueViolation) {
			return nil, ErrUserAlreadyExists
		}
		logger.Log.Errorw("failed to update user", "err", err)
		return nil, err
	}
	if updated == nil {
		return nil, ErrUserNotFound
	}

	publishEvent(ctx, s.kafkaWriter, "user_updated", targetID, callerID)

	public := updated.Public()
	return &public, nil
}

// Delete removes the caller's own account. Deleting an absent id reports
// ErrUserNotFound on every call.
func (s *UserService) Delete(ctx context.Context, callerID, targetID uuid.UUID) error {
	if callerID != targetID {
		return ErrPermissionDenied
	}

	deleted, err := s.writer.Delete(ctx, targetID)
	if err != nil {
		logger.Log.Errorw("failed to delete user", "err", err)
		return err
	}
	if !deleted {
		return ErrUserNotFound
	}

	publishEvent(ctx, s.kafkaWriter, "user_deleted", targetID, callerID)

	return nil
}
