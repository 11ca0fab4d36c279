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

// Error variables
var (
	ErrUserAlreadyExists  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUploadFailed       = errors.New("media upload failed")
)

// UserReader defines read-only operations for users.
type UserReader interface {
	GetByUsername(ctx context.Context, username string) (*models.UserDB, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*models.UserDB, error)
	ListAll(ctx context.Context) ([]models.UserDB, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Save(ctx context.Context, user models.UserDB) error
	Update(ctx context.Context, userID uuid.UUID, username, passwordHash, profilePicture *string) (*models.UserDB, error)
	Delete(ctx context.Context, userID uuid.UUID) (bool, error)
}

// JWTGenerator defines an interface for generating JWT tokens.
type JWTGenerator interface {
	Generate(ctx context.Context, userID uuid.UUID) (string, error)
}

// MediaUploader transmits buffered media to the remote object host and
// resolves exactly once with a confirmed URL or a failure.
type MediaUploader interface {
	Upload(ctx context.Context, data []byte, kind string) <-chan uploads.Result
}

// AuthService handles registration and login.
type AuthService struct {
	reader   UserReader
	writer   UserWriter
	uploader MediaUploader
	jwt      JWTGenerator
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(reader UserReader, writer UserWriter, uploader MediaUploader, jwt JWTGenerator) *AuthService {
	return &AuthService{
		reader:   reader,
		writer:   writer,
		uploader: uploader,
		jwt:      jwt,
	}
}

// Register uploads the profile picture, hashes the password and stores the new
// user. The upload must be confirmed before anything is written, so a failed
// upload never leaves a user record behind.
func (svc *AuthService) Register(ctx context.Context, username, password string, picture []byte) (string, error) {
	existing, err := svc.reader.GetByUsername(ctx, username)
	if err != nil {
		logger.Log.Errorw("failed to check user exists", "err", err)
		return "", err
	}
	if existing != nil {
		logger.Log.Errorw("user already exists", "username", username)
		return "", ErrUserAlreadyExists
	}

	res := <-svc.uploader.Upload(ctx, picture, uploads.KindAuto)
	if res.Err != nil {
		logger.Log.Errorw("profile picture upload failed", "username", username, "err", res.Err)
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, res.Err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return "", err
	}

	user := models.UserDB{
		UserID:         uuid.New(),
		Username:       username,
		PasswordHash:   string(hashedPassword),
		ProfilePicture: res.URL,
	}

	if err := svc.writer.Save(ctx, user); err != nil {
		// Concurrent registration with the same username loses the race here.
		if errors.Is(err, repositories.ErrUniqueViolation) {
			return "", ErrUserAlreadyExists
		}
		logger.Log.Errorw("failed to save user", "err", err)
		return "", err
	}

	return res.URL, nil
}

// Login authenticates a user and returns a JWT token. An unknown username and
// a wrong password collapse into the same error so the response never reveals
// whether the account exists.
func (svc *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := svc.reader.GetByUsername(ctx, username)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return "", err
	}
	if user == nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Log.Errorw("invalid credentials", "username", username)
		return "", ErrInvalidCredentials
	}

	token, err := svc.jwt.Generate(ctx, user.UserID)
	if err != nil {
		logger.Log.Errorw("failed to generate JWT", "err", err)
		return "", err
	}

	return token, nil
}
