package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/dkotenko/social-feed/internal/models"
	"github.com/dkotenko/social-feed/internal/repositories"
	"github.com/dkotenko/social-feed/internal/services"
	"github.com/dkotenko/social-feed/internal/uploads"
)

// uploadResult builds an already-resolved upload channel.
func uploadResult(res uploads.Result) <-chan uploads.Result {
	ch := make(chan uploads.Result, 1)
	ch <- res
	close(ch)
	return ch
}

func TestAuthService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	picture := []byte{0xFF, 0xD8, 0xFF}
	pictureURL := "http://localhost:9000/social-feed/media/2026/01/01/pic.jpg"

	tests := []struct {
		name      string
		username  string
		mockSetup func(r *services.MockUserReader, w *services.MockUserWriter, u *services.MockMediaUploader)
		wantErr   error
		wantURL   string
	}{
		{
			name:     "successful registration",
			username: "alice",
			mockSetup: func(r *services.MockUserReader, w *services.MockUserWriter, u *services.MockMediaUploader) {
				r.EXPECT().GetByUsername(gomock.Any(), "alice").Return(nil, nil)
				u.EXPECT().Upload(gomock.Any(), picture, uploads.KindAuto).
					Return(uploadResult(uploads.Result{URL: pictureURL}))
				w.EXPECT().Save(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, user models.UserDB) error {
						assert.Equal(t, "alice", user.Username)
						assert.Equal(t, pictureURL, user.ProfilePicture)
						assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass123")))
						return nil
					})
			},
			wantURL: pictureURL,
		},
		{
			name:     "user already exists",
			username: "bob",
			mockSetup: func(r *services.MockUserReader, w *services.MockUserWriter, u *services.MockMediaUploader) {
				r.EXPECT().GetByUsername(gomock.Any(), "bob").
					Return(&models.UserDB{UserID: uuid.New(), Username: "bob"}, nil)
			},
			wantErr: services.ErrUserAlreadyExists,
		},
		{
			name:     "upload failure aborts before any write",
			username: "carol",
			mockSetup: func(r *services.MockUserReader, w *services.MockUserWriter, u *services.MockMediaUploader) {
				r.EXPECT().GetByUsername(gomock.Any(), "carol").Return(nil, nil)
				u.EXPECT().Upload(gomock.Any(), picture, uploads.KindAuto).
					Return(uploadResult(uploads.Result{Err: errors.New("object host unreachable")}))
				// Save must never be called
			},
			wantErr: services.ErrUploadFailed,
		},
		{
			name:     "concurrent duplicate loses the insert race",
			username: "dave",
			mockSetup: func(r *services.MockUserReader, w *services.MockUserWriter, u *services.MockMediaUploader) {
				r.EXPECT().GetByUsername(gomock.Any(), "dave").Return(nil, nil)
				u.EXPECT().Upload(gomock.Any(), picture, uploads.KindAuto).
					Return(uploadResult(uploads.Result{URL: pictureURL}))
				w.EXPECT().Save(gomock.Any(), gomock.Any()).
					Return(repositories.ErrUniqueViolation)
			},
			wantErr: services.ErrUserAlreadyExists,
		},
		{
			name:     "reader error",
			username: "eve",
			mockSetup: func(r *services.MockUserReader, w *services.MockUserWriter, u *services.MockMediaUploader) {
				r.EXPECT().GetByUsername(gomock.Any(), "eve").Return(nil, errors.New("db error"))
			},
			wantErr: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockReader := services.NewMockUserReader(ctrl)
			mockWriter := services.NewMockUserWriter(ctrl)
			mockUploader := services.NewMockMediaUploader(ctrl)
			mockJWT := services.NewMockJWTGenerator(ctrl)

			tt.mockSetup(mockReader, mockWriter, mockUploader)

			svc := services.NewAuthService(mockReader, mockWriter, mockUploader, mockJWT)

			url, err := svc.Register(context.Background(), tt.username, "pass123", picture)
			if tt.wantErr != nil {
				assert.ErrorContains(t, err, tt.wantErr.Error())
				assert.Empty(t, url)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantURL, url)
			}
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	password := "secret"
	hashed, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	userID := uuid.New()

	tests := []struct {
		name      string
		username  string
		loginPass string
		user      *models.UserDB
		readerErr error
		jwtErr    error
		expectJWT string
		wantErr   error
	}{
		{
			name:      "successful login",
			username:  "alice",
			loginPass: password,
			user:      &models.UserDB{UserID: userID, Username: "alice", PasswordHash: string(hashed)},
			expectJWT: "token123",
		},
		{
			name:      "user does not exist",
			username:  "bob",
			loginPass: password,
			user:      nil,
			wantErr:   services.ErrInvalidCredentials,
		},
		{
			name:      "invalid password",
			username:  "carol",
			loginPass: "wrongpass",
			user:      &models.UserDB{UserID: uuid.New(), Username: "carol", PasswordHash: string(hashed)},
			wantErr:   services.ErrInvalidCredentials,
		},
		{
			name:      "reader error",
			username:  "eve",
			loginPass: password,
			readerErr: errors.New("db error"),
			wantErr:   errors.New("db error"),
		},
		{
			name:      "JWT generation error",
			username:  "dan",
			loginPass: password,
			user:      &models.UserDB{UserID: userID, Username: "dan", PasswordHash: string(hashed)},
			jwtErr:    errors.New("jwt error"),
			wantErr:   errors.New("jwt error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockReader := services.NewMockUserReader(ctrl)
			mockWriter := services.NewMockUserWriter(ctrl)
			mockUploader := services.NewMockMediaUploader(ctrl)
			mockJWT := services.NewMockJWTGenerator(ctrl)

			mockReader.EXPECT().
				GetByUsername(gomock.Any(), tt.username).
				Return(tt.user, tt.readerErr)

			if tt.user != nil && tt.readerErr == nil && tt.loginPass == password {
				mockJWT.EXPECT().
					Generate(gomock.Any(), tt.user.UserID).
					Return(tt.expectJWT, tt.jwtErr)
			}

			svc := services.NewAuthService(mockReader, mockWriter, mockUploader, mockJWT)

			token, err := svc.Login(context.Background(), tt.username, tt.loginPass)
			if tt.wantErr != nil {
				assert.EqualError(t, err, tt.wantErr.Error())
				assert.Empty(t, token)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectJWT, token)
			}
		})
	}
}

// An unknown username and a wrong password must be indistinguishable to the
// caller.
func TestAuthService_Login_NoAccountEnumeration(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	hashed, _ := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.DefaultCost)

	mockReader := services.NewMockUserReader(ctrl)
	mockWriter := services.NewMockUserWriter(ctrl)
	mockUploader := services.NewMockMediaUploader(ctrl)
	mockJWT := services.NewMockJWTGenerator(ctrl)

	mockReader.EXPECT().GetByUsername(gomock.Any(), "ghost").Return(nil, nil)
	mockReader.EXPECT().GetByUsername(gomock.Any(), "alice").
		Return(&models.UserDB{UserID: uuid.New(), Username: "alice", PasswordHash: string(hashed)}, nil)

	svc := services.NewAuthService(mockReader, mockWriter, mockUploader, mockJWT)

	_, errUnknown := svc.Login(context.Background(), "ghost", "whatever")
	_, errWrongPass := svc.Login(context.Background(), "alice", "wrong")

	assert.ErrorIs(t, errUnknown, services.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPass, services.ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrongPass.Error())
}
