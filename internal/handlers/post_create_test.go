package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dkotenko/social-feed/internal/middlewares"
	"github.com/dkotenko/social-feed/internal/models"
	"github.com/dkotenko/social-feed/internal/services"
)

// withUserID stores an authenticated user id the way the auth middleware does.
func withUserID(req *http.Request, userID uuid.UUID) *http.Request {
	return req.WithContext(middlewares.SetUserIDToContext(req.Context(), userID))
}

// withURLParam attaches a chi route parameter to the request.
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestPostCreateHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	media := []byte{0xFF, 0xD8, 0xFF}
	mediaURL := "http://localhost:9000/social-feed/media/2026/01/01/clip.jpg"

	t.Run("success without media", func(t *testing.T) {
		mockSvc := NewMockPostCreator(ctrl)
		created := &models.PostDB{PostID: uuid.New(), UserID: userID, Content: "hello"}
		mockSvc.EXPECT().
			Create(gomock.Any(), userID, "hello", gomock.Nil()).
			Return(created, nil)

		handler := NewPostCreateHandler(mockSvc)

		body, contentType := multipartBody(t, map[string]string{"content": "hello"}, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/posts/", body)
		req.Header.Set("Content-Type", contentType)
		req = withUserID(req, userID)

		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.Equal(t, 201, rr.Code)

		var resp PostResponse
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "Post created successfully", resp.Message)
		assert.Equal(t, created.PostID, resp.Post.PostID)
		assert.Nil(t, resp.Post.MediaURL)
	})

	t.Run("success with media", func(t *testing.T) {
		mockSvc := NewMockPostCreator(ctrl)
		created := &models.PostDB{PostID: uuid.New(), UserID: userID, Content: "hello", MediaURL: &mediaURL}
		mockSvc.EXPECT().
			Create(gomock.Any(), userID, "hello", media).
			Return(created, nil)

		handler := NewPostCreateHandler(mockSvc)

		body, contentType := multipartBody(t,
			map[string]string{"content": "hello"},
			map[string][]byte{"media": media})
		req := httptest.NewRequest(http.MethodPost, "/api/posts/", body)
		req.Header.Set("Content-Type", contentType)
		req = withUserID(req, userID)

		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.Equal(t, 201, rr.Code)

		var resp PostResponse
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, mediaURL, *resp.Post.MediaURL)
	})

	t.Run("missing authentication", func(t *testing.T) {
		mockSvc := NewMockPostCreator(ctrl)
		handler := NewPostCreateHandler(mockSvc)

		body, contentType := multipartBody(t, map[string]string{"content": "hello"}, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/posts/", body)
		req.Header.Set("Content-Type", contentType)

		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.Equal(t, 401, rr.Code)
	})

	t.Run("empty content", func(t *testing.T) {
		mockSvc := NewMockPostCreator(ctrl)
		handler := NewPostCreateHandler(mockSvc)

		body, contentType := multipartBody(t, map[string]string{}, map[string][]byte{"media": media})
		req := httptest.NewRequest(http.MethodPost, "/api/posts/", body)
		req.Header.Set("Content-Type", contentType)
		req = withUserID(req, userID)

		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.Equal(t, 400, rr.Code)

		var resp MessageResponse
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "Content is required", resp.Message)
	})

	t.Run("upload failure", func(t *testing.T) {
		mockSvc := NewMockPostCreator(ctrl)
		mockSvc.EXPECT().
			Create(gomock.Any(), userID, "hello", media).
			Return(nil, fmt.Errorf("%w: connection reset", services.ErrUploadFailed))

		handler := NewPostCreateHandler(mockSvc)

		body, contentType := multipartBody(t,
			map[string]string{"content": "hello"},
			map[string][]byte{"media": media})
		req := httptest.NewRequest(http.MethodPost, "/api/posts/", body)
		req.Header.Set("Content-Type", contentType)
		req = withUserID(req, userID)

		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.Equal(t, 502, rr.Code)

		var resp MessageResponse
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "Upload failed", resp.Message)
	})

	t.Run("internal server error", func(t *testing.T) {
		mockSvc := NewMockPostCreator(ctrl)
		mockSvc.EXPECT().
			Create(gomock.Any(), userID, "hello", gomock.Nil()).
			Return(nil, errors.New("database failure"))

		handler := NewPostCreateHandler(mockSvc)

		body, contentType := multipartBody(t, map[string]string{"content": "hello"}, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/posts/", body)
		req.Header.Set("Content-Type", contentType)
		req = withUserID(req, userID)

		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.Equal(t, 500, rr.Code)
	})
}
