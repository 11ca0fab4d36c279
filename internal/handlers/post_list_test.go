package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dkotenko/social-feed/internal/models"
)

func TestPostListHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("success", func(t *testing.T) {
		feed := []models.PostWithAuthor{
			{PostDB: models.PostDB{PostID: uuid.New(), Content: "first"}, Username: "alice"},
			{PostDB: models.PostDB{PostID: uuid.New(), Content: "second"}, Username: "bob"},
		}

		mockSvc := NewMockPostLister(ctrl)
		mockSvc.EXPECT().List(gomock.Any()).Return(feed, nil)

		handler := NewPostListHandler(mockSvc)

		req := httptest.NewRequest(http.MethodGet, "/api/posts/", nil)
		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.Equal(t, 200, rr.Code)

		var resp []models.PostWithAuthor
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Len(t, resp, 2)
		assert.Equal(t, "alice", resp[0].Username)
	})

	t.Run("empty feed is a JSON array, not null", func(t *testing.T) {
		mockSvc := NewMockPostLister(ctrl)
		mockSvc.EXPECT().List(gomock.Any()).Return(nil, nil)

		handler := NewPostListHandler(mockSvc)

		req := httptest.NewRequest(http.MethodGet, "/api/posts/", nil)
		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.Equal(t, 200, rr.Code)
		assert.JSONEq(t, "[]", rr.Body.String())
	})

	t.Run("internal server error", func(t *testing.T) {
		mockSvc := NewMockPostLister(ctrl)
		mockSvc.EXPECT().List(gomock.Any()).Return(nil, errors.New("database failure"))

		handler := NewPostListHandler(mockSvc)

		req := httptest.NewRequest(http.MethodGet, "/api/posts/", nil)
		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.Equal(t, 500, rr.Code)
	})
}
