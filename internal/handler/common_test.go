package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/Matrix-F25/matrix-events-sub000/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// nopWriter satisfies cache.Writer for caches the tests only read from.
type nopWriter[T model.Entity] struct{}

func (nopWriter[T]) Create(context.Context, T) error { return nil }
func (nopWriter[T]) Update(context.Context, T) error { return nil }
func (nopWriter[T]) Delete(context.Context, T) error { return nil }

type CascadeServiceMock struct {
	mock.Mock
}

func (m *CascadeServiceMock) DeletePoster(ctx context.Context, posterID string) error {
	return m.Called(ctx, posterID).Error(0)
}

func (m *CascadeServiceMock) DeleteProfile(ctx context.Context, profileID string) error {
	return m.Called(ctx, profileID).Error(0)
}

func createJSONRequest(method, url string, body any) *http.Request {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(method, url, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
