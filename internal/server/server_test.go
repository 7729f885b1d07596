package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"promo-api/internal/config"
	"promo-api/internal/handlers"
	"promo-api/internal/logger"
	"promo-api/internal/promo"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.InitLogger()
	os.Exit(m.Run())
}

// stubStore satisfies promo.PromotionStore with canned answers; routing
// tests only care about which handler a request reaches.
type stubStore struct{}

func (stubStore) Create(ctx context.Context, p *promo.Promotion) (*promo.Promotion, error) {
	created := *p
	created.ID = 1
	return &created, nil
}

func (stubStore) Get(ctx context.Context, id int64) (*promo.Promotion, error) {
	return nil, promo.NewError(promo.KindNotFound, "promotion with id %d not found", id)
}

func (stubStore) Update(ctx context.Context, p *promo.Promotion) (*promo.Promotion, error) {
	return nil, promo.NewError(promo.KindNotFound, "promotion with id %d not found", p.ID)
}

func (stubStore) Delete(ctx context.Context, id int64) error { return nil }

func (stubStore) List(ctx context.Context, filter promo.ListFilter) ([]promo.Promotion, error) {
	if _, err := promo.StatusesForRole(filter.Role); err != nil {
		return nil, err
	}
	return []promo.Promotion{}, nil
}

func (stubStore) ExpireOverdue(ctx context.Context) (int64, error) { return 0, nil }

func (stubStore) Reset(ctx context.Context) error { return nil }

func newTestRouter() *gin.Engine {
	return NewRouter(config.Config{GinMode: "release"}, stubStore{})
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_UnknownRouteIsJSON404(t *testing.T) {
	w := serve(newTestRouter(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp handlers.ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Not Found", resp.Error)
}

func TestRouter_WrongMethodIsJSON405(t *testing.T) {
	w := serve(newTestRouter(), httptest.NewRequest(http.MethodPatch, "/promotions", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	var resp handlers.ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Method Not Allowed", resp.Error)
}

func TestRouter_CreateRequiresJSONContentType(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/promotions", strings.NewReader("product_name=Widget"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := serve(newTestRouter(), req)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestRouter_DuplicateRequiresRoleHeader(t *testing.T) {
	w := serve(newTestRouter(), httptest.NewRequest(http.MethodPost, "/promotions/1/duplicate", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_DuplicateRejectsNonAdministrator(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/promotions/1/duplicate", nil)
	req.Header.Set(handlers.RoleHeader, "customer")

	w := serve(newTestRouter(), req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_ResetRouteResolvesBeforeParam(t *testing.T) {
	w := serve(newTestRouter(), httptest.NewRequest(http.MethodDelete, "/promotions/reset", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRouter_ListWithRole(t *testing.T) {
	w := serve(newTestRouter(), httptest.NewRequest(http.MethodGet, "/promotions?role=supplier", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestRouter_ListRejectsUnknownRole(t *testing.T) {
	w := serve(newTestRouter(), httptest.NewRequest(http.MethodGet, "/promotions?role=root", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_CorrelationIDEchoed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Correlation-ID", "test-correlation-id")

	w := serve(newTestRouter(), req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "test-correlation-id", w.Header().Get("X-Correlation-ID"))
}

func TestRouter_CorrelationIDMinted(t *testing.T) {
	w := serve(newTestRouter(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, w.Header().Get("X-Correlation-ID"))
}
