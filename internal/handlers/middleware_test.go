package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func runMiddleware(t *testing.T, mw gin.HandlerFunc, configure func(*http.Request)) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodPost, "/promotions", nil)
	if configure != nil {
		configure(req)
	}
	c.Request = req

	reached := false
	mw(c)
	if !c.IsAborted() {
		reached = true
	}
	return w, reached
}

func TestRequireJSONContentType_Accepts(t *testing.T) {
	_, reached := runMiddleware(t, RequireJSONContentType(), func(req *http.Request) {
		req.Header.Set("Content-Type", "application/json")
	})
	assert.True(t, reached)
}

func TestRequireJSONContentType_AcceptsWithCharset(t *testing.T) {
	_, reached := runMiddleware(t, RequireJSONContentType(), func(req *http.Request) {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	})
	assert.True(t, reached)
}

func TestRequireJSONContentType_RejectsText(t *testing.T) {
	w, reached := runMiddleware(t, RequireJSONContentType(), func(req *http.Request) {
		req.Header.Set("Content-Type", "text/plain")
	})
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	assert.Equal(t, "Unsupported Media Type", decodeError(t, w.Body).Error)
}

func TestRequireJSONContentType_RejectsMissing(t *testing.T) {
	w, reached := runMiddleware(t, RequireJSONContentType(), nil)
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestRequireAdministrator_MissingHeader(t *testing.T) {
	w, reached := runMiddleware(t, RequireAdministrator(), nil)
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized", decodeError(t, w.Body).Error)
}

func TestRequireAdministrator_WrongRole(t *testing.T) {
	w, reached := runMiddleware(t, RequireAdministrator(), func(req *http.Request) {
		req.Header.Set(RoleHeader, "manager")
	})
	assert.False(t, reached)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Forbidden", decodeError(t, w.Body).Error)
}

func TestRequireAdministrator_Allows(t *testing.T) {
	_, reached := runMiddleware(t, RequireAdministrator(), func(req *http.Request) {
		req.Header.Set(RoleHeader, "administrator")
	})
	assert.True(t, reached)
}
