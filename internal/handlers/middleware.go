package handlers

import (
	"bytes"
	"io"
	"time"

	"promo-api/internal/logger"
	"promo-api/internal/promo"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RoleHeader carries the caller-asserted role. It is not
// cryptographically verified.
const RoleHeader = "X-Role"

// RequestLog represents a structured log entry for an HTTP request
type RequestLog struct {
	Method    string    `json:"method"`
	Path      string    `json:"path"`
	Query     string    `json:"query"`
	UserAgent string    `json:"user_agent"`
	ClientIP  string    `json:"client_ip"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

// RequireJSONContentType rejects bodied requests whose Content-Type is
// not application/json.
func RequireJSONContentType() gin.HandlerFunc {
	return func(c *gin.Context) {
		contentType := c.ContentType()
		if contentType != "application/json" {
			kind := promo.KindUnsupportedMedia
			c.JSON(kind.HTTPStatus(), ErrorResponse{
				Error:   kind.Category(),
				Message: "Content-Type must be application/json",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdministrator guards the duplicate endpoint: a missing role
// header is unauthenticated, any role other than administrator is
// forbidden.
func RequireAdministrator() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetHeader(RoleHeader)
		if role == "" {
			kind := promo.KindUnauthorized
			c.JSON(kind.HTTPStatus(), ErrorResponse{
				Error:   kind.Category(),
				Message: "X-Role header is required",
			})
			c.Abort()
			return
		}
		if role != "administrator" {
			logger.Debug("Role rejected",
				zap.String("role", role),
				zap.String("path", c.Request.URL.Path),
			)
			kind := promo.KindForbidden
			c.JSON(kind.HTTPStatus(), ErrorResponse{
				Error:   kind.Category(),
				Message: "administrator role required",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// shouldSkipLogging determines if request logging should be skipped for a given path
func shouldSkipLogging(path string) bool {
	return path == "/health"
}

// getRequestBody safely reads and returns the request body
func getRequestBody(c *gin.Context) ([]byte, error) {
	var bodyBytes []byte
	if c.Request.Body != nil {
		var err error
		bodyBytes, err = io.ReadAll(c.Request.Body)
		if err != nil {
			return nil, err
		}
		// Restore the request body for subsequent middleware/handlers
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
	}
	return bodyBytes, nil
}

// LogRequest is a middleware that logs the request body
func LogRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		if shouldSkipLogging(c.Request.URL.Path) {
			c.Next()
			return
		}

		bodyBytes, err := getRequestBody(c)
		if err != nil {
			logger.Error("Failed to read request body", zap.Error(err))
			c.Next()
			return
		}

		requestLog := RequestLog{
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			Query:     c.Request.URL.RawQuery,
			UserAgent: c.Request.UserAgent(),
			ClientIP:  c.ClientIP(),
			Body:      string(bodyBytes),
			Timestamp: time.Now().UTC(),
		}

		logger.Debug("Request received",
			zap.String("method", requestLog.Method),
			zap.String("path", requestLog.Path),
			zap.String("query", requestLog.Query),
			zap.String("user_agent", requestLog.UserAgent),
			zap.String("client_ip", requestLog.ClientIP),
			zap.String("body", requestLog.Body),
			zap.Time("timestamp", requestLog.Timestamp),
		)

		c.Next()
	}
}
