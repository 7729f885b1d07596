package handlers

import (
	"promo-api/internal/logger"
	"promo-api/internal/promo"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CommonServices holds common dependencies used across handlers
type CommonServices struct {
	store promo.PromotionStore
}

// NewCommonServices creates a new instance of CommonServices
func NewCommonServices(store promo.PromotionStore) *CommonServices {
	return &CommonServices{store: store}
}

// ErrorResponse is the standard error body: a category plus a
// human-readable message. Internal details are never exposed.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is the liveness probe body
type HealthResponse struct {
	Status string `json:"status"`
}

// sendError is a helper function that combines logging and error response
func sendError(c *gin.Context, statusCode int, category, message string, err error) {
	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
	)
	c.JSON(statusCode, ErrorResponse{Error: category, Message: message})
}

// handleStoreError translates a tagged promo error into an HTTP
// response. Untagged errors map to 500 with a generic message.
func handleStoreError(c *gin.Context, err error) {
	kind := promo.KindOf(err)
	message := promo.MessageOf(err)
	if kind == promo.KindInternal {
		message = "Internal server error"
	}
	sendError(c, kind.HTTPStatus(), kind.Category(), message, err)
}

// sendSuccess is a helper function that sends a success response
func sendSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}
