package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"promo-api/internal/logger"
	"promo-api/internal/promo"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PromotionHandler handles promotion-related operations
type PromotionHandler struct {
	common *CommonServices
}

// NewPromotionHandler creates a new PromotionHandler instance
func NewPromotionHandler(common *CommonServices) *PromotionHandler {
	return &PromotionHandler{common: common}
}

// PromotionResponse represents the standardized API response for promotion operations
type PromotionResponse struct {
	ID              int64    `json:"id"`
	ProductName     string   `json:"product_name"`
	Description     *string  `json:"description"`
	OriginalPrice   float64  `json:"original_price"`
	DiscountValue   *float64 `json:"discount_value"`
	DiscountType    *string  `json:"discount_type"`
	PromotionType   string   `json:"promotion_type"`
	StartDate       string   `json:"start_date"`
	ExpirationDate  string   `json:"expiration_date"`
	Status          string   `json:"status"`
	DiscountedPrice float64  `json:"discounted_price"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
}

// IndexResponse describes the service for the root URL
type IndexResponse struct {
	Name      string            `json:"name"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

// Index godoc
// @Summary Service metadata
// @Description Returns the service name, version, and primary endpoints
// @Tags meta
// @Produce json
// @Success 200 {object} IndexResponse
// @Router / [get]
func Index(c *gin.Context) {
	c.JSON(http.StatusOK, IndexResponse{
		Name:    "Promotions REST API Service",
		Version: "1.0",
		Endpoints: map[string]string{
			"list_promotions": "/promotions",
		},
	})
}

// parsePromotionID resolves the path parameter. Non-numeric ids map to
// 404, matching the behavior of a typed route converter.
func parsePromotionID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("promotion_id"), 10, 64)
	if err != nil {
		kind := promo.KindNotFound
		sendError(c, kind.HTTPStatus(), kind.Category(), "Promotion not found", err)
		return 0, false
	}
	return id, true
}

// ListPromotions godoc
// @Summary List promotions
// @Description Lists promotions scoped by caller role, keyword, and date range
// @Tags promotions
// @Produce json
// @Param role query string false "Caller role: customer, supplier, or manager"
// @Param q query string false "Keyword matched against product_name and description"
// @Param start_date query string false "Lower bound on start_date (ISO-8601)"
// @Param end_date query string false "Upper bound on expiration_date (ISO-8601)"
// @Success 200 {array} PromotionResponse
// @Failure 400 {object} ErrorResponse
// @Router /promotions [get]
func (h *PromotionHandler) ListPromotions(c *gin.Context) {
	filter := promo.ListFilter{
		Role:    c.Query("role"),
		Keyword: c.Query("q"),
	}

	start, ok := parseQueryDate(c, "start_date")
	if !ok {
		return
	}
	end, ok := parseQueryDate(c, "end_date")
	if !ok {
		return
	}
	// The range only engages when both bounds are present.
	if start != nil && end != nil {
		filter.StartDate = start
		filter.EndDate = end
	}

	// Transition overdue active promotions before reading.
	expired, err := h.common.store.ExpireOverdue(c.Request.Context())
	if err != nil {
		handleStoreError(c, err)
		return
	}
	if expired > 0 {
		logger.Info("Expired overdue promotions", zap.Int64("count", expired))
	}

	promotions, err := h.common.store.List(c.Request.Context(), filter)
	if err != nil {
		handleStoreError(c, err)
		return
	}

	responseList := make([]PromotionResponse, len(promotions))
	for i := range promotions {
		responseList[i] = toPromotionResponse(&promotions[i])
	}
	sendSuccess(c, http.StatusOK, responseList)
}

func parseQueryDate(c *gin.Context, name string) (*time.Time, bool) {
	value := c.Query(name)
	if value == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		if t, err = time.Parse("2006-01-02", value); err != nil {
			kind := promo.KindBadRequest
			sendError(c, kind.HTTPStatus(), kind.Category(),
				fmt.Sprintf("invalid date format for %q: %s", name, value), err)
			return nil, false
		}
	}
	return &t, true
}

// CreatePromotion godoc
// @Summary Create promotion
// @Description Creates a new promotion
// @Tags promotions
// @Accept json
// @Produce json
// @Param promotion body promo.Payload true "Promotion creation data"
// @Success 201 {object} PromotionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 415 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /promotions [post]
func (h *PromotionHandler) CreatePromotion(c *gin.Context) {
	var payload promo.Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		kind := promo.KindBadRequest
		sendError(c, kind.HTTPStatus(), kind.Category(), "Invalid request body", err)
		return
	}

	promotion, err := payload.Build(time.Now())
	if err != nil {
		handleStoreError(c, err)
		return
	}

	created, err := h.common.store.Create(c.Request.Context(), promotion)
	if err != nil {
		handleStoreError(c, err)
		return
	}

	c.Header("Location", fmt.Sprintf("/promotions/%d", created.ID))
	sendSuccess(c, http.StatusCreated, toPromotionResponse(created))
}

// GetPromotion godoc
// @Summary Get promotion by ID
// @Description Get promotion details by promotion ID
// @Tags promotions
// @Produce json
// @Param promotion_id path int true "Promotion ID"
// @Success 200 {object} PromotionResponse
// @Failure 404 {object} ErrorResponse
// @Router /promotions/{promotion_id} [get]
func (h *PromotionHandler) GetPromotion(c *gin.Context) {
	id, ok := parsePromotionID(c)
	if !ok {
		return
	}

	promotion, err := h.common.store.Get(c.Request.Context(), id)
	if err != nil {
		handleStoreError(c, err)
		return
	}

	sendSuccess(c, http.StatusOK, toPromotionResponse(promotion))
}

// UpdatePromotion godoc
// @Summary Update promotion
// @Description Replaces an existing promotion with the supplied fields
// @Tags promotions
// @Accept json
// @Produce json
// @Param promotion_id path int true "Promotion ID"
// @Param promotion body promo.Payload true "Promotion update data"
// @Success 200 {object} PromotionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 415 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /promotions/{promotion_id} [put]
func (h *PromotionHandler) UpdatePromotion(c *gin.Context) {
	id, ok := parsePromotionID(c)
	if !ok {
		return
	}

	var payload promo.Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		kind := promo.KindBadRequest
		sendError(c, kind.HTTPStatus(), kind.Category(), "Invalid request body", err)
		return
	}

	promotion, err := payload.Build(time.Now())
	if err != nil {
		handleStoreError(c, err)
		return
	}
	promotion.ID = id

	updated, err := h.common.store.Update(c.Request.Context(), promotion)
	if err != nil {
		handleStoreError(c, err)
		return
	}

	sendSuccess(c, http.StatusOK, toPromotionResponse(updated))
}

// DeletePromotion godoc
// @Summary Delete promotion
// @Description Deletes a promotion; deleting an absent promotion is a no-op
// @Tags promotions
// @Param promotion_id path int true "Promotion ID"
// @Success 204 "No Content"
// @Failure 409 {object} ErrorResponse
// @Router /promotions/{promotion_id} [delete]
func (h *PromotionHandler) DeletePromotion(c *gin.Context) {
	id, ok := parsePromotionID(c)
	if !ok {
		return
	}

	if err := h.common.store.Delete(c.Request.Context(), id); err != nil {
		handleStoreError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DuplicatePromotion godoc
// @Summary Duplicate promotion
// @Description Creates a copy of a promotion with optional field overrides
// @Tags promotions
// @Accept json
// @Produce json
// @Param promotion_id path int true "Source promotion ID"
// @Param overrides body promo.Payload false "Field overrides"
// @Success 201 {object} PromotionResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 415 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /promotions/{promotion_id}/duplicate [post]
func (h *PromotionHandler) DuplicatePromotion(c *gin.Context) {
	id, ok := parsePromotionID(c)
	if !ok {
		return
	}

	// Overrides are optional: a body-less request carries no
	// Content-Type and binds to an empty payload. A declared non-JSON
	// body is still rejected.
	if ct := c.ContentType(); ct != "" && ct != "application/json" {
		kind := promo.KindUnsupportedMedia
		sendError(c, kind.HTTPStatus(), kind.Category(), "Content-Type must be application/json", nil)
		return
	}
	var overrides promo.Payload
	if err := c.ShouldBindJSON(&overrides); err != nil && !errors.Is(err, io.EOF) {
		kind := promo.KindBadRequest
		sendError(c, kind.HTTPStatus(), kind.Category(), "Invalid request body", err)
		return
	}

	source, err := h.common.store.Get(c.Request.Context(), id)
	if err != nil {
		handleStoreError(c, err)
		return
	}

	now := time.Now()
	payload := promo.Overlay(source.AsPayload(), overrides)
	if overrides.ProductName == nil {
		name := promo.CopyName(source.ProductName, now)
		payload.ProductName = &name
	}
	// A copy always starts over as a draft.
	payload.Status = nil

	promotion, err := payload.Build(now)
	if err != nil {
		handleStoreError(c, err)
		return
	}

	created, err := h.common.store.Create(c.Request.Context(), promotion)
	if err != nil {
		handleStoreError(c, err)
		return
	}

	c.Header("Location", fmt.Sprintf("/promotions/%d", created.ID))
	sendSuccess(c, http.StatusCreated, toPromotionResponse(created))
}

// ResetPromotions godoc
// @Summary Purge all promotions
// @Description Test-support endpoint that removes every promotion
// @Tags promotions
// @Success 204 "No Content"
// @Router /promotions/reset [delete]
func (h *PromotionHandler) ResetPromotions(c *gin.Context) {
	if err := h.common.store.Reset(c.Request.Context()); err != nil {
		handleStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Helper function to convert the domain model to an API response
func toPromotionResponse(p *promo.Promotion) PromotionResponse {
	var discountType *string
	if p.DiscountType != nil {
		dt := string(*p.DiscountType)
		discountType = &dt
	}

	return PromotionResponse{
		ID:              p.ID,
		ProductName:     p.ProductName,
		Description:     p.Description,
		OriginalPrice:   p.OriginalPrice,
		DiscountValue:   p.DiscountValue,
		DiscountType:    discountType,
		PromotionType:   string(p.PromotionType),
		StartDate:       p.StartDate.Format(time.RFC3339),
		ExpirationDate:  p.ExpirationDate.Format(time.RFC3339),
		Status:          string(p.Status),
		DiscountedPrice: p.DiscountedPrice(),
		CreatedAt:       p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       p.UpdatedAt.Format(time.RFC3339),
	}
}
