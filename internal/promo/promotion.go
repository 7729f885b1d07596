package promo

import (
	"time"
)

// DiscountType describes how a discount promotion reduces the price.
type DiscountType string

const (
	DiscountAmount  DiscountType = "amount"
	DiscountPercent DiscountType = "percent"
)

// PromotionType separates price-reducing promotions from informational ones.
type PromotionType string

const (
	PromotionDiscount PromotionType = "discount"
	PromotionOther    PromotionType = "other"
)

// Status is the lifecycle state of a promotion.
type Status string

const (
	StatusDraft       Status = "draft"
	StatusActive      Status = "active"
	StatusExpired     Status = "expired"
	StatusDeactivated Status = "deactivated"
	StatusDeleted     Status = "deleted"
)

// Promotion is a discount or informational offer for a single product.
type Promotion struct {
	ID             int64
	ProductName    string
	Description    *string
	OriginalPrice  float64
	DiscountValue  *float64
	DiscountType   *DiscountType
	PromotionType  PromotionType
	StartDate      time.Time
	ExpirationDate time.Time
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DiscountedPrice computes the effective price. It is derived, never
// stored, and floors at zero.
func (p *Promotion) DiscountedPrice() float64 {
	if p.PromotionType != PromotionDiscount || p.DiscountValue == nil || *p.DiscountValue == 0 {
		return p.OriginalPrice
	}
	if p.DiscountType == nil {
		return p.OriginalPrice
	}

	var price float64
	switch *p.DiscountType {
	case DiscountAmount:
		price = p.OriginalPrice - *p.DiscountValue
	case DiscountPercent:
		price = p.OriginalPrice * (1 - *p.DiscountValue/100)
	default:
		return p.OriginalPrice
	}

	if price < 0 {
		return 0
	}
	return price
}

// Payload is the wire shape accepted for create, update, and duplicate
// overrides. Every field is optional at the JSON level; Build enforces
// which ones are required.
type Payload struct {
	ProductName    *string  `json:"product_name"`
	Description    *string  `json:"description"`
	OriginalPrice  *float64 `json:"original_price"`
	DiscountValue  *float64 `json:"discount_value"`
	DiscountType   *string  `json:"discount_type"`
	PromotionType  *string  `json:"promotion_type"`
	StartDate      *string  `json:"start_date"`
	ExpirationDate *string  `json:"expiration_date"`
	Status         *string  `json:"status"`
}

// Datetime layouts accepted on input. ISO-8601 with or without a zone
// offset; dates serialized by this service always carry one.
var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseDatetime(field, value string) (time.Time, error) {
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, NewError(KindBadRequest, "invalid datetime for %q: %s", field, value)
}

func parseDiscountType(value string) (DiscountType, error) {
	switch DiscountType(value) {
	case DiscountAmount, DiscountPercent:
		return DiscountType(value), nil
	}
	return "", NewError(KindBadRequest, "invalid discount_type: %s", value)
}

func parsePromotionType(value string) (PromotionType, error) {
	switch PromotionType(value) {
	case PromotionDiscount, PromotionOther:
		return PromotionType(value), nil
	}
	return "", NewError(KindBadRequest, "invalid promotion_type: %s", value)
}

func parseStatus(value string) (Status, error) {
	switch Status(value) {
	case StatusDraft, StatusActive, StatusExpired, StatusDeactivated, StatusDeleted:
		return Status(value), nil
	}
	return "", NewError(KindBadRequest, "invalid status: %s", value)
}

// Build validates the payload and constructs a Promotion. Missing or
// malformed fields produce bad-request errors; business-rule breaches
// produce unprocessable errors, mirroring the database check
// constraints. start_date defaults to now, status to draft.
func (pl Payload) Build(now time.Time) (*Promotion, error) {
	if pl.ProductName == nil || *pl.ProductName == "" {
		return nil, NewError(KindBadRequest, "missing required field: product_name")
	}
	if pl.OriginalPrice == nil {
		return nil, NewError(KindBadRequest, "missing required field: original_price")
	}
	if pl.PromotionType == nil {
		return nil, NewError(KindBadRequest, "missing required field: promotion_type")
	}
	if pl.ExpirationDate == nil {
		return nil, NewError(KindBadRequest, "missing required field: expiration_date")
	}

	promotionType, err := parsePromotionType(*pl.PromotionType)
	if err != nil {
		return nil, err
	}

	p := &Promotion{
		ProductName:   *pl.ProductName,
		Description:   pl.Description,
		OriginalPrice: *pl.OriginalPrice,
		PromotionType: promotionType,
		StartDate:     now,
		Status:        StatusDraft,
	}

	if pl.DiscountType != nil {
		discountType, err := parseDiscountType(*pl.DiscountType)
		if err != nil {
			return nil, err
		}
		p.DiscountType = &discountType
	}
	p.DiscountValue = pl.DiscountValue

	if pl.StartDate != nil {
		start, err := parseDatetime("start_date", *pl.StartDate)
		if err != nil {
			return nil, err
		}
		p.StartDate = start
	}

	expiration, err := parseDatetime("expiration_date", *pl.ExpirationDate)
	if err != nil {
		return nil, err
	}
	p.ExpirationDate = expiration

	if pl.Status != nil {
		status, err := parseStatus(*pl.Status)
		if err != nil {
			return nil, err
		}
		p.Status = status
	}

	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// validate enforces the business-rule invariants. Each rule mirrors a
// database check constraint, so violations carry the unprocessable kind
// whether they are caught here or at commit time.
func (p *Promotion) validate() error {
	if p.OriginalPrice <= 0 {
		return NewError(KindUnprocessable, "original_price must be greater than 0")
	}
	if p.PromotionType == PromotionOther {
		if p.DiscountValue != nil {
			return NewError(KindUnprocessable, "discount_value must be null for promotion_type 'other'")
		}
		if p.DiscountType != nil {
			return NewError(KindUnprocessable, "discount_type must be null for promotion_type 'other'")
		}
	}
	if (p.DiscountType == nil) != (p.DiscountValue == nil) {
		return NewError(KindUnprocessable, "discount_type and discount_value must be provided together")
	}
	if p.DiscountType != nil {
		switch *p.DiscountType {
		case DiscountAmount:
			if *p.DiscountValue > p.OriginalPrice {
				return NewError(KindUnprocessable, "discount_value cannot exceed original_price for 'amount' discounts")
			}
		case DiscountPercent:
			if *p.DiscountValue < 0 || *p.DiscountValue > 100 {
				return NewError(KindUnprocessable, "discount_value must be between 0 and 100 for 'percent' discounts")
			}
		}
	}
	if p.ExpirationDate.Before(p.StartDate) {
		return NewError(KindUnprocessable, "expiration_date cannot be before start_date")
	}
	return nil
}

// AsPayload flattens the promotion back into its wire shape, minus the
// server-assigned fields. Used by duplicate to overlay overrides.
func (p *Promotion) AsPayload() Payload {
	pl := Payload{
		ProductName:   stringPtr(p.ProductName),
		Description:   p.Description,
		OriginalPrice: float64Ptr(p.OriginalPrice),
		DiscountValue: p.DiscountValue,
		PromotionType: stringPtr(string(p.PromotionType)),
	}
	if p.DiscountType != nil {
		pl.DiscountType = stringPtr(string(*p.DiscountType))
	}
	if !p.StartDate.IsZero() {
		pl.StartDate = stringPtr(p.StartDate.Format(time.RFC3339))
	}
	pl.ExpirationDate = stringPtr(p.ExpirationDate.Format(time.RFC3339))
	return pl
}

// Overlay applies the non-nil fields of override on top of base.
func Overlay(base, override Payload) Payload {
	if override.ProductName != nil {
		base.ProductName = override.ProductName
	}
	if override.Description != nil {
		base.Description = override.Description
	}
	if override.OriginalPrice != nil {
		base.OriginalPrice = override.OriginalPrice
	}
	if override.DiscountValue != nil {
		base.DiscountValue = override.DiscountValue
	}
	if override.DiscountType != nil {
		base.DiscountType = override.DiscountType
	}
	if override.PromotionType != nil {
		base.PromotionType = override.PromotionType
	}
	if override.StartDate != nil {
		base.StartDate = override.StartDate
	}
	if override.ExpirationDate != nil {
		base.ExpirationDate = override.ExpirationDate
	}
	return base
}

// CopyName synthesizes a unique product name for a duplicated
// promotion: "{original}_copy_{timestamp}" at second granularity.
func CopyName(original string, now time.Time) string {
	return original + "_copy_" + now.Format("20060102_150405")
}

func stringPtr(s string) *string    { return &s }
func float64Ptr(f float64) *float64 { return &f }
