package promo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func discountPromotion(price float64, dt DiscountType, value float64) Promotion {
	return Promotion{
		ProductName:    "Test Product",
		OriginalPrice:  price,
		DiscountValue:  &value,
		DiscountType:   &dt,
		PromotionType:  PromotionDiscount,
		StartDate:      testNow,
		ExpirationDate: testNow.AddDate(0, 1, 0),
		Status:         StatusActive,
	}
}

func TestDiscountedPrice(t *testing.T) {
	tests := []struct {
		name      string
		promotion Promotion
		expected  float64
	}{
		{
			name:      "amount discount",
			promotion: discountPromotion(100, DiscountAmount, 20),
			expected:  80,
		},
		{
			name:      "percent discount",
			promotion: discountPromotion(200, DiscountPercent, 10),
			expected:  180,
		},
		{
			name:      "amount larger than price floors at zero",
			promotion: discountPromotion(5, DiscountAmount, 10),
			expected:  0,
		},
		{
			name:      "percent above hundred floors at zero",
			promotion: discountPromotion(10, DiscountPercent, 150),
			expected:  0,
		},
		{
			name:      "zero discount value keeps original price",
			promotion: discountPromotion(50, DiscountAmount, 0),
			expected:  50,
		},
		{
			name: "other promotion keeps original price",
			promotion: Promotion{
				ProductName:    "Launch Teaser",
				OriginalPrice:  75,
				PromotionType:  PromotionOther,
				StartDate:      testNow,
				ExpirationDate: testNow.AddDate(0, 1, 0),
			},
			expected: 75,
		},
		{
			name: "discount promotion without discount fields keeps original price",
			promotion: Promotion{
				ProductName:    "Plain Discount",
				OriginalPrice:  30,
				PromotionType:  PromotionDiscount,
				StartDate:      testNow,
				ExpirationDate: testNow.AddDate(0, 1, 0),
			},
			expected: 30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, tt.promotion.DiscountedPrice(), 0.0001)
		})
	}
}

func validPayload() Payload {
	return Payload{
		ProductName:    stringPtr("Test Product"),
		OriginalPrice:  float64Ptr(100),
		DiscountValue:  float64Ptr(20),
		DiscountType:   stringPtr("amount"),
		PromotionType:  stringPtr("discount"),
		ExpirationDate: stringPtr("2025-07-01T00:00:00Z"),
	}
}

func TestPayloadBuild_Success(t *testing.T) {
	p, err := validPayload().Build(testNow)

	assert.NoError(t, err)
	assert.Equal(t, "Test Product", p.ProductName)
	assert.Equal(t, float64(100), p.OriginalPrice)
	assert.Equal(t, PromotionDiscount, p.PromotionType)
	assert.Equal(t, DiscountAmount, *p.DiscountType)
	assert.Equal(t, float64(20), *p.DiscountValue)
	// Defaults: start_date is now, status is draft.
	assert.Equal(t, testNow, p.StartDate)
	assert.Equal(t, StatusDraft, p.Status)
}

func TestPayloadBuild_AcceptedDateLayouts(t *testing.T) {
	for _, value := range []string{
		"2025-07-01T00:00:00Z",
		"2025-07-01T00:00:00+02:00",
		"2025-07-01T00:00:00",
		"2025-07-01",
	} {
		t.Run(value, func(t *testing.T) {
			payload := validPayload()
			payload.ExpirationDate = stringPtr(value)

			_, err := payload.Build(testNow)
			assert.NoError(t, err)
		})
	}
}

func TestPayloadBuild_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Payload)
	}{
		{"product_name", func(p *Payload) { p.ProductName = nil }},
		{"empty product_name", func(p *Payload) { p.ProductName = stringPtr("") }},
		{"original_price", func(p *Payload) { p.OriginalPrice = nil }},
		{"promotion_type", func(p *Payload) { p.PromotionType = nil }},
		{"expiration_date", func(p *Payload) { p.ExpirationDate = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validPayload()
			tt.mutate(&payload)

			_, err := payload.Build(testNow)
			assert.Error(t, err)
			assert.Equal(t, KindBadRequest, KindOf(err))
		})
	}
}

func TestPayloadBuild_MalformedFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Payload)
	}{
		{"unknown promotion_type", func(p *Payload) { p.PromotionType = stringPtr("flash_sale") }},
		{"unknown discount_type", func(p *Payload) { p.DiscountType = stringPtr("bogus") }},
		{"unknown status", func(p *Payload) { p.Status = stringPtr("archived") }},
		{"garbage expiration_date", func(p *Payload) { p.ExpirationDate = stringPtr("not-a-date") }},
		{"garbage start_date", func(p *Payload) { p.StartDate = stringPtr("yesterday") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validPayload()
			tt.mutate(&payload)

			_, err := payload.Build(testNow)
			assert.Error(t, err)
			assert.Equal(t, KindBadRequest, KindOf(err))
		})
	}
}

func TestPayloadBuild_BusinessRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Payload)
	}{
		{"zero original_price", func(p *Payload) { p.OriginalPrice = float64Ptr(0) }},
		{"negative original_price", func(p *Payload) { p.OriginalPrice = float64Ptr(-10) }},
		{"amount discount exceeds price", func(p *Payload) { p.DiscountValue = float64Ptr(150) }},
		{"percent discount above hundred", func(p *Payload) {
			p.DiscountType = stringPtr("percent")
			p.DiscountValue = float64Ptr(120)
		}},
		{"discount_value without discount_type", func(p *Payload) { p.DiscountType = nil }},
		{"discount_type without discount_value", func(p *Payload) { p.DiscountValue = nil }},
		{"other promotion with discount fields", func(p *Payload) { p.PromotionType = stringPtr("other") }},
		{"expiration before start", func(p *Payload) {
			p.StartDate = stringPtr("2025-08-01T00:00:00Z")
			p.ExpirationDate = stringPtr("2025-07-01T00:00:00Z")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validPayload()
			tt.mutate(&payload)

			_, err := payload.Build(testNow)
			assert.Error(t, err)
			assert.Equal(t, KindUnprocessable, KindOf(err))
		})
	}
}

func TestPayloadBuild_ExpirationEqualToStartAllowed(t *testing.T) {
	payload := validPayload()
	payload.StartDate = stringPtr("2025-07-01T00:00:00Z")
	payload.ExpirationDate = stringPtr("2025-07-01T00:00:00Z")

	_, err := payload.Build(testNow)
	assert.NoError(t, err)
}

func TestPayloadBuild_OtherPromotionWithoutDiscount(t *testing.T) {
	payload := Payload{
		ProductName:    stringPtr("Announcement"),
		OriginalPrice:  float64Ptr(15),
		PromotionType:  stringPtr("other"),
		ExpirationDate: stringPtr("2025-07-01"),
	}

	p, err := payload.Build(testNow)
	assert.NoError(t, err)
	assert.Equal(t, PromotionOther, p.PromotionType)
	assert.Nil(t, p.DiscountType)
	assert.Nil(t, p.DiscountValue)
}

func TestOverlay(t *testing.T) {
	base := validPayload()
	override := Payload{
		ProductName:   stringPtr("Renamed"),
		DiscountValue: float64Ptr(35),
	}

	merged := Overlay(base, override)

	assert.Equal(t, "Renamed", *merged.ProductName)
	assert.Equal(t, float64(35), *merged.DiscountValue)
	// Untouched fields come from the base.
	assert.Equal(t, float64(100), *merged.OriginalPrice)
	assert.Equal(t, "discount", *merged.PromotionType)
}

func TestAsPayloadRoundTrip(t *testing.T) {
	source := discountPromotion(100, DiscountAmount, 20)

	rebuilt, err := source.AsPayload().Build(testNow)

	assert.NoError(t, err)
	assert.Equal(t, source.ProductName, rebuilt.ProductName)
	assert.Equal(t, source.OriginalPrice, rebuilt.OriginalPrice)
	assert.Equal(t, *source.DiscountValue, *rebuilt.DiscountValue)
	assert.Equal(t, *source.DiscountType, *rebuilt.DiscountType)
	assert.Equal(t, source.PromotionType, rebuilt.PromotionType)
	assert.True(t, source.StartDate.Equal(rebuilt.StartDate))
	assert.True(t, source.ExpirationDate.Equal(rebuilt.ExpirationDate))
	// Status never survives the flattening; a rebuilt promotion is a draft.
	assert.Equal(t, StatusDraft, rebuilt.Status)
}

func TestCopyName(t *testing.T) {
	assert.Equal(t, "Widget_copy_20250601_120000", CopyName("Widget", testNow))
}

func TestStatusesForRole(t *testing.T) {
	tests := []struct {
		role     string
		statuses []Status
		wantErr  bool
	}{
		{role: "", statuses: nil},
		{role: "manager", statuses: nil},
		{role: "customer", statuses: []Status{StatusActive}},
		{role: "supplier", statuses: []Status{StatusActive, StatusExpired}},
		{role: "root", wantErr: true},
		{role: "Customer", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("role "+tt.role, func(t *testing.T) {
			statuses, err := StatusesForRole(tt.role)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, KindBadRequest, KindOf(err))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.statuses, statuses)
		})
	}
}
