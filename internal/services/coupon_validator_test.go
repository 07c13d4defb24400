package services

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couponTracker/coupon-ocr-service/internal/models"
)

var testCategories = []string{"commerce", "food delivery", "payments", "travel", "entertainment"}

func dec(t *testing.T, v string) *decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(v)
	require.NoError(t, err)
	return &d
}

func validCoupon(t *testing.T) *models.CouponInfo {
	t.Helper()
	expiry := time.Now().AddDate(0, 6, 0)
	return &models.CouponInfo{
		StoreName:      "Myntra",
		Description:    "Get ₹200 off on orders above ₹999",
		CashbackAmount: dec(t, "200"),
		RedeemCode:     "SAVE200",
		ExpiryDate:     &expiry,
		Category:       "commerce",
	}
}

func warningCodes(result *ValidationResult) []string {
	codes := make([]string, 0, len(result.Warnings))
	for _, w := range result.Warnings {
		codes = append(codes, w.Code)
	}
	return codes
}

func errorCodes(result *ValidationResult) []string {
	codes := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		codes = append(codes, e.Code)
	}
	return codes
}

func TestValidateCleanCoupon(t *testing.T) {
	v := NewCouponValidator(testCategories)

	result := v.Validate(validCoupon(t))

	assert.True(t, result.Valid)
	assert.False(t, result.NeedsReview)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestValidateEmptyCoupon(t *testing.T) {
	v := NewCouponValidator(testCategories)

	result := v.Validate(&models.CouponInfo{})

	require.False(t, result.Valid)
	assert.Equal(t, []string{"no_fields"}, errorCodes(result))
}

func TestValidateCodeShape(t *testing.T) {
	v := NewCouponValidator(testCategories)

	cases := map[string]bool{
		"SAVE200":   true,
		"FK-2024_X": true,
		"save200":   false, // lowercase
		"ABC":       false, // too short
		"GET 200":   false, // embedded space
		"-LEADING":  false, // separator first
	}

	for code, wantValid := range cases {
		info := validCoupon(t)
		info.RedeemCode = code
		result := v.Validate(info)
		assert.Equal(t, wantValid, result.Valid, "code %q", code)
	}
}

func TestValidateNegativeCashbackIsError(t *testing.T) {
	v := NewCouponValidator(testCategories)
	info := validCoupon(t)
	info.CashbackAmount = dec(t, "-5")

	result := v.Validate(info)

	require.False(t, result.Valid)
	assert.Contains(t, errorCodes(result), "amount_not_positive")
}

func TestValidateAmountRangeWarnings(t *testing.T) {
	v := NewCouponValidator(testCategories)
	info := validCoupon(t)
	info.CashbackAmount = dec(t, "25000")
	info.MinimumPurchase = dec(t, "25")

	result := v.Validate(info)

	assert.True(t, result.Valid)
	assert.True(t, result.NeedsReview)
	assert.Contains(t, warningCodes(result), "amount_out_of_range")
	assert.Contains(t, warningCodes(result), "min_purchase_out_of_range")
}

func TestValidateCapAgainstCashback(t *testing.T) {
	v := NewCouponValidator(testCategories)

	// Percent cashback with a currency cap is the normal shape.
	info := validCoupon(t)
	info.CashbackAmount = dec(t, "60")
	info.MaximumDiscount = dec(t, "120")
	assert.NotContains(t, warningCodes(v.Validate(info)), "cap_below_cashback")

	// A cap below a flat cashback cannot pay out.
	info = validCoupon(t)
	info.CashbackAmount = dec(t, "200")
	info.MaximumDiscount = dec(t, "120")
	assert.Contains(t, warningCodes(v.Validate(info)), "cap_below_cashback")
}

func TestValidateExpiry(t *testing.T) {
	v := NewCouponValidator(testCategories)

	info := validCoupon(t)
	past := time.Now().AddDate(-1, 0, 0)
	info.ExpiryDate = &past
	result := v.Validate(info)
	assert.True(t, result.Valid)
	assert.Contains(t, warningCodes(result), "coupon_expired")

	info = validCoupon(t)
	far := time.Now().AddDate(10, 0, 0)
	info.ExpiryDate = &far
	assert.Contains(t, warningCodes(v.Validate(info)), "expiry_too_far")
}

func TestValidateCategory(t *testing.T) {
	v := NewCouponValidator(testCategories)

	info := validCoupon(t)
	info.Category = "gadgets"
	assert.Contains(t, warningCodes(v.Validate(info)), "unknown_category")

	info.Category = "Food Delivery"
	assert.NotContains(t, warningCodes(v.Validate(info)), "unknown_category")

	// No configured categories means anything goes.
	open := NewCouponValidator(nil)
	info.Category = "gadgets"
	assert.NotContains(t, warningCodes(open.Validate(info)), "unknown_category")
}

func TestValidateStoreNameLength(t *testing.T) {
	v := NewCouponValidator(testCategories)
	info := validCoupon(t)
	info.StoreName = strings.Repeat("x", 61)

	assert.Contains(t, warningCodes(v.Validate(info)), "store_name_too_long")
}

func TestValidateStatusAndRating(t *testing.T) {
	v := NewCouponValidator(testCategories)

	info := validCoupon(t)
	info.Status = "pending"
	assert.Contains(t, warningCodes(v.Validate(info)), "unknown_status")

	info = validCoupon(t)
	info.Status = "Active"
	info.Rating = 4.5
	result := v.Validate(info)
	assert.Empty(t, result.Warnings)

	info.Rating = 7
	assert.Contains(t, warningCodes(v.Validate(info)), "rating_out_of_range")
}
