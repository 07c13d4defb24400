package extract

import "github.com/couponTracker/coupon-ocr-service/internal/models"

// Field weights. The redeem code dominates: a coupon without its code
// cannot be used, while everything else is context.
const (
	weightRedeemCode  = 0.40
	weightStoreName   = 0.25
	weightCashback    = 0.25
	weightExpiry      = 0.25
	weightDescription = 0.10
	weightExtended    = 0.05
)

// Completeness scores how much of a coupon a strategy recovered.
//
// Weight breakdown:
//
//	redeemCode      0.40
//	storeName       0.25
//	cashbackAmount  0.25
//	expiryDate      0.25
//	description     0.10
//	extended fields 0.05 each (minimumPurchase, maximumDiscount,
//	                paymentMethod, usageLimit, rating, status, category)
//
// The sum intentionally exceeds 1.0: the score ranks proposals against
// each other, and the caller clamps it before reporting a confidence.
func Completeness(info models.CouponInfo) float64 {
	var score float64

	if info.RedeemCode != "" {
		score += weightRedeemCode
	}
	if info.StoreName != "" {
		score += weightStoreName
	}
	if info.CashbackAmount != nil {
		score += weightCashback
	}
	if info.ExpiryDate != nil {
		score += weightExpiry
	}
	if info.Description != "" {
		score += weightDescription
	}

	if info.MinimumPurchase != nil {
		score += weightExtended
	}
	if info.MaximumDiscount != nil {
		score += weightExtended
	}
	if info.PaymentMethod != "" {
		score += weightExtended
	}
	if info.UsageLimit != "" {
		score += weightExtended
	}
	if info.Rating != 0 {
		score += weightExtended
	}
	if info.Status != "" {
		score += weightExtended
	}
	if info.Category != "" {
		score += weightExtended
	}

	return score
}
