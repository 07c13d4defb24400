package services

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/couponTracker/coupon-ocr-service/internal/models"
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationWarning represents a non-critical issue
type ValidationWarning struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult is the response from validation
type ValidationResult struct {
	Valid       bool                `json:"valid"`
	NeedsReview bool                `json:"needs_review"`
	Errors      []ValidationError   `json:"errors"`
	Warnings    []ValidationWarning `json:"warnings"`
}

// redeemCodePattern matches codes the way merchants print them:
// upper-case alphanumerics, 4 to 20 characters, dashes and underscores
// allowed after the first character.
var redeemCodePattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9\-_]{3,19}$`)

// Plausible value ranges for coupon listings. Values outside them are
// usually OCR misreads: a stray digit turns 100 into 1000.
var (
	amountMin      = decimal.NewFromInt(1)     // percents start at 1
	amountMax      = decimal.NewFromInt(10000) // flat cashback rarely exceeds this
	percentMax     = decimal.NewFromInt(99)
	minPurchaseMin = decimal.NewFromInt(50)
	minPurchaseMax = decimal.NewFromInt(50000)
)

var knownStatuses = map[string]bool{
	"active":  true,
	"expired": true,
	"used":    true,
}

// CouponValidator checks extracted or manually entered coupon fields
// against the value ranges real offers fall into. Errors mark a record
// unusable; warnings mark it for manual review.
type CouponValidator struct {
	categories map[string]bool
}

// NewCouponValidator creates a validator accepting the configured categories.
// An empty list accepts any category.
func NewCouponValidator(categories []string) *CouponValidator {
	v := &CouponValidator{categories: make(map[string]bool, len(categories))}
	for _, c := range categories {
		v.categories[strings.ToLower(c)] = true
	}
	return v
}

// Validate performs all field checks on a coupon record
func (v *CouponValidator) Validate(info *models.CouponInfo) *ValidationResult {
	result := &ValidationResult{
		Valid:       true,
		NeedsReview: false,
		Errors:      []ValidationError{},
		Warnings:    []ValidationWarning{},
	}

	// 1. At least one field must be present
	v.validatePresence(info, result)

	// 2. Redeem code shape
	v.validateCode(info, result)

	// 3. Amount ranges and cap coherence
	v.validateAmounts(info, result)

	// 4. Store name and category
	v.validateNames(info, result)

	// 5. Expiry plausibility
	v.validateExpiry(info, result)

	// 6. Status and rating
	v.validateMeta(info, result)

	// Set final status
	result.Valid = len(result.Errors) == 0
	result.NeedsReview = len(result.Warnings) > 0

	return result
}

// validatePresence rejects records with no extracted fields at all
func (v *CouponValidator) validatePresence(info *models.CouponInfo, result *ValidationResult) {
	if info.IsEmpty() {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "coupon",
			Code:    "no_fields",
			Message: "at least one coupon field is required",
		})
	}
}

// validateCode checks the redeem code shape
func (v *CouponValidator) validateCode(info *models.CouponInfo, result *ValidationResult) {
	if info.RedeemCode == "" {
		return
	}

	if !redeemCodePattern.MatchString(info.RedeemCode) {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "redeemCode",
			Code:    "code_invalid_format",
			Message: "redeem code must be 4-20 upper-case alphanumeric characters",
		})
	}
}

// validateAmounts checks value ranges and the cap against the cashback
func (v *CouponValidator) validateAmounts(info *models.CouponInfo, result *ValidationResult) {
	if info.CashbackAmount != nil {
		amount := *info.CashbackAmount
		if amount.Sign() <= 0 {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "cashbackAmount",
				Code:    "amount_not_positive",
				Message: "cashback amount must be greater than zero",
			})
		} else if amount.LessThan(amountMin) || amount.GreaterThan(amountMax) {
			result.Warnings = append(result.Warnings, ValidationWarning{
				Field:   "cashbackAmount",
				Code:    "amount_out_of_range",
				Message: "cashback " + amount.String() + " falls outside the plausible 1-10000 range",
			})
		}
	}

	if info.MinimumPurchase != nil {
		if info.MinimumPurchase.LessThan(minPurchaseMin) || info.MinimumPurchase.GreaterThan(minPurchaseMax) {
			result.Warnings = append(result.Warnings, ValidationWarning{
				Field:   "minimumPurchase",
				Code:    "min_purchase_out_of_range",
				Message: "minimum purchase " + info.MinimumPurchase.String() + " falls outside the plausible 50-50000 range",
			})
		}
	}

	// A currency cap below a flat cashback makes the offer impossible.
	// Percent values (1-99) are skipped: their cap is in currency.
	if info.MaximumDiscount != nil && info.CashbackAmount != nil {
		if info.CashbackAmount.GreaterThan(percentMax) && info.MaximumDiscount.LessThan(*info.CashbackAmount) {
			result.Warnings = append(result.Warnings, ValidationWarning{
				Field:   "maximumDiscount",
				Code:    "cap_below_cashback",
				Message: "maximum discount is lower than the flat cashback amount",
			})
		}
	}
}

// validateNames checks the store name length and the category
func (v *CouponValidator) validateNames(info *models.CouponInfo, result *ValidationResult) {
	if utf8.RuneCountInString(info.StoreName) > 60 {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "storeName",
			Code:    "store_name_too_long",
			Message: "store name longer than 60 characters is usually a misread offer line",
		})
	}

	if info.Category != "" && len(v.categories) > 0 && !v.categories[strings.ToLower(info.Category)] {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "category",
			Code:    "unknown_category",
			Message: "category is not in the configured list: " + info.Category,
		})
	}
}

// validateExpiry flags dates in the past or implausibly far out
func (v *CouponValidator) validateExpiry(info *models.CouponInfo, result *ValidationResult) {
	if info.ExpiryDate == nil {
		return
	}

	now := time.Now()
	if now.After(*info.ExpiryDate) {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "expiryDate",
			Code:    "coupon_expired",
			Message: "expiry date is in the past",
		})
	}
	if info.ExpiryDate.After(now.AddDate(5, 0, 0)) {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "expiryDate",
			Code:    "expiry_too_far",
			Message: "expiry date more than five years out is usually a misread year",
		})
	}
}

// validateMeta checks the status value and the rating range
func (v *CouponValidator) validateMeta(info *models.CouponInfo, result *ValidationResult) {
	if info.Status != "" && !knownStatuses[strings.ToLower(info.Status)] {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "status",
			Code:    "unknown_status",
			Message: "status must be one of active, expired, used",
		})
	}

	if info.Rating < 0 || info.Rating > 5 {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "rating",
			Code:    "rating_out_of_range",
			Message: "rating must fall between 0 and 5",
		})
	}
}
