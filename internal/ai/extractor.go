package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/couponTracker/coupon-ocr-service/internal/models"
)

// Extractor handles AI-based field extraction from OCR text
type Extractor struct {
	provider   Provider
	categories []string
}

// NewExtractor creates a new AI extractor
func NewExtractor(provider Provider, categories []string) *Extractor {
	return &Extractor{
		provider:   provider,
		categories: categories,
	}
}

// Extract asks the provider to pull structured coupon fields out of OCR text
func (e *Extractor) Extract(ctx context.Context, ocrText string) (models.CouponInfo, error) {
	prompt := e.buildPrompt(ocrText)

	response, err := e.provider.Complete(ctx, prompt)
	if err != nil {
		return models.CouponInfo{}, fmt.Errorf("AI extraction failed: %w", err)
	}

	info, err := e.parseResponse(response)
	if err != nil {
		return models.CouponInfo{}, fmt.Errorf("failed to parse AI response: %w", err)
	}

	return info, nil
}

// buildPrompt creates the field extraction prompt for coupon text
func (e *Extractor) buildPrompt(ocrText string) string {
	prompt := fmt.Sprintf(`You are an EXPERT at reading retail coupons, promo codes and cashback offers. Extract the structured fields from this OCR text.

## FIELDS TO EXTRACT

Return ONLY valid JSON (no markdown, no comments):
{
  "storeName": "merchant or brand the offer belongs to",
  "description": "one line describing the offer",
  "cashbackAmount": number (discount or cashback value, null if absent),
  "redeemCode": "the code the user applies at checkout",
  "expiryDate": "YYYY-MM-DD or null",
  "category": "one of: %s, or null",
  "minimumPurchase": number (minimum order value to redeem, null if absent),
  "maximumDiscount": number (cap on the discount, null if absent),
  "paymentMethod": "card or wallet restriction, null if absent",
  "usageLimit": "redemption limit like once per user, null if absent"
}

## CRITICAL RULES
1. NEVER invent data - use null for anything not present in the text
2. redeemCode is the literal token typed at checkout; keep its exact casing, strip surrounding punctuation
3. Do NOT confuse the store name with the code: codes sit near words like "code", "use", "apply"
4. cashbackAmount is a bare number without currency symbols; for "20%% off" use 20
5. Convert dates to YYYY-MM-DD; slash dates like 12/31/2025 read month/day/year
6. OCR text is noisy: ignore garbled fragments instead of guessing

Coupon text:
%s`, strings.Join(e.categories, ", "), ocrText)

	return prompt
}

// parseResponse converts the AI JSON response to a CouponInfo
func (e *Extractor) parseResponse(response string) (models.CouponInfo, error) {
	// Clean response (remove markdown code blocks if present)
	cleaned := strings.TrimSpace(response)
	backticks := string([]byte{96, 96, 96})
	cleaned = strings.ReplaceAll(cleaned, backticks+"json", "")
	cleaned = strings.ReplaceAll(cleaned, backticks, "")

	// Models wrap the JSON in chatter ("Sure! {...} Hope this helps."),
	// so slice out the outermost object before unmarshalling.
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return models.CouponInfo{}, fmt.Errorf("no JSON object in response: %s", cleaned)
	}
	cleaned = cleaned[start : end+1]

	// Parse JSON - use interface{} for flexible number parsing (handles strings with commas)
	var raw struct {
		StoreName       string      `json:"storeName"`
		Store           string      `json:"store"` // Alternative field name
		Description     string      `json:"description"`
		CashbackAmount  interface{} `json:"cashbackAmount"`
		Amount          interface{} `json:"amount"` // Alternative field name
		RedeemCode      string      `json:"redeemCode"`
		Code            string      `json:"code"` // Alternative field name
		ExpiryDate      string      `json:"expiryDate"`
		Expiry          string      `json:"expiry"` // Alternative field name
		Category        string      `json:"category"`
		MinimumPurchase interface{} `json:"minimumPurchase"`
		MaximumDiscount interface{} `json:"maximumDiscount"`
		PaymentMethod   string      `json:"paymentMethod"`
		UsageLimit      string      `json:"usageLimit"`
	}

	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return models.CouponInfo{}, fmt.Errorf("JSON parse error: %w - Response: %s", err, cleaned)
	}

	store := raw.StoreName
	if store == "" {
		store = raw.Store
	}
	code := raw.RedeemCode
	if code == "" {
		code = raw.Code
	}
	expiry := raw.ExpiryDate
	if expiry == "" {
		expiry = raw.Expiry
	}
	amount := raw.CashbackAmount
	if amount == nil {
		amount = raw.Amount
	}

	info := models.CouponInfo{
		StoreName:     cleanField(store),
		Description:   cleanField(raw.Description),
		RedeemCode:    strings.Trim(cleanField(code), ".,;:"),
		PaymentMethod: cleanField(raw.PaymentMethod),
		UsageLimit:    cleanField(raw.UsageLimit),
	}

	info.CashbackAmount = parseAmount(amount)
	info.MinimumPurchase = parseAmount(raw.MinimumPurchase)
	info.MaximumDiscount = parseAmount(raw.MaximumDiscount)
	info.ExpiryDate = parseDate(expiry)

	category := strings.ToLower(cleanField(raw.Category))
	if e.allowedCategory(category) {
		info.Category = category
	}

	return info, nil
}

// allowedCategory reports whether the model returned one of the configured
// categories. An empty configuration accepts anything.
func (e *Extractor) allowedCategory(category string) bool {
	if category == "" {
		return false
	}
	if len(e.categories) == 0 {
		return true
	}
	for _, c := range e.categories {
		if category == c {
			return true
		}
	}
	return false
}

// Helper functions

// cleanField trims whitespace and maps the literal "null" the models
// sometimes emit for string fields to empty.
func cleanField(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "null") || strings.EqualFold(s, "n/a") {
		return ""
	}
	return s
}

func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	formats := []string{
		"2006-01-02",
		"02/01/2006",
		"02-01-2006",
		"2006/01/02",
		"01/02/2006",
		"2006-01-02T15:04:05Z07:00",
		"January 2, 2006",
		"2 January 2006",
		"Jan 2, 2006",
		"2 Jan 2006",
		"02 Jan 2006",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return &t
		}
	}
	return nil
}

// parseAmount converts a flexible JSON value to a positive amount.
// Missing, zero and negative values all mean "not present".
func parseAmount(v interface{}) *decimal.Decimal {
	d := parseDecimal(v)
	if d.LessThanOrEqual(decimal.Zero) {
		return nil
	}
	return &d
}

// parseDecimal handles flexible number parsing from interface{}
// Supports: numbers, strings, strings with commas (e.g., "1,500.00")
func parseDecimal(v interface{}) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}

	switch val := v.(type) {
	case float64:
		return decimal.NewFromFloat(val)
	case int:
		return decimal.NewFromInt(int64(val))
	case int64:
		return decimal.NewFromInt(val)
	case string:
		if val == "" || strings.EqualFold(val, "null") {
			return decimal.Zero
		}
		// Remove commas and currency markers the models sometimes leave in
		cleaned := strings.ReplaceAll(val, ",", "")
		cleaned = strings.TrimLeft(cleaned, "₹$Rs. ")
		d, err := decimal.NewFromString(cleaned)
		if err != nil {
			return decimal.Zero
		}
		return d
	case json.Number:
		if val == "" {
			return decimal.Zero
		}
		d, err := decimal.NewFromString(string(val))
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}
