package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Anchored code indicators. Tried in order: an explicit "code:" label beats
// the looser "use"/"apply" phrasing.
var codeAnchorRegexes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:promo\s*)?code[:\s]+([A-Z0-9][A-Z0-9\-_]{3,19})`),
	regexp.MustCompile(`(?i)coupon[:\s]+([A-Z0-9][A-Z0-9\-_]{3,19})`),
	regexp.MustCompile(`(?i)(?:use|apply)\s+(?:code\s+)?([A-Z0-9][A-Z0-9\-_]{3,19})`),
}

// Standalone code shape: 5-20 uppercase alphanumerics containing both
// letters and digits. Case sensitive on purpose, codes print in caps.
var standaloneCodeRegex = regexp.MustCompile(`\b[A-Z0-9]{5,20}\b`)

var (
	letterRegex = regexp.MustCompile(`[A-Z]`)
	digitRegex  = regexp.MustCompile(`[0-9]`)
)

// codeStopwords are tokens that fit the code shape but never are codes
var codeStopwords = map[string]bool{
	"CODE": true, "COUPON": true, "OFFER": true, "DEAL": true,
	"SAVE": true, "FREE": true, "EXTRA": true, "FLAT": true,
}

// codeStopPrefixes reject tokens that lead with a brand, place, day or
// month name (catches OCR runs like "MYNTRA2025" or "DEC2025FLASH")
var codeStopPrefixes = []string{
	"AMAZON", "FLIPKART", "MYNTRA", "SWIGGY", "ZOMATO", "ABHIBUS",
	"IXIGO", "BOAT", "MIVI", "XYXX", "NEWMEE", "CRED",
	"INDIA", "DELHI", "MUMBAI", "BANGALORE",
	"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY", "SUNDAY",
	"JANUARY", "FEBRUARY", "MARCH", "APRIL", "JUNE", "JULY",
	"AUGUST", "SEPTEMBER", "OCTOBER", "NOVEMBER", "DECEMBER",
}

// findCode locates the redeem code. Anchored indicators win; otherwise the
// first standalone token that survives the false-positive filter is taken.
func findCode(text string) string {
	for _, re := range codeAnchorRegexes {
		if m := re.FindStringSubmatch(text); m != nil {
			code := strings.ToUpper(m[1])
			if !codeStopwords[code] {
				return code
			}
		}
	}

	for _, m := range standaloneCodeRegex.FindAllString(text, -1) {
		if isLikelyFalsePositive(m) {
			continue
		}
		return m
	}

	return ""
}

// isLikelyFalsePositive rejects standalone tokens that are really words,
// names or dates rather than codes
func isLikelyFalsePositive(code string) bool {
	if !letterRegex.MatchString(code) || !digitRegex.MatchString(code) {
		return true
	}
	if codeStopwords[code] {
		return true
	}
	for _, prefix := range codeStopPrefixes {
		if strings.HasPrefix(code, prefix) {
			return true
		}
	}
	return false
}

// Percentage discounts ("20% off", "flat 30%"). Two digits keep the value
// inside 1-99.
var (
	percentRegex     = regexp.MustCompile(`(?i)\b([0-9]{1,2})\s*%\s*(?:off|cashback|discount)`)
	flatPercentRegex = regexp.MustCompile(`(?i)(?:flat|extra|upto|up\s*to)\s*([0-9]{1,2})\s*%`)
)

// Absolute discounts ("₹200 off", "save Rs. 150", "get ₹100 cashback")
var (
	currencyRegex     = regexp.MustCompile(`(?i)(?:₹|rs\.?\s?|inr\s?|\$)([0-9][0-9,]*(?:\.[0-9]{1,2})?)\s*(?:off|cashback|discount|back)`)
	flatCurrencyRegex = regexp.MustCompile(`(?i)(?:flat|save|get)\s*(?:₹|rs\.?\s?|inr\s?|\$)([0-9][0-9,]*(?:\.[0-9]{1,2})?)`)
)

// findCashback pulls the discount value out of the text. Percentages win
// over absolute amounts, matching how offers are headlined.
func findCashback(text string) *decimal.Decimal {
	for _, re := range []*regexp.Regexp{percentRegex, flatPercentRegex} {
		if m := re.FindStringSubmatch(text); m != nil {
			if d, ok := validAmount(m[1], 1, 99); ok {
				return d
			}
		}
	}
	for _, re := range []*regexp.Regexp{currencyRegex, flatCurrencyRegex} {
		if m := re.FindStringSubmatch(text); m != nil {
			if d, ok := validAmount(m[1], 10, 10000); ok {
				return d
			}
		}
	}
	return nil
}

// Minimum order requirements ("min order ₹499", "on orders above Rs. 999")
var minPurchaseRegex = regexp.MustCompile(`(?i)(?:min(?:imum)?\s*(?:order|purchase)(?:\s*(?:of|value))?|orders?\s*(?:above|over)|purchases?\s*(?:above|over))\s*:?\s*(?:₹|rs\.?\s?|inr\s?|\$)?\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`)

func findMinPurchase(text string) *decimal.Decimal {
	if m := minPurchaseRegex.FindStringSubmatch(text); m != nil {
		if d, ok := validAmount(m[1], 50, 50000); ok {
			return d
		}
	}
	return nil
}

// Discount caps ("max discount ₹150", "up to ₹500")
var maxDiscountRegex = regexp.MustCompile(`(?i)(?:max(?:imum)?\s*discount(?:\s*of)?|up\s?to)\s*:?\s*(?:₹|rs\.?\s?|inr\s?|\$)([0-9][0-9,]*(?:\.[0-9]{1,2})?)`)

func findMaxDiscount(text string) *decimal.Decimal {
	if m := maxDiscountRegex.FindStringSubmatch(text); m != nil {
		if d, ok := validAmount(m[1], 10, 50000); ok {
			return d
		}
	}
	return nil
}

// validAmount parses a captured number and checks it against the plausible
// range for its field
func validAmount(s string, low, high int64) (*decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return nil, false
	}
	if d.LessThan(decimal.NewFromInt(low)) || d.GreaterThan(decimal.NewFromInt(high)) {
		return nil, false
	}
	return &d, true
}

// Expiry anchors followed by a numeric or textual date
var (
	expiryNumericRegex = regexp.MustCompile(`(?i)(?:valid\s*(?:till|until|through|upto)|expires?\s*(?:on|at|by)?|expiry(?:\s*date)?|ends?\s*(?:on)?)[\s:;]*([0-9]{1,2}[/-][0-9]{1,2}[/-][0-9]{2,4}|[0-9]{4}-[0-9]{2}-[0-9]{2})`)
	expiryTextualRegex = regexp.MustCompile(`(?i)(?:valid\s*(?:till|until|through|upto)|expires?\s*(?:on|at|by)?|expiry(?:\s*date)?|ends?\s*(?:on)?)[\s:;]*([0-9]{1,2}(?:st|nd|rd|th)?\s+[A-Za-z]+,?\s+[0-9]{2,4}|[A-Za-z]+\s+[0-9]{1,2}(?:st|nd|rd|th)?,?\s+[0-9]{2,4})`)
)

var ordinalRegex = regexp.MustCompile(`([0-9])(?:st|nd|rd|th)`)

func findExpiry(text string) *time.Time {
	if m := expiryNumericRegex.FindStringSubmatch(text); m != nil {
		if t := parseDate(m[1]); t != nil {
			return t
		}
	}
	if m := expiryTextualRegex.FindStringSubmatch(text); m != nil {
		if t := parseDate(ordinalRegex.ReplaceAllString(m[1], "$1")); t != nil {
			return t
		}
	}
	return nil
}

// parseDate tries the date layouts coupons actually print. Day-first
// layouts come before month-first so "15/06/2026" reads as 15 June; an
// impossible month like "12/31/2025" falls through to the US layout.
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
		"02/01/06",
		"01/02/06",
		"2 January 2006",
		"January 2, 2006",
		"2 Jan 2006",
		"Jan 2, 2006",
		"2 Jan 06",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return &t
		}
	}
	return nil
}

// offerLineRegex marks a line as describing the offer itself
var offerLineRegex = regexp.MustCompile(`(?i)\b(?:off|discount|cashback|save|deal|free\s+delivery|buy\s+[0-9]+\s+get)\b`)

// findDescription returns the first line that reads like an offer headline
func findDescription(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) >= 10 && offerLineRegex.MatchString(line) {
			return line
		}
	}
	return ""
}
