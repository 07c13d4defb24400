package extract

import (
	"context"
	"regexp"

	"github.com/couponTracker/coupon-ocr-service/internal/models"
)

// merchantTemplate pins extraction to one merchant's known coupon layout
type merchantTemplate struct {
	store       string         // display name
	category    string         // category the merchant belongs to
	identifiers *regexp.Regexp // word-bounded brand markers
	codePattern *regexp.Regexp // merchant-specific code shape, nil when unknown
}

// merchantTemplates is consulted in order; more specific brands sit above
// the ones they contain ("amazon pay" before "amazon").
var merchantTemplates = []merchantTemplate{
	{
		store:       "Amazon Pay",
		category:    "payments",
		identifiers: regexp.MustCompile(`(?i)\bamazon\s*pay\b`),
	},
	{
		store:       "Amazon",
		category:    "commerce",
		identifiers: regexp.MustCompile(`(?i)\b(?:amazon|amzn|amazon\.in)\b`),
		codePattern: regexp.MustCompile(`\b[A-Z0-9]{8,12}\b`),
	},
	{
		store:       "Flipkart",
		category:    "commerce",
		identifiers: regexp.MustCompile(`(?i)\b(?:flipkart|fkrt|flipkart\.com)\b`),
		codePattern: regexp.MustCompile(`\b(?:FK[A-Z0-9]{6,10}|[A-Z]{2,4}[0-9]{4,8})\b`),
	},
	{
		store:       "Myntra",
		category:    "commerce",
		identifiers: regexp.MustCompile(`(?i)\bmyntra(?:\.com)?\b`),
		codePattern: regexp.MustCompile(`\b(?:MYNTRA[0-9]{4,8}|[A-Z]{3,5}[0-9]{3,6})\b`),
	},
	{
		store:       "Swiggy",
		category:    "food delivery",
		identifiers: regexp.MustCompile(`(?i)\bswiggy(?:\.com)?\b`),
		codePattern: regexp.MustCompile(`\b(?:SWIGGY[0-9]{3,6}|[A-Z]{4,6}[0-9]{2,4})\b`),
	},
	{
		store:       "Zomato",
		category:    "food delivery",
		identifiers: regexp.MustCompile(`(?i)\bzomato(?:\.com)?\b`),
		codePattern: regexp.MustCompile(`\b(?:ZOMATO[0-9]{3,6}|[A-Z]{4,6}[0-9]{2,4})\b`),
	},
	{
		store:       "AbhiBus",
		category:    "travel",
		identifiers: regexp.MustCompile(`(?i)\babhibus\b`),
	},
	{
		store:       "ixigo",
		category:    "travel",
		identifiers: regexp.MustCompile(`(?i)\bixigo\b`),
	},
	{
		store:       "CRED",
		category:    "payments",
		identifiers: regexp.MustCompile(`(?i)\bcred\b`),
	},
	{
		store:       "boAt",
		category:    "commerce",
		identifiers: regexp.MustCompile(`(?i)\bboat\b`),
	},
	{
		store:       "Mivi",
		category:    "commerce",
		identifiers: regexp.MustCompile(`(?i)\bmivi\b`),
	},
	{
		store:       "XYXX",
		category:    "commerce",
		identifiers: regexp.MustCompile(`(?i)\bxyxx\b`),
	},
	{
		store:       "NEWMEE",
		category:    "commerce",
		identifiers: regexp.MustCompile(`(?i)\bnewmee\b`),
	},
}

type templateStrategy struct{}

// NewTemplateStrategy matches the text against known merchant layouts.
// Text that names no known merchant yields an empty proposal: this
// strategy never guesses a store.
func NewTemplateStrategy() Strategy {
	return templateStrategy{}
}

func (templateStrategy) ID() string { return StrategyTemplate }

func (templateStrategy) Trust() float64 { return TrustTemplate }

func (templateStrategy) Run(_ context.Context, in Input) (models.CouponInfo, error) {
	tpl := matchTemplate(in.Text)
	if tpl == nil {
		return models.CouponInfo{}, nil
	}

	info := models.CouponInfo{
		StoreName:   tpl.store,
		Category:    tpl.category,
		Description: findDescription(in.Text),
	}

	info.RedeemCode = tpl.findCode(in.Text)
	info.CashbackAmount = findCashback(in.Text)
	info.ExpiryDate = findExpiry(in.Text)
	info.MinimumPurchase = findMinPurchase(in.Text)
	info.MaximumDiscount = findMaxDiscount(in.Text)

	return info, nil
}

func matchTemplate(text string) *merchantTemplate {
	for i := range merchantTemplates {
		if merchantTemplates[i].identifiers.MatchString(text) {
			return &merchantTemplates[i]
		}
	}
	return nil
}

// findCode prefers the anchored indicators shared with the heuristic, then
// falls back to the merchant's own code shape
func (t *merchantTemplate) findCode(text string) string {
	if code := findCode(text); code != "" {
		return code
	}
	if t.codePattern == nil {
		return ""
	}
	for _, m := range t.codePattern.FindAllString(text, -1) {
		if isLikelyFalsePositive(m) {
			continue
		}
		return m
	}
	return ""
}
