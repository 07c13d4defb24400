package extract

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/couponTracker/coupon-ocr-service/internal/models"
)

type regionStrategy struct{}

// NewRegionStrategy reads the word geometry the OCR engine reported.
// Coupon banners put the brand in the largest type at the top, so the
// store name comes from line prominence rather than keywords. Engines
// that return no geometry yield an empty proposal.
func NewRegionStrategy() Strategy {
	return regionStrategy{}
}

func (regionStrategy) ID() string { return StrategyRegion }

func (regionStrategy) Trust() float64 { return TrustRegion }

func (regionStrategy) Run(_ context.Context, in Input) (models.CouponInfo, error) {
	if len(in.Words) == 0 {
		return models.CouponInfo{}, nil
	}

	lines := groupLines(in.Words)

	// Reassemble the text in reading order; engines sometimes emit words
	// column by column, which scrambles the anchored patterns.
	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = l.text()
	}
	layout := strings.Join(texts, "\n")

	info := models.CouponInfo{
		StoreName:   pickStore(lines),
		RedeemCode:  findCode(layout),
		Description: findDescription(layout),
	}

	info.CashbackAmount = findCashback(layout)
	info.ExpiryDate = findExpiry(layout)
	info.MinimumPurchase = findMinPurchase(layout)
	info.MaximumDiscount = findMaxDiscount(layout)

	return info, nil
}

// line is a horizontal band of words sharing a baseline
type line struct {
	words  []models.Word
	center float64 // running mean of the word Y centers
	height int     // tallest word in the band
}

func (l *line) text() string {
	parts := make([]string, len(l.words))
	for i, w := range l.words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

// groupLines clusters words whose vertical centers sit within half the
// median word height of each other
func groupLines(words []models.Word) []*line {
	sorted := append([]models.Word(nil), words...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Box.Y*2+sorted[i].Box.Height < sorted[j].Box.Y*2+sorted[j].Box.Height
	})

	tolerance := float64(medianHeight(sorted)) / 2
	if tolerance < 1 {
		tolerance = 1
	}

	var lines []*line
	for _, w := range sorted {
		center := float64(w.Box.Y) + float64(w.Box.Height)/2

		if len(lines) > 0 && math.Abs(center-lines[len(lines)-1].center) <= tolerance {
			cur := lines[len(lines)-1]
			cur.words = append(cur.words, w)
			cur.center += (center - cur.center) / float64(len(cur.words))
			if w.Box.Height > cur.height {
				cur.height = w.Box.Height
			}
			continue
		}

		lines = append(lines, &line{
			words:  []models.Word{w},
			center: center,
			height: w.Box.Height,
		})
	}

	for _, l := range lines {
		sort.Slice(l.words, func(i, j int) bool {
			return l.words[i].Box.X < l.words[j].Box.X
		})
	}

	return lines
}

func medianHeight(words []models.Word) int {
	heights := make([]int, len(words))
	for i, w := range words {
		heights[i] = w.Box.Height
	}
	sort.Ints(heights)
	return heights[len(heights)/2]
}

// storeLineBanRegex rejects lines that clearly belong to the offer body
var storeLineBanRegex = regexp.MustCompile(`(?i)\b(?:code|coupon|valid|expires?|expiry|terms|conditions)\b`)

// pickStore returns the topmost line printed in near-maximum type that
// reads like a name
func pickStore(lines []*line) string {
	maxHeight := 0
	for _, l := range lines {
		if l.height > maxHeight {
			maxHeight = l.height
		}
	}
	if maxHeight == 0 {
		return ""
	}

	for _, l := range lines {
		if float64(l.height) < 0.8*float64(maxHeight) {
			continue
		}
		text := strings.TrimSpace(l.text())
		if n := utf8.RuneCountInString(text); n < 2 || n > 25 {
			continue
		}
		if storeLineBanRegex.MatchString(text) || offerLineRegex.MatchString(text) {
			continue
		}
		if startsWithAmount(text) {
			continue
		}
		return titleCase(text)
	}

	return ""
}

func startsWithAmount(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsDigit(r) || r == '₹' || r == '$'
}

// titleCase normalizes shouting banner text. Mixed-case brand spellings
// pass through untouched.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if w != strings.ToUpper(w) && w != strings.ToLower(w) {
			continue
		}
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
