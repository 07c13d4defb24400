package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CouponInfo represents the structured fields extracted from a coupon image
type CouponInfo struct {
	// Core fields
	StoreName      string           `json:"storeName,omitempty"`      // Merchant/brand name
	Description    string           `json:"description,omitempty"`    // Offer description line
	CashbackAmount *decimal.Decimal `json:"cashbackAmount,omitempty"` // Discount or cashback value
	RedeemCode     string           `json:"redeemCode,omitempty"`     // Alphanumeric redeem code
	ExpiryDate     *time.Time       `json:"expiryDate,omitempty"`     // Offer expiry
	Category       string           `json:"category,omitempty"`       // commerce, food delivery, payments, travel, entertainment

	// Extended fields
	MinimumPurchase *decimal.Decimal `json:"minimumPurchase,omitempty"` // Minimum order value to redeem
	MaximumDiscount *decimal.Decimal `json:"maximumDiscount,omitempty"` // Cap on the discount
	PaymentMethod   string           `json:"paymentMethod,omitempty"`   // Card/wallet restriction
	UsageLimit      string           `json:"usageLimit,omitempty"`      // e.g. "once per user"
	Rating          float64          `json:"rating,omitempty"`          // User rating from the source listing
	Status          string           `json:"status,omitempty"`          // active, expired, used

	// Raw data
	RawText string `json:"rawText,omitempty"` // Complete OCR text

	// Metadata
	Confidence  float64   `json:"confidence"`  // Overall confidence score (0-1)
	ProcessedAt time.Time `json:"processedAt"` // When it was processed
}

// IsEmpty reports whether no coupon field was extracted.
// RawText, Confidence and ProcessedAt are metadata and do not count.
func (c *CouponInfo) IsEmpty() bool {
	return c.StoreName == "" &&
		c.Description == "" &&
		c.RedeemCode == "" &&
		c.Category == "" &&
		c.PaymentMethod == "" &&
		c.UsageLimit == "" &&
		c.Status == "" &&
		c.Rating == 0 &&
		c.CashbackAmount == nil &&
		c.MinimumPurchase == nil &&
		c.MaximumDiscount == nil &&
		c.ExpiryDate == nil
}

// Word is a single recognized token with its position in the source image
type Word struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Box        Box     `json:"box"`
}

// Box is the axis-aligned pixel rectangle bounding a recognized word
type Box struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// OcrCandidate is one engine's reading of one image variant
type OcrCandidate struct {
	Text   string  `json:"text"`
	Words  []Word  `json:"words,omitempty"`
	Engine string  `json:"engine,omitempty"`
	Score  float64 `json:"score"` // rune count of Text times engine trust
}

// ExtractionCandidate is one strategy's proposal with its ranking score
type ExtractionCandidate struct {
	Info     CouponInfo `json:"info"`
	Strategy string     `json:"strategy"`
	Score    float64    `json:"score"` // field completeness times strategy trust
}

// ScanRequest represents the input for coupon scanning
type ScanRequest struct {
	// Image data (raw bytes from multipart upload or CLI file)
	ImageData []byte `json:"-"`
}

// ScanResult represents the output of coupon scanning
type ScanResult struct {
	Success bool        `json:"success"`
	Coupon  *CouponInfo `json:"coupon,omitempty"`
	Error   string      `json:"error,omitempty"`

	// Processing metadata
	Engine          string  `json:"engine,omitempty"`          // OCR engine whose text won
	Strategy        string  `json:"strategy,omitempty"`        // Extraction strategy whose fields won
	Cached          bool    `json:"cached,omitempty"`          // Served from the scan cache
	OCRDuration     float64 `json:"ocrDuration,omitempty"`     // OCR time in seconds
	ExtractDuration float64 `json:"extractDuration,omitempty"` // Field extraction time in seconds
	TotalDuration   float64 `json:"totalDuration"`             // Total processing time
}
