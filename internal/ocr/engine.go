// Package ocr runs recognition backends against preprocessed image variants
// and selects the best raw-text reading.
package ocr

import (
	"context"

	"github.com/couponTracker/coupon-ocr-service/internal/models"
	"github.com/couponTracker/coupon-ocr-service/internal/preprocess"
)

// Engine IDs, used as availability map keys and candidate tags.
const (
	EngineTesseract = "tesseract"
	EngineVision    = "vision"
	EngineAI        = "ai"
	EngineCombined  = "combined"
)

// Engine trust multipliers for candidate scoring. These are tunable
// tie-breakers, not calibrated probabilities.
const (
	TrustOnDevice = 1.0
	TrustNetwork  = 1.0
	TrustCombined = 2.0
)

// Engine converts image pixels into recognized text
type Engine interface {
	ID() string

	// Network reports whether Recognize leaves the device.
	Network() bool

	// Trust scales candidate scores toward more trustworthy sources.
	Trust() float64

	// Ping performs a lightweight connectivity/auth round trip.
	Ping(ctx context.Context) error

	// Recognize reads one image variant. Word geometry is optional;
	// engines without it return text only.
	Recognize(ctx context.Context, variant preprocess.Variant) (Result, error)
}

// Result is one engine's reading of one variant
type Result struct {
	Text  string
	Words []models.Word
}
