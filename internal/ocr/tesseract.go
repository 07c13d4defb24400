package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/couponTracker/coupon-ocr-service/internal/models"
	"github.com/couponTracker/coupon-ocr-service/internal/preprocess"
)

// TesseractEngine is the on-device OCR backend, driven through gosseract.
// It is the only engine guaranteed to exist regardless of credentials.
type TesseractEngine struct {
	language string
}

// NewTesseractEngine creates the on-device engine
func NewTesseractEngine(language string) *TesseractEngine {
	if language == "" {
		language = "eng" // Default to English
	}
	return &TesseractEngine{language: language}
}

func (t *TesseractEngine) ID() string     { return EngineTesseract }
func (t *TesseractEngine) Network() bool  { return false }
func (t *TesseractEngine) Trust() float64 { return TrustOnDevice }

// Ping always succeeds: the on-device engine needs no credentials or network.
func (t *TesseractEngine) Ping(ctx context.Context) error { return nil }

// Recognize performs OCR on one variant, returning full text plus word
// geometry for the position-aware extraction strategy.
func (t *TesseractEngine) Recognize(ctx context.Context, variant preprocess.Variant) (Result, error) {
	// gosseract has no context support; honor cancellation before the call.
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.language); err != nil {
		return Result{}, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return Result{}, fmt.Errorf("failed to set PSM: %w", err)
	}
	if err := client.SetImageFromBytes(variant.Data); err != nil {
		return Result{}, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return Result{}, fmt.Errorf("failed to extract text: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		// Text without geometry still serves every strategy except region.
		return Result{Text: text}, nil
	}

	words := make([]models.Word, 0, len(boxes))
	for _, box := range boxes {
		word := strings.TrimSpace(box.Word)
		if word == "" {
			continue
		}
		words = append(words, models.Word{
			Text:       word,
			Confidence: box.Confidence,
			Box: models.Box{
				X:      box.Box.Min.X,
				Y:      box.Box.Min.Y,
				Width:  box.Box.Dx(),
				Height: box.Box.Dy(),
			},
		})
	}

	return Result{Text: text, Words: words}, nil
}
