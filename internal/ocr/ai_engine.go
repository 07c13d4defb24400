package ocr

import (
	"context"

	"github.com/couponTracker/coupon-ocr-service/internal/ai"
	"github.com/couponTracker/coupon-ocr-service/internal/preprocess"
)

// AIEngine recognizes text by asking a vision-capable AI provider to
// transcribe the coupon image. Constructed only when a provider key exists.
type AIEngine struct {
	provider ai.Provider
}

// NewAIEngine wraps an AI provider as a recognition backend
func NewAIEngine(provider ai.Provider) *AIEngine {
	return &AIEngine{provider: provider}
}

func (e *AIEngine) ID() string     { return EngineAI }
func (e *AIEngine) Network() bool  { return true }
func (e *AIEngine) Trust() float64 { return TrustNetwork }

func (e *AIEngine) Ping(ctx context.Context) error {
	return e.provider.Ping(ctx)
}

func (e *AIEngine) Recognize(ctx context.Context, variant preprocess.Variant) (Result, error) {
	text, err := e.provider.Transcribe(ctx, variant.Data)
	if err != nil {
		return Result{}, err
	}
	return Result{Text: text}, nil
}
