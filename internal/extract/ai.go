package extract

import (
	"context"

	"github.com/couponTracker/coupon-ocr-service/internal/ai"
	"github.com/couponTracker/coupon-ocr-service/internal/models"
)

type aiStrategy struct {
	extractor *ai.Extractor
}

// NewAIStrategy delegates extraction to the configured language model.
// Only registered when a provider is configured; the scan pipeline stays
// fully functional without it.
func NewAIStrategy(extractor *ai.Extractor) Strategy {
	return aiStrategy{extractor: extractor}
}

func (aiStrategy) ID() string { return StrategyAI }

func (aiStrategy) Trust() float64 { return TrustAI }

func (s aiStrategy) Run(ctx context.Context, in Input) (models.CouponInfo, error) {
	return s.extractor.Extract(ctx, in.Text)
}
