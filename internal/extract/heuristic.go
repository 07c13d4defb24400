package extract

import (
	"context"

	"github.com/couponTracker/coupon-ocr-service/internal/models"
)

type heuristicStrategy struct{}

// NewHeuristicStrategy extracts fields from keyword and number patterns
// alone. The store name stays blank; naming a store takes brand evidence
// this strategy does not look at.
func NewHeuristicStrategy() Strategy {
	return heuristicStrategy{}
}

func (heuristicStrategy) ID() string { return StrategyHeuristic }

func (heuristicStrategy) Trust() float64 { return TrustHeuristic }

func (heuristicStrategy) Run(_ context.Context, in Input) (models.CouponInfo, error) {
	info := models.CouponInfo{
		RedeemCode:  findCode(in.Text),
		Description: findDescription(in.Text),
	}

	info.CashbackAmount = findCashback(in.Text)
	info.ExpiryDate = findExpiry(in.Text)
	info.MinimumPurchase = findMinPurchase(in.Text)
	info.MaximumDiscount = findMaxDiscount(in.Text)

	return info, nil
}
