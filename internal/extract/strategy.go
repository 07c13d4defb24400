// Package extract turns recognized coupon text into structured fields.
// Four strategies run side by side over the same OCR reading; each one
// proposes a CouponInfo and the proposal with the highest completeness
// score wins.
package extract

import (
	"context"
	"sync"

	"github.com/couponTracker/coupon-ocr-service/internal/models"
)

// Strategy identifiers
const (
	StrategyTemplate  = "template"
	StrategyAI        = "ai"
	StrategyRegion    = "region"
	StrategyHeuristic = "heuristic"
)

// Trust multipliers applied to the completeness score. Merchant templates
// and AI answers carry more weight than positional or keyword guesses.
const (
	TrustTemplate  = 1.2
	TrustAI        = 1.2
	TrustRegion    = 1.0
	TrustHeuristic = 1.0
)

// Input is the winning OCR reading handed to every strategy
type Input struct {
	Text  string        // full recognized text
	Words []models.Word // word geometry, empty when the engine returned none
}

// Strategy proposes coupon fields from one OCR reading
type Strategy interface {
	// ID identifies the strategy ("template", "ai", "region", "heuristic").
	ID() string

	// Trust is the multiplier applied to the completeness score.
	Trust() float64

	// Run extracts fields from the reading. Strategies must not invent
	// values: a field they cannot locate stays at its zero value.
	Run(ctx context.Context, in Input) (models.CouponInfo, error)
}

// RunAll executes every strategy concurrently and scores each proposal.
// A failing strategy contributes an empty zero-score candidate instead of
// aborting the scan.
func RunAll(ctx context.Context, strategies []Strategy, in Input) []models.ExtractionCandidate {
	candidates := make([]models.ExtractionCandidate, len(strategies))

	var wg sync.WaitGroup
	for i, s := range strategies {
		wg.Add(1)
		go func(i int, s Strategy) {
			defer wg.Done()
			candidates[i] = models.ExtractionCandidate{Strategy: s.ID()}

			info, err := s.Run(ctx, in)
			if err != nil {
				return
			}

			candidates[i].Info = info
			candidates[i].Score = Completeness(info) * s.Trust()
		}(i, s)
	}
	wg.Wait()

	return candidates
}
