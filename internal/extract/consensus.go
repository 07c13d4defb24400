package extract

import (
	"errors"

	"github.com/couponTracker/coupon-ocr-service/internal/models"
)

// ErrEmptyExtraction is returned when no strategy recovered a single field
var ErrEmptyExtraction = errors.New("no coupon fields could be extracted")

// strategyPriority breaks score ties. Lower wins: merchant templates and
// AI answers are more precise than positional or keyword guesses.
var strategyPriority = map[string]int{
	StrategyTemplate:  0,
	StrategyAI:        1,
	StrategyRegion:    2,
	StrategyHeuristic: 3,
}

// SelectConsensus picks the winning proposal. Zero-score candidates never
// win; when every candidate is empty the scan failed as a whole and the
// caller gets ErrEmptyExtraction.
func SelectConsensus(candidates []models.ExtractionCandidate) (models.ExtractionCandidate, error) {
	best := -1
	for i, c := range candidates {
		if c.Score <= 0 {
			continue
		}
		if best < 0 || better(c, candidates[best]) {
			best = i
		}
	}

	if best < 0 {
		return models.ExtractionCandidate{}, ErrEmptyExtraction
	}
	return candidates[best], nil
}

func better(a, b models.ExtractionCandidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return priorityOf(a.Strategy) < priorityOf(b.Strategy)
}

func priorityOf(strategy string) int {
	if p, ok := strategyPriority[strategy]; ok {
		return p
	}
	return len(strategyPriority)
}
