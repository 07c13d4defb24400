package ocr

import (
	"errors"
	"strings"

	"github.com/couponTracker/coupon-ocr-service/internal/models"
)

// ErrNoTextRecognized reports that every engine returned empty text. An
// unreadable image is an expected terminal state, not a crash.
var ErrNoTextRecognized = errors.New("no text recognized")

// SelectBest returns the highest-scoring candidate with non-empty text.
// Ties keep the earliest candidate, so selection over the same list always
// yields the same choice.
func SelectBest(candidates []models.OcrCandidate) (models.OcrCandidate, error) {
	best := -1
	for i, c := range candidates {
		if strings.TrimSpace(c.Text) == "" {
			continue
		}
		if best == -1 || c.Score > candidates[best].Score {
			best = i
		}
	}
	if best == -1 {
		return models.OcrCandidate{}, ErrNoTextRecognized
	}
	return candidates[best], nil
}
