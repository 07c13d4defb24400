package ocr

import (
	"context"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/couponTracker/coupon-ocr-service/internal/models"
	"github.com/couponTracker/coupon-ocr-service/internal/preprocess"
)

// Dispatcher fans recognition out across the available engines
type Dispatcher struct {
	engines map[string]Engine
	timeout time.Duration // per recognize call
	logger  zerolog.Logger
}

// NewDispatcher indexes engines by ID
func NewDispatcher(engines []Engine, timeout time.Duration, logger zerolog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	byID := make(map[string]Engine, len(engines))
	for _, e := range engines {
		byID[e.ID()] = e
	}
	return &Dispatcher{engines: byID, timeout: timeout, logger: logger}
}

// Recognize sends the canonical variant to every available engine, plus at
// most one enhanced variant to network engines only. All calls run
// concurrently and every dispatched pair yields exactly one candidate: a
// failed call becomes an empty zero-score candidate instead of aborting
// the batch. An empty availability map yields an empty list.
func (d *Dispatcher) Recognize(ctx context.Context, variants []preprocess.Variant, availability map[string]bool) []models.OcrCandidate {
	if len(variants) == 0 {
		return []models.OcrCandidate{}
	}
	canonical := variants[0]
	secondary, hasSecondary := pickSecondary(variants)

	type job struct {
		engine  Engine
		variant preprocess.Variant
	}
	var jobs []job
	for _, id := range sortedIDs(availability) {
		if !availability[id] {
			continue
		}
		engine, known := d.engines[id]
		if !known {
			continue
		}
		jobs = append(jobs, job{engine, canonical})
		if hasSecondary && engine.Network() {
			jobs = append(jobs, job{engine, secondary})
		}
	}
	if len(jobs) == 0 {
		return []models.OcrCandidate{}
	}

	candidates := make([]models.OcrCandidate, len(jobs))
	var wg sync.WaitGroup
	for i, j := range jobs {
		wg.Add(1)
		go func(i int, j job) {
			defer wg.Done()
			candidates[i] = d.recognizeOne(ctx, j.engine, j.variant)
		}(i, j)
	}
	wg.Wait()

	return candidates
}

// recognizeOne runs a single engine call under its own timeout
func (d *Dispatcher) recognizeOne(ctx context.Context, engine Engine, variant preprocess.Variant) models.OcrCandidate {
	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	result, err := engine.Recognize(callCtx, variant)
	if err != nil {
		d.logger.Warn().
			Str("engine", engine.ID()).
			Str("variant", variant.Name).
			Dur("elapsed", time.Since(start)).
			Err(err).
			Msg("recognition failed")
		return models.OcrCandidate{Engine: engine.ID()}
	}

	return models.OcrCandidate{
		Text:   result.Text,
		Words:  result.Words,
		Engine: engine.ID(),
		Score:  float64(utf8.RuneCountInString(result.Text)) * engine.Trust(),
	}
}

// pickSecondary chooses the one enhanced variant worth a network round
// trip: the highest-quality rendition after the canonical one.
func pickSecondary(variants []preprocess.Variant) (preprocess.Variant, bool) {
	if len(variants) < 2 {
		return preprocess.Variant{}, false
	}
	best := variants[1]
	bestScore := preprocess.AssessQuality(best.Image).Score
	for _, v := range variants[2:] {
		if score := preprocess.AssessQuality(v.Image).Score; score > bestScore {
			best, bestScore = v, score
		}
	}
	return best, true
}

// sortedIDs keeps dispatch order stable across runs
func sortedIDs(availability map[string]bool) []string {
	ids := make([]string, 0, len(availability))
	for id := range availability {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
