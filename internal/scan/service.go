// Package scan drives one coupon image through the whole pipeline: decode
// the upload, generate preprocessed variants, fan recognition out across the
// available engines, extract structured fields and classify the result.
package scan

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/couponTracker/coupon-ocr-service/internal/cache"
	"github.com/couponTracker/coupon-ocr-service/internal/classify"
	"github.com/couponTracker/coupon-ocr-service/internal/extract"
	"github.com/couponTracker/coupon-ocr-service/internal/models"
	"github.com/couponTracker/coupon-ocr-service/internal/ocr"
	"github.com/couponTracker/coupon-ocr-service/internal/preprocess"
)

// Service owns the engine set, the extraction strategies and the cached
// engine availability for the lifetime of the process.
type Service struct {
	dispatcher   *ocr.Dispatcher
	availability *ocr.Availability
	strategies   []extract.Strategy
	logger       zerolog.Logger
	cacheTTL     time.Duration
}

// Options configures a scan service
type Options struct {
	Engines       []ocr.Engine
	Strategies    []extract.Strategy
	EngineTimeout time.Duration // per recognize call
	ProbeTimeout  time.Duration // per availability ping
	CacheTTL      time.Duration // scan result cache lifetime
	Logger        zerolog.Logger
}

// New creates a scan service. The availability map starts empty; callers
// probe once at startup and again on demand.
func New(opts Options) *Service {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 24 * time.Hour
	}
	return &Service{
		dispatcher:   ocr.NewDispatcher(opts.Engines, opts.EngineTimeout, opts.Logger),
		availability: ocr.NewAvailability(opts.Engines, opts.ProbeTimeout, opts.Logger),
		strategies:   opts.Strategies,
		logger:       opts.Logger,
		cacheTTL:     opts.CacheTTL,
	}
}

// RefreshAvailability re-probes every engine and returns the new map
func (s *Service) RefreshAvailability(ctx context.Context) map[string]bool {
	return s.availability.Probe(ctx)
}

// Availability returns the cached engine availability without probing
func (s *Service) Availability() map[string]bool {
	return s.availability.Snapshot()
}

// Scan processes one coupon image end to end. Identical image bytes hit the
// result cache; everything downstream of decoding is deterministic for a
// given OCR reading. Decode failures and the no-text/empty-extraction
// sentinels surface as errors; individual engine or strategy failures only
// reduce how much gets extracted.
func (s *Service) Scan(ctx context.Context, req *models.ScanRequest) (*models.ScanResult, error) {
	digest := imageDigest(req.ImageData)
	if cached, err := cache.GetScan(ctx, digest); err == nil {
		cached.Cached = true
		return cached, nil
	}

	totalStart := time.Now()

	img, err := preprocess.Decode(req.ImageData)
	if err != nil {
		return nil, err
	}
	variants, err := preprocess.Generate(img)
	if err != nil {
		return nil, fmt.Errorf("preprocessing failed: %w", err)
	}

	ocrStart := time.Now()
	candidates := s.dispatcher.Recognize(ctx, variants, s.availability.Snapshot())
	best, err := ocr.SelectBest(candidates)
	if err != nil {
		return nil, err
	}
	ocrDuration := time.Since(ocrStart)

	extractStart := time.Now()
	proposals := extract.RunAll(ctx, s.strategies, extract.Input{Text: best.Text, Words: best.Words})
	winner, err := extract.SelectConsensus(proposals)
	if err != nil {
		return nil, err
	}
	extractDuration := time.Since(extractStart)

	info := winner.Info
	if info.Category == "" {
		// Brand names often sit in the raw text even when no strategy
		// mapped them to a category.
		info.Category = classify.Classify(best.Text)
	}
	info.RawText = best.Text
	info.ProcessedAt = time.Now().UTC()
	info.Confidence = winner.Score
	if info.Confidence > 1.0 {
		info.Confidence = 1.0 // completeness weights intentionally sum past 1
	}

	result := &models.ScanResult{
		Success:         true,
		Coupon:          &info,
		Engine:          best.Engine,
		Strategy:        winner.Strategy,
		OCRDuration:     ocrDuration.Seconds(),
		ExtractDuration: extractDuration.Seconds(),
		TotalDuration:   time.Since(totalStart).Seconds(),
	}

	if err := cache.SetScan(ctx, digest, result, s.cacheTTL); err != nil {
		s.logger.Warn().Err(err).Msg("failed to cache scan result")
	}

	s.logger.Info().
		Str("engine", best.Engine).
		Str("strategy", winner.Strategy).
		Str("store", info.StoreName).
		Float64("confidence", info.Confidence).
		Float64("totalSeconds", result.TotalDuration).
		Msg("coupon scanned")

	return result, nil
}

// imageDigest keys the scan cache by content, not by filename
func imageDigest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
