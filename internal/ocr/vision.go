package ocr

import (
	"context"
	"encoding/base64"
	"fmt"

	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"

	"github.com/couponTracker/coupon-ocr-service/internal/models"
	"github.com/couponTracker/coupon-ocr-service/internal/preprocess"
)

// pingPNG is a 1x1 PNG; annotating it exercises the full auth path at
// minimal quota cost.
const pingPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

// VisionEngine recognizes text through the Google Cloud Vision REST API.
// It is the only engine that returns word geometry from the cloud.
type VisionEngine struct {
	service *vision.Service
}

// NewVisionEngine creates a Cloud Vision engine with API key auth
func NewVisionEngine(ctx context.Context, apiKey string) (*VisionEngine, error) {
	service, err := vision.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create vision service: %w", err)
	}
	return &VisionEngine{service: service}, nil
}

func (v *VisionEngine) ID() string     { return EngineVision }
func (v *VisionEngine) Network() bool  { return true }
func (v *VisionEngine) Trust() float64 { return TrustNetwork }

// Ping annotates a single-pixel image to verify connectivity and the API key
func (v *VisionEngine) Ping(ctx context.Context) error {
	_, err := v.annotate(ctx, pingPNG)
	return err
}

// Recognize runs TEXT_DETECTION on one variant
func (v *VisionEngine) Recognize(ctx context.Context, variant preprocess.Variant) (Result, error) {
	resp, err := v.annotate(ctx, base64.StdEncoding.EncodeToString(variant.Data))
	if err != nil {
		return Result{}, err
	}
	if len(resp.TextAnnotations) == 0 {
		return Result{}, nil
	}

	// Annotation 0 carries the full text; the rest are individual words.
	full := resp.TextAnnotations[0].Description
	words := make([]models.Word, 0, len(resp.TextAnnotations)-1)
	for _, ann := range resp.TextAnnotations[1:] {
		box, ok := polyBounds(ann.BoundingPoly)
		if !ok {
			continue
		}
		words = append(words, models.Word{
			Text:       ann.Description,
			Confidence: ann.Score,
			Box:        box,
		})
	}

	return Result{Text: full, Words: words}, nil
}

func (v *VisionEngine) annotate(ctx context.Context, content string) (*vision.AnnotateImageResponse, error) {
	batch, err := v.service.Images.Annotate(&vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image:    &vision.Image{Content: content},
			Features: []*vision.Feature{{Type: "TEXT_DETECTION"}},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("vision annotate: %w", err)
	}
	if len(batch.Responses) == 0 {
		return nil, fmt.Errorf("vision annotate: empty batch response")
	}
	resp := batch.Responses[0]
	if resp.Error != nil {
		return nil, fmt.Errorf("vision annotate: %s", resp.Error.Message)
	}
	return resp, nil
}

// polyBounds converts a bounding polygon to an axis-aligned box
func polyBounds(poly *vision.BoundingPoly) (models.Box, bool) {
	if poly == nil || len(poly.Vertices) == 0 {
		return models.Box{}, false
	}
	minX, minY := poly.Vertices[0].X, poly.Vertices[0].Y
	maxX, maxY := minX, minY
	for _, vertex := range poly.Vertices[1:] {
		minX = min(minX, vertex.X)
		minY = min(minY, vertex.Y)
		maxX = max(maxX, vertex.X)
		maxY = max(maxY, vertex.Y)
	}
	return models.Box{
		X:      int(minX),
		Y:      int(minY),
		Width:  int(maxX - minX),
		Height: int(maxY - minY),
	}, true
}
