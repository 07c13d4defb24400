package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/couponTracker/coupon-ocr-service/internal/ai"
	"github.com/couponTracker/coupon-ocr-service/internal/config"
	"github.com/couponTracker/coupon-ocr-service/internal/extract"
	"github.com/couponTracker/coupon-ocr-service/internal/ocr"
)

// NewFromConfig wires a ready-to-use service from configuration. The
// returned provider (nil when none is configured) is shared between the AI
// engine and the AI extraction strategy; the caller closes it on shutdown.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Service, ai.Provider, error) {
	engines, provider, err := BuildEngines(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	svc := New(Options{
		Engines:       engines,
		Strategies:    BuildStrategies(provider, cfg.Categories),
		EngineTimeout: time.Duration(cfg.OCR.EngineTimeoutSec) * time.Second,
		ProbeTimeout:  time.Duration(cfg.OCR.ProbeTimeoutSec) * time.Second,
		Logger:        logger,
	})
	return svc, provider, nil
}

// BuildEngines constructs every OCR engine the configuration allows.
// Tesseract always exists; cloud engines require credentials, and zero
// credentials is a fully supported on-device-only setup.
func BuildEngines(ctx context.Context, cfg *config.Config, logger zerolog.Logger) ([]ocr.Engine, ai.Provider, error) {
	tesseract := ocr.NewTesseractEngine(cfg.OCR.Language)
	engines := []ocr.Engine{tesseract}

	var visionEngine ocr.Engine
	if cfg.OCR.VisionAPIKey != "" {
		vision, err := ocr.NewVisionEngine(ctx, cfg.OCR.VisionAPIKey)
		if err != nil {
			return nil, nil, fmt.Errorf("vision engine: %w", err)
		}
		visionEngine = vision
		engines = append(engines, vision)
	}

	provider, err := buildProvider(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if provider != nil {
		engines = append(engines, ocr.NewAIEngine(provider))
		logger.Info().Str("provider", provider.Name()).Msg("AI provider configured")
	}

	// Cross-validation pairs the cloud reader with the on-device one.
	if visionEngine != nil {
		engines = append(engines, ocr.NewCombinedEngine(visionEngine, tesseract))
	}

	return engines, provider, nil
}

// buildProvider picks the configured AI provider. No provider configured is
// not an error: the pipeline runs without the AI engine and strategy.
func buildProvider(ctx context.Context, cfg *config.Config) (ai.Provider, error) {
	switch cfg.AI.DefaultProvider {
	case "openai":
		if cfg.AI.OpenAI.APIKey == "" {
			return nil, nil
		}
		return ai.NewOpenAIProvider(cfg.AI.OpenAI)

	case "gemini":
		if cfg.AI.Gemini.APIKey == "" {
			return nil, nil
		}
		return ai.NewGeminiProvider(ctx, cfg.AI.Gemini)

	case "ollama":
		if cfg.AI.Ollama.BaseURL == "" {
			return nil, nil
		}
		return ai.NewOllamaProvider(cfg.AI.Ollama)

	case "", "none":
		return nil, nil

	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.AI.DefaultProvider)
	}
}

// BuildStrategies assembles the extraction strategies. The AI strategy
// joins only when a provider exists; the other three always run.
func BuildStrategies(provider ai.Provider, categories []string) []extract.Strategy {
	strategies := []extract.Strategy{
		extract.NewTemplateStrategy(),
		extract.NewRegionStrategy(),
		extract.NewHeuristicStrategy(),
	}
	if provider != nil {
		strategies = append(strategies, extract.NewAIStrategy(ai.NewExtractor(provider, categories)))
	}
	return strategies
}
