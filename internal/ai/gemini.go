package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/couponTracker/coupon-ocr-service/internal/config"
)

// GeminiProvider talks to Google Gemini
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, cfg config.GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}

	return &GeminiProvider{
		client: client,
		model:  model,
	}, nil
}

// Name returns the provider identifier
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Ping fetches model metadata to verify the API key
func (p *GeminiProvider) Ping(ctx context.Context) error {
	if _, err := p.client.GenerativeModel(p.model).Info(ctx); err != nil {
		return fmt.Errorf("gemini ping failed: %w", err)
	}
	return nil
}

// Transcribe sends the image (PNG bytes) to Gemini and returns the raw text
func (p *GeminiProvider) Transcribe(ctx context.Context, imageData []byte) (string, error) {
	// genai.ImageData expects just the format suffix ("png"), not the MIME type
	parts := []genai.Part{
		genai.ImageData("png", imageData),
		genai.Text(transcribePrompt),
	}

	resp, err := p.client.GenerativeModel(p.model).GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini transcription failed: %w", err)
	}

	return geminiText(resp)
}

// Complete answers a plain text prompt
func (p *GeminiProvider) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.GenerativeModel(p.model).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini completion failed: %w", err)
	}

	return geminiText(resp)
}

// Close closes the underlying client
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

// geminiText joins the text parts of the first candidate
func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}
