package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/couponTracker/coupon-ocr-service/internal/config"
)

// OpenAIProvider talks to any OpenAI-compatible chat completion API.
// It backs both the hosted OpenAI service and a local Ollama instance,
// which exposes the same API under /v1.
type OpenAIProvider struct {
	client *openai.Client
	model  string
	name   string
}

// NewOpenAIProvider creates a provider for the hosted OpenAI API
func NewOpenAIProvider(cfg config.OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		name:   "openai",
	}, nil
}

// NewOllamaProvider creates a provider for a local Ollama instance.
// Ollama ignores the API key but the client requires a non-empty one.
func NewOllamaProvider(cfg config.OllamaConfig) (*OpenAIProvider, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("ollama base url is required")
	}

	clientConfig := openai.DefaultConfig("ollama")
	clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/") + "/v1"

	model := cfg.Model
	if model == "" {
		model = "llava"
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		name:   "ollama",
	}, nil
}

// Name returns the provider identifier
func (p *OpenAIProvider) Name() string {
	return p.name
}

// Ping lists models to verify credentials and connectivity
func (p *OpenAIProvider) Ping(ctx context.Context) error {
	if _, err := p.client.ListModels(ctx); err != nil {
		return fmt.Errorf("%s ping failed: %w", p.name, err)
	}
	return nil
}

// Transcribe sends the image to the vision endpoint and returns the raw text
func (p *OpenAIProvider) Transcribe(ctx context.Context, imageData []byte) (string, error) {
	encoded := base64.StdEncoding.EncodeToString(imageData)

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: transcribePrompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    "data:image/png;base64," + encoded,
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
		MaxTokens: 1024,
	})
	if err != nil {
		return "", fmt.Errorf("%s transcription failed: %w", p.name, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices", p.name)
	}

	return resp.Choices[0].Message.Content, nil
}

// Complete answers a plain text prompt
func (p *OpenAIProvider) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens: 1024,
	})
	if err != nil {
		return "", fmt.Errorf("%s completion failed: %w", p.name, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices", p.name)
	}

	return resp.Choices[0].Message.Content, nil
}

// Close is a no-op: the client holds no persistent connections
func (p *OpenAIProvider) Close() error {
	return nil
}
