// Package ai wraps the language-model providers used for image
// transcription and structured field extraction. Providers are
// interchangeable behind the Provider interface; which one runs is
// decided once at startup from configuration.
package ai

import "context"

// Provider is a language-model backend capable of reading coupon images
// and answering extraction prompts.
type Provider interface {
	// Name identifies the provider ("openai", "gemini", "ollama").
	Name() string

	// Ping verifies the provider is reachable with the configured credentials.
	Ping(ctx context.Context) error

	// Transcribe reads every piece of text visible in the image (PNG bytes).
	Transcribe(ctx context.Context, imageData []byte) (string, error)

	// Complete answers a plain text prompt.
	Complete(ctx context.Context, prompt string) (string, error)

	// Close releases any underlying connections.
	Close() error
}

// transcribePrompt asks for a faithful reading, not an interpretation.
// Layout order matters downstream: the heuristic and template strategies
// anchor on line positions.
const transcribePrompt = `You are an OCR engine. Transcribe ALL text visible in this image exactly as it appears, preserving line breaks and reading top to bottom, left to right.

Rules:
1. Output ONLY the transcribed text, no commentary
2. Keep the original line structure
3. Include codes, amounts, dates and fine print
4. Do NOT translate, summarize or interpret
5. If no text is visible, output nothing`
