package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the service configuration
type Config struct {
	// Server config
	Port int    `yaml:"port"`
	Host string `yaml:"host"`

	// OCR config
	OCR OCRConfig `yaml:"ocr"`

	// AI config
	AI AIConfig `yaml:"ai"`

	// API clients allowed to request tokens
	Auth AuthConfig `yaml:"auth"`

	// Categories (for better extraction)
	Categories []string `yaml:"categories"`
}

// OCRConfig represents OCR engine configuration
type OCRConfig struct {
	Language         string `yaml:"language"`           // OCR language (default: "eng")
	VisionAPIKey     string `yaml:"vision_api_key"`     // Google Cloud Vision API key
	EngineTimeoutSec int    `yaml:"engine_timeout_sec"` // Per recognize call (default: 20)
	ProbeTimeoutSec  int    `yaml:"probe_timeout_sec"`  // Per availability probe (default: 5)
}

// AIConfig represents AI provider configuration
type AIConfig struct {
	// OpenAI
	OpenAI OpenAIConfig `yaml:"openai"`

	// Gemini
	Gemini GeminiConfig `yaml:"gemini"`

	// Ollama (local)
	Ollama OllamaConfig `yaml:"ollama"`

	// Default provider
	DefaultProvider string `yaml:"default_provider"` // "openai", "gemini", "ollama"
}

// OpenAIConfig for OpenAI/Azure OpenAI
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url,omitempty"` // For custom endpoints
	Model   string `yaml:"model"`              // Default: "gpt-4o-mini"
}

// GeminiConfig for Google Gemini
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"` // Default: "gemini-1.5-flash"
}

// OllamaConfig for local Ollama
type OllamaConfig struct {
	BaseURL string `yaml:"base_url"` // Default: "http://localhost:11434"
	Model   string `yaml:"model"`    // e.g., "llava", "mistral"
}

// AuthConfig lists API clients allowed to authenticate
type AuthConfig struct {
	Clients []APIClient `yaml:"clients"`
}

// APIClient is one credential pair for token issuance
type APIClient struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Role         string `yaml:"role"`          // "app" or "admin"
	PasswordHash string `yaml:"password_hash"` // bcrypt hash of the client secret
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Port: 8080,
		Host: "0.0.0.0",
		OCR: OCRConfig{
			Language:         "eng",
			EngineTimeoutSec: 20,
			ProbeTimeoutSec:  5,
		},
		AI: AIConfig{
			OpenAI:          OpenAIConfig{Model: "gpt-4o-mini"},
			Gemini:          GeminiConfig{Model: "gemini-1.5-flash"},
			Ollama:          OllamaConfig{BaseURL: "http://localhost:11434", Model: "llava"},
			DefaultProvider: "gemini",
		},
		Categories: []string{"commerce", "food delivery", "payments", "travel", "entertainment"},
	}
}

// Load reads the YAML config file and applies environment overrides.
// A missing file is not an error: defaults plus environment apply.
func Load(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Override with environment variables if present
	if port := os.Getenv("PORT"); port != "" {
		fmt.Sscanf(port, "%d", &config.Port)
	}
	if host := os.Getenv("HOST"); host != "" {
		config.Host = host
	}
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.AI.OpenAI.APIKey = apiKey
	}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.AI.Gemini.APIKey = apiKey
	}
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		config.AI.Ollama.BaseURL = baseURL
	}
	if provider := os.Getenv("AI_PROVIDER"); provider != "" {
		config.AI.DefaultProvider = provider
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		config.AI.OpenAI.BaseURL = baseURL
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		config.AI.OpenAI.Model = model
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		config.AI.Gemini.Model = model
	}
	if apiKey := os.Getenv("VISION_API_KEY"); apiKey != "" {
		config.OCR.VisionAPIKey = apiKey
	}
	if lang := os.Getenv("OCR_LANGUAGE"); lang != "" {
		config.OCR.Language = lang
	}

	return config, nil
}
