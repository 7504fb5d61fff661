package config

import (
	"fmt"
	"time"

	"github.com/fyrsmithlabs/causewayd/internal/logging"
	"github.com/fyrsmithlabs/causewayd/internal/telemetry"
)

// Config is the root configuration for causewayd.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Logging     logging.Config    `koanf:"logging"`
	Telemetry   telemetry.Config  `koanf:"telemetry"`
	LLM         LLMConfig         `koanf:"llm"`
	Confession  ConfessionConfig  `koanf:"confession"`
	Gemini      GeminiConfig      `koanf:"gemini"`
	Store       StoreConfig       `koanf:"store"`
	ObjectStore ObjectStoreConfig `koanf:"objectstore"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	AnalyzeTimeout  time.Duration `koanf:"analyze_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LLMConfig configures the primary chat-completion provider used by the
// dispatch protocol. The API is OpenAI-compatible.
type LLMConfig struct {
	APIKey    string        `koanf:"api_key"`
	BaseURL   string        `koanf:"base_url"`
	Model     string        `koanf:"model"`
	MaxTokens int           `koanf:"max_tokens"`
	RateLimit float64       `koanf:"rate_limit"` // requests per second
	Burst     int           `koanf:"burst"`
	Timeout   time.Duration `koanf:"timeout"`
}

// ConfessionConfig configures the single-shot confession verdict path.
// It runs against a cheap primary model with one fallback retry against a
// more reliable model.
type ConfessionConfig struct {
	APIKey        string `koanf:"api_key"`
	BaseURL       string `koanf:"base_url"`
	PrimaryModel  string `koanf:"primary_model"`
	FallbackModel string `koanf:"fallback_model"`
}

// GeminiConfig configures the Gemini collaborators (vision verdicts and
// speech transcription).
type GeminiConfig struct {
	APIKey      string `koanf:"api_key"`
	VisionModel string `koanf:"vision_model"`
	SpeechModel string `koanf:"speech_model"`
}

// StoreConfig configures the external row store (PostgREST-style API).
// When BaseURL is empty the store is disabled and callers get a no-op client.
type StoreConfig struct {
	BaseURL    string        `koanf:"base_url"`
	ServiceKey string        `koanf:"service_key"`
	Timeout    time.Duration `koanf:"timeout"`
}

// ObjectStoreConfig configures upload storage (Google Cloud Storage).
type ObjectStoreConfig struct {
	Bucket       string        `koanf:"bucket"`
	SignedURLTTL time.Duration `koanf:"signed_url_ttl"`
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be in 1-65535, got %d", c.Server.Port)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("llm api_key is required")
	}
	if c.LLM.RateLimit <= 0 {
		return fmt.Errorf("llm rate_limit must be > 0, got %v", c.LLM.RateLimit)
	}
	if c.Confession.PrimaryModel == c.Confession.FallbackModel && c.Confession.PrimaryModel != "" {
		return fmt.Errorf("confession primary and fallback models must differ")
	}
	return nil
}
