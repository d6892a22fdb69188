package llm

import "time"

// Config holds provider configuration. An empty APIKey means no LLM
// capability is configured and enrichment is skipped entirely.
type Config struct {
	APIKey  string
	Model   string // default "gpt-4o-mini"
	BaseURL string // optional override for OpenAI-compatible APIs

	// Timeout bounds a single attempt, not the whole retry loop.
	Timeout time.Duration

	Retry RetryConfig
}

// RetryConfig configures backoff for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Model:   "gpt-4o-mini",
		Timeout: 15 * time.Second,
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     8 * time.Second,
			Multiplier:  2.0,
		},
	}
}
