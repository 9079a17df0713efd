// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// AIConfig holds shared settings for the language-model provider.
type AIConfig struct {
	// Provider selects the language-model backend: anthropic, openrouter, or ollama.
	Provider string `json:"provider" yaml:"provider"`

	// Model is the model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the provider.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the provider endpoint. Empty uses the provider default.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// Timeout is the per-call request timeout (default 60s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// MaxRetries is the number of additional attempts after a malformed
	// response (default 2, so 3 attempts total).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// StoreConfig holds settings for the SQLite store.
type StoreConfig struct {
	// DBPath is the SQLite database file path (default "quality.db").
	DBPath string `json:"db_path" yaml:"db_path"`
}

// BatchConfig holds settings for batch evaluation.
type BatchConfig struct {
	// Concurrency is the worker-pool size for key evaluation (default 3).
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// RelatedLimit caps the number of related translations supplied as model
	// context per key (default 10).
	RelatedLimit int `json:"related_limit" yaml:"related_limit"`
}

// EngineConfig groups all engine configuration.
type EngineConfig struct {
	AI    AIConfig    `json:"ai" yaml:"ai"`
	Store StoreConfig `json:"store" yaml:"store"`
	Batch BatchConfig `json:"batch" yaml:"batch"`
}
