// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm abstracts language-model providers behind a single capability:
// generate text from a system instruction and a user message. Concrete
// adapters exist per provider; callers depend only on the Client interface
// and select an adapter through the factory.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/pdiddy/quality-engine/pkg/types"
)

// Provider identifiers accepted by the factory.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
)

const defaultTimeout = 60 * time.Second

// rateLimitRetries is how many times an adapter retries an HTTP 429 before
// giving up. Backoff is handled by resty.
const rateLimitRetries = 2

// retryWaitTime is the base backoff between 429 retries. Tests override this
// to avoid real sleeps.
var retryWaitTime = 2 * time.Second

// Result is the provider's response to one generation call.
type Result struct {
	// Text is the raw model output.
	Text string

	// Usage counts tokens consumed, including provider-side prompt-cache reads
	// where the provider reports them.
	Usage types.TokenUsage
}

// Client is the language-model capability. Implementations are stateless and
// safe for concurrent use.
type Client interface {
	// Name returns the provider identifier (e.g. "anthropic").
	Name() string

	// Generate produces text for a system instruction plus user message. The
	// call honors ctx cancellation and the configured per-call timeout.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (Result, error)
}

// New constructs the adapter for the configured provider.
func New(cfg types.AIConfig) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderAnthropic:
		return newAnthropic(cfg), nil
	case ProviderOpenRouter:
		return newOpenRouter(cfg), nil
	case ProviderOllama:
		return newOllama(cfg), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// newHTTPClient builds the shared resty client: per-call timeout plus bounded
// retry on 429 responses.
func newHTTPClient(cfg types.AIConfig) *resty.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return resty.New().
		SetTimeout(timeout).
		SetRetryCount(rateLimitRetries).
		SetRetryWaitTime(retryWaitTime).
		SetRetryMaxWaitTime(5 * retryWaitTime).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err == nil && r.StatusCode() == 429
		})
}
