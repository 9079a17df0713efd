// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/pdiddy/quality-engine/pkg/types"
)

const anthropicDefaultBaseURL = "https://api.anthropic.com"

// anthropicClient calls the Anthropic Messages API. The system prompt is sent
// as a cacheable block so repeated evaluations reuse the provider's prompt
// cache; caching is an optimization, never a requirement.
type anthropicClient struct {
	apiKey  string
	baseURL string
	model   string
	http    *resty.Client
}

func newAnthropic(cfg types.AIConfig) *anthropicClient {
	base := cfg.BaseURL
	if base == "" {
		base = anthropicDefaultBaseURL
	}
	return &anthropicClient{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(base, "/"),
		model:   cfg.Model,
		http:    newHTTPClient(cfg),
	}
}

func (c *anthropicClient) Name() string { return ProviderAnthropic }

type anthropicSystemBlock struct {
	Type         string         `json:"type"`
	Text         string         `json:"text"`
	CacheControl map[string]any `json:"cache_control,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string                 `json:"model"`
	MaxTokens int                    `json:"max_tokens"`
	System    []anthropicSystemBlock `json:"system,omitempty"`
	Messages  []anthropicMessage     `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens          int `json:"input_tokens"`
		OutputTokens         int `json:"output_tokens"`
		CacheReadInputTokens int `json:"cache_read_input_tokens"`
	} `json:"usage"`
}

func (c *anthropicClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (Result, error) {
	req := anthropicRequest{
		Model:     c.model,
		MaxTokens: 4096,
		Messages:  []anthropicMessage{{Role: "user", Content: userPrompt}},
	}
	if systemPrompt != "" {
		req.System = []anthropicSystemBlock{{
			Type:         "text",
			Text:         systemPrompt,
			CacheControl: map[string]any{"type": "ephemeral"},
		}}
	}

	var parsed anthropicResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-api-key", c.apiKey).
		SetHeader("anthropic-version", "2023-06-01").
		SetBody(req).
		SetResult(&parsed).
		Post(c.baseURL + "/v1/messages")
	if err != nil {
		return Result{}, fmt.Errorf("calling anthropic: %w", err)
	}
	if resp.IsError() {
		return Result{}, fmt.Errorf("anthropic returned %s: %s", resp.Status(), resp.String())
	}

	for _, block := range parsed.Content {
		if block.Type != "text" {
			continue
		}
		return Result{
			Text: block.Text,
			Usage: types.TokenUsage{
				Input:     parsed.Usage.InputTokens,
				Output:    parsed.Usage.OutputTokens,
				CacheRead: parsed.Usage.CacheReadInputTokens,
			},
		}, nil
	}
	return Result{}, fmt.Errorf("anthropic response has no text content")
}
