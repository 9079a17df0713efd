// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/pdiddy/quality-engine/pkg/types"
)

const openRouterDefaultBaseURL = "https://openrouter.ai/api/v1"

// openRouterClient calls the OpenRouter chat-completions API.
type openRouterClient struct {
	apiKey  string
	baseURL string
	model   string
	http    *resty.Client
}

func newOpenRouter(cfg types.AIConfig) *openRouterClient {
	base := cfg.BaseURL
	if base == "" {
		base = openRouterDefaultBaseURL
	}
	return &openRouterClient{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(base, "/"),
		model:   cfg.Model,
		http:    newHTTPClient(cfg),
	}
}

func (c *openRouterClient) Name() string { return ProviderOpenRouter }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openRouterRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type openRouterResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (c *openRouterClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (Result, error) {
	req := openRouterRequest{Model: c.model}
	if systemPrompt != "" {
		req.Messages = append(req.Messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	req.Messages = append(req.Messages, chatMessage{Role: "user", Content: userPrompt})

	var parsed openRouterResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetBody(req).
		SetResult(&parsed).
		Post(c.baseURL + "/chat/completions")
	if err != nil {
		return Result{}, fmt.Errorf("calling openrouter: %w", err)
	}
	if resp.IsError() {
		return Result{}, fmt.Errorf("openrouter returned %s: %s", resp.Status(), resp.String())
	}
	if len(parsed.Choices) == 0 {
		return Result{}, fmt.Errorf("openrouter response has no choices")
	}

	return Result{
		Text: parsed.Choices[0].Message.Content,
		Usage: types.TokenUsage{
			Input:  parsed.Usage.PromptTokens,
			Output: parsed.Usage.CompletionTokens,
		},
	}, nil
}
