// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/pdiddy/quality-engine/pkg/types"
)

const ollamaDefaultBaseURL = "http://localhost:11434"

// ollamaClient calls a local Ollama instance. No API key, no token accounting
// beyond what the daemon reports.
type ollamaClient struct {
	baseURL string
	model   string
	http    *resty.Client
}

func newOllama(cfg types.AIConfig) *ollamaClient {
	base := cfg.BaseURL
	if base == "" {
		base = ollamaDefaultBaseURL
	}
	return &ollamaClient{
		baseURL: strings.TrimRight(base, "/"),
		model:   cfg.Model,
		http:    newHTTPClient(cfg),
	}
}

func (c *ollamaClient) Name() string { return ProviderOllama }

type ollamaRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type ollamaResponse struct {
	Message    chatMessage `json:"message"`
	PromptEval int         `json:"prompt_eval_count"`
	EvalCount  int         `json:"eval_count"`
}

func (c *ollamaClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (Result, error) {
	req := ollamaRequest{Model: c.model, Stream: false}
	if systemPrompt != "" {
		req.Messages = append(req.Messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	req.Messages = append(req.Messages, chatMessage{Role: "user", Content: userPrompt})

	var parsed ollamaResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&parsed).
		Post(c.baseURL + "/api/chat")
	if err != nil {
		return Result{}, fmt.Errorf("calling ollama: %w", err)
	}
	if resp.IsError() {
		return Result{}, fmt.Errorf("ollama returned %s: %s", resp.Status(), resp.String())
	}

	return Result{
		Text: parsed.Message.Content,
		Usage: types.TokenUsage{
			Input:  parsed.PromptEval,
			Output: parsed.EvalCount,
		},
	}, nil
}
