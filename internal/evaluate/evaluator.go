// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evaluate

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/pdiddy/quality-engine/internal/llm"
	"github.com/pdiddy/quality-engine/pkg/types"
)

// defaultMaxRetries is the number of additional attempts after a malformed
// response, so three attempts in total.
const defaultMaxRetries = 2

// Combined-score weights: three AI dimensions plus the heuristic format score.
const (
	weightAccuracy    = 0.40
	weightFluency     = 0.25
	weightTerminology = 0.15
	weightFormat      = 0.20
)

// aiTarget is one language to score in a key-level AI call.
type aiTarget struct {
	Locale string
	Text   string
}

// aiDimensions is the validated per-language model verdict.
type aiDimensions struct {
	Accuracy    int
	Fluency     int
	Terminology int
	Issues      []types.Issue
}

// aiResponse mirrors the JSON contract the rubric demands.
type aiResponse struct {
	Results []aiLanguageResult `json:"results"`
}

type aiLanguageResult struct {
	Language    string        `json:"language"`
	Accuracy    *int          `json:"accuracy"`
	Fluency     *int          `json:"fluency"`
	Terminology *int          `json:"terminology"`
	Issues      []types.Issue `json:"issues"`
}

// evaluateWithAI scores all target languages of one key in a single provider
// call. On a parse or validation failure it retries up to maxRetries more
// times, appending the previous error to the prompt so the model can correct
// itself. Provider failures are not retried here; transport-level retry is
// the client's concern.
func evaluateWithAI(ctx context.Context, client llm.Client, maxRetries int, keyName, sourceLocale, sourceText string, targets []aiTarget, related []types.RelatedTranslation) (map[string]aiDimensions, types.TokenUsage, error) {
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}

	promptTargets := make([]promptTarget, 0, len(targets))
	for _, t := range targets {
		promptTargets = append(promptTargets, promptTarget{
			Locale: t.Locale,
			Name:   localeName(t.Locale),
			Text:   t.Text,
		})
	}

	basePrompt, err := buildUserPrompt(keyName, sourceLocale, sourceText, promptTargets, related)
	if err != nil {
		return nil, types.TokenUsage{}, fmt.Errorf("rendering prompt: %w", err)
	}

	var usage types.TokenUsage
	var lastErr error
	prompt := basePrompt
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			prompt = fmt.Sprintf("%s\n\nYour previous response was invalid: %v\nRespond again with only the JSON object described in the instructions.", basePrompt, lastErr)
		}

		res, err := client.Generate(ctx, systemPrompt, prompt)
		if err != nil {
			return nil, usage, fmt.Errorf("%w: %v", ErrProvider, err)
		}
		usage.Input += res.Usage.Input
		usage.Output += res.Usage.Output
		usage.CacheRead += res.Usage.CacheRead

		dims, err := parseAIResponse(res.Text, targets)
		if err == nil {
			return dims, usage, nil
		}
		lastErr = err
	}

	return nil, usage, fmt.Errorf("%w: after %d attempts: %v", ErrMalformedResponse, maxRetries+1, lastErr)
}

// parseAIResponse decodes and validates the model output: valid JSON, one
// result per requested language, every dimension present and in [0,100].
func parseAIResponse(text string, targets []aiTarget) (map[string]aiDimensions, error) {
	var parsed aiResponse
	if err := json.Unmarshal([]byte(extractJSON(text)), &parsed); err != nil {
		return nil, fmt.Errorf("parsing response JSON: %v", err)
	}

	byLocale := make(map[string]aiDimensions, len(parsed.Results))
	for _, r := range parsed.Results {
		if r.Accuracy == nil || r.Fluency == nil || r.Terminology == nil {
			return nil, fmt.Errorf("result for %q is missing a required dimension", r.Language)
		}
		for _, dim := range []struct {
			name  string
			value int
		}{
			{"accuracy", *r.Accuracy},
			{"fluency", *r.Fluency},
			{"terminology", *r.Terminology},
		} {
			if dim.value < 0 || dim.value > 100 {
				return nil, fmt.Errorf("result for %q has %s %d outside [0,100]", r.Language, dim.name, dim.value)
			}
		}
		byLocale[strings.ToLower(r.Language)] = aiDimensions{
			Accuracy:    *r.Accuracy,
			Fluency:     *r.Fluency,
			Terminology: *r.Terminology,
			Issues:      validIssues(r.Issues),
		}
	}

	for _, t := range targets {
		if _, ok := byLocale[strings.ToLower(t.Locale)]; !ok {
			return nil, fmt.Errorf("response has no result for language %q", t.Locale)
		}
	}
	return byLocale, nil
}

// validIssues drops issue entries with an unknown severity rather than
// failing the whole response over them.
func validIssues(issues []types.Issue) []types.Issue {
	var out []types.Issue
	for _, iss := range issues {
		switch iss.Severity {
		case types.SeverityError, types.SeverityWarning, types.SeverityInfo:
			out = append(out, iss)
		}
	}
	return out
}

// extractJSON strips markdown code fences and surrounding prose that models
// sometimes wrap around the JSON object.
func extractJSON(text string) string {
	trimmed := strings.TrimSpace(text)
	if start := strings.Index(trimmed, "{"); start >= 0 {
		if end := strings.LastIndex(trimmed, "}"); end > start {
			return trimmed[start : end+1]
		}
	}
	return trimmed
}

// combinedScore folds the three AI dimensions and the heuristic format score
// into the overall 0-100 score.
func combinedScore(accuracy, fluency, terminology, format int) int {
	return int(math.Round(
		weightAccuracy*float64(accuracy) +
			weightFluency*float64(fluency) +
			weightTerminology*float64(terminology) +
			weightFormat*float64(format)))
}
