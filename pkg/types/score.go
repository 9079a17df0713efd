// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// IssueSeverity ranks how serious a quality issue is.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
	SeverityInfo    IssueSeverity = "info"
)

// Issue type identifiers produced by the evaluation tiers.
const (
	IssueMissingPlaceholder = "missing_placeholder"
	IssueExtraPlaceholder   = "extra_placeholder"
	IssueICUSyntax          = "icu_syntax"
	IssueWhitespace         = "whitespace"
	IssuePunctuation        = "punctuation"
	IssueLengthRatio        = "length_ratio"
	IssueGlossaryMissing    = "glossary_missing"
)

// Issue is a single quality finding attached to a score record. Issues
// accumulate across tiers and are never deduplicated; a duplicate finding
// from two tiers is informative, not a defect.
type Issue struct {
	// Type identifies the check that produced the issue (e.g. "missing_placeholder").
	Type string `json:"type" yaml:"type"`

	// Severity is error, warning, or info.
	Severity IssueSeverity `json:"severity" yaml:"severity"`

	// Message is a human-readable description of the finding.
	Message string `json:"message" yaml:"message"`
}

// EvaluationType tags which tier produced a score record.
type EvaluationType string

const (
	// EvalHeuristic marks records produced entirely by the deterministic tier,
	// including fallbacks after a failed AI call.
	EvalHeuristic EvaluationType = "heuristic"

	// EvalAI marks records where the AI tier ran without the heuristic tier
	// having found anything (escalation forced by the caller).
	EvalAI EvaluationType = "ai"

	// EvalHybrid marks records where heuristic or terminology findings forced
	// escalation and were merged with the AI dimensions.
	EvalHybrid EvaluationType = "hybrid"
)

// DimensionScores holds the optional per-dimension breakdown of a score.
// Present only when the AI tier ran; nil otherwise.
type DimensionScores struct {
	// Accuracy rates semantic fidelity to the source (0-100).
	Accuracy int `json:"accuracy" yaml:"accuracy"`

	// Fluency rates naturalness in the target language (0-100).
	Fluency int `json:"fluency" yaml:"fluency"`

	// Terminology rates correct use of domain terms (0-100).
	Terminology int `json:"terminology" yaml:"terminology"`

	// Format is the heuristic format score folded into the combined total (0-100).
	Format int `json:"format" yaml:"format"`
}

// TokenUsage counts provider tokens consumed by an AI evaluation.
type TokenUsage struct {
	Input  int `json:"input" yaml:"input"`
	Output int `json:"output" yaml:"output"`

	// CacheRead counts input tokens served from the provider's prompt cache.
	CacheRead int `json:"cache_read,omitempty" yaml:"cache_read,omitempty"`
}

// QualityScoreRecord is the persisted outcome of evaluating one translation.
// Exactly one record exists per translation; every re-evaluation replaces the
// record wholesale, never updates it in place.
type QualityScoreRecord struct {
	// TranslationID identifies the evaluated translation.
	TranslationID int64 `json:"translation_id" yaml:"translation_id"`

	// Score is the overall quality score, 0-100.
	Score int `json:"score" yaml:"score"`

	// Dimensions is the per-dimension breakdown when the AI tier ran; nil for
	// heuristic-only records.
	Dimensions *DimensionScores `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`

	// Issues lists the findings from all tiers, in production order.
	Issues []Issue `json:"issues,omitempty" yaml:"issues,omitempty"`

	// Type tags which tier produced the record.
	Type EvaluationType `json:"type" yaml:"type"`

	// ContentHash is the digest of the source and target text the record was
	// computed from. The record is valid for a translation only while this
	// matches the hash of the current text on both sides.
	ContentHash string `json:"content_hash" yaml:"content_hash"`

	// Provider and Model identify the AI backend when the AI tier ran.
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty"`
	Model    string `json:"model,omitempty" yaml:"model,omitempty"`

	// Tokens counts provider usage when the AI tier ran.
	Tokens TokenUsage `json:"tokens,omitempty" yaml:"tokens,omitempty"`

	// CreatedAt is when the record was written.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Passed reports whether the record meets the shipping bar: score at least 80
// with no error-severity issue.
func (r *QualityScoreRecord) Passed() bool {
	if r.Score < 80 {
		return false
	}
	for _, iss := range r.Issues {
		if iss.Severity == SeverityError {
			return false
		}
	}
	return true
}
