// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// TranslationKey is the identifier grouping all per-language translations of
// one translatable string.
type TranslationKey struct {
	// ID is the key's stable numeric identifier.
	ID int64 `json:"id" yaml:"id"`

	// ProjectID identifies the owning project.
	ProjectID int64 `json:"project_id" yaml:"project_id"`

	// Name is the key path as authored (e.g. "checkout.button.confirm").
	Name string `json:"name" yaml:"name"`

	// Branch is the owning branch name.
	Branch string `json:"branch,omitempty" yaml:"branch,omitempty"`
}

// Translation is one (key, language) pair with a text value. Identity is
// immutable; the value may change, which invalidates any stored score record.
type Translation struct {
	// ID is the translation's stable numeric identifier.
	ID int64 `json:"id" yaml:"id"`

	// KeyID identifies the owning translation key.
	KeyID int64 `json:"key_id" yaml:"key_id"`

	// Language is the target locale tag (e.g. "de", "pt-BR").
	Language string `json:"language" yaml:"language"`

	// Value is the translated text.
	Value string `json:"value" yaml:"value"`

	// UpdatedAt is when the value last changed.
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// GlossaryTerm is one (source term, target term) pair required in a target
// locale. Glossaries are owned externally; the engine only reads them.
type GlossaryTerm struct {
	// SourceTerm is the term as it appears in source text.
	SourceTerm string `json:"source_term" yaml:"source_term"`

	// TargetTerm is the required rendering in the target locale.
	TargetTerm string `json:"target_term" yaml:"target_term"`

	// TargetLocale is the locale the pair applies to.
	TargetLocale string `json:"target_locale" yaml:"target_locale"`
}

// RelatedTranslation is a sibling key's translation supplied as model context.
// Best-effort input to the AI tier; never required for correctness.
type RelatedTranslation struct {
	KeyName    string `json:"key_name" yaml:"key_name"`
	SourceText string `json:"source_text" yaml:"source_text"`
	TargetText string `json:"target_text" yaml:"target_text"`
}

// QualityConfig is a project's quality-evaluation configuration, owned by the
// surrounding platform and read per call.
type QualityConfig struct {
	// AIEvaluationEnabled gates the AI tier for the project.
	AIEvaluationEnabled bool `json:"ai_evaluation_enabled" yaml:"ai_evaluation_enabled"`

	// AIProvider selects the language-model provider (e.g. "anthropic").
	AIProvider string `json:"ai_provider" yaml:"ai_provider"`

	// AIModel is the model identifier passed to the provider.
	AIModel string `json:"ai_model" yaml:"ai_model"`

	// ScoreAfterAITranslation enqueues an evaluation whenever a machine
	// translation is produced elsewhere in the platform.
	ScoreAfterAITranslation bool `json:"score_after_ai_translation" yaml:"score_after_ai_translation"`
}
