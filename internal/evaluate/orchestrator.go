// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package evaluate decides, per translation, how much scoring to pay for.
// Every evaluation walks the same ladder: a content-hash cache check, then
// the free heuristic and terminology tiers, and only when something
// escalates a single AI call covering all languages of the key. Each
// terminal state persists exactly one complete score record.
package evaluate

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pdiddy/quality-engine/internal/heuristic"
	"github.com/pdiddy/quality-engine/internal/llm"
	"github.com/pdiddy/quality-engine/internal/terminology"
	"github.com/pdiddy/quality-engine/pkg/types"
)

// defaultRelatedLimit caps the sibling-key context supplied to the model.
const defaultRelatedLimit = 10

// TranslationStore is the engine's view of the platform's relational store.
type TranslationStore interface {
	// GetTranslation returns a translation and its owning key.
	GetTranslation(ctx context.Context, id int64) (*types.Translation, *types.TranslationKey, error)

	// GetSourceText returns the key's source-language text, reporting absence
	// without error.
	GetSourceText(ctx context.Context, keyID int64, sourceLocale string) (string, bool, error)

	// GetScore returns the stored score record for a translation, or nil.
	GetScore(ctx context.Context, translationID int64) (*types.QualityScoreRecord, error)

	// SaveScore atomically replaces the translation's score record.
	SaveScore(ctx context.Context, rec *types.QualityScoreRecord) error
}

// KeyContextProvider supplies sibling-key translations as model context.
// Best-effort: the orchestrator tolerates its failure.
type KeyContextProvider interface {
	RelatedTranslations(ctx context.Context, keyID int64, targetLocale, sourceLocale string, limit int) ([]types.RelatedTranslation, error)
}

// ConfigProvider reads a project's quality configuration.
type ConfigProvider interface {
	QualityConfig(ctx context.Context, projectID int64) (types.QualityConfig, error)
}

// Orchestrator runs the tiered evaluation for single translations and for
// key groups. Zero-value optional collaborators degrade gracefully: no
// Glossary skips the terminology tier, no KeyCtx sends no context, no Config
// falls back to the base AI settings.
type Orchestrator struct {
	Store    TranslationStore
	Glossary terminology.GlossaryLookup
	KeyCtx   KeyContextProvider
	Config   ConfigProvider

	// AI is the base provider configuration; per-project config may override
	// provider and model.
	AI types.AIConfig

	// SourceLocale is the platform's source language (default "en").
	SourceLocale string

	// RelatedLimit caps sibling-key context entries (default 10).
	RelatedLimit int

	// NewClient constructs a provider client; defaults to llm.New. Tests
	// substitute a fake.
	NewClient func(cfg types.AIConfig) (llm.Client, error)

	// now is the record timestamp source; tests pin it.
	now func() time.Time
}

// KeyGroup is all translations of one key requested in a batch, plus the
// key's source text when it exists.
type KeyGroup struct {
	Key          types.TranslationKey
	SourceText   string
	HasSource    bool
	Translations []types.Translation
	ForceAI      bool
}

func (o *Orchestrator) sourceLocale() string {
	if o.SourceLocale != "" {
		return o.SourceLocale
	}
	return "en"
}

func (o *Orchestrator) relatedLimit() int {
	if o.RelatedLimit > 0 {
		return o.RelatedLimit
	}
	return defaultRelatedLimit
}

func (o *Orchestrator) timestamp() time.Time {
	if o.now != nil {
		return o.now().UTC()
	}
	return time.Now().UTC()
}

// EvaluateTranslation evaluates a single translation end to end and returns
// its persisted (or cache-hit) score record.
func (o *Orchestrator) EvaluateTranslation(ctx context.Context, translationID int64, forceAI bool, w io.Writer) (*types.QualityScoreRecord, error) {
	tr, key, err := o.Store.GetTranslation(ctx, translationID)
	if err != nil {
		return nil, err
	}

	source, hasSource, err := o.Store.GetSourceText(ctx, key.ID, o.sourceLocale())
	if err != nil {
		return nil, fmt.Errorf("loading source text: %w", err)
	}

	group := KeyGroup{
		Key:          *key,
		SourceText:   source,
		HasSource:    hasSource,
		Translations: []types.Translation{*tr},
		ForceAI:      forceAI,
	}
	records, failures := o.EvaluateGroup(ctx, group, w)
	if len(failures) > 0 {
		return nil, fmt.Errorf("evaluating translation %d: %s", translationID, failures[0].Reason)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("evaluating translation %d: no record produced", translationID)
	}
	return records[0], nil
}

// pending is one cache-missed translation moving through the tiers.
type pending struct {
	tr       types.Translation
	hash     string
	heur     heuristic.Result
	term     terminology.Result
	escalate bool
}

// EvaluateGroup walks the tier ladder for every translation of one key.
// Cache hits are returned as-is; misses are scored and persisted. Failures
// are collected per item, never raised: the caller always gets both lists.
func (o *Orchestrator) EvaluateGroup(ctx context.Context, g KeyGroup, w io.Writer) ([]*types.QualityScoreRecord, []types.ItemFailure) {
	var records []*types.QualityScoreRecord
	var failures []types.ItemFailure
	fail := func(id int64, err error) {
		failures = append(failures, types.ItemFailure{TranslationID: id, Reason: err.Error()})
	}

	source := ""
	if g.HasSource {
		source = g.SourceText
	}

	// Cache check. forceAI never bypasses this: cache validity is about
	// content identity, not evaluation intent.
	var misses []pending
	for _, tr := range g.Translations {
		hash := ContentHash(source, tr.Value)
		stored, err := o.Store.GetScore(ctx, tr.ID)
		if err != nil {
			fail(tr.ID, fmt.Errorf("reading cached score: %w", err))
			continue
		}
		if stored != nil && stored.ContentHash == hash {
			fmt.Fprintf(w, "cached  %s/%s (score %d)\n", g.Key.Name, tr.Language, stored.Score)
			records = append(records, stored)
			continue
		}
		misses = append(misses, pending{tr: tr, hash: hash})
	}
	if len(misses) == 0 {
		return records, failures
	}

	// A key with no source text has nothing to compare against: ICU-syntax
	// check only, no AI.
	if !g.HasSource {
		for _, p := range misses {
			res := heuristic.FormatOnly(p.tr.Value)
			rec := o.heuristicRecord(p.tr.ID, p.hash, res.Score, res.Issues)
			o.persist(ctx, rec, &records, &failures)
		}
		return records, failures
	}

	// Free tiers, per language.
	anyEscalation := false
	for i := range misses {
		p := &misses[i]
		p.heur = heuristic.Check(source, p.tr.Value, o.sourceLocale(), p.tr.Language)
		if o.Glossary != nil {
			term, err := terminology.Validate(ctx, o.Glossary, g.Key.ProjectID, source, p.tr.Value, p.tr.Language)
			if err != nil {
				// Terminology is an enrichment; a broken glossary lookup must
				// not fail the item.
				fmt.Fprintf(w, "warning: terminology check failed for %s/%s: %v\n", g.Key.Name, p.tr.Language, err)
			} else {
				p.term = term
			}
		}
		p.escalate = p.heur.NeedsEscalation || (p.term.Applicable && !p.term.Passed) || g.ForceAI
		if p.escalate {
			anyEscalation = true
		}
	}

	if anyEscalation {
		if client, aiCfg, err := o.aiClient(ctx, g.Key.ProjectID); err != nil {
			fmt.Fprintf(w, "warning: %v; falling back to heuristic scores for key %s\n", err, g.Key.Name)
		} else if done := o.runAITier(ctx, g, client, aiCfg, misses, &records, &failures, w); done {
			return records, failures
		}
	}

	// Heuristic terminal state: passed without escalation, AI unavailable,
	// or AI failed.
	for _, p := range misses {
		score := p.heur.Score
		if p.term.Applicable && p.term.Score < score {
			score = p.term.Score
		}
		issues := append(append([]types.Issue{}, p.heur.Issues...), p.term.Issues...)
		rec := o.heuristicRecord(p.tr.ID, p.hash, score, issues)
		o.persist(ctx, rec, &records, &failures)
	}
	return records, failures
}

// runAITier performs the single key-level AI call and persists AI-tier
// records. It returns false when the caller should fall back to heuristic
// records for the whole group.
func (o *Orchestrator) runAITier(ctx context.Context, g KeyGroup, client llm.Client, aiCfg types.AIConfig, misses []pending, records *[]*types.QualityScoreRecord, failures *[]types.ItemFailure, w io.Writer) bool {
	targets := make([]aiTarget, 0, len(misses))
	for _, p := range misses {
		targets = append(targets, aiTarget{Locale: p.tr.Language, Text: p.tr.Value})
	}

	var related []types.RelatedTranslation
	if o.KeyCtx != nil {
		rel, err := o.KeyCtx.RelatedTranslations(ctx, g.Key.ID, misses[0].tr.Language, o.sourceLocale(), o.relatedLimit())
		if err != nil {
			fmt.Fprintf(w, "warning: key context unavailable for %s: %v\n", g.Key.Name, err)
		} else {
			related = rel
		}
	}

	maxRetries := aiCfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	dims, usage, err := evaluateWithAI(ctx, client, maxRetries, g.Key.Name, o.sourceLocale(), g.SourceText, targets, related)
	if err != nil {
		// Provider and validation failures downgrade to heuristic scoring;
		// they never fail the caller.
		fmt.Fprintf(w, "warning: ai evaluation failed for key %s: %v\n", g.Key.Name, err)
		return false
	}

	// The call covered every language at once; split its token usage evenly
	// across the records it produced.
	perRecord := splitUsage(usage, len(misses))

	for i, p := range misses {
		d := dims[strings.ToLower(p.tr.Language)]
		evalType := types.EvalHybrid
		if !p.heur.NeedsEscalation && (!p.term.Applicable || p.term.Passed) {
			// Escalation came only from the caller's forceAI.
			evalType = types.EvalAI
		}
		issues := append(append([]types.Issue{}, p.heur.Issues...), p.term.Issues...)
		issues = append(issues, d.Issues...)

		rec := &types.QualityScoreRecord{
			TranslationID: p.tr.ID,
			Score:         combinedScore(d.Accuracy, d.Fluency, d.Terminology, p.heur.Score),
			Dimensions: &types.DimensionScores{
				Accuracy:    d.Accuracy,
				Fluency:     d.Fluency,
				Terminology: d.Terminology,
				Format:      p.heur.Score,
			},
			Issues:      issues,
			Type:        evalType,
			ContentHash: p.hash,
			Provider:    client.Name(),
			Model:       aiCfg.Model,
			Tokens:      perRecord[i],
			CreatedAt:   o.timestamp(),
		}
		o.persist(ctx, rec, records, failures)
	}
	return true
}

// aiClient resolves the effective AI settings for a project and constructs
// the provider client.
func (o *Orchestrator) aiClient(ctx context.Context, projectID int64) (llm.Client, types.AIConfig, error) {
	cfg := o.AI
	if o.Config != nil {
		qc, err := o.Config.QualityConfig(ctx, projectID)
		if err != nil {
			return nil, cfg, fmt.Errorf("reading quality config: %w", err)
		}
		if !qc.AIEvaluationEnabled {
			return nil, cfg, fmt.Errorf("%w: project %d", ErrAINotConfigured, projectID)
		}
		if qc.AIProvider != "" {
			cfg.Provider = qc.AIProvider
		}
		if qc.AIModel != "" {
			cfg.Model = qc.AIModel
		}
	}
	if cfg.Provider == "" {
		return nil, cfg, ErrAINotConfigured
	}

	newClient := o.NewClient
	if newClient == nil {
		newClient = llm.New
	}
	client, err := newClient(cfg)
	if err != nil {
		return nil, cfg, fmt.Errorf("%w: %v", ErrAINotConfigured, err)
	}
	return client, cfg, nil
}

// heuristicRecord builds a complete heuristic-tier record.
func (o *Orchestrator) heuristicRecord(translationID int64, hash string, score int, issues []types.Issue) *types.QualityScoreRecord {
	return &types.QualityScoreRecord{
		TranslationID: translationID,
		Score:         score,
		Issues:        issues,
		Type:          types.EvalHeuristic,
		ContentHash:   hash,
		CreatedAt:     o.timestamp(),
	}
}

// persist writes a record, filing a failure instead of a result when the
// store rejects it.
func (o *Orchestrator) persist(ctx context.Context, rec *types.QualityScoreRecord, records *[]*types.QualityScoreRecord, failures *[]types.ItemFailure) {
	if err := o.Store.SaveScore(ctx, rec); err != nil {
		*failures = append(*failures, types.ItemFailure{
			TranslationID: rec.TranslationID,
			Reason:        fmt.Sprintf("persisting score: %v", err),
		})
		return
	}
	*records = append(*records, rec)
}

// splitUsage divides one call's token usage across n records, putting the
// remainder on the first.
func splitUsage(usage types.TokenUsage, n int) []types.TokenUsage {
	out := make([]types.TokenUsage, n)
	if n == 0 {
		return out
	}
	for i := range out {
		out[i] = types.TokenUsage{
			Input:     usage.Input / n,
			Output:    usage.Output / n,
			CacheRead: usage.CacheRead / n,
		}
	}
	out[0].Input += usage.Input % n
	out[0].Output += usage.Output % n
	out[0].CacheRead += usage.CacheRead % n
	return out
}
