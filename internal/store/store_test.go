// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/quality-engine/internal/evaluate"
	"github.com/pdiddy/quality-engine/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.StoreConfig{DBPath: filepath.Join(t.TempDir(), "quality.db")})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedKey(t *testing.T, s *Store, projectID int64, name string, values map[string]string) (int64, map[string]int64) {
	t.Helper()
	ctx := context.Background()
	keyID, err := s.UpsertKey(ctx, types.TranslationKey{ProjectID: projectID, Name: name})
	if err != nil {
		t.Fatal(err)
	}
	ids := make(map[string]int64, len(values))
	for lang, value := range values {
		id, err := s.UpsertTranslation(ctx, keyID, lang, value)
		if err != nil {
			t.Fatal(err)
		}
		ids[lang] = id
	}
	return keyID, ids
}

func TestGetTranslation(t *testing.T) {
	s := testStore(t)
	keyID, ids := seedKey(t, s, 1, "greeting", map[string]string{
		"en": "Hello, {name}!",
		"de": "Hallo, {name}!",
	})

	tr, key, err := s.GetTranslation(context.Background(), ids["de"])
	if err != nil {
		t.Fatal(err)
	}
	if tr.Language != "de" || tr.Value != "Hallo, {name}!" || tr.KeyID != keyID {
		t.Errorf("translation = %+v", tr)
	}
	if key.ID != keyID || key.ProjectID != 1 || key.Name != "greeting" || key.Branch != "main" {
		t.Errorf("key = %+v", key)
	}
}

func TestGetTranslation_NotFound(t *testing.T) {
	s := testStore(t)
	_, _, err := s.GetTranslation(context.Background(), 404)
	if !errors.Is(err, evaluate.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGetSourceText(t *testing.T) {
	s := testStore(t)
	keyID, _ := seedKey(t, s, 1, "greeting", map[string]string{"en": "Hello!"})

	src, ok, err := s.GetSourceText(context.Background(), keyID, "en")
	if err != nil || !ok || src != "Hello!" {
		t.Fatalf("got (%q, %v, %v)", src, ok, err)
	}

	// Absence is not an error.
	orphanID, _ := seedKey(t, s, 1, "orphan", map[string]string{"de": "Hallo!"})
	src, ok, err = s.GetSourceText(context.Background(), orphanID, "en")
	if err != nil || ok || src != "" {
		t.Fatalf("got (%q, %v, %v), want absent without error", src, ok, err)
	}
}

func TestUpsertTranslation_ReplacesValue(t *testing.T) {
	s := testStore(t)
	keyID, ids := seedKey(t, s, 1, "greeting", map[string]string{"de": "Alt"})

	again, err := s.UpsertTranslation(context.Background(), keyID, "de", "Neu")
	if err != nil {
		t.Fatal(err)
	}
	if again != ids["de"] {
		t.Errorf("upsert created a second row: %d != %d", again, ids["de"])
	}
	tr, _, err := s.GetTranslation(context.Background(), ids["de"])
	if err != nil {
		t.Fatal(err)
	}
	if tr.Value != "Neu" {
		t.Errorf("value = %q, want replaced", tr.Value)
	}
}

func TestSaveScore_RoundtripAndReplace(t *testing.T) {
	s := testStore(t)
	_, ids := seedKey(t, s, 1, "greeting", map[string]string{"de": "Hallo!"})
	ctx := context.Background()

	rec := &types.QualityScoreRecord{
		TranslationID: ids["de"],
		Score:         87,
		Dimensions:    &types.DimensionScores{Accuracy: 90, Fluency: 80, Terminology: 70, Format: 100},
		Issues: []types.Issue{
			{Type: types.IssueWhitespace, Severity: types.SeverityWarning, Message: "trailing space"},
		},
		Type:        types.EvalHybrid,
		ContentHash: evaluate.ContentHash("Hello!", "Hallo!"),
		Provider:    "anthropic",
		Model:       "claude-sonnet-4-5",
		Tokens:      types.TokenUsage{Input: 500, Output: 120, CacheRead: 300},
		CreatedAt:   time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC),
	}
	if err := s.SaveScore(ctx, rec); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetScore(ctx, ids["de"])
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("no record returned")
	}
	if got.Score != 87 || got.Type != types.EvalHybrid || got.ContentHash != rec.ContentHash {
		t.Errorf("record = %+v", got)
	}
	if got.Dimensions == nil || *got.Dimensions != *rec.Dimensions {
		t.Errorf("dimensions = %+v, want %+v", got.Dimensions, rec.Dimensions)
	}
	if len(got.Issues) != 1 || got.Issues[0].Type != types.IssueWhitespace {
		t.Errorf("issues = %+v", got.Issues)
	}
	if got.Tokens != rec.Tokens {
		t.Errorf("tokens = %+v", got.Tokens)
	}
	if !got.CreatedAt.Equal(rec.CreatedAt) {
		t.Errorf("created_at = %v", got.CreatedAt)
	}

	// A heuristic re-check replaces the whole row: the old dimensions must
	// not survive.
	if err := s.SaveScore(ctx, &types.QualityScoreRecord{
		TranslationID: ids["de"],
		Score:         100,
		Type:          types.EvalHeuristic,
		ContentHash:   evaluate.ContentHash("Hello!", "Hallo neu!"),
		CreatedAt:     time.Now(),
	}); err != nil {
		t.Fatal(err)
	}
	got, err = s.GetScore(ctx, ids["de"])
	if err != nil {
		t.Fatal(err)
	}
	if got.Dimensions != nil {
		t.Errorf("stale dimensions survived replace: %+v", got.Dimensions)
	}
	if got.Provider != "" || len(got.Issues) != 0 {
		t.Errorf("stale fields survived replace: %+v", got)
	}
}

func TestGetScore_NoneIsNil(t *testing.T) {
	s := testStore(t)
	got, err := s.GetScore(context.Background(), 99)
	if err != nil || got != nil {
		t.Fatalf("got (%v, %v), want (nil, nil)", got, err)
	}
}

func TestRelatedTranslations(t *testing.T) {
	s := testStore(t)
	target, _ := seedKey(t, s, 1, "nav.home", map[string]string{"en": "Home", "de": "Start"})
	seedKey(t, s, 1, "nav.about", map[string]string{"en": "About", "de": "Über uns"})
	seedKey(t, s, 1, "nav.draft", map[string]string{"en": "Draft"}) // no target value
	seedKey(t, s, 2, "nav.other", map[string]string{"en": "Other", "de": "Andere"})

	rel, err := s.RelatedTranslations(context.Background(), target, "de", "en", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(rel) != 1 {
		t.Fatalf("related = %+v, want only the complete same-project sibling", rel)
	}
	if rel[0].KeyName != "nav.about" || rel[0].SourceText != "About" || rel[0].TargetText != "Über uns" {
		t.Errorf("related = %+v", rel[0])
	}
}

func TestQualityConfig_DefaultsWhenAbsent(t *testing.T) {
	s := testStore(t)
	cfg, err := s.QualityConfig(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.AIEvaluationEnabled || cfg.AIProvider != "" {
		t.Errorf("default config = %+v", cfg)
	}

	want := types.QualityConfig{AIEvaluationEnabled: false, AIProvider: "ollama", AIModel: "llama3"}
	if err := s.SetQualityConfig(context.Background(), 7, want); err != nil {
		t.Fatal(err)
	}
	cfg, err = s.QualityConfig(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if cfg != want {
		t.Errorf("config = %+v, want %+v", cfg, want)
	}
}

func TestPendingEvaluations(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	for _, id := range []int64{3, 1, 2} {
		if err := s.EnqueueEvaluation(ctx, id); err != nil {
			t.Fatal(err)
		}
	}
	// Duplicate enqueue is a no-op.
	if err := s.EnqueueEvaluation(ctx, 1); err != nil {
		t.Fatal(err)
	}

	ids, err := s.PendingEvaluations(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 3 {
		t.Fatalf("pending = %v, want 3 unique entries", ids)
	}

	if err := s.AcknowledgeEvaluations(ctx, []int64{1, 3}); err != nil {
		t.Fatal(err)
	}
	ids, err = s.PendingEvaluations(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != 2 {
		t.Errorf("pending after ack = %v, want [2]", ids)
	}
}

func TestImportGlossary(t *testing.T) {
	s := testStore(t)
	path := filepath.Join(t.TempDir(), "glossary.yaml")
	file := glossaryFile{Terms: []types.GlossaryTerm{
		{SourceTerm: "workspace", TargetTerm: "Arbeitsbereich", TargetLocale: "de"},
		{SourceTerm: "invoice", TargetTerm: "Rechnung", TargetLocale: "de"},
		{SourceTerm: "", TargetTerm: "kaputt", TargetLocale: "de"}, // incomplete
	}}
	data, err := yaml.Marshal(&file)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := s.ImportGlossary(context.Background(), 1, path, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("imported = %d, want 2", n)
	}

	terms, err := s.Terms(context.Background(), 1, "de")
	if err != nil {
		t.Fatal(err)
	}
	if len(terms) != 2 || terms[0].SourceTerm != "invoice" {
		t.Errorf("terms = %+v", terms)
	}

	// Re-import with a changed target term updates in place.
	file.Terms = []types.GlossaryTerm{{SourceTerm: "invoice", TargetTerm: "Faktura", TargetLocale: "de"}}
	data, _ = yaml.Marshal(&file)
	os.WriteFile(path, data, 0o644)
	if _, err := s.ImportGlossary(context.Background(), 1, path, io.Discard); err != nil {
		t.Fatal(err)
	}
	terms, _ = s.Terms(context.Background(), 1, "de")
	if len(terms) != 2 || terms[0].TargetTerm != "Faktura" {
		t.Errorf("terms after update = %+v", terms)
	}
}

func TestImportTranslations(t *testing.T) {
	s := testStore(t)
	path := filepath.Join(t.TempDir(), "seed.yaml")
	seed := `project: 1
keys:
  - name: greeting
    translations:
      en: "Hello, {name}!"
      de: "Hallo, {name}!"
  - name: farewell
    branch: release
    translations:
      en: "Goodbye!"
`
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}

	summary, err := s.ImportTranslations(context.Background(), path, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Keys != 2 || summary.Values != 3 || summary.Failed != 0 {
		t.Errorf("summary = %+v", summary)
	}

	ids, err := s.TranslationIDs(context.Background(), 1, "en")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 {
		t.Errorf("non-source translations = %v, want only the German value", ids)
	}

	// Re-import is idempotent.
	summary, err = s.ImportTranslations(context.Background(), path, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Keys != 2 || summary.Values != 3 {
		t.Errorf("re-import summary = %+v", summary)
	}
}
