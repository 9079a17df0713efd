// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/pdiddy/quality-engine/internal/evaluate"
	"github.com/pdiddy/quality-engine/pkg/types"
)

// memStore is an in-memory evaluate.TranslationStore, safe for the
// coordinator's concurrent workers.
type memStore struct {
	mu           sync.Mutex
	translations map[int64]types.Translation
	keys         map[int64]types.TranslationKey
	sources      map[int64]string
	scores       map[int64]*types.QualityScoreRecord
}

func newMemStore() *memStore {
	return &memStore{
		translations: map[int64]types.Translation{},
		keys:         map[int64]types.TranslationKey{},
		sources:      map[int64]string{},
		scores:       map[int64]*types.QualityScoreRecord{},
	}
}

func (s *memStore) add(id, keyID int64, keyName, lang, value, source string) {
	s.translations[id] = types.Translation{ID: id, KeyID: keyID, Language: lang, Value: value}
	s.keys[keyID] = types.TranslationKey{ID: keyID, ProjectID: 1, Name: keyName}
	if source != "" {
		s.sources[keyID] = source
	}
}

func (s *memStore) GetTranslation(_ context.Context, id int64) (*types.Translation, *types.TranslationKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tr, ok := s.translations[id]
	if !ok {
		return nil, nil, fmt.Errorf("%w: translation %d", evaluate.ErrNotFound, id)
	}
	key := s.keys[tr.KeyID]
	return &tr, &key, nil
}

func (s *memStore) GetSourceText(_ context.Context, keyID int64, _ string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	src, ok := s.sources[keyID]
	return src, ok, nil
}

func (s *memStore) GetScore(_ context.Context, id int64) (*types.QualityScoreRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scores[id], nil
}

func (s *memStore) SaveScore(_ context.Context, rec *types.QualityScoreRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[rec.TranslationID] = rec
	return nil
}

func (s *memStore) saved() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.scores)
}

func coordinator(store *memStore, concurrency int) *Coordinator {
	return &Coordinator{
		Orchestrator: &evaluate.Orchestrator{Store: store},
		Concurrency:  concurrency,
	}
}

func TestRun_EvaluatesGroupedKeys(t *testing.T) {
	store := newMemStore()
	store.add(10, 1, "greeting", "de", "Hallo, {name}!", "Hello, {name}!")
	store.translations[11] = types.Translation{ID: 11, KeyID: 1, Language: "fr", Value: "Bonjour, {name}!"}
	store.add(20, 2, "farewell", "de", "Auf Wiedersehen!", "Goodbye!")

	c := coordinator(store, 2)
	res, err := c.Run(context.Background(), Request{TranslationIDs: []int64{10, 11, 20}}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if res.Summary.JobID == "" {
		t.Error("job ID missing")
	}
	if res.Summary.Evaluated != 3 || res.Summary.Failed != 0 {
		t.Errorf("summary = %+v, want 3 evaluated, 0 failed", res.Summary)
	}
	if len(res.Records) != 3 {
		t.Fatalf("records = %d, want 3", len(res.Records))
	}
	if store.saved() != 3 {
		t.Errorf("persisted scores = %d, want 3", store.saved())
	}
}

func TestRun_MissingTranslationIsIsolated(t *testing.T) {
	store := newMemStore()
	store.add(10, 1, "greeting", "de", "Hallo!", "Hello!")
	store.add(20, 2, "farewell", "de", "Auf Wiedersehen!", "Goodbye!")

	c := coordinator(store, 2)
	res, err := c.Run(context.Background(), Request{TranslationIDs: []int64{10, 404, 20}}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if res.Summary.Evaluated != 2 {
		t.Errorf("evaluated = %d, want 2: one bad item must not stop the rest", res.Summary.Evaluated)
	}
	if res.Summary.Failed != 1 || len(res.Summary.Failures) != 1 {
		t.Fatalf("failures = %+v, want exactly one", res.Summary.Failures)
	}
	if res.Summary.Failures[0].TranslationID != 404 {
		t.Errorf("failure names translation %d, want 404", res.Summary.Failures[0].TranslationID)
	}
	if res.Summary.Total() != 3 {
		t.Errorf("total = %d, want 3", res.Summary.Total())
	}
}

func TestRun_DeduplicatesIdentifiers(t *testing.T) {
	store := newMemStore()
	store.add(10, 1, "greeting", "de", "Hallo!", "Hello!")

	c := coordinator(store, 2)
	res, err := c.Run(context.Background(), Request{TranslationIDs: []int64{10, 10, 10}}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if res.Summary.Evaluated != 1 || len(res.Records) != 1 {
		t.Errorf("duplicates must collapse to one evaluation, got %+v", res.Summary)
	}
}

func TestRun_ProgressPerWave(t *testing.T) {
	store := newMemStore()
	for i := int64(1); i <= 4; i++ {
		store.add(i*10, i, fmt.Sprintf("key.%d", i), "de", "Hallo!", "Hello!")
	}

	var got []types.Progress
	c := coordinator(store, 2)
	c.Progress = func(p types.Progress) { got = append(got, p) }

	if _, err := c.Run(context.Background(), Request{TranslationIDs: []int64{10, 20, 30, 40}}, io.Discard); err != nil {
		t.Fatal(err)
	}

	// One report after fetch, then one per wave of two keys.
	want := []types.Progress{
		{Processed: 0, Total: 4},
		{Processed: 2, Total: 4},
		{Processed: 4, Total: 4},
	}
	if len(got) != len(want) {
		t.Fatalf("progress reports = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("report %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestRun_CancellationStopsNewWaves(t *testing.T) {
	store := newMemStore()
	store.add(10, 1, "greeting", "de", "Hallo!", "Hello!")
	store.add(20, 2, "farewell", "de", "Auf Wiedersehen!", "Goodbye!")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := coordinator(store, 1)
	res, err := c.Run(ctx, Request{TranslationIDs: []int64{10, 20}}, io.Discard)
	if err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if res.Summary.Evaluated != 0 {
		t.Errorf("evaluated = %d, want 0 on a dead context", res.Summary.Evaluated)
	}
	if res.Summary.Failed != 2 {
		t.Errorf("failed = %d, want both items recorded as unevaluated", res.Summary.Failed)
	}
	for _, f := range res.Summary.Failures {
		if f.Reason == "" {
			t.Errorf("failure for %d has no reason", f.TranslationID)
		}
	}
}

func TestRun_SharedWriterAcrossWorkers(t *testing.T) {
	store := newMemStore()
	store.add(10, 1, "greeting", "de", "Hallo!", "Hello!")
	store.add(20, 2, "farewell", "de", "Auf Wiedersehen!", "Goodbye!")
	store.scores[10] = &types.QualityScoreRecord{
		TranslationID: 10,
		Score:         100,
		Type:          types.EvalHeuristic,
		ContentHash:   evaluate.ContentHash("Hello!", "Hallo!"),
	}
	store.scores[20] = &types.QualityScoreRecord{
		TranslationID: 20,
		Score:         95,
		Type:          types.EvalHeuristic,
		ContentHash:   evaluate.ContentHash("Goodbye!", "Auf Wiedersehen!"),
	}

	// Both keys run in one wave and both print a cache-hit line. The shared
	// writer is not safe for concurrent use; worker output must reach it
	// serialized and unmangled.
	var buf bytes.Buffer
	c := coordinator(store, 2)
	res, err := c.Run(context.Background(), Request{TranslationIDs: []int64{10, 20}}, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if res.Summary.Evaluated != 2 {
		t.Fatalf("summary = %+v, want 2 evaluated", res.Summary)
	}

	out := buf.String()
	for _, line := range []string{
		"cached  greeting/de (score 100)\n",
		"cached  farewell/de (score 95)\n",
	} {
		if !strings.Contains(out, line) {
			t.Errorf("output missing intact line %q:\n%s", line, out)
		}
	}
}

func TestRun_ReusesCachedScores(t *testing.T) {
	store := newMemStore()
	store.add(10, 1, "greeting", "de", "Hallo, {name}!", "Hello, {name}!")

	c := coordinator(store, 1)
	if _, err := c.Run(context.Background(), Request{TranslationIDs: []int64{10}}, io.Discard); err != nil {
		t.Fatal(err)
	}
	first := store.scores[10]

	res, err := c.Run(context.Background(), Request{TranslationIDs: []int64{10}}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if res.Summary.Evaluated != 1 {
		t.Errorf("cache hits still count as evaluated, got %+v", res.Summary)
	}
	if store.scores[10] != first {
		t.Error("second run must reuse the stored record, not rewrite it")
	}
}
