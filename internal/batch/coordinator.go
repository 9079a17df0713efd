// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch evaluates many translations as one job. Translations are
// grouped by key, keys are processed by a fixed-size worker pool in waves,
// and every failure stays with its item: the job itself always runs to
// completion and reports a summary.
package batch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/pdiddy/quality-engine/internal/evaluate"
	"github.com/pdiddy/quality-engine/pkg/types"
)

// defaultConcurrency is the worker-pool size: the in-process throttle on
// concurrent key evaluations (and so on concurrent provider calls).
const defaultConcurrency = 3

// Coordinator runs batch evaluation jobs.
type Coordinator struct {
	Orchestrator *evaluate.Orchestrator

	// Concurrency bounds parallel key evaluations (default 3).
	Concurrency int

	// Progress receives cumulative processed/total counts after each wave.
	// Optional.
	Progress func(types.Progress)
}

// Request describes one batch job.
type Request struct {
	// TranslationIDs lists the translations to evaluate. Duplicates are
	// removed before grouping.
	TranslationIDs []int64

	// ForceAI escalates every key to the AI tier. It does not bypass the
	// content cache.
	ForceAI bool
}

// Result pairs the job summary with the records it produced.
type Result struct {
	Summary types.JobSummary
	Records []*types.QualityScoreRecord
}

// keyWork is one key's worth of translations plus its source text.
type keyWork struct {
	group evaluate.KeyGroup
	items int
}

// Run executes the job: fetch, group by key, evaluate keys in
// concurrency-bounded waves, report progress after each wave. Cancellation
// is honored between waves; an in-flight key evaluation completes. The
// returned error is non-nil only for cancellation; every per-item problem
// lives in the summary's failure list instead.
func (c *Coordinator) Run(ctx context.Context, req Request, w io.Writer) (Result, error) {
	res := Result{Summary: types.JobSummary{JobID: uuid.NewString()}}

	ids := dedupe(req.TranslationIDs)
	total := len(ids)

	groups, fetchFailures := c.fetchAndGroup(ctx, ids, req.ForceAI, w)
	res.Summary.Failures = append(res.Summary.Failures, fetchFailures...)
	res.Summary.Failed += len(fetchFailures)

	processed := len(fetchFailures)
	c.report(types.Progress{Processed: processed, Total: total})

	concurrency := c.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	for start := 0; start < len(groups); start += concurrency {
		// Cooperative cancellation: never start a new wave on a dead context.
		if err := ctx.Err(); err != nil {
			for _, work := range groups[start:] {
				for _, tr := range work.group.Translations {
					res.Summary.Failures = append(res.Summary.Failures, types.ItemFailure{
						TranslationID: tr.ID,
						Reason:        fmt.Sprintf("not evaluated: %v", err),
					})
					res.Summary.Failed++
				}
			}
			return res, err
		}

		end := start + concurrency
		if end > len(groups) {
			end = len(groups)
		}
		wave := groups[start:end]

		type keyOutcome struct {
			records  []*types.QualityScoreRecord
			failures []types.ItemFailure
			items    int
			output   []byte
		}
		outcomes := make(chan keyOutcome, len(wave))
		var wg sync.WaitGroup
		for _, work := range wave {
			wg.Add(1)
			go func(work keyWork) {
				defer wg.Done()
				// Workers must not share w: each key's output goes to its own
				// buffer and is flushed after the wave completes.
				var buf bytes.Buffer
				records, failures := c.Orchestrator.EvaluateGroup(ctx, work.group, &buf)
				outcomes <- keyOutcome{records: records, failures: failures, items: work.items, output: buf.Bytes()}
			}(work)
		}
		wg.Wait()
		close(outcomes)

		for out := range outcomes {
			w.Write(out.output)
			res.Records = append(res.Records, out.records...)
			res.Summary.Evaluated += len(out.records)
			res.Summary.Failures = append(res.Summary.Failures, out.failures...)
			res.Summary.Failed += len(out.failures)
			processed += out.items
		}
		c.report(types.Progress{Processed: processed, Total: total})
	}

	fmt.Fprintf(w, "\nevaluated: %d, failed: %d\n", res.Summary.Evaluated, res.Summary.Failed)
	return res, nil
}

// fetchAndGroup loads every requested translation and groups them by owning
// key, resolving each key's source text once. Unresolvable items become
// failures; they never stop the job.
func (c *Coordinator) fetchAndGroup(ctx context.Context, ids []int64, forceAI bool, w io.Writer) ([]keyWork, []types.ItemFailure) {
	store := c.Orchestrator.Store

	type sourceInfo struct {
		text string
		has  bool
	}
	sourceLocale := c.Orchestrator.SourceLocale
	if sourceLocale == "" {
		sourceLocale = "en"
	}

	byKey := make(map[int64]*keyWork)
	sources := make(map[int64]sourceInfo)
	var order []int64
	var failures []types.ItemFailure

	for _, id := range ids {
		tr, key, err := store.GetTranslation(ctx, id)
		if err != nil {
			fmt.Fprintf(w, "failed  translation %d: %v\n", id, err)
			failures = append(failures, types.ItemFailure{TranslationID: id, Reason: err.Error()})
			continue
		}

		src, ok := sources[key.ID]
		if !ok {
			text, has, err := store.GetSourceText(ctx, key.ID, sourceLocale)
			if err != nil {
				fmt.Fprintf(w, "failed  translation %d: loading source: %v\n", id, err)
				failures = append(failures, types.ItemFailure{TranslationID: id, Reason: fmt.Sprintf("loading source: %v", err)})
				continue
			}
			src = sourceInfo{text: text, has: has}
			sources[key.ID] = src
		}

		work, ok := byKey[key.ID]
		if !ok {
			work = &keyWork{group: evaluate.KeyGroup{
				Key:        *key,
				SourceText: src.text,
				HasSource:  src.has,
				ForceAI:    forceAI,
			}}
			byKey[key.ID] = work
			order = append(order, key.ID)
		}
		work.group.Translations = append(work.group.Translations, *tr)
		work.items++
	}

	// Deterministic key order keeps wave composition and progress stable.
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	groups := make([]keyWork, 0, len(order))
	for _, keyID := range order {
		groups = append(groups, *byKey[keyID])
	}
	return groups, failures
}

func (c *Coordinator) report(p types.Progress) {
	if c.Progress != nil {
		c.Progress(p)
	}
}

// dedupe removes duplicate identifiers, preserving first-seen order. A
// translation must not appear twice in one job: its cache row is read and
// written without coordination across workers.
func dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	var out []int64
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
