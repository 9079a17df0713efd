// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package terminology checks translations against project glossaries. The
// glossary itself is owned elsewhere in the platform; this tier only reads
// the terms relevant to one source text and verifies their required target
// renderings appear in the translation.
package terminology

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/quality-engine/pkg/types"
)

// missingTermPenalty is subtracted per absent required term.
const missingTermPenalty = 15

// GlossaryLookup supplies the glossary terms a project defines for a target
// locale. Implementations filter by project and locale; relevance to a
// particular source text is decided here.
type GlossaryLookup interface {
	Terms(ctx context.Context, projectID int64, targetLocale string) ([]types.GlossaryTerm, error)
}

// Result is the outcome of the terminology tier for one translation.
type Result struct {
	// Applicable is false when no glossary term matched the source text. A
	// non-applicable result contributes nothing; it is not a neutral pass.
	Applicable bool

	// Score is 100 minus the per-missing-term penalty, floored at 0. Only
	// meaningful when Applicable.
	Score int

	// Passed is false when any required term is missing.
	Passed bool

	// MissingTerms lists the required target terms absent from the
	// translation, sorted.
	MissingTerms []string

	// Issues carries the aggregated glossary_missing warning, if any.
	Issues []types.Issue
}

// Validate checks the target text for the required renderings of every
// glossary term whose source term occurs (case-insensitively) in the source
// text. Matching of the target term is case-insensitive as well; glossaries
// define words, not casing.
func Validate(ctx context.Context, lookup GlossaryLookup, projectID int64, sourceText, targetText, targetLocale string) (Result, error) {
	terms, err := lookup.Terms(ctx, projectID, targetLocale)
	if err != nil {
		return Result{}, fmt.Errorf("loading glossary terms: %w", err)
	}

	lowerSource := strings.ToLower(sourceText)
	lowerTarget := strings.ToLower(targetText)

	applicable := false
	var missing []string
	for _, term := range terms {
		if term.SourceTerm == "" || !strings.Contains(lowerSource, strings.ToLower(term.SourceTerm)) {
			continue
		}
		applicable = true
		if !strings.Contains(lowerTarget, strings.ToLower(term.TargetTerm)) {
			missing = append(missing, term.TargetTerm)
		}
	}

	if !applicable {
		return Result{}, nil
	}

	sort.Strings(missing)
	res := Result{
		Applicable:   true,
		Score:        100,
		Passed:       true,
		MissingTerms: missing,
	}
	if len(missing) > 0 {
		res.Score = 100 - missingTermPenalty*len(missing)
		if res.Score < 0 {
			res.Score = 0
		}
		res.Passed = false
		res.Issues = []types.Issue{{
			Type:     types.IssueGlossaryMissing,
			Severity: types.SeverityWarning,
			Message:  fmt.Sprintf("required glossary terms missing from the translation: %s", strings.Join(missing, ", ")),
		}}
	}
	return res, nil
}
