// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package heuristic is the deterministic, zero-cost evaluation tier. It
// compares a translation against its source for structural problems
// (placeholder parity, ICU syntax, whitespace and punctuation drift, length
// anomalies) without any I/O, and decides whether the translation needs
// escalation to the AI tier.
package heuristic

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/quality-engine/pkg/types"
)

// Penalty per issue severity. One warning still passes; one error never does.
const (
	penaltyError   = 25
	penaltyWarning = 10
	penaltyInfo    = 5
)

// Length-ratio bounds outside which a translation is flagged as suspiciously
// short or long relative to its source.
const (
	minLengthRatio = 0.5
	maxLengthRatio = 3.0
)

// passThreshold is the minimum score for a translation to pass without
// escalation.
const passThreshold = 80

// Result is the outcome of the heuristic tier for one translation.
type Result struct {
	// Score is 100 minus accumulated penalties, clamped to [0,100].
	Score int

	// Issues lists the structural findings, in check order.
	Issues []types.Issue

	// Passed is true when the score meets the threshold and no error-severity
	// issue was found.
	Passed bool

	// NeedsEscalation is true when the translation should go to the AI tier.
	NeedsEscalation bool
}

// Check runs all heuristic checks on one (source, target) pair. It is a pure
// function: identical inputs always produce the identical result.
func Check(source, target, sourceLocale, targetLocale string) Result {
	var issues []types.Issue

	issues = append(issues, checkPlaceholders(source, target)...)

	if err := ValidateICU(target); err != nil {
		issues = append(issues, types.Issue{
			Type:     types.IssueICUSyntax,
			Severity: types.SeverityError,
			Message:  fmt.Sprintf("target is not a valid ICU message: %v", err),
		})
	}

	if iss, ok := checkWhitespace(source, target); ok {
		issues = append(issues, iss)
	}
	if iss, ok := checkPunctuation(source, target); ok {
		issues = append(issues, iss)
	}
	if iss, ok := checkLengthRatio(source, target); ok {
		issues = append(issues, iss)
	}

	return score(issues)
}

// FormatOnly evaluates a translation whose key has no source-language text.
// With nothing to compare against, only ICU validity is checked: a valid
// message scores 100 with no issues, an invalid one scores 50 with a single
// icu_syntax error.
func FormatOnly(target string) Result {
	if err := ValidateICU(target); err != nil {
		return Result{
			Score: 50,
			Issues: []types.Issue{{
				Type:     types.IssueICUSyntax,
				Severity: types.SeverityError,
				Message:  fmt.Sprintf("target is not a valid ICU message: %v", err),
			}},
			Passed:          false,
			NeedsEscalation: true,
		}
	}
	return Result{Score: 100, Passed: true}
}

// score folds issues into the tier result.
func score(issues []types.Issue) Result {
	total := 100
	hasError := false
	for _, iss := range issues {
		switch iss.Severity {
		case types.SeverityError:
			total -= penaltyError
			hasError = true
		case types.SeverityWarning:
			total -= penaltyWarning
		case types.SeverityInfo:
			total -= penaltyInfo
		}
	}
	if total < 0 {
		total = 0
	}

	passed := total >= passThreshold && !hasError
	return Result{
		Score:           total,
		Issues:          issues,
		Passed:          passed,
		NeedsEscalation: !passed || hasError,
	}
}

// checkPlaceholders compares the top-level ICU argument sets of source and
// target. A placeholder present in the source but not the target is an error;
// one invented by the target is a warning.
func checkPlaceholders(source, target string) []types.Issue {
	srcSet := extractPlaceholders(source)
	tgtSet := extractPlaceholders(target)

	inTarget := make(map[string]bool, len(tgtSet))
	for _, name := range tgtSet {
		inTarget[name] = true
	}
	inSource := make(map[string]bool, len(srcSet))
	for _, name := range srcSet {
		inSource[name] = true
	}

	var issues []types.Issue
	for _, name := range srcSet {
		if !inTarget[name] {
			issues = append(issues, types.Issue{
				Type:     types.IssueMissingPlaceholder,
				Severity: types.SeverityError,
				Message:  fmt.Sprintf("placeholder {%s} from the source is missing in the target", name),
			})
		}
	}
	for _, name := range tgtSet {
		if !inSource[name] {
			issues = append(issues, types.Issue{
				Type:     types.IssueExtraPlaceholder,
				Severity: types.SeverityWarning,
				Message:  fmt.Sprintf("placeholder {%s} appears in the target but not the source", name),
			})
		}
	}
	return issues
}

// checkWhitespace flags leading or trailing whitespace the target has but the
// source lacks.
func checkWhitespace(source, target string) (types.Issue, bool) {
	leadingDrift := hasLeadingSpace(target) && !hasLeadingSpace(source)
	trailingDrift := hasTrailingSpace(target) && !hasTrailingSpace(source)
	if !leadingDrift && !trailingDrift {
		return types.Issue{}, false
	}

	var where []string
	if leadingDrift {
		where = append(where, "leading")
	}
	if trailingDrift {
		where = append(where, "trailing")
	}
	return types.Issue{
		Type:     types.IssueWhitespace,
		Severity: types.SeverityWarning,
		Message:  fmt.Sprintf("target has %s whitespace the source does not", strings.Join(where, " and ")),
	}, true
}

func hasLeadingSpace(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return s != "" && unicode.IsSpace(r)
}

func hasTrailingSpace(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return s != "" && unicode.IsSpace(r)
}

// sentenceFinal covers Latin and CJK sentence-ending punctuation plus the
// colon/semicolon family that UI strings commonly end with.
var sentenceFinal = map[rune]bool{
	'.': true, '!': true, '?': true, ':': true, ';': true, '…': true,
	'。': true, '！': true, '？': true, '：': true, '；': true,
}

// checkPunctuation flags sentence-final punctuation present on one side only.
func checkPunctuation(source, target string) (types.Issue, bool) {
	srcEnds := endsWithSentenceFinal(source)
	tgtEnds := endsWithSentenceFinal(target)
	switch {
	case srcEnds && !tgtEnds:
		return types.Issue{
			Type:     types.IssuePunctuation,
			Severity: types.SeverityWarning,
			Message:  "source ends with sentence punctuation but the target does not",
		}, true
	case tgtEnds && !srcEnds:
		return types.Issue{
			Type:     types.IssuePunctuation,
			Severity: types.SeverityWarning,
			Message:  "target ends with sentence punctuation but the source does not",
		}, true
	}
	return types.Issue{}, false
}

func endsWithSentenceFinal(s string) bool {
	trimmed := strings.TrimRightFunc(s, unicode.IsSpace)
	r, _ := utf8.DecodeLastRuneInString(trimmed)
	return trimmed != "" && sentenceFinal[r]
}

// checkLengthRatio flags targets whose rune length is implausible relative to
// the source.
func checkLengthRatio(source, target string) (types.Issue, bool) {
	srcLen := utf8.RuneCountInString(source)
	if srcLen == 0 {
		return types.Issue{}, false
	}
	ratio := float64(utf8.RuneCountInString(target)) / float64(srcLen)
	switch {
	case ratio < minLengthRatio:
		return types.Issue{
			Type:     types.IssueLengthRatio,
			Severity: types.SeverityWarning,
			Message:  fmt.Sprintf("target is suspiciously short: %.2fx the source length", ratio),
		}, true
	case ratio > maxLengthRatio:
		return types.Issue{
			Type:     types.IssueLengthRatio,
			Severity: types.SeverityWarning,
			Message:  fmt.Sprintf("target is suspiciously long: %.2fx the source length", ratio),
		}, true
	}
	return types.Issue{}, false
}
