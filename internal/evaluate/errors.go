// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evaluate

import "errors"

// Error taxonomy for the evaluation engine. Callers branch with errors.Is.
//
// ErrProvider and ErrMalformedResponse are recovered locally by falling back
// to heuristic-only scoring; they never abort an item. ErrNotFound and
// ErrAINotConfigured are terminal for a single item but never abort a batch.
// Store write failures carry none of these sentinels and propagate as-is: a
// score that cannot be persisted must not be reported as evaluated.
var (
	// ErrMalformedResponse marks an AI response that failed parsing or
	// validation after all retries were exhausted.
	ErrMalformedResponse = errors.New("malformed model response")

	// ErrProvider marks a network, auth, or quota failure calling the AI
	// provider, including per-call timeouts.
	ErrProvider = errors.New("provider call failed")

	// ErrNotFound marks a missing translation or source text.
	ErrNotFound = errors.New("not found")

	// ErrAINotConfigured marks an AI evaluation request against a project
	// with no active AI configuration.
	ErrAINotConfigured = errors.New("ai evaluation not configured")
)
