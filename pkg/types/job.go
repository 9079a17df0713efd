// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Progress is a cumulative progress event emitted after each batch wave.
// Processed is monotonically increasing; completion order within a wave is
// unspecified.
type Progress struct {
	Processed int `json:"processed" yaml:"processed"`
	Total     int `json:"total" yaml:"total"`
}

// ItemFailure records one translation or key that could not be evaluated.
type ItemFailure struct {
	// TranslationID identifies the failed item.
	TranslationID int64 `json:"translation_id" yaml:"translation_id"`

	// Reason is the failure description.
	Reason string `json:"reason" yaml:"reason"`
}

// JobSummary is the aggregate result of a batch evaluation. A job always
// completes and returns a summary; individual failures appear only here.
type JobSummary struct {
	// JobID identifies the batch run.
	JobID string `json:"job_id" yaml:"job_id"`

	// Evaluated counts translations with a persisted score record.
	Evaluated int `json:"evaluated" yaml:"evaluated"`

	// Failed counts translations that could not be evaluated.
	Failed int `json:"failed" yaml:"failed"`

	// Failures lists each failed item with its reason.
	Failures []ItemFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// HasFailures reports whether any items failed.
func (s JobSummary) HasFailures() bool {
	return s.Failed > 0
}

// Total returns the number of translations processed.
func (s JobSummary) Total() int {
	return s.Evaluated + s.Failed
}
