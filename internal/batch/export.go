// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/quality-engine/pkg/types"
)

// exportFile is the YAML shape written by WriteYAML: the job summary
// followed by every score record the job produced.
type exportFile struct {
	JobID     string         `yaml:"job_id"`
	Evaluated int            `yaml:"evaluated"`
	Failed    int            `yaml:"failed"`
	Failures  []exportFail   `yaml:"failures,omitempty"`
	Scores    []exportRecord `yaml:"scores"`
}

type exportFail struct {
	TranslationID int64  `yaml:"translation_id"`
	Reason        string `yaml:"reason"`
}

type exportRecord struct {
	TranslationID int64                  `yaml:"translation_id"`
	Score         int                    `yaml:"score"`
	Passed        bool                   `yaml:"passed"`
	Type          string                 `yaml:"type"`
	Dimensions    *types.DimensionScores `yaml:"dimensions,omitempty"`
	Issues        []types.Issue          `yaml:"issues,omitempty"`
	Provider      string                 `yaml:"provider,omitempty"`
	Model         string                 `yaml:"model,omitempty"`
}

// WriteYAML writes the job result to path.
func (r Result) WriteYAML(path string) error {
	file := exportFile{
		JobID:     r.Summary.JobID,
		Evaluated: r.Summary.Evaluated,
		Failed:    r.Summary.Failed,
	}
	for _, f := range r.Summary.Failures {
		file.Failures = append(file.Failures, exportFail{TranslationID: f.TranslationID, Reason: f.Reason})
	}
	for _, rec := range r.Records {
		file.Scores = append(file.Scores, exportRecord{
			TranslationID: rec.TranslationID,
			Score:         rec.Score,
			Passed:        rec.Passed(),
			Type:          string(rec.Type),
			Dimensions:    rec.Dimensions,
			Issues:        rec.Issues,
			Provider:      rec.Provider,
			Model:         rec.Model,
		})
	}

	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
