// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/quality-engine/pkg/types"
)

// translationFile is the YAML seed format: one project, its keys, and each
// key's per-language values.
type translationFile struct {
	Project int64           `yaml:"project"`
	Keys    []keyFileRecord `yaml:"keys"`
}

type keyFileRecord struct {
	Name         string            `yaml:"name"`
	Branch       string            `yaml:"branch"`
	Translations map[string]string `yaml:"translations"`
}

// ImportSummary holds counts from a translation import run.
type ImportSummary struct {
	Keys   int
	Values int
	Failed int
}

// ImportTranslations reads a translation YAML file and upserts its keys and
// values. A failing key is reported and skipped; the rest still import.
func (s *Store) ImportTranslations(ctx context.Context, path string, w io.Writer) (ImportSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("reading translation file: %w", err)
	}
	var file translationFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return ImportSummary{}, fmt.Errorf("parsing translation file: %w", err)
	}
	if file.Project <= 0 {
		return ImportSummary{}, fmt.Errorf("translation file missing project identifier")
	}

	var summary ImportSummary
	for _, rec := range file.Keys {
		if rec.Name == "" {
			fmt.Fprintf(w, "failed  key with no name\n")
			summary.Failed++
			continue
		}

		keyID, err := s.UpsertKey(ctx, types.TranslationKey{
			ProjectID: file.Project,
			Name:      rec.Name,
			Branch:    rec.Branch,
		})
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", rec.Name, err)
			summary.Failed++
			continue
		}

		// Stable language order keeps import output deterministic.
		languages := make([]string, 0, len(rec.Translations))
		for lang := range rec.Translations {
			languages = append(languages, lang)
		}
		sort.Strings(languages)

		imported := 0
		for _, lang := range languages {
			if _, err := s.UpsertTranslation(ctx, keyID, lang, rec.Translations[lang]); err != nil {
				fmt.Fprintf(w, "failed  %s/%s: %v\n", rec.Name, lang, err)
				summary.Failed++
				continue
			}
			imported++
		}
		summary.Keys++
		summary.Values += imported
		fmt.Fprintf(w, "imported %s (%d values)\n", rec.Name, imported)
	}

	fmt.Fprintf(w, "\nkeys: %d, values: %d, failed: %d\n", summary.Keys, summary.Values, summary.Failed)
	return summary, nil
}
