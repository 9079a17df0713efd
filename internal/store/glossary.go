// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"io"
	"os"

	sq "github.com/Masterminds/squirrel"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/quality-engine/pkg/types"
)

// Terms returns the project's glossary terms for a target locale.
func (s *Store) Terms(ctx context.Context, projectID int64, targetLocale string) ([]types.GlossaryTerm, error) {
	query, args, err := s.sq.
		Select("source_term", "target_term", "target_locale").
		From("glossary_terms").
		Where(sq.Eq{"project_id": projectID, "target_locale": targetLocale}).
		OrderBy("source_term").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building glossary query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("loading glossary terms: %w", err)
	}
	defer rows.Close()

	var terms []types.GlossaryTerm
	for rows.Next() {
		var t types.GlossaryTerm
		if err := rows.Scan(&t.SourceTerm, &t.TargetTerm, &t.TargetLocale); err != nil {
			return nil, fmt.Errorf("scanning glossary term: %w", err)
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

// glossaryFile is the YAML import format: a flat term list.
type glossaryFile struct {
	Terms []types.GlossaryTerm `yaml:"terms"`
}

// ImportGlossary reads a glossary YAML file and upserts its terms for one
// project. Existing (source term, locale) pairs get the new target term.
func (s *Store) ImportGlossary(ctx context.Context, projectID int64, path string, w io.Writer) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading glossary file: %w", err)
	}
	var file glossaryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("parsing glossary file: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	imported := 0
	for _, t := range file.Terms {
		if t.SourceTerm == "" || t.TargetTerm == "" || t.TargetLocale == "" {
			fmt.Fprintf(w, "skipped incomplete term %+v\n", t)
			continue
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO glossary_terms (project_id, source_term, target_term, target_locale)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT(project_id, source_term, target_locale)
			 DO UPDATE SET target_term=excluded.target_term`,
			projectID, t.SourceTerm, t.TargetTerm, t.TargetLocale,
		)
		if err != nil {
			return 0, fmt.Errorf("upserting term %q: %w", t.SourceTerm, err)
		}
		imported++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing glossary import: %w", err)
	}
	fmt.Fprintf(w, "imported %d glossary terms for project %d\n", imported, projectID)
	return imported, nil
}
