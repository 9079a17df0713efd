// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/pdiddy/quality-engine/pkg/types"
)

// GetScore returns the stored score record for a translation, or nil when
// none exists.
func (s *Store) GetScore(ctx context.Context, translationID int64) (*types.QualityScoreRecord, error) {
	query, args, err := s.sq.
		Select("translation_id", "score", "accuracy", "fluency", "terminology", "format",
			"issues", "eval_type", "content_hash", "provider", "model",
			"input_tokens", "output_tokens", "cache_read_tokens", "created_at").
		From("quality_scores").
		Where(sq.Eq{"translation_id": translationID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building score query: %w", err)
	}

	var rec types.QualityScoreRecord
	var acc, flu, term, format sql.NullInt64
	var issuesJSON, evalType, created string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(
		&rec.TranslationID, &rec.Score, &acc, &flu, &term, &format,
		&issuesJSON, &evalType, &rec.ContentHash, &rec.Provider, &rec.Model,
		&rec.Tokens.Input, &rec.Tokens.Output, &rec.Tokens.CacheRead, &created,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading score for translation %d: %w", translationID, err)
	}

	rec.Type = types.EvaluationType(evalType)
	if acc.Valid {
		rec.Dimensions = &types.DimensionScores{
			Accuracy:    int(acc.Int64),
			Fluency:     int(flu.Int64),
			Terminology: int(term.Int64),
			Format:      int(format.Int64),
		}
	}
	if issuesJSON != "" {
		if err := json.Unmarshal([]byte(issuesJSON), &rec.Issues); err != nil {
			return nil, fmt.Errorf("parsing issues for translation %d: %w", translationID, err)
		}
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return &rec, nil
}

// SaveScore replaces the translation's score row with the complete record.
// A partial update would let old dimensions outlive a heuristic re-check,
// so every column is written on conflict.
func (s *Store) SaveScore(ctx context.Context, rec *types.QualityScoreRecord) error {
	issuesJSON, err := json.Marshal(rec.Issues)
	if err != nil {
		return fmt.Errorf("marshaling issues: %w", err)
	}

	var acc, flu, term, format interface{}
	if d := rec.Dimensions; d != nil {
		acc, flu, term, format = d.Accuracy, d.Fluency, d.Terminology, d.Format
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO quality_scores (
			translation_id, score, accuracy, fluency, terminology, format,
			issues, eval_type, content_hash, provider, model,
			input_tokens, output_tokens, cache_read_tokens, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(translation_id) DO UPDATE SET
			score=excluded.score, accuracy=excluded.accuracy, fluency=excluded.fluency,
			terminology=excluded.terminology, format=excluded.format,
			issues=excluded.issues, eval_type=excluded.eval_type,
			content_hash=excluded.content_hash, provider=excluded.provider,
			model=excluded.model, input_tokens=excluded.input_tokens,
			output_tokens=excluded.output_tokens, cache_read_tokens=excluded.cache_read_tokens,
			created_at=excluded.created_at`,
		rec.TranslationID, rec.Score, acc, flu, term, format,
		string(issuesJSON), string(rec.Type), rec.ContentHash, rec.Provider, rec.Model,
		rec.Tokens.Input, rec.Tokens.Output, rec.Tokens.CacheRead,
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("saving score for translation %d: %w", rec.TranslationID, err)
	}
	return nil
}
