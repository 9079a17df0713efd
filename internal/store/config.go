// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/pdiddy/quality-engine/pkg/types"
)

// QualityConfig returns the project's quality configuration. Projects
// without a row get the default: AI evaluation enabled, base provider
// settings.
func (s *Store) QualityConfig(ctx context.Context, projectID int64) (types.QualityConfig, error) {
	query, args, err := s.sq.
		Select("ai_enabled", "ai_provider", "ai_model", "score_after_ai_translation").
		From("project_quality_config").
		Where(sq.Eq{"project_id": projectID}).
		ToSql()
	if err != nil {
		return types.QualityConfig{}, fmt.Errorf("building config query: %w", err)
	}

	var cfg types.QualityConfig
	err = s.db.QueryRowContext(ctx, query, args...).Scan(
		&cfg.AIEvaluationEnabled, &cfg.AIProvider, &cfg.AIModel, &cfg.ScoreAfterAITranslation,
	)
	if err == sql.ErrNoRows {
		return types.QualityConfig{AIEvaluationEnabled: true}, nil
	}
	if err != nil {
		return types.QualityConfig{}, fmt.Errorf("loading quality config for project %d: %w", projectID, err)
	}
	return cfg, nil
}

// SetQualityConfig writes the project's quality configuration.
func (s *Store) SetQualityConfig(ctx context.Context, projectID int64, cfg types.QualityConfig) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO project_quality_config (project_id, ai_enabled, ai_provider, ai_model, score_after_ai_translation)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(project_id) DO UPDATE SET
			ai_enabled=excluded.ai_enabled, ai_provider=excluded.ai_provider,
			ai_model=excluded.ai_model,
			score_after_ai_translation=excluded.score_after_ai_translation`,
		projectID, cfg.AIEvaluationEnabled, cfg.AIProvider, cfg.AIModel, cfg.ScoreAfterAITranslation,
	)
	if err != nil {
		return fmt.Errorf("saving quality config for project %d: %w", projectID, err)
	}
	return nil
}
