// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/pdiddy/quality-engine/internal/evaluate"
	"github.com/pdiddy/quality-engine/pkg/types"
)

// GetTranslation returns a translation and its owning key.
func (s *Store) GetTranslation(ctx context.Context, id int64) (*types.Translation, *types.TranslationKey, error) {
	query, args, err := s.sq.
		Select("t.id", "t.key_id", "t.language", "t.value", "t.updated_at",
			"k.id", "k.project_id", "k.name", "k.branch").
		From("translations t").
		Join("translation_keys k ON k.id = t.key_id").
		Where(sq.Eq{"t.id": id}).
		ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("building translation query: %w", err)
	}

	var tr types.Translation
	var key types.TranslationKey
	var updated string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(
		&tr.ID, &tr.KeyID, &tr.Language, &tr.Value, &updated,
		&key.ID, &key.ProjectID, &key.Name, &key.Branch,
	)
	if err == sql.ErrNoRows {
		return nil, nil, fmt.Errorf("%w: translation %d", evaluate.ErrNotFound, id)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("loading translation %d: %w", id, err)
	}
	tr.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return &tr, &key, nil
}

// GetSourceText returns the key's source-language value. A key without one
// is not an error; the second return reports presence.
func (s *Store) GetSourceText(ctx context.Context, keyID int64, sourceLocale string) (string, bool, error) {
	query, args, err := s.sq.
		Select("value").
		From("translations").
		Where(sq.Eq{"key_id": keyID, "language": sourceLocale}).
		ToSql()
	if err != nil {
		return "", false, fmt.Errorf("building source query: %w", err)
	}

	var value string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("loading source text for key %d: %w", keyID, err)
	}
	return value, true, nil
}

// RelatedTranslations returns sibling keys of the same project that carry
// both a source and a target value, as context for the model.
func (s *Store) RelatedTranslations(ctx context.Context, keyID int64, targetLocale, sourceLocale string, limit int) ([]types.RelatedTranslation, error) {
	query, args, err := s.sq.
		Select("k.name", "src.value", "tgt.value").
		From("translation_keys k").
		Join("translations src ON src.key_id = k.id AND src.language = ?", sourceLocale).
		Join("translations tgt ON tgt.key_id = k.id AND tgt.language = ?", targetLocale).
		Where("k.project_id = (SELECT project_id FROM translation_keys WHERE id = ?)", keyID).
		Where(sq.NotEq{"k.id": keyID}).
		OrderBy("k.name").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building related query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("loading related translations: %w", err)
	}
	defer rows.Close()

	var out []types.RelatedTranslation
	for rows.Next() {
		var rel types.RelatedTranslation
		if err := rows.Scan(&rel.KeyName, &rel.SourceText, &rel.TargetText); err != nil {
			return nil, fmt.Errorf("scanning related translation: %w", err)
		}
		out = append(out, rel)
	}
	return out, rows.Err()
}

// UpsertKey creates or finds a key by (project, name, branch) and returns
// its identifier.
func (s *Store) UpsertKey(ctx context.Context, key types.TranslationKey) (int64, error) {
	branch := key.Branch
	if branch == "" {
		branch = "main"
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO translation_keys (project_id, name, branch) VALUES (?, ?, ?)
		 ON CONFLICT(project_id, name, branch) DO NOTHING`,
		key.ProjectID, key.Name, branch,
	)
	if err != nil {
		return 0, fmt.Errorf("upserting key %s: %w", key.Name, err)
	}

	var id int64
	query, args, _ := s.sq.Select("id").From("translation_keys").
		Where(sq.Eq{"project_id": key.ProjectID, "name": key.Name, "branch": branch}).ToSql()
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("resolving key %s: %w", key.Name, err)
	}
	return id, nil
}

// UpsertTranslation writes a translation value for (key, language) and
// returns the row's identifier. Replacing a value does not touch its score
// row; the stale content hash there is what invalidates the cache.
func (s *Store) UpsertTranslation(ctx context.Context, keyID int64, language, value string) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO translations (key_id, language, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key_id, language) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		keyID, language, value, now,
	)
	if err != nil {
		return 0, fmt.Errorf("upserting translation %s: %w", language, err)
	}

	var id int64
	query, args, _ := s.sq.Select("id").From("translations").
		Where(sq.Eq{"key_id": keyID, "language": language}).ToSql()
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("resolving translation %s: %w", language, err)
	}
	return id, nil
}

// TranslationIDs lists all non-source translation identifiers, optionally
// filtered by project. Used by batch runs addressing a whole project.
func (s *Store) TranslationIDs(ctx context.Context, projectID int64, sourceLocale string) ([]int64, error) {
	q := s.sq.
		Select("t.id").
		From("translations t").
		Join("translation_keys k ON k.id = t.key_id").
		Where(sq.NotEq{"t.language": sourceLocale}).
		OrderBy("t.id")
	if projectID > 0 {
		q = q.Where(sq.Eq{"k.project_id": projectID})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building translation list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing translations: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning translation id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
