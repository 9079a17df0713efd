// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// EnqueueEvaluation marks a translation for a later batch run. Enqueueing
// twice is a no-op; the queue holds at most one entry per translation.
func (s *Store) EnqueueEvaluation(ctx context.Context, translationID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pending_evaluations (translation_id, enqueued_at) VALUES (?, ?)
		 ON CONFLICT(translation_id) DO NOTHING`,
		translationID, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("enqueueing translation %d: %w", translationID, err)
	}
	return nil
}

// PendingEvaluations lists queued translation identifiers, oldest first.
// Entries are not removed here: a run that fails leaves its items queued
// for retry, and the caller acknowledges the successful ones.
func (s *Store) PendingEvaluations(ctx context.Context, limit int) ([]int64, error) {
	q := s.sq.Select("translation_id").From("pending_evaluations").OrderBy("enqueued_at", "translation_id")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building queue query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing pending evaluations: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning pending evaluation: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AcknowledgeEvaluations removes translations from the queue after their
// scores persisted.
func (s *Store) AcknowledgeEvaluations(ctx context.Context, translationIDs []int64) error {
	if len(translationIDs) == 0 {
		return nil
	}
	query, args, err := s.sq.Delete("pending_evaluations").
		Where(sq.Eq{"translation_id": translationIDs}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building queue delete: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("acknowledging evaluations: %w", err)
	}
	return nil
}
