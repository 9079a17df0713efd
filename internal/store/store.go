// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store is the SQLite backing for the engine: translation keys and
// values, persisted quality scores, glossary terms, per-project quality
// configuration, and the pending-evaluation queue.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/quality-engine/pkg/types"
)

// Store manages the engine's SQLite database.
type Store struct {
	db *sql.DB
	sq sq.StatementBuilderType
}

// Open opens or creates the database at cfg.DBPath and bootstraps the
// schema if it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("store: database path not configured")
	}
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, sq: sq.StatementBuilder.PlaceholderFormat(sq.Question)}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS translation_keys (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			branch TEXT NOT NULL DEFAULT 'main',
			UNIQUE(project_id, name, branch)
		)`,
		`CREATE TABLE IF NOT EXISTS translations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			key_id INTEGER NOT NULL REFERENCES translation_keys(id),
			language TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			UNIQUE(key_id, language)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_translations_key_id ON translations(key_id)`,
		`CREATE TABLE IF NOT EXISTS quality_scores (
			translation_id INTEGER PRIMARY KEY REFERENCES translations(id),
			score INTEGER NOT NULL,
			accuracy INTEGER,
			fluency INTEGER,
			terminology INTEGER,
			format INTEGER,
			issues TEXT NOT NULL,
			eval_type TEXT NOT NULL,
			content_hash TEXT NOT NULL,
			provider TEXT NOT NULL DEFAULT '',
			model TEXT NOT NULL DEFAULT '',
			input_tokens INTEGER NOT NULL DEFAULT 0,
			output_tokens INTEGER NOT NULL DEFAULT 0,
			cache_read_tokens INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS glossary_terms (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id INTEGER NOT NULL,
			source_term TEXT NOT NULL,
			target_term TEXT NOT NULL,
			target_locale TEXT NOT NULL,
			UNIQUE(project_id, source_term, target_locale)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_glossary_project_locale
			ON glossary_terms(project_id, target_locale)`,
		`CREATE TABLE IF NOT EXISTS project_quality_config (
			project_id INTEGER PRIMARY KEY,
			ai_enabled INTEGER NOT NULL DEFAULT 1,
			ai_provider TEXT NOT NULL DEFAULT '',
			ai_model TEXT NOT NULL DEFAULT '',
			score_after_ai_translation INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS pending_evaluations (
			translation_id INTEGER PRIMARY KEY,
			enqueued_at TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}
