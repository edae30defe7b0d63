package sqlite

import (
	"context"
	"fmt"
)

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS checkins (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL DEFAULT '',
			subject TEXT NOT NULL DEFAULT '',
			balance REAL NOT NULL DEFAULT 0,
			award REAL NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_checkins_subject ON checkins(subject, created_at);`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
