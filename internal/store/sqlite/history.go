package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/k2wGG/Check-bot/internal/model"
)

func (s *Store) RecordCheckin(ctx context.Context, rec model.CheckinRecord) (model.CheckinRecord, error) {
	if rec.Status == "" {
		return model.CheckinRecord{}, errors.New("status is required")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.At.IsZero() {
		rec.At = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO checkins (id, email, subject, balance, award, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Email, rec.Subject, rec.Balance, rec.Award, rec.Status, rec.At.UnixMilli())
	if err != nil {
		return model.CheckinRecord{}, err
	}
	return rec, nil
}

func (s *Store) ListCheckins(ctx context.Context, limit int) ([]model.CheckinRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, subject, balance, award, status, created_at
		FROM checkins ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CheckinRecord
	for rows.Next() {
		var rec model.CheckinRecord
		var createdAt int64
		if err := rows.Scan(&rec.ID, &rec.Email, &rec.Subject, &rec.Balance, &rec.Award, &rec.Status, &createdAt); err != nil {
			return nil, err
		}
		rec.At = time.UnixMilli(createdAt)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// LastCheckin returns the newest successful check-in row for a subject.
func (s *Store) LastCheckin(ctx context.Context, subject string) (model.CheckinRecord, bool, error) {
	var rec model.CheckinRecord
	var createdAt int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, subject, balance, award, status, created_at
		FROM checkins WHERE subject = ? AND status = ?
		ORDER BY created_at DESC LIMIT 1
	`, subject, model.StatusCheckedIn).Scan(&rec.ID, &rec.Email, &rec.Subject, &rec.Balance, &rec.Award, &rec.Status, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.CheckinRecord{}, false, nil
	}
	if err != nil {
		return model.CheckinRecord{}, false, err
	}
	rec.At = time.UnixMilli(createdAt)
	return rec, true, nil
}
