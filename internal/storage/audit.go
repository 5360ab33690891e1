package storage

import (
	"context"
	"fmt"
	"time"
)

// AuditEntry records a write that happened to a user's data. Entries are
// appended by the worker as record events arrive off the queue.
type AuditEntry struct {
	ID         int64
	Entity     string
	Action     string
	RecordID   int64
	UserID     int64
	OccurredAt time.Time
}

func (r *SQLiteRepository) AppendAudit(ctx context.Context, e AuditEntry) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (entity, action, record_id, user_id, occurred_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.Entity, e.Action, e.RecordID, e.UserID, formatTime(e.OccurredAt))
	if err != nil {
		return 0, fmt.Errorf("append audit: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("audit id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) ListAudit(ctx context.Context, userID int64, limit int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, entity, action, record_id, user_id, occurred_at
		 FROM audit_log WHERE user_id = ?
		 ORDER BY occurred_at DESC, id DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	defer rows.Close()

	var out []AuditEntry
	for rows.Next() {
		var (
			e      AuditEntry
			rawOcc string
		)
		if err := rows.Scan(&e.ID, &e.Entity, &e.Action, &e.RecordID, &e.UserID, &rawOcc); err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		occ, err := time.Parse(timeLayout, rawOcc)
		if err != nil {
			return nil, fmt.Errorf("parse audit time: %w", err)
		}
		e.OccurredAt = occ
		out = append(out, e)
	}
	return out, rows.Err()
}
