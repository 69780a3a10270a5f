package store

import (
	"context"
	"fmt"
)

// NotificationRecord is the persisted summary of one notification.
type NotificationRecord struct {
	Seq            int64  `json:"seq"`
	RuleID         string `json:"rule_id"`
	ArchitectureID string `json:"architecture_id"`
	TaskID         string `json:"task_id"`
	TopImpactID    string `json:"top_impact_id"`
	Fingerprint    string `json:"fingerprint"`
}

// RecordNotification appends a notification record and returns its seq.
// The top-level impact must already be in the ledger.
func (s *Store) RecordNotification(ctx context.Context, rec NotificationRecord) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (rule_id, architecture_id, task_id, top_impact_id, fingerprint, seq)
		VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM notifications))
	`,
		rec.RuleID,
		rec.ArchitectureID,
		rec.TaskID,
		rec.TopImpactID,
		rec.Fingerprint,
	)
	if err != nil {
		return 0, fmt.Errorf("write notification: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("write notification: %w", err)
	}
	var seq int64
	if err := s.db.QueryRowContext(ctx, `SELECT seq FROM notifications WHERE id = ?`, id).Scan(&seq); err != nil {
		return 0, fmt.Errorf("write notification: %w", err)
	}
	return seq, nil
}

// ListNotifications returns notification records ordered by seq. An empty
// ruleID lists all of them.
// Returns an empty slice (not nil) if none match.
func (s *Store) ListNotifications(ctx context.Context, ruleID string) ([]NotificationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, rule_id, architecture_id, task_id, top_impact_id, fingerprint
		FROM notifications
		WHERE ? = '' OR rule_id = ?
		ORDER BY seq ASC
	`, ruleID, ruleID)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	records := []NotificationRecord{}
	for rows.Next() {
		var rec NotificationRecord
		if err := rows.Scan(&rec.Seq, &rec.RuleID, &rec.ArchitectureID, &rec.TaskID, &rec.TopImpactID, &rec.Fingerprint); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return records, nil
}
