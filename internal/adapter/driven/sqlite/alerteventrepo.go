package sqlite

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/kitchenwatch/internal/domain/model"
	"github.com/ericfisherdev/kitchenwatch/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.AlertEventStore = (*AlertEventRepo)(nil)

// AlertEventRepo stores the alert raise/clear history.
type AlertEventRepo struct {
	db *DB
}

// NewAlertEventRepo creates a new AlertEventRepo backed by the given DB.
func NewAlertEventRepo(db *DB) *AlertEventRepo {
	return &AlertEventRepo{db: db}
}

// Record inserts events in a single transaction. Re-recording an event ID is a no-op.
func (r *AlertEventRepo) Record(ctx context.Context, events []model.AlertEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const query = `
		INSERT OR IGNORE INTO alert_events (id, family, action, subject, title, delay_minutes, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare alert event insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		_, err := stmt.ExecContext(ctx,
			e.ID, string(e.Family), string(e.Action), e.Subject, e.Title, e.DelayMinutes, formatTime(e.At),
		)
		if err != nil {
			return fmt.Errorf("insert alert event %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit alert events: %w", err)
	}
	return nil
}

// ListRecent returns up to limit events, newest first.
func (r *AlertEventRepo) ListRecent(ctx context.Context, limit int) ([]model.AlertEvent, error) {
	const query = `
		SELECT id, family, action, subject, title, delay_minutes, occurred_at
		FROM alert_events
		ORDER BY occurred_at DESC, rowid DESC
		LIMIT ?
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list alert events: %w", err)
	}
	defer rows.Close()

	events := make([]model.AlertEvent, 0)
	for rows.Next() {
		var (
			e              model.AlertEvent
			family, action string
			occurredAt     string
		)
		if err := rows.Scan(&e.ID, &family, &action, &e.Subject, &e.Title, &e.DelayMinutes, &occurredAt); err != nil {
			return nil, fmt.Errorf("scan alert event: %w", err)
		}
		e.Family = model.AlertFamily(family)
		e.Action = model.AlertAction(action)
		e.At, err = parseTime(occurredAt)
		if err != nil {
			return nil, fmt.Errorf("parse occurred_at: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alert events: %w", err)
	}

	return events, nil
}
