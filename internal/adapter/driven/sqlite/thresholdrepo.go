package sqlite

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ericfisherdev/kitchenwatch/internal/domain/model"
	"github.com/ericfisherdev/kitchenwatch/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ThresholdStore = (*ThresholdRepo)(nil)

const (
	keyDelayMinutes     = "delay_minutes"
	keyLowStockQuantity = "low_stock_quantity"
)

// ThresholdRepo is the SQLite implementation of the ThresholdStore port interface.
type ThresholdRepo struct {
	db *DB
}

// NewThresholdRepo creates a new ThresholdRepo backed by the given DB.
func NewThresholdRepo(db *DB) *ThresholdRepo {
	return &ThresholdRepo{db: db}
}

// Load returns the persisted thresholds. A missing or malformed key falls back
// to its default; when any key was missing the completed set is written back.
func (r *ThresholdRepo) Load(ctx context.Context) (model.Thresholds, error) {
	const query = `SELECT key, value FROM settings WHERE key IN (?, ?)`

	rows, err := r.db.Reader.QueryContext(ctx, query, keyDelayMinutes, keyLowStockQuantity)
	if err != nil {
		return model.DefaultThresholds(), fmt.Errorf("query settings: %w", err)
	}
	defer rows.Close()

	thresholds := model.DefaultThresholds()
	found := 0
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return model.DefaultThresholds(), fmt.Errorf("scan settings row: %w", err)
		}
		v, err := strconv.Atoi(value)
		if err != nil {
			continue
		}
		found++
		switch key {
		case keyDelayMinutes:
			thresholds.DelayMinutes = v
		case keyLowStockQuantity:
			thresholds.LowStockQuantity = v
		}
	}
	if err := rows.Err(); err != nil {
		return model.DefaultThresholds(), fmt.Errorf("iterate settings: %w", err)
	}

	if found < 2 {
		if err := r.Save(ctx, thresholds); err != nil {
			return thresholds, err
		}
	}
	return thresholds, nil
}

// Save persists both thresholds in one transaction.
func (r *ThresholdRepo) Save(ctx context.Context, thresholds model.Thresholds) error {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const upsert = `INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`
	rows := []struct{ key, value string }{
		{keyDelayMinutes, strconv.Itoa(thresholds.DelayMinutes)},
		{keyLowStockQuantity, strconv.Itoa(thresholds.LowStockQuantity)},
	}
	for _, row := range rows {
		if _, err := tx.ExecContext(ctx, upsert, row.key, row.value); err != nil {
			return fmt.Errorf("upsert settings %q: %w", row.key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit settings: %w", err)
	}
	return nil
}
