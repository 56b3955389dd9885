package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ericfisherdev/kitchenwatch/internal/domain/model"
	"github.com/ericfisherdev/kitchenwatch/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.InventoryQuery = (*InventoryRepo)(nil)

// InventoryRepo reads ingredient stock from the inventario table.
type InventoryRepo struct {
	pool *pgxpool.Pool
}

// NewInventoryRepo creates a new InventoryRepo backed by the given pool.
func NewInventoryRepo(pool *pgxpool.Pool) *InventoryRepo {
	return &InventoryRepo{pool: pool}
}

type inventoryRow struct {
	Name      string
	Available float64
}

// AllItems returns every inventory row in id order.
func (r *InventoryRepo) AllItems(ctx context.Context) ([]model.InventoryItem, error) {
	const query = `SELECT nombre, cantidad_disponible::float8 FROM inventario ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}

	scanned, err := pgx.CollectRows(rows, pgx.RowToStructByPos[inventoryRow])
	if err != nil {
		return nil, fmt.Errorf("collect inventory: %w", err)
	}

	items := make([]model.InventoryItem, 0, len(scanned))
	for _, row := range scanned {
		items = append(items, model.InventoryItem{Name: row.Name, AvailableQuantity: row.Available})
	}
	return items, nil
}
