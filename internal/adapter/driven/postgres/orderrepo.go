package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ericfisherdev/kitchenwatch/internal/domain/model"
	"github.com/ericfisherdev/kitchenwatch/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.OrderQuery = (*OrderRepo)(nil)

// OrderRepo reads open orders from the pedidos table.
type OrderRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewOrderRepo creates a new OrderRepo backed by the given pool. A nil logger
// means slog.Default().
func NewOrderRepo(pool *pgxpool.Pool, logger *slog.Logger) *OrderRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderRepo{pool: pool, logger: logger}
}

// orderRow holds the scanned columns of one pedidos row.
type orderRow struct {
	ID          int
	TableNumber int
	AppNumber   *int
	Status      string
	CreatedAt   *time.Time
	Items       []byte
	Notes       *string
}

// ActiveOrders returns the same set the backend's /pedidos/activos serves. A
// row with unreadable items is still returned, without its items.
func (r *OrderRepo) ActiveOrders(ctx context.Context) ([]model.Order, error) {
	const query = `
		SELECT id, mesa_numero, numero_app, estado, fecha_hora, items, notas
		FROM pedidos
		WHERE estado IN ('Pendiente', 'En preparacion', 'Listo')
		ORDER BY fecha_hora DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query active orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var row orderRow
		if err := rows.Scan(&row.ID, &row.TableNumber, &row.AppNumber, &row.Status, &row.CreatedAt, &row.Items, &row.Notes); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o, err := row.toOrder()
		if err != nil {
			r.logger.Warn("order items unreadable", "order_id", row.ID, "error", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	return orders, nil
}

type itemJSON struct {
	Name  string  `json:"nombre"`
	Price float64 `json:"precio"`
}

// toOrder converts a row into the backend's representation, including the
// naive "YYYY-MM-DD HH:MM:SS" timestamp string. A NULL timestamp becomes an
// empty string, which the delay monitor skips. The order is always usable: an
// items decode error is returned alongside it with the items left empty.
func (row orderRow) toOrder() (model.Order, error) {
	var raw []itemJSON
	var itemsErr error
	if len(row.Items) > 0 {
		if err := json.Unmarshal(row.Items, &raw); err != nil {
			raw = nil
			itemsErr = fmt.Errorf("decode items of order %d: %w", row.ID, err)
		}
	}
	items := make([]model.OrderItem, 0, len(raw))
	for _, it := range raw {
		items = append(items, model.OrderItem{Name: it.Name, Price: it.Price})
	}

	var notes string
	if row.Notes != nil {
		notes = *row.Notes
	}

	var createdAt string
	if row.CreatedAt != nil {
		createdAt = row.CreatedAt.Format(model.OrderTimestampLayout)
	}

	return model.Order{
		ID:                 row.ID,
		TableNumber:        row.TableNumber,
		DigitalOrderNumber: row.AppNumber,
		Status:             model.OrderStatus(row.Status),
		CreatedAt:          createdAt,
		Items:              items,
		Notes:              notes,
	}, itemsErr
}
