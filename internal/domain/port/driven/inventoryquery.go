package driven

import (
	"context"

	"github.com/ericfisherdev/kitchenwatch/internal/domain/model"
)

// InventoryQuery defines the driven port for reading the ingredient inventory.
type InventoryQuery interface {
	// AllItems returns the full inventory snapshot in backend order.
	AllItems(ctx context.Context) ([]model.InventoryItem, error)
}
