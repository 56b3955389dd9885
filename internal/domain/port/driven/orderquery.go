package driven

import (
	"context"

	"github.com/ericfisherdev/kitchenwatch/internal/domain/model"
)

// OrderQuery defines the driven port for reading orders from the POS backend.
type OrderQuery interface {
	// ActiveOrders returns the orders the kitchen still has open. Implementations
	// may include orders in non-active states; callers filter by status.
	ActiveOrders(ctx context.Context) ([]model.Order, error)
}
