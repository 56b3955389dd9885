package driven

import (
	"context"

	"github.com/ericfisherdev/kitchenwatch/internal/domain/model"
)

// ViewNotifier is told whenever alert data may have changed so dependent views
// can redraw.
type ViewNotifier interface {
	NotifyRefresh(ctx context.Context, snapshot model.AlertSnapshot) error
}
