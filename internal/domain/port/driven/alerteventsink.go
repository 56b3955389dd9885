package driven

import (
	"context"

	"github.com/ericfisherdev/kitchenwatch/internal/domain/model"
)

// AlertEventSink receives alert lifecycle transitions.
type AlertEventSink interface {
	Record(ctx context.Context, events []model.AlertEvent) error
}

// AlertEventStore is a sink that can also be queried for history.
type AlertEventStore interface {
	AlertEventSink

	// ListRecent returns up to limit events, newest first.
	ListRecent(ctx context.Context, limit int) ([]model.AlertEvent, error)
}
