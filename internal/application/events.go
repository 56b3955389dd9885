package application

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/kitchenwatch/internal/domain/model"
	"github.com/ericfisherdev/kitchenwatch/internal/domain/port/driven"
)

// publishEvents hands events to every sink. Sink failures are logged and
// never propagate to the monitor.
func publishEvents(ctx context.Context, sinks []driven.AlertEventSink, events []model.AlertEvent, logger *slog.Logger) {
	if len(events) == 0 {
		return
	}
	for _, sink := range sinks {
		if err := sink.Record(ctx, events); err != nil {
			logger.Error("record alert events failed", "events", len(events), "error", err)
		}
	}
}

func newDelayEvent(action model.AlertAction, alert model.DelayAlert, at time.Time) model.AlertEvent {
	return model.AlertEvent{
		ID:           uuid.NewString(),
		Family:       model.AlertFamilyDelay,
		Action:       action,
		Subject:      strconv.Itoa(alert.OrderID),
		Title:        alert.Title,
		DelayMinutes: alert.DelayMinutes,
		At:           at,
	}
}

func newStockEvent(action model.AlertAction, name string, at time.Time) model.AlertEvent {
	return model.AlertEvent{
		ID:      uuid.NewString(),
		Family:  model.AlertFamilyStock,
		Action:  action,
		Subject: name,
		Title:   name,
		At:      at,
	}
}
