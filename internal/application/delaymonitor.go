package application

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ericfisherdev/kitchenwatch/internal/domain/model"
	"github.com/ericfisherdev/kitchenwatch/internal/domain/port/driven"
)

// SkippedOrder records an active order whose timestamp could not be parsed.
type SkippedOrder struct {
	OrderID int
	Err     error
}

// ReconcileResult is the outcome of one delay reconciliation pass.
type ReconcileResult struct {
	Alerts  []model.DelayAlert // new alert set, admission order
	Raised  []model.DelayAlert // admitted this pass
	Cleared []model.DelayAlert // retired this pass, with their last known values
	Skipped []SkippedOrder     // active orders with unparseable timestamps
}

// ReconcileDelayAlerts retires and admits delay alerts against the live
// active orders. Both phases use the same now and thresholdMinutes.
//
// Retire: an alert is dropped when its order is no longer active, or when the
// order's age has fallen under the threshold. Otherwise it is kept with its
// delay refreshed.
// Admit: an active order with no alert whose age is at or over the threshold
// gets a new alert appended.
//
// An active order whose timestamp does not parse is neither retired nor
// admitted; an existing alert for it is carried over unchanged.
func ReconcileDelayAlerts(
	prev []model.DelayAlert,
	orders []model.Order,
	now time.Time,
	thresholdMinutes int,
	loc *time.Location,
) ReconcileResult {
	threshold := float64(thresholdMinutes)

	active := make(map[int]model.Order, len(orders))
	activeOrder := make([]int, 0, len(orders))
	for _, o := range orders {
		if !o.Status.IsActive() {
			continue
		}
		if _, dup := active[o.ID]; dup {
			continue
		}
		active[o.ID] = o
		activeOrder = append(activeOrder, o.ID)
	}

	type parsed struct {
		ts  time.Time
		err error
	}
	stamps := make(map[int]parsed, len(active))
	for id, o := range active {
		ts, err := o.ParseCreatedAt(loc)
		stamps[id] = parsed{ts: ts, err: err}
	}

	result := ReconcileResult{Alerts: make([]model.DelayAlert, 0, len(prev))}
	skipped := make(map[int]bool)
	skip := func(id int, err error) {
		if skipped[id] {
			return
		}
		skipped[id] = true
		result.Skipped = append(result.Skipped, SkippedOrder{OrderID: id, Err: err})
	}

	alerted := make(map[int]bool, len(prev))
	for _, alert := range prev {
		if alerted[alert.OrderID] {
			continue
		}
		o, ok := active[alert.OrderID]
		if !ok {
			result.Cleared = append(result.Cleared, alert)
			continue
		}

		stamp := stamps[o.ID]
		if stamp.err != nil {
			skip(o.ID, stamp.err)
			alerted[alert.OrderID] = true
			result.Alerts = append(result.Alerts, alert)
			continue
		}

		age := minutesSince(now, stamp.ts)
		if age < threshold {
			result.Cleared = append(result.Cleared, alert)
			continue
		}

		alerted[alert.OrderID] = true
		result.Alerts = append(result.Alerts, toDelayAlert(o, stamp.ts, age))
	}

	for _, id := range activeOrder {
		if alerted[id] {
			continue
		}
		o := active[id]
		stamp := stamps[id]
		if stamp.err != nil {
			skip(id, stamp.err)
			continue
		}

		age := minutesSince(now, stamp.ts)
		if age < threshold {
			continue
		}

		alert := toDelayAlert(o, stamp.ts, age)
		alerted[id] = true
		result.Alerts = append(result.Alerts, alert)
		result.Raised = append(result.Raised, alert)
	}

	return result
}

func toDelayAlert(o model.Order, ts time.Time, age float64) model.DelayAlert {
	return model.DelayAlert{
		OrderID:        o.ID,
		Title:          o.Title(),
		Status:         o.Status,
		DelayMinutes:   roundMinutes(age),
		OrderTimestamp: ts,
		Notes:          o.Notes,
	}
}

func minutesSince(now, ts time.Time) float64 {
	return now.Sub(ts).Minutes()
}

// roundMinutes rounds to two decimals for display.
func roundMinutes(m float64) float64 {
	return math.Round(m*100) / 100
}

// DelayMonitor keeps the delay alert set reconciled with the live active orders.
type DelayMonitor struct {
	orders     driven.OrderQuery
	thresholds ThresholdSource
	board      *AlertBoard
	sinks      []driven.AlertEventSink
	opts       options
}

// NewDelayMonitor creates a DelayMonitor writing to board.
func NewDelayMonitor(
	orders driven.OrderQuery,
	thresholds ThresholdSource,
	board *AlertBoard,
	sinks []driven.AlertEventSink,
	opts ...Option,
) *DelayMonitor {
	return &DelayMonitor{
		orders:     orders,
		thresholds: thresholds,
		board:      board,
		sinks:      sinks,
		opts:       newOptions(opts),
	}
}

// Run ticks immediately and then every interval until ctx is canceled.
func (m *DelayMonitor) Run(ctx context.Context, interval time.Duration) {
	runEvery(ctx, "delay_monitor", interval, m.opts, m.Tick)
}

// Tick fetches active orders and reconciles the delay alert set. On a fetch
// error the previous set is left as is.
func (m *DelayMonitor) Tick(ctx context.Context) error {
	orders, err := m.orders.ActiveOrders(ctx)
	if err != nil {
		return fmt.Errorf("fetch active orders: %w", err)
	}

	now := m.opts.now()
	threshold := m.thresholds.Current().DelayMinutes

	result := ReconcileDelayAlerts(m.board.DelayAlerts(), orders, now, threshold, m.opts.location)
	m.board.SetDelayAlerts(result.Alerts)

	for _, s := range result.Skipped {
		m.opts.logger.Warn("skipping order with unparseable timestamp", "order_id", s.OrderID, "error", s.Err)
	}
	for _, a := range result.Raised {
		m.opts.logger.Info("delay alert raised", "order_id", a.OrderID, "title", a.Title, "delay_minutes", a.DelayMinutes)
	}
	for _, a := range result.Cleared {
		m.opts.logger.Info("delay alert cleared", "order_id", a.OrderID, "title", a.Title)
	}

	events := make([]model.AlertEvent, 0, len(result.Raised)+len(result.Cleared))
	for _, a := range result.Raised {
		events = append(events, newDelayEvent(model.AlertActionRaised, a, now))
	}
	for _, a := range result.Cleared {
		events = append(events, newDelayEvent(model.AlertActionCleared, a, now))
	}
	publishEvents(ctx, m.sinks, events, m.opts.logger)

	m.opts.logger.Debug("delay check complete",
		"orders", len(orders),
		"alerts", len(result.Alerts),
		"raised", len(result.Raised),
		"cleared", len(result.Cleared),
		"skipped", len(result.Skipped),
		"threshold_minutes", threshold,
	)
	return nil
}
