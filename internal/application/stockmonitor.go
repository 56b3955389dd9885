package application

import (
	"context"
	"fmt"
	"time"

	"github.com/ericfisherdev/kitchenwatch/internal/domain/model"
	"github.com/ericfisherdev/kitchenwatch/internal/domain/port/driven"
)

// ComputeLowStock returns the low-stock picture for an inventory snapshot.
// An item is low when its available quantity is at or below threshold. Names
// keep the order the inventory returned them in.
func ComputeLowStock(items []model.InventoryItem, threshold int) model.StockAlertState {
	names := make([]string, 0)
	limit := float64(threshold)
	for _, item := range items {
		if item.AvailableQuantity <= limit {
			names = append(names, item.Name)
		}
	}
	return model.StockAlertState{IsLow: len(names) > 0, LowItemNames: names}
}

// StockMonitor recomputes the low-stock alert from scratch on every tick.
type StockMonitor struct {
	inventory  driven.InventoryQuery
	thresholds ThresholdSource
	board      *AlertBoard
	sinks      []driven.AlertEventSink
	opts       options
}

// NewStockMonitor creates a StockMonitor writing to board.
func NewStockMonitor(
	inventory driven.InventoryQuery,
	thresholds ThresholdSource,
	board *AlertBoard,
	sinks []driven.AlertEventSink,
	opts ...Option,
) *StockMonitor {
	return &StockMonitor{
		inventory:  inventory,
		thresholds: thresholds,
		board:      board,
		sinks:      sinks,
		opts:       newOptions(opts),
	}
}

// Run ticks immediately and then every interval until ctx is canceled.
func (m *StockMonitor) Run(ctx context.Context, interval time.Duration) {
	runEvery(ctx, "stock_monitor", interval, m.opts, m.Tick)
}

// Tick fetches the inventory and replaces the stock bundle. On a fetch error
// the previous bundle is left as is.
func (m *StockMonitor) Tick(ctx context.Context) error {
	items, err := m.inventory.AllItems(ctx)
	if err != nil {
		return fmt.Errorf("fetch inventory: %w", err)
	}

	threshold := m.thresholds.Current().LowStockQuantity
	prev := m.board.Stock()
	next := ComputeLowStock(items, threshold)
	m.board.SetStock(next)

	events := diffStock(prev.LowItemNames, next.LowItemNames, m.opts.now())
	publishEvents(ctx, m.sinks, events, m.opts.logger)

	m.opts.logger.Debug("stock checked",
		"items", len(items),
		"low", len(next.LowItemNames),
		"threshold", threshold,
	)
	return nil
}

// diffStock returns raise events for names that became low and clear events
// for names that stopped being low.
func diffStock(prev, next []string, at time.Time) []model.AlertEvent {
	was := make(map[string]bool, len(prev))
	for _, n := range prev {
		was[n] = true
	}
	is := make(map[string]bool, len(next))
	for _, n := range next {
		is[n] = true
	}

	var events []model.AlertEvent
	for _, n := range next {
		if !was[n] {
			events = append(events, newStockEvent(model.AlertActionRaised, n, at))
			was[n] = true
		}
	}
	for _, n := range prev {
		if !is[n] {
			events = append(events, newStockEvent(model.AlertActionCleared, n, at))
			is[n] = true
		}
	}
	return events
}
