package application

import (
	"slices"
	"sync"
	"time"

	"github.com/ericfisherdev/kitchenwatch/internal/domain/model"
)

// AlertBoard is the shared alert state container. The stock monitor writes the
// stock bundle, the delay monitor writes the delay bundle, and UI actions flip
// the expanded toggles. All reads go through Snapshot or the copy accessors so
// callers never observe a half-written bundle.
type AlertBoard struct {
	mu            sync.RWMutex
	stock         model.StockAlertState
	delayAlerts   []model.DelayAlert
	expandedStock bool
	expandedDelay bool
}

// NewAlertBoard creates an empty board.
func NewAlertBoard() *AlertBoard {
	return &AlertBoard{
		stock:       model.StockAlertState{LowItemNames: []string{}},
		delayAlerts: []model.DelayAlert{},
	}
}

// SetStock replaces the stock bundle. When nothing is low any more the stock
// detail panel is collapsed.
func (b *AlertBoard) SetStock(state model.StockAlertState) {
	names := slices.Clone(state.LowItemNames)
	if names == nil {
		names = []string{}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.stock = model.StockAlertState{IsLow: state.IsLow, LowItemNames: names}
	if !state.IsLow {
		b.expandedStock = false
	}
}

// Stock returns a copy of the stock bundle.
func (b *AlertBoard) Stock() model.StockAlertState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return model.StockAlertState{IsLow: b.stock.IsLow, LowItemNames: slices.Clone(b.stock.LowItemNames)}
}

// SetDelayAlerts replaces the delay alert set.
func (b *AlertBoard) SetDelayAlerts(alerts []model.DelayAlert) {
	cp := slices.Clone(alerts)
	if cp == nil {
		cp = []model.DelayAlert{}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.delayAlerts = cp
}

// DelayAlerts returns a copy of the delay alert set in admission order.
func (b *AlertBoard) DelayAlerts() []model.DelayAlert {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.delayAlerts)
}

// ToggleStockDetail flips the stock expanded toggle and returns the new value.
func (b *AlertBoard) ToggleStockDetail() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.expandedStock = !b.expandedStock
	return b.expandedStock
}

// ToggleDelayDetail flips the delay expanded toggle and returns the new value.
func (b *AlertBoard) ToggleDelayDetail() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.expandedDelay = !b.expandedDelay
	return b.expandedDelay
}

// Snapshot returns a consistent copy of every bundle with visibility derived
// from it.
func (b *AlertBoard) Snapshot(at time.Time) model.AlertSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	stock := model.StockAlertState{IsLow: b.stock.IsLow, LowItemNames: slices.Clone(b.stock.LowItemNames)}
	delay := model.DelayAlertState{
		HasDelayedOrders: len(b.delayAlerts) > 0,
		Alerts:           slices.Clone(b.delayAlerts),
	}

	return model.AlertSnapshot{
		Stock:      stock,
		Delay:      delay,
		Visibility: ComputeVisibility(stock, delay, b.expandedStock, b.expandedDelay),
		TakenAt:    at,
	}
}
