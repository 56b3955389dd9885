package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/kitchenwatch/internal/application"
	"github.com/ericfisherdev/kitchenwatch/internal/domain/model"
	"github.com/ericfisherdev/kitchenwatch/internal/domain/port/driven"
)

func TestComputeLowStock(t *testing.T) {
	tests := []struct {
		name      string
		items     []model.InventoryItem
		threshold int
		wantLow   bool
		wantNames []string
	}{
		{
			name:      "empty inventory",
			items:     nil,
			threshold: 5,
			wantLow:   false,
			wantNames: []string{},
		},
		{
			name: "quantity at threshold is low",
			items: []model.InventoryItem{
				{Name: "Limón", AvailableQuantity: 5},
				{Name: "Tortilla", AvailableQuantity: 50},
			},
			threshold: 5,
			wantLow:   true,
			wantNames: []string{"Limón"},
		},
		{
			name: "keeps inventory order",
			items: []model.InventoryItem{
				{Name: "Pulpo", AvailableQuantity: 1},
				{Name: "Arroz", AvailableQuantity: 100},
				{Name: "Camarón", AvailableQuantity: 0},
				{Name: "Aguacate", AvailableQuantity: 2.5},
			},
			threshold: 3,
			wantLow:   true,
			wantNames: []string{"Pulpo", "Camarón", "Aguacate"},
		},
		{
			name: "zero threshold only flags empty items",
			items: []model.InventoryItem{
				{Name: "Sal", AvailableQuantity: 0.5},
				{Name: "Hielo", AvailableQuantity: 0},
			},
			threshold: 0,
			wantLow:   true,
			wantNames: []string{"Hielo"},
		},
		{
			name:      "nothing under threshold",
			items:     []model.InventoryItem{{Name: "Arroz", AvailableQuantity: 6}},
			threshold: 5,
			wantLow:   false,
			wantNames: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := application.ComputeLowStock(tt.items, tt.threshold)
			assert.Equal(t, tt.wantLow, got.IsLow)
			assert.Equal(t, tt.wantNames, got.LowItemNames)
		})
	}
}

func newStockMonitor(inv *mockInventory, th application.ThresholdSource, board *application.AlertBoard, sink *recordingSink) *application.StockMonitor {
	return application.NewStockMonitor(inv, th, board, []driven.AlertEventSink{sink})
}

func TestStockMonitor_LowThenRestocked(t *testing.T) {
	ctx := context.Background()
	inv := &mockInventory{}
	inv.set(model.InventoryItem{Name: "Camarón", AvailableQuantity: 3})
	board := application.NewAlertBoard()
	sink := &recordingSink{}
	mon := newStockMonitor(inv, thresholds(20, 5), board, sink)

	require.NoError(t, mon.Tick(ctx))
	stock := board.Stock()
	assert.True(t, stock.IsLow)
	assert.Equal(t, []string{"Camarón"}, stock.LowItemNames)

	require.True(t, board.ToggleStockDetail())
	assert.True(t, board.Snapshot(testNow).Visibility.ShowStockDetail)

	inv.set(model.InventoryItem{Name: "Camarón", AvailableQuantity: 6})
	require.NoError(t, mon.Tick(ctx))

	snap := board.Snapshot(testNow)
	assert.False(t, snap.Stock.IsLow)
	assert.Empty(t, snap.Stock.LowItemNames)
	assert.False(t, snap.Visibility.ShowStockBadge)
	assert.False(t, snap.Visibility.ShowStockDetail)

	// The panel starts collapsed the next time stock runs low.
	inv.set(model.InventoryItem{Name: "Camarón", AvailableQuantity: 1})
	require.NoError(t, mon.Tick(ctx))
	snap = board.Snapshot(testNow)
	assert.True(t, snap.Visibility.ShowStockBadge)
	assert.False(t, snap.Visibility.ShowStockDetail)

	events := sink.all()
	require.Len(t, events, 3)
	assert.Equal(t, model.AlertActionRaised, events[0].Action)
	assert.Equal(t, model.AlertActionCleared, events[1].Action)
	assert.Equal(t, model.AlertActionRaised, events[2].Action)
	for _, e := range events {
		assert.Equal(t, model.AlertFamilyStock, e.Family)
		assert.Equal(t, "Camarón", e.Subject)
	}
}

func TestStockMonitor_IdempotentTicks(t *testing.T) {
	ctx := context.Background()
	inv := &mockInventory{}
	inv.set(
		model.InventoryItem{Name: "Pulpo", AvailableQuantity: 1},
		model.InventoryItem{Name: "Arroz", AvailableQuantity: 40},
	)
	board := application.NewAlertBoard()
	sink := &recordingSink{}
	mon := newStockMonitor(inv, thresholds(20, 5), board, sink)

	require.NoError(t, mon.Tick(ctx))
	first := board.Stock()
	require.NoError(t, mon.Tick(ctx))

	assert.Equal(t, first, board.Stock())
	assert.Len(t, sink.all(), 1, "unchanged inventory emits no further events")
}

func TestStockMonitor_ThresholdChangeSeenOnNextTick(t *testing.T) {
	ctx := context.Background()
	inv := &mockInventory{}
	inv.set(model.InventoryItem{Name: "Arroz", AvailableQuantity: 8})
	board := application.NewAlertBoard()
	th := thresholds(20, 5)
	mon := newStockMonitor(inv, th, board, &recordingSink{})

	require.NoError(t, mon.Tick(ctx))
	assert.False(t, board.Stock().IsLow)

	th.set(model.Thresholds{DelayMinutes: 20, LowStockQuantity: 10})
	require.NoError(t, mon.Tick(ctx))
	assert.Equal(t, []string{"Arroz"}, board.Stock().LowItemNames)
}

func TestStockMonitor_FetchErrorKeepsPreviousState(t *testing.T) {
	ctx := context.Background()
	inv := &mockInventory{}
	inv.set(model.InventoryItem{Name: "Pulpo", AvailableQuantity: 1})
	board := application.NewAlertBoard()
	mon := newStockMonitor(inv, thresholds(20, 5), board, &recordingSink{})
	require.NoError(t, mon.Tick(ctx))

	inv.mu.Lock()
	inv.err = errors.New("timeout")
	inv.mu.Unlock()

	err := mon.Tick(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch inventory")
	assert.Equal(t, []string{"Pulpo"}, board.Stock().LowItemNames)
}
