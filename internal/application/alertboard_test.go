package application_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ericfisherdev/kitchenwatch/internal/application"
	"github.com/ericfisherdev/kitchenwatch/internal/domain/model"
)

func TestAlertBoard_Empty(t *testing.T) {
	snap := application.NewAlertBoard().Snapshot(testNow)

	assert.False(t, snap.Stock.IsLow)
	assert.NotNil(t, snap.Stock.LowItemNames)
	assert.False(t, snap.Delay.HasDelayedOrders)
	assert.Empty(t, snap.Delay.Alerts)
	assert.Equal(t, model.VisibilityState{}, snap.Visibility)
	assert.Equal(t, testNow, snap.TakenAt)
}

func TestAlertBoard_DelayToggleSurvivesEmptySet(t *testing.T) {
	board := application.NewAlertBoard()
	board.SetDelayAlerts([]model.DelayAlert{{OrderID: 1}})
	assert.True(t, board.ToggleDelayDetail())

	board.SetDelayAlerts(nil)
	snap := board.Snapshot(testNow)
	assert.False(t, snap.Visibility.ShowDelayDetail)

	// The delay toggle is only cleared by the user.
	board.SetDelayAlerts([]model.DelayAlert{{OrderID: 2}})
	assert.True(t, board.Snapshot(testNow).Visibility.ShowDelayDetail)
	assert.False(t, board.ToggleDelayDetail())
}

func TestAlertBoard_AccessorsReturnCopies(t *testing.T) {
	board := application.NewAlertBoard()
	names := []string{"Pulpo"}
	board.SetStock(model.StockAlertState{IsLow: true, LowItemNames: names})
	names[0] = "mutated"

	got := board.Stock()
	assert.Equal(t, []string{"Pulpo"}, got.LowItemNames)
	got.LowItemNames[0] = "mutated too"
	assert.Equal(t, []string{"Pulpo"}, board.Stock().LowItemNames)

	board.SetDelayAlerts([]model.DelayAlert{{OrderID: 1}})
	alerts := board.DelayAlerts()
	alerts[0].OrderID = 99
	assert.Equal(t, []int{1}, alertIDs(board.DelayAlerts()))
}

func TestAlertBoard_ConcurrentAccess(t *testing.T) {
	board := application.NewAlertBoard()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(4)
		go func() {
			defer wg.Done()
			board.SetStock(model.StockAlertState{IsLow: true, LowItemNames: []string{"Pulpo"}})
		}()
		go func(id int) {
			defer wg.Done()
			board.SetDelayAlerts([]model.DelayAlert{{OrderID: id}})
		}(i)
		go func() {
			defer wg.Done()
			board.ToggleDelayDetail()
		}()
		go func() {
			defer wg.Done()
			snap := board.Snapshot(testNow)
			assert.Equal(t, len(snap.Delay.Alerts) > 0, snap.Delay.HasDelayedOrders)
		}()
	}
	wg.Wait()
}
