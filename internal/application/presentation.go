package application

import "github.com/ericfisherdev/kitchenwatch/internal/domain/model"

// ComputeVisibility derives which alert widgets the UI shows. A detail panel
// is visible only while its family has alerts and the user has expanded it.
// The two families never influence each other.
func ComputeVisibility(
	stock model.StockAlertState,
	delay model.DelayAlertState,
	expandedStock bool,
	expandedDelay bool,
) model.VisibilityState {
	return model.VisibilityState{
		ShowStockBadge:  stock.IsLow,
		ShowStockDetail: stock.IsLow && expandedStock,
		ShowDelayBadge:  delay.HasDelayedOrders,
		ShowDelayDetail: delay.HasDelayedOrders && expandedDelay,
	}
}
