package web

import (
	"strconv"

	vm "github.com/ericfisherdev/kitchenwatch/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/kitchenwatch/internal/domain/model"
)

// toPanelViewModel converts a snapshot into the panel view model. Detail
// lists are populated only when the corresponding detail is visible.
func toPanelViewModel(s model.AlertSnapshot, t model.Thresholds, csrf string) vm.PanelViewModel {
	stock := vm.StockViewModel{
		ShowBadge:  s.Visibility.ShowStockBadge,
		ShowDetail: s.Visibility.ShowStockDetail,
		Count:      len(s.Stock.LowItemNames),
		Items:      []string{},
	}
	if stock.ShowDetail {
		stock.Items = append(stock.Items, s.Stock.LowItemNames...)
	}

	delay := vm.DelayViewModel{
		ShowBadge:  s.Visibility.ShowDelayBadge,
		ShowDetail: s.Visibility.ShowDelayDetail,
		Count:      len(s.Delay.Alerts),
		Orders:     []vm.DelayedOrderViewModel{},
	}
	if delay.ShowDetail {
		for _, a := range s.Delay.Alerts {
			delay.Orders = append(delay.Orders, toDelayedOrderViewModel(a))
		}
	}

	return vm.PanelViewModel{
		Stock: stock,
		Delay: delay,
		Thresholds: vm.ThresholdsViewModel{
			DelayMinutes:     t.DelayMinutes,
			LowStockQuantity: t.LowStockQuantity,
		},
		UpdatedAt: s.TakenAt.Format("15:04:05"),
		CSRFToken: csrf,
	}
}

func toDelayedOrderViewModel(a model.DelayAlert) vm.DelayedOrderViewModel {
	return vm.DelayedOrderViewModel{
		OrderID:   a.OrderID,
		Title:     a.Title,
		Status:    string(a.Status),
		Delay:     strconv.FormatFloat(a.DelayMinutes, 'f', -1, 64) + " min",
		Since:     a.OrderTimestamp.Format("15:04"),
		NotesHTML: RenderNotes(a.Notes),
	}
}
