package model

import "time"

// DelayAlert reports an active order that has been waiting longer than the
// delay threshold. OrderID is unique within an alert set.
type DelayAlert struct {
	OrderID        int
	Title          string
	Status         OrderStatus
	DelayMinutes   float64
	OrderTimestamp time.Time
	Notes          string
}

// StockAlertState is the low-stock picture computed on the last stock tick.
type StockAlertState struct {
	IsLow        bool
	LowItemNames []string
}

// DelayAlertState is the delay picture after the last reconciliation.
type DelayAlertState struct {
	HasDelayedOrders bool
	Alerts           []DelayAlert
}

// VisibilityState is a transient model derived on every UI refresh. It is
// never persisted.
type VisibilityState struct {
	ShowStockBadge  bool
	ShowStockDetail bool
	ShowDelayBadge  bool
	ShowDelayDetail bool
}

// AlertSnapshot is a consistent copy of all alert state handed to views.
type AlertSnapshot struct {
	Stock      StockAlertState
	Delay      DelayAlertState
	Visibility VisibilityState
	TakenAt    time.Time
}

// AlertEvent records a single raise or clear transition.
type AlertEvent struct {
	ID           string
	Family       AlertFamily
	Action       AlertAction
	Subject      string // order ID for delay alerts, ingredient name for stock alerts
	Title        string
	DelayMinutes float64
	At           time.Time
}
