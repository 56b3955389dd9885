// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// PanelViewModel holds everything the alert panel renders.
type PanelViewModel struct {
	Stock      StockViewModel
	Delay      DelayViewModel
	Thresholds ThresholdsViewModel
	UpdatedAt  string // "15:04:05"
	CSRFToken  string
}

// StockViewModel is the low-stock badge and its detail list.
type StockViewModel struct {
	ShowBadge  bool
	ShowDetail bool
	Count      int
	Items      []string
}

// DelayViewModel is the delayed-orders badge and its detail list.
type DelayViewModel struct {
	ShowBadge  bool
	ShowDetail bool
	Count      int
	Orders     []DelayedOrderViewModel
}

// DelayedOrderViewModel is one row of the delayed-orders list.
type DelayedOrderViewModel struct {
	OrderID   int
	Title     string
	Status    string
	Delay     string // "25.5 min"
	Since     string // "12:35"
	NotesHTML string // sanitized; empty when the order has no notes
}

// ThresholdsViewModel backs the settings form.
type ThresholdsViewModel struct {
	DelayMinutes     int
	LowStockQuantity int
	Error            string
}
