package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/kitchenwatch/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// AlertsResponse is the JSON representation of the full alert state.
type AlertsResponse struct {
	Stock      StockResponse      `json:"stock"`
	Delay      DelayResponse      `json:"delay"`
	Visibility VisibilityResponse `json:"visibility"`
	TakenAt    string             `json:"taken_at"`
}

// StockResponse is the low-stock alert bundle.
type StockResponse struct {
	IsLow        bool     `json:"is_low"`
	LowItemNames []string `json:"low_item_names"`
}

// DelayResponse is the delayed-orders alert bundle.
type DelayResponse struct {
	HasDelayedOrders bool                 `json:"has_delayed_orders"`
	Alerts           []DelayAlertResponse `json:"alerts"`
}

// DelayAlertResponse describes one delayed order.
type DelayAlertResponse struct {
	OrderID        int     `json:"order_id"`
	Title          string  `json:"title"`
	Status         string  `json:"status"`
	DelayMinutes   float64 `json:"delay_minutes"`
	OrderTimestamp string  `json:"order_timestamp"`
	Notes          string  `json:"notes"`
}

// VisibilityResponse tells a client which alert widgets to show.
type VisibilityResponse struct {
	ShowStockBadge  bool `json:"show_stock_badge"`
	ShowStockDetail bool `json:"show_stock_detail"`
	ShowDelayBadge  bool `json:"show_delay_badge"`
	ShowDelayDetail bool `json:"show_delay_detail"`
}

// ToggleResponse is returned by the detail toggle endpoints.
type ToggleResponse struct {
	Expanded   bool               `json:"expanded"`
	Visibility VisibilityResponse `json:"visibility"`
}

// ThresholdsResponse is the JSON representation of the alert thresholds. It
// is also the request body of PUT /api/v1/thresholds.
type ThresholdsResponse struct {
	DelayMinutes     int `json:"delay_minutes"`
	LowStockQuantity int `json:"low_stock_quantity"`
}

// AlertEventResponse is one entry of the alert history.
type AlertEventResponse struct {
	ID           string  `json:"id"`
	Family       string  `json:"family"`
	Action       string  `json:"action"`
	Subject      string  `json:"subject"`
	Title        string  `json:"title"`
	DelayMinutes float64 `json:"delay_minutes,omitempty"`
	At           string  `json:"at"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// toAlertsResponse converts a snapshot to its JSON representation. Slices are
// always non-nil so clients see [] rather than null.
func toAlertsResponse(s model.AlertSnapshot) AlertsResponse {
	names := s.Stock.LowItemNames
	if names == nil {
		names = []string{}
	}

	alerts := make([]DelayAlertResponse, 0, len(s.Delay.Alerts))
	for _, a := range s.Delay.Alerts {
		alerts = append(alerts, DelayAlertResponse{
			OrderID:        a.OrderID,
			Title:          a.Title,
			Status:         string(a.Status),
			DelayMinutes:   a.DelayMinutes,
			OrderTimestamp: a.OrderTimestamp.Format(model.OrderTimestampLayout),
			Notes:          a.Notes,
		})
	}

	return AlertsResponse{
		Stock:      StockResponse{IsLow: s.Stock.IsLow, LowItemNames: names},
		Delay:      DelayResponse{HasDelayedOrders: s.Delay.HasDelayedOrders, Alerts: alerts},
		Visibility: toVisibilityResponse(s.Visibility),
		TakenAt:    s.TakenAt.UTC().Format(time.RFC3339),
	}
}

func toVisibilityResponse(v model.VisibilityState) VisibilityResponse {
	return VisibilityResponse{
		ShowStockBadge:  v.ShowStockBadge,
		ShowStockDetail: v.ShowStockDetail,
		ShowDelayBadge:  v.ShowDelayBadge,
		ShowDelayDetail: v.ShowDelayDetail,
	}
}

func toThresholdsResponse(t model.Thresholds) ThresholdsResponse {
	return ThresholdsResponse{DelayMinutes: t.DelayMinutes, LowStockQuantity: t.LowStockQuantity}
}

func toAlertEventResponse(e model.AlertEvent) AlertEventResponse {
	return AlertEventResponse{
		ID:           e.ID,
		Family:       string(e.Family),
		Action:       string(e.Action),
		Subject:      e.Subject,
		Title:        e.Title,
		DelayMinutes: e.DelayMinutes,
		At:           e.At.UTC().Format(time.RFC3339),
	}
}
