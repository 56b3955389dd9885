package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ericfisherdev/kitchenwatch/internal/application"
	"github.com/ericfisherdev/kitchenwatch/internal/domain/model"
	"github.com/ericfisherdev/kitchenwatch/internal/domain/port/driven"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// AlertController is the orchestrator surface the API drives.
type AlertController interface {
	Snapshot() model.AlertSnapshot
	NotifyRefresh(ctx context.Context) error
	ToggleStockDetail(ctx context.Context) (bool, error)
	ToggleDelayDetail(ctx context.Context) (bool, error)
}

// ThresholdManager reads and updates the thresholds in effect.
type ThresholdManager interface {
	Current() model.Thresholds
	Save(ctx context.Context, thresholds model.Thresholds) error
}

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	alerts     AlertController
	thresholds ThresholdManager
	history    driven.AlertEventStore
	logger     *slog.Logger
}

// NewHandler creates a Handler. history may be nil, in which case the history
// endpoint returns an empty list.
func NewHandler(
	alerts AlertController,
	thresholds ThresholdManager,
	history driven.AlertEventStore,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		alerts:     alerts,
		thresholds: thresholds,
		history:    history,
		logger:     logger,
	}
}

// RegisterRoutes adds the API routes to mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/alerts", h.GetAlerts)
	mux.HandleFunc("POST /api/v1/alerts/stock/toggle", h.ToggleStock)
	mux.HandleFunc("POST /api/v1/alerts/delay/toggle", h.ToggleDelay)
	mux.HandleFunc("GET /api/v1/alerts/history", h.ListHistory)
	mux.HandleFunc("POST /api/v1/refresh", h.Refresh)
	mux.HandleFunc("GET /api/v1/thresholds", h.GetThresholds)
	mux.HandleFunc("PUT /api/v1/thresholds", h.UpdateThresholds)
	mux.HandleFunc("GET /api/v1/health", h.Health)
}

// NewServeMux creates an http.Handler with the API routes registered and
// wrapped with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return Wrap(mux, logger)
}

// Wrap applies recovery and request logging to next.
func Wrap(next http.Handler, logger *slog.Logger) http.Handler {
	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, next)
	return loggingMiddleware(logger, wrapped)
}

// GetAlerts returns the current alert state with visibility.
func (h *Handler) GetAlerts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toAlertsResponse(h.alerts.Snapshot()))
}

// ToggleStock flips the stock detail panel.
func (h *Handler) ToggleStock(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "stock", h.alerts.ToggleStockDetail)
}

// ToggleDelay flips the delayed-orders detail panel.
func (h *Handler) ToggleDelay(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "delay", h.alerts.ToggleDelayDetail)
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request, family string, fn func(context.Context) (bool, error)) {
	expanded, err := fn(r.Context())
	if err != nil {
		if loopUnavailable(err) {
			writeError(w, http.StatusServiceUnavailable, "refresh loop unavailable")
			return
		}
		h.logger.Warn("view refresh after toggle failed", "family", family, "error", err)
	}

	writeJSON(w, http.StatusOK, ToggleResponse{
		Expanded:   expanded,
		Visibility: toVisibilityResponse(h.alerts.Snapshot().Visibility),
	})
}

// Refresh pushes the current state to every view immediately.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.alerts.NotifyRefresh(r.Context()); err != nil {
		if loopUnavailable(err) {
			writeError(w, http.StatusServiceUnavailable, "refresh loop unavailable")
			return
		}
		h.logger.Warn("view refresh failed", "error", err)
	}

	writeJSON(w, http.StatusOK, toAlertsResponse(h.alerts.Snapshot()))
}

// loopUnavailable reports whether a refresh failed because the orchestrator
// has stopped, as opposed to a view failing.
func loopUnavailable(err error) bool {
	return errors.Is(err, application.ErrNotRunning)
}

// GetThresholds returns the thresholds in effect.
func (h *Handler) GetThresholds(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toThresholdsResponse(h.thresholds.Current()))
}

// UpdateThresholds validates and persists new thresholds. Both fields are
// required.
func (h *Handler) UpdateThresholds(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DelayMinutes     *int `json:"delay_minutes"`
		LowStockQuantity *int `json:"low_stock_quantity"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DelayMinutes == nil || req.LowStockQuantity == nil {
		writeError(w, http.StatusBadRequest, "delay_minutes and low_stock_quantity are required")
		return
	}

	next := model.Thresholds{DelayMinutes: *req.DelayMinutes, LowStockQuantity: *req.LowStockQuantity}
	if err := h.thresholds.Save(r.Context(), next); err != nil {
		if errors.Is(err, model.ErrInvalidThresholds) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to save thresholds", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toThresholdsResponse(h.thresholds.Current()))
}

// ListHistory returns recent alert raise/clear events, newest first.
func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryLimit {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	resp := make([]AlertEventResponse, 0)
	if h.history != nil {
		events, err := h.history.ListRecent(r.Context(), limit)
		if err != nil {
			h.logger.Error("failed to list alert history", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		for _, e := range events {
			resp = append(resp, toAlertEventResponse(e))
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
