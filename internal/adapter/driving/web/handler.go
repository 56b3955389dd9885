// Package web implements the kitchen alert panel using templ components.
package web

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ericfisherdev/kitchenwatch/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/kitchenwatch/internal/adapter/driving/web/templates/components"
	vm "github.com/ericfisherdev/kitchenwatch/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/kitchenwatch/internal/domain/model"
)

// keepAliveInterval is how often an idle event stream gets a comment line.
const keepAliveInterval = 15 * time.Second

// AlertController is the orchestrator surface the panel drives.
type AlertController interface {
	Snapshot() model.AlertSnapshot
	ToggleStockDetail(ctx context.Context) (bool, error)
	ToggleDelayDetail(ctx context.Context) (bool, error)
}

// ThresholdManager reads and updates the thresholds in effect.
type ThresholdManager interface {
	Current() model.Thresholds
	Save(ctx context.Context, thresholds model.Thresholds) error
}

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	alerts     AlertController
	thresholds ThresholdManager
	events     *Broadcaster
	logger     *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	alerts AlertController,
	thresholds ThresholdManager,
	events *Broadcaster,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		alerts:     alerts,
		thresholds: thresholds,
		events:     events,
		logger:     logger,
	}
}

// Dashboard renders the full page with the alert panel.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusOK, "")
}

// Panel renders just the alert panel fragment.
func (h *Handler) Panel(w http.ResponseWriter, r *http.Request) {
	h.renderPanel(w, r, http.StatusOK, "")
}

// ToggleStock flips the stock detail list.
func (h *Handler) ToggleStock(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.alerts.ToggleStockDetail)
}

// ToggleDelay flips the delayed-orders detail list.
func (h *Handler) ToggleDelay(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.alerts.ToggleDelayDetail)
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request, fn func(context.Context) (bool, error)) {
	if !validateCSRF(r) {
		http.Error(w, "invalid csrf token", http.StatusForbidden)
		return
	}

	if _, err := fn(r.Context()); err != nil {
		h.logger.Warn("view refresh after toggle failed", "error", err)
	}
	h.respondAfterPost(w, r, http.StatusOK, "")
}

// UpdateThresholds saves the settings form.
func (h *Handler) UpdateThresholds(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "invalid csrf token", http.StatusForbidden)
		return
	}

	delay, errDelay := strconv.Atoi(strings.TrimSpace(r.FormValue("delay_minutes")))
	stock, errStock := strconv.Atoi(strings.TrimSpace(r.FormValue("low_stock_quantity")))
	if errDelay != nil || errStock != nil {
		h.respondAfterPost(w, r, http.StatusBadRequest, "Los umbrales deben ser números enteros.")
		return
	}

	err := h.thresholds.Save(r.Context(), model.Thresholds{DelayMinutes: delay, LowStockQuantity: stock})
	switch {
	case errors.Is(err, model.ErrInvalidThresholds):
		h.respondAfterPost(w, r, http.StatusBadRequest, err.Error())
	case err != nil:
		h.logger.Error("failed to save thresholds", "error", err)
		h.respondAfterPost(w, r, http.StatusInternalServerError, "No se pudieron guardar los umbrales.")
	default:
		h.respondAfterPost(w, r, http.StatusOK, "")
	}
}

// respondAfterPost renders the panel fragment for script requests. Plain form
// posts are redirected to the dashboard, or get the full page when the form
// was rejected.
func (h *Handler) respondAfterPost(w http.ResponseWriter, r *http.Request, status int, formError string) {
	switch {
	case r.Header.Get(csrfHeader) != "":
		h.renderPanel(w, r, status, formError)
	case formError != "":
		h.renderPage(w, r, status, formError)
	default:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (h *Handler) panelViewModel(w http.ResponseWriter, r *http.Request, formError string) vm.PanelViewModel {
	pvm := toPanelViewModel(h.alerts.Snapshot(), h.thresholds.Current(), csrfToken(w, r))
	pvm.Thresholds.Error = formError
	return pvm
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, status int, formError string) {
	page := templates.Layout("Cocina", components.AlertPanel(h.panelViewModel(w, r, formError)))

	var buf bytes.Buffer
	if err := page.Render(r.Context(), &buf); err != nil {
		h.logger.Error("failed to render dashboard", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, status, buf.Bytes())
}

func (h *Handler) renderPanel(w http.ResponseWriter, r *http.Request, status int, formError string) {
	var buf bytes.Buffer
	if err := components.AlertPanel(h.panelViewModel(w, r, formError)).Render(r.Context(), &buf); err != nil {
		h.logger.Error("failed to render alert panel", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, status, buf.Bytes())
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// Events streams a freshly rendered panel on every refresh as server-sent
// events named "alerts".
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	token := csrfToken(w, r)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	// The server's write timeout does not apply to streams.
	_ = rc.SetWriteDeadline(time.Time{})

	updates, cancel := h.events.Subscribe()
	defer cancel()

	if err := h.writeEvent(r.Context(), w, rc, h.alerts.Snapshot(), token); err != nil {
		return
	}

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case snap := <-updates:
			if err := h.writeEvent(r.Context(), w, rc, snap, token); err != nil {
				h.logger.Debug("event stream closed", "error", err)
				return
			}
		case <-keepAlive.C:
			if _, err := w.Write([]byte(": keep-alive\n\n")); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

func (h *Handler) writeEvent(ctx context.Context, w http.ResponseWriter, rc *http.ResponseController, snap model.AlertSnapshot, token string) error {
	var buf bytes.Buffer
	if err := components.AlertPanel(toPanelViewModel(snap, h.thresholds.Current(), token)).Render(ctx, &buf); err != nil {
		return err
	}

	var out bytes.Buffer
	out.WriteString("event: alerts\n")
	for _, line := range strings.Split(buf.String(), "\n") {
		out.WriteString("data: ")
		out.WriteString(line)
		out.WriteByte('\n')
	}
	out.WriteByte('\n')

	if _, err := w.Write(out.Bytes()); err != nil {
		return err
	}
	return rc.Flush()
}
