package web

import (
	"io/fs"
	"net/http"
)

// RegisterRoutes adds the panel page, its fragment and event stream, the
// toggle and settings form posts, and the embedded assets under /static/.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	mux.HandleFunc("GET /{$}", h.Dashboard)
	mux.HandleFunc("GET /app/alerts", h.Panel)
	mux.HandleFunc("GET /app/events", h.Events)
	mux.HandleFunc("POST /app/alerts/stock/toggle", h.ToggleStock)
	mux.HandleFunc("POST /app/alerts/delay/toggle", h.ToggleDelay)
	mux.HandleFunc("POST /app/thresholds", h.UpdateThresholds)
}
