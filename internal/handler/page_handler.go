package handler

import (
	"embed"
	"net/http"

	"AlertConsoleAPI/internal/logger"

	"github.com/gorilla/mux"
)

//go:embed pages/*.html
var pages embed.FS

// PageHandler serves the console's page shells. The guard has already redirected
// anonymous visitors to /login by the time these run.
type PageHandler struct {
	log *logger.Logger
}

func NewPageHandler(log *logger.Logger) *PageHandler {
	return &PageHandler{log: log}
}

func (h *PageHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/login", h.page("login.html")).Methods("GET")
	r.HandleFunc("/", h.page("dashboard.html")).Methods("GET")
	r.HandleFunc("/alerts", h.page("alerts.html")).Methods("GET")
	r.HandleFunc("/cron", h.page("cron.html")).Methods("GET")
}

func (h *PageHandler) page(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := pages.ReadFile("pages/" + name)
		if err != nil {
			h.log.Error("Missing page %s: %v", name, err)
			http.Error(w, "page not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}
}
