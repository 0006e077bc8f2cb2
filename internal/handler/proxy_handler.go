package handler

import (
	"net/http"

	"AlertConsoleAPI/internal/gateway"
	"AlertConsoleAPI/internal/logger"
	"AlertConsoleAPI/internal/session"

	"github.com/gorilla/mux"
)

// ProxyHandler relays the browser-facing API to the backend, path for path.
type ProxyHandler struct {
	gw       *gateway.Client
	sessions *session.Cookies
	log      *logger.Logger
}

func NewProxyHandler(gw *gateway.Client, sessions *session.Cookies, log *logger.Logger) *ProxyHandler {
	return &ProxyHandler{
		gw:       gw,
		sessions: sessions,
		log:      log,
	}
}

func (h *ProxyHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/alerter-rules", h.Passthrough).Methods("GET", "POST")
	r.HandleFunc("/alerter-rules/stats", h.Passthrough).Methods("GET")
	r.HandleFunc("/alerter-rules/bulk/delete", h.Passthrough).Methods("POST")
	r.HandleFunc("/alerter-rules/account/{name}", h.Passthrough).Methods("GET")
	r.HandleFunc("/alerter-rules/scope/{scope}", h.Passthrough).Methods("GET")
	r.HandleFunc("/alerter-rules/{id:[0-9]+}", h.Passthrough).Methods("GET", "PATCH", "DELETE")
	r.HandleFunc("/alerter-rules/{id:[0-9]+}/activate", h.Passthrough).Methods("POST")
	r.HandleFunc("/alerter-rules/{id:[0-9]+}/deactivate", h.Passthrough).Methods("POST")
	r.HandleFunc("/accounts", h.Accounts).Methods("GET")
	r.HandleFunc("/cron/{path:.+}", h.Passthrough).Methods("GET")
}

// Passthrough forwards method, path, query and body unchanged.
func (h *ProxyHandler) Passthrough(w http.ResponseWriter, r *http.Request) {
	body, err := readJSONBody(w, r)
	if err != nil {
		respondError(w, http.StatusBadRequest, msgInvalidRequestBody)
		return
	}

	resp, err := h.gw.Forward(r.Context(), h.sessions.For(w, r), gateway.Request{
		Method:   r.Method,
		Path:     r.URL.EscapedPath(),
		RawQuery: r.URL.RawQuery,
		Body:     body,
	})
	if err != nil {
		respondAppError(w, h.log, r.Method+" "+r.URL.Path, err)
		return
	}
	gateway.Relay(w, resp, nil)
}

// Accounts forwards only the platform filter.
func (h *ProxyHandler) Accounts(w http.ResponseWriter, r *http.Request) {
	resp, err := h.gw.Forward(r.Context(), h.sessions.For(w, r), gateway.Request{
		Method:   http.MethodGet,
		Path:     "/api/accounts",
		RawQuery: gateway.QueryOf("platform", r.URL.Query().Get("platform")),
	})
	if err != nil {
		respondAppError(w, h.log, "list accounts", err)
		return
	}
	gateway.Relay(w, resp, nil)
}
