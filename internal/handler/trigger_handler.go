package handler

import (
	"net/http"

	"AlertConsoleAPI/internal/logger"
	"AlertConsoleAPI/internal/service"
	"AlertConsoleAPI/internal/session"
	"AlertConsoleAPI/internal/websocket"

	"github.com/gorilla/mux"
	gorillaws "github.com/gorilla/websocket"
)

type TriggerHandler struct {
	triggerService service.ITriggerService
	sessions       *session.Cookies
	hub            *websocket.Hub
	upgrader       *gorillaws.Upgrader
	log            *logger.Logger
}

func NewTriggerHandler(triggerService service.ITriggerService, sessions *session.Cookies, hub *websocket.Hub, upgrader *gorillaws.Upgrader, log *logger.Logger) *TriggerHandler {
	return &TriggerHandler{
		triggerService: triggerService,
		sessions:       sessions,
		hub:            hub,
		upgrader:       upgrader,
		log:            log,
	}
}

func (h *TriggerHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/console/trigger", h.ListEndpoints).Methods("GET")
	r.HandleFunc("/console/trigger", h.Run).Methods("POST")
	r.HandleFunc("/console/trigger/stream", h.Stream).Methods("GET")
}

func (h *TriggerHandler) ListEndpoints(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, SuccessResponse{Success: true, Data: h.triggerService.Endpoints()})
}

// Run fires every declared endpoint. Per-endpoint failures are part of the report, so
// the response is 200 unless the run itself could not start.
func (h *TriggerHandler) Run(w http.ResponseWriter, r *http.Request) {
	report, err := h.triggerService.Run(r.Context(), h.sessions.For(w, r))
	if err != nil {
		respondAppError(w, h.log, "manual trigger", err)
		return
	}

	h.log.Info("Manual trigger requested: all_success=%t", report.AllSuccess)
	respondJSON(w, http.StatusOK, SuccessResponse{Success: true, Data: report})
}

// Stream upgrades to a websocket that receives trigger.result and trigger.completed messages.
func (h *TriggerHandler) Stream(w http.ResponseWriter, r *http.Request) {
	websocket.ServeWs(h.hub, h.upgrader, w, r, h.log)
}
