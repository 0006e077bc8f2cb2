package handler

import (
	"net/http"
	"time"

	"AlertConsoleAPI/internal/logger"
	"AlertConsoleAPI/internal/models"
	"AlertConsoleAPI/internal/mqtt"

	"github.com/gorilla/mux"
)

// HealthHandler is public, so its payload carries no backend or broker addresses.
type HealthHandler struct {
	mqttClient *mqtt.Client
	log        *logger.Logger
}

// NewHealthHandler builds the handler. mqttClient is nil when event publishing is off.
func NewHealthHandler(mqttClient *mqtt.Client, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		mqttClient: mqttClient,
		log:        log,
	}
}

func (h *HealthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/health/live", h.Liveness).Methods("GET")
}

type healthPayload struct {
	models.HealthResponse
	MQTT *mqtt.HealthStatus `json:"mqtt,omitempty"`
}

// Health reports "degraded" only when an enabled MQTT publisher is disconnected. The
// backend is not probed; a down backend surfaces per request as "Request failed".
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response := healthPayload{
		HealthResponse: models.HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}

	if h.mqttClient != nil {
		status := h.mqttClient.Health()
		response.MQTT = &status
		if !status.Connected {
			response.Status = "degraded"
			h.log.Warn("Health check degraded - MQTT broker %s unreachable: %s", status.Broker, status.LastError)
		}
	}

	respondJSON(w, http.StatusOK, response)
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "alive",
	})
}
