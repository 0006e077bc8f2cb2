package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"AlertConsoleAPI/internal/apperr"
	"AlertConsoleAPI/internal/gateway"
	"AlertConsoleAPI/internal/logger"
	"AlertConsoleAPI/internal/models"

	"github.com/gorilla/mux"
)

const (
	maxBodyBytes          = 1 << 20
	msgInvalidRequestBody = "Invalid request body"
)

var errInvalidBody = errors.New("invalid request body")

// SuccessResponse wraps console-produced payloads.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Count   *int        `json:"count,omitempty"`
}

func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		return
	}
}

func respondError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, models.APIError{Success: false, Message: message})
}

// respondAppError maps err through the apperr taxonomy and logs server-side failures.
func respondAppError(w http.ResponseWriter, log *logger.Logger, op string, err error) {
	status := apperr.Status(err)
	switch {
	case status >= http.StatusInternalServerError:
		log.Error("%s: %v", op, err)
	case status != http.StatusUnauthorized:
		log.Warn("%s: %v", op, err)
	}
	gateway.WriteError(w, err)
}

// readJSONBody returns the raw body after checking it is well-formed JSON. An empty
// body is returned as nil.
func readJSONBody(w http.ResponseWriter, r *http.Request) (json.RawMessage, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, errInvalidBody
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	if !json.Valid(raw) {
		return nil, errInvalidBody
	}
	return raw, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	raw, err := readJSONBody(w, r)
	if err != nil || raw == nil {
		return errInvalidBody
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errInvalidBody
	}
	return nil
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid rule id")
	}
	return id, nil
}

func intPtr(n int) *int {
	return &n
}
