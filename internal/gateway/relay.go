package gateway

import (
	"encoding/json"
	"net/http"

	"AlertConsoleAPI/internal/apperr"
	"AlertConsoleAPI/internal/models"
)

// Relay writes a forwarded response unchanged, or the console's own error body when err is set.
func Relay(w http.ResponseWriter, resp *Response, err error) {
	if err != nil {
		WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	w.Write(resp.Body)
}

// WriteError renders err as {success:false, message}.
func WriteError(w http.ResponseWriter, err error) {
	body := models.APIError{
		Success: false,
		Message: apperr.Message(err),
	}
	if ve, ok := apperr.IsValidation(err); ok {
		body.Code = ve.Code
		body.Field = ve.Field
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperr.Status(err))
	json.NewEncoder(w).Encode(body)
}
