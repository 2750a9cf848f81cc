package config

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/emergencyai/dispatch-api/models"
)

var environment = "development"

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With(err).Error(message)
	resp := models.ErrorResponse{Success: false, Message: message}
	if err != nil && environment != "production" {
		resp.Error = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

// WriteJSON writes a JSON response body with the given status code
func WriteJSON(w http.ResponseWriter, httpStatusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.S().With(err).Error("failed to encode response body")
	}
}
