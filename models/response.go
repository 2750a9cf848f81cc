package models

import "encoding/json"

// Response is the success envelope returned by every endpoint
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse is the success envelope for collection listings, the count
// always accompanies the data array even when it is zero
type ListResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
	Count   int         `json:"count"`
}

// ErrorResponse is the failure envelope, the error detail is only attached
// outside of production
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// RawResponse wraps a payload that must be passed through verbatim
type RawResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data"`
}

// HealthCheckResponse returns if the service is alive
type HealthCheckResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}
