package handler

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the body of every non-2xx API response. Error is a
// stable machine-readable code, Message is human-readable detail.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// JSON writes data as a JSON response with the given status code.
// A nil data writes the status line only.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already out, so the best we can do is truncate.
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// Error writes a JSON error body with the given status code.
func Error(w http.ResponseWriter, status int, code string, message string) {
	JSON(w, status, ErrorResponse{Error: code, Message: message})
}
