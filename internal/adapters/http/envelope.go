package httpadapter

import (
	"encoding/json"
	"net/http"
)

// Response codes carried in the envelope. Handled actions always answer
// HTTP 200; the envelope code is the actual outcome.
const (
	CodeOK        = 0
	CodeDuplicate = 1
	CodeError     = -1
)

// Envelope is the uniform response shape for every pipeline action.
type Envelope struct {
	Code    int    `json:"code"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

func writeEnvelope(w http.ResponseWriter, code int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(Envelope{Code: code, Data: data, Message: message})
}

func writeOK(w http.ResponseWriter, data any) {
	writeEnvelope(w, CodeOK, data, "success")
}

func writeError(w http.ResponseWriter, err error) {
	writeEnvelope(w, CodeError, nil, messageFor(err))
}

// writeJSON bypasses the envelope for non-action endpoints.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
