// Package shared holds the JSON response envelope used by every handler so
// clients see one consistent shape.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "trafix/pkg/domain-errors"
)

// Envelope is the wire format for all responses.
type Envelope struct {
	Success              bool   `json:"success"`
	Message              string `json:"message"`
	Data                 any    `json:"data,omitempty"`
	RequiresVerification bool   `json:"requiresVerification,omitempty"`
	Error                string `json:"error,omitempty"`
}

// WriteData writes a success envelope with a payload.
func WriteData(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, Envelope{Success: true, Message: message, Data: data})
}

// WriteMessage writes a success envelope without a payload.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	write(w, status, Envelope{Success: true, Message: message})
}

// WriteVerificationRequired signals that phase one completed and the caller
// must resubmit with the dispatched code.
func WriteVerificationRequired(w http.ResponseWriter, message string) {
	write(w, http.StatusOK, Envelope{Success: true, Message: message, RequiresVerification: true})
}

// WriteError translates a domain error into the envelope. The service layer
// owns the message text; it is surfaced verbatim.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	write(w, dErrors.ToHTTPStatus(code), Envelope{
		Success: false,
		Message: dErrors.MessageOf(err),
		Error:   string(code),
	})
}

func write(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}
