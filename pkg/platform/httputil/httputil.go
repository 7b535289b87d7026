// Package httputil centralizes JSON response writing so every handler emits
// the same envelope.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "lifeflow/pkg/domain-errors"
)

// WriteJSON writes v as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the JSON error envelope. Internal
// errors omit the description so storage detail never reaches clients.
func WriteError(w http.ResponseWriter, err error) {
	de := dErrors.Load(err)
	body := map[string]string{"error": string(de.Code)}
	if de.Code != dErrors.CodeInternal {
		body["error_description"] = de.Message
	}
	WriteJSON(w, dErrors.ToHTTPStatus(de.Code), body)
}
