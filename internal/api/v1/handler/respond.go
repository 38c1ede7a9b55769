package handler

import (
	"encoding/json"
	"net/http"
)

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondError writes the uniform error body. message is optional detail
// safe to show the caller; internals stay in the server log.
func respondError(w http.ResponseWriter, status int, errText, message string) {
	body := map[string]string{"error": errText}
	if message != "" {
		body["message"] = message
	}
	respondJSON(w, status, body)
}
