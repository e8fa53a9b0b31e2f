package handler

import (
	"encoding/json"
	"net/http"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondOK is the platform-facing acknowledgement shape. Telegram only
// needs to know the delivery was accepted; it re-delivers on anything else.
func respondOK(w http.ResponseWriter) {
	respondJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]any{"ok": false, "error": msg})
}
