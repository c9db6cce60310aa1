package httpapi

import (
	"encoding/json"
	"net/http"

	slogctx "github.com/veqryn/slog-context"
)

func respondJSON(w http.ResponseWriter, r *http.Request, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slogctx.Error(r.Context(), "Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, r *http.Request, message string, status int) {
	respondJSON(w, r, map[string]string{"error": message}, status)
}
