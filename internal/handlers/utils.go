package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"photobatch/internal/logging"
	"photobatch/internal/session"
)

func (h *Handlers) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("Failed to encode response: %v", err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		logging.Warn("Failed to encode error response: %v", err)
	}
}

// statusForError maps domain errors onto HTTP status codes: state machine
// violations are conflicts, everything else is a bad request.
func statusForError(err error) int {
	var terr *session.TransitionError
	if errors.As(err, &terr) {
		return http.StatusConflict
	}
	return http.StatusBadRequest
}
