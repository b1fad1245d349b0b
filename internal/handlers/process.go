package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"photobatch/internal/archive"
)

// Confirm advances the wizard from the settings stage to the confirmation
// stage.
func (h *Handlers) Confirm(w http.ResponseWriter, _ *http.Request) {
	if err := h.sess.Confirm(); err != nil {
		h.writeError(w, err.Error(), statusForError(err))
		return
	}
	h.writeJSON(w, map[string]string{"state": h.sess.State().String()})
}

// Process runs the batch: every confirmed item is resized, re-encoded,
// renamed, and packed into the archive. The optional startSequence offsets
// the first item's ordinal (default 1).
func (h *Handlers) Process(w http.ResponseWriter, r *http.Request) {
	startSeq := 1
	if v := r.URL.Query().Get("start"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			h.writeError(w, "Invalid start sequence: "+v, http.StatusBadRequest)
			return
		}
		startSeq = parsed
	} else if r.Body != nil {
		var req struct {
			StartSequence *int `json:"startSequence"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.StartSequence != nil {
			if *req.StartSequence < 0 {
				h.writeError(w, "Invalid start sequence", http.StatusBadRequest)
				return
			}
			startSeq = *req.StartSequence
		}
	}

	result, err := h.orch.Run(r.Context(), startSeq)
	if err != nil {
		var aerr *archive.ArchiveError
		if errors.As(err, &aerr) {
			h.writeError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		h.writeError(w, err.Error(), statusForError(err))
		return
	}

	h.writeJSON(w, map[string]interface{}{
		"state":  h.sess.State().String(),
		"result": result,
	})
}

// Download serves the finished archive blob.
func (h *Handlers) Download(w http.ResponseWriter, _ *http.Request) {
	blob, name, ok := h.sess.Archive()
	if !ok {
		h.writeError(w, "No archive available in state "+h.sess.State().String(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(blob)))
	if _, err := w.Write(blob); err != nil {
		return
	}
}

// Reset releases every resource handle and returns the wizard to idle.
// Rejected while an operation is in flight.
func (h *Handlers) Reset(w http.ResponseWriter, _ *http.Request) {
	if err := h.sess.Reset(); err != nil {
		h.writeError(w, err.Error(), statusForError(err))
		return
	}
	h.writeJSON(w, map[string]string{"state": h.sess.State().String()})
}

// Status reports the wizard state, progress counters, and the active error
// notes.
func (h *Handlers) Status(w http.ResponseWriter, _ *http.Request) {
	processed, total := h.sess.Progress()
	h.writeJSON(w, map[string]interface{}{
		"state":     h.sess.State().String(),
		"processed": processed,
		"total":     total,
		"items":     len(h.sess.Items()),
		"notes":     h.sess.Notes(),
	})
}
