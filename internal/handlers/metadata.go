package handlers

import (
	"encoding/json"
	"net/http"

	"photobatch/internal/naming"
	"photobatch/internal/session"

	"github.com/gorilla/mux"
)

// metadataRequest is the settings-form payload for bulk or per-item
// assignment.
type metadataRequest struct {
	IndustryCode string `json:"industryCode"`
	SubmissionID string `json:"submissionId"`
	DateStamp    string `json:"dateStamp"`
	Quality      int    `json:"quality"`
}

func (m metadataRequest) toMetadata() session.Metadata {
	return session.Metadata{
		IndustryCode: m.IndustryCode,
		SubmissionID: m.SubmissionID,
		DateStamp:    m.DateStamp,
		Quality:      m.Quality,
	}
}

// validate applies the form-level rules: numeric submission ID, YYYYMMDD
// date stamp, quality on the 0-10 scale, and a known industry code.
func (h *Handlers) validate(r *http.Request, m metadataRequest) error {
	if err := naming.ValidateMetadata(m.IndustryCode, m.SubmissionID, m.DateStamp, m.Quality); err != nil {
		return err
	}
	if !h.registry.Known(r.Context(), m.IndustryCode) {
		return &unknownCodeError{code: m.IndustryCode}
	}
	return nil
}

type unknownCodeError struct{ code string }

func (e *unknownCodeError) Error() string {
	return "unknown industry code: " + e.code
}

// BulkMetadata assigns the same naming metadata to every item.
func (h *Handlers) BulkMetadata(w http.ResponseWriter, r *http.Request) {
	var req metadataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.validate(r, req); err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.sess.ApplyBulkMetadata(req.toMetadata()); err != nil {
		h.writeError(w, err.Error(), statusForError(err))
		return
	}

	h.writeJSON(w, map[string]string{"state": h.sess.State().String()})
}

// ItemMetadata overrides one item's metadata.
func (h *Handlers) ItemMetadata(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req metadataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.validate(r, req); err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.sess.OverrideMetadata(id, req.toMetadata()); err != nil {
		h.writeError(w, err.Error(), statusForError(err))
		return
	}

	item, _ := h.sess.Item(id)
	h.writeJSON(w, itemResponse(item))
}

// ListCodes returns the active industry-code list.
func (h *Handlers) ListCodes(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.registry.Codes(r.Context()))
}
