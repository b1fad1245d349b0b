package handlers

import (
	"fmt"
	"io"
	"net/http"

	"photobatch/internal/batch"
	"photobatch/internal/session"
)

// maxUploadBytes caps the whole multipart body: the per-file limit times
// the batch cap, plus slack for form overhead.
const maxUploadBytes = int64(session.MaxFiles)*session.MaxFileSize + 1<<20

// Upload ingests a multipart batch of image files. Files that fail the
// intake limits or cannot be normalized are reported in the response and
// skipped; accepted files move the wizard to the metadata stage.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.writeError(w, "Failed to parse upload: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		headers = r.MultipartForm.File["file"]
	}
	if len(headers) == 0 {
		h.writeError(w, "No files in upload", http.StatusBadRequest)
		return
	}

	files := make([]batch.File, 0, len(headers))
	for _, hdr := range headers {
		f, err := hdr.Open()
		if err != nil {
			h.writeError(w, "Failed to read "+hdr.Filename+": "+err.Error(), http.StatusBadRequest)
			return
		}

		// Read one byte past the limit so oversize files are rejected by
		// intake validation instead of silently truncated.
		data, err := io.ReadAll(io.LimitReader(f, session.MaxFileSize+1))
		f.Close()
		if err != nil {
			h.writeError(w, "Failed to read "+hdr.Filename+": "+err.Error(), http.StatusBadRequest)
			return
		}

		files = append(files, batch.File{
			Name: hdr.Filename,
			Size: int64(len(data)),
			Data: data,
		})
	}

	summary, err := h.orch.IngestAll(r.Context(), files)
	if err != nil {
		h.writeError(w, err.Error(), statusForError(err))
		return
	}

	h.writeJSON(w, map[string]interface{}{
		"state":    h.sess.State().String(),
		"accepted": summary.Accepted,
		"rejected": summary.Rejected,
		"message":  fmt.Sprintf("Accepted %d of %d files", len(summary.Accepted), len(files)),
	})
}
