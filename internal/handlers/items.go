package handlers

import (
	"net/http"

	"photobatch/internal/session"

	"github.com/gorilla/mux"
)

// ItemResponse is the API view of one uploaded item.
type ItemResponse struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Size         int64            `json:"size"`
	MIME         string           `json:"mime"`
	Metadata     session.Metadata `json:"metadata"`
	ThumbnailURL string           `json:"thumbnailUrl"`
}

func itemResponse(it *session.UploadedImage) ItemResponse {
	return ItemResponse{
		ID:           it.ID,
		Name:         it.SourceName,
		Size:         it.SourceSize,
		MIME:         it.SourceMIME,
		Metadata:     it.Meta,
		ThumbnailURL: "/api/items/" + it.ID + "/thumbnail",
	}
}

// ListItems returns the current collection in upload order.
func (h *Handlers) ListItems(w http.ResponseWriter, _ *http.Request) {
	items := h.sess.Items()
	out := make([]ItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, itemResponse(it))
	}
	h.writeJSON(w, out)
}

// GetThumbnail serves one item's JPEG preview.
func (h *Handlers) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	item, ok := h.sess.Item(id)
	if !ok {
		h.writeError(w, "Unknown item "+id, http.StatusNotFound)
		return
	}

	data, err := item.Thumb.Bytes()
	if err != nil {
		h.writeError(w, "Thumbnail unavailable: "+err.Error(), http.StatusGone)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(data); err != nil {
		return
	}
}
