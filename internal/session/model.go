package session

import (
	"crypto/md5"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Metadata is the per-item naming and encoding metadata. Initially empty,
// populated by bulk assignment and individually overridable.
type Metadata struct {
	IndustryCode string `json:"industryCode"`
	SubmissionID string `json:"submissionId"`
	DateStamp    string `json:"dateStamp"`
	Quality      int    `json:"quality"`
}

// Handle owns one derived in-memory asset (normalized raster bytes or a
// thumbnail). Handles are created once during ingest, read many times, and
// released explicitly on session reset; access after release is an error
// rather than silently serving stale data.
type Handle struct {
	data     []byte
	released bool
}

func newHandle(data []byte) *Handle {
	return &Handle{data: data}
}

// Bytes returns the held asset bytes.
func (h *Handle) Bytes() ([]byte, error) {
	if h == nil || h.released {
		return nil, fmt.Errorf("resource handle released")
	}
	return h.data, nil
}

// Size returns the asset size in bytes, or 0 after release.
func (h *Handle) Size() int {
	if h == nil || h.released {
		return 0
	}
	return len(h.data)
}

// Release drops the held bytes. Safe to call more than once.
func (h *Handle) Release() {
	if h == nil {
		return
	}
	h.data = nil
	h.released = true
}

// UploadedImage is one accepted file with its derived assets and naming
// metadata. The ID is the sole join key between the UI and the pipeline.
type UploadedImage struct {
	ID         string
	SourceName string
	SourceSize int64
	SourceMIME string

	// Raster holds the decodable (post-normalization) image bytes.
	Raster *Handle
	// Thumb holds the JPEG preview derived from Raster.
	Thumb *Handle

	Meta Metadata
}

// NewUploadedImage constructs an item from an accepted file and its derived
// assets. Name and raster bytes are required; the thumbnail may be nil when
// preview generation failed but the item is still processable.
func NewUploadedImage(name string, size int64, mime string, raster, thumb []byte) (*UploadedImage, error) {
	if name == "" {
		return nil, fmt.Errorf("uploaded image requires a source name")
	}
	if len(raster) == 0 {
		return nil, fmt.Errorf("uploaded image %s requires raster bytes", name)
	}

	img := &UploadedImage{
		ID:         deriveID(name),
		SourceName: name,
		SourceSize: size,
		SourceMIME: mime,
		Raster:     newHandle(raster),
	}
	if len(thumb) > 0 {
		img.Thumb = newHandle(thumb)
	}
	return img, nil
}

// deriveID builds an opaque token from the filename, the current time, and
// a random salt. Stable for the session's lifetime.
func deriveID(name string) string {
	seed := fmt.Sprintf("%s|%d|%s", name, time.Now().UnixNano(), uuid.NewString())
	return fmt.Sprintf("%x", md5.Sum([]byte(seed)))
}

// release drops both derived assets.
func (u *UploadedImage) release() {
	u.Raster.Release()
	u.Thumb.Release()
}
