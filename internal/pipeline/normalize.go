package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"photobatch/internal/logging"
	"photobatch/internal/metrics"

	"github.com/davidbyttow/govips/v2/vips"
)

// heicQuality is the JPEG re-encode quality for HEIC conversions,
// 90 on the encoder's 0-100 scale.
const heicQuality = 90

// Normalized is the output of format normalization: bytes that the rest of
// the pipeline can decode, plus their MIME type.
type Normalized struct {
	Data []byte
	MIME string
}

// IsHEIC reports whether the filename carries a .heic or .heif extension,
// case-insensitive.
func IsHEIC(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".heic", ".heif":
		return true
	}
	return false
}

// Normalize converts HEIC/HEIF input into JPEG bytes at quality 90.
// All other accepted formats pass through unchanged with their MIME type.
// A failed conversion returns a *ConversionError; the caller drops the item
// and continues the batch.
func Normalize(name string, data []byte, mime string) (Normalized, error) {
	if !IsHEIC(name) {
		return Normalized{Data: data, MIME: mime}, nil
	}

	start := time.Now()
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")

	if !HEICAvailable() {
		metrics.NormalizationsTotal.WithLabelValues(format, "error").Inc()
		return Normalized{}, &ConversionError{Name: name, Err: fmt.Errorf("libvips not initialized")}
	}

	ref, err := vips.LoadImageFromBuffer(data, vips.NewImportParams())
	if err != nil {
		metrics.NormalizationsTotal.WithLabelValues(format, "error").Inc()
		return Normalized{}, &ConversionError{Name: name, Err: err}
	}
	defer ref.Close()

	out, _, err := ref.ExportJpeg(&vips.JpegExportParams{
		Quality:        heicQuality,
		OptimizeCoding: true,
	})
	if err != nil {
		metrics.NormalizationsTotal.WithLabelValues(format, "error").Inc()
		return Normalized{}, &ConversionError{Name: name, Err: err}
	}

	metrics.NormalizationsTotal.WithLabelValues(format, "success").Inc()
	metrics.NormalizationDuration.WithLabelValues(format).Observe(time.Since(start).Seconds())
	logging.Debug("Normalized %s: %dx%d, %d -> %d bytes",
		name, ref.Width(), ref.Height(), len(data), len(out))

	return Normalized{Data: out, MIME: "image/jpeg"}, nil
}
