package pipeline

import (
	"bytes"
	"image/jpeg"
	"time"

	"photobatch/internal/metrics"

	_ "image/png"

	"github.com/disintegration/imaging"
)

const (
	// thumbMaxEdge bounds the longer edge of a preview thumbnail.
	thumbMaxEdge = 200
	// thumbQuality is the thumbnail JPEG quality, 80 on the 0-100 scale.
	thumbQuality = 80
)

// Thumbnail produces a JPEG preview of the given raster bytes, scaled so the
// longer edge is at most 200px with the aspect ratio preserved. It is a pure
// function of its input. A raster that cannot be loaded returns a
// *DecodeError.
func Thumbnail(data []byte) ([]byte, error) {
	start := time.Now()

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		metrics.ThumbnailsTotal.WithLabelValues("error").Inc()
		return nil, &DecodeError{Name: "thumbnail source", Err: err}
	}

	thumb := imaging.Fit(img, thumbMaxEdge, thumbMaxEdge, imaging.Lanczos)

	// Extreme aspect ratios can round an edge down to zero; re-fit to a
	// 1px floor so the preview stays drawable.
	if thumb.Bounds().Dx() < 1 || thumb.Bounds().Dy() < 1 {
		w, h := thumb.Bounds().Dx(), thumb.Bounds().Dy()
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
		thumb = imaging.Resize(img, w, h, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: thumbQuality}); err != nil {
		metrics.ThumbnailsTotal.WithLabelValues("error").Inc()
		return nil, &DecodeError{Name: "thumbnail encode", Err: err}
	}

	metrics.ThumbnailsTotal.WithLabelValues("success").Inc()
	metrics.ThumbnailDuration.Observe(time.Since(start).Seconds())
	return buf.Bytes(), nil
}
