package pipeline

import (
	"bytes"
	"image"
	"image/color"
	"time"

	"photobatch/internal/logging"
	"photobatch/internal/metrics"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
)

// Default output canvas dimensions.
const (
	TargetWidth  = 600
	TargetHeight = 400
)

// ResizeAndPad decodes the given raster bytes and renders them onto a white
// targetW x targetH canvas: the source is scaled (aspect preserved) to the
// largest size that fits entirely inside the canvas and centered on both
// axes. The result is deterministic for identical input. A raster that
// cannot be loaded returns a *DecodeError.
func ResizeAndPad(data []byte, targetW, targetH int) (*image.NRGBA, error) {
	start := time.Now()

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		metrics.ResizesTotal.WithLabelValues("error").Inc()
		return nil, &DecodeError{Name: "resize source", Err: err}
	}

	out := Letterbox(img, targetW, targetH)

	metrics.ResizesTotal.WithLabelValues("success").Inc()
	metrics.ResizeDuration.Observe(time.Since(start).Seconds())
	return out, nil
}

// Letterbox scales img to fit within a targetW x targetH white canvas and
// centers it. When the source is wider than the target aspect ratio it fills
// the full width with equal margins above and below; otherwise it fills the
// full height with equal margins left and right.
//
// Sources much larger than the target go through staged 50% Lanczos
// downscales before the final placement, so no single step discards more
// than half the data. The last step resamples with Catmull-Rom directly into
// the destination rectangle.
func Letterbox(img image.Image, targetW, targetH int) *image.NRGBA {
	srcW := img.Bounds().Dx()
	srcH := img.Bounds().Dy()

	fitW, fitH := fitDimensions(srcW, srcH, targetW, targetH)

	steps := 0
	cur := img
	for cur.Bounds().Dx() > 2*fitW && cur.Bounds().Dy() > 2*fitH {
		half := cur.Bounds().Dx() / 2
		if half < fitW {
			half = fitW
		}
		cur = imaging.Resize(cur, half, 0, imaging.Lanczos)
		steps++
	}
	metrics.ResizeStepsPerImage.Observe(float64(steps))
	if steps > 0 {
		logging.Debug("Staged downscale: %dx%d -> %dx%d in %d steps",
			srcW, srcH, cur.Bounds().Dx(), cur.Bounds().Dy(), steps)
	}

	canvas := imaging.New(targetW, targetH, color.White)

	offX := (targetW - fitW) / 2
	offY := (targetH - fitH) / 2
	dst := image.Rect(offX, offY, offX+fitW, offY+fitH)
	xdraw.CatmullRom.Scale(canvas, dst, cur, cur.Bounds(), xdraw.Over, nil)

	return canvas
}

// fitDimensions returns the largest width/height that preserves the source
// aspect ratio while fitting entirely within the target. The comparison
// srcW*targetH >= srcH*targetW is the integer form of
// srcAspect >= targetAspect.
func fitDimensions(srcW, srcH, targetW, targetH int) (int, int) {
	if srcW < 1 || srcH < 1 {
		return targetW, targetH
	}

	var fitW, fitH int
	if srcW*targetH >= srcH*targetW {
		fitW = targetW
		fitH = (srcH*targetW + srcW/2) / srcW
	} else {
		fitH = targetH
		fitW = (srcW*targetH + srcH/2) / srcH
	}

	if fitW > targetW {
		fitW = targetW
	}
	if fitH > targetH {
		fitH = targetH
	}
	if fitW < 1 {
		fitW = 1
	}
	if fitH < 1 {
		fitH = 1
	}
	return fitW, fitH
}
