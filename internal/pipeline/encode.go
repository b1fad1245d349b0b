package pipeline

import (
	"bytes"
	"image"
	"image/jpeg"
)

// EncodeJPEG encodes a rendered raster as JPEG at the given quality level on
// the user-facing 0-10 scale. The level maps linearly onto the encoder's
// 0-100 range and is clamped to [1, 100].
func EncodeJPEG(img image.Image, level int) ([]byte, error) {
	quality := level * 10
	if quality < 1 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
