package cache

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	_ "image/png" // posters are not always JPEG at the source

	"golang.org/x/image/draw"
)

// Canonical poster dimensions. Every poster is scaled to this size before
// being persisted so all entries render uniformly regardless of source
// resolution.
const (
	PosterWidth  = 185
	PosterHeight = 275
)

const posterQuality = 95

// NormalizePoster decodes a raw downloaded image and re-encodes it as a
// JPEG at the canonical poster size.
func NormalizePoster(raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return nil, errors.New("empty image data")
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, errors.New("invalid image dimensions")
	}

	dst := image.NewRGBA(image.Rect(0, 0, PosterWidth, PosterHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: posterQuality}); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
