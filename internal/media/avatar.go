// Package media normalizes profile pictures before they are uploaded.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxDimension = 1024
	DefaultQuality      = 85
)

// ErrEmptyImage is returned for zero-length input or an image with no pixels.
var ErrEmptyImage = errors.New("media: empty image")

// AvatarNormalizer re-encodes jpeg, png, gif and webp pictures as JPEG, shrinking them so the
// longest edge is at most MaxDimension. Pictures are never enlarged.
type AvatarNormalizer struct {
	MaxDimension int
	Quality      int
}

// NewAvatarNormalizer applies the defaults for non-positive or out-of-range values.
func NewAvatarNormalizer(maxDimension, quality int) *AvatarNormalizer {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}
	return &AvatarNormalizer{MaxDimension: maxDimension, Quality: quality}
}

// Normalize decodes data and returns it as JPEG.
func (n *AvatarNormalizer) Normalize(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("media: decode: %w", err)
	}
	b := src.Bounds()
	if b.Empty() {
		return nil, ErrEmptyImage
	}

	w, h := fitWithin(b.Dx(), b.Dy(), n.MaxDimension)
	// JPEG has no alpha; paint onto white so transparent png/gif/webp areas don't turn black.
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: n.Quality}); err != nil {
		return nil, fmt.Errorf("media: encode %s as jpeg: %w", format, err)
	}
	return out.Bytes(), nil
}

// fitWithin scales w x h down so neither side exceeds limit, keeping the aspect ratio.
func fitWithin(w, h, limit int) (int, int) {
	if w <= limit && h <= limit {
		return w, h
	}
	if w >= h {
		return limit, max(1, h*limit/w)
	}
	return max(1, w*limit/h), limit
}
