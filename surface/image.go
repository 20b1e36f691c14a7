// Copyright 2026 The maskdraw Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"
)

// ToImage serializes the layer as PNG.
func (l *Layer) ToImage() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, l.img); err != nil {
		return nil, fmt.Errorf("surface: encode %s layer: %w", l.kind, err)
	}
	return buf.Bytes(), nil
}

// LoadImage replaces the layer content with img. An image of a different
// size is rescaled to the layer with nearest-neighbor sampling, so mask
// edges stay hard.
func (l *Layer) LoadImage(img image.Image) {
	src := clone.AsRGBA(img)
	if src.Rect.Dx() != l.Width() || src.Rect.Dy() != l.Height() {
		src = transform.Resize(src, l.Width(), l.Height(), transform.NearestNeighbor)
	}
	l.Clear()
	for y := 0; y < l.Height(); y++ {
		so := src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y+y)
		do := l.img.PixOffset(0, y)
		copy(l.img.Pix[do:do+l.Width()*4], src.Pix[so:so+l.Width()*4])
	}
}

// DecodePNG decodes a stored raster.
func DecodePNG(data []byte) (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("surface: decode raster: %w", err)
	}
	return img, nil
}
