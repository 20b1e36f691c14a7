// Copyright 2026 The maskdraw Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"
	"image/color"

	"github.com/synanno/maskdraw/geom"
	"github.com/synanno/maskdraw/internal/blend"
)

// Layer is one independently clearable raster layer.
//
// The pixel buffer is bound to the displayed image rectangle: Resize
// discards the content, like resizing an HTML canvas.
//
// Example:
//
//	l := surface.NewLayer(surface.LayerPreMarker, 512, 512)
//	l.DrawEllipseMarker(geom.Circle(geom.Pt(50, 50), 10), surface.PreMarkerColor)
//	img := l.Snapshot()
type Layer struct {
	kind    LayerKind
	img     *image.RGBA
	z       int
	visible bool
	mode    CompositeMode
}

// NewLayer creates a transparent, visible layer with the given dimensions.
// Dimensions below 1 are raised to 1.
func NewLayer(kind LayerKind, width, height int) *Layer {
	l := &Layer{kind: kind, visible: true}
	l.Resize(width, height)
	return l
}

// Kind returns the layer's role.
func (l *Layer) Kind() LayerKind { return l.kind }

// Width returns the layer width in pixels.
func (l *Layer) Width() int { return l.img.Rect.Dx() }

// Height returns the layer height in pixels.
func (l *Layer) Height() int { return l.img.Rect.Dy() }

// Bounds returns the layer rectangle, anchored at the origin.
func (l *Layer) Bounds() image.Rectangle { return l.img.Rect }

// Resize reallocates the pixel buffer. The content is discarded.
func (l *Layer) Resize(width, height int) {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	l.img = image.NewRGBA(image.Rect(0, 0, width, height))
}

// Clear makes every pixel transparent.
func (l *Layer) Clear() {
	clear(l.img.Pix)
}

// Visible reports whether the layer is shown.
func (l *Layer) Visible() bool { return l.visible }

// SetVisible shows or hides the layer.
func (l *Layer) SetVisible(v bool) { l.visible = v }

// ZOrder returns the stacking order; higher values are drawn on top.
func (l *Layer) ZOrder() int { return l.z }

// SetZOrder sets the stacking order.
func (l *Layer) SetZOrder(z int) { l.z = z }

// CompositeMode returns the mode used by drawing primitives.
func (l *Layer) CompositeMode() CompositeMode { return l.mode }

// SetCompositeMode sets the mode used by drawing primitives. Use
// Stack.SetSubtractive to keep at most one subtractive layer.
func (l *Layer) SetCompositeMode(m CompositeMode) { l.mode = m }

// fill composites c through the coverage of path using mode.
func (l *Layer) fill(p *Path, c color.Color, mode CompositeMode) {
	cov, at := p.Coverage(l.img.Rect)
	if cov == nil {
		return
	}
	src := toBlendColor(c)
	op := mode.blendMode()
	w := cov.Rect.Dx()
	for y := 0; y < cov.Rect.Dy(); y++ {
		row := cov.Pix[y*cov.Stride : y*cov.Stride+w]
		off := l.img.PixOffset(at.X, at.Y+y)
		blend.Span(l.img.Pix[off:off+w*4], row, src, op)
	}
}

// DrawEllipseMarker draws a filled ellipse in the layer's composite mode.
// In CompositeSubtractive the ellipse erases instead of painting; the
// color's alpha then sets how much is removed.
func (l *Layer) DrawEllipseMarker(e geom.Ellipse, c color.Color) {
	p := NewPath()
	p.Ellipse(e)
	l.fill(p, c, l.mode)
}

// CompositeClipFill realizes the stroke region around boundary.
//
// The layer is cleared first, then the union of brush ellipses of the given
// thickness centered on every boundary point becomes the clip, and the whole
// layer rectangle is filled with c through it. Pixels outside the union stay
// transparent. The result depends only on the arguments, so repeated calls
// produce the same raster. The fill always paints, whatever the layer's
// composite mode.
func (l *Layer) CompositeClipFill(boundary []geom.Point, thickness float64, c color.Color) {
	l.Clear()
	clip := NewPath()
	for _, pt := range boundary {
		clip.Ellipse(geom.BrushEllipse(pt, thickness))
	}
	// Filling the surface rectangle through the clip is the clip coverage
	// itself, since the rectangle covers every pixel.
	l.fill(clip, c, CompositeNormal)
}

// DrawPolyline strokes straight segments through pts.
func (l *Layer) DrawPolyline(pts []geom.Point, width float64, c color.Color) {
	if len(pts) < 2 {
		return
	}
	p := NewPath()
	for i := 1; i < len(pts); i++ {
		p.Segment(pts[i-1], pts[i], width)
	}
	l.fill(p, c, l.mode)
}

// DrawPointMarkers draws a size x size square with its top-left corner at
// each point.
func (l *Layer) DrawPointMarkers(pts []geom.Point, size float64, c color.Color) {
	if len(pts) == 0 || size <= 0 {
		return
	}
	p := NewPath()
	for _, pt := range pts {
		p.Rectangle(pt.X, pt.Y, size, size)
	}
	l.fill(p, c, l.mode)
}

// Snapshot returns a copy of the layer's pixels.
func (l *Layer) Snapshot() *image.RGBA {
	result := image.NewRGBA(l.img.Rect)
	copy(result.Pix, l.img.Pix)
	return result
}

// Image returns the underlying image.RGBA.
// This is a direct reference, not a copy.
func (l *Layer) Image() *image.RGBA {
	return l.img
}

// IsEmpty reports whether every pixel is transparent.
func (l *Layer) IsEmpty() bool {
	return l.Painted().Empty()
}

// Painted returns the bounding rectangle of all pixels with non-zero alpha.
func (l *Layer) Painted() image.Rectangle {
	var r image.Rectangle
	b := l.img.Rect
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if l.img.Pix[l.img.PixOffset(x, y)+3] == 0 {
				continue
			}
			r = r.Union(image.Rect(x, y, x+1, y+1))
		}
	}
	return r
}
