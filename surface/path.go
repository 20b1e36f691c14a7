// Copyright 2026 The maskdraw Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"github.com/synanno/maskdraw/geom"
)

// pathVerb is a path construction command.
type pathVerb uint8

const (
	verbMoveTo pathVerb = iota
	verbLineTo
	verbCubicTo
	verbClose
)

// Path represents a vector path whose subpaths are unioned when
// rasterized. Every shape helper emits its subpath with the same winding,
// so overlapping shapes never cancel each other out.
//
// Example:
//
//	p := surface.NewPath()
//	for _, pt := range boundary {
//	    p.Ellipse(geom.BrushEllipse(pt, 20))
//	}
//	cov, at := p.Coverage(layer.Bounds())
type Path struct {
	verbs  []pathVerb
	points []float32
}

// maxCoord bounds stored coordinates so far off-layer points keep the
// rasterizer's per-row work finite.
const maxCoord = 1 << 20

// coord converts v to a stored coordinate. NaN maps to 0.
func coord(v float64) float32 {
	switch {
	case v != v:
		return 0
	case v > maxCoord:
		return maxCoord
	case v < -maxCoord:
		return -maxCoord
	}
	return float32(v)
}

// NewPath creates a new empty path.
func NewPath() *Path {
	return &Path{
		verbs:  make([]pathVerb, 0, 16),
		points: make([]float32, 0, 64),
	}
}

// MoveTo starts a new subpath at the given point.
func (p *Path) MoveTo(x, y float64) {
	p.verbs = append(p.verbs, verbMoveTo)
	p.points = append(p.points, coord(x), coord(y))
}

// LineTo adds a line from the current point to (x, y).
func (p *Path) LineTo(x, y float64) {
	if len(p.verbs) == 0 {
		p.MoveTo(x, y)
		return
	}
	p.verbs = append(p.verbs, verbLineTo)
	p.points = append(p.points, coord(x), coord(y))
}

// CubicTo adds a cubic Bezier curve from the current point.
// (c1x, c1y) and (c2x, c2y) are control points, (x, y) is the endpoint.
func (p *Path) CubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	if len(p.verbs) == 0 {
		p.MoveTo(c1x, c1y)
	}
	p.verbs = append(p.verbs, verbCubicTo)
	p.points = append(p.points,
		coord(c1x), coord(c1y),
		coord(c2x), coord(c2y),
		coord(x), coord(y))
}

// Close closes the current subpath by connecting to the start point.
func (p *Path) Close() {
	if len(p.verbs) == 0 {
		return
	}
	p.verbs = append(p.verbs, verbClose)
}

// IsEmpty returns true if the path has no elements.
func (p *Path) IsEmpty() bool {
	return len(p.verbs) == 0
}

// Rectangle adds a rectangle to the path.
func (p *Path) Rectangle(x, y, w, h float64) {
	p.MoveTo(x, y)
	p.LineTo(x+w, y)
	p.LineTo(x+w, y+h)
	p.LineTo(x, y+h)
	p.Close()
}

// Ellipse adds an ellipse to the path. Empty ellipses are skipped.
func (p *Path) Ellipse(e geom.Ellipse) {
	if e.Empty() {
		return
	}
	const k = 0.5522847498307936 // Bezier circle approximation constant
	cx, cy, rx, ry := e.Center.X, e.Center.Y, e.RX, e.RY
	ox := rx * k
	oy := ry * k

	p.MoveTo(cx+rx, cy)
	p.CubicTo(cx+rx, cy+oy, cx+ox, cy+ry, cx, cy+ry)
	p.CubicTo(cx-ox, cy+ry, cx-rx, cy+oy, cx-rx, cy)
	p.CubicTo(cx-rx, cy-oy, cx-ox, cy-ry, cx, cy-ry)
	p.CubicTo(cx+ox, cy-ry, cx+rx, cy-oy, cx+rx, cy)
	p.Close()
}

// Segment adds the outline of a straight stroke of the given width from a
// to b. Zero-length segments are skipped.
func (p *Path) Segment(a, b geom.Point, width float64) {
	n := b.Sub(a).Normal().Mul(width / 2)
	if n == (geom.Point{}) {
		return
	}
	// Winding matches Rectangle and Ellipse for every direction.
	p.MoveTo(a.X-n.X, a.Y-n.Y)
	p.LineTo(b.X-n.X, b.Y-n.Y)
	p.LineTo(b.X+n.X, b.Y+n.Y)
	p.LineTo(a.X+n.X, a.Y+n.Y)
	p.Close()
}

// Bounds returns the axis-aligned bounding box of the path's points.
// Returns an empty rectangle if the path is empty.
func (p *Path) Bounds() (minX, minY, maxX, maxY float64) {
	if len(p.points) == 0 {
		return 0, 0, 0, 0
	}

	minX = float64(p.points[0])
	maxX = minX
	minY = float64(p.points[1])
	maxY = minY

	for i := 2; i < len(p.points); i += 2 {
		x := float64(p.points[i])
		y := float64(p.points[i+1])
		minX = math.Min(minX, x)
		maxX = math.Max(maxX, x)
		minY = math.Min(minY, y)
		maxY = math.Max(maxY, y)
	}

	return minX, minY, maxX, maxY
}

// pixelBounds returns the integer rectangle covering the path.
func (p *Path) pixelBounds() image.Rectangle {
	minX, minY, maxX, maxY := p.Bounds()
	return image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX)), int(math.Ceil(maxY)),
	)
}

// Coverage rasterizes the path, restricted to clip, into an alpha mask.
// The mask's pixel (0, 0) corresponds to the returned origin. A nil mask is
// returned when the path does not touch clip.
func (p *Path) Coverage(clip image.Rectangle) (*image.Alpha, image.Point) {
	if p.IsEmpty() {
		return nil, image.Point{}
	}
	r := p.pixelBounds().Intersect(clip)
	if r.Empty() {
		return nil, image.Point{}
	}

	w, h := r.Dx(), r.Dy()
	z := vector.NewRasterizer(w, h)
	z.DrawOp = draw.Src
	ox, oy := float32(r.Min.X), float32(r.Min.Y)

	pts := p.points
	for _, v := range p.verbs {
		switch v {
		case verbMoveTo:
			z.MoveTo(pts[0]-ox, pts[1]-oy)
			pts = pts[2:]
		case verbLineTo:
			z.LineTo(pts[0]-ox, pts[1]-oy)
			pts = pts[2:]
		case verbCubicTo:
			z.CubeTo(pts[0]-ox, pts[1]-oy, pts[2]-ox, pts[3]-oy, pts[4]-ox, pts[5]-oy)
			pts = pts[6:]
		case verbClose:
			z.ClosePath()
		}
	}

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return mask, r.Min
}
