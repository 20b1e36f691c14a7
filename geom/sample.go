package geom

import (
	"errors"
	"math"
)

// MinCurvePoints is the smallest point buffer SampleCurve accepts.
const MinCurvePoints = 3

// ErrInsufficientPoints is returned when a boundary is requested for fewer
// than MinCurvePoints clicks.
var ErrInsufficientPoints = errors.New("geom: a mask needs at least 3 points")

// Segments splits the point buffer into the quadratic segments of the
// midpoint smoothing scheme.
//
// The first segment starts at points[0]. Interior point i is the control
// point of a segment that ends at the midpoint of points[i] and points[i+1].
// The last segment runs from the last midpoint to the final click with the
// second to last click as its control point.
func Segments(points []Point) ([]QuadBez, error) {
	n := len(points)
	if n < MinCurvePoints {
		return nil, ErrInsufficientPoints
	}
	segs := make([]QuadBez, 0, n-2)
	a := points[0]
	for i := 1; i < n-2; i++ {
		b := points[i].Midpoint(points[i+1])
		segs = append(segs, NewQuadBez(a, points[i], b))
		a = b
	}
	segs = append(segs, NewQuadBez(a, points[n-2], points[n-1]))
	return segs, nil
}

// SampleCurve returns the sampled boundary of the smoothed path through
// points. The output is in traversal order, starts at points[0] and ends at
// the last point. Segment joints appear twice, once as the end of a segment
// and once as the start of the next.
func SampleCurve(points []Point) ([]Point, error) {
	segs, err := Segments(points)
	if err != nil {
		return nil, err
	}
	size := 0
	for _, s := range segs {
		size += s.SampleCount() + 2
	}
	out := make([]Point, 0, size)
	for _, s := range segs {
		out = s.AppendSamples(out)
	}
	return out, nil
}

// SampleCurveWithin is SampleCurve with every sample outside clip
// dropped. Clicks far off the layer then cost at most MaxSegmentSamples
// evaluations per segment and no memory beyond the samples kept.
func SampleCurveWithin(points []Point, clip Rect) ([]Point, error) {
	segs, err := Segments(points)
	if err != nil {
		return nil, err
	}
	var out, buf []Point
	for _, s := range segs {
		buf = s.AppendSamples(buf[:0])
		for _, p := range buf {
			if clip.Contains(p) {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

// Ellipse is an axis-aligned ellipse.
type Ellipse struct {
	Center Point
	RX, RY float64
}

// BrushEllipse is the stroke footprint for a given thickness: the major
// radius equals thickness and the minor radius is floor(thickness/2).
func BrushEllipse(center Point, thickness float64) Ellipse {
	return Ellipse{Center: center, RX: thickness, RY: math.Floor(thickness / 2)}
}

// Circle returns an ellipse with equal radii.
func Circle(center Point, r float64) Ellipse {
	return Ellipse{Center: center, RX: r, RY: r}
}

// Bounds returns the bounding rectangle of the ellipse.
func (e Ellipse) Bounds() Rect {
	return Rect{
		Min: Point{X: e.Center.X - e.RX, Y: e.Center.Y - e.RY},
		Max: Point{X: e.Center.X + e.RX, Y: e.Center.Y + e.RY},
	}
}

// Empty reports whether the ellipse covers no area.
func (e Ellipse) Empty() bool {
	return e.RX <= 0 || e.RY <= 0
}

// StrokeBounds returns the bounding rectangle of the stroke region formed by
// brush ellipses of the given thickness centered on every boundary point.
func StrokeBounds(boundary []Point, thickness float64) (Rect, bool) {
	r, ok := Bounds(boundary)
	if !ok {
		return Rect{}, false
	}
	e := BrushEllipse(Point{}, thickness)
	return r.Inset(e.RX, e.RY), true
}
