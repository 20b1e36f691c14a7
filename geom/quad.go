package geom

// QuadBez is a quadratic Bezier curve.
// P0 is the start point, P1 is the control point, P2 is the end point.
type QuadBez struct {
	P0, P1, P2 Point
}

// NewQuadBez creates a new quadratic Bezier curve.
func NewQuadBez(p0, p1, p2 Point) QuadBez {
	return QuadBez{P0: p0, P1: p1, P2: p2}
}

// Eval evaluates the curve at parameter t (0 to 1).
func (q QuadBez) Eval(t float64) Point {
	return QuadraticPoint(q.P0, q.P1, q.P2, t)
}

// Start returns the starting point of the curve.
func (q QuadBez) Start() Point {
	return q.P0
}

// End returns the ending point of the curve.
func (q QuadBez) End() Point {
	return q.P2
}

// MaxSegmentSamples caps SampleCount. Any segment whose end points lie on
// an 8192 pixel square layer stays well below it.
const MaxSegmentSamples = 1 << 16

// SampleCount is the number of steps used to sample q:
// floor(|dx|+|dy|) between its end points, at most MaxSegmentSamples.
// Zoom does not matter; a longer segment simply gets more samples.
func (q QuadBez) SampleCount() int {
	d := q.P0.Manhattan(q.P2)
	if !(d < MaxSegmentSamples) { // NaN and +Inf included
		return MaxSegmentSamples
	}
	return int(d)
}

// AppendSamples appends the start point, SampleCount()-1 interior samples
// and the end point of q to dst, in traversal order.
func (q QuadBez) AppendSamples(dst []Point) []Point {
	n := q.SampleCount()
	dst = append(dst, q.P0)
	for i := 1; i < n; i++ {
		dst = append(dst, q.Eval(float64(i)/float64(n)))
	}
	return append(dst, q.P2)
}

// QuadraticPoint evaluates (1-t)^2*p0 + 2(1-t)t*p1 + t^2*p2.
func QuadraticPoint(p0, p1, p2 Point, t float64) Point {
	mt := 1.0 - t
	return Point{
		X: mt*mt*p0.X + 2*mt*t*p1.X + t*t*p2.X,
		Y: mt*mt*p0.Y + 2*mt*t*p1.Y + t*t*p2.Y,
	}
}
