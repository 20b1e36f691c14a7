// Package geom turns a sparse sequence of clicked points into the smoothed
// boundary of a mask stroke.
//
// The package has no mutable state. Points are surface-local pixel
// coordinates with the origin at the top-left corner, X growing right and
// Y growing down.
//
// A boundary is produced by chaining quadratic Bezier segments with the
// midpoint smoothing scheme: every interior click is a control point and
// every segment ends halfway to the next click. Each segment is sampled
// densely enough that the union of brush ellipses placed on the samples
// forms a continuous stroke.
//
//	boundary, err := geom.SampleCurve([]geom.Point{
//	    geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(10, 10), geom.Pt(0, 10),
//	})
//	if errors.Is(err, geom.ErrInsufficientPoints) {
//	    // a mask needs at least 3 points
//	}
package geom
