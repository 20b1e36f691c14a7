package maskdraw

import (
	"fmt"
	"image/color"

	"github.com/synanno/maskdraw/geom"
	"github.com/synanno/maskdraw/surface"
)

// discardCurve drops the outline and clears the curve layer.
func (s *Session) discardCurve() {
	s.points = nil
	s.boundary = nil
	s.dragging = false
	s.stack.ResetComposite()
	s.stack.Layer(surface.LayerCurve).Clear()
}

func (s *Session) enterDraw() error {
	switch {
	case s.mode == DrawingCurve || s.mode == Erasing:
		// second press abandons the curve
		s.discardCurve()
		s.mode = Idle
		return nil
	case !s.mode.stable():
		return fmt.Errorf("%w: draw from %v", ErrInvalidTransition, s.mode)
	}

	s.discardCurve()
	s.stack.Raise(surface.LayerCurve)
	s.stack.Layer(surface.LayerCurve).SetVisible(true)
	s.vis.Curve = true
	s.mode = DrawingCurve
	return nil
}

func (s *Session) curveClick(pos geom.Point) error {
	if s.mode != DrawingCurve {
		return fmt.Errorf("%w: curve click in %v", ErrInvalidTransition, s.mode)
	}
	if !pos.IsFinite() {
		return fmt.Errorf("%w: curve click at %v", ErrInvalidTransition, pos)
	}
	s.points = append(s.points, pos)
	s.boundary = nil
	s.drawPreview()
	return nil
}

// drawPreview redraws the straight click preview. The smoothed boundary
// is only computed on fill.
func (s *Session) drawPreview() {
	l := s.stack.Layer(surface.LayerCurve)
	l.Clear()
	if len(s.points) >= 2 {
		l.DrawPolyline(s.points, s.opts.previewWidth, surface.PreviewLineColor)
	}
	l.DrawPointMarkers(s.points, s.opts.previewPointSize, surface.PreviewPointColor)
}

func (s *Session) toggleRevise() error {
	switch {
	case s.mode == Erasing:
		s.stack.ResetComposite()
		s.mode = s.prior
	case s.mode == DrawingCurve && len(s.points) > 0, s.mode == Filled:
		s.prior = s.mode
		s.stack.SetSubtractive(surface.LayerCurve)
		s.dragging = false
		s.mode = Erasing
	default:
		return fmt.Errorf("%w: revise in %v with %d points", ErrInvalidTransition, s.mode, len(s.points))
	}
	return nil
}

func (s *Session) drag(ev PointerDrag) error {
	if s.mode != Erasing {
		return fmt.Errorf("%w: drag in %v", ErrInvalidTransition, s.mode)
	}
	if ev.Buttons&ButtonPrimary == 0 {
		return nil
	}
	if !ev.Pos.IsFinite() {
		return fmt.Errorf("%w: drag at %v", ErrInvalidTransition, ev.Pos)
	}
	if s.dragging && ev.Screen == s.lastScreen {
		return nil
	}
	s.lastScreen, s.dragging = ev.Screen, true

	// The layer is subtractive, so the brush removes pixels.
	brush := geom.BrushEllipse(ev.Pos, s.opts.thickness)
	s.stack.Layer(surface.LayerCurve).DrawEllipseMarker(brush, color.Black)
	return nil
}

func (s *Session) fill() error {
	if s.mode != DrawingCurve && s.mode != Filled {
		return fmt.Errorf("%w: fill in %v", ErrInvalidTransition, s.mode)
	}
	if len(s.points) < geom.MinCurvePoints {
		s.logger().Warn("fill rejected", "points", len(s.points))
		s.emit(Signal{Kind: SignalFillFailed, Err: ErrInsufficientPoints.Error()})
		return fmt.Errorf("maskdraw: fill: %w", ErrInsufficientPoints)
	}

	if len(s.boundary) == 0 {
		// Samples whose brush cannot reach the layer are dropped.
		th := s.opts.thickness
		clip := geom.NewRect(geom.Pt(0, 0), geom.Pt(float64(s.stack.Width()), float64(s.stack.Height()))).Inset(th, th)
		b, err := geom.SampleCurveWithin(s.points, clip)
		if err != nil {
			return fmt.Errorf("maskdraw: fill: %w", err)
		}
		s.boundary = b
	}
	s.stack.Layer(surface.LayerCurve).CompositeClipFill(s.boundary, s.opts.thickness, s.opts.maskColor)
	s.logger().Info("curve filled", "points", len(s.points), "samples", len(s.boundary))
	s.mode = Filled
	return nil
}

// Boundary returns a copy of the last sampled boundary, or nil if no fill
// has happened since the outline changed.
func (s *Session) Boundary() []geom.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.boundary == nil {
		return nil
	}
	return append([]geom.Point(nil), s.boundary...)
}
