package maskdraw

import (
	"context"
	"fmt"

	"github.com/synanno/maskdraw/geom"
	"github.com/synanno/maskdraw/surface"
)

func (s *Session) beginMarking(r Role) error {
	if r > RolePost {
		return fmt.Errorf("%w: unknown role %v", ErrInvalidTransition, r)
	}
	if s.mode == r.mode() {
		// pressing the armed marker button again disarms it
		s.mode = s.prior
		s.stack.Raise(surface.LayerCurve)
		return nil
	}
	if !s.mode.stable() {
		return fmt.Errorf("%w: %v marker in %v", ErrInvalidTransition, r, s.mode)
	}
	s.prior = s.mode
	s.stack.Raise(r.Layer())
	s.mode = r.mode()
	return nil
}

func (s *Session) markerClick(ctx context.Context, pos geom.Point) error {
	var r Role
	switch s.mode {
	case MarkingPre:
		r = RolePre
	case MarkingPost:
		r = RolePost
	default:
		return fmt.Errorf("%w: marker click in %v", ErrInvalidTransition, s.mode)
	}
	if !pos.IsFinite() {
		return fmt.Errorf("%w: marker click at %v", ErrInvalidTransition, pos)
	}

	c := s.opts.preColor
	if r == RolePost {
		c = s.opts.postColor
	}
	l := s.stack.Layer(r.Layer())
	l.Clear()
	l.SetVisible(true)
	l.DrawEllipseMarker(geom.Circle(pos, s.opts.markerRadius), c)

	if r == RolePre {
		s.vis.Pre = true
	} else {
		s.vis.Post = true
	}

	s.markers[r] = MarkerCoordinate{X: pos.X, Y: pos.Y, Z: s.viewed}
	s.placed[r] = true
	s.pending[r] = true
	s.mode = s.prior

	if s.opts.autoSaveMarkers {
		return s.save(ctx, r.Layer())
	}
	return nil
}
