package maskdraw

import (
	"context"
	"fmt"

	"github.com/synanno/maskdraw/geom"
	"github.com/synanno/maskdraw/surface"
)

// curveSavable reports whether the curve layer holds a filled mask. Erasing
// counts only when it was entered from Filled.
func (s *Session) curveSavable() bool {
	return s.mode == Filled || s.mode == Saved || (s.mode == Erasing && s.prior == Filled)
}

func (s *Session) save(ctx context.Context, kind MaskKind) error {
	r, isMarker := roleOf(kind)
	switch {
	case kind == surface.LayerCurve:
		if !s.curveSavable() {
			return fmt.Errorf("%w: curve save in %v", ErrInvalidTransition, s.mode)
		}
	case isMarker:
		if !s.placed[r] || !s.mode.stable() {
			return fmt.Errorf("%w: %v save in %v", ErrInvalidTransition, kind, s.mode)
		}
	default:
		return fmt.Errorf("%w: save of %v", ErrInvalidTransition, kind)
	}

	raster, err := s.stack.Layer(kind).ToImage()
	if err != nil {
		return err
	}
	sub := MaskSubmission{
		Raster:  raster,
		ImageID: s.target.ImageID,
		Page:    s.target.Page,
		Slice:   s.viewed,
		Kind:    kind,
	}
	var marker *MarkerSubmission
	if isMarker {
		m := s.markers[r]
		marker = &MarkerSubmission{
			X: m.X, Y: m.Y, Z: m.Z,
			ImageID: s.target.ImageID,
			Page:    s.target.Page,
			Role:    r,
		}
	}

	// An in-flight save is never cancelled.
	var res SaveResult
	err = s.call(context.WithoutCancel(ctx), kind.String(), func(ctx context.Context) error {
		var err error
		if res, err = s.gw.SubmitMask(ctx, sub); err != nil {
			return err
		}
		if marker != nil {
			return s.gw.SubmitMarkerCoordinate(ctx, *marker)
		}
		return nil
	})
	if err != nil {
		s.logger().Warn("save failed", "layer", kind.String(), "slice", sub.Slice, "err", err)
		return fmt.Errorf("%w: save %s: %w", ErrGatewayUnavailable, kind, err)
	}

	s.logger().Info("saved", "layer", kind.String(), "slice", sub.Slice, "middle", res.MiddleSlice)
	s.applySave(kind, res)
	return nil
}

// applySave updates the bookkeeping returned by the gateway. Each stored
// raster is meaningful only for the slice it was captured on, so it is
// shown only when that slice is the middle slice.
func (s *Session) applySave(kind MaskKind, res SaveResult) {
	s.target.MiddleSlice = res.MiddleSlice
	if res.AdjustedBoundingBox != nil {
		s.target.BoundingBox = res.AdjustedBoundingBox
	}
	s.imageIndex = res.ImageIndex
	middle := res.MiddleSlice

	if kind == surface.LayerCurve {
		s.source = CurveHuman
		s.curveSlice = s.viewed
		s.vis.Curve = s.viewed == middle
		s.vis.Pre = s.markerOn(RolePre, middle)
		s.vis.Post = s.markerOn(RolePost, middle)
		s.points, s.boundary = nil, nil
		s.stack.ResetComposite()
		s.mode = Saved
	} else {
		r, _ := roleOf(kind)
		s.pending[r] = false
		on := s.markerOn(r, middle)
		if r == RolePre {
			s.vis.Pre = on
		} else {
			s.vis.Post = on
		}
		if s.source == CurveAuto && (s.markerOn(RolePre, middle) || s.markerOn(RolePost, middle)) {
			s.vis.Curve = false
		}
	}
	s.applyVisibility()
}

func (s *Session) autoMask(ctx context.Context) error {
	if !s.mode.stable() {
		return fmt.Errorf("%w: auto mask in %v", ErrInvalidTransition, s.mode)
	}

	var (
		data  []byte
		found bool
	)
	id, middle := s.target.ImageID, s.target.MiddleSlice
	err := s.call(ctx, "auto", func(ctx context.Context) error {
		var err error
		data, found, err = s.gw.QueryAutoMask(ctx, id, middle)
		return err
	})
	if err != nil {
		s.logger().Warn("auto mask query failed", "image", id, "err", err)
		return fmt.Errorf("%w: auto mask: %w", ErrGatewayUnavailable, err)
	}
	if !found {
		s.logger().Info("no auto mask", "image", id)
		return nil
	}
	img, err := surface.DecodePNG(data)
	if err != nil {
		return fmt.Errorf("maskdraw: auto mask: %w", err)
	}

	s.discardCurve()
	l := s.stack.Layer(surface.LayerCurve)
	l.LoadImage(img)
	s.stack.Raise(surface.LayerCurve)
	s.source = CurveAuto
	s.curveSlice = s.target.MiddleSlice
	s.vis.Curve = true
	s.mode = Filled
	s.applyVisibility()
	return nil
}

func (s *Session) viewSlice(slice int) error {
	if s.mode != Idle && s.mode != Saved {
		return fmt.Errorf("%w: slice change in %v", ErrInvalidTransition, s.mode)
	}
	s.viewed = slice
	s.vis = Visibility{
		Curve: s.source != CurveNone && s.curveSlice == slice,
		Pre:   s.markerOn(RolePre, slice),
		Post:  s.markerOn(RolePost, slice),
	}
	s.applyVisibility()
	return nil
}

// reset drops the outline and every marker that was not stored. An armed
// marker button is disarmed.
func (s *Session) reset() {
	if s.mode == DrawingCurve || s.mode == Erasing {
		s.stack.Layer(surface.LayerCurve).Clear()
	}
	s.points, s.boundary = nil, nil
	s.dragging = false
	s.stack.ResetComposite()
	for _, r := range []Role{RolePre, RolePost} {
		if s.pending[r] {
			s.stack.Layer(r.Layer()).Clear()
			s.placed[r] = false
			s.pending[r] = false
		}
	}
	s.stack.Raise(surface.LayerCurve)
	s.mode = Idle
}

// storedMasks is what a gateway holds for a target's middle slice.
type storedMasks struct {
	human, auto bool
	pre, post   bool
	markers     map[Role]MarkerCoordinate
}

// lookupStored asks the gateway what is stored for t. The human curve is
// checked first and the auto mask only when no human curve exists.
func lookupStored(ctx context.Context, gw Gateway, t Target) (storedMasks, error) {
	var st storedMasks
	key := func(k MaskKind) MaskKey {
		return MaskKey{ImageID: t.ImageID, Kind: k, Slice: t.MiddleSlice, BoundingBox: t.BoundingBox}
	}

	var err error
	if st.human, err = gw.MaskExists(ctx, key(MaskCurve)); err != nil {
		return st, err
	}
	if !st.human {
		auto := MaskKey{ImageID: t.ImageID, Slice: t.MiddleSlice, Auto: true}
		if st.auto, err = gw.MaskExists(ctx, auto); err != nil {
			return st, err
		}
	}
	if st.pre, err = gw.MaskExists(ctx, key(MaskPreMarker)); err != nil {
		return st, err
	}
	if st.post, err = gw.MaskExists(ctx, key(MaskPostMarker)); err != nil {
		return st, err
	}
	if ml, ok := gw.(MarkerLookup); ok {
		if st.markers, err = ml.StoredMarkers(ctx, t.ImageID); err != nil {
			return st, err
		}
	}
	return st, nil
}

func (s *Session) newTarget(ctx context.Context, ev NewTarget) error {
	if limit := s.opts.maxCanvas; ev.Width < 0 || ev.Height < 0 || ev.Width > limit || ev.Height > limit {
		return fmt.Errorf("%w: %dx%d, max %d", ErrCanvasSize, ev.Width, ev.Height, limit)
	}

	s.reset()
	if ev.Width > 0 && ev.Height > 0 {
		s.stack.ResizeAll(ev.Width, ev.Height)
	} else {
		for _, k := range surface.Kinds {
			s.stack.Layer(k).Clear()
		}
	}
	s.stack.Raise(surface.LayerCurve)

	s.target = ev.Target
	s.target.BoundingBox = append([]int(nil), ev.Target.BoundingBox...)
	s.imageIndex = 0
	s.viewed = ev.Target.MiddleSlice
	s.markers = [2]MarkerCoordinate{}
	s.placed = [2]bool{}
	s.source = CurveNone
	s.curveSlice = ev.Target.MiddleSlice

	var st storedMasks
	t := s.target
	t.BoundingBox = append([]int(nil), s.target.BoundingBox...)
	err := s.call(ctx, "lookup", func(ctx context.Context) error {
		var err error
		st, err = lookupStored(ctx, s.gw, t)
		return err
	})
	if err != nil {
		s.vis = Visibility{}
		s.applyVisibility()
		s.logger().Warn("stored mask lookup failed", "image", s.target.ImageID, "err", err)
		return fmt.Errorf("%w: lookup: %w", ErrGatewayUnavailable, err)
	}

	switch {
	case st.human:
		s.source = CurveHuman
	case st.auto:
		s.source = CurveAuto
	}
	s.restoreMarkers(st.markers)

	middle := s.target.MiddleSlice
	s.vis = Visibility{
		Curve: s.source != CurveNone,
		Pre:   st.pre || s.markerOn(RolePre, middle),
		Post:  st.post || s.markerOn(RolePost, middle),
	}
	if s.source == CurveAuto && (s.vis.Pre || s.vis.Post) {
		s.vis.Curve = false
	}
	s.logger().Info("target loaded", "image", s.target.ImageID, "curve", s.source.String(),
		"pre", s.vis.Pre, "post", s.vis.Post)
	s.applyVisibility()
	return nil
}

// restoreMarkers redraws stored markers. They count as saved.
func (s *Session) restoreMarkers(stored map[Role]MarkerCoordinate) {
	for _, r := range []Role{RolePre, RolePost} {
		m, ok := stored[r]
		if !ok {
			continue
		}
		c := s.opts.preColor
		if r == RolePost {
			c = s.opts.postColor
		}
		l := s.stack.Layer(r.Layer())
		l.Clear()
		l.DrawEllipseMarker(geom.Circle(geom.Pt(m.X, m.Y), s.opts.markerRadius), c)
		s.markers[r] = m
		s.placed[r] = true
		s.pending[r] = false
	}
}
