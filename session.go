package maskdraw

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/synanno/maskdraw/geom"
	"github.com/synanno/maskdraw/surface"
)

// Session is the editing session of one image instance: the clicked
// outline, the active mode and the three raster layers.
//
// All gestures go through Dispatch, which is safe for concurrent use.
// While a gateway call is in flight every other gesture is ignored.
type Session struct {
	mu   sync.Mutex
	id   uuid.UUID
	gw   Gateway
	opts options

	stack *surface.Stack
	mode  Mode
	prior Mode // mode to return to after marking or erasing

	points   []geom.Point
	boundary []geom.Point // cached SampleCurve result, nil when stale

	markers [2]MarkerCoordinate
	placed  [2]bool
	pending [2]bool // placed but not stored yet

	target     Target
	imageIndex int
	viewed     int
	curveSlice int
	source     CurveSource
	vis        Visibility

	busy       bool
	lastScreen geom.Point
	dragging   bool
}

// NewSession creates an idle session that stores rasters through gw.
func NewSession(gw Gateway, opts ...Option) *Session {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Session{
		id:    uuid.New(),
		gw:    gw,
		opts:  o,
		stack: surface.NewStack(o.width, o.height),
		mode:  Idle,
	}
}

// ID returns the session identifier carried by every Signal.
func (s *Session) ID() uuid.UUID { return s.id }

func (s *Session) logger() *slog.Logger {
	return Logger().With("session", s.id.String())
}

// Dispatch applies one gesture.
//
// Gestures that are illegal in the current mode, or that arrive while a
// gateway call is in flight, are ignored and return nil. The returned
// error is ErrInsufficientPoints for a rejected fill or wraps
// ErrGatewayUnavailable for a failed gateway call; in both cases the mode
// and buffers are kept so the gesture can be retried. A NewTarget with an
// out of range layer size returns ErrCanvasSize and changes nothing.
func (s *Session) Dispatch(ctx context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, beforeAff := s.mode, s.affordances()
	err := s.handle(ctx, ev)
	if s.mode != before || s.affordances() != beforeAff {
		s.emit(Signal{Kind: SignalModeChanged})
	}

	if errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrBusy) {
		s.logger().Debug("gesture ignored", "event", eventName(ev), "mode", s.mode, "reason", err)
		return nil
	}
	return err
}

func eventName(ev Event) string {
	if ev == nil {
		return "nil"
	}
	return ev.eventName()
}

func (s *Session) handle(ctx context.Context, ev Event) error {
	if s.busy {
		return ErrBusy
	}
	switch ev := ev.(type) {
	case EnterDraw:
		return s.enterDraw()
	case CurveClick:
		return s.curveClick(ev.Pos)
	case ToggleRevise:
		return s.toggleRevise()
	case PointerDrag:
		return s.drag(ev)
	case FillRequested:
		return s.fill()
	case BeginMarking:
		return s.beginMarking(ev.Role)
	case MarkerClick:
		return s.markerClick(ctx, ev.Pos)
	case SaveRequested:
		return s.save(ctx, ev.Kind)
	case AutoMaskRequested:
		return s.autoMask(ctx)
	case ViewSlice:
		return s.viewSlice(ev.Slice)
	case Reset:
		s.reset()
		return nil
	case NewTarget:
		return s.newTarget(ctx, ev)
	}
	return fmt.Errorf("%w: unknown event %T", ErrInvalidTransition, ev)
}

// call runs a gateway call with the session unlocked. Gestures dispatched
// meanwhile see busy and are ignored.
func (s *Session) call(ctx context.Context, what string, fn func(context.Context) error) (err error) {
	s.busy = true
	s.emit(Signal{Kind: SignalSaveStarted, Layer: what})

	func() {
		s.mu.Unlock()
		defer s.mu.Lock()
		err = fn(ctx)
	}()

	s.busy = false
	sig := Signal{Kind: SignalSaveFinished, Layer: what}
	if err != nil {
		sig.Err = err.Error()
	}
	s.emit(sig)
	return err
}

func (s *Session) emit(sig Signal) {
	sig.Session = s.id
	sig.Mode = s.mode
	sig.Affordances = s.affordances()
	sig.Visibility = s.vis
	s.opts.notifier.Notify(sig)
}

// affordances derives the enabled page controls from the mode.
func (s *Session) affordances() Affordances {
	if s.busy {
		return Affordances{}
	}
	m := s.mode
	return Affordances{
		Draw:       m.stable() || m == DrawingCurve || m == Erasing,
		Fill:       (m == DrawingCurve || m == Filled) && len(s.points) >= geom.MinCurvePoints,
		Revise:     (m == DrawingCurve && len(s.points) > 0) || m == Filled || m == Erasing,
		Save:       s.curveSavable(),
		PreMarker:  m.stable() || m == MarkingPre,
		PostMarker: m.stable() || m == MarkingPost,
		AutoMask:   m.stable(),
		Slices:     m == Idle || m == Saved,
	}
}

// applyVisibility copies the visibility bookkeeping onto the layers and
// tells the page.
func (s *Session) applyVisibility() {
	s.stack.Layer(surface.LayerCurve).SetVisible(s.vis.Curve)
	s.stack.Layer(surface.LayerPreMarker).SetVisible(s.vis.Pre)
	s.stack.Layer(surface.LayerPostMarker).SetVisible(s.vis.Post)
	s.emit(Signal{Kind: SignalVisibility})
}

// markerOn reports whether the role's marker was placed on slice.
func (s *Session) markerOn(r Role, slice int) bool {
	return s.placed[r] && s.markers[r].Z == slice
}

// Mode returns the current mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Points returns a copy of the clicked outline points.
func (s *Session) Points() []geom.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.points)
}

// Marker returns the role's marker coordinate, if one was placed.
func (s *Session) Marker(r Role) (MarkerCoordinate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r > RolePost {
		return MarkerCoordinate{}, false
	}
	return s.markers[r], s.placed[r]
}

// Snapshot returns a copy of one layer's pixels.
func (s *Session) Snapshot(k surface.LayerKind) *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stack.Layer(k).Snapshot()
}

// LayerPNG serializes one layer.
func (s *Session) LayerPNG(k surface.LayerKind) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stack.Layer(k).ToImage()
}

// Size returns the layer size in pixels.
func (s *Session) Size() (width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stack.Width(), s.stack.Height()
}

// Composite flattens the visible layers in z-order.
func (s *Session) Composite() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stack.Composite()
}

// State is a point-in-time view of a Session.
type State struct {
	Session     uuid.UUID                   `json:"session"`
	Mode        Mode                        `json:"mode"`
	Points      int                         `json:"points"`
	Affordances Affordances                 `json:"affordances"`
	Visibility  Visibility                  `json:"visibility"`
	Source      CurveSource                 `json:"curveSource"`
	Target      Target                      `json:"target"`
	ImageIndex  int                         `json:"imageIndex"`
	ViewedSlice int                         `json:"viewedSlice"`
	Markers     map[string]MarkerCoordinate `json:"markers"`
	Busy        bool                        `json:"busy"`
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{
		Session:     s.id,
		Mode:        s.mode,
		Points:      len(s.points),
		Affordances: s.affordances(),
		Visibility:  s.vis,
		Source:      s.source,
		Target:      s.target,
		ImageIndex:  s.imageIndex,
		ViewedSlice: s.viewed,
		Markers:     make(map[string]MarkerCoordinate, 2),
		Busy:        s.busy,
	}
	st.Target.BoundingBox = slices.Clone(s.target.BoundingBox)
	for _, r := range []Role{RolePre, RolePost} {
		if s.placed[r] {
			st.Markers[r.String()] = s.markers[r]
		}
	}
	return st
}
