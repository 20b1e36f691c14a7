package maskdraw

import "github.com/synanno/maskdraw/geom"

// Event is a discrete user gesture consumed by Session.Dispatch.
type Event interface {
	eventName() string
}

// ButtonPrimary is the pointer button bit that drives erasing.
const ButtonPrimary = 1

// EnterDraw starts a new curve, or abandons the current one when a curve
// is already being drawn.
type EnterDraw struct{}

// CurveClick adds an outline point.
type CurveClick struct {
	Pos geom.Point
}

// ToggleRevise switches erasing on or off.
type ToggleRevise struct{}

// PointerDrag is a pointer move over the curve layer.
type PointerDrag struct {
	Pos     geom.Point // layer coordinates
	Screen  geom.Point // client coordinates, used to drop repeated samples
	Buttons int        // pressed button bits
}

// FillRequested thickens the outline into the stroke region.
type FillRequested struct{}

// BeginMarking arms the next click as a marker for Role.
type BeginMarking struct {
	Role Role
}

// MarkerClick places the armed marker.
type MarkerClick struct {
	Pos geom.Point
}

// SaveRequested stores one layer through the Gateway.
type SaveRequested struct {
	Kind MaskKind
}

// AutoMaskRequested loads the model-generated curve mask.
type AutoMaskRequested struct{}

// ViewSlice changes the slice shown to the annotator.
type ViewSlice struct {
	Slice int
}

// Reset discards the current curve and pending markers.
type Reset struct{}

// NewTarget switches to another image instance. Non-zero Width and Height
// rebind the layers to the displayed image rectangle; neither may exceed
// the session's maximum canvas size.
type NewTarget struct {
	Target        Target
	Width, Height int
}

func (EnterDraw) eventName() string         { return "enterDraw" }
func (CurveClick) eventName() string        { return "curveClick" }
func (ToggleRevise) eventName() string      { return "toggleRevise" }
func (PointerDrag) eventName() string       { return "pointerDrag" }
func (FillRequested) eventName() string     { return "fill" }
func (BeginMarking) eventName() string      { return "beginMarking" }
func (MarkerClick) eventName() string       { return "markerClick" }
func (SaveRequested) eventName() string     { return "save" }
func (AutoMaskRequested) eventName() string { return "autoMask" }
func (ViewSlice) eventName() string         { return "viewSlice" }
func (Reset) eventName() string             { return "reset" }
func (NewTarget) eventName() string         { return "newTarget" }
