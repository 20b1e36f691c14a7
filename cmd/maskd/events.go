package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/synanno/maskdraw"
	"github.com/synanno/maskdraw/geom"
	"github.com/synanno/maskdraw/surface"
)

// envelope is the JSON form of a gesture posted to /events.
//
// Positions are in layer pixels unless Display is set, in which case they
// are client coordinates inside the displayed image rectangle
// [x0, y0, x1, y1].
type envelope struct {
	Type    string           `json:"type"`
	X       float64          `json:"x"`
	Y       float64          `json:"y"`
	ScreenX float64          `json:"screenX"`
	ScreenY float64          `json:"screenY"`
	Buttons int              `json:"buttons"`
	Display *[4]float64      `json:"display,omitempty"`
	Role    string           `json:"role"`
	Layer   string           `json:"layer"`
	Slice   int              `json:"slice"`
	Target  *maskdraw.Target `json:"target,omitempty"`
	Width   int              `json:"width"`
	Height  int              `json:"height"`
}

// decodeEvent converts an envelope into a session event. w and h are the
// current layer size; maxSize bounds the size a newTarget may request.
func decodeEvent(data []byte, w, h, maxSize int) (maskdraw.Event, error) {
	var e envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}

	pos := geom.Pt(e.X, e.Y)
	if e.Display != nil {
		d := e.Display
		pos = geom.MapToSurface(pos, geom.NewRect(geom.Pt(d[0], d[1]), geom.Pt(d[2], d[3])), w, h)
	}

	switch e.Type {
	case "enterDraw":
		return maskdraw.EnterDraw{}, nil
	case "curveClick":
		return maskdraw.CurveClick{Pos: pos}, nil
	case "toggleRevise":
		return maskdraw.ToggleRevise{}, nil
	case "pointerDrag":
		return maskdraw.PointerDrag{Pos: pos, Screen: geom.Pt(e.ScreenX, e.ScreenY), Buttons: e.Buttons}, nil
	case "fill":
		return maskdraw.FillRequested{}, nil
	case "beginMarking":
		r, err := maskdraw.ParseRole(e.Role)
		if err != nil {
			return nil, err
		}
		return maskdraw.BeginMarking{Role: r}, nil
	case "markerClick":
		return maskdraw.MarkerClick{Pos: pos}, nil
	case "save":
		k, err := surface.ParseLayerKind(e.Layer)
		if err != nil {
			return nil, err
		}
		return maskdraw.SaveRequested{Kind: k}, nil
	case "autoMask":
		return maskdraw.AutoMaskRequested{}, nil
	case "viewSlice":
		return maskdraw.ViewSlice{Slice: e.Slice}, nil
	case "reset":
		return maskdraw.Reset{}, nil
	case "newTarget":
		if e.Target == nil {
			return nil, errors.New("newTarget without target")
		}
		if e.Width < 0 || e.Height < 0 || e.Width > maxSize || e.Height > maxSize {
			return nil, fmt.Errorf("%w: %dx%d, max %d", maskdraw.ErrCanvasSize, e.Width, e.Height, maxSize)
		}
		return maskdraw.NewTarget{Target: *e.Target, Width: e.Width, Height: e.Height}, nil
	}
	return nil, fmt.Errorf("unknown event type %q", e.Type)
}
