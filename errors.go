package maskdraw

import (
	"errors"

	"github.com/synanno/maskdraw/geom"
)

// ErrInsufficientPoints is returned when a fill is requested with fewer
// than three clicked points. The curve layer is left unchanged.
var ErrInsufficientPoints = geom.ErrInsufficientPoints

// ErrGatewayUnavailable wraps every failed persistence call. The session
// keeps its mode and buffers so the save can be retried.
var ErrGatewayUnavailable = errors.New("maskdraw: persistence gateway unavailable")

// ErrInvalidTransition is reported for gestures that are not legal in the
// current mode. Session.Dispatch swallows it.
var ErrInvalidTransition = errors.New("maskdraw: invalid mode transition")

// ErrBusy is reported for gestures that arrive while a gateway call is in
// flight. Session.Dispatch swallows it.
var ErrBusy = errors.New("maskdraw: gateway call in flight")

// ErrCanvasSize is returned for a NewTarget whose layer size is negative or
// larger than the configured maximum. The session is left unchanged.
var ErrCanvasSize = errors.New("maskdraw: canvas size out of range")
