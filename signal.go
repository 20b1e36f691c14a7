package maskdraw

import (
	"fmt"

	"github.com/google/uuid"
)

// SignalKind identifies a notification sent to the surrounding page.
type SignalKind uint8

const (
	// SignalModeChanged reports a new mode and the controls to enable.
	SignalModeChanged SignalKind = iota

	// SignalFillFailed reports a fill with fewer than three points.
	SignalFillFailed

	// SignalSaveStarted reports that a gateway call is in flight; the page
	// disables every control until it settles.
	SignalSaveStarted

	// SignalSaveFinished reports a settled gateway call. Err is set on
	// failure.
	SignalSaveFinished

	// SignalVisibility reports which stored artifacts to show.
	SignalVisibility
)

// String returns the name of the signal kind.
func (k SignalKind) String() string {
	switch k {
	case SignalModeChanged:
		return "modeChanged"
	case SignalFillFailed:
		return "fillFailed"
	case SignalSaveStarted:
		return "saveStarted"
	case SignalSaveFinished:
		return "saveFinished"
	case SignalVisibility:
		return "visibility"
	default:
		return fmt.Sprintf("SignalKind(%d)", uint8(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k SignalKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Signal is a notification from a Session to the surrounding page.
type Signal struct {
	Session     uuid.UUID   `json:"session"`
	Kind        SignalKind  `json:"kind"`
	Mode        Mode        `json:"mode"`
	Affordances Affordances `json:"affordances"`
	Visibility  Visibility  `json:"visibility"`
	Layer       string      `json:"layer,omitempty"` // saved layer, for save signals
	Err         string      `json:"error,omitempty"`
}

// Notifier receives session signals. Notify is called with the session
// lock held and must not block or call back into the session.
type Notifier interface {
	Notify(Signal)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Signal)

// Notify calls f(s).
func (f NotifierFunc) Notify(s Signal) { f(s) }

type nopNotifier struct{}

func (nopNotifier) Notify(Signal) {}
