package maskdraw

import "fmt"

// Mode is the single interaction a Session currently accepts gestures for.
type Mode uint8

const (
	// Idle accepts draw, marker, auto-mask and slice gestures.
	Idle Mode = iota

	// DrawingCurve collects outline clicks.
	DrawingCurve

	// Erasing removes painted curve pixels under the drag brush.
	Erasing

	// Filled holds a filled stroke region that has not been saved.
	Filled

	// Saved follows a successful curve save.
	Saved

	// MarkingPre waits for the pre-synaptic marker click.
	MarkingPre

	// MarkingPost waits for the post-synaptic marker click.
	MarkingPost
)

// String returns a human-readable name for the mode.
func (m Mode) String() string {
	switch m {
	case Idle:
		return "Idle"
	case DrawingCurve:
		return "DrawingCurve"
	case Erasing:
		return "Erasing"
	case Filled:
		return "Filled"
	case Saved:
		return "Saved"
	case MarkingPre:
		return "MarkingPre"
	case MarkingPost:
		return "MarkingPost"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	for c := Idle; c <= MarkingPost; c++ {
		if c.String() == string(b) {
			*m = c
			return nil
		}
	}
	return fmt.Errorf("maskdraw: unknown mode %q", b)
}

// IsMarking reports whether m waits for a marker click.
func (m Mode) IsMarking() bool {
	return m == MarkingPre || m == MarkingPost
}

// stable reports whether m is one of the modes marking and auto-mask
// retrieval may start from.
func (m Mode) stable() bool {
	return m == Idle || m == Filled || m == Saved
}

// Affordances lists the page controls that are legal in the current mode.
type Affordances struct {
	Draw       bool `json:"draw"`
	Fill       bool `json:"fill"`
	Revise     bool `json:"revise"`
	Save       bool `json:"save"`
	PreMarker  bool `json:"preMarker"`
	PostMarker bool `json:"postMarker"`
	AutoMask   bool `json:"autoMask"`
	Slices     bool `json:"slices"`
}
