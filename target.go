package maskdraw

import "fmt"

// Target is the image instance being annotated.
type Target struct {
	ImageID     int   `json:"image_id" toml:"image_id" yaml:"image_id"`
	Page        int   `json:"page" toml:"page" yaml:"page"`
	MiddleSlice int   `json:"middle_slice" toml:"middle_slice" yaml:"middle_slice"`
	BoundingBox []int `json:"bounding_box" toml:"bounding_box" yaml:"bounding_box"`
}

// Visibility records which stored artifacts the page shows for the viewed
// slice.
type Visibility struct {
	Curve bool `json:"curve"`
	Pre   bool `json:"pre"`
	Post  bool `json:"post"`
}

// CurveSource tells which stored curve raster backs the curve layer.
type CurveSource uint8

const (
	// CurveNone means no curve mask exists for the target.
	CurveNone CurveSource = iota

	// CurveHuman is a mask drawn and saved by an annotator.
	CurveHuman

	// CurveAuto is a model-generated mask.
	CurveAuto
)

// String returns the name of the source.
func (c CurveSource) String() string {
	switch c {
	case CurveNone:
		return "none"
	case CurveHuman:
		return "human"
	case CurveAuto:
		return "auto"
	default:
		return fmt.Sprintf("CurveSource(%d)", uint8(c))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c CurveSource) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *CurveSource) UnmarshalText(b []byte) error {
	for v := CurveNone; v <= CurveAuto; v++ {
		if v.String() == string(b) {
			*c = v
			return nil
		}
	}
	return fmt.Errorf("maskdraw: unknown curve source %q", b)
}
