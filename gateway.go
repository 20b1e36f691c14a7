package maskdraw

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/synanno/maskdraw/surface"
)

// MaskKind names the raster artifact being stored.
type MaskKind = surface.LayerKind

// Mask kinds accepted by Gateway.SubmitMask.
const (
	MaskCurve      = surface.LayerCurve
	MaskPreMarker  = surface.LayerPreMarker
	MaskPostMarker = surface.LayerPostMarker
)

// MaskSubmission is a serialized layer together with its target metadata.
type MaskSubmission struct {
	Raster  []byte // PNG
	ImageID int
	Page    int
	Slice   int // viewed slice at save time
	Kind    MaskKind
}

// MarkerSubmission is a marker coordinate stored alongside its raster.
type MarkerSubmission struct {
	X, Y    float64
	Z       int
	ImageID int
	Page    int
	Role    Role
}

// SaveResult is the bookkeeping returned for a stored mask.
type SaveResult struct {
	AdjustedBoundingBox []int `json:"Adjusted_Bbox"`
	ImageIndex          int   `json:"Image_Index"`
	MiddleSlice         int   `json:"Middle_Slice"`
}

// MaskKey addresses a stored raster.
type MaskKey struct {
	ImageID     int
	Kind        MaskKind
	Slice       int
	BoundingBox []int

	// Auto selects the model-generated curve mask, which is keyed by the
	// middle slice only.
	Auto bool
}

// Path returns the deterministic storage path of the raster, relative to
// the mask root.
func (k MaskKey) Path() string {
	if k.Auto {
		return fmt.Sprintf("%d/auto_curve_idx_%d_slice_%d.png", k.ImageID, k.ImageID, k.Slice)
	}
	box := make([]string, len(k.BoundingBox))
	for i, v := range k.BoundingBox {
		box[i] = strconv.Itoa(v)
	}
	return fmt.Sprintf("%d/%s_idx_%d_slice_%d_cor_%s.png",
		k.ImageID, k.Kind, k.ImageID, k.Slice, strings.Join(box, "_"))
}

// Gateway stores finished rasters and answers questions about stored ones.
//
// Implementations must be safe for concurrent use. Errors are wrapped with
// ErrGatewayUnavailable by the Session.
type Gateway interface {
	// SubmitMask stores a raster and returns the target's bookkeeping.
	SubmitMask(ctx context.Context, m MaskSubmission) (SaveResult, error)

	// SubmitMarkerCoordinate stores a marker position.
	SubmitMarkerCoordinate(ctx context.Context, m MarkerSubmission) error

	// QueryAutoMask returns the model-generated curve raster for the image
	// instance centered on middleSlice, or false when none exists.
	QueryAutoMask(ctx context.Context, imageID, middleSlice int) ([]byte, bool, error)

	// MaskExists reports whether a raster is stored under key.
	MaskExists(ctx context.Context, key MaskKey) (bool, error)
}

// MarkerLookup is implemented by gateways that can return the marker
// coordinates stored for an image. NewTarget restores them when the
// session's gateway implements it.
type MarkerLookup interface {
	// StoredMarkers returns the stored markers of imageID by role. A
	// missing role has no stored marker.
	StoredMarkers(ctx context.Context, imageID int) (map[Role]MarkerCoordinate, error)
}
