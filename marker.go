package maskdraw

import (
	"fmt"

	"github.com/synanno/maskdraw/surface"
)

// Role identifies a synaptic marker.
type Role uint8

const (
	// RolePre is the pre-synaptic marker.
	RolePre Role = iota

	// RolePost is the post-synaptic marker.
	RolePost
)

// String returns the role name used on the wire.
func (r Role) String() string {
	switch r {
	case RolePre:
		return "pre"
	case RolePost:
		return "post"
	default:
		return fmt.Sprintf("Role(%d)", uint8(r))
	}
}

// ParseRole parses "pre" or "post".
func ParseRole(s string) (Role, error) {
	switch s {
	case "pre":
		return RolePre, nil
	case "post":
		return RolePost, nil
	}
	return 0, fmt.Errorf("maskdraw: unknown marker role %q", s)
}

// Layer returns the layer holding the role's marker.
func (r Role) Layer() surface.LayerKind {
	if r == RolePost {
		return surface.LayerPostMarker
	}
	return surface.LayerPreMarker
}

// mode returns the marking mode for the role.
func (r Role) mode() Mode {
	if r == RolePost {
		return MarkingPost
	}
	return MarkingPre
}

// roleOf returns the role drawn on layer k.
func roleOf(k surface.LayerKind) (Role, bool) {
	switch k {
	case surface.LayerPreMarker:
		return RolePre, true
	case surface.LayerPostMarker:
		return RolePost, true
	}
	return 0, false
}

// MarkerCoordinate is the position of a marker and the slice it was placed
// on.
type MarkerCoordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z int     `json:"z"`
}
