// Copyright 2026 The maskdraw Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"
	"image/color"

	"github.com/synanno/maskdraw/geom"
)

// Surface is the drawing contract of a single mask layer.
//
// Surfaces are NOT thread-safe. Each surface should be used from a single
// goroutine, or external synchronization must be used.
type Surface interface {
	// Resize rebinds the surface to the displayed image rectangle.
	// Existing content is discarded.
	Resize(width, height int)

	// Clear makes every pixel transparent.
	Clear()

	// SetVisible shows or hides the surface.
	SetVisible(v bool)

	// SetZOrder sets the stacking order; higher values are on top.
	SetZOrder(z int)

	// SetCompositeMode selects painting or erasing for drawing primitives.
	SetCompositeMode(m CompositeMode)

	// DrawEllipseMarker draws a filled ellipse in the current composite mode.
	DrawEllipseMarker(e geom.Ellipse, c color.Color)

	// CompositeClipFill clears the surface and fills the stroke region
	// around boundary with c.
	CompositeClipFill(boundary []geom.Point, thickness float64, c color.Color)

	// ToImage serializes the surface for persistence.
	ToImage() ([]byte, error)

	// Snapshot returns a copy of the surface contents.
	Snapshot() *image.RGBA
}

// Verify Layer implements Surface.
var _ Surface = (*Layer)(nil)
