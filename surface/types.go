// Copyright 2026 The maskdraw Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"fmt"
	"image/color"

	"github.com/synanno/maskdraw/internal/blend"
)

// LayerKind identifies one of the three raster layers.
type LayerKind uint8

const (
	// LayerCurve holds the mask stroke.
	LayerCurve LayerKind = iota

	// LayerPreMarker holds the pre-synaptic marker.
	LayerPreMarker

	// LayerPostMarker holds the post-synaptic marker.
	LayerPostMarker

	layerCount
)

// Kinds lists every layer kind in declaration order.
var Kinds = [layerCount]LayerKind{LayerCurve, LayerPreMarker, LayerPostMarker}

// String returns the name used for the layer in stored raster file names.
func (k LayerKind) String() string {
	switch k {
	case LayerCurve:
		return "curve"
	case LayerPreMarker:
		return "circlePre"
	case LayerPostMarker:
		return "circlePost"
	default:
		return fmt.Sprintf("LayerKind(%d)", uint8(k))
	}
}

// ParseLayerKind parses the name produced by LayerKind.String.
// The role names "pre" and "post" are accepted for the marker layers.
func ParseLayerKind(s string) (LayerKind, error) {
	switch s {
	case "curve":
		return LayerCurve, nil
	case "circlePre", "pre":
		return LayerPreMarker, nil
	case "circlePost", "post":
		return LayerPostMarker, nil
	}
	return 0, fmt.Errorf("surface: unknown layer kind %q", s)
}

// IsMarker reports whether k is one of the marker layers.
func (k LayerKind) IsMarker() bool {
	return k == LayerPreMarker || k == LayerPostMarker
}

// CompositeMode specifies how drawing primitives combine with the pixels
// already on a layer.
type CompositeMode uint8

const (
	// CompositeNormal paints source over destination.
	CompositeNormal CompositeMode = iota

	// CompositeSubtractive removes destination pixels under the source.
	CompositeSubtractive
)

// String returns the name of the mode.
func (m CompositeMode) String() string {
	switch m {
	case CompositeNormal:
		return "normal"
	case CompositeSubtractive:
		return "subtractive"
	default:
		return fmt.Sprintf("CompositeMode(%d)", uint8(m))
	}
}

// blendMode maps the composite mode onto its Porter-Duff operator.
func (m CompositeMode) blendMode() blend.BlendMode {
	if m == CompositeSubtractive {
		return blend.BlendDestinationOut
	}
	return blend.BlendSourceOver
}

// Default colors used by the editing session.
var (
	// MaskColor is the fill of the stroke region: magenta at 70% opacity.
	MaskColor color.Color = color.NRGBA{R: 255, G: 0, B: 255, A: 178}

	// PreMarkerColor is the pre-synaptic marker fill.
	PreMarkerColor color.Color = color.NRGBA{R: 0, G: 255, B: 0, A: 255}

	// PostMarkerColor is the post-synaptic marker fill.
	PostMarkerColor color.Color = color.NRGBA{R: 0, G: 0, B: 255, A: 255}

	// PreviewLineColor strokes the click preview.
	PreviewLineColor color.Color = color.Black

	// PreviewPointColor marks the clicked points in the preview.
	PreviewPointColor color.Color = color.NRGBA{R: 255, G: 0, B: 0, A: 255}
)

// toBlendColor converts c to premultiplied 8-bit channels.
func toBlendColor(c color.Color) blend.Color {
	if c == nil {
		return blend.Color{A: 255}
	}
	r, g, b, a := c.RGBA()
	//nolint:gosec // G115: safe - r>>8 is always in [0, 255]
	return blend.Color{
		R: uint8(r >> 8),
		G: uint8(g >> 8),
		B: uint8(b >> 8),
		A: uint8(a >> 8),
	}
}
