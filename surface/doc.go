// Copyright 2026 The maskdraw Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface provides the raster layers a mask is drawn on.
//
// An editing session draws on three independent layers:
//
//   - LayerCurve: the thickened mask stroke and its click preview
//   - LayerPreMarker: the pre-synaptic point marker
//   - LayerPostMarker: the post-synaptic point marker
//
// Each Layer is a premultiplied *image.RGBA with a z-order, a visibility
// flag and a CompositeMode. Drawing in CompositeSubtractive removes
// already-painted pixels under the brush instead of adding color, which is
// how parts of a filled mask are erased.
//
// Shapes are rasterized into coverage masks with golang.org/x/image/vector
// and composited with the Porter-Duff operators of internal/blend.
//
// # Usage
//
//	s := surface.NewStack(512, 512)
//	curve := s.Layer(surface.LayerCurve)
//
//	// Fill the stroke region around a sampled boundary
//	curve.CompositeClipFill(boundary, 20, surface.MaskColor)
//
//	// Erase under a brush
//	s.SetSubtractive(surface.LayerCurve)
//	curve.DrawEllipseMarker(geom.BrushEllipse(pos, 20), color.Black)
//
//	// Serialize for persistence
//	png, err := curve.ToImage()
//
// Layers are NOT thread-safe. The editing session owns them and serializes
// access.
package surface
