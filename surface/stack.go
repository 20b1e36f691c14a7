// Copyright 2026 The maskdraw Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"
	"image/draw"
	"sort"
)

// zTables gives the stacking order of every layer when a given layer is the
// active one: the active layer on top, the curve layer at the bottom while a
// marker is placed.
var zTables = [layerCount][layerCount]int{
	LayerCurve:      {LayerCurve: 3, LayerPreMarker: 1, LayerPostMarker: 2},
	LayerPreMarker:  {LayerCurve: 1, LayerPreMarker: 3, LayerPostMarker: 2},
	LayerPostMarker: {LayerCurve: 1, LayerPreMarker: 2, LayerPostMarker: 3},
}

// Stack holds the curve, pre-marker and post-marker layers of one editing
// session. It keeps at most one layer in CompositeSubtractive.
type Stack struct {
	layers [layerCount]*Layer
	active LayerKind
}

// NewStack creates the three layers with the given dimensions, the curve
// layer on top.
func NewStack(width, height int) *Stack {
	s := &Stack{}
	for _, k := range Kinds {
		s.layers[k] = NewLayer(k, width, height)
	}
	s.Raise(LayerCurve)
	return s
}

// Layer returns the layer of the given kind.
func (s *Stack) Layer(k LayerKind) *Layer {
	return s.layers[k]
}

// Width returns the shared layer width.
func (s *Stack) Width() int { return s.layers[LayerCurve].Width() }

// Height returns the shared layer height.
func (s *Stack) Height() int { return s.layers[LayerCurve].Height() }

// Resize resizes one layer to the displayed image rectangle, discarding
// its content.
func (s *Stack) Resize(k LayerKind, width, height int) {
	s.layers[k].Resize(width, height)
}

// ResizeAll resizes every layer, discarding all content.
func (s *Stack) ResizeAll(width, height int) {
	for _, l := range s.layers {
		l.Resize(width, height)
	}
}

// Raise makes k the active layer and restacks the others.
func (s *Stack) Raise(k LayerKind) {
	s.active = k
	for kind, z := range zTables[k] {
		s.layers[kind].SetZOrder(z)
	}
}

// Active returns the most recently raised layer.
func (s *Stack) Active() LayerKind { return s.active }

// SetSubtractive puts k in CompositeSubtractive and every other layer in
// CompositeNormal.
func (s *Stack) SetSubtractive(k LayerKind) {
	for kind, l := range s.layers {
		if LayerKind(kind) == k {
			l.SetCompositeMode(CompositeSubtractive)
		} else {
			l.SetCompositeMode(CompositeNormal)
		}
	}
}

// ResetComposite puts every layer back in CompositeNormal.
func (s *Stack) ResetComposite() {
	for _, l := range s.layers {
		l.SetCompositeMode(CompositeNormal)
	}
}

// Subtractive returns the layer currently in CompositeSubtractive, if any.
func (s *Stack) Subtractive() (*Layer, bool) {
	for _, l := range s.layers {
		if l.CompositeMode() == CompositeSubtractive {
			return l, true
		}
	}
	return nil, false
}

// Ordered returns the layers from bottom to top.
func (s *Stack) Ordered() []*Layer {
	out := make([]*Layer, 0, len(s.layers))
	out = append(out, s.layers[:]...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ZOrder() < out[j].ZOrder()
	})
	return out
}

// Composite flattens the visible layers in z-order into a new image.
func (s *Stack) Composite() *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, s.Width(), s.Height()))
	for _, l := range s.Ordered() {
		if !l.Visible() {
			continue
		}
		draw.Draw(dst, dst.Bounds(), l.img, image.Point{}, draw.Over)
	}
	return dst
}
