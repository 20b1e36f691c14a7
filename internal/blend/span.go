// Copyright 2026 The maskdraw Authors
// SPDX-License-Identifier: BSD-3-Clause

package blend

// Color is a premultiplied RGBA color with 8-bit channels.
type Color struct {
	R, G, B, A byte
}

// Scale returns c with every channel multiplied by coverage/255.
// A coverage of 255 returns c unchanged.
func (c Color) Scale(coverage byte) Color {
	if coverage == 255 {
		return c
	}
	return Color{
		R: mulDiv255(c.R, coverage),
		G: mulDiv255(c.G, coverage),
		B: mulDiv255(c.B, coverage),
		A: mulDiv255(c.A, coverage),
	}
}

// Span composites src onto the premultiplied RGBA pixels in dst, weighting
// each pixel by the matching byte in coverage. dst holds 4 bytes per
// coverage byte; pixels with zero coverage are left untouched.
func Span(dst []byte, coverage []byte, src Color, mode BlendMode) {
	fn := GetBlendFunc(mode)
	for i, cov := range coverage {
		if cov == 0 {
			continue
		}
		s := src.Scale(cov)
		p := dst[i*4 : i*4+4 : i*4+4]
		p[0], p[1], p[2], p[3] = fn(s.R, s.G, s.B, s.A, p[0], p[1], p[2], p[3])
	}
}
