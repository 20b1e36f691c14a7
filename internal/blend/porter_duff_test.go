// Copyright 2026 The maskdraw Authors
// SPDX-License-Identifier: BSD-3-Clause

package blend

import "testing"

// TestBlendSourceOver tests the SourceOver blend mode.
func TestBlendSourceOver(t *testing.T) {
	tests := []struct {
		name           string
		sr, sg, sb, sa byte
		dr, dg, db, da byte
		wantR, wantA   byte
	}{
		{"opaque source replaces", 255, 0, 0, 255, 0, 0, 255, 255, 255, 255},
		{"transparent source keeps dst", 0, 0, 0, 0, 0, 0, 200, 200, 0, 200},
		{"onto transparent dst", 178, 0, 178, 178, 0, 0, 0, 0, 178, 178},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _, a := blendSourceOver(tt.sr, tt.sg, tt.sb, tt.sa, tt.dr, tt.dg, tt.db, tt.da)
			if r != tt.wantR || a != tt.wantA {
				t.Errorf("blendSourceOver() r,a = (%d, %d), want (%d, %d)", r, a, tt.wantR, tt.wantA)
			}
		})
	}
}

// TestBlendDestinationOut tests the DestinationOut blend mode.
func TestBlendDestinationOut(t *testing.T) {
	tests := []struct {
		name  string
		sa    byte
		da    byte
		wantA byte
	}{
		{"opaque source erases", 255, 178, 0},
		{"transparent source keeps", 0, 178, 178},
		{"half source halves", 128, 200, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, a := blendDestinationOut(0, 0, 0, tt.sa, tt.da, 0, tt.da, tt.da)
			if a != tt.wantA {
				t.Errorf("blendDestinationOut() a = %d, want %d", a, tt.wantA)
			}
		})
	}
}

func TestSpan(t *testing.T) {
	dst := make([]byte, 3*4)
	coverage := []byte{0, 255, 128}
	src := Color{R: 0, G: 255, B: 0, A: 255}

	Span(dst, coverage, src, BlendSourceOver)

	if dst[0] != 0 || dst[3] != 0 {
		t.Errorf("pixel 0 = %v, want untouched", dst[0:4])
	}
	if dst[5] != 255 || dst[7] != 255 {
		t.Errorf("pixel 1 = %v, want opaque green", dst[4:8])
	}
	if dst[9] != 128 || dst[11] != 128 {
		t.Errorf("pixel 2 = %v, want half green", dst[8:12])
	}

	Span(dst, []byte{255, 255, 0}, src, BlendDestinationOut)
	if dst[7] != 0 {
		t.Errorf("pixel 1 alpha after erase = %d, want 0", dst[7])
	}
	if dst[11] != 128 {
		t.Errorf("pixel 2 alpha after erase = %d, want untouched 128", dst[11])
	}
}

func TestGetBlendFunc_Unknown(t *testing.T) {
	fn := GetBlendFunc(BlendMode(200))
	_, _, _, a := fn(0, 0, 0, 255, 0, 0, 0, 0)
	if a != 255 {
		t.Errorf("unknown mode should fall back to source-over, got a=%d", a)
	}
}

func TestBlendMode_String(t *testing.T) {
	if BlendDestinationOut.String() != "destination-out" {
		t.Errorf("String() = %q", BlendDestinationOut.String())
	}
}
