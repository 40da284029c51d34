// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpusort

import (
	"strings"
	"testing"
	"text/template"
)

// TestShaderTemplate_SourceParses guards the embedded WGSL against stray
// template actions. An unparseable source would panic every importer at
// package init, so any brace pair in the shader (comments included) must
// be a valid placeholder.
func TestShaderTemplate_SourceParses(t *testing.T) {
	if _, err := template.New("radix_sort.wgsl").Parse(radixSortWGSL); err != nil {
		t.Fatalf("embedded shader source failed to parse: %v", err)
	}
}

func TestResolveShaderParams_SweepSizes(t *testing.T) {
	tests := []struct {
		width  uint32
		sweep0 uint32
		sweep1 uint32
		sweep2 uint32
	}{
		{256, 1, 1, 1},
		{128, 2, 1, 1},
		{64, 4, 1, 1},
		{32, 8, 1, 1},
		{16, 16, 1, 1},
	}
	for _, tt := range tests {
		p, err := resolveShaderParams(tt.width)
		if err != nil {
			t.Fatalf("resolveShaderParams(%d) error: %v", tt.width, err)
		}
		if p.Sweep0Size != tt.sweep0 || p.Sweep1Size != tt.sweep1 || p.Sweep2Size != tt.sweep2 {
			t.Errorf("width %d: sweep sizes = (%d, %d, %d), want (%d, %d, %d)",
				tt.width, p.Sweep0Size, p.Sweep1Size, p.Sweep2Size,
				tt.sweep0, tt.sweep1, tt.sweep2)
		}
	}
}

func TestResolveShaderParams_Offsets(t *testing.T) {
	for _, width := range []uint32{16, 32, 64, 128, 256} {
		p, err := resolveShaderParams(width)
		if err != nil {
			t.Fatalf("resolveShaderParams(%d) error: %v", width, err)
		}
		if p.Sweep0Offset != RadixSize {
			t.Errorf("width %d: Sweep0Offset = %d, want %d", width, p.Sweep0Offset, RadixSize)
		}
		if p.Sweep1Offset != p.Sweep0Offset+p.Sweep0Size {
			t.Errorf("width %d: Sweep1Offset = %d, want %d", width, p.Sweep1Offset, p.Sweep0Offset+p.Sweep0Size)
		}
		if p.Sweep2Offset != p.Sweep1Offset+p.Sweep1Size {
			t.Errorf("width %d: Sweep2Offset = %d, want %d", width, p.Sweep2Offset, p.Sweep1Offset+p.Sweep1Size)
		}
		if p.SweepEndOffset != p.Sweep2Offset+p.Sweep2Size {
			t.Errorf("width %d: SweepEndOffset = %d, want %d", width, p.SweepEndOffset, p.Sweep2Offset+p.Sweep2Size)
		}
	}
}

func TestResolveShaderParams_Smem(t *testing.T) {
	for _, width := range []uint32{16, 32, 64, 128, 256} {
		p, err := resolveShaderParams(width)
		if err != nil {
			t.Fatalf("resolveShaderParams(%d) error: %v", width, err)
		}
		if p.SmemDwords < RadixSize {
			t.Errorf("width %d: SmemDwords = %d, smaller than one radix row", width, p.SmemDwords)
		}
		if p.SmemDwords != p.SweepEndOffset {
			t.Errorf("width %d: SmemDwords = %d, want %d", width, p.SmemDwords, p.SweepEndOffset)
		}
		// Default WebGPU workgroup storage is 16 KiB; the layout must
		// fit at every candidate width.
		if p.SmemDwords*4 > 16384 {
			t.Errorf("width %d: workgroup memory %d bytes exceeds the 16 KiB floor", width, p.SmemDwords*4)
		}
	}
}

func TestResolveShaderParams_ZeroWidth(t *testing.T) {
	if _, err := resolveShaderParams(0); err == nil {
		t.Error("resolveShaderParams(0) should fail")
	}
}

func TestExpandShader_AllWidths(t *testing.T) {
	for _, width := range []uint32{16, 32, 64, 128, 256} {
		p, err := resolveShaderParams(width)
		if err != nil {
			t.Fatalf("resolveShaderParams(%d) error: %v", width, err)
		}
		src, err := p.expandShader()
		if err != nil {
			t.Fatalf("width %d: expandShader() error: %v", width, err)
		}
		if strings.Contains(src, "{{") || strings.Contains(src, "}}") {
			t.Errorf("width %d: expanded shader still contains template braces", width)
		}
	}
}

func TestExpandShader(t *testing.T) {
	p, err := resolveShaderParams(64)
	if err != nil {
		t.Fatal(err)
	}
	src, err := p.expandShader()
	if err != nil {
		t.Fatalf("expandShader() error: %v", err)
	}

	if strings.Contains(src, "{{") {
		t.Error("expanded shader still contains template placeholders")
	}
	for _, want := range []string{
		"const WG_SIZE: u32 = 64u;",
		"const RADIX_SIZE: u32 = 256u;",
		"const PASSES: u32 = 4u;",
		"fn zero_histograms(",
		"fn calculate_histogram(",
		"fn prefix_histogram(",
		"fn scatter_even(",
		"fn scatter_odd(",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("expanded shader missing %q", want)
		}
	}
}
