// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// params.go resolves the compile-time kernel parameters for one workgroup
// width and substitutes them into the embedded WGSL source. Parameters are
// resolved once at Sorter construction; changing the width means building
// a fresh Sorter, never mutating an existing one.

package gpusort

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"
)

//go:embed shaders/radix_sort.wgsl
var radixSortWGSL string

var shaderTemplate = template.Must(template.New("radix_sort.wgsl").Parse(radixSortWGSL))

// shaderParams holds every constant substituted into radix_sort.wgsl.
// The sweep offsets describe the workgroup-memory region the prefix and
// scatter kernels use for their hierarchical digit scans; they are
// functions of the width and the radix size only.
type shaderParams struct {
	// Width is the parallel-group width the kernels are compiled against.
	Width uint32

	// BlockRows and RadixSize mirror the package constants.
	BlockRows   uint32
	RadixSize   uint32
	DigitPasses uint32

	// Sweep0Size..Sweep2Size are the per-level lengths of the reduction
	// tree over one radix row: ceil(256/width), then ceil of that over
	// width again.
	Sweep0Size uint32
	Sweep1Size uint32
	Sweep2Size uint32

	// Sweep0Offset..SweepEndOffset are the derived workgroup-memory
	// offsets, in dwords, of the three sweep levels and the first dword
	// past them. The histogram row itself sits at offset zero.
	Sweep0Offset   uint32
	Sweep1Offset   uint32
	Sweep2Offset   uint32
	SweepEndOffset uint32

	// SmemDwords is the workgroup-memory size shared by all five entry
	// points: one radix row (histogram counts, reused as scatter
	// cursors) plus the sweep levels. Must stay within the device's
	// workgroup storage limit at every candidate width.
	SmemDwords uint32
}

// resolveShaderParams derives the kernel parameters for a workgroup
// width. The width is not checked against the device here: whether a
// width actually works is decided by the calibration probe, and an
// unsupported width surfaces as a pipeline-build configuration error.
func resolveShaderParams(width uint32) (shaderParams, error) {
	if width == 0 {
		return shaderParams{}, fmt.Errorf("gpusort: workgroup width must be positive")
	}

	p := shaderParams{
		Width:       width,
		BlockRows:   BlockRows,
		RadixSize:   RadixSize,
		DigitPasses: DigitPasses,
	}
	p.Sweep0Size = ceilDiv(RadixSize, width)
	p.Sweep1Size = ceilDiv(p.Sweep0Size, width)
	p.Sweep2Size = ceilDiv(p.Sweep1Size, width)

	p.Sweep0Offset = RadixSize
	p.Sweep1Offset = p.Sweep0Offset + p.Sweep0Size
	p.Sweep2Offset = p.Sweep1Offset + p.Sweep1Size
	p.SweepEndOffset = p.Sweep2Offset + p.Sweep2Size

	p.SmemDwords = p.SweepEndOffset

	return p, nil
}

// expandShader substitutes the parameters into the embedded WGSL source.
func (p shaderParams) expandShader() (string, error) {
	var buf bytes.Buffer
	if err := shaderTemplate.Execute(&buf, p); err != nil {
		return "", fmt.Errorf("gpusort: expand shader template: %w", err)
	}
	return buf.String(), nil
}
