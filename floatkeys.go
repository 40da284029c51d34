// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpusort

import "math"

// SortableFloatBits maps a float32 to a u32 key whose unsigned order
// matches the float's total order: negatives before positives, both
// signs monotone. Callers sorting float keys encode with this before
// upload and decode with FloatFromSortableBits after the sort.
func SortableFloatBits(f float32) uint32 {
	bits := math.Float32bits(f)
	if bits&0x8000_0000 != 0 {
		return ^bits
	}
	return bits | 0x8000_0000
}

// FloatFromSortableBits inverts SortableFloatBits.
func FloatFromSortableBits(bits uint32) float32 {
	if bits&0x8000_0000 != 0 {
		return math.Float32frombits(bits &^ 0x8000_0000)
	}
	return math.Float32frombits(^bits)
}
