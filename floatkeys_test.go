// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpusort

import (
	"math"
	"sort"
	"testing"
)

func TestSortableFloatBits_Order(t *testing.T) {
	floats := []float32{
		float32(math.Inf(-1)),
		-1e30, -3.5, -1.0, -math.SmallestNonzeroFloat32,
		0, math.SmallestNonzeroFloat32, 0.5, 1.0, 3.5, 1e30,
		float32(math.Inf(1)),
	}
	for i := 1; i < len(floats); i++ {
		a := SortableFloatBits(floats[i-1])
		b := SortableFloatBits(floats[i])
		if a >= b {
			t.Errorf("SortableFloatBits(%g) = %#x not below SortableFloatBits(%g) = %#x",
				floats[i-1], a, floats[i], b)
		}
	}
}

func TestSortableFloatBits_Roundtrip(t *testing.T) {
	for _, f := range []float32{-1e30, -2.5, -0.0, 0.0, 2.5, 1e30} {
		got := FloatFromSortableBits(SortableFloatBits(f))
		if got != f {
			t.Errorf("roundtrip(%g) = %g", f, got)
		}
	}
}

func TestSortableFloatBits_MatchesSortOrder(t *testing.T) {
	values := []float32{3.25, -7.5, 0, 12.125, -0.5, 100, -100, 0.0625}

	bySort := append([]float32(nil), values...)
	sort.Slice(bySort, func(i, j int) bool { return bySort[i] < bySort[j] })

	byKey := append([]float32(nil), values...)
	sort.Slice(byKey, func(i, j int) bool {
		return SortableFloatBits(byKey[i]) < SortableFloatBits(byKey[j])
	})

	for i := range bySort {
		if bySort[i] != byKey[i] {
			t.Fatalf("key order diverges at %d: %g vs %g", i, bySort[i], byKey[i])
		}
	}
}
