// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpusort

import "testing"

func TestBlockLayoutConstants(t *testing.T) {
	if RadixSize != 256 {
		t.Errorf("RadixSize = %d, want 256", RadixSize)
	}
	if DigitPasses != 4 {
		t.Errorf("DigitPasses = %d, want 4", DigitPasses)
	}
	if DigitPasses%2 != 0 {
		t.Error("DigitPasses must be even so the result lands in the primary buffers")
	}
}

func TestBlockLayout_Blocks(t *testing.T) {
	l := NewBlockLayout(256)
	if l.BlockKeyvals != 256*BlockRows {
		t.Fatalf("BlockKeyvals = %d, want %d", l.BlockKeyvals, 256*BlockRows)
	}

	tests := []struct {
		name  string
		count uint32
		want  uint32
	}{
		{"zero", 0, 0},
		{"one", 1, 1},
		{"block minus one", l.BlockKeyvals - 1, 1},
		{"exact block", l.BlockKeyvals, 1},
		{"block plus one", l.BlockKeyvals + 1, 2},
		{"8192 keyvals", 8192, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := l.ScatterBlocks(tt.count); got != tt.want {
				t.Errorf("ScatterBlocks(%d) = %d, want %d", tt.count, got, tt.want)
			}
			// Histogram and scatter blocks are the same size, so the
			// counts must agree for every element count.
			if got := l.HistogramBlocks(tt.count); got != tt.want {
				t.Errorf("HistogramBlocks(%d) = %d, want %d", tt.count, got, tt.want)
			}
		})
	}
}

func TestBlockLayout_Capacity(t *testing.T) {
	for _, width := range []uint32{16, 32, 64, 128, 256} {
		l := NewBlockLayout(width)
		for _, count := range []uint32{0, 1, 100, l.BlockKeyvals, l.BlockKeyvals + 1, 8192} {
			capacity := l.KeysCapacity(count)
			if capacity < count {
				t.Errorf("width %d: KeysCapacity(%d) = %d < count", width, count, capacity)
			}
			if capacity%l.BlockKeyvals != 0 {
				t.Errorf("width %d: KeysCapacity(%d) = %d not block-aligned", width, count, capacity)
			}
			if capacity-count >= l.BlockKeyvals && count > 0 {
				t.Errorf("width %d: KeysCapacity(%d) = %d overshoots by a full block", width, count, capacity)
			}
			if got, want := l.KeysSize(count), uint64(capacity)*4; got != want {
				t.Errorf("width %d: KeysSize(%d) = %d, want %d", width, count, got, want)
			}
		}
	}
}

func TestBlockLayout_PayloadUnpadded(t *testing.T) {
	l := NewBlockLayout(64)
	if got := l.PayloadSize(1000); got != 4000 {
		t.Errorf("PayloadSize(1000) = %d, want 4000", got)
	}
	if got := l.PayloadSize(0); got != 0 {
		t.Errorf("PayloadSize(0) = %d, want 0", got)
	}
}

func TestBlockLayout_ScratchSections(t *testing.T) {
	l := NewBlockLayout(256)

	if got := l.ScratchHistogramsOffset(); got != 0 {
		t.Errorf("ScratchHistogramsOffset() = %d, want 0", got)
	}
	if got := l.ScratchPartitionsOffset(); got != DigitPasses*RadixSize {
		t.Errorf("ScratchPartitionsOffset() = %d, want %d", got, DigitPasses*RadixSize)
	}

	tests := []struct {
		count          uint32
		partitionWords uint32
	}{
		{0, 0},
		// A single block needs no lookback entries.
		{1, 0},
		// Two blocks: one lookback row.
		{l.BlockKeyvals + 1, 256},
		{8192, 256},
		{4 * l.BlockKeyvals, 3 * 256},
	}
	for _, tt := range tests {
		partitions := l.ScratchPartitionsOffset()
		reserved := l.ScratchReservedOffset(tt.count)
		if got := reserved - partitions; got != tt.partitionWords {
			t.Errorf("count %d: partition words = %d, want %d", tt.count, got, tt.partitionWords)
		}
		if got := l.ScratchWords(tt.count); got != reserved+scratchReservedWords {
			t.Errorf("count %d: ScratchWords = %d, want %d", tt.count, got, reserved+scratchReservedWords)
		}
		if got, want := l.ScratchSize(tt.count), uint64(l.ScratchWords(tt.count))*4; got != want {
			t.Errorf("count %d: ScratchSize = %d, want %d", tt.count, got, want)
		}
	}
}

func TestCeilDiv(t *testing.T) {
	tests := []struct{ a, b, want uint32 }{
		{0, 256, 0},
		{1, 256, 1},
		{255, 256, 1},
		{256, 256, 1},
		{257, 256, 2},
	}
	for _, tt := range tests {
		if got := ceilDiv(tt.a, tt.b); got != tt.want {
			t.Errorf("ceilDiv(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
