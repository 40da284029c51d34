// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// layout.go derives dispatch block counts, padded buffer capacities, and
// the internal scratch-buffer section offsets from an element count. The
// same formulas are baked into shaders/radix_sort.wgsl: host and kernel
// must agree exactly on every boundary computed here.

package gpusort

const (
	// RadixBits is the number of key bits consumed per digit pass.
	RadixBits = 8

	// RadixSize is the number of distinct digit values (one histogram row).
	RadixSize = 1 << RadixBits

	// DigitPasses is the number of digit passes covering a 32-bit key.
	DigitPasses = 32 / RadixBits

	// BlockRows is the number of keyvals each workgroup invocation
	// processes, so one block covers width*BlockRows keyvals. Histogram
	// and scatter blocks share this size; the scatter kernel stages a
	// whole block in workgroup memory and requires the histogram phase
	// to have covered at least as many elements.
	BlockRows = 16

	// keyvalSize is the byte width of one key or one payload value.
	keyvalSize = 4

	// scratchReservedWords is the fixed tail section of the scratch
	// buffer, kept one radix row wide.
	scratchReservedWords = RadixSize
)

// BlockLayout computes buffer capacities and dispatch counts for one
// workgroup width. All methods are pure functions of the element count;
// a Sorter embeds the layout for the width it was built at.
type BlockLayout struct {
	// BlockKeyvals is the number of keyvals per histogram block and per
	// scatter block (width * BlockRows; the algorithm requires the two
	// block sizes to be equal).
	BlockKeyvals uint32
}

// NewBlockLayout returns the layout for the given workgroup width.
func NewBlockLayout(width uint32) BlockLayout {
	return BlockLayout{BlockKeyvals: width * BlockRows}
}

// ScatterBlocks returns the number of scatter workgroups needed to cover
// count elements. Zero elements need zero blocks.
func (l BlockLayout) ScatterBlocks(count uint32) uint32 {
	return ceilDiv(count, l.BlockKeyvals)
}

// HistogramBlocks returns the number of histogram (and zero) workgroups
// for count elements. This is not simply ceil(count/blockKeyvals): the
// count is first rounded up to the scatter granularity so the histogram
// phase always covers every element a scatter block will touch.
func (l BlockLayout) HistogramBlocks(count uint32) uint32 {
	return ceilDiv(l.ScatterBlocks(count)*l.BlockKeyvals, l.BlockKeyvals)
}

// KeysCapacity returns the padded element capacity allocated for the
// key buffers. Elements in [count, capacity) are scratch padding.
func (l BlockLayout) KeysCapacity(count uint32) uint32 {
	return l.HistogramBlocks(count) * l.BlockKeyvals
}

// KeysSize returns the byte size of one padded key buffer.
func (l BlockLayout) KeysSize(count uint32) uint64 {
	return uint64(l.KeysCapacity(count)) * keyvalSize
}

// PayloadSize returns the byte size of one payload buffer. Payloads are
// not padded to block granularity; the scatter kernel guards payload
// accesses against the true element count.
func (l BlockLayout) PayloadSize(count uint32) uint64 {
	return uint64(count) * keyvalSize
}

// Scratch sections, in u32 words from the start of the scratch buffer:
// per-pass digit histograms, then per-block scatter partitions (one per
// scatter block minus one), then the reserved tail.

// ScratchHistogramsOffset returns the word offset of the histogram
// section. Always zero; exported so tests pin the section order.
func (l BlockLayout) ScratchHistogramsOffset() uint32 { return 0 }

// ScratchPartitionsOffset returns the word offset of the scatter
// partition section.
func (l BlockLayout) ScratchPartitionsOffset() uint32 {
	return DigitPasses * RadixSize
}

// ScratchReservedOffset returns the word offset of the reserved tail for
// count elements.
func (l BlockLayout) ScratchReservedOffset(count uint32) uint32 {
	return l.ScratchPartitionsOffset() + l.partitionWords(count)
}

// ScratchWords returns the total scratch buffer length in u32 words.
func (l BlockLayout) ScratchWords(count uint32) uint32 {
	return l.ScratchReservedOffset(count) + scratchReservedWords
}

// ScratchSize returns the scratch buffer byte size for count elements.
func (l BlockLayout) ScratchSize(count uint32) uint64 {
	return uint64(l.ScratchWords(count)) * 4
}

// partitionWords is the scatter partition section length: one radix row
// per scatter block except the first, which needs no lookback entry.
func (l BlockLayout) partitionWords(count uint32) uint32 {
	blocks := l.ScatterBlocks(count)
	if blocks == 0 {
		return 0
	}
	return (blocks - 1) * RadixSize
}

// ceilDiv returns ceil(a/b) for b > 0.
func ceilDiv(a, b uint32) uint32 {
	return (a + b - 1) / b
}
