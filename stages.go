// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpusort

import (
	"encoding/binary"
	"fmt"
)

// sortStage identifies one of the five kernel entry points. The values
// index the Sorter's pipeline array.
type sortStage int

const (
	// stageZero clears the scratch histogram and partition sections.
	stageZero sortStage = iota

	// stageHistogram counts the digit values of all four passes in one
	// sweep over the unsorted keys.
	stageHistogram

	// stagePrefix converts the per-pass digit counts into global
	// exclusive-scan scatter offsets, one workgroup per pass.
	stagePrefix

	// stageScatterEven scatters primary -> auxiliary on passes 0 and 2.
	stageScatterEven

	// stageScatterOdd scatters auxiliary -> primary on passes 1 and 3.
	stageScatterOdd

	stageCount
)

// String returns the kernel entry point name for the stage.
func (s sortStage) String() string {
	switch s {
	case stageZero:
		return "zero_histograms"
	case stageHistogram:
		return "calculate_histogram"
	case stagePrefix:
		return "prefix_histogram"
	case stageScatterEven:
		return "scatter_even"
	case stageScatterOdd:
		return "scatter_odd"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// prefixWorkgroups is the fixed prefix-stage dispatch width: one
// workgroup per digit pass, independent of the element count.
const prefixWorkgroups = DigitPasses

// stageDispatch is one entry of the recorded dispatch sequence.
type stageDispatch struct {
	stage sortStage

	// groups is the x workgroup count for a direct dispatch.
	groups uint32

	// fromArgs marks stages whose workgroup count is read from the
	// indirect argument buffer instead of groups. The prefix stage never
	// sets it: its count is fixed regardless of the element count.
	fromArgs bool
}

// DispatchIndirectArgs is the workgroup-count triple an indirect sort
// reads from the caller's argument buffer: three consecutive
// little-endian u32 values at a 4-byte aligned offset. Y and Z are
// passed through to the device unvalidated and should be 1.
type DispatchIndirectArgs struct {
	X uint32
	Y uint32
	Z uint32
}

// dispatchIndirectArgsSize is the wire size of one argument record.
const dispatchIndirectArgsSize = 3 * 4

// Bytes serializes the record for upload into an argument buffer.
func (a DispatchIndirectArgs) Bytes() []byte {
	buf := make([]byte, dispatchIndirectArgsSize)
	le := binary.LittleEndian
	le.PutUint32(buf[0:4], a.X)
	le.PutUint32(buf[4:8], a.Y)
	le.PutUint32(buf[8:12], a.Z)
	return buf
}

// IndirectArgs returns the argument record an indirect sort of count
// elements expects. Histogram and scatter blocks share a size, so one
// record serves every indirect stage of the plan.
func (l BlockLayout) IndirectArgs(count uint32) DispatchIndirectArgs {
	return DispatchIndirectArgs{X: l.ScatterBlocks(count), Y: 1, Z: 1}
}

// dispatchPlan returns the ordered dispatch sequence of a full sort over
// count elements: zero, histogram, prefix, then four scatters with
// alternating parity. The first scatter reads the primary buffers and,
// with exactly four scatters, the sorted result lands back in them.
//
// This is the single source of truth for both dispatch modes: direct
// recording uses groups, indirect recording replaces the counts of the
// fromArgs stages with the device-resident argument buffer.
func dispatchPlan(l BlockLayout, count uint32) []stageDispatch {
	histogramBlocks := l.HistogramBlocks(count)
	scatterBlocks := l.ScatterBlocks(count)

	return []stageDispatch{
		{stage: stageZero, groups: histogramBlocks, fromArgs: true},
		{stage: stageHistogram, groups: histogramBlocks, fromArgs: true},
		{stage: stagePrefix, groups: prefixWorkgroups},
		{stage: stageScatterEven, groups: scatterBlocks, fromArgs: true},
		{stage: stageScatterOdd, groups: scatterBlocks, fromArgs: true},
		{stage: stageScatterEven, groups: scatterBlocks, fromArgs: true},
		{stage: stageScatterOdd, groups: scatterBlocks, fromArgs: true},
	}
}
