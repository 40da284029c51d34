// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

// session.go records the sort dispatch sequence into a command encoder
// and provides the blocking submit-and-wait entry point. Recording and
// submission are split so a sort can ride inside a larger command
// stream; Sort is the standalone path.

package gpusort

import (
	"fmt"
	"time"

	"github.com/gogpu/wgpu/hal"
)

// sortFenceTimeout bounds the fence wait of a blocking Sort.
const sortFenceTimeout = 5 * time.Second

// RecordSort records a sort of the first count elements of the set
// into the encoder: zero, histogram, prefix, then the four scatter
// passes. Each stage runs in its own compute pass so storage writes are
// visible to the next stage. Stages with zero workgroups are still
// recorded; a zero-workgroup dispatch is a no-op, so an empty sort is
// trivially valid.
//
// A count below the set's element count is a partial sort: the first
// count elements (rounded up to block granularity by the kernels) come
// back sorted, and everything past them is garbage afterwards. A count
// above the set's element count is a caller-contract violation and is
// not checked.
//
// The caller owns the encoder and submission. The recorded work must
// complete (fence or queue ordering) before the primary buffers are
// read.
func (s *Sorter) RecordSort(encoder hal.CommandEncoder, bufs *KeyvalBuffers, count uint32) error {
	return s.record(encoder, bufs, count, nil, 0)
}

// RecordSortIndirect records the same sequence with the element-count
// dependent workgroup counts read from args at argsOffset, which must
// hold a DispatchIndirectArgs record and be 4-byte aligned. The prefix
// stage keeps its fixed direct dispatch. One argument record serves
// every indirect stage: histogram and scatter blocks are the same size,
// so their counts agree for any element count.
func (s *Sorter) RecordSortIndirect(encoder hal.CommandEncoder, bufs *KeyvalBuffers, args hal.Buffer, argsOffset uint64) error {
	if args == nil {
		return fmt.Errorf("gpusort: indirect argument buffer must not be nil")
	}
	if argsOffset%4 != 0 {
		return fmt.Errorf("gpusort: indirect argument offset %d not 4-byte aligned", argsOffset)
	}
	return s.record(encoder, bufs, bufs.count, args, argsOffset)
}

func (s *Sorter) record(encoder hal.CommandEncoder, bufs *KeyvalBuffers, count uint32, args hal.Buffer, argsOffset uint64) error {
	bg, err := bufs.bind(s)
	if err != nil {
		return err
	}

	for _, sd := range dispatchPlan(s.layout, count) {
		pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{
			Label: fmt.Sprintf("sort_%s", sd.stage),
		})
		pass.SetPipeline(s.pipelines[sd.stage])
		pass.SetBindGroup(0, bg, nil)
		if args != nil && sd.fromArgs {
			pass.DispatchIndirect(args, argsOffset)
		} else {
			pass.Dispatch(sd.groups, 1, 1)
		}
		pass.End()
	}
	return nil
}

// Sort runs a complete sort of the set and blocks until the GPU
// finishes. After it returns, the primary buffers hold the sorted keys
// with payloads moved alongside them.
func (s *Sorter) Sort(bufs *KeyvalBuffers) error {
	encoder, err := s.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "radix_sort",
	})
	if err != nil {
		return fmt.Errorf("gpusort: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("radix_sort"); err != nil {
		return fmt.Errorf("gpusort: begin encoding: %w", err)
	}

	if err := s.RecordSort(encoder, bufs, bufs.count); err != nil {
		encoder.DiscardEncoding()
		return err
	}

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("gpusort: end encoding: %w", err)
	}
	defer s.device.FreeCommandBuffer(cmdBuf)

	fence, err := s.device.CreateFence()
	if err != nil {
		return fmt.Errorf("gpusort: create fence: %w", err)
	}
	defer s.device.DestroyFence(fence)

	if err := s.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("gpusort: submit: %w", err)
	}
	ok, err := s.device.Wait(fence, 1, sortFenceTimeout)
	if err != nil {
		return fmt.Errorf("gpusort: wait for GPU: %w", err)
	}
	if !ok {
		return fmt.Errorf("gpusort: GPU timeout after %v", sortFenceTimeout)
	}

	slogger().Debug("gpusort: sort complete",
		"count", bufs.count,
		"scatter_blocks", s.layout.ScatterBlocks(bufs.count))
	return nil
}
