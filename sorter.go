// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

// sorter.go builds the GPU side of the radix sort: one shader module
// compiled for a fixed workgroup width, the shared six-slot bind group
// layout, and the five compute pipelines the dispatch plan cycles
// through. A Sorter is immutable after construction and safe to share
// across resource sets.

package gpusort

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// Sorter holds the compiled sort pipelines for one workgroup width.
//
// All five kernel entry points live in a single shader module and share
// a single bind group layout, so one bind group per resource set serves
// every dispatch of the plan. Build a new Sorter to change the width;
// an existing Sorter never recompiles.
type Sorter struct {
	device hal.Device
	queue  hal.Queue

	width  uint32
	layout BlockLayout
	params shaderParams

	module     hal.ShaderModule
	bgLayout   hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipelines  [stageCount]hal.ComputePipeline
}

// NewSorter compiles the radix sort kernels for the given workgroup
// width and builds the five compute pipelines. The width is typically
// the result of GuessWorkgroupWidth; passing an unsupported width
// surfaces as a shader or pipeline build error here.
func NewSorter(device hal.Device, queue hal.Queue, width uint32) (*Sorter, error) {
	params, err := resolveShaderParams(width)
	if err != nil {
		return nil, err
	}

	s := &Sorter{
		device: device,
		queue:  queue,
		width:  width,
		layout: NewBlockLayout(width),
		params: params,
	}

	wgsl, err := params.expandShader()
	if err != nil {
		return nil, err
	}

	spirv, err := compileWGSL(wgsl)
	if err != nil {
		return nil, fmt.Errorf("gpusort: compile kernels for width %d: %w", width, err)
	}

	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  fmt.Sprintf("radix_sort_w%d", width),
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return nil, fmt.Errorf("gpusort: create shader module: %w", err)
	}
	s.module = module

	bgLayout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "radix_sort_bgl",
		Entries: sortBindGroupLayoutEntries(),
	})
	if err != nil {
		s.destroyPartial()
		return nil, fmt.Errorf("gpusort: create bind group layout: %w", err)
	}
	s.bgLayout = bgLayout

	pipeLayout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "radix_sort_pl",
		BindGroupLayouts: []hal.BindGroupLayout{bgLayout},
	})
	if err != nil {
		s.destroyPartial()
		return nil, fmt.Errorf("gpusort: create pipeline layout: %w", err)
	}
	s.pipeLayout = pipeLayout

	for stage := sortStage(0); stage < stageCount; stage++ {
		pipeline, err := device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
			Label:  fmt.Sprintf("radix_sort_%s", stage),
			Layout: pipeLayout,
			Compute: hal.ComputeState{
				Module:     module,
				EntryPoint: stage.String(),
			},
		})
		if err != nil {
			s.destroyPartial()
			return nil, fmt.Errorf("gpusort: create pipeline for %s: %w", stage, err)
		}
		s.pipelines[stage] = pipeline

		slogger().Debug("gpusort: pipeline created",
			"stage", stage.String(),
			"width", width)
	}

	slogger().Info("gpusort: sorter initialized",
		"width", width,
		"block_keyvals", s.layout.BlockKeyvals)
	return s, nil
}

// Width returns the workgroup width the kernels were compiled for.
func (s *Sorter) Width() uint32 { return s.width }

// BlockLayout returns the block layout matching the Sorter's width.
// Callers size external buffers (keys, payloads, indirect arguments)
// against it.
func (s *Sorter) BlockLayout() BlockLayout { return s.layout }

// Close releases the shader module, layouts, and pipelines. Resource
// sets built against the Sorter must be destroyed first.
func (s *Sorter) Close() {
	s.destroyPartial()
}

// destroyPartial releases whatever GPU objects have been created so
// far. Safe on a half-built Sorter during a failed NewSorter.
func (s *Sorter) destroyPartial() {
	for i := sortStage(0); i < stageCount; i++ {
		if s.pipelines[i] != nil {
			s.device.DestroyComputePipeline(s.pipelines[i])
			s.pipelines[i] = nil
		}
	}
	if s.pipeLayout != nil {
		s.device.DestroyPipelineLayout(s.pipeLayout)
		s.pipeLayout = nil
	}
	if s.bgLayout != nil {
		s.device.DestroyBindGroupLayout(s.bgLayout)
		s.bgLayout = nil
	}
	if s.module != nil {
		s.device.DestroyShaderModule(s.module)
		s.module = nil
	}
}

// sortBindGroupLayoutEntries returns the layout shared by all five
// entry points. The entries match the @group(0) @binding(N)
// annotations in radix_sort.wgsl exactly: state, scratch, then the two
// key buffers and the two payload buffers. Every slot is read_write
// storage because the scatter kernels swap read and write roles
// between passes.
func sortBindGroupLayoutEntries() []gputypes.BindGroupLayoutEntry {
	storageRW := func(binding uint32, minSize uint64) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageCompute,
			Buffer: &gputypes.BufferBindingLayout{
				Type:           gputypes.BufferBindingTypeStorage,
				MinBindingSize: minSize,
			},
		}
	}

	return []gputypes.BindGroupLayoutEntry{
		storageRW(0, sorterStateSize),
		storageRW(1, 0), // scratch
		storageRW(2, 0), // keys A
		storageRW(3, 0), // keys B
		storageRW(4, 0), // payloads A
		storageRW(5, 0), // payloads B
	}
}

// compileWGSL compiles WGSL source to a SPIR-V word slice for
// hal.ShaderSource.
func compileWGSL(src string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(src)
	if err != nil {
		return nil, err
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("SPIR-V output not word-aligned: %d bytes", len(spirvBytes))
	}
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	return words, nil
}
