// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

// device.go opens a standalone compute-only Vulkan device for callers
// that do not already carry a HAL device. Applications embedding the
// sorter in an existing GPU context pass their own device and queue to
// NewSorter and never touch this file.

package gpusort

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Device is a standalone compute device plus its submission queue.
type Device struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	name     string
}

// OpenDevice creates a Vulkan instance, picks a GPU adapter (discrete
// preferred, then integrated, then whatever enumerates first), and
// opens it with default limits.
func OpenDevice() (*Device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("gpusort: vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("gpusort: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("gpusort: no GPU adapters found")
	}

	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("gpusort: open device: %w", err)
	}

	slogger().Info("gpusort: GPU initialized", "adapter", selected.Info.Name)
	return &Device{
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
		name:     selected.Info.Name,
	}, nil
}

// Device returns the HAL device.
func (d *Device) Device() hal.Device { return d.device }

// Queue returns the HAL submission queue.
func (d *Device) Queue() hal.Queue { return d.queue }

// Name returns the adapter name reported by the driver.
func (d *Device) Name() string { return d.name }

// Close destroys the device and its instance. Sorters and resource
// sets built on the device must be released first.
func (d *Device) Close() {
	if d.device != nil {
		d.device.Destroy()
		d.device = nil
		d.queue = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
}
