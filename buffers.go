// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

// buffers.go allocates and manages one resource set for a fixed element
// count: the ping-pong key and payload buffers, the internal scratch
// buffer, and the state record the kernels consult. Sizes come from the
// Sorter's BlockLayout; a set built against one Sorter must not be used
// with a Sorter of a different width.

package gpusort

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// readbackTimeout bounds the fence wait of a blocking buffer read.
const readbackTimeout = 5 * time.Second

// KeyvalBuffers is one sort resource set: storage for count key/payload
// pairs plus the internal scratch and state buffers. The primary (A)
// buffers hold the caller's data before a sort and the sorted result
// after; the auxiliary (B) buffers are ping-pong scratch the caller
// never reads.
type KeyvalBuffers struct {
	device hal.Device
	queue  hal.Queue

	count    uint32
	capacity uint32

	keysA    hal.Buffer
	keysB    hal.Buffer
	payloadA hal.Buffer
	payloadB hal.Buffer
	scratch  hal.Buffer
	state    hal.Buffer

	// bindGroup is created lazily on first use and reused for every
	// dispatch against this set.
	bindGroup hal.BindGroup
}

// NewKeyvalBuffers allocates a resource set for count elements using
// the Sorter's layout. The key buffers are padded to block granularity;
// the padding is never read back. The state record is uploaded with
// both pass counters at zero.
func NewKeyvalBuffers(s *Sorter, count uint32) (*KeyvalBuffers, error) {
	l := s.layout
	b := &KeyvalBuffers{
		device:   s.device,
		queue:    s.queue,
		count:    count,
		capacity: l.KeysCapacity(count),
	}

	storage := gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst | gputypes.BufferUsageCopySrc
	type bufSpec struct {
		target *hal.Buffer
		label  string
		size   uint64
	}
	specs := []bufSpec{
		{&b.keysA, "sort_keys_a", l.KeysSize(count)},
		{&b.keysB, "sort_keys_b", l.KeysSize(count)},
		{&b.payloadA, "sort_payload_a", l.PayloadSize(count)},
		{&b.payloadB, "sort_payload_b", l.PayloadSize(count)},
		{&b.scratch, "sort_scratch", l.ScratchSize(count)},
		{&b.state, "sort_state", sorterStateSize},
	}

	const minBufSize = 4
	for _, spec := range specs {
		size := spec.size
		if size < minBufSize {
			size = minBufSize
		}
		buf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
			Label: spec.label,
			Size:  size,
			Usage: storage,
		})
		if err != nil {
			b.Destroy()
			return nil, fmt.Errorf("gpusort: create %s buffer: %w", spec.label, err)
		}
		*spec.target = buf
	}

	st := sorterState{Count: count, Capacity: b.capacity}
	b.queue.WriteBuffer(b.state, 0, st.toBytes())

	slogger().Debug("gpusort: buffers allocated",
		"count", count,
		"capacity", b.capacity,
		"scratch_bytes", l.ScratchSize(count))
	return b, nil
}

// Len returns the logical element count of the set.
func (b *KeyvalBuffers) Len() uint32 { return b.count }

// Capacity returns the padded keyval capacity of the key buffers.
func (b *KeyvalBuffers) Capacity() uint32 { return b.capacity }

// KeysValidSize returns the byte length of the meaningful prefix of the
// primary key buffer. Bytes past it are block padding with undefined
// contents.
func (b *KeyvalBuffers) KeysValidSize() uint64 {
	return uint64(b.count) * keyvalSize
}

// WriteKeys uploads keys into the primary key buffer. len(keys) must
// not exceed the set's element count.
func (b *KeyvalBuffers) WriteKeys(keys []uint32) error {
	if uint32(len(keys)) > b.count {
		return fmt.Errorf("gpusort: write %d keys into set of %d", len(keys), b.count)
	}
	if len(keys) == 0 {
		return nil
	}
	b.queue.WriteBuffer(b.keysA, 0, u32Bytes(keys))
	return nil
}

// WritePayloads uploads payload values into the primary payload buffer.
func (b *KeyvalBuffers) WritePayloads(payloads []uint32) error {
	if uint32(len(payloads)) > b.count {
		return fmt.Errorf("gpusort: write %d payloads into set of %d", len(payloads), b.count)
	}
	if len(payloads) == 0 {
		return nil
	}
	b.queue.WriteBuffer(b.payloadA, 0, u32Bytes(payloads))
	return nil
}

// ReadKeys blocks until prior GPU work completes and returns the valid
// prefix of the primary key buffer.
func (b *KeyvalBuffers) ReadKeys() ([]uint32, error) {
	return b.readBack(b.keysA, "sort_keys_readback")
}

// ReadPayloads blocks until prior GPU work completes and returns the
// valid prefix of the primary payload buffer.
func (b *KeyvalBuffers) ReadPayloads() ([]uint32, error) {
	return b.readBack(b.payloadA, "sort_payload_readback")
}

// readBack copies the valid prefix of src into a staging buffer,
// submits, waits, and decodes the words.
func (b *KeyvalBuffers) readBack(src hal.Buffer, label string) ([]uint32, error) {
	size := b.KeysValidSize()
	if size == 0 {
		return nil, nil
	}

	staging, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("gpusort: create staging buffer: %w", err)
	}
	defer b.device.DestroyBuffer(staging)

	encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, fmt.Errorf("gpusort: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return nil, fmt.Errorf("gpusort: begin encoding: %w", err)
	}
	encoder.CopyBufferToBuffer(src, staging, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: size},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("gpusort: end encoding: %w", err)
	}
	defer b.device.FreeCommandBuffer(cmdBuf)

	fence, err := b.device.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("gpusort: create fence: %w", err)
	}
	defer b.device.DestroyFence(fence)
	if err := b.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return nil, fmt.Errorf("gpusort: submit readback: %w", err)
	}
	ok, err := b.device.Wait(fence, 1, readbackTimeout)
	if err != nil {
		return nil, fmt.Errorf("gpusort: wait for readback: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("gpusort: readback timeout after %v", readbackTimeout)
	}

	raw := make([]byte, size)
	if err := b.queue.ReadBuffer(staging, 0, raw); err != nil {
		return nil, fmt.Errorf("gpusort: read staging buffer: %w", err)
	}
	out := make([]uint32, b.count)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	return out, nil
}

// bind returns the cached bind group for the set, creating it on first
// use against the Sorter's shared layout.
func (b *KeyvalBuffers) bind(s *Sorter) (hal.BindGroup, error) {
	if b.bindGroup != nil {
		return b.bindGroup, nil
	}

	entry := func(binding uint32, buf hal.Buffer) gputypes.BindGroupEntry {
		return gputypes.BindGroupEntry{
			Binding: binding,
			Resource: gputypes.BufferBinding{
				Buffer: buf.NativeHandle(),
				Offset: 0,
				Size:   0, // 0 = entire buffer
			},
		}
	}
	bg, err := s.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "radix_sort_bg",
		Layout: s.bgLayout,
		Entries: []gputypes.BindGroupEntry{
			entry(0, b.state),
			entry(1, b.scratch),
			entry(2, b.keysA),
			entry(3, b.keysB),
			entry(4, b.payloadA),
			entry(5, b.payloadB),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gpusort: create bind group: %w", err)
	}
	b.bindGroup = bg
	return bg, nil
}

// Destroy releases every GPU buffer of the set. Safe on a partially
// built set and idempotent.
func (b *KeyvalBuffers) Destroy() {
	if b == nil {
		return
	}
	if b.bindGroup != nil {
		b.device.DestroyBindGroup(b.bindGroup)
		b.bindGroup = nil
	}
	destroy := func(buf *hal.Buffer) {
		if *buf != nil {
			b.device.DestroyBuffer(*buf)
			*buf = nil
		}
	}
	destroy(&b.keysA)
	destroy(&b.keysB)
	destroy(&b.payloadA)
	destroy(&b.payloadB)
	destroy(&b.scratch)
	destroy(&b.state)
}

// u32Bytes serializes a word slice for queue.WriteBuffer.
func u32Bytes(words []uint32) []byte {
	buf := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}
	return buf
}
