// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpusort

import "encoding/binary"

// sorterState mirrors the SorterState struct in shaders/radix_sort.wgsl:
// four consecutive little-endian u32 fields in this exact order. It is
// written once when a resource set is created; the two pass counters are
// advanced on the device by the scatter kernels and never rewritten by
// the host.
type sorterState struct {
	// Count is the logical element count of the resource set.
	Count uint32

	// Capacity is the padded keyval capacity (KeysCapacity(Count)).
	Capacity uint32

	// EvenPass counts completed even-parity scatter passes.
	EvenPass uint32

	// OddPass counts completed odd-parity scatter passes.
	OddPass uint32
}

// sorterStateSize is the wire size of sorterState and the minimum
// binding size of slot 0 in the shared bind group layout.
const sorterStateSize = 4 * 4

// toBytes serializes the state record for queue.WriteBuffer.
func (s sorterState) toBytes() []byte {
	buf := make([]byte, sorterStateSize)
	le := binary.LittleEndian
	le.PutUint32(buf[0:4], s.Count)
	le.PutUint32(buf[4:8], s.Capacity)
	le.PutUint32(buf[8:12], s.EvenPass)
	le.PutUint32(buf[12:16], s.OddPass)
	return buf
}
