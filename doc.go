// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpusort sorts arrays of 32-bit keys with attached 32-bit payload
// values entirely on the GPU, without host readback between phases.
//
// # Overview
//
// gpusort implements an 8-bit-digit, least-significant-digit-first radix
// sort as five compute kernels dispatched in four phases: a zero pass that
// clears the internal histograms, a histogram pass that counts all four
// digit slices in one sweep, a prefix pass that turns counts into global
// scatter offsets, and four scatter passes that ping-pong the key/payload
// pairs between a primary and an auxiliary buffer. Because exactly four
// scatters run, the sorted result always lands back in the primary buffers.
//
// # Quick start
//
//	dev, err := gpusort.OpenDevice()
//	if err != nil { ... }
//	defer dev.Close()
//
//	width, err := gpusort.GuessWorkgroupWidth(dev.Device(), dev.Queue())
//	if err != nil { ... }
//
//	sorter, err := gpusort.NewSorter(dev.Device(), dev.Queue(), width)
//	if err != nil { ... }
//	defer sorter.Close()
//
//	bufs, err := gpusort.NewKeyvalBuffers(sorter, uint32(len(keys)))
//	if err != nil { ... }
//	defer bufs.Destroy()
//
//	bufs.WriteKeys(keys)
//	bufs.WritePayloads(payloads)
//	if err := sorter.Sort(bufs); err != nil { ... }
//	sorted, _ := bufs.ReadKeys()
//
// Callers embedding the sort in a larger GPU pipeline record it into their
// own command encoder with [Sorter.RecordSort] or, when the element count
// is only known on-device, [Sorter.RecordSortIndirect].
//
// # Architecture
//
//   - Layout calculator: block counts and padded capacities from the
//     element count (layout.go).
//   - Resource set: the five device buffers plus state record owned by one
//     sortable array ([KeyvalBuffers]).
//   - Pipeline builder: WGSL constant substitution, naga compilation, and
//     the five compute pipelines sharing one bind group layout ([Sorter]).
//   - Sort session: the recorded dispatch sequence (session.go).
//
// A [Sorter] is immutable once built and may be shared by any number of
// concurrent sorts against distinct [KeyvalBuffers]. A KeyvalBuffers value
// is single-writer: overlapping sorts against the same set are a data
// race the engine does not detect.
package gpusort
