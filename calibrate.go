// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

// calibrate.go picks a working workgroup width for a device by probing
// candidates with a real sort. Drivers differ in which widths they
// compile and execute correctly, so the only trustworthy check is an
// end-to-end run with verified output.

package gpusort

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"
)

// workgroupWidthCandidates are the widths the calibration probe tries,
// widest first. Wider groups mean fewer blocks and less partition
// traffic, so the first width that passes wins.
var workgroupWidthCandidates = []uint32{256, 128, 64, 32, 16}

// selfTestSize is the element count of the calibration sort: enough to
// span multiple blocks at every candidate width.
const selfTestSize = 8192

// GuessWorkgroupWidth probes the candidate widths on the device and
// returns the widest one whose self-test sorts correctly. Each probe
// builds a throwaway Sorter, runs a full sort, and verifies the result
// on the CPU. An error is returned only when every candidate fails.
func GuessWorkgroupWidth(device hal.Device, queue hal.Queue) (uint32, error) {
	var lastErr error
	for _, width := range workgroupWidthCandidates {
		s, err := NewSorter(device, queue, width)
		if err != nil {
			slogger().Debug("gpusort: candidate width rejected at build",
				"width", width, "error", err)
			lastErr = err
			continue
		}
		err = SelfTest(s)
		s.Close()
		if err != nil {
			slogger().Debug("gpusort: candidate width failed self-test",
				"width", width, "error", err)
			lastErr = err
			continue
		}
		slogger().Info("gpusort: workgroup width calibrated", "width", width)
		return width, nil
	}
	return 0, fmt.Errorf("gpusort: no workgroup width passed calibration: %w", lastErr)
}

// SelfTest sorts a fixed adversarial data set with the Sorter and
// verifies the result element by element. The keys are descending, so
// every digit pass has to move every element, and the payloads are the
// original indices, so payload transport is checked too.
func SelfTest(s *Sorter) error {
	bufs, err := NewKeyvalBuffers(s, selfTestSize)
	if err != nil {
		return err
	}
	defer bufs.Destroy()

	keys := make([]uint32, selfTestSize)
	payloads := make([]uint32, selfTestSize)
	for i := range keys {
		keys[i] = uint32(selfTestSize - 1 - i)
		payloads[i] = uint32(i)
	}
	if err := bufs.WriteKeys(keys); err != nil {
		return err
	}
	if err := bufs.WritePayloads(payloads); err != nil {
		return err
	}

	if err := s.Sort(bufs); err != nil {
		return err
	}

	gotKeys, err := bufs.ReadKeys()
	if err != nil {
		return err
	}
	gotPayloads, err := bufs.ReadPayloads()
	if err != nil {
		return err
	}

	for i := range gotKeys {
		if gotKeys[i] != uint32(i) {
			return fmt.Errorf("gpusort: self-test key mismatch at %d: got %d", i, gotKeys[i])
		}
		// The input keys are distinct, so each payload must still ride
		// with its key: key i started at index size-1-i.
		want := uint32(selfTestSize - 1 - i)
		if gotPayloads[i] != want {
			return fmt.Errorf("gpusort: self-test payload mismatch at %d: got %d, want %d", i, gotPayloads[i], want)
		}
	}
	return nil
}
