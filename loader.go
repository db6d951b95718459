// Copyright © 2024 Jeff Berkowitz (pdxjjb@gmail.com)
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.

package main

import "fmt"

const imageHeaderSize = 8 // two little-endian u32 lengths

// LoadImage parses a binary image (header: u32 kernel_len, u32
// user_len, then the two segments back to back) and copies the
// kernel segment to ImageStart and the user segment to UserSpaceStart.
// Bytes outside the copied windows are left zero.
func LoadImage(mem *Memory, data []byte) error {
	if len(data) < imageHeaderSize {
		return fmt.Errorf("image too small for header: got %d bytes, need at least %d", len(data), imageHeaderSize)
	}

	kernelLen := readLE32(data[0:4])
	userLen := readLE32(data[4:8])

	if kernelLen > MaxKernelLen {
		return fmt.Errorf("kernel segment too large: %d bytes (max %d)", kernelLen, MaxKernelLen)
	}
	maxUserLen := uint32(MaxMemory) - UserSpaceStart
	if userLen > maxUserLen {
		return fmt.Errorf("user segment too large: %d bytes (max %d)", userLen, maxUserLen)
	}

	offset := imageHeaderSize
	if len(data) < offset+int(kernelLen) {
		return fmt.Errorf("image truncated: kernel segment needs %d bytes, file has %d remaining", kernelLen, len(data)-offset)
	}
	kernelBytes := data[offset : offset+int(kernelLen)]
	offset += int(kernelLen)

	if len(data) < offset+int(userLen) {
		return fmt.Errorf("image truncated: user segment needs %d bytes, file has %d remaining", userLen, len(data)-offset)
	}
	userBytes := data[offset : offset+int(userLen)]

	copy(mem.Bytes()[ImageStart:], kernelBytes)
	copy(mem.Bytes()[UserSpaceStart:], userBytes)

	return nil
}

func readLE32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
