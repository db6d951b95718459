// Copyright © 2024 Jeff Berkowitz (pdxjjb@gmail.com)
//
// Unit tests for the image loader

package main

import "testing"

func buildImage(kernel, user []byte) []byte {
	img := make([]byte, 0, 8+len(kernel)+len(user))
	img = append(img, le32Bytes(uint32(len(kernel)))...)
	img = append(img, le32Bytes(uint32(len(user)))...)
	img = append(img, kernel...)
	img = append(img, user...)
	return img
}

func le32Bytes(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

func TestLoadImagePlacesSegments(t *testing.T) {
	kernel := []byte{0x01, 0x02, 0x03}
	user := []byte{0xAA, 0xBB}
	img := buildImage(kernel, user)

	mem := NewMemory(MaxMemory)
	if err := LoadImage(mem, img); err != nil {
		t.Fatalf("LoadImage: %v", err)
	}

	for i, b := range kernel {
		got, _ := mem.ReadU8(ImageStart + uint32(i))
		if got != b {
			t.Errorf("kernel byte %d: got 0x%02X, want 0x%02X", i, got, b)
		}
	}
	for i, b := range user {
		got, _ := mem.ReadU8(UserSpaceStart + uint32(i))
		if got != b {
			t.Errorf("user byte %d: got 0x%02X, want 0x%02X", i, got, b)
		}
	}
}

func TestLoadImageRejectsHeaderTooSmall(t *testing.T) {
	mem := NewMemory(MaxMemory)
	if err := LoadImage(mem, []byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for undersized header")
	}
}

func TestLoadImageRejectsTruncatedKernel(t *testing.T) {
	img := buildImage(make([]byte, 10), nil)
	img = img[:len(img)-5] // truncate into the kernel segment
	mem := NewMemory(MaxMemory)
	if err := LoadImage(mem, img); err == nil {
		t.Fatal("expected error for truncated kernel segment")
	}
}

func TestLoadImageRejectsTruncatedUser(t *testing.T) {
	img := buildImage(make([]byte, 4), make([]byte, 10))
	img = img[:len(img)-5] // truncate into the user segment
	mem := NewMemory(MaxMemory)
	if err := LoadImage(mem, img); err == nil {
		t.Fatal("expected error for truncated user segment")
	}
}

func TestLoadImageRejectsOversizedKernel(t *testing.T) {
	hdr := append(le32Bytes(MaxKernelLen+1), le32Bytes(0)...)
	mem := NewMemory(MaxMemory)
	if err := LoadImage(mem, hdr); err == nil {
		t.Fatal("expected error for oversized kernel segment")
	}
}

func TestLoadImageRejectsOversizedUser(t *testing.T) {
	hdr := append(le32Bytes(0), le32Bytes(MaxMemory-UserSpaceStart+1)...)
	mem := NewMemory(MaxMemory)
	if err := LoadImage(mem, hdr); err == nil {
		t.Fatal("expected error for oversized user segment")
	}
}
