// Copyright © 2024 Jeff Berkowitz (pdxjjb@gmail.com)
//
// Unit tests for the control-byte decoder

package main

import "testing"

func TestDecodeControlByte(t *testing.T) {
	tests := []struct {
		name string
		b    uint8
		want ControlByte
	}{
		{"all zero", 0x00, ControlByte{MOD: 0, Signed: false, Absolute: false}},
		{"mod only", 0x05, ControlByte{MOD: 5, Signed: false, Absolute: false}},
		{"signed bit", 0x08, ControlByte{MOD: 0, Signed: true, Absolute: false}},
		{"absolute bit", 0x10, ControlByte{MOD: 0, Signed: false, Absolute: true}},
		{"mod+signed+absolute", 0x1D, ControlByte{MOD: 5, Signed: true, Absolute: true}},
		{"reserved bits ignored", 0xE2, ControlByte{MOD: 2, Signed: false, Absolute: false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeControlByte(tt.b)
			if got != tt.want {
				t.Errorf("decodeControlByte(0x%02X) = %+v, want %+v", tt.b, got, tt.want)
			}
		})
	}
}

func TestRequireMOD(t *testing.T) {
	if err := requireMOD(1, 0, 1, 2); err != nil {
		t.Errorf("expected MOD=1 to be allowed, got %v", err)
	}
	err := requireMOD(9, 0, 1, 2)
	if err == nil {
		t.Fatal("expected an error for disallowed MOD")
	}
	fault, ok := err.(*Fault)
	if !ok || fault.Kind != InvalidMOD {
		t.Errorf("got %v, want InvalidMOD fault", err)
	}
}
