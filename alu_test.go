// Copyright © 2024 Jeff Berkowitz (pdxjjb@gmail.com)
//
// Unit tests for the width-polymorphic ALU

package main

import "testing"

func newTestALU() (*ALU, *RegisterFile) {
	r := NewRegisterFile()
	return NewALU(r), r
}

func TestAddUnsignedFlags(t *testing.T) {
	tests := []struct {
		name            string
		a, b            uint32
		w               Width
		wantResult      uint32
		wantCarry       bool
		wantZero        bool
		wantSign        bool
		wantParityOdd   bool
	}{
		{"no carry", 0x05, 0x03, Width8, 0x08, false, false, false, true},
		{"unsigned overflow", 0xFF, 0xFF, Width8, 0xFE, true, false, true, true},
		{"exact zero", 0xFF, 0x01, Width8, 0x00, true, true, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alu, r := newTestALU()
			got := alu.Add(tt.a, tt.b, tt.w, false)
			if got != tt.wantResult {
				t.Errorf("result = 0x%X, want 0x%X", got, tt.wantResult)
			}
			if r.GetFlag(FlagCarry) != tt.wantCarry {
				t.Errorf("CARRY = %v, want %v", r.GetFlag(FlagCarry), tt.wantCarry)
			}
			if r.GetFlag(FlagZero) != tt.wantZero {
				t.Errorf("ZERO = %v, want %v", r.GetFlag(FlagZero), tt.wantZero)
			}
			if r.GetFlag(FlagSign) != tt.wantSign {
				t.Errorf("SIGN = %v, want %v", r.GetFlag(FlagSign), tt.wantSign)
			}
			if r.GetFlag(FlagOverflow) {
				t.Error("unsigned ADD must clear OVERFLOW")
			}
		})
	}
}

func TestAddSignedOverflow(t *testing.T) {
	alu, r := newTestALU()
	got := alu.Add(0x7F, 0x01, Width8, true)
	if got != 0x80 {
		t.Errorf("result = 0x%X, want 0x80", got)
	}
	if !r.GetFlag(FlagOverflow) {
		t.Error("expected OVERFLOW set for 0x7F+0x01 signed")
	}
	if !r.GetFlag(FlagSign) {
		t.Error("expected SIGN set")
	}
}

func TestSubCarryIsLessThan(t *testing.T) {
	alu, r := newTestALU()
	alu.Sub(3, 5, Width8, false)
	if !r.GetFlag(FlagCarry) {
		t.Error("expected CARRY (borrow) set for 3-5 unsigned")
	}

	alu.Sub(5, 3, Width8, false)
	if r.GetFlag(FlagCarry) {
		t.Error("expected CARRY clear for 5-3 unsigned")
	}
}

func TestCmpMatchesSub(t *testing.T) {
	aluSub, rSub := newTestALU()
	aluSub.Sub(10, 20, Width16, true)

	aluCmp, rCmp := newTestALU()
	aluCmp.Cmp(10, 20, Width16, true)

	if rSub.Flags() != rCmp.Flags() {
		t.Errorf("CMP flags 0x%04X != SUB flags 0x%04X", rCmp.Flags(), rSub.Flags())
	}
}

func TestBitwiseClearsCarryAndOverflow(t *testing.T) {
	r := NewRegisterFile()
	r.SetFlag(FlagCarry, true)
	r.SetFlag(FlagOverflow, true)
	alu := NewALU(r)

	alu.And(0xFF, 0x0F, Width8)
	if r.GetFlag(FlagCarry) || r.GetFlag(FlagOverflow) {
		t.Error("AND must clear CARRY and OVERFLOW")
	}

	r.SetFlag(FlagCarry, true)
	r.SetFlag(FlagOverflow, true)
	alu.Or(0xFF, 0x0F, Width8)
	if r.GetFlag(FlagCarry) || r.GetFlag(FlagOverflow) {
		t.Error("OR must clear CARRY and OVERFLOW")
	}

	r.SetFlag(FlagCarry, true)
	r.SetFlag(FlagOverflow, true)
	alu.Xor(0xFF, 0x0F, Width8)
	if r.GetFlag(FlagCarry) || r.GetFlag(FlagOverflow) {
		t.Error("XOR must clear CARRY and OVERFLOW")
	}
}

func TestNotInvolution(t *testing.T) {
	for _, w := range []Width{Width8, Width16, Width32} {
		alu, _ := newTestALU()
		x := uint32(0x3C)
		once := alu.Not(x, w)
		twice := alu.Not(once, w)
		if twice != x {
			t.Errorf("width %d: NOT(NOT(0x%X)) = 0x%X", w, x, twice)
		}
	}
}

func TestMulUnsignedCarryOnOverflow(t *testing.T) {
	alu, r := newTestALU()
	low, high := alu.Mul(0x10, 0x20, Width8, false)
	if low != 0x00 || high != 0x02 {
		t.Errorf("0x10*0x20 at width 8 = low 0x%02X high 0x%02X, want low 0x00 high 0x02", low, high)
	}
	if !r.GetFlag(FlagCarry) || !r.GetFlag(FlagOverflow) {
		t.Error("expected CARRY and OVERFLOW set when the product needs the high half")
	}

	low, high = alu.Mul(0x02, 0x03, Width8, false)
	if low != 0x06 || high != 0 {
		t.Errorf("0x02*0x03 = low 0x%02X high 0x%02X, want low 0x06 high 0x00", low, high)
	}
	if r.GetFlag(FlagCarry) || r.GetFlag(FlagOverflow) {
		t.Error("expected CARRY and OVERFLOW clear when the product fits in W bits")
	}
}

func TestMulSignedFitsInWidth(t *testing.T) {
	alu, r := newTestALU()
	// -1 * -1 = 1, fits in 8 bits signed.
	low, _ := alu.Mul(0xFF, 0xFF, Width8, true)
	if int8(low) != 1 {
		t.Errorf("(-1)*(-1) signed = %d, want 1", int8(low))
	}
	if r.GetFlag(FlagCarry) || r.GetFlag(FlagOverflow) {
		t.Error("expected CARRY/OVERFLOW clear: result fits in 8 bits signed")
	}

	// 100 * 2 = 200, doesn't fit in int8 range.
	alu.Mul(100, 2, Width8, true)
	if !r.GetFlag(FlagCarry) || !r.GetFlag(FlagOverflow) {
		t.Error("expected CARRY/OVERFLOW set: 200 doesn't fit in a signed 8-bit result")
	}
}

func TestParityRule(t *testing.T) {
	alu, r := newTestALU()
	alu.Add(0x00, 0x03, Width8, false) // 0b011 -> two 1-bits -> even
	if !r.GetFlag(FlagParity) {
		t.Error("expected PARITY set for a result with an even count of 1-bits")
	}
	alu.Add(0x00, 0x01, Width8, false) // one 1-bit -> odd
	if r.GetFlag(FlagParity) {
		t.Error("expected PARITY clear for a result with an odd count of 1-bits")
	}
}
