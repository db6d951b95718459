// Copyright © 2024 Jeff Berkowitz (pdxjjb@gmail.com)
//
// Unit tests for the register file's overlapping sub-views

package main

import "testing"

func TestSubRegisterConsistency(t *testing.T) {
	r := NewRegisterFile()
	if err := r.Write32(RegEAX, 0x12345678); err != nil {
		t.Fatal(err)
	}

	ax, err := r.Read16(RegAX)
	if err != nil || ax != 0x5678 {
		t.Errorf("AX = 0x%04X, %v; want 0x5678", ax, err)
	}
	al, err := r.Read8(RegAL)
	if err != nil || al != 0x78 {
		t.Errorf("AL = 0x%02X, %v; want 0x78", al, err)
	}
	ah, err := r.Read8(RegAH)
	if err != nil || ah != 0x56 {
		t.Errorf("AH = 0x%02X, %v; want 0x56", ah, err)
	}

	// Writing AX must preserve the upper 16 bits of EAX.
	if err := r.Write16(RegAX, 0xBEEF); err != nil {
		t.Fatal(err)
	}
	eax, err := r.Read32(RegEAX)
	if err != nil || eax != 0x1234BEEF {
		t.Errorf("EAX after Write16(AX) = 0x%08X, %v; want 0x1234BEEF", eax, err)
	}

	// Writing AL must preserve AH and the upper 16 bits.
	if err := r.Write8(RegAL, 0x01); err != nil {
		t.Fatal(err)
	}
	eax, _ = r.Read32(RegEAX)
	if eax != 0x1234BE01 {
		t.Errorf("EAX after Write8(AL) = 0x%08X; want 0x1234BE01", eax)
	}
}

func TestPointerRegisterLow16View(t *testing.T) {
	r := NewRegisterFile()
	if err := r.Write32(RegESP, 0xAABBCCDD); err != nil {
		t.Fatal(err)
	}
	sp, err := r.Read16(RegSP)
	if err != nil || sp != 0xCCDD {
		t.Errorf("SP = 0x%04X, %v; want 0xCCDD", sp, err)
	}
	if err := r.Write16(RegSP, 0x1122); err != nil {
		t.Fatal(err)
	}
	esp, _ := r.Read32(RegESP)
	if esp != 0xAABB1122 {
		t.Errorf("ESP after Write16(SP) = 0x%08X; want 0xAABB1122", esp)
	}
}

func TestWriteIPRejected(t *testing.T) {
	r := NewRegisterFile()
	err := r.Write32(RegIP, 0x1000)
	if err == nil {
		t.Fatal("expected Write32(IP) to fail")
	}
	fault, ok := err.(*Fault)
	if !ok || fault.Kind != InvalidRegCode {
		t.Errorf("got %v, want InvalidRegCode fault", err)
	}
}

func TestSetIPBypassesGuard(t *testing.T) {
	r := NewRegisterFile()
	r.SetIP(0x2000)
	if r.IP() != 0x2000 {
		t.Errorf("IP = 0x%X, want 0x2000", r.IP())
	}
}

func TestInvalidRegCodeWidthMismatch(t *testing.T) {
	r := NewRegisterFile()
	if _, err := r.Read8(RegEAX); err == nil {
		t.Fatal("expected Read8(EAX) to fail: EAX has no 8-bit view")
	}
	if _, err := r.Read32(RegAX); err == nil {
		t.Fatal("expected Read32(AX) to fail: AX is not a full 32-bit register")
	}
}

func TestFlags(t *testing.T) {
	r := NewRegisterFile()
	r.SetFlag(FlagCarry, true)
	r.SetFlag(FlagZero, true)
	if !r.GetFlag(FlagCarry) || !r.GetFlag(FlagZero) {
		t.Fatal("expected CARRY and ZERO set")
	}
	if r.GetFlag(FlagSign) {
		t.Fatal("expected SIGN clear")
	}
	r.SetFlag(FlagCarry, false)
	if r.GetFlag(FlagCarry) {
		t.Fatal("expected CARRY cleared")
	}
	if !r.GetFlag(FlagZero) {
		t.Fatal("clearing CARRY must not disturb ZERO")
	}
}
