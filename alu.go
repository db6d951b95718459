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

import "math/bits"

// widthTraits supplies the bit width, sign mask, and truncation mask
// the width-polymorphic ALU needs to derive carry/overflow from a
// wider intermediate, per the design note that one implementation
// should serve all three widths rather than three near-duplicates.
type widthTraits struct {
	bits     uint
	signMask uint64
	fullMask uint64
}

func traitsFor(w Width) widthTraits {
	switch w {
	case Width8:
		return widthTraits{bits: 8, signMask: 0x80, fullMask: 0xFF}
	case Width16:
		return widthTraits{bits: 16, signMask: 0x8000, fullMask: 0xFFFF}
	default:
		return widthTraits{bits: 32, signMask: 0x8000_0000, fullMask: 0xFFFF_FFFF}
	}
}

// ALU performs width-polymorphic arithmetic/bitwise/compare operations,
// returning the result (where one exists) for the caller to store and
// updating FLAGS in the RegisterFile per the rules in the arithmetic spec. The wider
// 64-bit intermediate is only ever used to derive CARRY/OVERFLOW; the
// stored result is always truncated (modular) to the operation width.
type ALU struct {
	reg *RegisterFile
}

func NewALU(reg *RegisterFile) *ALU {
	return &ALU{reg: reg}
}

func parityEven(v uint32) bool {
	return bits.OnesCount8(uint8(v))%2 == 0
}

func (a *ALU) setCommonFlags(result uint64, w Width) {
	t := traitsFor(w)
	masked := result & t.fullMask
	a.reg.SetFlag(FlagParity, parityEven(uint32(masked)))
	a.reg.SetFlag(FlagZero, masked == 0)
	a.reg.SetFlag(FlagSign, masked&t.signMask != 0)
}

// Add computes a+b (modular at width w), sets PARITY/ZERO/SIGN and
// OVERFLOW, sets CARRY in unsigned mode (signed mode leaves CARRY
// untouched), and returns the truncated result.
func (alu *ALU) Add(a, b uint32, w Width, signed bool) uint32 {
	t := traitsFor(w)
	sum := (uint64(a) + uint64(b)) & t.fullMask
	carry := (uint64(a) + uint64(b)) > t.fullMask
	resultSign := sum&t.signMask != 0
	aSign := uint64(a)&t.signMask != 0
	bSign := uint64(b)&t.signMask != 0
	overflow := aSign == bSign && resultSign != aSign

	alu.setCommonFlags(sum, w)
	if signed {
		alu.reg.SetFlag(FlagOverflow, overflow)
	} else {
		alu.reg.SetFlag(FlagCarry, carry)
		alu.reg.SetFlag(FlagOverflow, false)
	}
	return uint32(sum)
}

// Sub computes a-b (used directly by SUB and, with the result
// discarded, by CMP) and sets flags per the subtract rules. Unsigned:
// CARRY set iff a < b (borrow), OVERFLOW cleared. Signed: OVERFLOW per
// the signed sub rule, CARRY left untouched.
func (alu *ALU) Sub(a, b uint32, w Width, signed bool) uint32 {
	t := traitsFor(w)
	diff := (uint64(a) - uint64(b)) & t.fullMask
	borrow := uint64(a) < uint64(b)
	resultSign := diff&t.signMask != 0
	aSign := uint64(a)&t.signMask != 0
	bSign := uint64(b)&t.signMask != 0
	overflow := aSign != bSign && resultSign != aSign

	alu.setCommonFlags(diff, w)
	if signed {
		alu.reg.SetFlag(FlagOverflow, overflow)
	} else {
		alu.reg.SetFlag(FlagCarry, borrow)
		alu.reg.SetFlag(FlagOverflow, false)
	}
	return uint32(diff)
}

// Cmp sets flags as Sub would, without producing a stored result.
func (alu *ALU) Cmp(a, b uint32, w Width, signed bool) {
	alu.Sub(a, b, w, signed)
}

func (alu *ALU) bitwise(result uint32, w Width) uint32 {
	t := traitsFor(w)
	masked := uint64(result) & t.fullMask
	alu.setCommonFlags(masked, w)
	alu.reg.SetFlag(FlagCarry, false)
	alu.reg.SetFlag(FlagOverflow, false)
	return uint32(masked)
}

func (alu *ALU) And(a, b uint32, w Width) uint32 { return alu.bitwise(a&b, w) }
func (alu *ALU) Or(a, b uint32, w Width) uint32  { return alu.bitwise(a|b, w) }
func (alu *ALU) Xor(a, b uint32, w Width) uint32 { return alu.bitwise(a^b, w) }

func (alu *ALU) Not(a uint32, w Width) uint32 {
	t := traitsFor(w)
	return alu.bitwise(uint32(^uint64(a)&t.fullMask), w)
}

// Mul computes the full 2W-bit product. It returns (low, high) halves
// at width w; the caller is responsible for placing them into the
// designated accumulator pair (AX for W=8, EAX for W=16, EAX:EDX for
// W=32). CARRY and OVERFLOW are both set iff the high half is
// significant (unsigned: nonzero; signed: the product doesn't fit in
// W bits); other flags are left untouched.
func (alu *ALU) Mul(a, b uint32, w Width, signed bool) (low, high uint32) {
	t := traitsFor(w)
	if !signed {
		product := uint64(a) * uint64(b)
		low = uint32(product & t.fullMask)
		high = uint32((product >> t.bits) & t.fullMask)
		alu.reg.SetFlag(FlagCarry, high != 0)
		alu.reg.SetFlag(FlagOverflow, high != 0)
		return low, high
	}

	sa := signExtend(a, w)
	sb := signExtend(b, w)
	product := sa * sb
	low = uint32(uint64(product) & t.fullMask)
	high = uint32((uint64(product) >> t.bits) & t.fullMask)

	// Fits in W bits iff sign-extending the low half through the high
	// half reproduces the full product, i.e. high is all-0 or all-1
	// consistent with the low half's sign.
	fits := product >= -(1<<(t.bits-1)) && product < (1<<(t.bits-1))
	alu.reg.SetFlag(FlagCarry, !fits)
	alu.reg.SetFlag(FlagOverflow, !fits)
	return low, high
}

func signExtend(v uint32, w Width) int64 {
	t := traitsFor(w)
	masked := uint64(v) & t.fullMask
	if masked&t.signMask != 0 {
		return int64(masked) - int64(t.fullMask) - 1
	}
	return int64(masked)
}
