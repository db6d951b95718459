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

// One handler per opcode family. Each reads its own control byte and
// operands from the fetcher, then performs the effect described in
// the instruction table. A handler that detects a fault returns it
// immediately; it never leaves a register or memory write half done.

func (e *Emulator) readControlByte() (ControlByte, error) {
	b, err := e.fet.NextU8()
	if err != nil {
		return ControlByte{}, err
	}
	return decodeControlByte(b), nil
}

func (e *Emulator) readRegWidth(code RegCode, w Width) (uint32, error) {
	switch w {
	case Width8:
		v, err := e.reg.Read8(code)
		return uint32(v), err
	case Width16:
		v, err := e.reg.Read16(code)
		return uint32(v), err
	default:
		return e.reg.Read32(code)
	}
}

func (e *Emulator) writeRegWidth(code RegCode, w Width, v uint32) error {
	switch w {
	case Width8:
		return e.reg.Write8(code, uint8(v))
	case Width16:
		return e.reg.Write16(code, uint16(v))
	default:
		return e.reg.Write32(code, v)
	}
}

// widthForBinaryMOD maps the shared data-movement-binary MOD table
// (0/3 -> 8-bit, 1/4 -> 16-bit, 2/5 -> 32-bit) to a Width.
func widthForBinaryMOD(mod uint8) Width {
	switch mod % 3 {
	case 0:
		return Width8
	case 1:
		return Width16
	default:
		return Width32
	}
}

// decodeBinaryOperands decodes the shared MOD table used by MOV and
// the binary ALU ops: MOD 0-2 is reg,imm at width 8/16/32; MOD 3-5 is
// reg,reg at the same widths. It returns the operation width, the
// decoded destination register, the destination's current value (not
// needed by MOV, but harmless to read), and the source value.
func (e *Emulator) decodeBinaryOperands(cb ControlByte) (Width, RegCode, uint32, uint32, error) {
	if err := requireMOD(cb.MOD, 0, 1, 2, 3, 4, 5); err != nil {
		return 0, 0, 0, 0, err
	}
	w := widthForBinaryMOD(cb.MOD)

	dest, err := e.fet.NextReg()
	if err != nil {
		return 0, 0, 0, 0, err
	}
	destVal, err := e.readRegWidth(dest, w)
	if err != nil {
		return 0, 0, 0, 0, err
	}

	var src uint32
	if cb.MOD <= 2 {
		switch w {
		case Width8:
			v, err := e.fet.NextU8()
			if err != nil {
				return 0, 0, 0, 0, err
			}
			src = uint32(v)
		case Width16:
			v, err := e.fet.NextU16()
			if err != nil {
				return 0, 0, 0, 0, err
			}
			src = uint32(v)
		default:
			v, err := e.fet.NextU32()
			if err != nil {
				return 0, 0, 0, 0, err
			}
			src = v
		}
	} else {
		srcReg, err := e.fet.NextReg()
		if err != nil {
			return 0, 0, 0, 0, err
		}
		src, err = e.readRegWidth(srcReg, w)
		if err != nil {
			return 0, 0, 0, 0, err
		}
	}

	return w, dest, destVal, src, nil
}

// decodeAddressOperand decodes the LB/SB MOD table: 0/2/4 address the
// memory operand with an immediate address (absolute or IP-relative
// per ADDR_MODE); 1/3/5 address it through a register holding the
// address. It returns the data register and the resolved address.
func (e *Emulator) decodeAddressOperand(cb ControlByte) (Width, RegCode, uint32, error) {
	var w Width
	immediate := false
	switch cb.MOD {
	case 0:
		w, immediate = Width8, true
	case 1:
		w = Width8
	case 2:
		w, immediate = Width16, true
	case 3:
		w = Width16
	case 4:
		w, immediate = Width32, true
	case 5:
		w = Width32
	default:
		return 0, 0, 0, newFault(InvalidMOD, "MOD=%d is not valid for LB/SB", cb.MOD)
	}

	dataReg, err := e.fet.NextReg()
	if err != nil {
		return 0, 0, 0, err
	}

	var addr uint32
	if immediate {
		if cb.Absolute {
			addr, err = e.fet.NextU32()
		} else {
			addr, err = e.fet.ReadRel32()
		}
	} else {
		addrReg, regErr := e.fet.NextReg()
		if regErr != nil {
			return 0, 0, 0, regErr
		}
		addr, err = e.reg.Read32(addrReg)
	}
	if err != nil {
		return 0, 0, 0, err
	}
	return w, dataReg, addr, nil
}

// resolveControlTarget decodes a CALL/JMP/Jcc target: MOD 0/2 is an
// immediate address (absolute or IP-relative), MOD 1/3 is register
// indirect. The caller restricts which of these MOD values its own
// opcode allows. For register indirect the register is read only
// after its register byte (and hence IP) has already advanced, so
// naming IP as the register yields the address just past the operand
// bytes. The register-indirect form carries no displacement.
func (e *Emulator) resolveControlTarget(cb ControlByte, allowed ...uint8) (uint32, error) {
	if err := requireMOD(cb.MOD, allowed...); err != nil {
		return 0, err
	}
	if cb.MOD == 0 || cb.MOD == 2 {
		if cb.Absolute {
			return e.fet.NextU32()
		}
		return e.fet.ReadRel32()
	}
	r, err := e.fet.NextReg()
	if err != nil {
		return 0, err
	}
	return e.reg.Read32(r)
}

func (e *Emulator) execCALL() error {
	cb, err := e.readControlByte()
	if err != nil {
		return err
	}
	target, err := e.resolveControlTarget(cb, 0, 1)
	if err != nil {
		return err
	}
	e.reg.SetRP(e.reg.IP())
	e.reg.SetIP(target)
	return nil
}

func (e *Emulator) execRET() error {
	e.reg.SetIP(e.reg.RP())
	return nil
}

func (e *Emulator) execJMP() error {
	cb, err := e.readControlByte()
	if err != nil {
		return err
	}
	target, err := e.resolveControlTarget(cb, 0, 1)
	if err != nil {
		return err
	}
	e.reg.SetIP(target)
	return nil
}

// execJcc handles JZ/JC/JO/JS/JP. MOD 0/1 take the branch when the
// tested flag is set; MOD 2/3 negate the test.
func (e *Emulator) execJcc(op uint8) error {
	cb, err := e.readControlByte()
	if err != nil {
		return err
	}
	target, err := e.resolveControlTarget(cb, 0, 1, 2, 3)
	if err != nil {
		return err
	}
	take := e.reg.GetFlag(jccFlags[op])
	if cb.MOD == 2 || cb.MOD == 3 {
		take = !take
	}
	if take {
		e.reg.SetIP(target)
	}
	return nil
}

func (e *Emulator) execMOV() error {
	cb, err := e.readControlByte()
	if err != nil {
		return err
	}
	w, dest, _, src, err := e.decodeBinaryOperands(cb)
	if err != nil {
		return err
	}
	return e.writeRegWidth(dest, w, src)
}

func (e *Emulator) execLB() error {
	cb, err := e.readControlByte()
	if err != nil {
		return err
	}
	w, dest, addr, err := e.decodeAddressOperand(cb)
	if err != nil {
		return err
	}
	v, err := e.mem.ReadWidth(addr, w)
	if err != nil {
		return err
	}
	return e.writeRegWidth(dest, w, v)
}

func (e *Emulator) execSB() error {
	cb, err := e.readControlByte()
	if err != nil {
		return err
	}
	w, src, addr, err := e.decodeAddressOperand(cb)
	if err != nil {
		return err
	}
	v, err := e.readRegWidth(src, w)
	if err != nil {
		return err
	}
	return e.mem.WriteWidth(addr, w, v)
}

// execPUSH writes the operand at ESP, little-endian, then advances
// ESP by the operand width. Flags are never consulted or touched.
func (e *Emulator) execPUSH() error {
	cb, err := e.readControlByte()
	if err != nil {
		return err
	}

	var w Width
	var v uint32
	switch cb.MOD {
	case 0:
		w = Width8
		r, regErr := e.fet.NextReg()
		if regErr != nil {
			return regErr
		}
		b, readErr := e.reg.Read8(r)
		if readErr != nil {
			return readErr
		}
		v = uint32(b)
	case 1:
		w = Width8
		b, immErr := e.fet.NextU8()
		if immErr != nil {
			return immErr
		}
		v = uint32(b)
	case 2:
		w = Width16
		r, regErr := e.fet.NextReg()
		if regErr != nil {
			return regErr
		}
		h, readErr := e.reg.Read16(r)
		if readErr != nil {
			return readErr
		}
		v = uint32(h)
	case 3:
		w = Width16
		h, immErr := e.fet.NextU16()
		if immErr != nil {
			return immErr
		}
		v = uint32(h)
	case 4:
		w = Width32
		r, regErr := e.fet.NextReg()
		if regErr != nil {
			return regErr
		}
		v, err = e.reg.Read32(r)
		if err != nil {
			return err
		}
	case 5:
		w = Width32
		v, err = e.fet.NextU32()
		if err != nil {
			return err
		}
	default:
		return newFault(InvalidMOD, "MOD=%d is not valid for PUSH", cb.MOD)
	}

	addr := e.reg.ESP()
	if err := e.mem.WriteWidth(addr, w, v); err != nil {
		return err
	}
	e.reg.SetESP(addr + uint32(w))
	return nil
}

// execPOP retreats ESP by the operand width, then reads little-endian
// from the new ESP, discarding the value for the odd MOD variants.
func (e *Emulator) execPOP() error {
	cb, err := e.readControlByte()
	if err != nil {
		return err
	}

	var w Width
	hasDest := false
	switch cb.MOD {
	case 0:
		w, hasDest = Width8, true
	case 1:
		w = Width8
	case 2:
		w, hasDest = Width16, true
	case 3:
		w = Width16
	case 4:
		w, hasDest = Width32, true
	case 5:
		w = Width32
	default:
		return newFault(InvalidMOD, "MOD=%d is not valid for POP", cb.MOD)
	}

	var dest RegCode
	if hasDest {
		dest, err = e.fet.NextReg()
		if err != nil {
			return err
		}
	}

	newESP := e.reg.ESP() - uint32(w)
	v, err := e.mem.ReadWidth(newESP, w)
	if err != nil {
		return err
	}
	e.reg.SetESP(newESP)

	if hasDest {
		return e.writeRegWidth(dest, w, v)
	}
	return nil
}

func (e *Emulator) execCMP() error {
	cb, err := e.readControlByte()
	if err != nil {
		return err
	}
	w, _, destVal, src, err := e.decodeBinaryOperands(cb)
	if err != nil {
		return err
	}
	e.alu.Cmp(destVal, src, w, cb.Signed)
	return nil
}

func (e *Emulator) execBinaryBitwise(op uint8) error {
	cb, err := e.readControlByte()
	if err != nil {
		return err
	}
	w, dest, destVal, src, err := e.decodeBinaryOperands(cb)
	if err != nil {
		return err
	}

	var result uint32
	switch op {
	case OpAND:
		result = e.alu.And(destVal, src, w)
	case OpOR:
		result = e.alu.Or(destVal, src, w)
	case OpXOR:
		result = e.alu.Xor(destVal, src, w)
	}
	return e.writeRegWidth(dest, w, result)
}

func (e *Emulator) execNOT() error {
	cb, err := e.readControlByte()
	if err != nil {
		return err
	}

	var w Width
	switch cb.MOD {
	case 0:
		w = Width8
	case 1:
		w = Width16
	case 2:
		w = Width32
	default:
		return newFault(InvalidMOD, "MOD=%d is not valid for NOT", cb.MOD)
	}

	dest, err := e.fet.NextReg()
	if err != nil {
		return err
	}
	v, err := e.readRegWidth(dest, w)
	if err != nil {
		return err
	}
	return e.writeRegWidth(dest, w, e.alu.Not(v, w))
}

func (e *Emulator) execAddSub(op uint8) error {
	cb, err := e.readControlByte()
	if err != nil {
		return err
	}
	w, dest, destVal, src, err := e.decodeBinaryOperands(cb)
	if err != nil {
		return err
	}

	var result uint32
	if op == OpADD {
		result = e.alu.Add(destVal, src, w, cb.Signed)
	} else {
		result = e.alu.Sub(destVal, src, w, cb.Signed)
	}
	return e.writeRegWidth(dest, w, result)
}

// execMUL multiplies the decoded destination operand by the decoded
// source operand and writes the full 2W-bit product into the
// designated accumulator, not back into the decoded destination
// register: AX for W=8, EAX for W=16, EAX:EDX (low:high) for W=32.
func (e *Emulator) execMUL() error {
	cb, err := e.readControlByte()
	if err != nil {
		return err
	}
	w, _, destVal, src, err := e.decodeBinaryOperands(cb)
	if err != nil {
		return err
	}

	low, high := e.alu.Mul(destVal, src, w, cb.Signed)
	switch w {
	case Width8:
		return e.reg.Write16(RegAX, uint16(high)<<8|uint16(low))
	case Width16:
		return e.reg.Write32(RegEAX, high<<16|low)
	default:
		if err := e.reg.Write32(RegEAX, low); err != nil {
			return err
		}
		return e.reg.Write32(RegEDX, high)
	}
}
