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

// cursor is a read-only walk over memory used by the disassembler, so
// that producing trace text never disturbs the fetcher's IP.
type cursor struct {
	mem *Memory
	pos uint32
}

func (c *cursor) u8() uint8 {
	v, err := c.mem.ReadU8(c.pos)
	if err != nil {
		return 0
	}
	c.pos++
	return v
}

func (c *cursor) u16() uint16 {
	v, err := c.mem.ReadU16(c.pos)
	if err != nil {
		return 0
	}
	c.pos += 2
	return v
}

func (c *cursor) u32() uint32 {
	v, err := c.mem.ReadU32(c.pos)
	if err != nil {
		return 0
	}
	c.pos += 4
	return v
}

func (c *cursor) reg() RegCode { return RegCode(c.u8()) }

// Disassemble renders one instruction starting at addr as text and
// reports how many bytes it occupies. It never fails loudly: an
// unknown opcode or a bad MOD in the binary, load/store, PUSH and POP
// families renders as a "???" fragment, and bytes past the end of
// memory read as zero, rather than propagating a Fault, since this is
// a diagnostic aid, not the execution path.
func Disassemble(mem *Memory, addr uint32) (string, uint32) {
	c := &cursor{mem: mem, pos: addr}
	op := c.u8()
	name := opcodeNames[op]
	if name == "" {
		return fmt.Sprintf("??? (0x%02X)", op), c.pos - addr
	}

	switch op {
	case OpNOP, OpSYSCALL, OpSYSRET, OpRET, OpHLT:
		return name, c.pos - addr

	case OpCALL, OpJMP, OpJZ, OpJC, OpJO, OpJS, OpJP, OpURET:
		cb := decodeControlByte(c.u8())
		return fmt.Sprintf("%s %s", name, disasmControlTarget(c, cb)), c.pos - addr

	case OpSETSYSCALL:
		cb := decodeControlByte(c.u8())
		if cb.MOD == 0 {
			r := c.reg()
			target := c.u32()
			return fmt.Sprintf("%s %s, 0x%08X", name, r, target), c.pos - addr
		}
		n := c.u8()
		target := c.u32()
		return fmt.Sprintf("%s %d, 0x%08X", name, n, target), c.pos - addr

	case OpMOV, OpCMP, OpAND, OpOR, OpXOR, OpADD, OpSUB, OpMUL:
		cb := decodeControlByte(c.u8())
		dest, src := disasmBinaryOperands(c, cb)
		suffix := ""
		if cb.Signed {
			suffix = " signed"
		}
		return fmt.Sprintf("%s %s, %s%s", name, dest, src, suffix), c.pos - addr

	case OpLB, OpSB:
		cb := decodeControlByte(c.u8())
		reg := c.reg()
		operand := disasmAddress(c, cb)
		return fmt.Sprintf("%s %s, %s", name, reg, operand), c.pos - addr

	case OpPUSH:
		cb := decodeControlByte(c.u8())
		return fmt.Sprintf("%s %s", name, disasmPushOperand(c, cb)), c.pos - addr

	case OpPOP:
		cb := decodeControlByte(c.u8())
		return fmt.Sprintf("%s %s", name, disasmPopOperand(c, cb)), c.pos - addr

	case OpNOT:
		c.u8() // control byte; the register name already implies the width
		r := c.reg()
		return fmt.Sprintf("%s %s", name, r), c.pos - addr

	default:
		return fmt.Sprintf("%s ???", name), c.pos - addr
	}
}

func disasmControlTarget(c *cursor, cb ControlByte) string {
	if cb.MOD == 0 || cb.MOD == 2 {
		raw := c.u32()
		if cb.Absolute {
			return fmt.Sprintf("0x%08X", raw)
		}
		return fmt.Sprintf("[IP+%d]", int32(raw))
	}
	return fmt.Sprintf("[%s]", c.reg())
}

func disasmBinaryOperands(c *cursor, cb ControlByte) (string, string) {
	dest := c.reg().String()
	switch cb.MOD {
	case 0:
		return dest, fmt.Sprintf("0x%02X", c.u8())
	case 1:
		return dest, fmt.Sprintf("0x%04X", c.u16())
	case 2:
		return dest, fmt.Sprintf("0x%08X", c.u32())
	case 3, 4, 5:
		return dest, c.reg().String()
	default:
		return dest, "???"
	}
}

func disasmAddress(c *cursor, cb ControlByte) string {
	switch cb.MOD {
	case 0, 2, 4:
		raw := c.u32()
		if cb.Absolute {
			return fmt.Sprintf("[0x%08X]", raw)
		}
		return fmt.Sprintf("[IP+%d]", int32(raw))
	case 1, 3, 5:
		return fmt.Sprintf("[%s]", c.reg())
	default:
		return "[???]"
	}
}

func disasmPushOperand(c *cursor, cb ControlByte) string {
	switch cb.MOD {
	case 0, 2, 4:
		return c.reg().String()
	case 1:
		return fmt.Sprintf("0x%02X", c.u8())
	case 3:
		return fmt.Sprintf("0x%04X", c.u16())
	case 5:
		return fmt.Sprintf("0x%08X", c.u32())
	default:
		return "???"
	}
}

func disasmPopOperand(c *cursor, cb ControlByte) string {
	switch cb.MOD {
	case 0, 2, 4:
		return c.reg().String()
	case 1, 3, 5:
		return "<discard>"
	default:
		return "???"
	}
}
