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

// ControlByte is the single byte following most opcodes: MOD selects
// the operand shape, SIGN picks signed vs. unsigned arithmetic, and
// ADDR_MODE picks relative vs. absolute addressing for address-taking
// instructions. Bits 5-7 are reserved and ignored.
type ControlByte struct {
	MOD      uint8
	Signed   bool
	Absolute bool
}

func decodeControlByte(b uint8) ControlByte {
	return ControlByte{
		MOD:      b & 0x07,
		Signed:   b&0x08 != 0,
		Absolute: b&0x10 != 0,
	}
}

// requireMOD fails with InvalidMOD unless mod is one of the values a
// given opcode's encoding table allows.
func requireMOD(mod uint8, allowed ...uint8) error {
	for _, a := range allowed {
		if mod == a {
			return nil
		}
	}
	return newFault(InvalidMOD, "MOD=%d is not valid for this instruction", mod)
}
