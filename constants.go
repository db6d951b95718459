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

// Memory layout. Fixed windows within the 256 MiB flat bank.
const (
	MaxMemory = 0x1000_0000 // 256 MiB

	SyscallTableFirst = 0x0000_0100
	SyscallTableSize  = 0x0000_0400 // 256 entries * 4 bytes
	SyscallTableCount = SyscallTableSize / 4

	KernelStackBase = 0x0000_0500
	KernelStackTop  = 0x0001_0500 // 64 KiB kernel stack

	ImageStart     = 0x0001_0500
	MaxKernelLen   = 0x0002_0000 // 128 KiB
	UserSpaceStart = 0x0004_0000
)

// FLAGS bit positions.
const (
	FlagCarry    = 0
	FlagParity   = 2
	FlagZero     = 6
	FlagSign     = 7
	FlagOverflow = 11
)

// Mode is the processor privilege mode.
type Mode uint8

const (
	ModeUser Mode = iota
	ModeKernel
)

func (m Mode) String() string {
	if m == ModeKernel {
		return "kernel"
	}
	return "user"
}

// RegCode identifies a register operand in the instruction stream.
type RegCode uint8

const (
	RegEAX RegCode = 0x00
	RegAX  RegCode = 0x01
	RegAH  RegCode = 0x02
	RegAL  RegCode = 0x03
	RegEBX RegCode = 0x04
	RegBX  RegCode = 0x05
	RegBH  RegCode = 0x06
	RegBL  RegCode = 0x07
	RegECX RegCode = 0x08
	RegCX  RegCode = 0x09
	RegCH  RegCode = 0x0A
	RegCL  RegCode = 0x0B
	RegEDX RegCode = 0x0C
	RegDX  RegCode = 0x0D
	RegDH  RegCode = 0x0E
	RegDL  RegCode = 0x0F

	RegIP  RegCode = 0x10
	RegESP RegCode = 0x11
	RegSP  RegCode = 0x12
	RegEBP RegCode = 0x13
	RegBP  RegCode = 0x14
	RegESI RegCode = 0x15
	RegSI  RegCode = 0x16
	RegEDI RegCode = 0x17
	RegDI  RegCode = 0x18
	RegRP  RegCode = 0x19
)

var regNames = map[RegCode]string{
	RegEAX: "EAX", RegAX: "AX", RegAH: "AH", RegAL: "AL",
	RegEBX: "EBX", RegBX: "BX", RegBH: "BH", RegBL: "BL",
	RegECX: "ECX", RegCX: "CX", RegCH: "CH", RegCL: "CL",
	RegEDX: "EDX", RegDX: "DX", RegDH: "DH", RegDL: "DL",
	RegIP: "IP", RegESP: "ESP", RegSP: "SP", RegEBP: "EBP", RegBP: "BP",
	RegESI: "ESI", RegSI: "SI", RegEDI: "EDI", RegDI: "DI", RegRP: "RP",
}

func (r RegCode) String() string {
	if name, ok := regNames[r]; ok {
		return name
	}
	return "???"
}

// Opcodes, per the instruction set.
const (
	OpNOP        = 0x00
	OpSYSCALL    = 0x01
	OpSYSRET     = 0x02
	OpCALL       = 0x03
	OpRET        = 0x04
	OpJMP        = 0x05
	OpJZ         = 0x06
	OpJC         = 0x07
	OpJO         = 0x08
	OpJS         = 0x09
	OpJP         = 0x0A
	OpHLT        = 0x15
	OpURET       = 0x16
	OpSETSYSCALL = 0x17
	OpMOV        = 0x30
	OpLB         = 0x31
	OpSB         = 0x32
	OpPUSH       = 0x33
	OpPOP        = 0x34
	OpCMP        = 0x61
	OpAND        = 0x62
	OpOR         = 0x63
	OpXOR        = 0x64
	OpNOT        = 0x65
	OpADD        = 0x6A
	OpSUB        = 0x6B
	OpMUL        = 0x6C
)

var opcodeNames = map[uint8]string{
	OpNOP: "NOP", OpSYSCALL: "SYSCALL", OpSYSRET: "SYSRET",
	OpCALL: "CALL", OpRET: "RET", OpJMP: "JMP",
	OpJZ: "JZ", OpJC: "JC", OpJO: "JO", OpJS: "JS", OpJP: "JP",
	OpHLT: "HLT", OpURET: "URET", OpSETSYSCALL: "SETSYSCALL",
	OpMOV: "MOV", OpLB: "LB", OpSB: "SB", OpPUSH: "PUSH", OpPOP: "POP",
	OpCMP: "CMP", OpAND: "AND", OpOR: "OR", OpXOR: "XOR", OpNOT: "NOT",
	OpADD: "ADD", OpSUB: "SUB", OpMUL: "MUL",
}

// jccFlags maps each conditional-jump opcode to the flag bit it tests.
var jccFlags = map[uint8]int{
	OpJZ: FlagZero,
	OpJC: FlagCarry,
	OpJO: FlagOverflow,
	OpJS: FlagSign,
	OpJP: FlagParity,
}

// kernelOnlyOps fail with InsufficientMode when run from user mode.
var kernelOnlyOps = map[uint8]bool{
	OpHLT:        true,
	OpURET:       true,
	OpSETSYSCALL: true,
}

// Width is the operand width of a data-movement or ALU operation, in bytes.
type Width int

const (
	Width8  Width = 1
	Width16 Width = 2
	Width32 Width = 4
)
