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

import "sync/atomic"

// Emulator wires together the memory bank, register file, fetcher, and
// ALU, and runs the fetch/dispatch loop. It is single-threaded; the
// only cross-thread interaction is the atomic exitRequested flag set
// by a signal handler between instructions.
type Emulator struct {
	mem *Memory
	reg *RegisterFile
	fet *Fetcher
	alu *ALU

	tracer *Tracer

	exitRequested atomic.Bool
	halted        bool
	cycles        uint64
}

// NewEmulator allocates a fresh memory bank and register file, with
// mode KERNEL so the kernel image runs first.
func NewEmulator() *Emulator {
	mem := NewMemory(MaxMemory)
	reg := NewRegisterFile()
	return &Emulator{
		mem: mem,
		reg: reg,
		fet: NewFetcher(mem, reg),
		alu: NewALU(reg),
	}
}

// RequestExit sets the shared exit flag. Safe to call from a signal
// handler goroutine; the dispatch loop only observes it between
// instructions.
func (e *Emulator) RequestExit() {
	e.exitRequested.Store(true)
}

// Run executes instructions until HLT, an external exit request, or a
// fault. It returns the fault, if any; a clean halt or exit returns nil.
func (e *Emulator) Run() *Fault {
	e.reg.SetIP(ImageStart)
	for {
		if e.exitRequested.Load() {
			return nil
		}
		if e.halted {
			return nil
		}

		startIP := e.reg.IP()
		if e.tracer != nil {
			e.tracer.TracePreInstruction(e)
		}

		if fault := e.step(); fault != nil {
			if e.tracer != nil {
				e.tracer.TraceFault(e, startIP, fault)
			}
			return fault
		}

		e.cycles++
		if e.tracer != nil {
			e.tracer.TracePostInstruction(e, startIP)
		}
	}
}

// step fetches and executes a single instruction.
func (e *Emulator) step() *Fault {
	op, err := e.fet.NextU8()
	if err != nil {
		return err.(*Fault)
	}

	if kernelOnlyOps[op] && e.reg.Mode() != ModeKernel {
		return newFault(InsufficientMode, "opcode 0x%02X (%s) requires kernel mode", op, opcodeNames[op])
	}

	if err := e.dispatch(op); err != nil {
		return err.(*Fault)
	}
	return nil
}

func (e *Emulator) dispatch(op uint8) error {
	switch op {
	case OpNOP:
		return nil
	case OpSYSCALL:
		return e.execSYSCALL()
	case OpSYSRET:
		return e.execSYSRET()
	case OpCALL:
		return e.execCALL()
	case OpRET:
		return e.execRET()
	case OpJMP:
		return e.execJMP()
	case OpJZ, OpJC, OpJO, OpJS, OpJP:
		return e.execJcc(op)
	case OpHLT:
		e.halted = true
		return nil
	case OpURET:
		return e.execURET()
	case OpSETSYSCALL:
		return e.execSETSYSCALL()
	case OpMOV:
		return e.execMOV()
	case OpLB:
		return e.execLB()
	case OpSB:
		return e.execSB()
	case OpPUSH:
		return e.execPUSH()
	case OpPOP:
		return e.execPOP()
	case OpCMP:
		return e.execCMP()
	case OpAND:
		return e.execBinaryBitwise(op)
	case OpOR:
		return e.execBinaryBitwise(op)
	case OpXOR:
		return e.execBinaryBitwise(op)
	case OpNOT:
		return e.execNOT()
	case OpADD, OpSUB:
		return e.execAddSub(op)
	case OpMUL:
		return e.execMUL()
	default:
		return newFault(InvalidInstruction, "unknown opcode 0x%02X", op)
	}
}
