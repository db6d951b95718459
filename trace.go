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

import (
	"fmt"
	"io"
)

// Tracer writes a line of text per instruction: the address and
// disassembly before, then the registers and flags that changed
// after. It holds a snapshot of the registers it cares about so
// TracePostInstruction can report only the deltas.
type Tracer struct {
	out io.Writer

	prevEAX, prevEBX, prevECX, prevEDX uint32
	prevESP, prevEBP, prevESI, prevEDI uint32
	prevRP                             uint32
	prevFlags                          uint16
	prevMode                           Mode
}

func NewTracer(out io.Writer) *Tracer {
	return &Tracer{out: out}
}

func (t *Tracer) snapshot(e *Emulator) {
	t.prevEAX, _ = e.reg.Read32(RegEAX)
	t.prevEBX, _ = e.reg.Read32(RegEBX)
	t.prevECX, _ = e.reg.Read32(RegECX)
	t.prevEDX, _ = e.reg.Read32(RegEDX)
	t.prevESP = e.reg.ESP()
	t.prevEBP, _ = e.reg.Read32(RegEBP)
	t.prevESI, _ = e.reg.Read32(RegESI)
	t.prevEDI, _ = e.reg.Read32(RegEDI)
	t.prevRP = e.reg.RP()
	t.prevFlags = e.reg.Flags()
	t.prevMode = e.reg.Mode()
}

// TracePreInstruction snapshots register state and disassembles the
// instruction about to run, without disturbing IP: Disassemble reads
// memory directly rather than through the fetcher.
func (t *Tracer) TracePreInstruction(e *Emulator) {
	t.snapshot(e)
	text, _ := Disassemble(e.mem, e.reg.IP())
	fmt.Fprintf(t.out, "cycle %d  ip=0x%08X [%s]  %s\n", e.cycles, e.reg.IP(), e.reg.Mode(), text)
}

// TracePostInstruction reports the registers, flags, and mode that
// changed as a result of the instruction that started at startIP.
func (t *Tracer) TracePostInstruction(e *Emulator, startIP uint32) {
	type namedReg struct {
		name     string
		before   uint32
		after    uint32
	}
	regs := []namedReg{
		{"EAX", t.prevEAX, mustRead32(e, RegEAX)},
		{"EBX", t.prevEBX, mustRead32(e, RegEBX)},
		{"ECX", t.prevECX, mustRead32(e, RegECX)},
		{"EDX", t.prevEDX, mustRead32(e, RegEDX)},
		{"ESP", t.prevESP, e.reg.ESP()},
		{"EBP", t.prevEBP, mustRead32(e, RegEBP)},
		{"ESI", t.prevESI, mustRead32(e, RegESI)},
		{"EDI", t.prevEDI, mustRead32(e, RegEDI)},
		{"RP", t.prevRP, e.reg.RP()},
	}

	changed := false
	for _, r := range regs {
		if r.before != r.after {
			if !changed {
				fmt.Fprintf(t.out, "  ->")
				changed = true
			}
			fmt.Fprintf(t.out, " %s=0x%08X", r.name, r.after)
		}
	}
	if changed {
		fmt.Fprintln(t.out)
	}

	if e.reg.Flags() != t.prevFlags {
		fmt.Fprintf(t.out, "  flags: 0b%016b\n", e.reg.Flags())
	}
	if e.reg.Mode() != t.prevMode {
		fmt.Fprintf(t.out, "  mode switch: %s -> %s\n", t.prevMode, e.reg.Mode())
	}
}

// TraceFault reports the fault that aborted the instruction at startIP.
func (t *Tracer) TraceFault(e *Emulator, startIP uint32, fault *Fault) {
	fmt.Fprintf(t.out, "*** fault at ip=0x%08X: %v\n", startIP, fault)
}

func mustRead32(e *Emulator, code RegCode) uint32 {
	v, _ := e.reg.Read32(code)
	return v
}
