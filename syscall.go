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

// SYSCALL and SYSRET are the mode transitions that save and restore
// state; URET also drops to user mode, but saves nothing. SYSCALL and
// SYSRET check the mode in their own handlers. HLT, URET and
// SETSYSCALL are kernel-only too, but dispatch.go enforces that
// uniformly via kernelOnlyOps, since unlike SYSCALL they have no
// additional state to save or restore on the way in.

// execSYSCALL traps from user mode into the handler installed at
// syscall table entry EAX. It saves the resuming IP and ESP into the
// hidden supervisor registers so SYSRET can restore them.
func (e *Emulator) execSYSCALL() error {
	if e.reg.Mode() != ModeUser {
		return newFault(InsufficientMode, "SYSCALL requires user mode")
	}

	eax, err := e.reg.Read32(RegEAX)
	if err != nil {
		return err
	}
	if eax >= SyscallTableCount {
		return newFault(InvalidSyscall, "syscall number %d >= %d", eax, SyscallTableCount)
	}

	e.reg.srp = e.reg.IP()
	e.reg.ksp = e.reg.ESP()
	e.reg.SetESP(KernelStackBase)
	e.reg.SetMode(ModeKernel)

	handler, err := e.mem.ReadU32(SyscallTableFirst + 4*eax)
	if err != nil {
		return err
	}
	e.reg.SetIP(handler)
	return nil
}

// execSYSRET returns from a syscall handler to the user code that
// trapped in, restoring IP and ESP and dropping back to user mode.
func (e *Emulator) execSYSRET() error {
	if e.reg.Mode() != ModeKernel {
		return newFault(InsufficientMode, "SYSRET requires kernel mode")
	}
	e.reg.SetIP(e.reg.srp)
	e.reg.SetESP(e.reg.ksp)
	e.reg.SetMode(ModeUser)
	return nil
}

// execURET is the kernel-only path to the user entry point. It
// behaves like an unconditional JMP with the same control-byte-and-
// operand shape as JMP, plus a mode switch, run only after the mode
// gate in dispatch.go has already confirmed kernel mode.
func (e *Emulator) execURET() error {
	cb, err := e.readControlByte()
	if err != nil {
		return err
	}
	target, err := e.resolveControlTarget(cb, 0, 1)
	if err != nil {
		return err
	}
	e.reg.SetMode(ModeUser)
	e.reg.SetIP(target)
	return nil
}

// execSETSYSCALL installs a handler address into the syscall table.
// A control byte with MOD=0 selects "reg32 index, imm32 address";
// MOD=1 selects "imm8 index, imm32 address" for table entries an
// image can hardcode without burning a register.
func (e *Emulator) execSETSYSCALL() error {
	cb, err := e.readControlByte()
	if err != nil {
		return err
	}

	var n uint32
	switch cb.MOD {
	case 0:
		idxReg, regErr := e.fet.NextReg()
		if regErr != nil {
			return regErr
		}
		n, err = e.reg.Read32(idxReg)
		if err != nil {
			return err
		}
	case 1:
		b, immErr := e.fet.NextU8()
		if immErr != nil {
			return immErr
		}
		n = uint32(b)
	default:
		return newFault(InvalidMOD, "MOD=%d is not valid for SETSYSCALL", cb.MOD)
	}

	addr, err := e.fet.NextU32()
	if err != nil {
		return err
	}
	if n >= SyscallTableCount {
		return newFault(InvalidSyscall, "syscall number %d >= %d", n, SyscallTableCount)
	}
	return e.mem.WriteU32(SyscallTableFirst+4*n, addr)
}
