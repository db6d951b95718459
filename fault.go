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

// FaultKind tags the closed set of failures the core can raise.
type FaultKind int

const (
	MemoryOutOfBounds FaultKind = iota
	InvalidInstruction
	InvalidMOD
	InvalidRegCode
	InvalidSyscall
	InsufficientMode
	InvalidAddress
)

var faultKindNames = map[FaultKind]string{
	MemoryOutOfBounds:  "MemoryOutOfBounds",
	InvalidInstruction: "InvalidInstruction",
	InvalidMOD:         "InvalidMOD",
	InvalidRegCode:     "InvalidRegCode",
	InvalidSyscall:     "InvalidSyscall",
	InsufficientMode:   "InsufficientMode",
	InvalidAddress:     "InvalidAddress",
}

func (k FaultKind) String() string {
	if name, ok := faultKindNames[k]; ok {
		return name
	}
	return "UnknownFault"
}

// Fault is the single error type raised by the core. Every failing
// operation returns one instead of a bespoke error value, so the
// dispatch loop has one place to render and halt on.
type Fault struct {
	Kind FaultKind
	Msg  string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Msg)
}

func newFault(kind FaultKind, format string, args ...any) *Fault {
	return &Fault{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
