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

// Fetcher advances IP while reading the instruction stream. Every
// Next* call reads at the current IP and then posts IP forward by the
// width read, mirroring the real PC-advance-on-fetch discipline.
type Fetcher struct {
	mem *Memory
	reg *RegisterFile
}

func NewFetcher(mem *Memory, reg *RegisterFile) *Fetcher {
	return &Fetcher{mem: mem, reg: reg}
}

func (f *Fetcher) NextU8() (uint8, error) {
	v, err := f.mem.ReadU8(f.reg.IP())
	if err != nil {
		return 0, err
	}
	f.reg.SetIP(f.reg.IP() + 1)
	return v, nil
}

func (f *Fetcher) NextU16() (uint16, error) {
	v, err := f.mem.ReadU16(f.reg.IP())
	if err != nil {
		return 0, err
	}
	f.reg.SetIP(f.reg.IP() + 2)
	return v, nil
}

func (f *Fetcher) NextU32() (uint32, error) {
	v, err := f.mem.ReadU32(f.reg.IP())
	if err != nil {
		return 0, err
	}
	f.reg.SetIP(f.reg.IP() + 4)
	return v, nil
}

// NextReg reads the next instruction-stream byte as a RegCode. It does not itself
// validate the code; callers that need a specific width do that via
// the RegisterFile accessor they go on to use.
func (f *Fetcher) NextReg() (RegCode, error) {
	v, err := f.NextU8()
	if err != nil {
		return 0, err
	}
	return RegCode(v), nil
}

// ReadRel32 consumes a 32-bit signed displacement and returns the
// target address: IP *after* the displacement is consumed, plus the
// displacement. This is what makes "CALL [IP + disp]"-style encodings
// PC-relative to the instruction following the displacement, not the
// one containing it.
func (f *Fetcher) ReadRel32() (uint32, error) {
	raw, err := f.NextU32()
	if err != nil {
		return 0, err
	}
	disp := int32(raw)
	return uint32(int64(f.reg.IP()) + int64(disp)), nil
}
