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
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"
)

var (
	traceFile   = flag.String("trace", "", "write an execution trace to this file")
	showVersion = flag.Bool("version", false, "show version and exit")
)

const version = "1.0.0"

var savedTermState *term.State

// setupTerminal puts the terminal in raw mode, if stdin is one, so a
// traced or interactive run doesn't fight local line editing. The
// emulator itself has no console device, so an emulated image never
// reads or writes the terminal.
func setupTerminal() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil
	}
	state, err := term.GetState(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("failed to get terminal state: %v", err)
	}
	savedTermState = state
	if _, err := term.MakeRaw(int(os.Stdin.Fd())); err != nil {
		return fmt.Errorf("failed to set raw mode: %v", err)
	}
	return nil
}

func restoreTerminal() {
	if savedTermState != nil && term.IsTerminal(int(os.Stdin.Fd())) {
		term.Restore(int(os.Stdin.Fd()), savedTermState)
	}
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Printf("tpu %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) != 1 {
		usage()
		os.Exit(1)
	}
	imagePath := args[0]

	data, err := os.ReadFile(imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tpu: error reading image %q: %v\n", imagePath, err)
		os.Exit(1)
	}

	emu := NewEmulator()
	if err := LoadImage(emu.mem, data); err != nil {
		fmt.Fprintf(os.Stderr, "tpu: error loading image %q: %v\n", imagePath, err)
		os.Exit(1)
	}

	if *traceFile != "" {
		f, err := os.Create(*traceFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "tpu: error creating trace file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		emu.tracer = NewTracer(f)
		fmt.Fprintf(f, "tpu trace: %s (%d bytes)\n\n", imagePath, len(data))
	}

	if err := setupTerminal(); err != nil {
		fmt.Fprintf(os.Stderr, "tpu: %v\n", err)
		os.Exit(1)
	}
	defer restoreTerminal()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		emu.RequestExit()
	}()

	fault := emu.Run()
	restoreTerminal()

	if fault != nil {
		fmt.Fprintf(os.Stderr, "tpu: emulated program faulted: %v\n\n", fault)
		emu.reg.Dump(os.Stderr)
	}
	os.Exit(0)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [options] <image-file>\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "tpu is a virtual-processor emulator. <image-file> is a binary image\n")
	fmt.Fprintf(os.Stderr, "with a kernel segment and a user segment (see the loader format).\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
}
