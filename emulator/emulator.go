// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"errors"
	"iter"
	"log"

	"github.com/ezrec/minvm/internal"
	"github.com/ezrec/minvm/io"
	"github.com/ezrec/minvm/machine"
)

const (
	TEMP_CAPACITY = 256 // Bytes in the temporary FIFO.
)

// Emulator state. Machine + program listing + IO devices.
type Emulator struct {
	Verbose          bool             // If set, enables verbose logging.
	*machine.Machine                  // Reference to the machine simulation.
	Program          *machine.Program // Reference to the currently running program listing.

	Rom       io.Rom       // Program image loader.
	Tape      io.Tape      // Tape IO device.
	Temporary io.Temporary // Temporary FIFO device.
	Monitor   io.Monitor   // Monitor and trap device.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Machine: machine.NewMachine(),
		Program: &machine.Program{},
	}

	emu.Temporary.Capacity = TEMP_CAPACITY

	return
}

// devices returns the devices in attach order.
func (emu *Emulator) devices() []io.Device {
	return []io.Device{
		&emu.Tape,
		&emu.Temporary,
		&emu.Monitor,
	}
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	seqs := []iter.Seq2[string, string]{emu.Machine.Defines()}
	for _, dev := range emu.devices() {
		seqs = append(seqs, dev.Defines())
	}

	return internal.IterSeq2Concat(seqs...)
}

// Close the emulator, closing any tape streams that support it.
func (emu *Emulator) Close() (err error) {
	emu.Machine.Halt()

	var errs []error
	if closer, ok := emu.Tape.Input.(interface{ Close() error }); ok {
		errs = append(errs, closer.Close())
	}
	if closer, ok := emu.Tape.Output.(interface{ Close() error }); ok {
		errs = append(errs, closer.Close())
	}
	emu.Tape.Input = nil
	emu.Tape.Output = nil

	err = errors.Join(errs...)

	return
}

// Reset the machine, load the program image, and attach the devices.
func (emu *Emulator) Reset() (err error) {
	emu.Machine.Verbose = false

	emu.Machine.Reset()

	emu.Rom.Data = emu.Program.Binary()
	err = emu.Rom.Load(emu.Machine)
	if err != nil {
		return
	}

	for _, dev := range emu.devices() {
		dev.Rewind()
		dev.Attach(emu.Machine)
	}

	if emu.Verbose {
		log.Printf("emulator: reset, %d byte image", len(emu.Rom.Data))
	}

	emu.Machine.Verbose = emu.Verbose

	return
}

// Ticks returns the total instructions executed since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Machine.Ticks
}

// Pc returns the current program counter.
func (emu *Emulator) Pc() int {
	return int(emu.Machine.Pc)
}

// Code returns the current instruction code.
func (emu *Emulator) Code() machine.Code {
	for addr, code := range emu.Program.Codes() {
		if addr == emu.Machine.Pc {
			return code
		}
	}

	// Executing outside of the listing, or self-modified code.
	return emu.Machine.CodeAt(emu.Machine.Pc)
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Machine.Pc)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single instruction of the emulator.
// done is set once the machine has halted, normally or on an exception.
func (emu *Emulator) Tick() (done bool, err error) {
	emu.Machine.Verbose = emu.Verbose

	if emu.Machine.Halted() {
		done = true
		return
	}

	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Err: err}
		}
	}()

	err = emu.Machine.Step()
	done = emu.Machine.Halted()

	return
}

// Run ticks the emulator until it halts.
// If limit is positive, at most limit instructions are executed before
// ErrStepLimit is returned.
func (emu *Emulator) Run(limit int) (err error) {
	for steps := 0; ; steps++ {
		if limit > 0 && steps >= limit {
			err = ErrStepLimit
			return
		}

		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			return
		}
	}
}
