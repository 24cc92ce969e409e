// Package io provides interrupt driven devices for the MinVM.
// Each device installs handlers into fixed slots of the machine's interrupt
// table: sequential byte I/O (Tape), a byte FIFO (Temporary), and a state
// monitor (Monitor). Rom loads a program image into memory.
//
// Devices exchange data through register A.
package io

import (
	"iter"

	"github.com/ezrec/minvm/machine"
)

// Interrupt vectors used by the devices.
const (
	ITR_TAPE_READ  = 1  // Read a tape byte into A. Halts at end of tape.
	ITR_TAPE_WRITE = 2  // Write A to the tape.
	ITR_TEMP_PUSH  = 4  // Push A onto the temporary FIFO.
	ITR_TEMP_POP   = 5  // Pop the temporary FIFO into A.
	ITR_TEMP_COUNT = 6  // Number of bytes in the temporary FIFO into A.
	ITR_MONITOR    = 14 // Dump the machine state.
	ITR_TRAP       = 15 // Halt.
)

// Device defines the interface for all interrupt devices.
type Device interface {
	// Rewind resets the device to its initial state.
	Rewind()
	// Defines returns the assembler equates of the device's vectors.
	Defines() iter.Seq2[string, string]
	// Attach installs the device's handlers into the interrupt table.
	Attach(m *machine.Machine)
}
