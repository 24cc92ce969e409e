package io

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"maps"

	"github.com/ezrec/minvm/machine"
)

// Tape provides sequential I/O operations for reading and writing byte streams.
// It wraps an io.Reader for input and io.Writer for output.
type Tape struct {
	Input  io.Reader
	Output io.Writer

	Read    int // Bytes read from Input.
	Written int // Bytes written to Output.
}

var _ Device = (*Tape)(nil)

// Defines returns an iter of defines for the tape.
func (tc *Tape) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"ITR_TAPE_READ":  fmt.Sprintf("%v", ITR_TAPE_READ),
		"ITR_TAPE_WRITE": fmt.Sprintf("%v", ITR_TAPE_WRITE),
	})
}

// Rewind is not possible on a tape; only the counters are cleared.
func (tc *Tape) Rewind() {
	tc.Read = 0
	tc.Written = 0
}

// Attach installs the tape read and write handlers.
func (tc *Tape) Attach(m *machine.Machine) {
	m.Interrupt[ITR_TAPE_READ] = tc.receive
	m.Interrupt[ITR_TAPE_WRITE] = tc.send
}

// receive reads a byte from the input into register A.
// The end of the tape halts the machine.
func (tc *Tape) receive(m *machine.Machine) {
	if tc.Input == nil {
		m.Raise(ErrNoTape)
		return
	}

	var one [1]byte
	_, err := io.ReadFull(tc.Input, one[:])
	if errors.Is(err, io.EOF) {
		m.Halt()
		return
	}
	if err != nil {
		m.Raise(err)
		return
	}

	m.Register[0] = one[0]
	tc.Read++
}

// send writes register A to the output.
func (tc *Tape) send(m *machine.Machine) {
	if tc.Output == nil {
		m.Raise(ErrNoTape)
		return
	}

	_, err := tc.Output.Write([]byte{m.Register[0]})
	if err != nil {
		m.Raise(err)
		return
	}

	tc.Written++
}
