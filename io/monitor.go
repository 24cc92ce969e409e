package io

import (
	"fmt"
	"io"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/minvm/machine"
)

// Monitor reports the machine state on request, and provides the trap
// vector that halts the machine.
type Monitor struct {
	Output io.Writer // Destination of state dumps. Dumps are logged if nil.

	Traps int // Count of trap requests.
	Dumps int // Count of dump requests.
}

var _ Device = (*Monitor)(nil)

// Defines returns an iter of defines for the monitor.
func (mon *Monitor) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"ITR_MONITOR": fmt.Sprintf("%v", ITR_MONITOR),
		"ITR_TRAP":    fmt.Sprintf("%v", ITR_TRAP),
	})
}

// Rewind clears the request counters.
func (mon *Monitor) Rewind() {
	mon.Traps = 0
	mon.Dumps = 0
}

// Attach installs the dump and trap handlers.
func (mon *Monitor) Attach(m *machine.Machine) {
	m.Interrupt[ITR_MONITOR] = mon.dump
	m.Interrupt[ITR_TRAP] = mon.trap
}

func (mon *Monitor) dump(m *machine.Machine) {
	mon.Dumps++

	if mon.Output == nil {
		log.Printf("monitor:\n%v", m)
		return
	}

	_, err := io.WriteString(mon.Output, m.String())
	if err != nil {
		m.Raise(err)
	}
}

func (mon *Monitor) trap(m *machine.Machine) {
	mon.Traps++
	m.Halt()
}
