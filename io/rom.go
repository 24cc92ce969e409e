package io

import (
	"github.com/ezrec/minvm/machine"
)

// Rom holds a program image to be loaded at address zero.
type Rom struct {
	Data []byte
}

// Load copies the image into the machine's memory.
func (rc *Rom) Load(m *machine.Machine) (err error) {
	return m.Load(rc.Data)
}
