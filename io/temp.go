package io

import (
	"fmt"
	"iter"
	"maps"

	"github.com/ezrec/minvm/machine"
)

// Temporary implements a circular buffer for temporary byte storage.
// It operates as a FIFO queue with a fixed capacity and separate read/write positions.
type Temporary struct {
	Capacity int // Capacity in bytes.

	ReadIndex  int
	WriteIndex int
	Size       int
	Data       []byte
}

var _ Device = (*Temporary)(nil)

// Defines returns an iter of defines for the temporary FIFO.
func (temp *Temporary) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"ITR_TEMP_PUSH":  fmt.Sprintf("%v", ITR_TEMP_PUSH),
		"ITR_TEMP_POP":   fmt.Sprintf("%v", ITR_TEMP_POP),
		"ITR_TEMP_COUNT": fmt.Sprintf("%v", ITR_TEMP_COUNT),
		"TEMP_CAPACITY":  fmt.Sprintf("%v", temp.Capacity),
	})
}

// Rewind resets the temporary storage to empty, resetting indices and
// reinitializing the data buffer.
func (temp *Temporary) Rewind() {
	temp.ReadIndex = 0
	temp.WriteIndex = 0
	temp.Size = 0
	temp.Data = make([]byte, temp.Capacity)
}

// Attach installs the push, pop and count handlers.
func (temp *Temporary) Attach(m *machine.Machine) {
	m.Interrupt[ITR_TEMP_PUSH] = func(m *machine.Machine) {
		err := temp.Push(m.Register[0])
		if err != nil {
			m.Raise(err)
		}
	}
	m.Interrupt[ITR_TEMP_POP] = func(m *machine.Machine) {
		value, err := temp.Pop()
		if err != nil {
			m.Raise(err)
			return
		}
		m.Register[0] = value
	}
	m.Interrupt[ITR_TEMP_COUNT] = func(m *machine.Machine) {
		m.Register[0] = byte(min(temp.Size, 0xff))
	}
}

// Push writes a byte to the buffer at the current write position.
// Returns ErrChannelFull if the buffer has reached capacity.
func (temp *Temporary) Push(value byte) (err error) {
	if temp.Size >= temp.Capacity {
		err = ErrChannelFull
		return
	}

	if len(temp.Data) != temp.Capacity {
		temp.Rewind()
	}

	temp.Data[temp.WriteIndex] = value

	temp.WriteIndex++
	if temp.WriteIndex == temp.Capacity {
		temp.WriteIndex = 0
	}
	temp.Size++

	return
}

// Pop reads the oldest byte from the buffer.
// Returns ErrChannelEmpty if the buffer is empty.
func (temp *Temporary) Pop() (value byte, err error) {
	if temp.Size == 0 {
		err = ErrChannelEmpty
		return
	}

	value = temp.Data[temp.ReadIndex]
	temp.ReadIndex++
	if temp.ReadIndex == temp.Capacity {
		temp.ReadIndex = 0
	}
	temp.Size--

	return
}
