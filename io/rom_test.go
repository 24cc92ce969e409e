package io

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/minvm/machine"
)

func TestRom_Load(t *testing.T) {
	assert := assert.New(t)

	m := machine.NewMachine()
	rom := &Rom{Data: []byte{0x01, 0x07, 0x00}}
	assert.NoError(rom.Load(m))
	assert.NoError(m.Run())
	assert.Equal(byte(7), m.Register[0])

	rom.Data = make([]byte, machine.MEMORY_SIZE+1)
	assert.ErrorIs(rom.Load(m), machine.ErrProgramTooLarge)
}
