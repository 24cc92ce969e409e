package machine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

const fuzzStepLimit = 4096

func FuzzMachine(f *testing.F) {
	f.Add([]byte{0x01, 0x05, 0x00}, uint32(0))
	f.Add([]byte{0x41, 0x07}, uint32(0x01020304))
	f.Add([]byte{0x71, 0x03}, uint32(0x00000009))
	f.Add([]byte{0xe3, 0xff}, uint32(0xffffffff))
	f.Add([]byte{0x1f, 0xc0, 0x00}, uint32(0))
	f.Add([]byte{0x33, 0x03, 0xbf, 0xf5, 0x00}, uint32(0x04030201))

	f.Fuzz(func(t *testing.T, program []byte, regs uint32) {
		assert := assert.New(t)

		if len(program) > MEMORY_SIZE {
			program = program[:MEMORY_SIZE]
		}

		m := NewMachine()
		m.Register.Decompose(REG_ALL, regs)
		assert.NoError(m.Load(program))

		for range fuzzStepLimit {
			if m.Halted() {
				break
			}
			err := m.Step()
			if err != nil {
				assert.True(m.Excepted())
				assert.True(errors.Is(err, ErrOpcode{}))
				assert.ErrorIs(err, m.Fault)
			}
		}

		if m.Excepted() {
			assert.True(m.Halted())
			assert.Error(m.Fault)
		} else {
			assert.Nil(m.Fault)
		}
	})
}
