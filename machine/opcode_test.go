package machine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_Decode(t *testing.T) {
	assert := assert.New(t)

	code := MakeCode(OP_ADD, REG_C, byte(REG_A|REG_B))
	assert.Equal(byte(0x44), code.Word)
	assert.Equal(OP_ADD, code.Op())
	assert.Equal(REG_C, code.Arg())
	assert.Equal(2, code.Len())
	assert.Equal([]byte{0x44, 0x03}, code.Bytes())

	assert.Equal(Code{Word: 0x00}, MakeCodeHalt())
}

func TestCode_OperandNeed(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		word byte
		need int
	}){
		{0x00, 0},
		{0x01, 1},
		{0x0b, 3},
		{0x0f, 4},
		{0x1f, 0},
		{0x2f, 0},
		{0x31, 1},
		{0x40, 1},
		{0x7f, 1},
		{0xa3, 1},
		{0xbf, 0},
		{0xc0, 1},
		{0xdf, 1},
		{0xe3, 1},
		{0xf3, 0},
	}

	for _, entry := range table {
		assert.Equal(entry.need, Code{Word: entry.word}.OperandNeed(), "word %#02x", entry.word)
	}
}

func TestDecode(t *testing.T) {
	assert := assert.New(t)

	mem := []byte{0x03, 0x11, 0x22, 0xd1, 0x00, 0x45}

	code, err := Decode(mem, 0)
	assert.NoError(err)
	assert.Equal(MakeCode(OP_LOADI, REG_A|REG_B, 0x11, 0x22), code)

	code, err = Decode(mem, 3)
	assert.NoError(err)
	assert.Equal(MakeCode(OP_JMPEQ, REG_A, 0x00), code)

	code, err = Decode(mem, 4)
	assert.NoError(err)
	assert.Equal(MakeCodeHalt(), code)

	_, err = Decode(mem, 5)
	assert.ErrorIs(err, ErrCodeTruncated)

	_, err = Decode(mem, 6)
	assert.ErrorIs(err, ErrCodeTruncated)
}

func TestCode_String(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("halt", MakeCodeHalt().String())
	assert.Equal("inc abcd", MakeCode(OP_INC, REG_ALL).String())
	assert.Equal("add c ab", MakeCode(OP_ADD, REG_C, 0x03).String())
	assert.Equal("sub c 0x13", MakeCode(OP_SUB, REG_C, 0x13).String())
	assert.Equal("itr 12", MakeCode(OP_ITR, 12).String())
	assert.Equal("jmpeq - 0x04", MakeCode(OP_JMPEQ, 0, 0x04).String())
	assert.Equal("loadi ab 0x01 0xff", MakeCode(OP_LOADI, REG_A|REG_B, 0x01, 0xff).String())
	assert.Equal("stor bd ?", MakeCode(OP_STOR, REG_B|REG_D).String())
}

// Every instruction disassembles to text that assembles to the same bytes.
func TestCode_StringAssembles(t *testing.T) {
	assert := assert.New(t)

	operands := []byte{0x12, 0x00, 0xff, 0x80}

	for word := range 256 {
		code := Code{Word: byte(word)}
		if need := code.OperandNeed(); need > 0 {
			code.Operands = operands[:need]
		}

		asm := &Assembler{}
		prog, err := asm.Parse(strings.NewReader(code.String()))
		if !assert.NoError(err, code.String()) {
			continue
		}
		assert.Equal(code.Bytes(), prog.Binary(), code.String())
	}
}
