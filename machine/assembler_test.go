package machine

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func assemble(lines ...string) (prog *Program, err error) {
	asm := &Assembler{}
	return asm.Parse(strings.NewReader(strings.Join(lines, "\n")))
}

func TestAssembler_Instructions(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		line  string
		bytes []byte
	}){
		{"halt", []byte{0x00}},
		{"loadi -", []byte{0x00}},
		{"loadi a 5", []byte{0x01, 0x05}},
		{"loadi bd 1 -1", []byte{0x0a, 0x01, 0xff}},
		{"loadi 0x3 ~0 'A'", []byte{0x03, 0xff, 0x41}},
		{"inc abcd", []byte{0x1f}},
		{"dec -", []byte{0x20}},
		{"loadr cd ab", []byte{0x3c, 0x03}},
		{"add a ab", []byte{0x41, 0x03}},
		{"sub abcd 0x13", []byte{0x5f, 0x13}},
		{"mul ba cd", []byte{0x63, 0x0c}},
		{"div c ad", []byte{0x74, 0x09}},
		{"and d bc", []byte{0x88, 0x06}},
		{"or ab ab", []byte{0x93, 0x03}},
		{"xor c -", []byte{0xa4, 0x00}},
		{"rotr abcd", []byte{0xbf}},
		{"jmpneq a 0x10", []byte{0xc1, 0x10}},
		{"jmpeq abc 200", []byte{0xd7, 0xc8}},
		{"jmp 7", []byte{0xd0, 0x07}},
		{"stor ac 0x80", []byte{0xe5, 0x80}},
		{"itr 0", []byte{0xf0}},
		{"itr 15", []byte{0xff}},
		{".byte 1 2 '\\n' 0xff", []byte{0x01, 0x02, 0x0a, 0xff}},
		{"   add   c   ab   ; comment", []byte{0x44, 0x03}},
		{"; only a comment", []byte{}},
	}

	for _, entry := range table {
		prog, err := assemble(entry.line)
		if !assert.NoError(err, entry.line) {
			continue
		}
		assert.Equal(entry.bytes, prog.Binary(), entry.line)
	}
}

func TestAssembler_Errors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		lines []string
		err   error
	}){
		{[]string{"nop"}, ErrInstructionInvalid},
		{[]string{"inc"}, ErrOpcodeMissing},
		{[]string{"inc a b"}, ErrOpcodeExtraArgs},
		{[]string{"loadi ab 1"}, ErrOpcodeValueMissing},
		{[]string{"loadi a 1 2"}, ErrOpcodeExtraArgs},
		{[]string{"loadi a 256"}, ErrParseNumber("256")},
		{[]string{"add 0x10 ab"}, ErrRegisterInvalid},
		{[]string{"add abx ab"}, ErrRegisterInvalid},
		{[]string{"add a 0x100"}, ErrRegisterInvalid},
		{[]string{"itr 16"}, ErrInterruptInvalid},
		{[]string{"itr a"}, ErrInterruptInvalid},
		{[]string{"jmp"}, ErrOpcodeValueMissing},
		{[]string{"jmp nowhere"}, ErrLabelMissing("nowhere")},
		{[]string{"x: halt", "x: halt"}, ErrLabelDuplicate},
		{[]string{".equ X 1", ".equ X 2"}, ErrEquateDuplicate},
		{[]string{".equ X"}, ErrEquateSyntax},
		{[]string{".macro m", ".macro n"}, ErrMacroNesting},
		{[]string{".macro m", ".endm", ".macro m"}, ErrMacroDuplicate},
		{[]string{".macro m"}, ErrMacroLonely},
		{[]string{".endm"}, ErrMacroLonelyEndm},
		{[]string{".macro m X", ".endm", "m"}, ErrMacroSyntax},
		{[]string{".byte"}, ErrOpcodeValueMissing},
		{[]string{"loadi a $(1000)"}, ErrParseExpression("1000")},
	}

	for _, entry := range table {
		_, err := assemble(entry.lines...)
		assert.ErrorIs(err, entry.err, "%v", entry.lines)
	}
}

func TestAssembler_SyntaxLine(t *testing.T) {
	assert := assert.New(t)

	_, err := assemble("halt", "", "  inc q  ; bad")

	var es *ErrSyntax
	assert.True(errors.As(err, &es))
	assert.Equal(3, es.LineNo)
	assert.Equal("inc q", es.Line)
	assert.ErrorIs(err, ErrRegisterInvalid)
}

func TestAssembler_TooLarge(t *testing.T) {
	assert := assert.New(t)

	line := ".byte" + strings.Repeat(" 0", 64)
	_, err := assemble(line, line, line, line)
	assert.NoError(err)

	_, err = assemble(line, line, line, line, "halt")
	assert.ErrorIs(err, ErrProgramTooLarge)
}

func TestAssembler_Labels(t *testing.T) {
	assert := assert.New(t)

	prog, err := assemble(
		"       loadi ab 5 0",
		"loop:  inc b",
		"       dec a",
		"       jmpneq a loop",
		"       jmp done",
		"table: .byte 1 2 3",
		"done:  loadi c table",
		"       halt",
	)
	assert.NoError(err)
	assert.Equal([]byte{
		0x03, 0x05, 0x00,
		0x12,
		0x21,
		0xc1, 0x03,
		0xd0, 0x0c,
		0x01, 0x02, 0x03,
		0x04, 0x09,
		0x00,
	}, prog.Binary())

	m := NewMachine()
	assert.NoError(m.Load(prog.Binary()))
	assert.NoError(m.Run())
	assert.Equal(Registers{0, 5, 9, 0}, m.Register)
}

func TestAssembler_Equates(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("OUT", "3")
	asm.Predefine("PAIR", "ab")

	prog, err := asm.Parse(strings.NewReader(strings.Join([]string{
		".equ BASE 0x10",
		".equ DST cd",
		"stor DST BASE",
		"add DST PAIR",
		"stor a $(BASE + OUT * 2)",
		"itr OUT",
		"loadi a $(LINENO)",
	}, "\n")))
	assert.NoError(err)
	assert.Equal([]byte{
		0xec, 0x10,
		0x4c, 0x03,
		0xe1, 0x16,
		0xf3,
		0x01, 0x07,
	}, prog.Binary())

	// Equates are reset by the next parse, predefines remain.
	_, err = asm.Parse(strings.NewReader("stor a BASE"))
	assert.ErrorIs(err, ErrLabelMissing("BASE"))
	_, err = asm.Parse(strings.NewReader("itr OUT"))
	assert.NoError(err)
}

func TestAssembler_LabelExpression(t *testing.T) {
	assert := assert.New(t)

	prog, err := assemble(
		"jmp start",
		"buf: .byte 0 0",
		"start: stor a $(buf + 1)",
		"halt",
	)
	assert.NoError(err)
	assert.Equal([]byte{0xd0, 0x04, 0x00, 0x00, 0xe1, 0x03, 0x00}, prog.Binary())
}

func TestAssembler_Macro(t *testing.T) {
	assert := assert.New(t)

	prog, err := assemble(
		".macro spin REG",
		"@top: dec REG",
		"      jmpneq REG @top",
		".endm",
		"      loadi cd 3 7",
		"      spin c",
		"      spin d",
		"      halt",
	)
	assert.NoError(err)
	assert.Equal([]byte{
		0x0c, 0x03, 0x07,
		0x24, 0xc4, 0x03,
		0x28, 0xc8, 0x06,
		0x00,
	}, prog.Binary())

	// Lines generated by the macro report the macro's source lines.
	dbg := prog.Debug(4)
	assert.Equal(3, dbg.LineNo)

	m := NewMachine()
	m.Register = Registers{1, 2, 0, 0}
	assert.NoError(m.Load(prog.Binary()))
	assert.NoError(m.Run())
	assert.Equal(Registers{1, 2, 0, 0}, m.Register)
	assert.Equal(1+2*3+2*7+1, m.Ticks)
}

func TestAssembler_MacroError(t *testing.T) {
	assert := assert.New(t)

	_, err := assemble(
		".macro bad",
		"  inc q",
		".endm",
		"bad",
	)

	var em *ErrMacro
	assert.True(errors.As(err, &em))
	assert.Equal("bad", em.Macro)
	assert.Equal(2, em.Line)
	assert.ErrorIs(err, ErrRegisterInvalid)
}
