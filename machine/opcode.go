package machine

import (
	"fmt"
	"strings"
)

// Op is an opcode, the high nibble of an instruction byte.
type Op int

//go:generate go tool stringer -linecomment -type=Op
const (
	OP_LOADI  = Op(0x0) // loadi
	OP_INC    = Op(0x1) // inc
	OP_DEC    = Op(0x2) // dec
	OP_LOADR  = Op(0x3) // loadr
	OP_ADD    = Op(0x4) // add
	OP_SUB    = Op(0x5) // sub
	OP_MUL    = Op(0x6) // mul
	OP_DIV    = Op(0x7) // div
	OP_AND    = Op(0x8) // and
	OP_OR     = Op(0x9) // or
	OP_XOR    = Op(0xa) // xor
	OP_ROTR   = Op(0xb) // rotr
	OP_JMPNEQ = Op(0xc) // jmpneq
	OP_JMPEQ  = Op(0xd) // jmpeq
	OP_STOR   = Op(0xe) // stor
	OP_ITR    = Op(0xf) // itr
)

// OP_COUNT is the size of the opcode table.
const OP_COUNT = 16

// Code is a single instruction byte with its trailing operand bytes.
type Code struct {
	Word     byte
	Operands []byte
}

// MakeCode creates an instruction from an opcode, argument nibble and operands.
func MakeCode(op Op, arg Mask, operands ...byte) Code {
	return Code{
		Word:     byte(op)<<4 | byte(arg&0xf),
		Operands: operands,
	}
}

// MakeCodeHalt creates the halt encoding, a LOADI with an empty mask.
func MakeCodeHalt() Code {
	return MakeCode(OP_LOADI, 0)
}

// Op returns the opcode from the instruction byte.
func (code Code) Op() Op {
	return Op(code.Word >> 4)
}

// Arg returns the argument nibble from the instruction byte.
func (code Code) Arg() Mask {
	return Mask(code.Word & 0xf)
}

// OperandNeed returns the number of bytes that follow the instruction byte.
func (code Code) OperandNeed() int {
	switch code.Op() {
	case OP_LOADI:
		return code.Arg().Count()
	case OP_LOADR, OP_ADD, OP_SUB, OP_MUL, OP_DIV, OP_AND, OP_OR, OP_XOR,
		OP_JMPNEQ, OP_JMPEQ, OP_STOR:
		return 1
	default:
		return 0
	}
}

// Len returns the encoded length of the instruction.
func (code Code) Len() int {
	return 1 + code.OperandNeed()
}

// Bytes returns the encoded instruction.
func (code Code) Bytes() []byte {
	return append([]byte{code.Word}, code.Operands...)
}

// Decode decodes the instruction at addr in mem.
func Decode(mem []byte, addr int) (code Code, err error) {
	if addr < 0 || addr >= len(mem) {
		err = ErrCodeTruncated
		return
	}

	code.Word = mem[addr]
	need := code.OperandNeed()
	if addr+1+need > len(mem) {
		err = ErrCodeTruncated
		return
	}
	if need > 0 {
		code.Operands = append([]byte(nil), mem[addr+1:addr+1+need]...)
	}

	return
}

// String returns the assembly language representation of this instruction.
func (code Code) String() (out string) {
	op := code.Op()
	arg := code.Arg()

	operand := func(n int) string {
		if n < len(code.Operands) {
			return fmt.Sprintf("0x%02x", code.Operands[n])
		}
		return "?"
	}

	switch op {
	case OP_LOADI:
		if arg == 0 {
			return "halt"
		}
		words := []string{op.String(), arg.String()}
		for n := range arg.Count() {
			words = append(words, operand(n))
		}
		out = strings.Join(words, " ")
	case OP_INC, OP_DEC, OP_ROTR:
		out = fmt.Sprintf("%v %v", op, arg)
	case OP_LOADR, OP_ADD, OP_SUB, OP_MUL, OP_DIV, OP_AND, OP_OR, OP_XOR:
		src := "?"
		if len(code.Operands) > 0 {
			src = Mask(code.Operands[0]).String()
		}
		out = fmt.Sprintf("%v %v %v", op, arg, src)
	case OP_JMPNEQ, OP_JMPEQ, OP_STOR:
		out = fmt.Sprintf("%v %v %v", op, arg, operand(0))
	case OP_ITR:
		out = fmt.Sprintf("%v %d", op, byte(arg))
	}

	return
}
