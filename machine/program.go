package machine

import (
	"iter"
)

// Link is a label reference to be patched into an operand byte.
type Link struct {
	Offset int    // Offset of the operand within Opcode.Bytes.
	Label  string // Label whose address is stored.
}

// Opcode represents a line of assembled code with its source location and generated bytes.
type Opcode struct {
	LineNo int
	Addr   int
	Words  []string
	Bytes  []byte
	Data   bool // Set if Bytes is raw data rather than an instruction.
	Links  []Link
}

// Code returns the instruction of the opcode.
func (op *Opcode) Code() (code Code, ok bool) {
	if op.Data || len(op.Bytes) == 0 {
		return
	}

	code = Code{Word: op.Bytes[0]}
	if len(op.Bytes) > 1 {
		code.Operands = op.Bytes[1:]
	}
	ok = true
	return
}

type Program struct {
	Opcodes []Opcode
}

type Debug struct {
	*Opcode
	Index int
}

// Debug finds the opcode that generated the byte at addr.
func (prog *Program) Debug(addr byte) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if int(addr) >= op.Addr && int(addr) < op.Addr+len(op.Bytes) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(addr) - op.Addr,
			}
			break
		}
	}

	return
}

// Size returns the number of memory bytes used by the program.
func (prog *Program) Size() (size int) {
	for _, op := range prog.Opcodes {
		size = max(size, op.Addr+len(op.Bytes))
	}

	return
}

// Binary returns the memory image of the program.
func (prog *Program) Binary() (image []byte) {
	image = make([]byte, prog.Size())
	for _, op := range prog.Opcodes {
		copy(image[op.Addr:], op.Bytes)
	}

	return
}

// Codes iterates over the instructions of the program by address.
func (prog *Program) Codes() iter.Seq2[byte, Code] {
	return func(yield func(addr byte, code Code) bool) {
		for n := range prog.Opcodes {
			code, ok := prog.Opcodes[n].Code()
			if !ok {
				continue
			}
			if !yield(byte(prog.Opcodes[n].Addr), code) {
				return
			}
		}
	}
}
