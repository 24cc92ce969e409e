package machine

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"strings"
)

const (
	MEMORY_SIZE     = 256 // Bytes of shared code and data memory.
	INTERRUPT_COUNT = 16  // Entries in the interrupt table.
)

var _machine_defines = map[string]string{
	"MEMORY_SIZE": fmt.Sprintf("%v", MEMORY_SIZE),
	"REG_A":       fmt.Sprintf("%#x", byte(REG_A)),
	"REG_B":       fmt.Sprintf("%#x", byte(REG_B)),
	"REG_C":       fmt.Sprintf("%#x", byte(REG_C)),
	"REG_D":       fmt.Sprintf("%#x", byte(REG_D)),
	"REG_ALL":     fmt.Sprintf("%#x", byte(REG_ALL)),
}

// Flags is the machine status bitset.
type Flags byte

const (
	FLAG_HALT      = Flags(1 << 0) // Execution stopped.
	FLAG_EXCEPTION = Flags(1 << 1) // Execution stopped on an error. Always set with FLAG_HALT.
)

func (flags Flags) String() string {
	var names []string
	if flags&FLAG_HALT != 0 {
		names = append(names, "halt")
	}
	if flags&FLAG_EXCEPTION != 0 {
		names = append(names, "exception")
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, "|")
}

// Interrupt is a handler invoked synchronously by the ITR instruction.
type Interrupt func(m *Machine)

// Machine is the simulation context for a MinVM.
type Machine struct {
	Verbose bool // Set to enable verbose logging.

	Register  Registers                  // Register bank.
	Memory    [MEMORY_SIZE]byte          // Code and data.
	Pc        byte                       // Program counter.
	Flags     Flags                      // Status flags.
	Interrupt [INTERRUPT_COUNT]Interrupt // Interrupt table.
	Fault     error                      // Cause of the last exception.

	Ticks int // Instructions executed since reset.
}

// NewMachine creates a machine with cleared state and a no-op interrupt table.
func NewMachine() (m *Machine) {
	m = &Machine{}
	m.Reset()

	return
}

// Defines for the machine
func (m *Machine) Defines() iter.Seq2[string, string] {
	return maps.All(_machine_defines)
}

// Reset the machine state.
// - Clears the registers, memory, flags and program counter.
// - Zeros the tick counter.
// - Replaces every interrupt with a no-op.
func (m *Machine) Reset() {
	if m.Verbose {
		log.Printf("machine: reset")
	}

	clear(m.Register[:])
	clear(m.Memory[:])
	m.Pc = 0
	m.Flags = 0
	m.Fault = nil
	m.Ticks = 0

	for n := range m.Interrupt {
		m.Interrupt[n] = func(*Machine) {}
	}
}

// Halted returns true once the HALT flag is set.
func (m *Machine) Halted() bool {
	return m.Flags&FLAG_HALT != 0
}

// Excepted returns true if the machine stopped on an exception.
func (m *Machine) Excepted() bool {
	return m.Flags&FLAG_EXCEPTION != 0
}

// Halt stops execution normally.
func (m *Machine) Halt() {
	m.Flags |= FLAG_HALT
}

// Raise stops execution with an exception, recording the cause.
func (m *Machine) Raise(err error) {
	if err == nil {
		err = ErrException
	}

	if m.Verbose {
		log.Printf("machine: exception at %02x: %v", m.Pc, err)
	}

	m.Flags |= FLAG_EXCEPTION | FLAG_HALT
	m.Fault = err
}

// Resume clears the flags and fault so that execution may continue.
// The program counter is left for the caller to adjust.
func (m *Machine) Resume() {
	m.Flags = 0
	m.Fault = nil
}

// Load copies an image into memory at address zero.
func (m *Machine) Load(image []byte) (err error) {
	if len(image) > MEMORY_SIZE {
		err = ErrProgramTooLarge
		return
	}

	copy(m.Memory[:], image)

	return
}

// CodeAt decodes the instruction at addr, wrapping around the end of memory.
func (m *Machine) CodeAt(addr byte) (code Code) {
	code.Word = m.Memory[addr]
	for n := range code.OperandNeed() {
		code.Operands = append(code.Operands, m.Memory[addr+1+byte(n)])
	}

	return
}

// String returns the current machine state as a string.
func (m *Machine) String() (text string) {
	text += fmt.Sprintf("% 5s: %02X\n", "pc", m.Pc)
	text += fmt.Sprintf("% 5s: %v\n", "flags", m.Flags)
	for n := range REGISTER_COUNT {
		text += fmt.Sprintf("% 5s: %02X\n", registerNames[n:n+1], m.Register[n])
	}
	if m.Fault != nil {
		text += fmt.Sprintf("% 5s: %v\n", "fault", m.Fault)
	}

	return
}

// fetch reads the byte at the program counter and advances it.
func (m *Machine) fetch() (value byte) {
	value = m.Memory[m.Pc]
	m.Pc++
	return
}

// opHandler executes an opcode given its argument nibble.
// A returned error raises an exception.
type opHandler func(m *Machine, arg Mask) error

var opTable = [OP_COUNT]opHandler{
	OP_LOADI:  (*Machine).opLoadi,
	OP_INC:    (*Machine).opInc,
	OP_DEC:    (*Machine).opDec,
	OP_LOADR:  (*Machine).opLoadr,
	OP_ADD:    (*Machine).opAdd,
	OP_SUB:    (*Machine).opSub,
	OP_MUL:    (*Machine).opMul,
	OP_DIV:    (*Machine).opDiv,
	OP_AND:    (*Machine).opAnd,
	OP_OR:     (*Machine).opOr,
	OP_XOR:    (*Machine).opXor,
	OP_ROTR:   (*Machine).opRotr,
	OP_JMPNEQ: (*Machine).opJmpneq,
	OP_JMPEQ:  (*Machine).opJmpeq,
	OP_STOR:   (*Machine).opStor,
	OP_ITR:    (*Machine).opItr,
}

// Step executes a single instruction.
// The returned error is nil unless the instruction raised an exception.
func (m *Machine) Step() (err error) {
	if m.Halted() {
		err = ErrHalted
		return
	}

	pc := m.Pc
	if m.Verbose {
		log.Printf("%02x: %v", pc, m.CodeAt(pc))
	}

	word := m.fetch()
	code := Code{Word: word}

	m.Ticks++

	err = opTable[code.Op()](m, code.Arg())
	if err != nil {
		m.Raise(err)
	} else if m.Excepted() {
		// Raised by an interrupt handler.
		err = m.Fault
		if err == nil {
			err = ErrException
		}
	}

	if err != nil {
		err = errors.Join(ErrOpcode{Pc: pc, Word: word}, err)
	}

	return
}

// Run executes until the HALT flag is set.
// Returns nil on a normal halt, or the exception that stopped execution.
func (m *Machine) Run() (err error) {
	for !m.Halted() {
		err = m.Step()
		if err != nil {
			return
		}
	}

	if m.Excepted() {
		err = m.Fault
		if err == nil {
			err = ErrException
		}
	}

	return
}
