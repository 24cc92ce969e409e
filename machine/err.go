package machine

import (
	"errors"

	"github.com/ezrec/minvm/translate"
)

var f = translate.From

var (
	// Machine exceptions
	ErrException        = errors.New(f("exception"))
	ErrHalted           = errors.New(f("halted"))
	ErrMaskInvalid      = errors.New(f("source mask invalid"))
	ErrDivideByZero     = errors.New(f("divide by zero"))
	ErrStoreBounds      = errors.New(f("store past end of memory"))
	ErrInterruptMissing = errors.New(f("interrupt handler missing"))

	// Decode errors
	ErrCodeTruncated = errors.New(f("code truncated"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrMacroSyntax        = errors.New(f(".macro syntax"))
	ErrMacroNesting       = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate     = errors.New(f(".macro duplicated"))
	ErrMacroLonely        = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm    = errors.New(f(".endm without .macro"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeMissing      = errors.New(f("opcode missing"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrRegisterInvalid    = errors.New(f("register mask invalid"))
	ErrInterruptInvalid   = errors.New(f("interrupt index invalid"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
	ErrProgramTooLarge    = errors.New(f("program too large"))
)

// ErrOpcode reports the instruction that raised an exception.
type ErrOpcode struct {
	Pc   byte // Address of the instruction byte.
	Word byte // Instruction byte.
}

func (eo ErrOpcode) Error() string {
	return f("bad opcode 0x%02x %v at 0x%02x", eo.Word, Code{Word: eo.Word}.Op(), eo.Pc)
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a byte value", string(err))
}

type ErrParseCharacter string

func (err ErrParseCharacter) Error() string {
	return f("'%v' is not a character", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}
