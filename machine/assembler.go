// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package machine

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
}

// Assembler is a single pass macro assembler for the MinVM.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	expansion int // Count of macro expansions, for unique local labels.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// reLabel matches words that may name a label.
var reLabel = regexp.MustCompile(`^[A-Za-z_.][A-Za-z0-9_.]*$`)

// reIdent matches labels usable in $(...) expressions.
var reIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// valueOf returns the byte value of a simple word.
// Negative values down to -128 are stored as two's complement.
func (asm *Assembler) valueOf(word string) (value byte, err error) {
	if len(word) == 0 {
		err = ErrParseNumber(word)
		return
	}

	invert := false
	if word[0] == '~' {
		invert = true
		word = word[1:]
	}
	if len(word) > 0 && word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(strings.Trim(word, "'"))
		return
	}
	v64, err := strconv.ParseInt(word, 0, 16)
	if err != nil || v64 > 0xff || v64 < -0x80 {
		err = ErrParseNumber(word)
		return
	}

	value = byte(v64)

	if invert {
		value = ^value
	}

	return
}

// maskOf returns the register mask of a word. A nibble mask must fit in
// the argument of an instruction byte; otherwise any byte is accepted.
func (asm *Assembler) maskOf(word string, nibble bool) (mask Mask, err error) {
	mask, ok := ParseMask(word)
	if ok {
		return
	}

	value, err := asm.valueOf(word)
	if err != nil {
		err = ErrRegisterInvalid
		return
	}

	if nibble && value > 0xf {
		err = ErrRegisterInvalid
		return
	}

	mask = Mask(value)

	return
}

// byteOf returns the value of an operand word, or the label it references.
func (asm *Assembler) byteOf(word string) (value byte, label string, err error) {
	value, err = asm.valueOf(word)
	if err == nil {
		return
	}

	if reLabel.MatchString(word) {
		err = nil
		label = word
	}

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value byte, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value8 byte
		value8, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt(int(value8))
	}
	for key, addr := range asm.Label {
		if !reIdent.MatchString(key) {
			continue
		}
		pred[key] = starlark.MakeInt(addr)
	}
	err = nil

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok || st_int64 > 0xff || st_int64 < -0x80 {
		err = ErrParseExpression(expr)
		return
	}
	value = byte(st_int64)
	return
}

// parseLine parses a single line as an opcode.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno&0xff)

	// Do 'x' evaluations
	re := regexp.MustCompile(`'\\?[^']'`)
	line = re.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "t":
				str = "\t"
			case "e":
				str = "\033"
			case "0":
				str = "\000"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	re = regexp.MustCompile(`\$\([^\$]*\)`)
	line = re.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#x", value)
	})
	if err != nil {
		return
	}

	words = strings.Fields(line)

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.currentAddr()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		asm.expansion++
		local := fmt.Sprintf("%v_%v_", name, asm.expansion)

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", local)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// currentAddr gets the address of the next generated byte.
func (asm *Assembler) currentAddr() int {
	if len(asm.Opcode) == 0 {
		return 0
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Addr + len(last.Bytes)
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Opcode = asm.Opcode[:0]
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.expansion = 0
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	if err = scanner.Err(); err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	if asm.currentAddr() > MEMORY_SIZE {
		err = ErrProgramTooLarge
		return
	}

	// Final linking of labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		for _, link := range op.Links {
			addr, ok := asm.Label[link.Label]
			if !ok {
				lineno = op.LineNo
				line = strings.Join(op.Words, " ")
				err = ErrLabelMissing(link.Label)
				return
			}
			op.Bytes[link.Offset] = byte(addr)
		}
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// opMap maps instruction mnemonics.
var opMap = map[string]Op{
	"loadi":  OP_LOADI,
	"inc":    OP_INC,
	"dec":    OP_DEC,
	"loadr":  OP_LOADR,
	"add":    OP_ADD,
	"sub":    OP_SUB,
	"mul":    OP_MUL,
	"div":    OP_DIV,
	"and":    OP_AND,
	"or":     OP_OR,
	"xor":    OP_XOR,
	"rotr":   OP_ROTR,
	"jmpneq": OP_JMPNEQ,
	"jmpeq":  OP_JMPEQ,
	"stor":   OP_STOR,
	"itr":    OP_ITR,
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var bytes []byte
	var links []Link
	var data bool

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if err != nil || len(bytes) == 0 {
			return
		}
		opcode := Opcode{LineNo: lineno, Addr: asm.currentAddr(), Words: initial_words, Bytes: bytes, Data: data, Links: links}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	// operand appends a byte operand, or a link to a label.
	operand := func(word string) (err error) {
		value, label, err := asm.byteOf(word)
		if err != nil {
			return
		}
		if len(label) != 0 {
			links = append(links, Link{Offset: len(bytes), Label: label})
		}
		bytes = append(bytes, value)
		return
	}

	// arity checks the number of words following the mnemonic.
	arity := func(count int) error {
		switch {
		case len(words)-1 < count:
			return ErrOpcodeValueMissing
		case len(words)-1 > count:
			return ErrOpcodeExtraArgs
		}
		return nil
	}

	// Alternate syntax substitutions
	switch {
	case len(words) == 1 && words[0] == "halt":
		// halt => loadi -
		words = []string{"loadi", "-"}
	case len(words) >= 1 && words[0] == "jmp":
		// jmp TARGET => jmpeq - TARGET
		words = append([]string{"jmpeq", "-"}, words[1:]...)
	default:
		// unchanged
	}

	if words[0] == ".byte" {
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		data = true
		for _, word := range words[1:] {
			err = operand(word)
			if err != nil {
				return
			}
		}
		return
	}

	op, ok := opMap[words[0]]
	if !ok {
		err = ErrInstructionInvalid
		return
	}

	if len(words) < 2 {
		err = ErrOpcodeMissing
		return
	}

	var arg Mask
	if op == OP_ITR {
		var index byte
		index, err = asm.valueOf(words[1])
		if err != nil || index >= INTERRUPT_COUNT {
			err = ErrInterruptInvalid
			return
		}
		arg = Mask(index)
	} else {
		arg, err = asm.maskOf(words[1], true)
		if err != nil {
			return
		}
	}

	bytes = append(bytes, MakeCode(op, arg).Word)

	switch op {
	case OP_LOADI:
		err = arity(1 + arg.Count())
		if err != nil {
			return
		}
		for _, word := range words[2:] {
			err = operand(word)
			if err != nil {
				return
			}
		}
	case OP_INC, OP_DEC, OP_ROTR, OP_ITR:
		err = arity(1)
	case OP_LOADR, OP_ADD, OP_SUB, OP_MUL, OP_DIV, OP_AND, OP_OR, OP_XOR:
		err = arity(2)
		if err != nil {
			return
		}
		var src Mask
		src, err = asm.maskOf(words[2], false)
		if err != nil {
			return
		}
		bytes = append(bytes, byte(src))
	case OP_JMPNEQ, OP_JMPEQ, OP_STOR:
		err = arity(2)
		if err != nil {
			return
		}
		err = operand(words[2])
	}

	return
}
