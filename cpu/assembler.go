package cpu

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/Sol-Ell/simple-assembler-interpreter/internal"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
}

var reParen = regexp.MustCompile(`\$\([^\$]*\)`)

// Assembler is a single pass assembler for the register machine.
//
// Registers are assigned handles in order of first appearance. Lines with an
// unknown mnemonic or the wrong number of operands are rejected and skipped;
// a reference to a register that was never introduced aborts translation.
type Assembler struct {
	Verbose bool // If set, verbosely logs the assembler actions.
	Expand  bool // If set, evaluates $(...) expressions and .equ directives.

	Opcode    []Opcode            // List of generated opcodes.
	Registers map[string]Register // Name table.
	Rejected  []error             // Rejected lines.

	predefine map[string]string // Predefines
	Equate    map[string]string // Map of equates.
}

// Predefine defines a new equate or redefines an existing equate,
// for use in $(...) expressions.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// isNumber returns true if the word parses as a base-10 constant,
// including words too large to fit a register.
func isNumber(word string) bool {
	_, err := strconv.ParseInt(word, 10, 64)
	return err == nil || errors.Is(err, strconv.ErrRange)
}

// declare returns the handle of a destination register, assigning the
// next handle if the name is new.
func (asm *Assembler) declare(word string) (reg Register, err error) {
	if isNumber(word) {
		err = ErrTargetInvalid
		return
	}

	reg, ok := asm.Registers[word]
	if ok {
		return
	}

	reg = Register(len(asm.Registers))
	asm.Registers[word] = reg

	if asm.Verbose {
		log.Printf("register %v: %v", word, reg)
	}

	return
}

// register returns the handle of a known register.
func (asm *Assembler) register(word string) (reg Register, err error) {
	if isNumber(word) {
		err = ErrTargetInvalid
		return
	}

	reg, ok := asm.Registers[word]
	if !ok {
		err = ErrRegisterUnknown(word)
		return
	}

	return
}

// operand resolves a word to a constant, or failing that, a known register.
func (asm *Assembler) operand(word string) (op Operand, err error) {
	value, err := strconv.ParseInt(word, 10, 64)
	if err == nil {
		op = MakeConstant(value)
		return
	}
	if errors.Is(err, strconv.ErrRange) {
		err = ErrParseNumber(word)
		return
	}

	reg, err := asm.register(word)
	if err != nil {
		return
	}

	op = MakeRegister(reg)
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		v64, perr := strconv.ParseInt(str, 0, 64)
		if perr != nil {
			// Ignore non-integer equates.
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = errors.Join(ErrParseExpression(expr), err)
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
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// parseLine splits a single line into words, evaluating expressions
// and directives when expansion is enabled.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, directive bool, err error) {
	if !asm.Expand {
		words = strings.Fields(line)
		return
	}

	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do $() evaluations
	line = reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return strconv.FormatInt(value, 10)
	})
	if err != nil {
		return
	}

	words = strings.Fields(line)

	// .equ CONST VALUE
	if len(words) > 0 && words[0] == ".equ" {
		directive = true
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
		words = nil
	}

	return
}

// rejectable returns true if the error only invalidates the line.
func rejectable(err error) bool {
	return errors.Is(err, ErrOpcodeMissing) ||
		errors.Is(err, ErrOpcodeUnknown) ||
		errors.Is(err, ErrOpcodeArity)
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	lines, err := internal.ReadLines(input)
	if err != nil {
		return
	}

	return asm.Assemble(lines)
}

// Assemble translates a list of source lines into a Program.
func (asm *Assembler) Assemble(lines []string) (prog *Program, err error) {
	return asm.Translate(slices.Values(lines))
}

// Translate translates a sequence of source lines into a Program.
func (asm *Assembler) Translate(lines iter.Seq[string]) (prog *Program, err error) {
	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
			// Leave no partial translation behind.
			asm.Opcode = nil
			asm.Registers = nil
			asm.Rejected = nil
		}
	}()

	asm.Opcode = nil
	asm.Rejected = nil
	asm.Registers = make(map[string]Register)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for text := range lines {
		line = text
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		var words []string
		var directive bool
		words, directive, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}
		if directive {
			continue
		}

		err = asm.parseWords(words, lineno)
		if err != nil && rejectable(err) {
			reject := &ErrSyntax{LineNo: lineno, Line: line, Err: err}
			if asm.Verbose {
				log.Printf("rejected: %v", reject)
			}
			asm.Rejected = append(asm.Rejected, reject)
			err = nil
			continue
		}
		if err != nil {
			return
		}
	}

	prog = &Program{
		Opcodes:   slices.Clone(asm.Opcode),
		Registers: maps.Clone(asm.Registers),
		Rejected:  slices.Clone(asm.Rejected),
	}

	return
}

// mnemonicMap maps mnemonics to operations.
var mnemonicMap = map[string]Op{
	"mov": OP_MOV,
	"inc": OP_INC,
	"dec": OP_DEC,
	"jnz": OP_JNZ,
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var ins Instruction
	var emit bool

	if len(words) == 0 {
		err = ErrOpcodeMissing
		return
	}

	defer func() {
		if !emit || err != nil {
			return
		}
		opcode := Opcode{LineNo: lineno, Ip: len(asm.Opcode), Words: words, Instruction: ins}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	op, ok := mnemonicMap[words[0]]
	if !ok {
		err = ErrOpcodeUnknown
		return
	}

	if len(words) != op.Arity() {
		err = ErrOpcodeArity
		return
	}

	switch op {
	case OP_MOV:
		var dst Register
		dst, err = asm.declare(words[1])
		if err != nil {
			return
		}
		var src Operand
		src, err = asm.operand(words[2])
		if err != nil {
			return
		}
		ins = MakeMov(dst, src)
	case OP_INC, OP_DEC:
		var dst Register
		dst, err = asm.register(words[1])
		if err != nil {
			return
		}
		if op == OP_INC {
			ins = MakeInc(dst)
		} else {
			ins = MakeDec(dst)
		}
	case OP_JNZ:
		var cond Operand
		cond, err = asm.operand(words[1])
		if err != nil {
			return
		}
		// A constant zero condition never branches.
		if cond.IsZero() {
			if asm.Verbose {
				log.Printf("line %v: elided %v", lineno, strings.Join(words, " "))
			}
			return
		}
		var offset Operand
		offset, err = asm.operand(words[2])
		if err != nil {
			return
		}
		ins = MakeJnz(cond, offset)
	}

	emit = true
	return
}
