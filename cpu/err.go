package cpu

import (
	"errors"

	"github.com/Sol-Ell/simple-assembler-interpreter/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrRegisterInvalid = errors.New(f("register invalid"))
	ErrOpcodeInvalid   = errors.New(f("opcode invalid"))

	// Assembler errors
	ErrOpcodeMissing   = errors.New(f("opcode missing"))
	ErrOpcodeUnknown   = errors.New(f("opcode unknown"))
	ErrOpcodeArity     = errors.New(f("wrong number of operands"))
	ErrTargetInvalid   = errors.New(f("target invalid"))
	ErrEquateSyntax    = errors.New(f("equate syntax"))
	ErrEquateDuplicate = errors.New(f("equate duplicated"))
)

// ErrRegisterUnknown is returned when a register is used before it is
// introduced by a mov.
type ErrRegisterUnknown string

func (err ErrRegisterUnknown) Error() string {
	return f("register '%v' unknown", string(err))
}

// ErrRegisterRange is returned when an instruction references a handle
// outside the register bank.
type ErrRegisterRange Register

func (err ErrRegisterRange) Error() string {
	return f("register %v out of range", Register(err).String())
}

func (err ErrRegisterRange) Is(target error) bool {
	return target == ErrRegisterInvalid
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

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrInstruction Instruction

func (ei ErrInstruction) Error() string {
	return f("bad instruction %v", Instruction(ei).String())
}

func (ei ErrInstruction) Is(err error) (ok bool) {
	_, ok = err.(ErrInstruction)
	return
}
