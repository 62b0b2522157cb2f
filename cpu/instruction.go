package cpu

import (
	"fmt"
	"strconv"
)

// Register is a dense, zero-based register handle.
type Register int

// String returns the handle in '#n' notation.
func (reg Register) String() string {
	return "#" + strconv.Itoa(int(reg))
}

// Operand is either a register reference or a signed constant.
type Operand struct {
	IsConstant bool     // Set if the operand is a constant.
	Constant   int64    // Constant value.
	Register   Register // Register handle.
}

// MakeRegister makes a register operand.
func MakeRegister(reg Register) Operand {
	return Operand{Register: reg}
}

// MakeConstant makes a constant operand.
func MakeConstant(value int64) Operand {
	return Operand{IsConstant: true, Constant: value}
}

// IsZero returns true if the operand is the constant zero.
func (op Operand) IsZero() bool {
	return op.IsConstant && op.Constant == 0
}

func (op Operand) String() string {
	if op.IsConstant {
		return strconv.FormatInt(op.Constant, 10)
	}

	return op.Register.String()
}

// Op is an instruction operation.
type Op int

//go:generate go tool stringer -linecomment -type=Op
const (
	OP_MOV = Op(0) // mov
	OP_INC = Op(1) // inc
	OP_DEC = Op(2) // dec
	OP_JNZ = Op(3) // jnz
)

// Arity returns the number of words, including the mnemonic, of the operation.
func (op Op) Arity() int {
	switch op {
	case OP_INC, OP_DEC:
		return 2
	default:
		return 3
	}
}

// Instruction is a single translated instruction.
//
//   - mov: Dst is the destination, Src the source.
//   - inc, dec: Dst is the target.
//   - jnz: Src is the condition, Offset the relative jump.
type Instruction struct {
	Op     Op
	Dst    Register
	Src    Operand
	Offset Operand
}

// MakeMov creates a move of src into dst.
func MakeMov(dst Register, src Operand) Instruction {
	return Instruction{Op: OP_MOV, Dst: dst, Src: src}
}

// MakeInc creates an increment of dst.
func MakeInc(dst Register) Instruction {
	return Instruction{Op: OP_INC, Dst: dst}
}

// MakeDec creates a decrement of dst.
func MakeDec(dst Register) Instruction {
	return Instruction{Op: OP_DEC, Dst: dst}
}

// MakeJnz creates a jump by offset, taken when cond is not zero.
func MakeJnz(cond Operand, offset Operand) Instruction {
	return Instruction{Op: OP_JNZ, Src: cond, Offset: offset}
}

// Registers returns the handles referenced by the instruction.
func (ins Instruction) Registers() (regs []Register) {
	switch ins.Op {
	case OP_MOV:
		regs = append(regs, ins.Dst)
		if !ins.Src.IsConstant {
			regs = append(regs, ins.Src.Register)
		}
	case OP_INC, OP_DEC:
		regs = append(regs, ins.Dst)
	case OP_JNZ:
		if !ins.Src.IsConstant {
			regs = append(regs, ins.Src.Register)
		}
		if !ins.Offset.IsConstant {
			regs = append(regs, ins.Offset.Register)
		}
	}

	return
}

func (ins Instruction) String() string {
	switch ins.Op {
	case OP_MOV:
		return fmt.Sprintf("%v %v %v", ins.Op, ins.Dst, ins.Src)
	case OP_INC, OP_DEC:
		return fmt.Sprintf("%v %v", ins.Op, ins.Dst)
	case OP_JNZ:
		return fmt.Sprintf("%v %v %v", ins.Op, ins.Src, ins.Offset)
	}

	return ins.Op.String()
}
