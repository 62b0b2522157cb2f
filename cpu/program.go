package cpu

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"
)

// Opcode is a translated line of source with its instruction.
type Opcode struct {
	LineNo      int      // Source line number, starting at 1.
	Ip          int      // Index of the instruction in the program.
	Words       []string // Words of the source line.
	Instruction Instruction
}

// Program is the output of the assembler.
type Program struct {
	Opcodes   []Opcode            // Emitted instructions, in execution order.
	Registers map[string]Register // Name table.
	Rejected  []error             // Lines skipped as malformed, as ErrSyntax.
}

// Code returns the instruction sequence.
func (prog *Program) Code() (code []Instruction) {
	code = make([]Instruction, len(prog.Opcodes))
	for n, op := range prog.Opcodes {
		code[n] = op.Instruction
	}

	return
}

// RegisterCount returns the number of registers the program uses.
func (prog *Program) RegisterCount() int {
	return len(prog.Registers)
}

// Errors returns the number of rejected lines.
func (prog *Program) Errors() int {
	return len(prog.Rejected)
}

// Names iterates the name table in handle order.
func (prog *Program) Names() iter.Seq2[string, Register] {
	return func(yield func(name string, reg Register) bool) {
		names := slices.SortedFunc(maps.Keys(prog.Registers), func(a, b string) int {
			return int(prog.Registers[a]) - int(prog.Registers[b])
		})
		for _, name := range names {
			if !yield(name, prog.Registers[name]) {
				return
			}
		}
	}
}

// Name returns the source name of a register handle.
func (prog *Program) Name(reg Register) (name string, ok bool) {
	for name, handle := range prog.Registers {
		if handle == reg {
			return name, true
		}
	}

	return
}

// Project maps a final register bank back to register names.
func (prog *Program) Project(state []int64) (result map[string]int64) {
	result = make(map[string]int64, len(prog.Registers))
	for name, reg := range prog.Registers {
		if int(reg) < len(state) {
			result[name] = state[reg]
		}
	}

	return
}

// Debug locates the opcode at an instruction pointer.
func (prog *Program) Debug(ip int) (op *Opcode) {
	if ip < 0 || ip >= len(prog.Opcodes) {
		return
	}

	return &prog.Opcodes[ip]
}

// Disassemble renders an instruction using register names.
func (prog *Program) Disassemble(ins Instruction) string {
	name := func(op Operand) string {
		if op.IsConstant {
			return op.String()
		}
		if name, ok := prog.Name(op.Register); ok {
			return name
		}
		return op.String()
	}

	switch ins.Op {
	case OP_MOV:
		return fmt.Sprintf("%v %v %v", ins.Op, name(MakeRegister(ins.Dst)), name(ins.Src))
	case OP_INC, OP_DEC:
		return fmt.Sprintf("%v %v", ins.Op, name(MakeRegister(ins.Dst)))
	case OP_JNZ:
		return fmt.Sprintf("%v %v %v", ins.Op, name(ins.Src), name(ins.Offset))
	}

	return ins.String()
}

// Listing renders the program, one instruction per line, with the
// instruction pointer and source line number.
func (prog *Program) Listing() string {
	var sb strings.Builder
	for _, op := range prog.Opcodes {
		fmt.Fprintf(&sb, "%03d %4d: %v\n", op.Ip, op.LineNo, prog.Disassemble(op.Instruction))
	}

	return sb.String()
}
