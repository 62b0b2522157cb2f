package cpu

import (
	"errors"
	"fmt"
	"log"
	"math"
	"slices"
	"strings"
)

// JumpPolicy selects how a jnz with a non-zero condition is resolved.
type JumpPolicy int

//go:generate go tool stringer -linecomment -type=JumpPolicy
const (
	JUMP_BOUNDED = JumpPolicy(0) // bounded
	JUMP_ALWAYS  = JumpPolicy(1) // always
)

// Cpu is the simulation context for the register machine.
type Cpu struct {
	Verbose bool       // Set to enable verbose logging.
	Jump    JumpPolicy // Jump resolution policy.

	Ip       int     // Current instruction pointer.
	Register []int64 // Register bank.

	Ticks int // CPU ticks counter.
	Jumps int // Taken jumps counter.
}

// NewCpu creates a new CPU with a specifically sized register bank.
func NewCpu(count int) (cpu *Cpu) {
	cpu = &Cpu{
		Register: make([]int64, count),
	}

	return
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "% 5s: %v\n", "ip", cpu.Ip)
	for n, val := range cpu.Register {
		fmt.Fprintf(&sb, "% 5s: %v\n", Register(n).String(), val)
	}

	return sb.String()
}

// Reset the CPU state.
// - Zeros the registers.
// - Zeros statistics counters.
// - Sets the IP to the first instruction.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Register)
	cpu.Ip = 0
	cpu.Ticks = 0
	cpu.Jumps = 0
}

// State returns a copy of the register bank.
func (cpu *Cpu) State() []int64 {
	return slices.Clone(cpu.Register)
}

// Done returns true if the IP is outside of the program.
func (cpu *Cpu) Done(code []Instruction) bool {
	return cpu.Ip < 0 || cpu.Ip >= len(code)
}

// Tick executes a single CPU instruction cycle.
// Returns done once the IP has left the program.
func (cpu *Cpu) Tick(code []Instruction) (done bool, err error) {
	if cpu.Done(code) {
		done = true
		return
	}

	err = cpu.Execute(code[cpu.Ip])
	if err != nil {
		return
	}

	done = cpu.Done(code)
	return
}

// Run executes the instructions until the IP leaves the program.
// There is no step limit: a program that never exits never returns.
func (cpu *Cpu) Run(code []Instruction) (err error) {
	for done := false; !done; {
		done, err = cpu.Tick(code)
		if err != nil {
			return
		}
	}

	return
}

// Execute executes a single decoded instruction.
func (cpu *Cpu) Execute(ins Instruction) (err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrInstruction(ins), err)
		}
	}()
	if cpu.Verbose {
		log.Printf("%03d: %v", cpu.Ip, ins)
	}

	next_ip := cpu.Ip + 1

	switch ins.Op {
	case OP_MOV:
		var val int64
		val, err = cpu.getValue(ins.Src)
		if err != nil {
			return
		}
		err = cpu.setValue(ins.Dst, func(int64) int64 { return val })
	case OP_INC:
		err = cpu.setValue(ins.Dst, func(input int64) int64 { return input + 1 })
	case OP_DEC:
		err = cpu.setValue(ins.Dst, func(input int64) int64 { return input - 1 })
	case OP_JNZ:
		var cond int64
		cond, err = cpu.getValue(ins.Src)
		if err != nil || cond == 0 {
			break
		}
		var steps int64
		steps, err = cpu.getValue(ins.Offset)
		if err != nil {
			break
		}
		if cpu.taken(steps) {
			next_ip = jumpTarget(cpu.Ip, steps)
			cpu.Jumps += 1
		}
	default:
		err = ErrOpcodeInvalid
	}
	if err != nil {
		return
	}

	cpu.Ip = next_ip
	cpu.Ticks += 1

	return
}

// taken decides if a jump with a non-zero condition branches.
// The bounded policy refuses jumps of more steps than the current IP.
func (cpu *Cpu) taken(steps int64) bool {
	switch cpu.Jump {
	case JUMP_ALWAYS:
		return true
	default:
		return int64(cpu.Ip) >= steps
	}
}

// jumpTarget computes ip+steps, saturated to the int range.
// Any result outside of the program ends execution.
func jumpTarget(ip int, steps int64) int {
	switch {
	case steps > 0 && int64(ip) > math.MaxInt64-steps:
		return math.MaxInt
	case steps < 0 && int64(ip) < math.MinInt64-steps:
		return -1
	}

	target := int64(ip) + steps
	switch {
	case target > math.MaxInt:
		return math.MaxInt
	case target < 0:
		return -1
	}

	return int(target)
}

// checkRegister validates a handle against the register bank.
func (cpu *Cpu) checkRegister(reg Register) error {
	if reg < 0 || int(reg) >= len(cpu.Register) {
		return ErrRegisterRange(reg)
	}

	return nil
}

// setValue applies op to the value of a register.
func (cpu *Cpu) setValue(dst Register, op func(input int64) int64) (err error) {
	err = cpu.checkRegister(dst)
	if err != nil {
		return
	}

	cpu.Register[dst] = op(cpu.Register[dst])
	return
}

// getValue gets the value specified by the Operand.
func (cpu *Cpu) getValue(src Operand) (value int64, err error) {
	if src.IsConstant {
		value = src.Constant
		return
	}

	err = cpu.checkRegister(src.Register)
	if err != nil {
		return
	}

	value = cpu.Register[src.Register]
	return
}
