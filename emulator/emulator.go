// Package emulator ties the assembler and the register machine together:
// it translates a program, runs it, and maps the final register bank back
// to register names.
package emulator

import (
	"io"
	"log"

	"github.com/Sol-Ell/simple-assembler-interpreter/cpu"
)

// Emulator state. Assembler + CPU + translated program.
type Emulator struct {
	Verbose  bool           // If set, enables verbose logging.
	Limit    int            // Maximum ticks per run, or 0 for no limit.
	*cpu.Cpu                // Reference to the CPU simulation.
	Program  *cpu.Program   // Reference to the currently loaded program.
	Asm      *cpu.Assembler // Assembler used by Load and Parse.

	code []cpu.Instruction
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(0),
		Program: &cpu.Program{},
		Asm:     &cpu.Assembler{},
	}

	return
}

// Interpret translates and runs a program, and returns the final value of
// every register it names.
func Interpret(lines []string) (result map[string]int64, err error) {
	emu := NewEmulator()
	err = emu.Load(lines)
	if err != nil {
		return
	}

	err = emu.Run()
	if err != nil {
		return
	}

	result = emu.Result()
	return
}

// Load translates source lines and resets the emulator to run them.
func (emu *Emulator) Load(lines []string) (err error) {
	emu.Asm.Verbose = emu.Verbose
	prog, err := emu.Asm.Assemble(lines)
	if err != nil {
		return
	}

	emu.Program = prog
	emu.Reset()

	return
}

// Parse translates a source stream and resets the emulator to run it.
func (emu *Emulator) Parse(input io.Reader) (err error) {
	emu.Asm.Verbose = emu.Verbose
	prog, err := emu.Asm.Parse(input)
	if err != nil {
		return
	}

	emu.Program = prog
	emu.Reset()

	return
}

// Reset the CPU to run the loaded program from the start.
// The register bank is sized to the program's name table.
func (emu *Emulator) Reset() {
	jump := emu.Cpu.Jump
	emu.code = nil
	count := 0
	if emu.Program != nil {
		count = emu.Program.RegisterCount()
		emu.code = emu.Program.Code()
	}
	emu.Cpu = cpu.NewCpu(count)
	emu.Cpu.Jump = jump
	emu.Cpu.Verbose = emu.Verbose

	if emu.Verbose && emu.Program != nil {
		log.Printf("emulator: %v instructions, %v registers, %v rejected",
			len(emu.code), emu.Program.RegisterCount(), emu.Program.Errors())
	}
}

// LineNo returns the source line number of the next instruction.
func (emu *Emulator) LineNo() int {
	if emu.Program == nil {
		return 0
	}

	op := emu.Program.Debug(emu.Cpu.Ip)
	if op == nil {
		return 0
	}

	return op.LineNo
}

// Tick performs a single tick of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	if emu.Program == nil {
		err = ErrProgramAbsent
		return
	}

	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Err: err}
		}
	}()

	if emu.Limit > 0 && emu.Cpu.Ticks >= emu.Limit && !emu.Cpu.Done(emu.code) {
		err = ErrStepLimit
		return
	}

	done, err = emu.Cpu.Tick(emu.code)
	return
}

// Run ticks the emulator until the program exits.
func (emu *Emulator) Run() (err error) {
	for done, err := emu.Tick(); !done; done, err = emu.Tick() {
		if err != nil {
			return err
		}
	}

	if emu.Verbose {
		log.Printf("emulator: exit after %v ticks, %v jumps", emu.Cpu.Ticks, emu.Cpu.Jumps)
	}

	return
}

// Result maps the register bank back to register names.
func (emu *Emulator) Result() map[string]int64 {
	if emu.Program == nil {
		return map[string]int64{}
	}

	return emu.Program.Project(emu.Cpu.Register)
}
