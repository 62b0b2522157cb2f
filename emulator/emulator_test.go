package emulator

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sol-Ell/simple-assembler-interpreter/cpu"
)

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	assert.False(emu.Verbose)
	assert.Equal(0, emu.Limit)
	assert.NotNil(emu.Cpu)
	assert.NotNil(emu.Program)

	assert.NoError(emu.Run())
	assert.Empty(emu.Result())
}

func TestEmulatorNoProgram(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Program = nil
	assert.ErrorIs(emu.Run(), ErrProgramAbsent)

	done, err := emu.Tick()
	assert.False(done)
	assert.ErrorIs(err, ErrProgramAbsent)
	assert.Equal(0, emu.LineNo())

	emu.Reset()
	assert.Empty(emu.Cpu.Register)
	assert.Empty(emu.Result())
	assert.ErrorIs(emu.Run(), ErrProgramAbsent)
}

func TestInterpret(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name    string
		program []string
		result  map[string]int64
	}){
		{"constant", []string{"mov a 5"}, map[string]int64{"a": 5}},
		{"inc_dec", []string{"mov a 5", "inc a", "inc a", "dec a", "dec a", "dec a"},
			map[string]int64{"a": 4}},
		{"loop", []string{"mov a 5", "inc a", "dec a", "dec a", "jnz a -1", "inc a"},
			map[string]int64{"a": 1}},
		{"countdown", []string{"mov a 3", "mov b 5", "dec a", "inc b", "jnz a -2", "dec b"},
			map[string]int64{"a": 0, "b": 7}},
		{"nested", []string{
			"mov c 12",
			"mov b 0",
			"mov a 200",
			"dec a",
			"inc b",
			"jnz a -2",
			"dec c",
			"mov a b",
			"jnz c -5",
			"jnz 0 1",
			"mov c a",
		}, map[string]int64{"a": 409600, "b": 409600, "c": 409600}},
		{"register_offset", []string{"mov a 1", "mov s 2", "jnz a s", "mov a 9", "inc a"},
			map[string]int64{"a": 2, "s": 2}},
		{"register_offset_refused", []string{"mov a 1", "mov s 3", "jnz a s", "mov a 9", "inc a"},
			map[string]int64{"a": 10, "s": 3}},
		{"forward_refused", []string{"mov a 1", "jnz a 2", "mov a 5", "inc a"},
			map[string]int64{"a": 6}},
		{"negative", []string{"mov a -4", "dec a", "mov b a"},
			map[string]int64{"a": -5, "b": -5}},
		{"exit_backward", []string{"mov a 1", "jnz a -10", "inc a"},
			map[string]int64{"a": 1}},
		{"empty", []string{}, map[string]int64{}},
	}

	for _, entry := range table {
		result, err := Interpret(entry.program)
		assert.NoError(err, entry.name)
		assert.Equal(entry.result, result, entry.name)
	}
}

func TestInterpretUnknownRegister(t *testing.T) {
	assert := assert.New(t)

	result, err := Interpret([]string{"mov a 1", "inc b"})
	assert.Nil(result)
	assert.ErrorIs(err, cpu.ErrRegisterUnknown("b"))

	var es *cpu.ErrSyntax
	if assert.ErrorAs(err, &es) {
		assert.Equal(2, es.LineNo)
		assert.Equal("inc b", es.Line)
	}
}

func TestEmulatorDeadJump(t *testing.T) {
	assert := assert.New(t)

	with := []string{"mov a 2", "jnz 0 100", "dec a", "jnz 0 -3"}
	without := []string{"mov a 2", "dec a"}

	emu := NewEmulator()
	assert.NoError(emu.Load(with))
	assert.Equal(2, len(emu.Program.Opcodes))
	for _, op := range emu.Program.Opcodes {
		assert.NotEqual(cpu.OP_JNZ, op.Instruction.Op)
	}
	assert.NoError(emu.Run())

	expected, err := Interpret(without)
	assert.NoError(err)
	assert.Equal(expected, emu.Result())
	assert.Equal(2, emu.Cpu.Ticks)
}

func TestEmulatorTrailingRejects(t *testing.T) {
	assert := assert.New(t)

	program := []string{"mov a 3", "mov b a", "inc b", "jnz 1 2", "dec a"}

	clean := NewEmulator()
	assert.NoError(clean.Load(program))
	assert.NoError(clean.Run())

	noisy := NewEmulator()
	assert.NoError(noisy.Load(append(program, "mul a 2", "inc", "")))
	assert.NoError(noisy.Run())

	assert.Equal(clean.Result(), noisy.Result())
	assert.Equal(0, clean.Program.Errors())
	assert.Equal(3, noisy.Program.Errors())
}

func TestEmulatorStepLimit(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Limit = 1000
	assert.NoError(emu.Load([]string{"mov a 3", "mov b 5", "dec a", "inc b", "jnz a -1", "dec b"}))

	err := emu.Run()
	assert.ErrorIs(err, ErrStepLimit)

	var er *ErrRuntime
	if assert.ErrorAs(err, &er) {
		assert.Equal(5, er.LineNo)
	}

	assert.Equal(1000, emu.Cpu.Ticks)
	assert.Equal(map[string]int64{"a": 2, "b": 504}, emu.Result())
}

func TestEmulatorLimitExact(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Limit = 3
	assert.NoError(emu.Load([]string{"mov a 1", "inc a", "inc a"}))
	assert.NoError(emu.Run())
	assert.Equal(map[string]int64{"a": 3}, emu.Result())
}

func TestEmulatorJumpPolicy(t *testing.T) {
	assert := assert.New(t)

	program := []string{"mov a 1", "jnz a 2", "mov a 5", "inc a"}

	emu := NewEmulator()
	assert.Equal(cpu.JUMP_BOUNDED, emu.Cpu.Jump)
	assert.NoError(emu.Load(program))
	assert.NoError(emu.Run())
	assert.Equal(map[string]int64{"a": 6}, emu.Result())

	emu.Cpu.Jump = cpu.JUMP_ALWAYS
	assert.NoError(emu.Load(program))
	assert.Equal(cpu.JUMP_ALWAYS, emu.Cpu.Jump)
	assert.NoError(emu.Run())
	assert.Equal(map[string]int64{"a": 2}, emu.Result())
}

func TestEmulatorTick(t *testing.T) {
	assert := assert.New(t)

	program := []string{"mov a 2", "bad line", "dec a", "jnz a -1"}

	emu := NewEmulator()
	assert.NoError(emu.Parse(strings.NewReader(strings.Join(program, "\n"))))

	lines := []int{1, 3, 4, 3, 4}
	for n, lineno := range lines {
		assert.Equal(lineno, emu.LineNo(), n)
		done, err := emu.Tick()
		assert.NoError(err)
		assert.Equal(n == len(lines)-1, done, n)
	}

	assert.Equal(0, emu.LineNo())
	assert.Equal(map[string]int64{"a": 0}, emu.Result())
	assert.Equal(1, emu.Cpu.Jumps)
}

func TestEmulatorReset(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	assert.NoError(emu.Load([]string{"mov a 1", "inc a"}))
	assert.NoError(emu.Run())
	assert.Equal(map[string]int64{"a": 2}, emu.Result())

	emu.Reset()
	assert.Equal(map[string]int64{"a": 0}, emu.Result())
	assert.NoError(emu.Run())
	assert.Equal(map[string]int64{"a": 2}, emu.Result())
}

// Without jumps, each register ends at the left-to-right fold of its own
// mov/inc/dec history.
func TestEmulatorStraightLine(t *testing.T) {
	assert := assert.New(t)

	rng := rand.New(rand.NewSource(1))
	names := []string{"a", "b", "c", "d"}

	for round := range 50 {
		expected := map[string]int64{}
		var program []string
		for range 40 {
			name := names[rng.Intn(len(names))]
			_, known := expected[name]
			switch op := rng.Intn(4); {
			case !known || op == 0:
				value := rng.Int63n(200) - 100
				program = append(program, fmt.Sprintf("mov %v %v", name, value))
				expected[name] = value
			case op == 1:
				program = append(program, "inc "+name)
				expected[name]++
			case op == 2:
				program = append(program, "dec "+name)
				expected[name]--
			default:
				from := names[rng.Intn(len(names))]
				if _, ok := expected[from]; !ok {
					from = name
				}
				program = append(program, fmt.Sprintf("mov %v %v", name, from))
				expected[name] = expected[from]
			}
		}

		result, err := Interpret(program)
		assert.NoError(err, round)
		assert.Equal(expected, result, round)
	}
}

func TestErrRuntime(t *testing.T) {
	assert := assert.New(t)

	err := error(&ErrRuntime{LineNo: 7, Err: ErrStepLimit})
	assert.True(errors.Is(err, ErrStepLimit))
	assert.Equal("line 7 step limit exceeded", err.Error())
}
