// Package cpu implements the register machine and assembler for the simple
// assembly language.
//
// The machine consists of an instruction pointer (IP) and a dense bank of
// signed 64-bit registers. Registers are named in the source text and are
// assigned a zero-based handle in order of first appearance, so the machine
// never looks up a register by name while running.
//
// The assembly language has four instructions:
//
//	mov x y  ; copy y (a constant or register) into register x
//	inc x    ; increment register x
//	dec x    ; decrement register x
//	jnz x y  ; if x is not zero, jump y instructions away
//
// The assembler translates lines of text into a [Program], and the [Cpu]
// executes the program's instructions until the IP leaves the program.
package cpu
