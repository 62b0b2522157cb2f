package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"iter"
	"log"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/tebeka/atexit"

	"github.com/Sol-Ell/simple-assembler-interpreter/cpu"
	"github.com/Sol-Ell/simple-assembler-interpreter/emulator"
	"github.com/Sol-Ell/simple-assembler-interpreter/internal"
	"github.com/Sol-Ell/simple-assembler-interpreter/translate"
)

var f = translate.From

func fatalf(format string, args ...any) {
	log.Print(f(format, args...))
	atexit.Exit(1)
}

// LIMIT_ENV sets the default step limit.
const LIMIT_ENV = "ASMI_LIMIT"

// loadEnv applies a .env file in the working directory, if any.
func loadEnv() {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf(".env: %v", err)
	}

	translate.SetLanguage(translate.Locales()...)
}

func main() {
	loadEnv()

	var inline string
	var verbose bool
	var listing bool
	var always bool
	var expand bool
	var limit int

	if env := os.Getenv(LIMIT_ENV); len(env) != 0 {
		n, err := strconv.Atoi(env)
		if err != nil {
			fatalf("%v: %v", LIMIT_ENV, err)
		}
		limit = n
	}

	asm := &cpu.Assembler{}

	flag.StringVar(&inline, "e", "", "Inline program, lines separated by ';'")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.BoolVar(&listing, "l", false, "Print the translated listing")
	flag.BoolVar(&always, "a", false, "Take every jump with a non-zero condition, however far forward")
	flag.BoolVar(&expand, "x", false, "Evaluate $(...) expressions and .equ directives")
	flag.IntVar(&limit, "n", limit, "Maximum instructions to execute, 0 for no limit")
	flag.Func("D", "Predefine NAME=VALUE for $(...) expressions", func(def string) error {
		name, value, ok := strings.Cut(def, "=")
		if !ok || len(name) == 0 {
			return cpu.ErrEquateSyntax
		}
		asm.Predefine(name, value)
		return nil
	})

	flag.Parse()

	var sources []iter.Seq[string]
	if len(inline) != 0 {
		sources = append(sources, slices.Values(strings.Split(inline, ";")))
	}

	files := flag.Args()
	if len(files) == 0 && len(inline) == 0 {
		files = []string{"-"}
	}

	for _, name := range files {
		inf := os.Stdin
		if name != "-" {
			var err error
			inf, err = os.Open(name)
			if err != nil {
				fatalf("%v: %v", name, err)
			}
			atexit.Register(func() { inf.Close() })
		}
		lines, err := internal.ReadLines(inf)
		if err != nil {
			fatalf("%v: %v", name, err)
		}
		sources = append(sources, slices.Values(lines))
	}

	asm.Verbose = verbose
	asm.Expand = expand
	prog, err := asm.Translate(internal.IterSeqConcat(sources...))
	if err != nil {
		fatalf("%v: %v", os.Args[0], err)
	}

	for _, reject := range prog.Rejected {
		log.Print(f("warning: %v", reject))
	}
	if prog.Errors() != 0 {
		log.Print(f("%v lines rejected", prog.Errors()))
	}

	if listing {
		fmt.Print(prog.Listing())
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	emu.Limit = limit
	emu.Asm = asm
	emu.Program = prog
	if always {
		emu.Cpu.Jump = cpu.JUMP_ALWAYS
	}
	emu.Reset()

	err = emu.Run()
	if err != nil {
		fatalf("%v: %v", os.Args[0], err)
	}

	result := emu.Result()
	for name := range prog.Names() {
		fmt.Println(f("%v: %d", name, result[name]))
	}

	atexit.Exit(0)
}
