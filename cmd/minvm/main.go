// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"github.com/ezrec/minvm/emulator"
	"github.com/ezrec/minvm/machine"
)

func main() {
	var compile string
	var binary string
	var save string
	var input string
	var output string
	var limit int
	var verbose bool

	flag.StringVar(&compile, "c", "", ".mvm file to compile")
	flag.StringVar(&binary, "b", "", ".bin memory image to load")
	flag.StringVar(&save, "s", "", "Save memory image to file, do not execute")
	flag.StringVar(&input, "i", "-", "Tape input")
	flag.StringVar(&output, "o", "-", "Tape output")
	flag.IntVar(&limit, "n", 0, "Maximum instructions to execute (0 for no limit)")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if len(compile) != 0 && len(binary) != 0 {
		log.Fatalf("%v: -c and -b are exclusive", os.Args[0])
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose

	prog := &machine.Program{}

	// Compile a new instruction stream.
	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		asm := &machine.Assembler{Verbose: verbose}
		for key, value := range emu.Defines() {
			asm.Predefine(key, value)
		}
		prog, err = asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	}

	// Load a raw memory image, as a single data opcode.
	if len(binary) != 0 {
		image, err := os.ReadFile(binary)
		if err != nil {
			log.Fatalf("%v: %v", binary, err)
		}
		if len(image) > machine.MEMORY_SIZE {
			log.Fatalf("%v: %v", binary, machine.ErrProgramTooLarge)
		}
		prog.Opcodes = append(prog.Opcodes, machine.Opcode{
			LineNo: 1,
			Bytes:  image,
			Data:   true,
		})
	}

	if len(save) != 0 {
		err := os.WriteFile(save, prog.Binary(), 0o644)
		if err != nil {
			log.Fatalf("%v: %v", save, err)
		}
		return
	}

	emu.Program = prog

	if input == "-" {
		emu.Tape.Input = os.Stdin
	} else {
		inf, err := os.Open(input)
		if err != nil {
			log.Fatalf("%v: %v", input, err)
		}
		emu.Tape.Input = inf
	}

	if output == "-" {
		emu.Tape.Output = os.Stdout
	} else {
		ouf, err := os.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		emu.Tape.Output = ouf
	}

	err := emu.Reset()
	if err != nil {
		log.Fatal(err)
	}

	err = emu.Run(limit)
	if errors.Is(err, emulator.ErrStepLimit) {
		log.Printf("%v: %v after %d instructions", os.Args[0], err, emu.Ticks())
	} else if err != nil {
		log.Print(err)
		log.Printf("state:\n%v", emu.Machine)
	}

	cerr := emu.Close()
	if err == nil && cerr != nil {
		err = cerr
		log.Print(cerr)
	}

	if err != nil {
		os.Exit(1)
	}
}
