// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ezrec/duckvm/cpu"
	"github.com/ezrec/duckvm/emulator"
)

func main() {
	var compile string
	var load string
	var save string
	var listing string
	var input string
	var output string
	var verbose bool
	var limit int
	var step bool

	flag.StringVar(&compile, "c", "", ".dasm file to assemble")
	flag.StringVar(&load, "l", "", ".obj file to load")
	flag.StringVar(&save, "s", "", "Save program to .obj file, do not execute")
	flag.StringVar(&listing, "L", "", "Write a listing of the program")
	flag.StringVar(&input, "i", "-", "Console input")
	flag.StringVar(&output, "o", "-", "Console output")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.IntVar(&limit, "n", 0, "Maximum steps to execute, 0 for unlimited")
	flag.BoolVar(&step, "step", false, "Single step, waiting for enter after each instruction")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if len(compile) != 0 && len(load) != 0 {
		log.Fatalf("%v: -c and -l are exclusive", os.Args[0])
	}

	if step && input == "-" {
		log.Fatalf("%v: -step needs stdin, use -i for console input", os.Args[0])
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	emu.StepLimit = limit

	// Assemble a new program.
	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		err = emu.Assemble(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	}

	// Load an object file.
	if len(load) != 0 {
		inf, err := os.Open(load)
		if err != nil {
			log.Fatalf("%v: %v", load, err)
		}
		defer inf.Close()

		emu.Program, err = cpu.ReadObject(inf)
		if err != nil {
			log.Fatalf("%v: %v", load, err)
		}
	}

	if len(listing) != 0 {
		ouf, err := os.Create(listing)
		if err != nil {
			log.Fatalf("%v: %v", listing, err)
		}
		defer ouf.Close()

		err = emu.Program.WriteListing(ouf)
		if err != nil {
			log.Fatalf("%v: %v", listing, err)
		}
	}

	if len(save) != 0 {
		ouf, err := os.Create(save)
		if err != nil {
			log.Fatalf("%v: %v", save, err)
		}
		defer ouf.Close()

		err = emu.Program.WriteObject(ouf)
		if err != nil {
			log.Fatalf("%v: %v", save, err)
		}
		return
	}

	if input == "-" {
		emu.Console.Input = os.Stdin
	} else {
		inf, err := os.Open(input)
		if err != nil {
			log.Fatalf("%v: %v", input, err)
		}
		defer inf.Close()
		emu.Console.Input = inf
	}

	if output == "-" {
		emu.Console.Output = os.Stdout
		emu.Console.Prompt = "Quack!: "
	} else {
		ouf, err := os.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		defer ouf.Close()
		emu.Console.Output = ouf
	}

	if step {
		stdin := bufio.NewReader(os.Stdin)
		emu.Observers = append(emu.Observers, cpu.ObserverFunc(func(event cpu.StepEvent) {
			fmt.Fprintf(os.Stderr, "%04d: %v\n%v", event.Pc, event.Instruction, event.Cpu.Register.String())
			fmt.Fprintf(os.Stderr, "Step %d; press enter", event.Cpu.Steps)
			_, _ = stdin.ReadString('\n')
		}))
	}

	err := emu.Reset()
	if err != nil {
		log.Fatal(err)
	}

	err = emu.Run(0)
	if err != nil {
		log.Fatal(err)
	}

	if verbose {
		log.Printf("%v", emu.Cpu.String())
	}
}
