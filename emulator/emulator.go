// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"errors"
	"fmt"
	goio "io"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/duckvm/cpu"
	"github.com/ezrec/duckvm/internal"
	"github.com/ezrec/duckvm/io"
	"github.com/ezrec/duckvm/memory"
)

const (
	MEMORY_SIZE = memory.DEFAULT_SIZE // Words of main memory.
	CONSOLE_OUT = 510                 // Console output address.
	CONSOLE_IN  = 511                 // Console input address.
)

var _emulator_defines = map[string]string{
	"MEMORY_SIZE": fmt.Sprintf("%v", MEMORY_SIZE),
	"CONSOLE_OUT": fmt.Sprintf("%v", CONSOLE_OUT),
	"CONSOLE_IN":  fmt.Sprintf("%v", CONSOLE_IN),
}

// Emulator state. CPU + memory + console.
type Emulator struct {
	Verbose   bool         // If set, enables verbose logging and tracing.
	StepLimit int          // If non-zero, Run fails after this many steps.
	*cpu.Cpu               // Reference to the CPU simulation.
	Program   *cpu.Program // Reference to the currently loaded program.

	Memory  *memory.Memory // Main memory, with the console mapped in.
	Console io.Console     // Console I/O device.

	Observers []cpu.Observer // Observers subscribed to the CPU on reset.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Program: &cpu.Program{},
		Memory:  memory.New(MEMORY_SIZE),
	}

	emu.Memory.MapRead(CONSOLE_IN, emu.Console.Read)
	emu.Memory.MapWrite(CONSOLE_OUT, emu.Console.Write)

	emu.Cpu = cpu.NewCpu(emu.Memory)

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
		emu.Console.Defines(),
	)
}

// Assemble parses assembly source into the emulator's program, with the
// emulator defines available as equates.
func (emu *Emulator) Assemble(input goio.Reader) (err error) {
	asm := &cpu.Assembler{Verbose: emu.Verbose}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}

	prog, err := asm.Parse(input)
	if err != nil {
		return
	}

	emu.Program = prog
	return
}

// Reset clears memory, loads the program at address zero, and starts a
// fresh CPU.
func (emu *Emulator) Reset() (err error) {
	emu.Memory.Verbose = emu.Verbose
	emu.Memory.Clear()
	emu.Console.Rewind()

	err = emu.Memory.Load(0, emu.Program.Binary())
	if err != nil {
		return
	}

	emu.Cpu = cpu.NewCpu(emu.Memory)
	emu.Cpu.Verbose = emu.Verbose

	if emu.Verbose {
		emu.Cpu.Subscribe(cpu.ObserverFunc(emu.trace))
	}
	for _, observer := range emu.Observers {
		emu.Cpu.Subscribe(observer)
	}

	return
}

// trace logs each instruction as it is about to execute.
func (emu *Emulator) trace(event cpu.StepEvent) {
	log.Printf("%04d: %08x %-24v ; line %d", event.Pc, event.Word, event.Instruction, emu.Program.LineNo(event.Pc))
}

// Steps returns the total steps since a reset.
func (emu *Emulator) Steps() int {
	return emu.Cpu.Steps
}

// Pc returns current program counter.
func (emu *Emulator) Pc() int {
	return int(emu.Cpu.Register.Pc())
}

// Opcode returns the program opcode at the program counter, if any.
func (emu *Emulator) Opcode() *cpu.Opcode {
	return emu.Program.Lookup(emu.Pc())
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	return emu.Program.LineNo(emu.Pc())
}

// Tick performs a single step of the emulator. done is set once the
// CPU has halted.
func (emu *Emulator) Tick() (done bool, err error) {
	emu.Cpu.Verbose = emu.Verbose

	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Err: err}
		}
	}()

	err = emu.Cpu.Step()
	if errors.Is(err, cpu.ErrHalted) {
		err = nil
		done = true
		return
	}
	if err != nil {
		return
	}

	done = emu.Cpu.Halted
	return
}

// Run ticks the emulator from address from until the CPU halts.
func (emu *Emulator) Run(from int) (err error) {
	if emu.Cpu.Halted {
		err = cpu.ErrHalted
		return
	}

	err = emu.Cpu.Register.Put(cpu.REG_PC, int32(from))
	if err != nil {
		return
	}

	for steps := 0; ; steps++ {
		if emu.StepLimit > 0 && steps >= emu.StepLimit {
			err = &ErrRuntime{LineNo: emu.LineNo(), Err: cpu.ErrStepLimit}
			return
		}

		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			return
		}
	}
}
