package cpu

import (
	"fmt"
	"iter"
	"log"
	"maps"
)

var _cpu_defines = map[string]string{
	"REGISTER_COUNT": fmt.Sprintf("%v", REGISTER_COUNT),
	"ZERO":           "r0",
	"PC":             "r15",
}

// Memory is the store the CPU fetches from, loads from, and stores to.
type Memory interface {
	Get(address int) (value uint32, err error)
	Put(address int, value uint32) (err error)
}

// Cpu is the simulation context for the Duck Machine processor.
type Cpu struct {
	Verbose   bool // Set to enable verbose logging.
	StepLimit int  // If non-zero, Run fails after this many steps.

	Memory   Memory       // Reference to the attached memory.
	Register RegisterFile // Register bank.
	Flags    CondFlag     // Flags of the last executed ALU operation.
	Halted   bool         // Set once a HALT executes.

	Steps int // Steps completed, executed or skipped.

	alu              ALU
	observers        []subscriber
	nextSubscription Subscription
}

// NewCpu creates a CPU attached to mem.
func NewCpu(mem Memory) (cpu *Cpu) {
	cpu = &Cpu{
		Memory: mem,
		Flags:  COND_ALWAYS,
	}

	return
}

// Defines returns an iter of the assembler defines for the CPU.
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() string {
	state := "running"
	if cpu.Halted {
		state = "halted"
	}
	return fmt.Sprintf("%v flags: %v steps: %d\n%v", state, cpu.Flags, cpu.Steps, cpu.Register.String())
}

// Step fetches, decodes, and executes one instruction.
//
// A failing step leaves the registers, flags, and memory unchanged.
func (cpu *Cpu) Step() (err error) {
	if cpu.Halted {
		return ErrHalted
	}

	pc := cpu.Register.Pc()
	defer func() {
		if err != nil {
			err = &ErrStep{Pc: int(pc), Err: err}
		}
	}()

	word, err := cpu.Memory.Get(int(pc))
	if err != nil {
		return
	}

	instr, err := Decode(word)
	if err != nil {
		return
	}

	cpu.notify(StepEvent{Cpu: cpu, Pc: int(pc), Word: word, Instruction: instr})

	if cpu.Verbose {
		log.Printf("%04d: %08x %v", pc, word, instr)
	}

	// Staged register state; committed only once the step cannot fail.
	next := cpu.Register
	_ = next.Put(REG_PC, pc+1)

	if cpu.Flags&instr.Cond == COND_NEVER {
		if cpu.Verbose {
			log.Printf("%04d: skipped, flags %v", pc, cpu.Flags)
		}
		cpu.Register = next
		cpu.Steps++
		return
	}

	left, err := cpu.Register.Get(int(instr.Src1))
	if err != nil {
		return
	}
	right, err := cpu.Register.Get(int(instr.Src2))
	if err != nil {
		return
	}
	right += instr.Offset

	result, flags, err := cpu.alu.Exec(instr.Op, left, right)
	if err != nil {
		return
	}

	halted := false

	switch instr.Op {
	case OP_HALT:
		halted = true
	case OP_LOAD:
		var value uint32
		value, err = cpu.Memory.Get(int(result))
		if err != nil {
			return
		}
		err = next.Put(int(instr.Target), int32(value))
	case OP_STORE:
		var value int32
		value, err = next.Get(int(instr.Target))
		if err != nil {
			return
		}
		err = cpu.Memory.Put(int(result), uint32(value))
	case OP_ADD, OP_SUB, OP_MUL, OP_DIV, OP_AND, OP_OR, OP_XOR, OP_SHL, OP_SHR:
		err = next.Put(int(instr.Target), result)
	default:
		err = ErrInvalidOpcode
	}
	if err != nil {
		return
	}

	cpu.Register = next
	cpu.Flags = flags
	cpu.Halted = halted
	cpu.Steps++

	if cpu.Verbose && halted {
		log.Printf("cpu: halted at %d", pc)
	}

	return
}

// Run sets the program counter to from, then steps until a HALT executes.
func (cpu *Cpu) Run(from int) (err error) {
	if cpu.Halted {
		return ErrHalted
	}

	err = cpu.Register.Put(REG_PC, int32(from))
	if err != nil {
		return
	}

	for steps := 0; !cpu.Halted; steps++ {
		if cpu.StepLimit > 0 && steps >= cpu.StepLimit {
			err = ErrStepLimit
			return
		}
		err = cpu.Step()
		if err != nil {
			return
		}
	}

	return
}
