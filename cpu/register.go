package cpu

import (
	"fmt"
	"strings"
)

const (
	REGISTER_COUNT = 16 // Number of registers.
	REG_ZERO       = 0  // Hard-wired zero register.
	REG_PC         = 15 // Program counter.
)

// RegisterFile is the register bank. Register 0 always reads as zero.
type RegisterFile struct {
	cell [REGISTER_COUNT]int32
}

// Get reads a register.
func (rf *RegisterFile) Get(index int) (value int32, err error) {
	if index < 0 || index >= REGISTER_COUNT {
		err = ErrRegister(index)
		return
	}
	if index == REG_ZERO {
		return
	}

	value = rf.cell[index]
	return
}

// Put writes a register. Writes to register 0 are dropped.
func (rf *RegisterFile) Put(index int, value int32) (err error) {
	if index < 0 || index >= REGISTER_COUNT {
		err = ErrRegister(index)
		return
	}
	if index == REG_ZERO {
		return
	}

	rf.cell[index] = value
	return
}

// Pc returns the program counter.
func (rf *RegisterFile) Pc() int32 {
	return rf.cell[REG_PC]
}

// String dumps the registers, four per line.
func (rf *RegisterFile) String() string {
	var text strings.Builder
	for n, value := range rf.cell {
		name := Reg(n).String()
		if n == REG_PC {
			name = "pc"
		}
		fmt.Fprintf(&text, "% 4s: %04X_%04X", name, uint32(value)>>16, uint32(value)&0xffff)
		if n%4 == 3 {
			text.WriteString("\n")
		} else {
			text.WriteString("  ")
		}
	}
	return text.String()
}
