// Package cpu implements the processor and assembler of the Duck Machine.
//
// The CPU consists of sixteen 32-bit registers (r0 reads as zero, r15 is
// the program counter), a stateless ALU, and a set of condition flags
// recording the sign of the last ALU result. Every instruction carries a
// condition and only executes when it shares a flag with the current
// state.
//
// Instructions are fixed 32-bit words; see Instruction for the layout.
// The assembler turns assembly text into a Program image that loads at
// address 0.
package cpu
