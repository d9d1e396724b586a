package cpu

import (
	"errors"
	"fmt"

	"github.com/ezrec/duckvm/bitfield"
)

// Instruction word layout (DM2018):
//
//	31     reserved, zero
//	26..30 opcode
//	22..25 condition
//	18..21 target register
//	14..17 source register 1
//	10..13 source register 2
//	 0..9  offset, two's complement
var (
	fieldReserved = bitfield.Must(31, 31)
	fieldOp       = bitfield.Must(26, 30)
	fieldCond     = bitfield.Must(22, 25)
	fieldTarget   = bitfield.Must(18, 21)
	fieldSrc1     = bitfield.Must(14, 17)
	fieldSrc2     = bitfield.Must(10, 13)
	fieldOffset   = bitfield.Must(0, 9)
)

const (
	OFFSET_MIN = -(1 << 9)    // Smallest encodable offset.
	OFFSET_MAX = (1 << 9) - 1 // Largest encodable offset.
)

// Reg is a register index.
type Reg uint8

func (reg Reg) String() string {
	return fmt.Sprintf("r%d", uint8(reg))
}

// Instruction is a decoded instruction word.
type Instruction struct {
	Op     OpCode   // Operation.
	Cond   CondFlag // Flags under which the operation executes.
	Target Reg      // Target register.
	Src1   Reg      // First source register.
	Src2   Reg      // Second source register, added to Offset.
	Offset int32    // Signed offset.
}

// Decode unpacks an instruction word.
func Decode(word uint32) (instr Instruction, err error) {
	instr = Instruction{
		Op:     OpCode(fieldOp.Extract(word)),
		Cond:   CondFlag(fieldCond.Extract(word)),
		Target: Reg(fieldTarget.Extract(word)),
		Src1:   Reg(fieldSrc1.Extract(word)),
		Src2:   Reg(fieldSrc2.Extract(word)),
		Offset: fieldOffset.ExtractSigned(word),
	}

	switch {
	case !instr.Op.Valid():
		err = errors.Join(ErrDecode(word), ErrInvalidOpcode)
	case !instr.Cond.Valid():
		err = errors.Join(ErrDecode(word), ErrInvalidCondition)
	}
	if err != nil {
		instr = Instruction{}
	}

	return
}

// Encode packs the instruction into a word. Out of range fields are
// truncated to their width; see Valid.
func (instr Instruction) Encode() (word uint32) {
	word = fieldReserved.Insert(0, word)
	word = fieldOp.Insert(uint32(instr.Op), word)
	word = fieldCond.Insert(uint32(instr.Cond), word)
	word = fieldTarget.Insert(uint32(instr.Target), word)
	word = fieldSrc1.Insert(uint32(instr.Src1), word)
	word = fieldSrc2.Insert(uint32(instr.Src2), word)
	word = fieldOffset.Insert(uint32(instr.Offset), word)
	return
}

// Valid checks that every field of the instruction fits its encoding.
func (instr Instruction) Valid() (err error) {
	switch {
	case !instr.Op.Valid():
		err = ErrInvalidOpcode
	case !instr.Cond.Valid():
		err = ErrInvalidCondition
	case instr.Target >= REGISTER_COUNT:
		err = ErrRegister(instr.Target)
	case instr.Src1 >= REGISTER_COUNT:
		err = ErrRegister(instr.Src1)
	case instr.Src2 >= REGISTER_COUNT:
		err = ErrRegister(instr.Src2)
	case instr.Offset < OFFSET_MIN || instr.Offset > OFFSET_MAX:
		err = ErrOffsetRange
	}
	return
}

// String returns the instruction in assembler syntax.
func (instr Instruction) String() string {
	mnemonic := instr.Op.String()
	if instr.Cond != COND_ALWAYS {
		mnemonic += "/" + instr.Cond.String()
	}

	return fmt.Sprintf("%v %v,%v,%v[%d]", mnemonic, instr.Target, instr.Src1, instr.Src2, instr.Offset)
}
