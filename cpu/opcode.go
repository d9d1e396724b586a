package cpu

import (
	"fmt"
	"strings"
)

// OpCode is an operation code.
type OpCode int

//go:generate go tool stringer -linecomment -type=OpCode
const (
	OP_HALT  = OpCode(0)  // HALT
	OP_LOAD  = OpCode(1)  // LOAD
	OP_STORE = OpCode(2)  // STORE
	OP_ADD   = OpCode(3)  // ADD
	OP_SUB   = OpCode(4)  // SUB
	OP_MUL   = OpCode(5)  // MUL
	OP_DIV   = OpCode(6)  // DIV
	OP_AND   = OpCode(7)  // AND
	OP_OR    = OpCode(8)  // OR
	OP_XOR   = OpCode(9)  // XOR
	OP_SHL   = OpCode(10) // SHL
	OP_SHR   = OpCode(11) // SHR

	OP_COUNT = 12 // Number of defined opcodes.
)

// Valid returns true if op is a defined opcode.
func (op OpCode) Valid() bool {
	return op >= 0 && op < OP_COUNT
}

// opMap maps mnemonics to opcodes.
var opMap = func() map[string]OpCode {
	ops := make(map[string]OpCode, OP_COUNT)
	for op := range OpCode(OP_COUNT) {
		ops[op.String()] = op
	}
	return ops
}()

// CondFlag is a set of condition flags.
//
// As machine state it records the sign of the last ALU result. As an
// instruction predicate it is the set of flags under which the
// instruction executes.
type CondFlag int

const (
	COND_NEVER    = CondFlag(0)                                       // Never execute.
	COND_NEGATIVE = CondFlag(1 << 0)                                  // M: result < 0
	COND_ZERO     = CondFlag(1 << 1)                                  // Z: result == 0
	COND_POSITIVE = CondFlag(1 << 2)                                  // P: result > 0
	COND_ALWAYS   = CondFlag(COND_NEGATIVE | COND_ZERO | COND_POSITIVE) // Always execute.
)

var condLetters = [...](struct {
	flag   CondFlag
	letter byte
}){
	{COND_NEGATIVE, 'M'},
	{COND_ZERO, 'Z'},
	{COND_POSITIVE, 'P'},
}

// Valid returns true if cond is a combination of defined flags.
func (cond CondFlag) Valid() bool {
	return cond&^COND_ALWAYS == 0
}

// String returns NEVER, ALWAYS, or the M/Z/P letters of the set.
func (cond CondFlag) String() string {
	switch {
	case cond == COND_NEVER:
		return "NEVER"
	case cond == COND_ALWAYS:
		return "ALWAYS"
	case !cond.Valid():
		return fmt.Sprintf("CondFlag(%d)", int(cond))
	}

	var str strings.Builder
	for _, cl := range condLetters {
		if cond&cl.flag != 0 {
			str.WriteByte(cl.letter)
		}
	}
	return str.String()
}

// ParseCond parses the text produced by CondFlag.String().
func ParseCond(text string) (cond CondFlag, err error) {
	text = strings.ToUpper(text)
	switch text {
	case "NEVER":
		return COND_NEVER, nil
	case "ALWAYS":
		return COND_ALWAYS, nil
	case "":
		err = ErrConditionInvalid
		return
	}

	for _, ch := range []byte(text) {
		var flag CondFlag
		for _, cl := range condLetters {
			if cl.letter == ch {
				flag = cl.flag
			}
		}
		if flag == COND_NEVER || cond&flag != 0 {
			err = ErrConditionInvalid
			return
		}
		cond |= flag
	}

	return
}

// flagsOf classifies a result by its sign.
func flagsOf(result int32) CondFlag {
	switch {
	case result < 0:
		return COND_NEGATIVE
	case result == 0:
		return COND_ZERO
	default:
		return COND_POSITIVE
	}
}
