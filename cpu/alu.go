package cpu

// ALU is the arithmetic-logic unit. It holds no state.
type ALU struct{}

// Exec computes op on two operands, returning the result and the
// condition flags describing its sign. The values wrap at 32 bits.
//
// LOAD and STORE compute the effective address left + right; the memory
// access itself belongs to the CPU.
func (ALU) Exec(op OpCode, left, right int32) (result int32, flags CondFlag, err error) {
	switch op {
	case OP_HALT:
		result = 0
	case OP_LOAD, OP_STORE, OP_ADD:
		result = left + right
	case OP_SUB:
		result = left - right
	case OP_MUL:
		result = left * right
	case OP_DIV:
		if right == 0 {
			err = ErrDivisionByZero
			return
		}
		result = left / right
	case OP_AND:
		result = left & right
	case OP_OR:
		result = left | right
	case OP_XOR:
		result = left ^ right
	case OP_SHL:
		result = left << (uint32(right) & 0x1f)
	case OP_SHR:
		result = left >> (uint32(right) & 0x1f)
	default:
		err = ErrInvalidOpcode
		return
	}

	flags = flagsOf(result)

	return
}
