package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/duckvm/memory"
)

func FuzzDecode(f *testing.F) {
	f.Add(uint32(0))
	f.Add(uint32(0xffffffff))
	f.Add(encode(OP_ADD, COND_ALWAYS, 1, 0, 0, 5))
	f.Add(encode(OP_SUB, COND_POSITIVE, 15, 15, 0, OFFSET_MIN))

	f.Fuzz(func(t *testing.T, word uint32) {
		assert := assert.New(t)

		instr, err := Decode(word)
		if err != nil {
			assert.Equal(Instruction{}, instr)
			return
		}

		assert.NoError(instr.Valid())
		assert.Equal(word&^0x8000_0000, instr.Encode())
	})
}

func FuzzCpu(f *testing.F) {
	for op := range OpCode(OP_COUNT) {
		f.Add(encode(op, COND_ALWAYS, 1, 2, 3, 4), uint8(COND_POSITIVE), int32(7), int32(-9))
		f.Add(encode(op, COND_ZERO, 15, 15, 0, -1), uint8(COND_ZERO), int32(0), int32(0))
	}

	f.Fuzz(func(t *testing.T, word uint32, flags uint8, a int32, b int32) {
		assert := assert.New(t)

		mem := memory.New(16)
		mem.Put(0, word)
		mem.Put(9, 0x1234)

		cp := NewCpu(mem)
		cp.Flags = CondFlag(flags) & COND_ALWAYS
		for n := 1; n < REG_PC; n++ {
			if n%2 == 0 {
				cp.Register.Put(n, a)
			} else {
				cp.Register.Put(n, b)
			}
		}

		before := cp.Register
		flags_before := cp.Flags
		image := mem.String()

		err := cp.Step()
		if err != nil {
			assert.Equal(before, cp.Register)
			assert.Equal(flags_before, cp.Flags)
			assert.Equal(image, mem.String())
			assert.Equal(0, cp.Steps)
			return
		}

		assert.Equal(1, cp.Steps)

		instr, _ := Decode(word)
		executed := flags_before&instr.Cond != COND_NEVER
		if !executed {
			assert.Equal(int32(1), cp.Register.Pc())
			assert.Equal(flags_before, cp.Flags)
			assert.Equal(image, mem.String())
			return
		}

		assert.Equal(instr.Op == OP_HALT, cp.Halted)
		if instr.Target != REG_PC || instr.Op == OP_STORE || instr.Op == OP_HALT {
			assert.Equal(int32(1), cp.Register.Pc())
		}
	})
}
