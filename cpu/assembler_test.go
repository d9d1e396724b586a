package cpu

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/duckvm/memory"
)

func assemble(t *testing.T, program ...string) *Program {
	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	require.NoError(t, err)
	return prog
}

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Opcodes))

	assert.Equal("0", asm.Equate["LINENO"])
	assert.Equal("-512", asm.Equate["OFFSET_MIN"])
	assert.Equal("511", asm.Equate["OFFSET_MAX"])
}

func TestAssembler_Instructions(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		line     string
		expected uint32
	}){
		{"ADD r1,r0,r0[5]", encode(OP_ADD, COND_ALWAYS, 1, 0, 0, 5)},
		{"add r1, r0, r0 [5]", encode(OP_ADD, COND_ALWAYS, 1, 0, 0, 5)},
		{"ADD r1,r0,r0", encode(OP_ADD, COND_ALWAYS, 1, 0, 0, 0)},
		{"HALT", encode(OP_HALT, COND_ALWAYS, 0, 0, 0, 0)},
		{"HALT r0,r0,r0", encode(OP_HALT, COND_ALWAYS, 0, 0, 0, 0)},
		{"SUB/P pc,pc,zero[-3]", encode(OP_SUB, COND_POSITIVE, 15, 15, 0, -3)},
		{"LOAD/ZM r2,r3,r4[0x10]", encode(OP_LOAD, COND_NEGATIVE|COND_ZERO, 2, 3, 4, 16)},
		{"STORE/NEVER r1,r0,r0[511]", encode(OP_STORE, COND_NEVER, 1, 0, 0, 511)},
		{"MUL/ALWAYS r3,r3,r3[-512]", encode(OP_MUL, COND_ALWAYS, 3, 3, 3, -512)},
		{"SHR r14,r13,r12[$(2*3+1)]", encode(OP_SHR, COND_ALWAYS, 14, 13, 12, 7)},
		{"DATA 42", 42},
		{"DATA -1", 0xffffffff},
		{"DATA 0xffffffff", 0xffffffff},
		{"JUMP/Z 0", encode(OP_ADD, COND_ZERO, 15, 15, 0, 0)},
	}

	for _, entry := range table {
		prog := assemble(t, entry.line)
		if assert.Equal(1, len(prog.Opcodes), entry.line) {
			assert.Equal(entry.expected, prog.Opcodes[0].Code, entry.line)
			assert.Equal(1, prog.Opcodes[0].LineNo, entry.line)
			assert.Equal(0, prog.Opcodes[0].Address, entry.line)
		}
	}
}

func TestAssembler_RoundTrip(t *testing.T) {
	assert := assert.New(t)

	for op := range OpCode(OP_COUNT) {
		for cond := COND_NEVER; cond <= COND_ALWAYS; cond++ {
			instr := Instruction{Op: op, Cond: cond, Target: Reg(op), Src1: Reg(cond), Src2: 15, Offset: int32(op) - 6}
			prog := assemble(t, instr.String())
			decoded, err := Decode(prog.Opcodes[0].Code)
			assert.NoError(err)
			assert.Equal(instr, decoded, instr.String())
		}
	}
}

func TestAssembler_Labels(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		"# count down",
		"start:  LOAD r1,r0,r0[count]   ; forward label",
		"loop:   SUB  r1,r1,r0[1]",
		"        JUMP/P loop",
		"        STORE r1,r0,r0[result]",
		"        JUMP/P done",
		"        HALT",
		"done:",
		"        HALT",
		"count:  DATA 3",
		"result: DATA start",
		"ptr:    DATA result",
	)

	assert.Equal(10, len(prog.Opcodes))
	assert.Equal(encode(OP_LOAD, COND_ALWAYS, 1, 0, 0, 7), prog.Opcodes[0].Code)
	assert.Equal(encode(OP_ADD, COND_POSITIVE, 15, 15, 0, -1), prog.Opcodes[2].Code)
	assert.Equal(encode(OP_STORE, COND_ALWAYS, 1, 0, 0, 8), prog.Opcodes[3].Code)
	assert.Equal(encode(OP_ADD, COND_POSITIVE, 15, 15, 0, 2), prog.Opcodes[4].Code)
	assert.Equal(uint32(3), prog.Opcodes[7].Code)
	assert.Equal(uint32(0), prog.Opcodes[8].Code)
	assert.Equal(uint32(8), prog.Opcodes[9].Code)
	assert.Equal(2, prog.LineNo(0))
	assert.Equal(9, prog.LineNo(6))

	mem := memory.New(32)
	assert.NoError(mem.Load(0, prog.Binary()))
	cp := NewCpu(mem)
	assert.NoError(cp.Run(0))
	value, _ := mem.Get(8)
	assert.Equal(uint32(0), value)
	assert.Equal(int32(7), cp.Register.Pc())
}

func TestAssembler_Equates(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("CONSOLE_OUT", "510")
	asm.Predefine("ACC", "r3")

	program := []string{
		".equ ONE 1",
		".equ TWICE $(ONE*2)",
		"ADD ACC,r0,r0[TWICE]",
		"STORE ACC,r0,r0[CONSOLE_OUT]",
		"ADD r1,r0,r0[$(HERE)]",
		"ADD r2,r0,r0[$(LINENO)]",
		"ADD r4,r0,r0[$(CONSOLE_OUT - 500)]",
		"DATA $(ONE << 20)",
	}
	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)

	assert.Equal(encode(OP_ADD, COND_ALWAYS, 3, 0, 0, 2), prog.Opcodes[0].Code)
	assert.Equal(encode(OP_STORE, COND_ALWAYS, 3, 0, 0, 510), prog.Opcodes[1].Code)
	assert.Equal(encode(OP_ADD, COND_ALWAYS, 1, 0, 0, 2), prog.Opcodes[2].Code)
	assert.Equal(encode(OP_ADD, COND_ALWAYS, 2, 0, 0, 6), prog.Opcodes[3].Code)
	assert.Equal(encode(OP_ADD, COND_ALWAYS, 4, 0, 0, 10), prog.Opcodes[4].Code)
	assert.Equal(uint32(1<<20), prog.Opcodes[5].Code)
}

func TestAssembler_Errors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		program []string
		lineno  int
		err     error
	}){
		{[]string{"QUACK r1,r0,r0"}, 1, ErrOpcodeInvalid},
		{[]string{"ADD/Q r1,r0,r0"}, 1, ErrConditionInvalid},
		{[]string{"ADD r16,r0,r0"}, 1, ErrRegisterInvalid},
		{[]string{"ADD x1,r0,r0"}, 1, ErrRegisterInvalid},
		{[]string{"ADD r1,r0"}, 1, ErrOperandSyntax},
		{[]string{"ADD r1,r0,r0[512]"}, 1, ErrOffsetRange},
		{[]string{"ADD r1,r0,r0[-513]"}, 1, ErrOffsetRange},
		{[]string{"ADD r1,r0,r0[12abc]"}, 1, ErrParseNumber("12abc")},
		{[]string{"", "ADD r1,r0,r0[nowhere]"}, 2, ErrLabelMissing("nowhere")},
		{[]string{"JUMP nowhere"}, 1, ErrLabelMissing("nowhere")},
		{[]string{"JUMP"}, 1, ErrOperandMissing},
		{[]string{"JUMP a b"}, 1, ErrOpcodeExtraArgs},
		{[]string{"DATA"}, 1, ErrOperandMissing},
		{[]string{"DATA 1 2"}, 1, ErrOpcodeExtraArgs},
		{[]string{"DATA/Z 1"}, 1, ErrConditionInvalid},
		{[]string{"DATA 0x100000000"}, 1, ErrParseNumber("0x100000000")},
		{[]string{"a: HALT", "a: HALT"}, 2, ErrLabelDuplicate},
		{[]string{"9a: HALT"}, 1, ErrLabelInvalid},
		{[]string{".equ A 1", ".equ A 2"}, 2, ErrEquateDuplicate},
		{[]string{".equ A"}, 1, ErrEquateSyntax},
		{[]string{"ADD r1,r0,r0[$(1 +)]"}, 1, ErrParseExpression("1 +")},
		{[]string{"ADD r1,r0,r0[$('duck')]"}, 1, ErrParseExpression("'duck'")},
	}

	for _, entry := range table {
		asm := &Assembler{}
		_, err := asm.Parse(strings.NewReader(strings.Join(entry.program, "\n")))
		assert.ErrorIs(err, entry.err, entry.program)

		var syntax_err *ErrSyntax
		if assert.True(errors.As(err, &syntax_err), entry.program) {
			assert.Equal(entry.lineno, syntax_err.LineNo, entry.program)
		}
	}
}

func TestAssembler_FarJump(t *testing.T) {
	assert := assert.New(t)

	program := []string{"JUMP far"}
	for range 600 {
		program = append(program, "HALT")
	}
	program = append(program, "far: HALT")

	asm := &Assembler{}
	_, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.ErrorIs(err, ErrOffsetRange)
}
