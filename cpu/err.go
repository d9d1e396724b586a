package cpu

import (
	"errors"

	"github.com/ezrec/duckvm/memory"
	"github.com/ezrec/duckvm/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrInvalidOpcode    = errors.New(f("invalid opcode"))
	ErrInvalidCondition = errors.New(f("invalid condition"))
	ErrDivisionByZero   = errors.New(f("division by zero"))
	ErrAddressRange     = memory.ErrAddressRange
	ErrHalted           = errors.New(f("cpu halted"))
	ErrStepLimit        = errors.New(f("step limit reached"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrLabelInvalid       = errors.New(f("label invalid"))
	ErrOpcodeInvalid      = errors.New(f("opcode invalid"))
	ErrConditionInvalid   = errors.New(f("condition invalid"))
	ErrRegisterInvalid    = errors.New(f("register invalid"))
	ErrOperandSyntax      = errors.New(f("operand syntax"))
	ErrOperandMissing     = errors.New(f("operand missing"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOffsetRange        = errors.New(f("offset out of range"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))

	// Object file errors
	ErrObjectSyntax = errors.New(f("object syntax"))
)

// ErrDecode reports the word that failed to decode.
type ErrDecode uint32

func (ed ErrDecode) Error() string {
	return f("bad instruction 0x%08x", uint32(ed))
}

func (ed ErrDecode) Is(err error) (ok bool) {
	_, ok = err.(ErrDecode)
	return
}

// ErrRegister reports an access to a register that does not exist.
type ErrRegister int

func (er ErrRegister) Error() string {
	return f("register %d out of range", int(er))
}

func (er ErrRegister) Unwrap() error {
	return ErrAddressRange
}

// ErrStep reports the program counter of a failed step.
type ErrStep struct {
	Pc  int
	Err error
}

func (err *ErrStep) Error() string {
	return f("pc %d %v", err.Pc, err.Err)
}

func (err *ErrStep) Unwrap() error {
	return err.Err
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
