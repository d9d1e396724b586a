// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":     "0",
	"HERE":       "0",
	"OFFSET_MIN": fmt.Sprintf("%d", OFFSET_MIN),
	"OFFSET_MAX": fmt.Sprintf("%d", OFFSET_MAX),
}

var (
	reIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	reParen      = regexp.MustCompile(`\$\([^\$]*\)`)
	reOperands   = regexp.MustCompile(`^([^,\[\]]+),([^,\[\]]+),([^,\[\]]+)(?:\[([^\[\]]*)\])?$`)
)

// Assembler is a single pass assembler for Duck Machine assembly.
//
// Each line is either empty, an equate, or an optionally labelled
// instruction:
//
//	.equ NAME VALUE
//	label: OP[/COND] target,src1,src2[offset]
//	label: DATA value
//	label: JUMP[/COND] label
//
// Comments start with '#' or ';'. Offsets and values may be numbers,
// equates, labels, or $(...) expressions.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string // Predefines
	Label     map[string]int    // Map of labels to addresses.
	Equate    map[string]string // Map of equates.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// regMap maps register aliases to registers.
var regMap = map[string]Reg{
	"zero": REG_ZERO,
	"pc":   REG_PC,
}

// register parses a register name.
func (asm *Assembler) register(word string) (reg Reg, err error) {
	word = strings.TrimSpace(word)

	equate, ok := asm.Equate[word]
	if ok {
		word = equate
	}
	word = strings.ToLower(word)

	reg, ok = regMap[word]
	if ok {
		return
	}

	if len(word) < 2 || word[0] != 'r' {
		err = ErrRegisterInvalid
		return
	}
	index, err := strconv.ParseUint(word[1:], 10, 8)
	if err != nil || index >= REGISTER_COUNT {
		err = ErrRegisterInvalid
		return
	}

	reg = Reg(index)
	return
}

// valueOf returns the value of a simple word. An unknown identifier is
// returned as label, to be resolved at link time.
func (asm *Assembler) valueOf(word string) (value int64, label string, err error) {
	equate, ok := asm.Equate[word]
	if ok {
		word = equate
	}

	address, ok := asm.Label[word]
	if ok {
		value = int64(address)
		return
	}

	value, err = strconv.ParseInt(word, 0, 64)
	if err == nil {
		return
	}
	err = nil

	if reIdentifier.MatchString(word) {
		label = word
		return
	}

	err = ErrParseNumber(word)
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var v int64
		var label string
		v, label, err = asm.valueOf(str)
		if err != nil || len(label) != 0 {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt64(v)
	}
	for key, address := range asm.Label {
		pred[key] = starlark.MakeInt(address)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = errors.Join(ErrParseExpression(expr), err)
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// parseLine parses a single line into words, handling equates and labels.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	here := asm.currentAddress()
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)
	asm.Equate["HERE"] = fmt.Sprintf("%v", here)

	// Do $() evaluations
	line = reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	words = strings.Fields(line)
	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 || !reIdentifier.MatchString(words[1]) {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for len(words) > 0 && strings.HasSuffix(words[0], ":") {
		label := strings.TrimSuffix(words[0], ":")
		if !reIdentifier.MatchString(label) {
			err = ErrLabelInvalid
			return
		}
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}
		asm.Label[label] = here
		words = words[1:]
	}

	return
}

// currentAddress gets the address of the next opcode.
func (asm *Assembler) currentAddress() int {
	if len(asm.Opcode) == 0 {
		return 0
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Address + 1
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Label = make(map[string]int, 16)
	asm.Opcode = asm.Opcode[:0]
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		if n := strings.IndexAny(text, "#;"); n >= 0 {
			text = text[:n]
		}
		line = strings.TrimSpace(text)

		var words []string
		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}
	err = scanner.Err()
	if err != nil {
		return
	}

	// Final linking of labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}

		err = asm.link(op)
		if err != nil {
			lineno = op.LineNo
			line = strings.Join(op.Words, " ")
			return
		}
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// link resolves the label of an opcode into its word.
func (asm *Assembler) link(op *Opcode) (err error) {
	address, ok := asm.Label[op.LinkLabel]
	if !ok {
		err = ErrLabelMissing(op.LinkLabel)
		return
	}

	if op.Raw {
		op.Code = uint32(int32(address))
		return
	}

	offset := int64(address)
	if op.LinkRelative {
		offset -= int64(op.Address)
	}
	if offset < OFFSET_MIN || offset > OFFSET_MAX {
		err = ErrOffsetRange
		return
	}

	op.Code = fieldOffset.Insert(uint32(offset), op.Code)

	if asm.Verbose {
		log.Printf("link: %v => %d at %d", op.LinkLabel, offset, op.Address)
	}

	return
}

// parseOffset parses an offset expression, possibly a forward label.
func (asm *Assembler) parseOffset(word string) (offset int32, label string, err error) {
	if len(word) == 0 {
		return
	}

	value, label, err := asm.valueOf(word)
	if err != nil || len(label) != 0 {
		return
	}

	if value < OFFSET_MIN || value > OFFSET_MAX {
		err = ErrOffsetRange
		return
	}

	offset = int32(value)
	return
}

// parseOperands parses "target,src1,src2[offset]". No operands at all
// means r0,r0,r0[0].
func (asm *Assembler) parseOperands(text string) (target, src1, src2 Reg, offset int32, label string, err error) {
	if len(text) == 0 {
		return
	}

	match := reOperands.FindStringSubmatch(text)
	if match == nil {
		err = ErrOperandSyntax
		return
	}

	regs := [3](*Reg){&target, &src1, &src2}
	for n, reg := range regs {
		*reg, err = asm.register(match[1+n])
		if err != nil {
			return
		}
	}

	offset, label, err = asm.parseOffset(strings.TrimSpace(match[4]))

	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	// no-op
	if len(words) == 0 {
		return
	}

	op := Opcode{
		LineNo:  lineno,
		Address: asm.currentAddress(),
		Words:   words,
	}

	mnemonic, cond_text, has_cond := strings.Cut(strings.ToUpper(words[0]), "/")
	cond := COND_ALWAYS
	if has_cond {
		cond, err = ParseCond(cond_text)
		if err != nil {
			return
		}
	}
	operands := strings.Join(words[1:], "")

	instr := Instruction{Cond: cond}

	switch mnemonic {
	case "DATA":
		if has_cond {
			err = ErrConditionInvalid
			return
		}
		if len(words) < 2 {
			err = ErrOperandMissing
			return
		}
		if len(words) > 2 {
			err = ErrOpcodeExtraArgs
			return
		}
		var value int64
		value, op.LinkLabel, err = asm.valueOf(words[1])
		if err != nil {
			return
		}
		if value < -(1<<31) || value >= (1<<32) {
			err = ErrParseNumber(words[1])
			return
		}
		op.Code = uint32(value)
		op.Raw = true
	case "JUMP":
		// JUMP target => ADD r15,r15,r0[target-HERE]
		if len(words) < 2 {
			err = ErrOperandMissing
			return
		}
		if len(words) > 2 {
			err = ErrOpcodeExtraArgs
			return
		}
		var value int64
		value, op.LinkLabel, err = asm.valueOf(words[1])
		if err != nil {
			return
		}
		instr.Op = OP_ADD
		instr.Target = REG_PC
		instr.Src1 = REG_PC
		instr.Src2 = REG_ZERO
		op.LinkRelative = true
		if len(op.LinkLabel) == 0 {
			value -= int64(op.Address)
			if value < OFFSET_MIN || value > OFFSET_MAX {
				err = ErrOffsetRange
				return
			}
			instr.Offset = int32(value)
		}
		op.Code = instr.Encode()
	default:
		var ok bool
		instr.Op, ok = opMap[mnemonic]
		if !ok {
			err = ErrOpcodeInvalid
			return
		}
		instr.Target, instr.Src1, instr.Src2, instr.Offset, op.LinkLabel, err = asm.parseOperands(operands)
		if err != nil {
			return
		}
		err = instr.Valid()
		if err != nil {
			return
		}
		op.Code = instr.Encode()
	}

	asm.Opcode = append(asm.Opcode, op)

	return
}
