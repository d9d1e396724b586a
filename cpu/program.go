package cpu

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"
)

// Opcode is one assembled word with its source location.
type Opcode struct {
	LineNo       int      // Source line number.
	Address      int      // Memory address of the word.
	Words        []string // Source words.
	Code         uint32   // Assembled word.
	LinkLabel    string   // Label to resolve into the word at link time.
	LinkRelative bool     // Resolve LinkLabel relative to Address.
	Raw          bool     // Code is data, not an instruction.
}

// Program is an assembled program image, loaded at address 0.
type Program struct {
	Opcodes []Opcode
}

// Words iterates over the address and word of every opcode.
func (prog *Program) Words() iter.Seq2[int, uint32] {
	return func(yield func(address int, word uint32) bool) {
		for _, op := range prog.Opcodes {
			if !yield(op.Address, op.Code) {
				return
			}
		}
	}
}

// Binary returns the memory image of the program.
func (prog *Program) Binary() (bins []uint32) {
	for address, word := range prog.Words() {
		for len(bins) <= address {
			bins = append(bins, 0)
		}
		bins[address] = word
	}

	return
}

// Lookup returns the opcode at address, or nil.
func (prog *Program) Lookup(address int) *Opcode {
	for n, op := range prog.Opcodes {
		if op.Address == address {
			return &prog.Opcodes[n]
		}
	}
	return nil
}

// LineNo returns the source line of the word at address, or 0.
func (prog *Program) LineNo(address int) int {
	op := prog.Lookup(address)
	if op == nil {
		return 0
	}
	return op.LineNo
}

// WriteObject writes the program as an object file: one signed decimal
// word per line.
func (prog *Program) WriteObject(w io.Writer) (err error) {
	bw := bufio.NewWriter(w)
	for _, word := range prog.Binary() {
		_, err = fmt.Fprintf(bw, "%d\n", int32(word))
		if err != nil {
			return
		}
	}
	err = bw.Flush()
	return
}

// WriteListing writes address, word, and disassembly for each opcode.
func (prog *Program) WriteListing(w io.Writer) (err error) {
	for _, op := range prog.Opcodes {
		text := fmt.Sprintf("DATA %d", int32(op.Code))
		if !op.Raw {
			instr, decode_err := Decode(op.Code)
			if decode_err == nil {
				text = instr.String()
			}
		}
		_, err = fmt.Fprintf(w, "%04d: %08x  %-24v ; line %d\n", op.Address, op.Code, text, op.LineNo)
		if err != nil {
			return
		}
	}
	return
}

// ReadObject reads an object file written by WriteObject. Blank lines
// and lines starting with '#' are ignored.
func ReadObject(r io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(r)

	var lineno int
	var line string

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	prog = &Program{}
	for scanner.Scan() {
		lineno++
		line = strings.TrimSpace(scanner.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		var value int64
		value, err = strconv.ParseInt(line, 0, 64)
		if err != nil || value < -(1<<31) || value >= (1<<32) {
			err = ErrObjectSyntax
			return
		}

		op := Opcode{
			LineNo:  lineno,
			Address: len(prog.Opcodes),
			Words:   []string{line},
			Code:    uint32(value),
		}
		_, decode_err := Decode(op.Code)
		op.Raw = decode_err != nil
		prog.Opcodes = append(prog.Opcodes, op)
	}

	line = ""
	err = scanner.Err()

	return
}
