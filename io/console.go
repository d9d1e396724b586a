package io

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"maps"
	"strconv"
)

// Console provides decimal integer I/O for the Duck Machine. Each read
// consumes the next whitespace separated integer from Input; each write
// prints one signed decimal integer per line to Output.
type Console struct {
	Input  io.Reader
	Output io.Writer
	Prompt string // Printed before each value written.

	scanner *bufio.Scanner
	input   io.Reader
}

var _ Device = (*Console)(nil)

// Defines returns an iter of defines for the console.
func (con *Console) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{})
}

// Rewind discards any buffered input.
func (con *Console) Rewind() {
	con.scanner = nil
	con.input = nil
}

// Read returns the next integer from the console input.
func (con *Console) Read(address int) (value uint32, err error) {
	if con.Input == nil {
		err = ErrConsoleInput
		return
	}

	if con.scanner == nil || con.input != con.Input {
		con.scanner = bufio.NewScanner(con.Input)
		con.scanner.Split(bufio.ScanWords)
		con.input = con.Input
	}

	if !con.scanner.Scan() {
		err = con.scanner.Err()
		if err != nil {
			err = errors.Join(ErrConsoleInput, err)
		} else {
			err = errors.Join(ErrConsoleInput, io.EOF)
		}
		return
	}

	word := con.scanner.Text()
	number, err := strconv.ParseInt(word, 10, 32)
	if err != nil {
		err = ErrConsoleValue(word)
		return
	}

	value = uint32(int32(number))
	return
}

// Write prints a signed integer to the console output.
func (con *Console) Write(address int, value uint32) (err error) {
	if con.Output == nil {
		err = ErrConsoleOutput
		return
	}

	_, err = fmt.Fprintf(con.Output, "%v%d\n", con.Prompt, int32(value))
	if err != nil {
		err = errors.Join(ErrConsoleOutput, err)
	}

	return
}
