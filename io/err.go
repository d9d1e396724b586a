package io

import (
	"errors"

	"github.com/ezrec/duckvm/translate"
)

var f = translate.From

var (
	// Console errors
	ErrConsoleInput  = errors.New(f("console input"))
	ErrConsoleOutput = errors.New(f("console output"))
)

// ErrConsoleValue reports console input that is not a 32-bit integer.
type ErrConsoleValue string

func (err ErrConsoleValue) Error() string {
	return f("console value '%v' is not an integer", string(err))
}

func (err ErrConsoleValue) Unwrap() error {
	return ErrConsoleInput
}
