package bitfield

import (
	"errors"

	"github.com/ezrec/duckvm/translate"
)

var f = translate.From

var (
	ErrPrecondition = errors.New(f("precondition violated"))
)

// ErrRange reports a bit range that cannot describe a field of a word.
type ErrRange struct {
	Low  int
	High int
}

func (err ErrRange) Error() string {
	return f("bit range %d..%d invalid", err.Low, err.High)
}

func (err ErrRange) Unwrap() error {
	return ErrPrecondition
}
