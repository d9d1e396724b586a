package memory

import (
	"errors"

	"github.com/ezrec/duckvm/translate"
)

var f = translate.From

var (
	ErrAddressRange = errors.New(f("address out of range"))
)

// ErrAddress locates an access outside of memory.
type ErrAddress int

func (err ErrAddress) Error() string {
	return f("address %d out of range", int(err))
}

func (err ErrAddress) Unwrap() error {
	return ErrAddressRange
}
