// Package bitfield packs and unpacks sub-fields of a 32-bit word.
//
// Bit 0 is the least significant bit of the word, bit 31 the most
// significant. A field spans Low through High inclusive.
package bitfield

import (
	"errors"
	"log"
)

const (
	WORD_SIZE = 32 // Bits in a word.
)

// Verbose enables logging of sign extension.
var Verbose bool

// BitField is one contiguous field within a word.
type BitField struct {
	low  int
	high int
	mask uint32
}

// New creates the field spanning bits low through high.
func New(low, high int) (bf BitField, err error) {
	if low < 0 || high >= WORD_SIZE || low > high {
		err = ErrRange{Low: low, High: high}
		return
	}

	width := high - low + 1
	bf = BitField{
		low:  low,
		high: high,
		mask: uint32((uint64(1) << width) - 1),
	}

	return
}

// Must is New for field tables known at compile time.
func Must(low, high int) BitField {
	bf, err := New(low, high)
	if err != nil {
		panic(err)
	}
	return bf
}

// Low returns the least significant bit of the field.
func (bf BitField) Low() int {
	return bf.low
}

// High returns the most significant bit of the field.
func (bf BitField) High() int {
	return bf.high
}

// Width returns the number of bits in the field.
func (bf BitField) Width() int {
	return bf.high - bf.low + 1
}

// Mask returns the unshifted all-ones value of the field.
func (bf BitField) Mask() uint32 {
	return bf.mask
}

// Insert places value into the field of word. Bits of value above the
// field width are dropped, and bits of word outside the field are kept.
func (bf BitField) Insert(value uint32, word uint32) uint32 {
	eraser := ^(bf.mask << bf.low)
	return (word & eraser) | ((value & bf.mask) << bf.low)
}

// Extract returns the field of word as an unsigned value.
func (bf BitField) Extract(word uint32) uint32 {
	return (word >> bf.low) & bf.mask
}

// ExtractSigned returns the field of word as a two's complement value.
func (bf BitField) ExtractSigned(word uint32) int32 {
	value := int64(bf.Extract(word))
	width := bf.Width()
	if value&(int64(1)<<(width-1)) != 0 {
		value -= int64(1) << width
	}
	return int32(value)
}

// SignExtend interprets value as a width-bit two's complement number.
// Width must be at least 2, and value must fit in width+1 bits.
func SignExtend(value uint32, width int) (extended int32, err error) {
	if width < 2 || width > WORD_SIZE {
		err = errors.Join(ErrPrecondition, ErrRange{Low: 0, High: width - 1})
		return
	}
	if uint64(value) >= uint64(1)<<(width+1) {
		err = ErrPrecondition
		return
	}

	sign := int64(1) << (width - 1)
	field := int64(value)
	if field&sign == 0 {
		extended = int32(field)
		return
	}

	extended = int32((field & (sign - 1)) - sign)
	if Verbose {
		log.Printf("bitfield: sign extend %#x/%d => %d", value, width, extended)
	}

	return
}
