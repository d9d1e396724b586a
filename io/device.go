// Package io provides memory-mapped devices for the Duck Machine emulator.
// A device is bound to one or more memory addresses; reads and writes of
// those addresses are routed to the device instead of to storage.
package io

import (
	"iter"
)

// Device defines the interface for all memory-mapped devices.
type Device interface {
	// Rewind resets the device to its initial state.
	Rewind()
	// Read returns the next word from the device at address.
	Read(address int) (uint32, error)
	// Write sends a word to the device at address.
	Write(address int, value uint32) error
	// Defines returns assembler equates for the device.
	Defines() iter.Seq2[string, string]
}
