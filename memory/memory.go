// Package memory implements the word-addressed store of the Duck Machine.
//
// Individual addresses may be bound to read or write hooks, which are
// consulted instead of the backing store. This is how console input and
// output are attached without any I/O opcodes.
package memory

import (
	"fmt"
	"log"
	"strings"
)

const (
	DEFAULT_SIZE = 1024 // Default memory size, in words.
)

// ReadHook supplies the value of a mapped address.
type ReadHook func(address int) (value uint32, err error)

// WriteHook receives a value written to a mapped address.
type WriteHook func(address int, value uint32) (err error)

// Memory is a word-addressed store with memory-mapped hooks.
type Memory struct {
	Verbose bool // Set to log hooked accesses.

	data  []uint32
	read  map[int]ReadHook
	write map[int]WriteHook
}

// New creates a zeroed memory of size words.
func New(size int) (mem *Memory) {
	mem = &Memory{
		data:  make([]uint32, size),
		read:  map[int]ReadHook{},
		write: map[int]WriteHook{},
	}

	return
}

// Size returns the number of words in memory.
func (mem *Memory) Size() int {
	return len(mem.data)
}

// MapRead binds a read hook to address. A nil hook removes the binding.
func (mem *Memory) MapRead(address int, hook ReadHook) {
	if hook == nil {
		delete(mem.read, address)
		return
	}
	mem.read[address] = hook
}

// MapWrite binds a write hook to address. A nil hook removes the binding.
func (mem *Memory) MapWrite(address int, hook WriteHook) {
	if hook == nil {
		delete(mem.write, address)
		return
	}
	mem.write[address] = hook
}

func (mem *Memory) check(address int) (err error) {
	if address < 0 || address >= len(mem.data) {
		err = ErrAddress(address)
	}
	return
}

// Get reads the word at address.
func (mem *Memory) Get(address int) (value uint32, err error) {
	err = mem.check(address)
	if err != nil {
		return
	}

	hook, ok := mem.read[address]
	if ok {
		value, err = hook(address)
		if mem.Verbose {
			log.Printf("memory: read hook %d => %d (%v)", address, int32(value), err)
		}
		return
	}

	value = mem.data[address]
	return
}

// Put writes value to the word at address.
func (mem *Memory) Put(address int, value uint32) (err error) {
	err = mem.check(address)
	if err != nil {
		return
	}

	hook, ok := mem.write[address]
	if ok {
		if mem.Verbose {
			log.Printf("memory: write hook %d <= %d", address, int32(value))
		}
		err = hook(address, value)
		return
	}

	mem.data[address] = value
	return
}

// Load copies words into storage starting at base, bypassing hooks.
func (mem *Memory) Load(base int, words []uint32) (err error) {
	if len(words) == 0 {
		return
	}

	err = mem.check(base)
	if err != nil {
		return
	}
	err = mem.check(base + len(words) - 1)
	if err != nil {
		return
	}

	copy(mem.data[base:], words)

	return
}

// Clear zeroes storage. Hooks are left bound.
func (mem *Memory) Clear() {
	clear(mem.data)
}

// String dumps the non-zero words of storage.
func (mem *Memory) String() string {
	var text strings.Builder
	for address, value := range mem.data {
		if value == 0 {
			continue
		}
		fmt.Fprintf(&text, "%04d: %04X_%04X %d\n", address, value>>16, value&0xffff, int32(value))
	}
	return text.String()
}
