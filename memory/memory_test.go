package memory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemory(t *testing.T) {
	assert := assert.New(t)

	mem := New(16)
	assert.Equal(16, mem.Size())

	value, err := mem.Get(3)
	assert.NoError(err)
	assert.Equal(uint32(0), value)

	assert.NoError(mem.Put(3, 0xdeadbeef))
	value, err = mem.Get(3)
	assert.NoError(err)
	assert.Equal(uint32(0xdeadbeef), value)

	assert.Contains(mem.String(), "0003: DEAD_BEEF")

	mem.Clear()
	value, _ = mem.Get(3)
	assert.Equal(uint32(0), value)
}

func TestMemory_Range(t *testing.T) {
	assert := assert.New(t)

	mem := New(16)

	for _, address := range []int{-1, 16, 1 << 20} {
		_, err := mem.Get(address)
		assert.ErrorIs(err, ErrAddressRange)
		assert.Equal(ErrAddress(address), err)

		err = mem.Put(address, 1)
		assert.ErrorIs(err, ErrAddressRange)
	}
}

func TestMemory_Hooks(t *testing.T) {
	assert := assert.New(t)

	mem := New(16)

	var written []uint32
	mem.MapRead(15, func(address int) (uint32, error) {
		return uint32(address * 2), nil
	})
	mem.MapWrite(14, func(address int, value uint32) error {
		written = append(written, value)
		return nil
	})

	value, err := mem.Get(15)
	assert.NoError(err)
	assert.Equal(uint32(30), value)

	assert.NoError(mem.Put(14, 42))
	assert.NoError(mem.Put(14, 43))
	assert.Equal([]uint32{42, 43}, written)

	// Writes to a read-only mapping go to storage, and vice versa.
	assert.NoError(mem.Put(15, 7))
	value, _ = mem.Get(15)
	assert.Equal(uint32(30), value)
	value, _ = mem.Get(14)
	assert.Equal(uint32(0), value)

	mem.MapRead(15, nil)
	value, _ = mem.Get(15)
	assert.Equal(uint32(7), value)
}

func TestMemory_HookError(t *testing.T) {
	assert := assert.New(t)

	errHook := errors.New("hook")

	mem := New(4)
	mem.MapRead(1, func(int) (uint32, error) { return 0, errHook })
	mem.MapWrite(2, func(int, uint32) error { return errHook })

	_, err := mem.Get(1)
	assert.ErrorIs(err, errHook)
	assert.ErrorIs(mem.Put(2, 9), errHook)
}

func TestMemory_Load(t *testing.T) {
	assert := assert.New(t)

	mem := New(8)
	written := 0
	mem.MapWrite(1, func(int, uint32) error { written++; return nil })

	assert.NoError(mem.Load(0, []uint32{10, 11, 12}))
	assert.Equal(0, written)

	for n, expected := range []uint32{10, 11, 12, 0} {
		value, err := mem.Get(n)
		assert.NoError(err)
		assert.Equal(expected, value)
	}

	assert.ErrorIs(mem.Load(6, []uint32{1, 2, 3}), ErrAddressRange)
	assert.ErrorIs(mem.Load(-1, []uint32{1}), ErrAddressRange)
	assert.NoError(mem.Load(100, nil))
}
