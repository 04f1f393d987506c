package scanner

import (
	"unsafe"

	"github.com/pkg/errors"
)

var ErrInvalidRange = errors.New("invalid scan range")

// Cursor walks the aligned words of a Range. The bounds are checked once by
// NewCursor, Load and Store do not check them again.
type Cursor struct {
	addr uintptr
	end  uintptr
}

// NewCursor rounds the start of r up to word alignment and drops a trailing
// partial word, so no byte at or past r.End is ever touched.
func NewCursor(r Range) (*Cursor, error) {
	if !r.Valid() {
		return nil, errors.Wrapf(ErrInvalidRange, "%08X-%08X", r.Start, r.End)
	}
	start := (r.Start + PtrSize - 1) &^ (PtrSize - 1)
	if start < r.Start || start >= r.End {
		// overflowed, or not a single aligned word inside
		return &Cursor{addr: r.End, end: r.End}, nil
	}
	words := (r.End - start) / PtrSize
	return &Cursor{addr: start, end: start + words*PtrSize}, nil
}

func (c *Cursor) Valid() bool {
	return c.addr < c.end
}

func (c *Cursor) Advance() {
	c.addr += PtrSize
}

func (c *Cursor) Addr() uintptr {
	return c.addr
}

// Remaining is the number of words left, including the current one.
func (c *Cursor) Remaining() int {
	if c.addr >= c.end {
		return 0
	}
	return int((c.end - c.addr) / PtrSize)
}

// Skip moves the cursor past the end.
func (c *Cursor) Skip() {
	c.addr = c.end
}

func (c *Cursor) Load() uintptr {
	return *(*uintptr)(unsafe.Pointer(c.addr))
}

func (c *Cursor) Store(v uintptr) {
	*(*uintptr)(unsafe.Pointer(c.addr)) = v
}
