package scanner

import (
	"fmt"
	"unsafe"
)

// PtrSize is the width of one scanned word.
const PtrSize = unsafe.Sizeof(uintptr(0))

// Range is the half open address interval [Start, End).
type Range struct {
	Start uintptr
	End   uintptr
}

func (r Range) Size() uintptr {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

func (r Range) Valid() bool {
	return r.Start <= r.End
}

func (r Range) String() string {
	return fmt.Sprintf("%08X-%08X %d", r.Start, r.End, r.Size())
}

// SliceRange returns the range covering words. The caller keeps words alive
// for as long as the range is used.
func SliceRange(words []uintptr) Range {
	if len(words) == 0 {
		return Range{}
	}
	start := uintptr(unsafe.Pointer(unsafe.SliceData(words)))
	return Range{Start: start, End: start + uintptr(len(words))*PtrSize}
}
