// Package heap allocates reference counted objects outside the Go heap.
//
// An object is a fixed header holding its reference count, followed by
// pointer sized payload words. A payload word may hold the address of another
// object. Objects never move, so an object is identified by its address.
package heap

import (
	"sync/atomic"
	"unsafe"
)

const objectMagic = 0x6265636f

type header struct {
	magic uint32
	words uint32
	refs  int64
}

const (
	wordSize    = unsafe.Sizeof(uintptr(0))
	headerWords = (unsafe.Sizeof(header{}) + wordSize - 1) / wordSize
)

// Object is the header of an allocated object. Only pointers handed out by an
// Arena are valid.
type Object struct {
	header
}

func (o *Object) Addr() uintptr {
	return uintptr(unsafe.Pointer(o))
}

// Live reports whether o is an allocated object. It is safe on nil.
func (o *Object) Live() bool {
	return o != nil && atomic.LoadUint32(&o.magic) == objectMagic
}

func (o *Object) Refs() int64 {
	return atomic.LoadInt64(&o.refs)
}

// Retain adds n references.
func (o *Object) Retain(n int) {
	atomic.AddInt64(&o.refs, int64(n))
}

func (o *Object) release() int64 {
	return atomic.AddInt64(&o.refs, -1)
}

// Len is the number of payload words.
func (o *Object) Len() int {
	return int(o.words)
}

func (o *Object) payload() []uintptr {
	base := unsafe.Add(unsafe.Pointer(o), headerWords*wordSize)
	return unsafe.Slice((*uintptr)(base), o.words)
}

func (o *Object) Word(i int) uintptr {
	return o.payload()[i]
}

func (o *Object) SetWord(i int, v uintptr) {
	o.payload()[i] = v
}

// Field returns the object referenced by word i, or nil.
func (o *Object) Field(i int) *Object {
	addr := o.payload()[i]
	if addr == 0 {
		return nil
	}
	return (*Object)(unsafe.Pointer(addr))
}

// SetField stores a reference to v in word i and retains v. The previous
// referent, if any, is returned without being released.
func (o *Object) SetField(i int, v *Object) (prev *Object) {
	prev = o.Field(i)
	if v != nil {
		v.Retain(1)
		o.payload()[i] = v.Addr()
	} else {
		o.payload()[i] = 0
	}
	return prev
}

// Range returns the [start, end) addresses of the object's storage.
func (o *Object) Range() (start, end uintptr) {
	start = o.Addr()
	return start, start + (headerWords+uintptr(o.words))*wordSize
}
