// Copyright (C) 2025 kayon <kayon.hu@gmail.com>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

//go:build unix

package scanner

import (
	"runtime"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Words is an anonymous private mapping viewed as words, outside the Go heap.
type Words struct {
	data []uintptr
	raw  []byte
}

// NewWords maps at least n words, rounded up to whole pages.
func NewWords(n int) (*Words, error) {
	if n < 1 {
		return nil, errors.Errorf("invalid words count %d", n)
	}
	pageSize := unix.Getpagesize()
	size := n * int(PtrSize)
	size = (size + pageSize - 1) / pageSize * pageSize

	// 匿名私有
	raw, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, errors.Wrap(err, "mmap words")
	}

	w := &Words{
		data: unsafe.Slice((*uintptr)(unsafe.Pointer(&raw[0])), n),
		raw:  raw,
	}

	runtime.SetFinalizer(w, func(obj *Words) {
		if len(obj.raw) > 0 {
			_ = unix.Munmap(obj.raw)
		}
	})

	return w, nil
}

func (w *Words) Data() []uintptr {
	return w.data
}

func (w *Words) Len() int {
	return len(w.data)
}

// Range covers the n words asked for, not the page padding behind them.
func (w *Words) Range() Range {
	return SliceRange(w.data)
}

// PageWords is the number of words in one page of the mapping.
func PageWords() int {
	return unix.Getpagesize() / int(PtrSize)
}

// PageRange covers page i of the mapping.
func (w *Words) PageRange(i int) Range {
	pageSize := uintptr(unix.Getpagesize())
	start := uintptr(unsafe.Pointer(&w.raw[0])) + uintptr(i)*pageSize
	return Range{Start: start, End: start + pageSize}
}

func (w *Words) Pages() int {
	return len(w.raw) / unix.Getpagesize()
}

// Protect changes the protection of page i, e.g. unix.PROT_NONE.
func (w *Words) Protect(i int, prot int) error {
	pageSize := unix.Getpagesize()
	if i < 0 || (i+1)*pageSize > len(w.raw) {
		return errors.Errorf("page %d out of range", i)
	}
	return errors.Wrapf(unix.Mprotect(w.raw[i*pageSize:(i+1)*pageSize], prot), "mprotect page %d", i)
}

func (w *Words) Unmap() error {
	if len(w.raw) == 0 {
		return nil
	}
	err := unix.Munmap(w.raw)
	w.raw = nil
	w.data = nil
	runtime.SetFinalizer(w, nil)
	return errors.Wrap(err, "munmap words")
}
