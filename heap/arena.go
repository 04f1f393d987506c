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

package heap

import (
	"math"
	"sync"
	"unsafe"

	"github.com/pboyd/malloc"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var (
	ErrNotAllocated = errors.New("object was not allocated by this arena")
	ErrTooLarge     = errors.New("object too large")
)

// Arena hands out objects from anonymous read/write mappings.
//
// Each block starts with one word holding its length, the object header
// follows it. So the allocator's own bookkeeping, which refers to blocks,
// never holds a word equal to an object address.
type Arena struct {
	*malloc.Arena
	mu sync.Mutex
	// keys are complemented addresses, a scan rewriting an object address
	// never touches this index
	objects map[uintptr]struct{}
}

func NewArena(size uint64) (*Arena, error) {
	// the backend maps read/write, objects never need exec
	a := malloc.NewArena(size, malloc.Backend(malloc.MmapBackend()))
	if a == nil {
		return nil, errors.New("unable to initialize arena")
	}
	log.WithFields(log.Fields{"size": size}).Debug("heap arena created")
	return &Arena{
		Arena:   a,
		objects: make(map[uintptr]struct{}),
	}, nil
}

// New allocates an object with words zeroed payload words and one reference.
func (a *Arena) New(words int) (*Object, error) {
	if words < 0 || uint64(words) > math.MaxUint32 {
		return nil, errors.Wrapf(ErrTooLarge, "%d words", words)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	block, err := malloc.MallocSlice[uintptr](a.Arena, 1+int(headerWords)+words)
	if err != nil {
		return nil, errors.Wrap(err, "allocate object")
	}
	clear(block)
	block[0] = uintptr(len(block))

	o := (*Object)(unsafe.Pointer(&block[1]))
	o.words = uint32(words)
	o.refs = 1
	o.magic = objectMagic

	a.objects[^o.Addr()] = struct{}{}
	return o, nil
}

// Owns reports whether o is a live object of this arena.
func (a *Arena) Owns(o *Object) bool {
	if o == nil {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.objects[^o.Addr()]
	return ok
}

// Lookup returns the live object of this arena at addr, or nil.
func (a *Arena) Lookup(addr uintptr) *Object {
	if addr == 0 {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.objects[^addr]; !ok {
		return nil
	}
	return (*Object)(unsafe.Pointer(addr))
}

// Len is the number of live objects.
func (a *Arena) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.objects)
}

// Release drops one reference to o. When the last one goes, every payload
// word that refers to a live object of this arena is released and o is freed.
// It reports whether o was freed.
func (a *Arena) Release(o *Object) (bool, error) {
	if !a.Owns(o) {
		return false, errors.WithStack(ErrNotAllocated)
	}
	if o.release() > 0 {
		return false, nil
	}

	refs := make([]*Object, 0, o.Len())
	a.mu.Lock()
	for _, addr := range o.payload() {
		if _, ok := a.objects[^addr]; ok && addr != o.Addr() {
			refs = append(refs, (*Object)(unsafe.Pointer(addr)))
		}
	}
	a.free(o)
	a.mu.Unlock()

	for _, ref := range refs {
		if _, err := a.Release(ref); err != nil && !errors.Is(err, ErrNotAllocated) {
			return true, err
		}
	}
	return true, nil
}

func (a *Arena) free(o *Object) {
	delete(a.objects, ^o.Addr())
	o.magic = 0

	base := unsafe.Add(unsafe.Pointer(o), -int(wordSize))
	block := unsafe.Slice((*uintptr)(base), *(*uintptr)(base))
	malloc.FreeSlice(a.Arena, block)
}
