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

package become

import (
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/kayon/become/scanner"
)

var ErrNotHeapObject = errors.New("cannot use become with objects that have no heap address")

// Object is a reference counted value with a stable address that no
// collector will move. *heap.Object implements it.
type Object interface {
	Addr() uintptr
	// Live reports whether the object is allocated. It must be safe on a
	// nil receiver.
	Live() bool
	// Retain adds n references.
	Retain(n int)
}

// Become rewrites every readable and writable word of the current process
// that holds the address of src so that it holds the address of dst, and
// adds one reference to dst per rewritten word. It returns the number of
// words rewritten.
//
// The reference count of src is left alone. Any word that happens to equal
// the address of src is rewritten, typed reference or not, including copies
// in stack frames of the caller.
//
// Nothing is locked. Goroutines that touch the same memory while Become runs
// race with it, callers that need atomicity have to stop them first.
func Become(src, dst Object) (int, error) {
	if err := checkObjects(src, dst); err != nil {
		return 0, err
	}

	st := time.Now()
	regions, err := SelfRegions()
	if err != nil {
		return 0, err
	}
	candidates := regions.Candidates()

	log.WithFields(log.Fields{
		"regions":    len(regions),
		"candidates": len(candidates),
		"bytes":      candidates.Size(),
	}).Debug("become snapshot")

	n := substitute(candidates.ScanRanges(), src, dst)

	log.WithFields(log.Fields{
		"count":   n,
		"elapsed": time.Since(st).String(),
	}).Debug("become done")
	return n, nil
}

// Substitute is Become over a snapshot taken by the caller. opts are passed
// to the scanner.
func Substitute(ranges []scanner.Range, src, dst Object, opts ...scanner.Option) (int, error) {
	if err := checkObjects(src, dst); err != nil {
		return 0, err
	}
	return substitute(ranges, src, dst, opts...), nil
}

func substitute(ranges []scanner.Range, src, dst Object, opts ...scanner.Option) int {
	// src may be rewritten from here on, only dst is used afterwards
	scan := scanner.New(src.Addr(), dst.Addr(), opts...)
	report := scan.Substitute(ranges)
	if report.Faulted > 0 || report.Invalid > 0 {
		log.WithFields(log.Fields{
			"ranges":  report.Ranges,
			"faulted": report.Faulted,
			"invalid": report.Invalid,
		}).Debug("become skipped ranges")
	}

	dst.Retain(report.Count)
	return report.Count
}

func checkObjects(src, dst Object) error {
	if !isHeapObject(src) {
		return errors.Wrap(ErrNotHeapObject, "source")
	}
	if !isHeapObject(dst) {
		return errors.Wrap(ErrNotHeapObject, "destination")
	}
	return nil
}

func isHeapObject(o Object) bool {
	return o != nil && o.Live() && o.Addr() != 0
}
