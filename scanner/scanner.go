// Package scanner rewrites every aligned word equal to one address with
// another address, across a list of raw memory ranges.
//
// The scan is blind: a word that merely looks like the address is rewritten
// too. Ranges are a snapshot, memory that has been unmapped or protected since
// it was taken faults, the fault is recovered and the rest of that range is
// skipped.
package scanner

import (
	"runtime"
	"runtime/debug"
)

// Report is the outcome of one Substitute call.
type Report struct {
	// Count is the number of words rewritten.
	Count int
	// Ranges is the number of ranges scanned.
	Ranges int
	// Faulted is the number of ranges cut short by a fault.
	Faulted int
	// Invalid is the number of ranges rejected with Start > End.
	Invalid int
}

type Scanner struct {
	// kept complemented so that no copy of the scanner's own state
	// matches the word it is looking for
	notFrom uintptr
	to      uintptr

	collector Collector
	rangeHook func(r Range, count int, faulted bool)
}

func New(from, to uintptr, opts ...Option) *Scanner {
	s := &Scanner{
		notFrom: ^from,
		to:      to,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Substitute scans ranges in order. It is not safe against other goroutines
// mutating the same memory, callers that need that must stop them first.
func (s *Scanner) Substitute(ranges []Range) (report Report) {
	old := debug.SetPanicOnFault(true)
	defer debug.SetPanicOnFault(old)

	for _, r := range ranges {
		c, err := NewCursor(r)
		if err != nil {
			report.Invalid++
			continue
		}
		report.Ranges++

		before := report.Count
		faulted := s.substituteRange(c, &report)
		if faulted {
			report.Faulted++
		}
		if s.rangeHook != nil {
			s.rangeHook(r, report.Count-before, faulted)
		}
	}
	return
}

func (s *Scanner) substituteRange(c *Cursor, report *Report) (faulted bool) {
	defer func() {
		if r := recover(); r != nil {
			if !isFault(r) {
				panic(r)
			}
			c.Skip()
			faulted = true
		}
	}()

	for ; c.Valid(); c.Advance() {
		if ^c.Load() != s.notFrom {
			continue
		}
		c.Store(s.to)
		report.Count++
		if s.collector != nil {
			s.collector.Collect(c.Addr())
		}
	}
	return false
}

// isFault reports whether r is the panic raised for a memory fault while
// SetPanicOnFault is enabled.
func isFault(r any) bool {
	err, ok := r.(runtime.Error)
	if !ok {
		return false
	}
	_, ok = err.(interface{ Addr() uintptr })
	return ok
}
