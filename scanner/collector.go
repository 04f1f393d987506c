package scanner

// Collector receives the address of every rewritten word.
type Collector interface {
	Collect(addr uintptr)
}

type CollectorFunc func(addr uintptr)

func (c CollectorFunc) Collect(addr uintptr) {
	c(addr)
}

type SliceCollector struct {
	Results []uintptr
}

func (c *SliceCollector) Collect(addr uintptr) {
	c.Results = append(c.Results, addr)
}

func NewSliceCollector(initialCapacity int) *SliceCollector {
	return &SliceCollector{
		Results: make([]uintptr, 0, initialCapacity),
	}
}
