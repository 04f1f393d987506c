package scanner

type Option func(*Scanner)

// WithCollector reports each rewritten word to c.
func WithCollector(c Collector) Option {
	return func(s *Scanner) {
		s.collector = c
	}
}

// WithRangeHook calls fn after each range with the number of words it
// rewrote and whether a fault cut it short.
func WithRangeHook(fn func(r Range, count int, faulted bool)) Option {
	return func(s *Scanner) {
		s.rangeHook = fn
	}
}
