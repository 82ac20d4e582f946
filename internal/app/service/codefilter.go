package service

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

const (
	filterExpectedCodes = 1 << 20
	filterFalsePositive = 0.001
)

// CodeFilter is a bloom-filter membership test over every short code the
// store has ever held. A definite miss lets the resolver answer NotFound
// without touching SQLite. Deleted and swept codes stay in the filter; those
// lookups fall through to the store and miss there instead. The filter is
// never consulted for uniqueness.
type CodeFilter struct {
	mu     sync.RWMutex
	filter *bloom.BloomFilter
}

// NewCodeFilter creates an empty filter sized for the expected code volume.
func NewCodeFilter() *CodeFilter {
	return &CodeFilter{
		filter: bloom.NewWithEstimates(filterExpectedCodes, filterFalsePositive),
	}
}

// Seed loads existing codes, typically once at startup.
func (f *CodeFilter) Seed(codes []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, code := range codes {
		f.filter.AddString(code)
	}
}

// Add records a newly created code.
func (f *CodeFilter) Add(code string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filter.AddString(code)
}

// MayContain reports whether the code could exist. False means the code was
// never created; true requires a store lookup to confirm.
func (f *CodeFilter) MayContain(code string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.filter.TestString(code)
}
