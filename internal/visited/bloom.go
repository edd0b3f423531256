package visited

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// Bloom is an approximate visited set with bounded memory. A false positive
// makes an unvisited page look visited, so the page is skipped; a page is
// never reported as new twice.
type Bloom struct {
	mu    sync.Mutex
	f     *bloom.BloomFilter
	added int
}

// NewBloom creates a filter sized for capacity keys at the given false
// positive rate.
func NewBloom(capacity uint, fpRate float64) *Bloom {
	return &Bloom{f: bloom.NewWithEstimates(capacity, fpRate)}
}

// MarkVisited records key and reports whether the filter had not seen it.
func (b *Bloom) MarkVisited(key string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.f.TestAndAddString(key) {
		return false, nil
	}
	b.added++
	return true, nil
}

// Len returns the number of keys that were accepted as new
func (b *Bloom) Len() (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.added, nil
}

// Close is a no-op
func (b *Bloom) Close() error {
	return nil
}
