// Package visited provides in-process implementations of the crawler's
// visited set. Every implementation performs check-and-insert as a single
// atomic step per key.
package visited

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// DefaultShards is the number of lock shards used by NewMemory
const DefaultShards = 32

// Memory is an exact visited set held in sharded maps. Keys are spread
// over shards by xxhash so that workers marking different pages rarely
// contend on the same lock.
type Memory struct {
	shards []memoryShard
}

type memoryShard struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

// NewMemory creates an empty set with the given number of shards.
// Values below 1 fall back to DefaultShards.
func NewMemory(shards int) *Memory {
	if shards < 1 {
		shards = DefaultShards
	}
	m := &Memory{shards: make([]memoryShard, shards)}
	for i := range m.shards {
		m.shards[i].keys = make(map[string]struct{})
	}
	return m
}

// MarkVisited records key and reports whether it was not present before.
func (m *Memory) MarkVisited(key string) (bool, error) {
	s := m.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.keys[key]; ok {
		return false, nil
	}
	s.keys[key] = struct{}{}
	return true, nil
}

// Len returns the number of recorded keys
func (m *Memory) Len() (int, error) {
	n := 0
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.Lock()
		n += len(s.keys)
		s.mu.Unlock()
	}
	return n, nil
}

// Close is a no-op
func (m *Memory) Close() error {
	return nil
}

func (m *Memory) shard(key string) *memoryShard {
	return &m.shards[xxhash.Sum64String(key)%uint64(len(m.shards))]
}
