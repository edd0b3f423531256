package visited_test

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masahif/hopcrawl/internal/visited"
)

type set interface {
	MarkVisited(key string) (bool, error)
	Len() (int, error)
	Close() error
}

func backends() map[string]func() set {
	return map[string]func() set{
		"memory":        func() set { return visited.NewMemory(visited.DefaultShards) },
		"memory single": func() set { return visited.NewMemory(1) },
		"bloom":         func() set { return visited.NewBloom(100_000, 0.0001) },
	}
}

func TestMarkVisitedFirstCallWins(t *testing.T) {
	for name, newSet := range backends() {
		t.Run(name, func(t *testing.T) {
			s := newSet()
			defer s.Close()

			first, err := s.MarkVisited("https://example.com/a")
			require.NoError(t, err)
			assert.True(t, first)

			again, err := s.MarkVisited("https://example.com/a")
			require.NoError(t, err)
			assert.False(t, again)

			other, err := s.MarkVisited("https://example.com/b")
			require.NoError(t, err)
			assert.True(t, other)

			n, err := s.Len()
			require.NoError(t, err)
			assert.Equal(t, 2, n)
		})
	}
}

func TestMarkVisitedConcurrentCallersAgreeOnOneWinner(t *testing.T) {
	const (
		goroutines = 32
		keys       = 200
	)

	for name, newSet := range backends() {
		t.Run(name, func(t *testing.T) {
			s := newSet()
			defer s.Close()

			winners := make([]atomic.Int32, keys)
			var wg sync.WaitGroup
			for range goroutines {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for k := range keys {
						first, err := s.MarkVisited(fmt.Sprintf("https://example.com/%d", k))
						if err != nil {
							t.Errorf("MarkVisited: %v", err)
							return
						}
						if first {
							winners[k].Add(1)
						}
					}
				}()
			}
			wg.Wait()

			for k := range winners {
				assert.Equal(t, int32(1), winners[k].Load(), "key %d", k)
			}
			n, err := s.Len()
			require.NoError(t, err)
			assert.Equal(t, keys, n)
		})
	}
}

func TestNewMemoryDefaultsShardCount(t *testing.T) {
	s := visited.NewMemory(0)
	first, err := s.MarkVisited("k")
	require.NoError(t, err)
	assert.True(t, first)
}
