package crawler

import (
	"fmt"
	"io"
	"sync"

	"github.com/masahif/hopcrawl/internal/frontier"
)

// ConsoleReporter writes one line per visited page and one per failed
// fetch. Lines from concurrent workers never interleave.
type ConsoleReporter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsoleReporter creates a reporter writing to w
func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{w: w}
}

// Visited prints "[depth] address"
func (r *ConsoleReporter) Visited(item frontier.Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintf(r.w, "[%d] %s\n", item.Depth, item.URL)
}

// Failed prints "error fetching address: message"
func (r *ConsoleReporter) Failed(item frontier.Item, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintf(r.w, "error fetching %s: %v\n", item.URL, err)
}

var _ Reporter = (*ConsoleReporter)(nil)
