package crawler

import (
	"bytes"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masahif/hopcrawl/internal/frontier"
)

func TestConsoleReporterFormatsLines(t *testing.T) {
	u, err := url.Parse("https://example.com/a")
	require.NoError(t, err)

	var buf bytes.Buffer
	r := NewConsoleReporter(&buf)
	r.Visited(frontier.Item{URL: u, Depth: 2})
	r.Failed(frontier.Item{URL: u, Depth: 1}, errors.New("unexpected status: 500 Internal Server Error"))

	assert.Equal(t,
		"[2] https://example.com/a\n"+
			"error fetching https://example.com/a: unexpected status: 500 Internal Server Error\n",
		buf.String())
}

func TestConsoleReporterLinesDoNotInterleave(t *testing.T) {
	u, err := url.Parse("https://example.com/some/longer/path")
	require.NoError(t, err)

	var buf bytes.Buffer
	r := NewConsoleReporter(&buf)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Visited(frontier.Item{URL: u, Depth: i % 3})
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 50)
	for _, line := range lines {
		assert.Regexp(t, `^\[[0-2]\] https://example\.com/some/longer/path$`, line)
	}
}
