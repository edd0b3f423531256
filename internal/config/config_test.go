package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *CrawlConfig {
	cfg := DefaultConfig()
	cfg.Seed = "https://example.com"
	cfg.MaxDepth = 2
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 0, cfg.MaxDepth)
	assert.Equal(t, "regex", cfg.Extractor)
	assert.Equal(t, StoreMemory, cfg.Visited.Store)
	assert.Equal(t, int64(10<<20), cfg.MaxBodySize)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Empty(t, cfg.Seed, "seed only comes from the command line")
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CrawlConfig)
		wantErr error
	}{
		{"valid config", func(*CrawlConfig) {}, nil},
		{"depth zero", func(c *CrawlConfig) { c.MaxDepth = 0 }, nil},
		{"missing seed", func(c *CrawlConfig) { c.Seed = "" }, ErrInvalidSeed},
		{"relative seed", func(c *CrawlConfig) { c.Seed = "/docs" }, ErrInvalidSeed},
		{"ftp seed", func(c *CrawlConfig) { c.Seed = "ftp://example.com" }, ErrInvalidSeed},
		{"negative depth", func(c *CrawlConfig) { c.MaxDepth = -1 }, ErrInvalidMaxDepth},
		{"zero concurrency", func(c *CrawlConfig) { c.Concurrency = 0 }, ErrInvalidConcurrency},
		{"zero timeout", func(c *CrawlConfig) { c.RequestTimeout = 0 }, ErrInvalidTimeout},
		{"zero body size", func(c *CrawlConfig) { c.MaxBodySize = 0 }, ErrInvalidBodySize},
		{"bad header", func(c *CrawlConfig) { c.Headers = []string{"NoColon"} }, ErrInvalidHeader},
		{"empty header value", func(c *CrawlConfig) { c.Headers = []string{"X-Empty:  "} }, ErrInvalidHeader},
		{"unknown store", func(c *CrawlConfig) { c.Visited.Store = "redis" }, ErrUnknownVisitedStore},
		{"sqlite store", func(c *CrawlConfig) { c.Visited.Store = "sqlite" }, nil},
		{"bloom store", func(c *CrawlConfig) { c.Visited.Store = "bloom" }, nil},
		{"bloom rate too high", func(c *CrawlConfig) {
			c.Visited.Store = "bloom"
			c.Visited.BloomFPRate = 1
		}, ErrInvalidBloomRate},
		{"bloom zero capacity", func(c *CrawlConfig) {
			c.Visited.Store = "bloom"
			c.Visited.BloomCapacity = 0
		}, ErrInvalidBloomRate},
		{"bloom settings ignored for memory", func(c *CrawlConfig) { c.Visited.BloomFPRate = 5 }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseHeaders(t *testing.T) {
	cfg := validConfig()
	cfg.Headers = []string{
		"X-API-Key: secret",
		"Accept-Language:  de-DE ",
		"Authorization: Bearer a:b:c",
	}

	headers, err := cfg.ParseHeaders()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"X-API-Key":       "secret",
		"Accept-Language": "de-DE",
		"Authorization":   "Bearer a:b:c",
	}, headers)
}
