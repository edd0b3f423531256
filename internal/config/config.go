// Package config provides configuration management for the crawler.
// It defines configuration structures and default values for crawling parameters.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/masahif/hopcrawl/internal/urlutil"
)

// Visited store backends
const (
	StoreMemory = "memory"
	StoreBloom  = "bloom"
	StoreSQLite = "sqlite"
)

// VisitedConfig selects and sizes the visited set
type VisitedConfig struct {
	Store         string  `mapstructure:"store" yaml:"store"`                   // memory, bloom or sqlite
	BloomCapacity uint    `mapstructure:"bloom_capacity" yaml:"bloom_capacity"` // Expected number of pages (bloom only)
	BloomFPRate   float64 `mapstructure:"bloom_fp_rate" yaml:"bloom_fp_rate"`   // False positive rate (bloom only)
}

// LogConfig controls diagnostic logging. Crawl output is not affected.
type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`             // debug, info, warn or error
	File       string `mapstructure:"file" yaml:"file"`               // Optional log file, rotated by size
	MaxSize    int64  `mapstructure:"max_size" yaml:"max_size"`       // Rotation size in MB
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"` // Rotated files to keep
}

// CrawlConfig holds crawler configuration
type CrawlConfig struct {
	// Traversal
	Seed        string `mapstructure:"seed" yaml:"seed"`               // Starting URL
	MaxDepth    int    `mapstructure:"max_depth" yaml:"max_depth"`     // Deepest level that is fetched
	Concurrency int    `mapstructure:"concurrency" yaml:"concurrency"` // Number of concurrent workers

	// HTTP
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"` // Per-request timeout
	UserAgent      string        `mapstructure:"user_agent" yaml:"user_agent"`           // HTTP User-Agent header
	Headers        []string      `mapstructure:"headers" yaml:"headers"`                 // Extra "Name: Value" headers
	MaxBodySize    int64         `mapstructure:"max_body_size" yaml:"max_body_size"`     // Bytes read per page

	// Processing
	Extractor        string        `mapstructure:"extractor" yaml:"extractor"`                 // regex, html or goquery
	ProgressInterval time.Duration `mapstructure:"progress_interval" yaml:"progress_interval"` // 0 disables progress logs

	Visited VisitedConfig `mapstructure:"visited" yaml:"visited"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *CrawlConfig {
	return &CrawlConfig{
		MaxDepth:         0,
		Concurrency:      8,
		RequestTimeout:   10 * time.Second,
		UserAgent:        "hopcrawl/dev",
		MaxBodySize:      10 << 20,
		Extractor:        "regex",
		ProgressInterval: 10 * time.Second,
		Visited: VisitedConfig{
			Store:         StoreMemory,
			BloomCapacity: 1_000_000,
			BloomFPRate:   0.001,
		},
		Log: LogConfig{
			Level:      "warn",
			MaxSize:    100,
			MaxBackups: 5,
		},
	}
}

// Validate checks if the configuration is valid
func (c *CrawlConfig) Validate() error {
	if _, err := urlutil.ParseSeed(c.Seed); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}

	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.RequestTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxBodySize <= 0 {
		return ErrInvalidBodySize
	}

	if _, err := c.ParseHeaders(); err != nil {
		return err
	}

	switch strings.ToLower(c.Visited.Store) {
	case StoreMemory, StoreSQLite:
	case StoreBloom:
		if c.Visited.BloomCapacity == 0 || c.Visited.BloomFPRate <= 0 || c.Visited.BloomFPRate >= 1 {
			return ErrInvalidBloomRate
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownVisitedStore, c.Visited.Store)
	}

	return nil
}

// ParseHeaders splits the configured "Name: Value" headers into a map
func (c *CrawlConfig) ParseHeaders() (map[string]string, error) {
	headers := make(map[string]string, len(c.Headers))
	for _, header := range c.Headers {
		name, value, ok := strings.Cut(header, ":")
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if !ok || name == "" || value == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidHeader, header)
		}
		headers[name] = value
	}
	return headers, nil
}
