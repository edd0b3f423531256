package config

import "errors"

var (
	// ErrInvalidSeed is returned when the seed is not an absolute http(s) URL
	ErrInvalidSeed = errors.New("seed must be an absolute http or https URL")
	// ErrInvalidMaxDepth is returned when max depth is negative
	ErrInvalidMaxDepth = errors.New("max_depth must be 0 or greater")
	// ErrInvalidConcurrency is returned when concurrency is not greater than 0
	ErrInvalidConcurrency = errors.New("concurrency must be greater than 0")
	// ErrInvalidTimeout is returned when request timeout is not greater than 0
	ErrInvalidTimeout = errors.New("request_timeout must be greater than 0")
	// ErrInvalidBodySize is returned when the body size cap is not greater than 0
	ErrInvalidBodySize = errors.New("max_body_size must be greater than 0")
	// ErrInvalidHeader is returned for a header not in "Name: Value" form
	ErrInvalidHeader = errors.New("header must be in 'Name: Value' format")
	// ErrUnknownVisitedStore is returned for an unsupported visited store
	ErrUnknownVisitedStore = errors.New("visited.store must be one of memory, bloom, sqlite")
	// ErrInvalidBloomRate is returned when the bloom settings are out of range
	ErrInvalidBloomRate = errors.New("visited.bloom_capacity must be positive and visited.bloom_fp_rate in (0, 1)")
)
