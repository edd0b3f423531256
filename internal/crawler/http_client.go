package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptrace"
	"sync"
	"time"

	"golang.org/x/net/html/charset"
)

// ErrUnexpectedStatus is returned for responses outside the 2xx range
var ErrUnexpectedStatus = errors.New("unexpected status")

// HTTPClient fetches page text over HTTP. It implements Fetcher.
type HTTPClient struct {
	client        *http.Client
	timeout       time.Duration
	userAgent     string
	maxBodySize   int64
	customHeaders map[string]string
	logger        *slog.Logger
}

// HTTPMetrics contains timing for one request
type HTTPMetrics struct {
	TTFB         time.Duration // Time to First Byte
	DownloadTime time.Duration // Total download time
	DNSLookup    time.Duration // DNS lookup time
	TCPConnect   time.Duration // TCP connection time
}

// NewHTTPClient creates a client whose requests are bounded by timeout
// and whose response bodies are truncated after maxBodySize bytes.
func NewHTTPClient(userAgent string, timeout time.Duration, maxBodySize int64) *HTTPClient {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	client := &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}

	return &HTTPClient{
		client:        client,
		timeout:       timeout,
		userAgent:     userAgent,
		maxBodySize:   maxBodySize,
		customHeaders: make(map[string]string),
		logger:        slog.Default(),
	}
}

// SetCustomHeaders sets custom HTTP headers
func (h *HTTPClient) SetCustomHeaders(headers map[string]string) {
	for k, v := range headers {
		h.customHeaders[k] = v
	}
}

// SetLogger replaces the logger used for request diagnostics
func (h *HTTPClient) SetLogger(logger *slog.Logger) {
	h.logger = logger
}

// Fetch performs a GET for url and returns the body decoded to UTF-8
// according to the response's declared or sniffed charset. The request is
// abandoned when the client timeout elapses or ctx is done, whichever
// comes first.
func (h *HTTPClient) Fetch(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", h.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	for name, value := range h.customHeaders {
		req.Header.Set(name, value)
	}

	timer := &requestTimer{}
	req = req.WithContext(httptrace.WithClientTrace(req.Context(), timer.trace()))

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, h.maxBodySize), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	text, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	metrics := timer.metrics(start)
	metrics.DownloadTime = time.Since(start)

	h.logger.Debug("Fetched page",
		"url", url,
		"status", resp.StatusCode,
		"bytes", len(text),
		"ttfb", metrics.TTFB,
		"dns", metrics.DNSLookup,
		"connect", metrics.TCPConnect,
		"download", metrics.DownloadTime,
	)

	return string(text), nil
}

// requestTimer collects httptrace timings. Dial callbacks may run on
// parallel goroutines, so every field is guarded by mu.
type requestTimer struct {
	mu           sync.Mutex
	dnsStart     time.Time
	connectStart time.Time
	firstByte    time.Time
	dns          time.Duration
	connect      time.Duration
}

func (r *requestTimer) trace() *httptrace.ClientTrace {
	return &httptrace.ClientTrace{
		DNSStart: func(httptrace.DNSStartInfo) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.dnsStart = time.Now()
		},
		DNSDone: func(httptrace.DNSDoneInfo) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.dns = time.Since(r.dnsStart)
		},
		ConnectStart: func(string, string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			if r.connectStart.IsZero() {
				r.connectStart = time.Now()
			}
		},
		ConnectDone: func(_, _ string, err error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			if err == nil && r.connect == 0 {
				r.connect = time.Since(r.connectStart)
			}
		},
		GotFirstResponseByte: func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.firstByte = time.Now()
		},
	}
}

// metrics snapshots the timings of a request that started at start
func (r *requestTimer) metrics(start time.Time) HTTPMetrics {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := HTTPMetrics{DNSLookup: r.dns, TCPConnect: r.connect}
	if !r.firstByte.IsZero() {
		m.TTFB = r.firstByte.Sub(start)
	}
	return m
}

// Close closes idle connections
func (h *HTTPClient) Close() {
	h.client.CloseIdleConnections()
}

var _ Fetcher = (*HTTPClient)(nil)
