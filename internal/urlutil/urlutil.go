// Package urlutil resolves extracted link candidates into crawlable addresses
// and derives the canonical key used for deduplication.
package urlutil

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ErrInvalidURL is returned when a seed address cannot be crawled
var ErrInvalidURL = errors.New("invalid URL")

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// ParseSeed parses a starting address. Only absolute http and https URLs
// with a host are accepted.
func ParseSeed(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if !isCrawlable(u) {
		return nil, fmt.Errorf("%w: %q must be an absolute http or https URL", ErrInvalidURL, raw)
	}
	return u, nil
}

// Resolve resolves candidate against base. The second return value is false
// when the candidate does not parse or does not resolve to an http(s) URL.
func Resolve(base *url.URL, candidate string) (*url.URL, bool) {
	ref, err := url.Parse(strings.TrimSpace(candidate))
	if err != nil {
		return nil, false
	}

	resolved := base.ResolveReference(ref)
	if !isCrawlable(resolved) {
		return nil, false
	}
	return resolved, true
}

// CanonicalKey returns the deduplication identity of u: scheme, host and
// path, with query and fragment dropped. Scheme and host are lower-cased,
// default ports are removed and an empty path becomes "/".
func CanonicalKey(u *url.URL) string {
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Host)

	if h, port, err := net.SplitHostPort(host); err == nil && defaultPorts[scheme] == port {
		host = h
		if strings.Contains(host, ":") {
			host = "[" + host + "]"
		}
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}

	return scheme + "://" + host + path
}

func isCrawlable(u *url.URL) bool {
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.Host != ""
	default:
		return false
	}
}
