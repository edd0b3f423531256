// Package parser extracts candidate link targets from document text.
// Extraction is purely syntactic: values are neither resolved nor validated,
// and malformed markup never causes a failure.
package parser

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
)

// ErrUnknownExtractor is returned by Lookup for an unregistered name
var ErrUnknownExtractor = errors.New("unknown extractor")

// Extractor returns the candidate links found in doc. The sequence is lazy
// and may be ranged over any number of times.
type Extractor func(doc string) iter.Seq[string]

// Extractor names accepted by Lookup
const (
	NameRegex   = "regex"
	NameHTML    = "html"
	NameGoQuery = "goquery"
)

var registry = map[string]Extractor{
	NameRegex:   Regex,
	NameHTML:    Tokenizer,
	NameGoQuery: GoQuery,
}

// Lookup returns the extractor registered under name
func Lookup(name string) (Extractor, error) {
	if e, ok := registry[strings.ToLower(strings.TrimSpace(name))]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownExtractor, name, strings.Join(Names(), ", "))
}

// Names returns the registered extractor names in sorted order
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// acceptable applies the shared value policy: non-empty and free of
// fragment markers, quotes and tag terminators.
func acceptable(value string) bool {
	return value != "" && !strings.ContainsAny(value, `#"'>`)
}
