package parser

import (
	"iter"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Tokenizer reads anchor tags with the x/net/html tokenizer, which copes
// with unquoted attributes and attribute order. It stops quietly at the
// first tokenizer error.
func Tokenizer(doc string) iter.Seq[string] {
	return func(yield func(string) bool) {
		z := html.NewTokenizer(strings.NewReader(doc))
		for {
			switch z.Next() {
			case html.ErrorToken:
				return
			case html.StartTagToken, html.SelfClosingTagToken:
				name, hasAttr := z.TagName()
				if atom.Lookup(name) != atom.A || !hasAttr {
					continue
				}
				for {
					key, val, more := z.TagAttr()
					if string(key) == "href" {
						href := strings.TrimSpace(string(val))
						if acceptable(href) && !yield(href) {
							return
						}
						break
					}
					if !more {
						break
					}
				}
			}
		}
	}
}
