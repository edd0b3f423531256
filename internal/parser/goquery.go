package parser

import (
	"iter"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// GoQuery parses doc into a DOM and selects a[href]. The document is
// parsed again on every range over the sequence.
func GoQuery(doc string) iter.Seq[string] {
	return func(yield func(string) bool) {
		d, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
		if err != nil {
			return
		}
		d.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			href, _ := s.Attr("href")
			href = strings.TrimSpace(href)
			if !acceptable(href) {
				return true
			}
			return yield(href)
		})
	}
}
