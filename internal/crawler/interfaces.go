package crawler

import (
	"context"

	"github.com/masahif/hopcrawl/internal/frontier"
)

// Fetcher retrieves the text of a page. Implementations bound every
// request by their own timeout and must return promptly once ctx is done.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// VisitedSet records canonical page keys. MarkVisited is the single
// check-and-insert step: for any key exactly one caller ever sees true.
type VisitedSet interface {
	MarkVisited(key string) (bool, error)
	Len() (int, error)
}

// Reporter receives the observable outcome of each fetched page.
// Methods are called concurrently from workers.
type Reporter interface {
	Visited(item frontier.Item)
	Failed(item frontier.Item, err error)
}
