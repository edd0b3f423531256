// Package crawler provides the concurrent crawl engine.
//
// A fixed pool of workers claims items from a shared frontier, deduplicates
// them against the visited set, fetches the page, reports it and, while the
// item is above the depth limit, pushes the page's links back onto the
// frontier. The run ends when the frontier drains or the context passed to
// Run is cancelled.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/masahif/hopcrawl/internal/frontier"
	"github.com/masahif/hopcrawl/internal/parser"
	"github.com/masahif/hopcrawl/internal/urlutil"
)

// Options configures a Crawler
type Options struct {
	Seed             string
	MaxDepth         int
	Concurrency      int
	ProgressInterval time.Duration // 0 disables progress logging
}

// Crawler runs breadth-bounded crawls. Its collaborators are stateless or
// safe for concurrent use; all per-run state lives in runState.
type Crawler struct {
	opts     Options
	fetcher  Fetcher
	extract  parser.Extractor
	visited  VisitedSet
	reporter Reporter
	logger   *slog.Logger
}

// runState is the shared state of one run, handed to every worker.
type runState struct {
	queue    *frontier.Queue
	stats    counters
	progress *rate.Sometimes
	logger   *slog.Logger
}

// NewCrawler creates a crawler. The visited set must be fresh for each run.
func NewCrawler(opts Options, fetcher Fetcher, extract parser.Extractor, visited VisitedSet, reporter Reporter) (*Crawler, error) {
	if opts.Concurrency <= 0 {
		return nil, fmt.Errorf("concurrency must be greater than 0, got %d", opts.Concurrency)
	}
	if opts.MaxDepth < 0 {
		return nil, fmt.Errorf("max depth must be 0 or greater, got %d", opts.MaxDepth)
	}
	if fetcher == nil || extract == nil || visited == nil || reporter == nil {
		return nil, errors.New("fetcher, extractor, visited set and reporter are required")
	}

	return &Crawler{
		opts:     opts,
		fetcher:  fetcher,
		extract:  extract,
		visited:  visited,
		reporter: reporter,
		logger:   slog.Default(),
	}, nil
}

// SetLogger replaces the logger used for diagnostics
func (c *Crawler) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

// Run crawls from the seed until the frontier is exhausted or ctx is
// cancelled. Cancellation is not an error; Run returns the statistics
// gathered so far. An error is returned only if the crawl cannot start.
func (c *Crawler) Run(ctx context.Context) (Stats, error) {
	start := time.Now()

	seed, err := urlutil.ParseSeed(c.opts.Seed)
	if err != nil {
		return Stats{}, err
	}

	st := &runState{
		queue:  frontier.New(),
		logger: c.logger.With("run_id", uuid.NewString()),
	}
	if c.opts.ProgressInterval > 0 {
		st.progress = &rate.Sometimes{Interval: c.opts.ProgressInterval}
	}

	if err := st.queue.Push(frontier.Item{URL: seed, Depth: 0}); err != nil {
		return Stats{}, fmt.Errorf("failed to enqueue seed: %w", err)
	}

	st.logger.Info("Starting crawler",
		"seed", seed.String(),
		"max_depth", c.opts.MaxDepth,
		"concurrency", c.opts.Concurrency,
	)

	g, gctx := errgroup.WithContext(ctx)
	for id := range c.opts.Concurrency {
		g.Go(func() error {
			c.worker(gctx, id, st)
			return nil
		})
	}
	_ = g.Wait()

	// Termination detection normally closed the queue already; after a
	// cancellation this is the one close.
	st.queue.Close()

	stats := st.stats.snapshot(start)
	attrs := []any{
		"visited", stats.Visited,
		"filtered", stats.Filtered,
		"failed", stats.Failed,
		"discovered", stats.Discovered,
		"duration", stats.Duration,
	}
	if n, err := c.visited.Len(); err != nil {
		st.logger.Warn("Failed to read visited set size", "error", err)
	} else {
		attrs = append(attrs, "visited_keys", n)
	}
	if ctx.Err() != nil {
		st.logger.Info("Crawling cancelled", append(attrs, "abandoned", st.queue.InFlight())...)
	} else {
		st.logger.Info("Crawling completed", attrs...)
	}

	return stats, nil
}

// worker claims items until the frontier closes or ctx is done
func (c *Crawler) worker(ctx context.Context, id int, st *runState) {
	st.logger.Debug("Worker started", "worker_id", id)
	defer st.logger.Debug("Worker stopped", "worker_id", id)

	for {
		item, err := st.queue.Pop(ctx)
		if err != nil {
			return
		}
		c.handle(ctx, id, st, item)
		c.reportProgress(st)
	}
}

// handle processes one claimed item and retires it. Children are pushed
// inside process, before Done, so the in-flight count cannot drop to zero
// while work is still being produced.
func (c *Crawler) handle(ctx context.Context, id int, st *runState, item frontier.Item) {
	defer st.queue.Done()
	c.process(ctx, id, st, item)
}

func (c *Crawler) process(ctx context.Context, id int, st *runState, item frontier.Item) {
	if item.Depth > c.opts.MaxDepth {
		st.stats.filtered.Add(1)
		return
	}

	key := urlutil.CanonicalKey(item.URL)
	first, err := c.visited.MarkVisited(key)
	if err != nil {
		st.stats.failed.Add(1)
		st.logger.Error("Worker failed to update visited set", "worker_id", id, "url", item.URL.String(), "error", err)
		return
	}
	if !first {
		st.stats.filtered.Add(1)
		return
	}

	if ctx.Err() != nil {
		return
	}

	text, err := c.fetcher.Fetch(ctx, item.URL.String())
	if err != nil {
		if ctx.Err() != nil {
			st.logger.Debug("Worker abandoned fetch", "worker_id", id, "url", item.URL.String())
			return
		}
		st.stats.failed.Add(1)
		c.reporter.Failed(item, err)
		st.logger.Warn("Worker failed to fetch URL", "worker_id", id, "url", item.URL.String(), "depth", item.Depth, "error", err)
		return
	}

	st.stats.visited.Add(1)
	c.reporter.Visited(item)

	if item.Depth >= c.opts.MaxDepth {
		return
	}

	links := 0
	for candidate := range c.extract(text) {
		next, ok := urlutil.Resolve(item.URL, candidate)
		if !ok {
			continue
		}
		if err := st.queue.Push(frontier.Item{URL: next, Depth: item.Depth + 1}); err != nil {
			return
		}
		st.stats.discovered.Add(1)
		links++
	}

	st.logger.Debug("Worker processed URL", "worker_id", id, "url", item.URL.String(), "depth", item.Depth, "links", links)
}

func (c *Crawler) reportProgress(st *runState) {
	if st.progress == nil {
		return
	}
	st.progress.Do(func() {
		st.logger.Info("Crawling stats",
			"visited", st.stats.visited.Load(),
			"failed", st.stats.failed.Load(),
			"queued", st.queue.Len(),
			"in_flight", st.queue.InFlight(),
		)
	})
}
