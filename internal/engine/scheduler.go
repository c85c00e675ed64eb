package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/IshaanNene/MovieGoat/internal/parser"
	"github.com/IshaanNene/MovieGoat/internal/types"
)

var errThrottle = errors.New("throttle wait aborted")

// throttle keeps one full delay between the end of a listing fetch and the
// start of the next. The first fetch passes immediately; a zero delay
// disables waiting.
type throttle struct {
	mu    sync.Mutex
	every rate.Limit
	lim   *rate.Limiter
}

func newThrottle(delay time.Duration) *throttle {
	if delay <= 0 {
		return &throttle{every: rate.Inf, lim: rate.NewLimiter(rate.Inf, 1)}
	}
	every := rate.Every(delay)
	return &throttle{every: every, lim: rate.NewLimiter(every, 1)}
}

// Wait blocks until the delay since the last completed fetch has passed.
func (t *throttle) Wait(ctx context.Context) error {
	t.mu.Lock()
	lim := t.lim
	t.mu.Unlock()
	return lim.Wait(ctx)
}

// Done marks a fetch as finished. The bucket is re-armed empty so tokens
// accrued while the fetch was in flight do not shorten the next wait.
func (t *throttle) Done() {
	if t.every == rate.Inf {
		return
	}
	lim := rate.NewLimiter(t.every, 1)
	lim.Allow()

	t.mu.Lock()
	t.lim = lim
	t.mu.Unlock()
}

// FetchPage waits on the throttle, fetches one listing page and returns its
// entries. A failed fetch yields no entries and the error.
func (e *Engine) FetchPage(ctx context.Context, category string, start int) ([]*goquery.Selection, error) {
	e.mu.RLock()
	f, p := e.fetcher, e.parser
	e.mu.RUnlock()
	if f == nil {
		return nil, types.ErrNoFetcher
	}
	if p == nil {
		return nil, types.ErrNoParser
	}

	req, err := types.NewRequest(e.ListingURL(category, start))
	if err != nil {
		return nil, err
	}
	req.Tag = types.TagListing
	req.Category = category
	req.Start = start
	req.WithHeaders(e.cfg.Scraper.Identity.Headers())

	if err := e.throttle.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", errThrottle, err)
	}

	e.logger.Info("scraping page", "category", category, "start", start)
	e.metrics.PagesRequested.Add(1)

	resp, err := f.Fetch(ctx, req)
	e.throttle.Done()
	if err != nil {
		return nil, err
	}
	e.metrics.BytesDownloaded.Add(int64(len(resp.Body)))

	return p.Items(resp)
}

// Collect walks every category and offset in order and extracts one record
// per listing entry. A page that fails is logged and skipped. Cancelling ctx
// stops the walk between pages; the records gathered so far are returned
// with the context error.
func (e *Engine) Collect(ctx context.Context, categories []string, offsets []int) (types.RecordSet, error) {
	var records types.RecordSet

	for _, category := range categories {
		for _, start := range offsets {
			if err := ctx.Err(); err != nil {
				return records, err
			}

			items, err := e.FetchPage(ctx, category, start)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return records, ctxErr
				}
				if errors.Is(err, errThrottle) {
					return records, err
				}
				e.metrics.PagesFailed.Add(1)
				e.logger.Warn("page failed, skipping",
					"category", category,
					"start", start,
					"error", err,
				)
				continue
			}

			e.metrics.FragmentsSeen.Add(int64(len(items)))
			for _, item := range items {
				r := parser.ExtractRecord(item, category)
				e.metrics.ObserveRecord(r)
				records = append(records, r)
			}
			e.logger.Debug("page collected", "category", category, "start", start, "records", len(items))
		}
	}

	return records, nil
}
