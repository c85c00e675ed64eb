package engine

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/IshaanNene/MovieGoat/internal/config"
	"github.com/IshaanNene/MovieGoat/internal/types"
)

// DiscoverCategories fetches the landing page and returns its category
// labels in page order, duplicates included. The landing fetch is not
// throttled.
func (e *Engine) DiscoverCategories(ctx context.Context) ([]string, error) {
	e.mu.RLock()
	f, p := e.fetcher, e.parser
	e.mu.RUnlock()
	if f == nil {
		return nil, types.ErrNoFetcher
	}
	if p == nil {
		return nil, types.ErrNoParser
	}

	req, err := types.NewRequest(e.cfg.Scraper.LandingURL)
	if err != nil {
		return nil, err
	}
	req.Tag = types.TagLanding
	req.WithHeaders(e.cfg.Scraper.Identity.Headers())

	e.logger.Info("discovering categories", "url", req.URLString())

	resp, err := f.Fetch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetch landing page: %w", err)
	}
	e.metrics.BytesDownloaded.Add(int64(len(resp.Body)))

	categories, err := p.Categories(resp)
	if err != nil {
		return nil, fmt.Errorf("parse landing page: %w", err)
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("%w at %s", types.ErrNoCategories, req.URLString())
	}

	e.metrics.CategoriesFound.Add(int64(len(categories)))
	e.logger.Info("categories discovered", "count", len(categories))
	return categories, nil
}

// PlanOffsets returns the 1-based start offsets 1, 1+pageSize, ... up to and
// including targetCount. It returns nil when either argument is below 1.
func PlanOffsets(targetCount, pageSize int) []int {
	if targetCount < 1 || pageSize < 1 {
		return nil
	}
	offsets := make([]int, 0, (targetCount-1)/pageSize+1)
	for start := 1; start <= targetCount; start += pageSize {
		offsets = append(offsets, start)
	}
	return offsets
}

// ListingURL fills the listing template with a category and start offset.
func (e *Engine) ListingURL(category string, start int) string {
	return BuildListingURL(e.cfg.Scraper.ListingURL, category, start)
}

// BuildListingURL substitutes the category (query-escaped) and start offset
// into template.
func BuildListingURL(template, category string, start int) string {
	return strings.NewReplacer(
		config.PlaceholderCategory, url.QueryEscape(category),
		config.PlaceholderStart, strconv.Itoa(start),
	).Replace(template)
}
