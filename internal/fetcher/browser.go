package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/IshaanNene/MovieGoat/internal/config"
	"github.com/IshaanNene/MovieGoat/internal/types"
)

// BrowserFetcher implements Fetcher using a headless browser via Rod.
// Pages are fetched one at a time, so a single tab is reused.
type BrowserFetcher struct {
	browser *rod.Browser
	page    *rod.Page
	cfg     *config.FetcherConfig
	logger  *slog.Logger
}

// NewBrowserFetcher launches headless Chromium and connects to it.
func NewBrowserFetcher(cfg *config.Config, logger *slog.Logger) (*BrowserFetcher, error) {
	bf := &BrowserFetcher{
		cfg:    &cfg.Fetcher,
		logger: logger.With("component", "browser_fetcher"),
	}

	launchURL, err := bf.launchBrowser()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(launchURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	bf.browser = browser

	if cfg.Fetcher.Stealth {
		bf.page, err = stealth.Page(browser)
	} else {
		bf.page, err = browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	}
	if err != nil {
		_ = browser.Close()
		return nil, fmt.Errorf("open page: %w", err)
	}

	if ua := cfg.Fetcher.UserAgent; ua != "" {
		if err := bf.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: ua}); err != nil {
			bf.logger.Warn("failed to set user agent", "error", err)
		}
	}

	bf.logger.Info("browser fetcher ready", "stealth", cfg.Fetcher.Stealth)
	return bf, nil
}

// launchBrowser starts a Chromium instance with appropriate flags.
func (bf *BrowserFetcher) launchBrowser() (string, error) {
	l := launcher.New().
		Headless(true).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-blink-features", "AutomationControlled")

	if bf.cfg.ProxyURL != "" {
		l = l.Proxy(bf.cfg.ProxyURL)
	}

	return l.Launch()
}

// fetchContext bounds one navigation by the request timeout, falling back to
// the configured one.
func (bf *BrowserFetcher) fetchContext(ctx context.Context, req *types.Request) (context.Context, context.CancelFunc) {
	timeout := bf.cfg.RequestTimeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	return context.WithTimeout(ctx, timeout)
}

// Fetch navigates to a URL and returns the rendered page content.
func (bf *BrowserFetcher) Fetch(ctx context.Context, req *types.Request) (*types.Response, error) {
	start := time.Now()

	ctx, cancel := bf.fetchContext(ctx, req)
	defer cancel()
	page := bf.page.Context(ctx)

	if len(req.Headers) > 0 {
		headers := make([]string, 0, len(req.Headers)*2)
		for k, vals := range req.Headers {
			for _, v := range vals {
				headers = append(headers, k, v)
			}
		}
		cleanup, err := page.SetExtraHeaders(headers)
		if err != nil {
			return nil, &types.FetchError{URL: req.URLString(), Err: fmt.Errorf("set headers: %w", err)}
		}
		defer cleanup()
	}

	if err := page.Navigate(req.URLString()); err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: err}
	}

	if err := page.WaitStable(300 * time.Millisecond); err != nil {
		bf.logger.Warn("page stability timeout, continuing", "url", req.URLString(), "error", err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: err}
	}

	if kind := DetectChallenge([]byte(html)); kind != "" {
		return nil, &types.FetchError{URL: req.URLString(), Err: fmt.Errorf("%w: %s", types.ErrChallenge, kind)}
	}

	finalURL := req.URLString()
	if info, err := page.Info(); err == nil && info != nil {
		finalURL = info.URL
	}

	// Rod does not expose the document status code directly.
	duration := time.Since(start)
	resp := types.NewBrowserResponse(req, 200, []byte(html), finalURL, duration)

	bf.logger.Debug("browser fetch complete",
		"url", req.URLString(),
		"final_url", finalURL,
		"size", len(html),
		"duration", duration,
	)

	return resp, nil
}

// Close shuts down the browser and releases resources.
func (bf *BrowserFetcher) Close() error {
	if bf.page != nil {
		_ = bf.page.Close()
	}
	if bf.browser != nil {
		return bf.browser.Close()
	}
	return nil
}

// Type returns the fetcher type identifier.
func (bf *BrowserFetcher) Type() string {
	return "browser"
}
