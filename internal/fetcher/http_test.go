package fetcher

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/IshaanNene/MovieGoat/internal/config"
	"github.com/IshaanNene/MovieGoat/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func newTestFetcher(t *testing.T) *HTTPFetcher {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Fetcher.RequestTimeout = 5 * time.Second
	f, err := NewHTTPFetcher(cfg, testLogger)
	if err != nil {
		t.Fatalf("create fetcher: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestHTTPFetcherSendsIdentityHeader(t *testing.T) {
	var gotIdentity, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIdentity = r.Header.Get("Turing-College-capstone-project-work")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	req, _ := types.NewRequest(srv.URL)
	req.WithHeaders(config.DefaultConfig().Scraper.Identity.Headers())

	resp, err := f.Fetch(context.Background(), req)
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if !resp.IsSuccess() {
		t.Errorf("expected success, got %d", resp.StatusCode)
	}
	if gotIdentity != "Mozilla/5.0" {
		t.Errorf("identity header not delivered, got %q", gotIdentity)
	}
	if gotUA == "" {
		t.Error("expected a User-Agent")
	}
}

func TestHTTPFetcherNonSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	req, _ := types.NewRequest(srv.URL)

	_, err := f.Fetch(context.Background(), req)
	var fe *types.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fe.StatusCode != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", fe.StatusCode)
	}
}

func TestHTTPFetcherBrotli(t *testing.T) {
	const page = `<div class="lister-item">brotli</div>`
	var buf bytes.Buffer
	bw := brotli.NewWriter(&buf)
	bw.Write([]byte(page))
	bw.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "br")
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	req, _ := types.NewRequest(srv.URL)

	resp, err := f.Fetch(context.Background(), req)
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if string(resp.Body) != page {
		t.Errorf("expected decoded body %q, got %q", page, resp.Body)
	}
}

func TestHTTPFetcherEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	req, _ := types.NewRequest(srv.URL)

	_, err := f.Fetch(context.Background(), req)
	if !errors.Is(err, types.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestHTTPFetcherTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	f := newTestFetcher(t)
	req, _ := types.NewRequest(url)

	_, err := f.Fetch(context.Background(), req)
	var fe *types.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fe.StatusCode != 0 {
		t.Errorf("expected no status for transport error, got %d", fe.StatusCode)
	}
}

func TestNewSelectsFetcher(t *testing.T) {
	cfg := config.DefaultConfig()
	f, err := New(cfg, testLogger)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer f.Close()
	if f.Type() != "http" {
		t.Errorf("expected http fetcher, got %s", f.Type())
	}

	cfg.Fetcher.Type = "carrier-pigeon"
	if _, err := New(cfg, testLogger); err == nil {
		t.Error("expected error for unknown fetcher type")
	}
}

func TestHTTPFetcherChallengePage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><script src="https://x.token.awswaf.com/challenge.js"></script><script>AwsWafIntegration.checkForceRefresh()</script></html>`))
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	req, _ := types.NewRequest(srv.URL)

	_, err := f.Fetch(context.Background(), req)
	if !errors.Is(err, types.ErrChallenge) {
		t.Fatalf("expected ErrChallenge, got %v", err)
	}
}

func TestHTTPFetcherKeepsCookies(t *testing.T) {
	var second string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/landing" {
			http.SetCookie(w, &http.Cookie{Name: "session-id", Value: "abc", Path: "/"})
		} else {
			if c, err := r.Cookie("session-id"); err == nil {
				second = c.Value
			}
		}
		w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	for _, path := range []string{"/landing", "/search"} {
		req, _ := types.NewRequest(srv.URL + path)
		if _, err := f.Fetch(context.Background(), req); err != nil {
			t.Fatalf("fetch %s: %v", path, err)
		}
	}
	if second != "abc" {
		t.Errorf("expected session cookie on second request, got %q", second)
	}
}

func TestDetectChallenge(t *testing.T) {
	tests := map[string]string{
		`<div class="g-recaptcha" data-sitekey="k"></div>`: "recaptcha",
		`<div class="cf-turnstile"></div>`:                 "turnstile",
		`<div class="lister-item">Incredibles 2</div>`:     "",
	}
	for body, want := range tests {
		if got := DetectChallenge([]byte(body)); got != want {
			t.Errorf("DetectChallenge(%q) = %q, want %q", body, got, want)
		}
	}
}

func TestDetectChallengeIgnoresWidgetInFullPage(t *testing.T) {
	var page bytes.Buffer
	page.WriteString(`<html><body><div id="signin-modal"><div class="g-recaptcha" data-sitekey="k"></div></div>`)
	for page.Len() <= interstitialMaxSize {
		page.WriteString(`<div class="lister-item"><h3><a>Incredibles 2</a></h3></div>`)
	}
	page.WriteString(`</body></html>`)

	if got := DetectChallenge(page.Bytes()); got != "" {
		t.Errorf("expected a listing page with a sign-in captcha to pass, got %q", got)
	}

	page.WriteString(`<script>AwsWafIntegration.checkForceRefresh()</script>`)
	if got := DetectChallenge(page.Bytes()); got != "aws-waf" {
		t.Errorf("expected aws-waf regardless of size, got %q", got)
	}
}

func TestHTTPFetcherBodyCapAppliesAfterDecompression(t *testing.T) {
	var compressed bytes.Buffer
	zw := gzip.NewWriter(&compressed)
	zw.Write([]byte("<html><body>"))
	zw.Write(bytes.Repeat([]byte("<p>x</p>"), 512<<10))
	zw.Write([]byte("</body></html>"))
	zw.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		w.Write(compressed.Bytes())
	}))
	defer srv.Close()

	cfg := config.DefaultConfig()
	cfg.Fetcher.MaxBodySize = 1 << 20
	f, err := NewHTTPFetcher(cfg, testLogger)
	if err != nil {
		t.Fatalf("create fetcher: %v", err)
	}
	defer f.Close()

	if int64(compressed.Len()) >= cfg.Fetcher.MaxBodySize {
		t.Fatalf("compressed body should be under the cap, got %d bytes", compressed.Len())
	}

	req, _ := types.NewRequest(srv.URL)
	_, err = f.Fetch(context.Background(), req)
	if !errors.Is(err, types.ErrBodyTooLarge) {
		t.Fatalf("expected ErrBodyTooLarge, got %v", err)
	}
}

func TestHTTPFetcherBodyAtCap(t *testing.T) {
	body := []byte("<html>" + strings.Repeat("a", 100) + "</html>")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	cfg := config.DefaultConfig()
	cfg.Fetcher.MaxBodySize = int64(len(body))
	f, err := NewHTTPFetcher(cfg, testLogger)
	if err != nil {
		t.Fatalf("create fetcher: %v", err)
	}
	defer f.Close()

	req, _ := types.NewRequest(srv.URL)
	resp, err := f.Fetch(context.Background(), req)
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if len(resp.Body) != len(body) {
		t.Errorf("expected %d bytes, got %d", len(body), len(resp.Body))
	}
}

func TestBrowserFetchContextTimeout(t *testing.T) {
	bf := &BrowserFetcher{cfg: &config.FetcherConfig{RequestTimeout: time.Hour}}

	req, _ := types.NewRequest("https://imdb.test/")
	req.Timeout = time.Minute
	ctx, cancel := bf.fetchContext(context.Background(), req)
	deadline, ok := ctx.Deadline()
	if !ok || time.Until(deadline) > time.Minute {
		t.Errorf("expected request timeout to bound the fetch, deadline=%v ok=%v", deadline, ok)
	}
	cancel()
	if ctx.Err() == nil {
		t.Error("expected cancel to release the fetch context")
	}

	req.Timeout = 0
	ctx, cancel = bf.fetchContext(context.Background(), req)
	defer cancel()
	if deadline, ok := ctx.Deadline(); !ok || time.Until(deadline) < 59*time.Minute {
		t.Errorf("expected configured timeout, deadline=%v ok=%v", deadline, ok)
	}
}
