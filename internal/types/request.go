package types

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Request tags.
const (
	TagLanding = "landing"
	TagListing = "listing"
)

// Request represents a single page fetch.
type Request struct {
	// URL is the target URL to fetch.
	URL *url.URL

	// Method is the HTTP method. Defaults to GET.
	Method string

	// Headers are sent with the request, on top of the fetcher defaults.
	Headers http.Header

	// Timeout overrides the fetcher timeout for this request.
	Timeout time.Duration

	// Tag categorizes this request ("landing" or "listing").
	Tag string

	// Category and Start are set for listing pages.
	Category string
	Start    int

	// CreatedAt is when this request was created.
	CreatedAt time.Time
}

// NewRequest creates a GET request for rawURL.
func NewRequest(rawURL string) (*Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidURL, rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w %q: missing scheme or host", ErrInvalidURL, rawURL)
	}

	return &Request{
		URL:       u,
		Method:    http.MethodGet,
		Headers:   make(http.Header),
		CreatedAt: time.Now(),
	}, nil
}

// URLString returns the string representation of the request URL.
func (r *Request) URLString() string {
	if r.URL == nil {
		return ""
	}
	return r.URL.String()
}

// WithHeaders copies the given header pairs onto the request.
func (r *Request) WithHeaders(h map[string]string) *Request {
	for k, v := range h {
		r.Headers.Set(k, v)
	}
	return r
}
