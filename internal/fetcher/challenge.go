package fetcher

import (
	"bytes"
)

// interstitialMaxSize bounds the body of a bot-check page. A captcha widget
// in a larger document is part of a real page, such as a sign-in dialog.
const interstitialMaxSize = 32 << 10

// challengeMarkers are lowercase substrings that identify interstitial
// bot-check pages served in place of the requested document. Widget markers
// only count on interstitial-sized bodies.
var challengeMarkers = []struct {
	kind   string
	marker string
	widget bool
}{
	{"aws-waf", "awswafintegration", false},
	{"cloudflare", "cf-browser-verification", false},
	{"recaptcha", "g-recaptcha", true},
	{"hcaptcha", "h-captcha", true},
	{"turnstile", "cf-turnstile", true},
}

// DetectChallenge reports which bot-check page body is, or "" when it looks
// like a regular document.
func DetectChallenge(body []byte) string {
	lower := bytes.ToLower(body)
	small := len(body) <= interstitialMaxSize
	for _, c := range challengeMarkers {
		if c.widget && !small {
			continue
		}
		if bytes.Contains(lower, []byte(c.marker)) {
			return c.kind
		}
	}
	return ""
}
