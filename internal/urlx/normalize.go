package urlx

import (
	"fmt"
	"net/url"
	"strings"
)

// Normalize resolves raw against base (when raw is relative), lowercases the
// scheme and host, and strips the query string and fragment. Discovery,
// generation validation, and deduplication must all agree on this form or
// duplicates leak through.
func Normalize(raw string, base *url.URL) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", raw, err)
	}

	if base != nil {
		parsed = base.ResolveReference(parsed)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme in %q", raw)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("url %q has no host", raw)
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.RawQuery = ""
	parsed.Fragment = ""
	parsed.RawFragment = ""

	return parsed.String(), nil
}

// NormalizeAbsolute is Normalize without base resolution, for URLs that must
// already be absolute (generated items, store lookups).
func NormalizeAbsolute(raw string) (string, error) {
	return Normalize(raw, nil)
}
