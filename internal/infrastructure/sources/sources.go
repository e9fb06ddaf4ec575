// Package sources holds the per-source discovery strategies. Each source has
// one declared structural rule deciding which links are article detail pages;
// everything else (fetching, normalization, dedup, limits) is shared.
package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsForge/internal/urlx"
)

const userAgent = "NewsForge/1.0"

func defaultClient(client *http.Client) *http.Client {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return client
}

func fetchDocument(ctx context.Context, client *http.Client, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	return doc, nil
}

func pageURL(base string, page int) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid listing url %s: %w", base, err)
	}

	query := parsed.Query()
	query.Set("page", strconv.Itoa(page))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// collector accumulates normalized candidate URLs in page order, dropping
// duplicates and stopping at the limit.
type collector struct {
	base  *url.URL
	limit int
	seen  map[string]struct{}
	urls  []string
}

func newCollector(listingURL string, limit int) (*collector, error) {
	base, err := url.Parse(listingURL)
	if err != nil {
		return nil, fmt.Errorf("invalid listing url %s: %w", listingURL, err)
	}
	return &collector{base: base, limit: limit, seen: map[string]struct{}{}}, nil
}

// add normalizes href and records it. It reports whether the URL was new.
func (c *collector) add(href string) bool {
	if c.full() {
		return false
	}
	normalized, err := urlx.Normalize(href, c.base)
	if err != nil {
		return false
	}
	if _, ok := c.seen[normalized]; ok {
		return false
	}
	c.seen[normalized] = struct{}{}
	c.urls = append(c.urls, normalized)
	return true
}

func (c *collector) full() bool {
	return c.limit > 0 && len(c.urls) >= c.limit
}

func (c *collector) resolve(href string) (*url.URL, error) {
	parsed, err := url.Parse(href)
	if err != nil {
		return nil, err
	}
	return c.base.ResolveReference(parsed), nil
}
