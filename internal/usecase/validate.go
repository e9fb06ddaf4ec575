package usecase

import (
	"strings"
	"time"

	"NewsForge/internal/config"
	"NewsForge/internal/domain"
	"NewsForge/internal/urlx"
)

// generatedItem is the shape the backend is instructed to return per article.
type generatedItem struct {
	ReferenceURL         string `json:"reference_url"`
	ReferenceName        string `json:"reference_name"`
	ReferencePublishedAt string `json:"reference_published_at"`
	Header               string `json:"header"`
	Subheader            string `json:"subheader"`
	Summary              string `json:"summary"`
	Body                 string `json:"body"`
}

// Phrases the backend emits when it could not actually read an article.
// Items containing any of them are dropped.
var placeholderPhrases = []string{
	"could not find",
	"couldn't find",
	"unable to access",
	"unable to find",
	"cannot access",
	"no information available",
	"article not found",
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"January 2, 2006",
	"2 Jan 2006",
}

// cleanItem validates one candidate item against the batch's requested URL
// set and normalizes it into a domain.Article. Category, source name, and the
// normalized URL are taken from the caller's context, never trusted from the
// backend. Overlong text fields are truncated, not rejected.
func cleanItem(item generatedItem, allowed map[string]struct{}, category domain.Category, sourceName string, bounds config.BoundsConfig, now time.Time) (domain.Article, bool) {
	normalized, err := urlx.NormalizeAbsolute(item.ReferenceURL)
	if err != nil {
		return domain.Article{}, false
	}
	if _, ok := allowed[normalized]; !ok {
		return domain.Article{}, false
	}

	header := strings.TrimSpace(item.Header)
	summary := strings.TrimSpace(item.Summary)
	body := strings.TrimSpace(item.Body)
	if header == "" || summary == "" || body == "" {
		return domain.Article{}, false
	}
	if hasPlaceholder(header) || hasPlaceholder(summary) || hasPlaceholder(body) {
		return domain.Article{}, false
	}

	return domain.Article{
		ReferenceURL:         normalized,
		ReferenceName:        sourceName,
		ReferencePublishedAt: parseTimestamp(item.ReferencePublishedAt, now),
		Header:               truncate(header, bounds.HeaderMax),
		Subheader:            truncate(strings.TrimSpace(item.Subheader), bounds.SubheaderMax),
		Summary:              truncate(summary, bounds.SummaryMax),
		Body:                 truncate(body, bounds.BodyMax),
		Category:             category,
	}, true
}

func hasPlaceholder(text string) bool {
	lowered := strings.ToLower(text)
	for _, phrase := range placeholderPhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}

func truncate(text string, max int) string {
	if max <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}

// parseTimestamp tries the known layouts and falls back to now. The backend
// reports publication dates in whatever form the source page used.
func parseTimestamp(raw string, now time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now.UTC()
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC()
		}
	}
	return now.UTC()
}
