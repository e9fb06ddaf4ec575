package usecase

import (
	"strings"
	"testing"
	"time"

	"NewsForge/internal/config"
	"NewsForge/internal/domain"
)

var testBounds = config.BoundsConfig{HeaderMax: 50, SubheaderMax: 60, SummaryMax: 300, BodyMax: 1000}

func allowedSet(urls ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		set[u] = struct{}{}
	}
	return set
}

func validItem() generatedItem {
	return generatedItem{
		ReferenceURL:         "https://news.example.com/articles/one",
		ReferenceName:        "whatever the model claims",
		ReferencePublishedAt: "2026-08-30T10:00:00Z",
		Header:               "Short header about the event",
		Subheader:            "A slightly longer subheader with detail",
		Summary:              strings.Repeat("Summary sentence. ", 10),
		Body:                 strings.Repeat("Body sentence. ", 20),
	}
}

func TestCleanItemAcceptsAndOverwritesContext(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)
	allowed := allowedSet("https://news.example.com/articles/one")

	article, ok := cleanItem(validItem(), allowed, domain.CategoryTech, "TechPulse", testBounds, now)
	if !ok {
		t.Fatal("expected item to be accepted")
	}

	if article.Category != domain.CategoryTech {
		t.Fatalf("category not overwritten: %s", article.Category)
	}
	if article.ReferenceName != "TechPulse" {
		t.Fatalf("reference name not overwritten: %s", article.ReferenceName)
	}
	want := time.Date(2026, time.August, 30, 10, 0, 0, 0, time.UTC)
	if !article.ReferencePublishedAt.Equal(want) {
		t.Fatalf("unexpected published at: %v", article.ReferencePublishedAt)
	}
}

func TestCleanItemRejectsURLOutsideBatch(t *testing.T) {
	t.Parallel()

	item := validItem()
	item.ReferenceURL = "https://news.example.com/articles/hallucinated"

	_, ok := cleanItem(item, allowedSet("https://news.example.com/articles/one"), domain.CategoryTech, "TechPulse", testBounds, time.Now())
	if ok {
		t.Fatal("expected item with unknown reference url to be rejected")
	}
}

func TestCleanItemNormalizesURLBeforeMembershipCheck(t *testing.T) {
	t.Parallel()

	item := validItem()
	item.ReferenceURL = "HTTPS://News.Example.COM/articles/one?utm_source=model"

	_, ok := cleanItem(item, allowedSet("https://news.example.com/articles/one"), domain.CategoryTech, "TechPulse", testBounds, time.Now())
	if !ok {
		t.Fatal("expected normalized url to match the batch set")
	}
}

func TestCleanItemTruncatesOverlongHeader(t *testing.T) {
	t.Parallel()

	item := validItem()
	item.Header = strings.Repeat("h", 520)

	article, ok := cleanItem(item, allowedSet("https://news.example.com/articles/one"), domain.CategoryTech, "TechPulse", testBounds, time.Now())
	if !ok {
		t.Fatal("overlong header must be truncated, not rejected")
	}
	if len(article.Header) != testBounds.HeaderMax {
		t.Fatalf("expected header length %d, got %d", testBounds.HeaderMax, len(article.Header))
	}
}

func TestCleanItemDropsEmptyBody(t *testing.T) {
	t.Parallel()

	item := validItem()
	item.Body = "   "

	if _, ok := cleanItem(item, allowedSet("https://news.example.com/articles/one"), domain.CategoryTech, "TechPulse", testBounds, time.Now()); ok {
		t.Fatal("expected item with empty body to be dropped")
	}
}

func TestCleanItemDropsPlaceholderText(t *testing.T) {
	t.Parallel()

	item := validItem()
	item.Body = "I was unable to access the article at this URL."

	if _, ok := cleanItem(item, allowedSet("https://news.example.com/articles/one"), domain.CategoryTech, "TechPulse", testBounds, time.Now()); ok {
		t.Fatal("expected placeholder item to be dropped")
	}
}

func TestParseTimestampFallsBackToNow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 31, 9, 30, 0, 0, time.UTC)
	if got := parseTimestamp("sometime last week", now); !got.Equal(now) {
		t.Fatalf("expected fallback to now, got %v", got)
	}
	if got := parseTimestamp("", now); !got.Equal(now) {
		t.Fatalf("expected fallback for empty input, got %v", got)
	}
	if got := parseTimestamp("2026-08-29", now); got.Day() != 29 {
		t.Fatalf("expected parsed date, got %v", got)
	}
}
