package sources

import (
	"context"
	"net/http"

	"github.com/PuerkitoBio/goquery"

	"NewsForge/internal/domain"
	"NewsForge/internal/extractor"
)

// ScienceExtractor discovers articles from the science source, whose listing
// renders one card element per article and paginates with ?page=N.
type ScienceExtractor struct {
	name       string
	listingURL string
	client     *http.Client
	maxPages   int
}

var _ extractor.Extractor = (*ScienceExtractor)(nil)

// NewScienceExtractor wires an HTTP client; pagination is capped at 10 pages.
func NewScienceExtractor(name, listingURL string, client *http.Client) *ScienceExtractor {
	return &ScienceExtractor{name: name, listingURL: listingURL, client: defaultClient(client), maxPages: 10}
}

func (s *ScienceExtractor) Category() domain.Category { return domain.CategoryScience }

func (s *ScienceExtractor) SourceName() string { return s.name }

// Extract pages through the listing until limit is reached or a page yields
// nothing new.
func (s *ScienceExtractor) Extract(ctx context.Context, limit int) ([]string, error) {
	c, err := newCollector(s.listingURL, limit)
	if err != nil {
		return nil, err
	}

	for page := 1; page <= s.maxPages && !c.full(); page++ {
		u, err := pageURL(s.listingURL, page)
		if err != nil {
			return nil, err
		}

		doc, err := fetchDocument(ctx, s.client, u)
		if err != nil {
			return nil, err
		}

		added := 0
		doc.Find("article.story-card").EachWithBreak(func(_ int, card *goquery.Selection) bool {
			href, ok := card.Find("a[href]").First().Attr("href")
			if ok && c.add(href) {
				added++
			}
			return !c.full()
		})

		if added == 0 {
			break
		}
	}

	return c.urls, nil
}
