package sources

import (
	"context"
	"net/http"

	"github.com/PuerkitoBio/goquery"

	"NewsForge/internal/domain"
	"NewsForge/internal/extractor"
)

// WorldExtractor discovers articles from the world source's river list, which
// paginates with ?page=N. Each list item holds one headline link.
type WorldExtractor struct {
	name       string
	listingURL string
	client     *http.Client
	maxPages   int
}

var _ extractor.Extractor = (*WorldExtractor)(nil)

// NewWorldExtractor wires an HTTP client; pagination is capped at 10 pages.
func NewWorldExtractor(name, listingURL string, client *http.Client) *WorldExtractor {
	return &WorldExtractor{name: name, listingURL: listingURL, client: defaultClient(client), maxPages: 10}
}

func (w *WorldExtractor) Category() domain.Category { return domain.CategoryWorld }

func (w *WorldExtractor) SourceName() string { return w.name }

// Extract pages through the river until limit is reached or a page yields
// nothing new.
func (w *WorldExtractor) Extract(ctx context.Context, limit int) ([]string, error) {
	c, err := newCollector(w.listingURL, limit)
	if err != nil {
		return nil, err
	}

	for page := 1; page <= w.maxPages && !c.full(); page++ {
		u, err := pageURL(w.listingURL, page)
		if err != nil {
			return nil, err
		}

		doc, err := fetchDocument(ctx, w.client, u)
		if err != nil {
			return nil, err
		}

		added := 0
		doc.Find("ul.river li h3 a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			href, _ := sel.Attr("href")
			if c.add(href) {
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
