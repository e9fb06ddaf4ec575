package sources

import (
	"context"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"NewsForge/internal/domain"
	"NewsForge/internal/extractor"
)

// BusinessExtractor discovers articles from the business source's markets
// page. Detail pages all live under /articles/.
type BusinessExtractor struct {
	name       string
	listingURL string
	client     *http.Client
}

var _ extractor.Extractor = (*BusinessExtractor)(nil)

// NewBusinessExtractor wires an HTTP client; a nil client gets a 15s timeout default.
func NewBusinessExtractor(name, listingURL string, client *http.Client) *BusinessExtractor {
	return &BusinessExtractor{name: name, listingURL: listingURL, client: defaultClient(client)}
}

func (b *BusinessExtractor) Category() domain.Category { return domain.CategoryBusiness }

func (b *BusinessExtractor) SourceName() string { return b.name }

// Extract fetches the markets page and returns up to limit article URLs in page order.
func (b *BusinessExtractor) Extract(ctx context.Context, limit int) ([]string, error) {
	doc, err := fetchDocument(ctx, b.client, b.listingURL)
	if err != nil {
		return nil, err
	}

	c, err := newCollector(b.listingURL, limit)
	if err != nil {
		return nil, err
	}

	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		resolved, err := c.resolve(href)
		if err != nil || !strings.HasPrefix(resolved.Path, "/articles/") {
			return true
		}
		c.add(href)
		return !c.full()
	})

	return c.urls, nil
}
