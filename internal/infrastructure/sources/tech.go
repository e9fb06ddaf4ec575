package sources

import (
	"context"
	"net/http"
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"NewsForge/internal/domain"
	"NewsForge/internal/extractor"
)

// Article detail pages on the tech source live under dated paths
// (/2026/08/some-slug); everything else on the front page is navigation.
var techArticlePath = regexp.MustCompile(`^/\d{4}/\d{2}/`)

// TechExtractor discovers articles from the tech source's front page.
type TechExtractor struct {
	name       string
	listingURL string
	client     *http.Client
}

var _ extractor.Extractor = (*TechExtractor)(nil)

// NewTechExtractor wires an HTTP client; a nil client gets a 15s timeout default.
func NewTechExtractor(name, listingURL string, client *http.Client) *TechExtractor {
	return &TechExtractor{name: name, listingURL: listingURL, client: defaultClient(client)}
}

func (t *TechExtractor) Category() domain.Category { return domain.CategoryTech }

func (t *TechExtractor) SourceName() string { return t.name }

// Extract fetches the front page and returns up to limit article URLs in page order.
func (t *TechExtractor) Extract(ctx context.Context, limit int) ([]string, error) {
	doc, err := fetchDocument(ctx, t.client, t.listingURL)
	if err != nil {
		return nil, err
	}

	c, err := newCollector(t.listingURL, limit)
	if err != nil {
		return nil, err
	}

	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		resolved, err := c.resolve(href)
		if err != nil || !techArticlePath.MatchString(resolved.Path) {
			return true
		}
		c.add(href)
		return !c.full()
	})

	return c.urls, nil
}
