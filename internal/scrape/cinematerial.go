package scrape

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/marco/cinelog/internal/catalog"
)

// cineMaterial is the two-hop provider: a search, then the first matching
// result's detail page, then the poster image on that second page. It
// fails closed: if either hop or the expected markup is missing there are
// simply no candidates.
type cineMaterial struct {
	base  string
	fetch *fetcher
}

func newCineMaterial(base string, f *fetcher) *cineMaterial {
	return &cineMaterial{base: strings.TrimRight(base, "/"), fetch: f}
}

func (p *cineMaterial) Name() string { return "cinematerial" }

// PosterLinks performs both hops and returns at most one candidate URL.
func (p *cineMaterial) PosterLinks(ctx context.Context, m catalog.Movie) []string {
	query := strings.ReplaceAll(strings.ToLower(m.Title), " ", "+")
	searchURL := fmt.Sprintf("%s/search?q=%s", p.base, query)

	body, err := p.fetch.getPage(ctx, searchURL)
	if err != nil {
		return nil
	}
	detailPath := firstResultLink(body)
	if detailPath == "" {
		return nil
	}

	detailURL := p.base + detailPath
	detail, err := p.fetch.getPage(ctx, detailURL)
	if err != nil {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(detail))
	if err != nil {
		return nil
	}
	src, ok := doc.Find("img.lazy").First().Attr("data-src")
	if !ok || src == "" {
		return nil
	}
	return []string{src}
}

// firstResultLink pulls the detail-page path out of the search results
// table: the second cell of the first row carries the title link.
func firstResultLink(searchHTML []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(searchHTML))
	if err != nil {
		return ""
	}
	cells := doc.Find("div.table-responsive td")
	if cells.Length() < 2 {
		return ""
	}
	href, ok := cells.Eq(1).Find("a").First().Attr("href")
	if !ok || !strings.HasPrefix(href, "/") {
		return ""
	}
	return href
}
