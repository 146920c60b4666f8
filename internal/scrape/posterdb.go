package scrape

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/marco/cinelog/internal/catalog"
)

// posterDB is a search-then-extract provider: one search round trip, then
// the first result page's lazily-loaded poster image element yields the
// candidate URL.
type posterDB struct {
	base  string
	fetch *fetcher
}

func newPosterDB(base string, f *fetcher) *posterDB {
	return &posterDB{base: strings.TrimRight(base, "/"), fetch: f}
}

func (p *posterDB) Name() string { return "posterdb" }

// PosterLinks searches the catalog for the title and extracts the poster
// image URL from the result page. Any transport or markup surprise
// degrades to no candidates.
func (p *posterDB) PosterLinks(ctx context.Context, m catalog.Movie) []string {
	query := strings.ReplaceAll(strings.ToLower(m.Title), " ", "%20")
	searchURL := fmt.Sprintf("%s/search?q=%s&imdb=0", p.base, query)

	body, err := p.fetch.getPage(ctx, searchURL)
	if err != nil {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	src, ok := doc.Find("img.vertical-image.poster_img.lazyload").First().Attr("data-src")
	if !ok || src == "" {
		return nil
	}
	return []string{src}
}
