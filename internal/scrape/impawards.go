package scrape

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/marco/cinelog/internal/catalog"
)

// impSuffixes enumerates the alternate poster releases the catalog hosts
// next to the main one.
var impSuffixes = []string{
	"_ver2", "_ver3", "_ver4", "_ver5", "_ver6",
	"_ver7", "_ver8", "_ver9", "_ver10", "_xlg", "_xxlg",
}

var imdbIDPattern = regexp.MustCompile(`title/(\w{9})"`)

const imdbTitleURL = "https://www.imdb.com/title/%s/"

// impAwards is the exact-name provider: it builds candidate URLs directly
// from the storage key and year plus a fixed suffix list, so enumerating
// candidates needs no network round trip at all. The catalog derives its
// page names from movie titles the same way the storage key does.
type impAwards struct {
	base   string
	fetch  *fetcher
	pacing time.Duration
}

func newImpAwards(base string, f *fetcher, pacing time.Duration) *impAwards {
	return &impAwards{base: strings.TrimRight(base, "/"), fetch: f, pacing: pacing}
}

func (p *impAwards) Name() string { return "impawards" }

// PosterLinks returns the direct poster URL and its suffix variants.
func (p *impAwards) PosterLinks(_ context.Context, m catalog.Movie) []string {
	return p.links(m, true)
}

// pageLinks returns the HTML detail-page URLs matching the poster
// variants. The detail pages carry outbound IMDb links.
func (p *impAwards) pageLinks(m catalog.Movie) []string {
	return p.links(m, false)
}

func (p *impAwards) links(m catalog.Movie, poster bool) []string {
	key := m.StorageKey()
	if key == "" {
		return nil
	}
	segment, ext := "", "html"
	if poster {
		segment, ext = "posters/", "jpg"
	}
	links := make([]string, 0, len(impSuffixes)+1)
	links = append(links, fmt.Sprintf("%s/%d/%s%s.%s", p.base, m.Year, segment, key, ext))
	for _, suffix := range impSuffixes {
		links = append(links, fmt.Sprintf("%s/%d/%s%s%s.%s", p.base, m.Year, segment, key, suffix, ext))
	}
	return links
}

// IMDbLink walks the catalog's detail pages for the movie and extracts the
// first IMDb title identifier it finds, rendered as a full IMDb URL.
// Attempts are paced to stay courteous; exhaustion returns "".
func (p *impAwards) IMDbLink(ctx context.Context, m catalog.Movie) string {
	for i, link := range p.pageLinks(m) {
		if ctx.Err() != nil {
			return ""
		}
		if i > 0 {
			sleepCtx(ctx, p.pacing)
		}
		body, err := p.fetch.get(ctx, link)
		if err != nil {
			continue
		}
		if id := extractIMDbID(body); id != "" {
			return fmt.Sprintf(imdbTitleURL, id)
		}
	}
	return ""
}

// extractIMDbID scans the bordered sidebar divs of a detail page for a
// 9-character IMDb title identifier.
func extractIMDbID(pageHTML []byte) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(pageHTML)))
	if err != nil {
		return ""
	}
	id := ""
	doc.Find("div.rightsidesmallbordered").Each(func(_ int, sel *goquery.Selection) {
		block, err := goquery.OuterHtml(sel)
		if err != nil || !strings.Contains(block, "www.imdb.com") {
			return
		}
		if match := imdbIDPattern.FindStringSubmatch(block); match != nil {
			id = match[1]
		}
	})
	return id
}

// sleepCtx pauses for d unless the context ends first.
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
