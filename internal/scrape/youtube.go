package scrape

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/marco/cinelog/internal/catalog"
)

// videoIDPattern matches the 11-character video identifier in a search
// results page.
var videoIDPattern = regexp.MustCompile(`watch\?v=(\S{11})`)

// videoSearch resolves an embeddable trailer URL from a video search
// endpoint. No match is an empty string, never an error.
type videoSearch struct {
	base  string
	fetch *fetcher
}

func newVideoSearch(base string, f *fetcher) *videoSearch {
	return &videoSearch{base: strings.TrimRight(base, "/"), fetch: f}
}

// Trailer searches for "{title} {year} trailer" (or without the year when
// withYear is false) and builds an embed URL from the first video
// identifier in the response.
func (v *videoSearch) Trailer(ctx context.Context, m catalog.Movie, withYear bool) string {
	query := strings.ReplaceAll(strings.TrimSpace(m.Title), " ", "+")
	if withYear {
		query = fmt.Sprintf("%s+%d", query, m.Year)
	}
	searchURL := fmt.Sprintf("%s/results?search_query=%s+trailer", v.base, query)

	body, err := v.fetch.getPage(ctx, searchURL)
	if err != nil {
		return ""
	}
	match := videoIDPattern.FindSubmatch(body)
	if match == nil {
		return ""
	}
	return fmt.Sprintf("%s/embed/%s", v.base, match[1])
}
