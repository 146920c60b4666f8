package scrape

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/marco/cinelog/internal/catalog"
)

// recommendationsPattern pulls up to three suggested titles out of the
// similarity site's embedded JSON blob.
var recommendationsPattern = regexp.MustCompile(`"recommendations":"(.*?), (.*?)?, (.*?)?"`)

// similar fetches titles a viewer of the given movie might also like.
type similar struct {
	base  string
	fetch *fetcher
}

func newSimilar(base string, f *fetcher) *similar {
	return &similar{base: strings.TrimRight(base, "/"), fetch: f}
}

// Recommendations returns up to three similar movie titles. The site's
// URL scheme is guessed at with three query variants, most specific
// first; the first page that answers wins. No answer means no
// recommendations, never an error.
func (s *similar) Recommendations(ctx context.Context, m catalog.Movie) []string {
	title := strings.TrimSpace(strings.ReplaceAll(m.Title, fmt.Sprintf("(%d)", m.Year), ""))
	hyphenated := strings.Join(strings.Fields(catalog.TitleCase(title)), "-")
	variants := []string{
		hyphenated + "-Movie",
		fmt.Sprintf("%s-%d", hyphenated, m.Year),
		hyphenated,
	}

	var body []byte
	for _, variant := range variants {
		page, err := s.fetch.getPage(ctx, fmt.Sprintf("%s/movies/like/%s", s.base, variant))
		if err != nil {
			continue
		}
		body = page
		break
	}
	if body == nil {
		return nil
	}

	match := recommendationsPattern.FindSubmatch(body)
	if match == nil {
		return nil
	}
	var titles []string
	for _, group := range match[1:] {
		if title := strings.TrimSpace(string(group)); title != "" {
			titles = append(titles, title)
		}
	}
	return titles
}
