package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/marco/cinelog/internal/retry"
)

// errPageUnusable marks a lookup that resolved to nothing usable: no such
// page, or a disambiguation page. The caller retries once with a refined
// query; a hard timeout is a different error and aborts instead.
var errPageUnusable = errors.New("no usable encyclopedia page")

// encyclopedia resolves a movie's official title, summary, and cast from
// a MediaWiki-style REST API: the summary endpoint for title and extract,
// the page-html endpoint for the infobox holding the cast list.
type encyclopedia struct {
	base  string
	fetch *fetcher
}

func newEncyclopedia(base string, f *fetcher) *encyclopedia {
	return &encyclopedia{base: strings.TrimRight(base, "/"), fetch: f}
}

// Page is a resolved encyclopedia page.
type Page struct {
	Title   string
	Extract string
}

type summaryResponse struct {
	Title   string `json:"title"`
	Type    string `json:"type"`
	Extract string `json:"extract"`
}

// Lookup resolves the page best matching the query. Not-found and
// disambiguation conditions come back as errPageUnusable.
func (e *encyclopedia) Lookup(ctx context.Context, query string) (Page, error) {
	endpoint := fmt.Sprintf("%s/api/rest_v1/page/summary/%s", e.base, url.PathEscape(query))
	body, err := e.fetch.getPage(ctx, endpoint)
	if err != nil {
		var statusErr *retry.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == 404 {
			return Page{}, errPageUnusable
		}
		return Page{}, err
	}

	var resp summaryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Page{}, errPageUnusable
	}
	if resp.Type == "disambiguation" || resp.Title == "" {
		return Page{}, errPageUnusable
	}
	return Page{Title: resp.Title, Extract: resp.Extract}, nil
}

// Actors extracts the cast from the page's infobox: the block containing
// the "Starring" header cell, with names taken from both its anchor links
// and its plain list items, unioned. Strings containing a digit are
// dropped; they are reference artifacts, not names. The result is
// deduplicated and sorted case-insensitively.
func (e *encyclopedia) Actors(ctx context.Context, pageTitle string) []string {
	endpoint := fmt.Sprintf("%s/api/rest_v1/page/html/%s", e.base, url.PathEscape(pageTitle))
	body, err := e.fetch.getPage(ctx, endpoint)
	if err != nil {
		return nil
	}
	return extractActors(body)
}

func extractActors(pageHTML []byte) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(pageHTML))
	if err != nil {
		return nil
	}

	var block *goquery.Selection
	doc.Find("th").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if strings.TrimSpace(sel.Text()) == "Starring" {
			block = sel.Parent()
			return false
		}
		return true
	})
	if block == nil {
		return nil
	}

	seen := make(map[string]struct{})
	var actors []string
	collect := func(_ int, sel *goquery.Selection) {
		name := strings.TrimSpace(sel.Text())
		if name == "" || strings.ContainsAny(name, "0123456789") {
			return
		}
		lower := strings.ToLower(name)
		if _, dup := seen[lower]; dup {
			return
		}
		seen[lower] = struct{}{}
		actors = append(actors, name)
	}
	block.Find("a").Each(collect)
	block.Find("li").Each(collect)

	sort.Slice(actors, func(i, j int) bool {
		return strings.ToLower(actors[i]) < strings.ToLower(actors[j])
	})
	return actors
}

// firstSentences returns the leading n sentences of text.
func firstSentences(text string, n int) string {
	parts := strings.SplitAfter(text, ". ")
	if len(parts) <= n {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(strings.Join(parts[:n], ""))
}

// sentenceCount counts the sentences of text, roughly.
func sentenceCount(text string) int {
	count := 0
	for _, part := range strings.Split(text, ".") {
		if strings.TrimSpace(part) != "" {
			count++
		}
	}
	return count
}
