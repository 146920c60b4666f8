// Package suggest builds movie recommendation batches from the user's own
// collections: a few randomly picked owned movies seed a similarity
// lookup, and each suggested title is paired with a trailer link. The
// whole batch is an explicit value threaded through by the caller; there
// is no accumulated global state.
package suggest

import (
	"context"
	"math/rand"

	"github.com/marco/cinelog/internal/catalog"
)

// placeholderYear is used for suggested movies whose release year is
// unknown; identity precision does not matter for a suggestion.
const placeholderYear = 2000

// minSuggestions is the smallest batch worth presenting.
const minSuggestions = 3

// Recommender resolves similar titles and trailers; satisfied by
// scrape.Scraper.
type Recommender interface {
	Recommendations(ctx context.Context, m catalog.Movie) []string
	Trailer(ctx context.Context, m catalog.Movie, withYear bool) string
}

// Suggestion is one recommended movie with its trailer link (possibly
// empty).
type Suggestion struct {
	Movie   catalog.Movie
	Trailer string
}

// Batch is the outcome of one recommendation pass.
type Batch struct {
	Seeds       []catalog.Movie
	Suggestions []Suggestion
}

// PickSeeds chooses up to n random movies from the owned set.
func PickSeeds(owned []catalog.Movie, n int) []catalog.Movie {
	if len(owned) == 0 || n <= 0 {
		return nil
	}
	idx := rand.Perm(len(owned))
	if n > len(idx) {
		n = len(idx)
	}
	seeds := make([]catalog.Movie, 0, n)
	for _, i := range idx[:n] {
		seeds = append(seeds, owned[i])
	}
	return seeds
}

// Build runs one recommendation pass: the seeds' similar titles are
// unioned, deduplicated against each other and against the seeds
// themselves, and paired with trailer links. A batch that would hold
// fewer than three suggestions is returned empty: too thin to present.
func Build(ctx context.Context, seeds []catalog.Movie, rec Recommender) Batch {
	batch := Batch{Seeds: seeds}

	seen := make(map[string]struct{})
	for _, seed := range seeds {
		seen[seed.StorageKey()] = struct{}{}
	}

	var picks []catalog.Movie
	for _, seed := range seeds {
		for _, title := range rec.Recommendations(ctx, seed) {
			m, err := catalog.NewMovie(title, placeholderYear, "", "")
			if err != nil {
				continue
			}
			if _, dup := seen[m.StorageKey()]; dup {
				continue
			}
			seen[m.StorageKey()] = struct{}{}
			picks = append(picks, m)
		}
	}
	if len(picks) < minSuggestions {
		return batch
	}

	for _, m := range picks {
		batch.Suggestions = append(batch.Suggestions, Suggestion{
			Movie: m,
			// Suggested years are placeholders, so the trailer
			// search goes out without one.
			Trailer: rec.Trailer(ctx, m, false),
		})
	}
	return batch
}
