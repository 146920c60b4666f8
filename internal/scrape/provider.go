// Package scrape discovers movie posters and metadata on the open web.
// Each external catalog is wrapped in a small provider with its own
// link-construction heuristic; the orchestrator in scrape.go sequences
// them with fallback, shuffling, and courteous pacing. Providers never
// fail loudly: any transport or parse problem degrades to an empty
// candidate list and the next source gets its turn.
package scrape

import (
	"context"

	"github.com/marco/cinelog/internal/catalog"
)

// PosterSource generates candidate poster URLs for a movie. A returned
// candidate is only a guess; the orchestrator probes them. An empty slice
// means this source has nothing to offer, which is never an error.
type PosterSource interface {
	Name() string
	PosterLinks(ctx context.Context, m catalog.Movie) []string
}

// Sources holds the base URL of every external catalog. They are
// configuration, not constants: the sites are unstable and substitutable,
// and tests point them at local stubs.
type Sources struct {
	ImpAwards    string
	PosterDB     string
	CineMaterial string
	Wikipedia    string
	YouTube      string
	TasteDive    string
}

// DefaultSources returns the catalogs the providers were written against.
func DefaultSources() Sources {
	return Sources{
		ImpAwards:    "http://www.impawards.com",
		PosterDB:     "https://www.movieposterdb.com",
		CineMaterial: "https://www.cinematerial.com",
		Wikipedia:    "https://en.wikipedia.org",
		YouTube:      "https://www.youtube.com",
		TasteDive:    "https://tastedive.com",
	}
}

func (s Sources) withDefaults() Sources {
	def := DefaultSources()
	if s.ImpAwards == "" {
		s.ImpAwards = def.ImpAwards
	}
	if s.PosterDB == "" {
		s.PosterDB = def.PosterDB
	}
	if s.CineMaterial == "" {
		s.CineMaterial = def.CineMaterial
	}
	if s.Wikipedia == "" {
		s.Wikipedia = def.Wikipedia
	}
	if s.YouTube == "" {
		s.YouTube = def.YouTube
	}
	if s.TasteDive == "" {
		s.TasteDive = def.TasteDive
	}
	return s
}
