package scrape

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/marco/cinelog/internal/cache"
	"github.com/marco/cinelog/internal/catalog"
	"github.com/marco/cinelog/internal/pagecache"
	"github.com/marco/cinelog/internal/retry"
)

// Options tunes the orchestrator's network behavior.
type Options struct {
	// Timeout is the hard per-request timeout.
	Timeout time.Duration
	// CourtesyDelay is the pause after each failed poster candidate,
	// spreading load across the source sites.
	CourtesyDelay time.Duration
	// PacingDelay is the pause between successive detail-page probes
	// during the IMDb identifier scan.
	PacingDelay time.Duration
	// MaxAttempts and InitialBackoff bound the retry of transient
	// failures on search and summary requests.
	MaxAttempts    int
	InitialBackoff time.Duration
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.CourtesyDelay <= 0 {
		o.CourtesyDelay = 3 * time.Second
	}
	if o.PacingDelay <= 0 {
		o.PacingDelay = time.Second
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 2
	}
	if o.InitialBackoff <= 0 {
		o.InitialBackoff = time.Second
	}
	return o
}

// Scraper sequences the source providers into the two fetch operations,
// writing results through the cache store. All failures short of a broken
// cache directory degrade: the caller always ends up with either real
// data or the documented defaults.
type Scraper struct {
	store    *cache.Store
	posters  []PosterSource
	wiki     *encyclopedia
	video    *videoSearch
	imp      *impAwards
	sim      *similar
	fetch    *fetcher
	courtesy time.Duration
}

// New wires the providers against the configured source sites.
func New(store *cache.Store, pages pagecache.Cache, sources Sources, opts Options) *Scraper {
	sources = sources.withDefaults()
	opts = opts.withDefaults()
	f := newFetcher(opts.Timeout, pages, opts.MaxAttempts, opts.InitialBackoff)

	imp := newImpAwards(sources.ImpAwards, f, opts.PacingDelay)
	return &Scraper{
		store: store,
		// Cheap no-network link construction first, search-based
		// extraction after.
		posters: []PosterSource{
			imp,
			newPosterDB(sources.PosterDB, f),
			newCineMaterial(sources.CineMaterial, f),
		},
		wiki:     newEncyclopedia(sources.Wikipedia, f),
		video:    newVideoSearch(sources.YouTube, f),
		imp:      imp,
		sim:      newSimilar(sources.TasteDive, f),
		fetch:    f,
		courtesy: opts.CourtesyDelay,
	}
}

// FetchPoster downloads and caches a poster for the movie. With an entry
// already cached and override false it is a no-op. Candidates from all
// providers are pooled and shuffled: there is no trusted ranking across
// sources, and shuffling avoids hammering the same origin first on every
// run. Exhausting every candidate is terminal success with no poster
// written; rendering a placeholder is the UI's business.
func (s *Scraper) FetchPoster(ctx context.Context, m catalog.Movie, override bool) error {
	key := m.StorageKey()
	if s.store.HasPoster(key) && !override {
		return nil
	}

	var links []string
	for _, p := range s.posters {
		links = append(links, p.PosterLinks(ctx, m)...)
	}
	rand.Shuffle(len(links), func(i, j int) {
		links[i], links[j] = links[j], links[i]
	})

	for _, link := range links {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		raw, err := s.fetch.get(ctx, link)
		if err != nil {
			sleepCtx(ctx, s.courtesy)
			continue
		}
		if err := s.store.WritePoster(key, raw); err != nil {
			// Candidate answered with something that is not an
			// image; keep probing.
			sleepCtx(ctx, s.courtesy)
			continue
		}
		return nil
	}
	return nil
}

// FetchInfo assembles and caches the metadata record for the movie. With
// a record already cached it is a no-op: metadata is sticky until the
// cache entry is explicitly deleted. Every sub-step degrades
// independently, so the written record is always complete, with defaults
// standing in for whatever could not be resolved.
func (s *Scraper) FetchInfo(ctx context.Context, m catalog.Movie) error {
	key := m.StorageKey()
	if s.store.HasMetadata(key) {
		return nil
	}

	rec := cache.DefaultRecord(catalog.TitleCase(m.Title), m.Year)
	rec.Trailer = s.video.Trailer(ctx, m, true)

	// Year-qualified query first; one refinement to the film-qualified
	// query on a miss; a hard timeout abandons the lookup entirely.
	query := fmt.Sprintf("%s %d", m.Title, m.Year)
	for attempt := 0; attempt < 2; attempt++ {
		page, err := s.wiki.Lookup(ctx, query)
		if err != nil {
			if retry.IsTimeout(err) {
				break
			}
			query = m.Title + " film"
			continue
		}
		rec.Title = page.Title
		if summary := trimSummary(page.Extract); summary != "" {
			rec.Summary = summary
		}
		rec.Actors = actorsOrEmpty(s.wiki.Actors(ctx, page.Title))
		break
	}

	rec.Genre = InferGenres(rec.Summary, m.Title)
	rec.IMDb = s.imp.IMDbLink(ctx, m)

	return s.store.WriteMetadata(key, rec)
}

// Recommendations returns similar-movie titles for the suggestion flow.
func (s *Scraper) Recommendations(ctx context.Context, m catalog.Movie) []string {
	return s.sim.Recommendations(ctx, m)
}

// Trailer resolves an embeddable trailer URL. withYear false widens the
// search for movies whose year is uncertain.
func (s *Scraper) Trailer(ctx context.Context, m catalog.Movie, withYear bool) string {
	return s.video.Trailer(ctx, m, withYear)
}

// trimSummary keeps the leading three sentences, falling back to the full
// extract when trimming leaves less than two.
func trimSummary(extract string) string {
	if extract == "" {
		return ""
	}
	short := firstSentences(extract, 3)
	if sentenceCount(short) < 2 {
		return strings.TrimSpace(extract)
	}
	return short
}

func actorsOrEmpty(actors []string) []string {
	if actors == nil {
		return []string{}
	}
	return actors
}
