package main

import (
	"context"
	"fmt"
	"time"

	"github.com/marco/cinelog/internal/cache"
	"github.com/marco/cinelog/internal/catalog"
	"github.com/marco/cinelog/internal/config"
	"github.com/marco/cinelog/internal/scrape"
	"github.com/marco/cinelog/internal/worker"
)

// passResults summarizes one fetch pass over the collections.
type passResults struct {
	Checked   int
	Queued    int
	Succeeded int
	Failed    int
	Duration  time.Duration
}

// runFetchPass walks every owned movie and queues a background fetch for
// each one whose cache entry is missing (or all of them under force).
// It blocks until every queued task has reported its terminal signal.
func runFetchPass(
	ctx context.Context,
	cfg *config.Config,
	collections *catalog.Store,
	cacheStore *cache.Store,
	scraper *scrape.Scraper,
	force bool,
	dryRun bool,
	verbose bool,
) passResults {
	start := time.Now()
	results := passResults{}

	movies, err := collections.AllMovies()
	if err != nil {
		fmt.Printf("Error loading collections: %v\n", err)
		results.Failed++
		return results
	}

	// The same movie can live in several collections; one fetch per
	// identity is enough.
	unique := make(map[string]catalog.Movie)
	for _, m := range movies {
		unique[m.StorageKey()] = m
	}
	results.Checked = len(unique)

	var pending []catalog.Movie
	for _, m := range unique {
		key := m.StorageKey()
		if force || !cacheStore.HasPoster(key) || !cacheStore.HasMetadata(key) {
			pending = append(pending, m)
		}
	}

	if dryRun {
		fmt.Printf("\nDRY RUN MODE - no fetches will be performed\n\n")
		for _, m := range pending {
			fmt.Printf("Would fetch: %s (key %s)\n", m, m.StorageKey())
		}
		results.Queued = len(pending)
		results.Duration = time.Since(start)
		return results
	}

	if len(pending) == 0 {
		fmt.Println("Cache is complete, nothing to fetch")
		results.Duration = time.Since(start)
		return results
	}

	fmt.Printf("Fetching %d movies\n", len(pending))

	pool := worker.NewPool(ctx, cfg.Workers)
	go func() {
		for _, m := range pending {
			movie := m
			key := movie.StorageKey()
			task := worker.Task{Key: key}
			if force {
				// Force refresh is an explicit cache deletion:
				// metadata is sticky until its entry is gone.
				task.Steps = append(task.Steps, func(context.Context) error {
					return cacheStore.Delete(key)
				})
			}
			task.Steps = append(task.Steps,
				func(ctx context.Context) error {
					return scraper.FetchInfo(ctx, movie)
				},
				func(ctx context.Context) error {
					return scraper.FetchPoster(ctx, movie, force)
				},
			)
			pool.Submit(task)
		}
		pool.Close()
	}()

	for res := range pool.Results() {
		results.Queued++
		if res.Err != nil {
			results.Failed++
			fmt.Printf("  ❌ %s: %v\n", res.Key, res.Err)
			continue
		}
		results.Succeeded++
		if verbose {
			fmt.Printf("  ✓ %s\n", res.Key)
		}
	}

	results.Duration = time.Since(start)
	return results
}
