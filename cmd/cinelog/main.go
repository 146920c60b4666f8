package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/marco/cinelog/internal/cache"
	"github.com/marco/cinelog/internal/catalog"
	"github.com/marco/cinelog/internal/config"
	"github.com/marco/cinelog/internal/pagecache"
	"github.com/marco/cinelog/internal/scrape"
	"github.com/marco/cinelog/internal/suggest"
)

var (
	configPath   = flag.String("config", "~/.cinelog/config.yaml", "Path to configuration file")
	forceRefresh = flag.Bool("force-refresh", false, "Drop cached entries and re-fetch everything")
	noReconcile  = flag.Bool("no-reconcile", false, "Skip the orphaned cache entry sweep")
	dryRun       = flag.Bool("dry-run", false, "Show what would be done without actually doing it")
	watchMode    = flag.Bool("watch", false, "Keep running and re-fetch when collections change")
	exportName   = flag.String("export", "", "Export the named collection as text to stdout and exit")
	suggestFrom  = flag.Int("suggest", 0, "Suggest similar movies seeded from N random owned ones and exit")
	listActors   = flag.Bool("actors", false, "List every actor across the cached metadata and exit")
	verbose      = flag.Bool("verbose", false, "Show detailed logging")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("Cache directory: %s\n", cfg.CacheDir)
		fmt.Printf("Collections directory: %s\n", cfg.CollectionsDir)
	}

	collections, err := catalog.NewStore(cfg.CollectionsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening collections: %v\n", err)
		os.Exit(1)
	}
	cacheStore, err := cache.NewStore(cfg.CacheDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening cache: %v\n", err)
		os.Exit(1)
	}

	if *listActors {
		actors, err := cacheStore.AllActors()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing actors: %v\n", err)
			os.Exit(1)
		}
		for _, name := range actors {
			fmt.Println(name)
		}
		return
	}

	if *exportName != "" {
		c, err := collections.Load(*exportName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := collections.ExportText(c, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting collection: %v\n", err)
			os.Exit(1)
		}
		return
	}

	pages, err := openPageCache(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening page cache: %v\n", err)
		os.Exit(1)
	}
	defer pages.Close()

	scraper := scrape.New(cacheStore, pages, scrape.Sources{
		ImpAwards:    cfg.Sources.ImpAwards,
		PosterDB:     cfg.Sources.PosterDB,
		CineMaterial: cfg.Sources.CineMaterial,
		Wikipedia:    cfg.Sources.Wikipedia,
		YouTube:      cfg.Sources.YouTube,
		TasteDive:    cfg.Sources.TasteDive,
	}, scrape.Options{
		Timeout:        time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second,
		CourtesyDelay:  time.Duration(cfg.HTTP.CourtesyDelaySeconds) * time.Second,
		PacingDelay:    time.Duration(cfg.HTTP.PacingDelaySeconds) * time.Second,
		MaxAttempts:    cfg.HTTP.MaxAttempts,
		InitialBackoff: time.Duration(cfg.HTTP.InitialBackoffMs) * time.Millisecond,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *suggestFrom > 0 {
		if err := runSuggest(ctx, collections, scraper, *suggestFrom); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// The orphan sweep runs at startup only, before any fetch is in
	// flight, so a directory is never deleted while it is being written.
	if !*noReconcile && !*dryRun {
		live, err := collections.LiveKeys()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error computing live keys: %v\n", err)
			os.Exit(1)
		}
		removed, err := cacheStore.ClearOrphans(live)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing orphaned cache entries: %v\n", err)
			os.Exit(1)
		}
		if len(removed) > 0 {
			fmt.Printf("Removed %d orphaned cache entries\n", len(removed))
			if *verbose {
				for _, key := range removed {
					fmt.Printf("  - %s\n", key)
				}
			}
		}
	}

	if *watchMode {
		if err := watchCollections(ctx, cfg, collections, cacheStore, scraper); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	results := runFetchPass(ctx, cfg, collections, cacheStore, scraper, *forceRefresh, *dryRun, *verbose)
	printSummary(results)
	if results.Failed > 0 {
		os.Exit(1)
	}
}

// loadConfig loads the config file, falling back to built-in defaults when
// the default config path simply does not exist yet.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return config.Default()
	}
	return cfg, err
}

// runSuggest prints one recommendation batch seeded from the user's own
// collections.
func runSuggest(ctx context.Context, collections *catalog.Store, scraper *scrape.Scraper, seedCount int) error {
	owned, err := collections.AllMovies()
	if err != nil {
		return err
	}
	if len(owned) == 0 {
		fmt.Println("No movies in any collection yet, nothing to seed from")
		return nil
	}

	batch := suggest.Build(ctx, suggest.PickSeeds(owned, seedCount), scraper)
	if len(batch.Suggestions) == 0 {
		fmt.Println("Not enough recommendations found, try again with other seeds")
		return nil
	}

	fmt.Println("Based on:")
	for _, seed := range batch.Seeds {
		fmt.Printf("  %s\n", seed)
	}
	fmt.Println("You might like:")
	for _, s := range batch.Suggestions {
		if s.Trailer != "" {
			fmt.Printf("  %s  (trailer: %s)\n", s.Movie.Title, s.Trailer)
		} else {
			fmt.Printf("  %s\n", s.Movie.Title)
		}
	}
	return nil
}

func openPageCache(cfg *config.Config) (pagecache.Cache, error) {
	ttl := time.Duration(cfg.PageCache.TTLHours) * time.Hour
	switch cfg.PageCache.Backend {
	case "sqlite":
		return pagecache.NewSQLite(cfg.PageCache.Path, ttl)
	case "off":
		return pagecache.Disabled{}, nil
	default:
		return pagecache.NewMemory(cfg.PageCache.MaxEntries, ttl), nil
	}
}

func printSummary(r passResults) {
	fmt.Println("==================================================")
	fmt.Printf("Summary:\n")
	fmt.Printf("  Movies checked: %d\n", r.Checked)
	fmt.Printf("  Fetches queued: %d\n", r.Queued)
	fmt.Printf("  Successful: %d\n", r.Succeeded)
	if r.Failed > 0 {
		fmt.Printf("  Failed: %d\n", r.Failed)
	}
	fmt.Printf("  Duration: %.1fs\n", r.Duration.Seconds())
}
