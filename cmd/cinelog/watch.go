package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/marco/cinelog/internal/cache"
	"github.com/marco/cinelog/internal/catalog"
	"github.com/marco/cinelog/internal/config"
	"github.com/marco/cinelog/internal/scrape"
)

// debounceDelay coalesces the burst of write events a collection save
// produces into a single fetch pass.
const debounceDelay = 2 * time.Second

// passInProgress prevents overlapping fetch passes.
var passInProgress atomic.Bool

// watchCollections keeps the process alive: whenever a collection file is
// created, rewritten or removed, a fetch pass runs after a debounce so
// new movies get their cache entries without a manual rerun. Orphan
// cleanup stays confined to startup; mid-session fetches may be writing.
func watchCollections(
	ctx context.Context,
	cfg *config.Config,
	collections *catalog.Store,
	cacheStore *cache.Store,
	scraper *scrape.Scraper,
) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(collections.Dir()); err != nil {
		return err
	}

	slog.Info("watching collections",
		"dir", collections.Dir(),
		"debounce_seconds", debounceDelay.Seconds(),
	)

	// Initial pass covers whatever changed while we were not running.
	runWatchedPass(ctx, cfg, collections, cacheStore, scraper)

	var mu sync.Mutex
	var pending *time.Timer

	for {
		select {
		case <-ctx.Done():
			slog.Info("watch stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".json") {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Remove) {
				continue
			}
			slog.Debug("collection change detected",
				"file", filepath.Base(event.Name),
				"event", event.Op.String(),
			)
			mu.Lock()
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(debounceDelay, func() {
				runWatchedPass(ctx, cfg, collections, cacheStore, scraper)
			})
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

// runWatchedPass runs one fetch pass with overlap prevention.
func runWatchedPass(
	ctx context.Context,
	cfg *config.Config,
	collections *catalog.Store,
	cacheStore *cache.Store,
	scraper *scrape.Scraper,
) {
	if !passInProgress.CompareAndSwap(false, true) {
		slog.Warn("fetch pass skipped: previous pass still running")
		return
	}
	defer passInProgress.Store(false)

	if ctx.Err() != nil {
		return
	}

	slog.Info("fetch pass started")
	results := runFetchPass(ctx, cfg, collections, cacheStore, scraper, false, false, false)
	slog.Info("fetch pass completed",
		"duration_sec", results.Duration.Seconds(),
		"checked", results.Checked,
		"queued", results.Queued,
		"successful", results.Succeeded,
		"failed", results.Failed,
	)
}
