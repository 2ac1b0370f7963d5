package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"vidstitch/internal/batch"
	"vidstitch/internal/config"
	"vidstitch/internal/logging"
	"vidstitch/internal/manifest"
	"vidstitch/internal/services"
)

// errMsgBytes bounds the error text recorded on an entry.
const errMsgBytes = 120

// Fetcher downloads the raw media for one entry at a time. A single Fetcher
// is shared by all fetch workers; it holds no per-entry state.
type Fetcher struct {
	cfg    *config.Config
	runner Runner
	store  *manifest.Store
	logger *slog.Logger

	// sleep is swapped in tests to observe backoff without waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Fetcher. The manifest store may be nil, disabling the cache
// short-circuit.
func New(cfg *config.Config, runner Runner, store *manifest.Store, logger *slog.Logger) *Fetcher {
	if runner == nil {
		runner = NewRunner(cfg.Tools.YtDlp)
	}
	return &Fetcher{
		cfg:    cfg,
		runner: runner,
		store:  store,
		logger: logging.NewComponentLogger(logger, "fetch"),
		sleep:  sleepCtx,
	}
}

// Fetch obtains the raw media for entry, honoring the batch resolution
// ceiling, with cache reuse and bounded retry. The entry ends in fetched,
// error, or cancelled state.
func (f *Fetcher) Fetch(ctx context.Context, entry *batch.Entry, index, total int) error {
	if ctx.Err() != nil {
		entry.SetStatus(batch.StatusCancelled, "")
		return ctx.Err()
	}

	height := f.cfg.ResolutionHeight()

	if f.restoreFromCache(ctx, entry, height, index, total) {
		return nil
	}

	var lastErr error
	for attempt := 1; attempt <= f.cfg.Fetch.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			entry.SetStatus(batch.StatusCancelled, "")
			return ctx.Err()
		}

		entry.SetStatus(batch.StatusFetching, "")
		entry.SetProgress(0)
		f.logger.Info("downloading",
			logging.String("url", entry.URL),
			logging.Int("index", index+1),
			logging.Int("total", total),
			logging.Int("attempt", attempt))

		err := f.attempt(ctx, entry, height)
		if err == nil {
			f.logger.Info("download complete",
				logging.String("title", entry.Title),
				logging.String("path", entry.DownloadedPath))
			return nil
		}
		lastErr = err

		f.logger.Warn("download attempt failed",
			logging.String("url", entry.URL),
			logging.Int("attempt", attempt),
			logging.Error(err))

		if attempt < f.cfg.Fetch.MaxRetries {
			wait := time.Duration(math.Pow(2, float64(attempt))) * time.Second
			f.logger.Info("retrying", logging.Duration("backoff", wait))
			if sleepErr := f.sleep(ctx, wait); sleepErr != nil {
				entry.SetStatus(batch.StatusCancelled, "")
				return sleepErr
			}
		}
	}

	entry.SetStatus(batch.StatusError, services.Truncate(lastErr.Error(), errMsgBytes))
	f.logger.Error("download failed permanently", logging.String("url", entry.URL))
	return lastErr
}

// attempt runs one yt-dlp invocation and resolves its results onto the entry.
func (f *Fetcher) attempt(ctx context.Context, entry *batch.Entry, height int) error {
	req := Request{
		URL:                 entry.URL,
		CacheDir:            f.cfg.Paths.CacheDir,
		Height:              height,
		ConcurrentFragments: f.cfg.Fetch.ConcurrentFragments,
	}

	meta, err := f.runner.Run(ctx, req, func(downloaded, total int64) {
		if total > 0 {
			entry.SetProgress(float64(downloaded) / float64(total))
		}
	})
	if err != nil {
		return err
	}

	located := resolveOutputPath(meta.Filename)
	if located == "" {
		return services.Wrap(services.ErrNotFound, "fetch", "resolve output",
			fmt.Sprintf("downloaded file missing for %s", meta.ID), nil)
	}

	entry.SetMetadata(batch.SanitizeTitle(meta.Title), meta.ID, meta.Duration, meta.ThumbnailURL, located)
	entry.SetStatus(batch.StatusFetched, "")

	f.recordManifest(ctx, entry, height)
	return nil
}

// restoreFromCache checks the manifest for a previous fetch of the same URL
// at the same resolution ceiling and, when the artifact still exists, marks
// the entry fetched without touching the network.
func (f *Fetcher) restoreFromCache(ctx context.Context, entry *batch.Entry, height, index, total int) bool {
	if f.store == nil {
		return false
	}
	rec, ok, err := f.store.Lookup(ctx, entry.URL, height)
	if err != nil {
		f.logger.Warn("manifest lookup failed", logging.Error(err))
		return false
	}
	if !ok {
		return false
	}

	entry.SetMetadata(rec.Title, rec.VideoID, rec.Duration, rec.ThumbnailURL, rec.Path)
	entry.SetStatus(batch.StatusFetched, "")
	f.logger.Info("cache hit, skipping download",
		logging.String("title", entry.Title),
		logging.Int("index", index+1),
		logging.Int("total", total))
	return true
}

func (f *Fetcher) recordManifest(ctx context.Context, entry *batch.Entry, height int) {
	if f.store == nil {
		return
	}
	err := f.store.Put(ctx, manifest.Record{
		URL:          entry.URL,
		Height:       height,
		VideoID:      entry.VideoID,
		Title:        entry.Title,
		Duration:     entry.Duration,
		ThumbnailURL: entry.ThumbnailURL,
		Path:         entry.DownloadedPath,
	})
	if err != nil {
		f.logger.Warn("manifest record failed", logging.Error(err))
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
