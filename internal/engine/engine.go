package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"vidstitch/internal/batch"
	"vidstitch/internal/config"
	"vidstitch/internal/encoder"
	"vidstitch/internal/fileutil"
	"vidstitch/internal/logging"
	"vidstitch/internal/media/ffprobe"
	"vidstitch/internal/services"
)

// FetchStage obtains raw media for one entry.
type FetchStage interface {
	Fetch(ctx context.Context, entry *batch.Entry, index, total int) error
}

// NormalizeStage converts one fetched entry to the canonical format.
type NormalizeStage interface {
	Normalize(ctx context.Context, entry *batch.Entry, index, total int) error
}

// Options bundles everything an Engine needs at construction.
type Options struct {
	Config     *config.Config
	Profile    encoder.Profile
	Fetcher    FetchStage
	Normalizer NormalizeStage
	Entries    []*batch.Entry
	Logger     *slog.Logger
	LogSink    LogSink
	Progress   ProgressSink
}

// Engine runs the four-stage pipeline over one batch.
type Engine struct {
	cfg        *config.Config
	profile    encoder.Profile
	fetcher    FetchStage
	normalizer NormalizeStage
	entries    []*batch.Entry
	logger     *slog.Logger
	logSink    LogSink
	progress   ProgressSink
	runID      string

	mu       sync.Mutex
	cancelFn context.CancelFunc

	// Injectable seams for tests.
	runCommand    func(ctx context.Context, stage, binary string, args []string) error
	probeDuration func(ctx context.Context, path string) float64
	copyFile      func(src, dst string) error
	moveFile      func(src, dst string) error
}

// New constructs an Engine. Nil sinks default to no-ops.
func New(opts Options) *Engine {
	logSink, progress := opts.LogSink, opts.Progress
	if logSink == nil || progress == nil {
		nopLog, nopProgress := NopSinks()
		if logSink == nil {
			logSink = nopLog
		}
		if progress == nil {
			progress = nopProgress
		}
	}
	e := &Engine{
		cfg:        opts.Config,
		profile:    opts.Profile,
		fetcher:    opts.Fetcher,
		normalizer: opts.Normalizer,
		entries:    opts.Entries,
		logger:     logging.NewComponentLogger(opts.Logger, "engine"),
		logSink:    logSink,
		progress:   progress,
		runID:      uuid.NewString(),
	}
	e.runCommand = services.RunCommand
	e.probeDuration = func(ctx context.Context, path string) float64 {
		return ffprobe.Duration(ctx, opts.Config.Tools.FFprobe, path)
	}
	e.copyFile = fileutil.CopyFile
	e.moveFile = fileutil.MoveFile
	return e
}

// Cancel requests a cooperative stop of the active run. Safe to call from
// any goroutine; in-flight external processes are left to finish, but no new
// work starts and loops exit at their next check. With no run in flight it
// is a no-op.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancelFn != nil {
		e.cancelFn()
	}
}

// Run executes the full pipeline. It returns an error when no output could
// be produced; partial per-entry failures are tolerated as long as at least
// one entry survives each stage.
func (e *Engine) Run(ctx context.Context) error {
	total := len(e.entries)
	if total == 0 {
		return services.Wrap(services.ErrValidation, "engine", "run", "batch is empty", nil)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.mu.Lock()
	e.cancelFn = cancel
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.cancelFn = nil
		e.mu.Unlock()
	}()

	if err := e.cfg.EnsureDirectories(); err != nil {
		return services.Wrap(services.ErrConfiguration, "engine", "run", "", err)
	}

	// One run at a time per cache directory: the encoder behind it is a
	// singleton hardware resource.
	runLock := flock.New(filepath.Join(e.cfg.Paths.CacheDir, ".vidstitch.lock"))
	locked, err := runLock.TryLock()
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "engine", "lock", "", err)
	}
	if !locked {
		return services.Wrap(services.ErrConfiguration, "engine", "lock",
			"another run is already using this cache", nil)
	}
	defer func() { _ = runLock.Unlock() }()

	e.logf("engine: %s | %d entries | %s", e.profile.Label(), total, e.cfg.Output.Resolution)

	if err := e.stageFetch(runCtx); err != nil {
		return err
	}
	if err := e.stageNormalize(runCtx); err != nil {
		return err
	}
	if err := e.stageMerge(runCtx); err != nil {
		return err
	}
	e.stageMusic(runCtx)

	e.progress.StageProgress(StageFinalize, 1, 1)
	for _, entry := range e.entries {
		if entry.Status() == batch.StatusNormalized {
			entry.SetStatus(batch.StatusDone, "")
		}
	}
	e.logf("done: %s", e.cfg.Output.Path)
	return nil
}

// stageFetch submits every entry to a bounded worker pool and waits for the
// batch to settle. Individual failures are tolerated; only a fully failed
// stage aborts the run.
func (e *Engine) stageFetch(ctx context.Context) error {
	total := len(e.entries)
	e.logf("stage 1/4: fetching %d source(s), %d at a time", total, e.cfg.Fetch.MaxConcurrent)

	sem := make(chan struct{}, e.cfg.Fetch.MaxConcurrent)
	var wg sync.WaitGroup
	var completed atomic.Int64

	for i, entry := range e.entries {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, entry *batch.Entry) {
			defer wg.Done()
			defer func() { <-sem }()
			_ = e.fetcher.Fetch(ctx, entry, i, total)
			e.progress.StageProgress(StageFetch, int(completed.Add(1)), total)
		}(i, entry)
	}
	wg.Wait()

	if ctx.Err() != nil {
		e.markPendingCancelled()
		return ctx.Err()
	}

	ok := e.countStatus(batch.StatusFetched)
	if ok == 0 {
		e.logf("all downloads failed")
		return services.Wrap(services.ErrTransient, "engine", "fetch", "no entry was fetched", nil)
	}
	if ok < total {
		e.logf("%d download(s) failed, continuing with %d", total-ok, ok)
	}
	return nil
}

// stageNormalize walks entries in original batch order, one at a time.
func (e *Engine) stageNormalize(ctx context.Context) error {
	total := len(e.entries)
	e.logf("stage 2/4: normalizing")

	for i, entry := range e.entries {
		if ctx.Err() != nil {
			e.markPendingCancelled()
			return ctx.Err()
		}
		if entry.Status() == batch.StatusFetched {
			_ = e.normalizer.Normalize(ctx, entry, i, total)
		}
		e.progress.StageProgress(StageNormalize, i+1, total)
	}

	if e.countStatus(batch.StatusNormalized) == 0 {
		e.logf("no entries were normalized")
		return services.Wrap(services.ErrTransient, "engine", "normalize", "no entry was normalized", nil)
	}
	return nil
}

func (e *Engine) countStatus(status batch.Status) int {
	count := 0
	for _, entry := range e.entries {
		if entry.Status() == status {
			count++
		}
	}
	return count
}

func (e *Engine) markPendingCancelled() {
	for _, entry := range e.entries {
		if entry.Status() == batch.StatusPending {
			entry.SetStatus(batch.StatusCancelled, "")
		}
	}
}

func (e *Engine) logf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	e.logSink.Log(line)
	e.logger.Info(line)
}

// normalizedPaths returns, in original batch order, the normalized files
// that still exist on disk.
func (e *Engine) normalizedPaths() []string {
	var paths []string
	for _, entry := range e.entries {
		if entry.NormalizedPath == "" {
			continue
		}
		if _, err := os.Stat(entry.NormalizedPath); err != nil {
			continue
		}
		paths = append(paths, entry.NormalizedPath)
	}
	return paths
}
