package convert

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/loomtools/dtxwif/internal/fsutil"
	"github.com/loomtools/dtxwif/pkg/cache"
	errs "github.com/loomtools/dtxwif/pkg/errors"
	"github.com/loomtools/dtxwif/pkg/observability"
	"github.com/loomtools/dtxwif/pkg/pattern"
	"github.com/loomtools/dtxwif/pkg/wif"
)

// Runner converts files with caching.
// Both CLI and HTTP service use it so conversions behave the same everywhere.
//
// A Runner holds no per-conversion state; multiple goroutines can safely use
// the same Runner.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Logger  *log.Logger
	Options Options

	// OnResult, if set, is called as each file of a batch finishes. Calls
	// are serialized.
	OnResult func(Result)

	mu sync.Mutex
}

// NewRunner creates a runner.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// If logger is nil, log output is discarded.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger, opts Options) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = cache.TTLConversion
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Logger:  logger,
		Options: opts,
	}
}

// ConvertAll converts paths with bounded parallelism. A failure converting
// one file does not stop the others. Results are in input order.
func (r *Runner) ConvertAll(ctx context.Context, paths []string) []Result {
	runID := uuid.NewString()
	logger := r.Logger.With("run", runID[:8])
	logger.Debug("starting batch", "files", len(paths), "workers", r.Options.Workers)
	start := time.Now()

	results := make([]Result, len(paths))
	var g errgroup.Group
	g.SetLimit(r.Options.Workers)
	for i, path := range paths {
		g.Go(func() error {
			results[i] = r.convert(ctx, path, logger)
			r.notify(results[i])
			return nil
		})
	}
	_ = g.Wait()

	s := Summarize(results)
	logger.Debug("batch complete",
		"written", s.Written,
		"overwritten", s.Overwritten,
		"skipped", s.Skipped,
		"failed", s.Failed,
		"duration", time.Since(start))
	return results
}

// Convert converts a single file.
func (r *Runner) Convert(ctx context.Context, path string) Result {
	return r.convert(ctx, path, r.Logger)
}

func (r *Runner) convert(ctx context.Context, path string, logger *log.Logger) Result {
	start := time.Now()
	res := Result{Source: path, Dest: Destination(path, r.Options.OutputDir)}
	fail := func(err error) Result {
		res.Status = StatusFailed
		res.Err = err
		res.Duration = time.Since(start)
		logger.Debug("conversion failed", "source", path, "err", err)
		return res
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	f, err := ForPath(path)
	if err != nil {
		return fail(err)
	}
	res.Format = f

	res.Status = StatusWritten
	if _, err := os.Stat(res.Dest); err == nil {
		if !r.Options.Overwrite {
			res.Status = StatusSkipped
			res.Duration = time.Since(start)
			logger.Debug("destination exists", "dest", res.Dest)
			return res
		}
		res.Status = StatusOverwritten
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fail(errs.Wrap(errs.ErrCodeIO, err, "read %s", path))
	}

	out, err := r.ConvertBytes(ctx, f, filepath.Base(path), wif.Title(res.Dest), data)
	if err != nil {
		return fail(err)
	}
	res.Pattern = out.Pattern
	res.CacheHit = out.CacheHit
	res.Size = len(out.Data)

	if err := fsutil.WriteFileAtomic(res.Dest, out.Data, 0o644); err != nil {
		return fail(errs.Wrap(errs.ErrCodeIO, err, "write %s", res.Dest))
	}
	res.Duration = time.Since(start)
	logger.Debug("converted", "source", path, "dest", res.Dest, "bytes", res.Size, "cached", res.CacheHit, "duration", res.Duration)
	return res
}

// Output is the result of ConvertBytes.
type Output struct {
	Data     []byte
	Pattern  *pattern.Pattern // nil on a cache hit
	CacheHit bool
}

// ConvertBytes decodes source data in format f and encodes it as WIF with
// the given title. name identifies the source in errors. Results are cached
// by content.
func (r *Runner) ConvertBytes(ctx context.Context, f *Format, name, title string, data []byte) (out Output, err error) {
	start := time.Now()
	hooks := observability.Convert()
	hooks.OnConvertStart(ctx, f.Name, name)
	defer func() {
		hooks.OnConvertComplete(ctx, f.Name, name, len(out.Data), time.Since(start), err)
	}()

	key := r.Keyer.ConversionKey(cache.ConversionKeyOpts{
		CodecVersion: CodecVersion,
		Format:       f.Name,
		Title:        title,
		SourceHash:   cache.Hash(data),
	})
	if cached, hit, cerr := r.Cache.Get(ctx, key); cerr == nil && hit {
		observability.Cache().OnCacheHit(ctx, "wif")
		return Output{Data: cached, CacheHit: true}, nil
	} else if cerr != nil {
		r.Logger.Warn("cache read failed", "err", cerr)
	}
	observability.Cache().OnCacheMiss(ctx, "wif")

	p, err := f.Decode(data, name)
	if err != nil {
		return Output{}, err
	}
	encoded, err := wif.Encode(p, title)
	if err != nil {
		return Output{}, err
	}

	if err := r.Cache.Set(ctx, key, encoded, r.Options.CacheTTL); err != nil {
		r.Logger.Warn("cache write failed", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "wif", len(encoded))
	}
	return Output{Data: encoded, Pattern: p}, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) notify(res Result) {
	if r.OnResult == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.OnResult(res)
}
