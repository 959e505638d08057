package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mondrian/pkg/cache"
	"github.com/matzehuels/mondrian/pkg/compose"
	"github.com/matzehuels/mondrian/pkg/observability"
	"github.com/matzehuels/mondrian/pkg/partition"
	"github.com/matzehuels/mondrian/pkg/sink"
)

const keyTypeArtifact = "artifact"

// Runner executes pipelines against a cache. It holds no per-run state, so
// one Runner may serve concurrent requests.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer uses
// [cache.DefaultKeyer], and a nil logger uses the default logger.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs validate → seed → cache lookup → compose → encode → cache
// store.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	cc, err := opts.Config.Compose()
	if err != nil {
		return nil, err
	}
	if cc.Seed == 0 {
		cc.Seed = compose.RandomSeed()
		r.Logger.Debug("drew random seed", "seed", cc.Seed)
	}

	result := &Result{
		Seed:      cc.Seed,
		Artifacts: make(map[sink.Format][]byte, len(opts.Formats)),
	}

	var hash string
	if opts.Cacheable() {
		if hash, err = CompositionHash(opts.Config, cc.Seed); err != nil {
			return nil, err
		}
		if artifacts, ok := r.lookup(ctx, hash, opts); ok {
			result.Artifacts = artifacts
			result.CacheHit = true
			tree := partition.Build(partition.Canvas(cc.Width, cc.Height), cc.Levels, compose.NewRNG(cc.Seed), cc.SplitOptions...)
			result.Stats.Leaves = tree.LeafCount()
			result.Stats.Border = compose.BorderWidth(cc.Width, cc.Height)
			for _, data := range artifacts {
				result.Stats.Bytes += len(data)
			}
			r.Logger.Info("loaded from cache", "formats", opts.Formats, "seed", cc.Seed)
			return result, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnComposeStart(ctx, cc.Width, cc.Height, cc.Levels)
	start := time.Now()
	comp, err := compose.Compose(ctx, cc)
	result.Stats.ComposeTime = time.Since(start)
	if err != nil {
		hooks.OnComposeComplete(ctx, 0, result.Stats.ComposeTime, err)
		return nil, fmt.Errorf("compose: %w", err)
	}
	hooks.OnComposeComplete(ctx, len(comp.Fills), result.Stats.ComposeTime, nil)

	result.Composition = comp
	result.Stats.Leaves = len(comp.Fills)
	result.Stats.Border = comp.Border
	r.Logger.Info("composed",
		"size", fmt.Sprintf("%dx%d", cc.Width, cc.Height),
		"levels", cc.Levels,
		"leaves", len(comp.Fills),
		"border", comp.Border,
		"seed", comp.Seed,
		"duration", result.Stats.ComposeTime)

	start = time.Now()
	for _, f := range opts.Formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := r.encode(ctx, comp, f, opts)
		if err != nil {
			return nil, err
		}
		result.Artifacts[f] = data
		result.Stats.Bytes += len(data)
	}
	result.Stats.EncodeTime = time.Since(start)
	r.Logger.Info("encoded",
		"formats", opts.Formats,
		"bytes", result.Stats.Bytes,
		"duration", result.Stats.EncodeTime)

	if hash != "" {
		r.store(ctx, hash, opts, result.Artifacts)
	}
	return result, nil
}

// Compose validates opts and returns only the composition, bypassing the
// artifact cache.
func (r *Runner) Compose(ctx context.Context, opts Options) (*compose.Composition, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	cc, err := opts.Config.Compose()
	if err != nil {
		return nil, err
	}
	return compose.Compose(ctx, cc)
}

func (r *Runner) encode(ctx context.Context, comp *compose.Composition, f sink.Format, opts Options) ([]byte, error) {
	hooks := observability.Pipeline()
	hooks.OnEncodeStart(ctx, string(f))
	start := time.Now()
	data, err := sink.Render(comp, f, opts.Config.SinkOptions()...)
	hooks.OnEncodeComplete(ctx, string(f), len(data), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("encoded artifact", "format", f, "bytes", len(data), "duration", time.Since(start))
	return data, nil
}

// lookup returns every requested artifact, or false if any is missing.
func (r *Runner) lookup(ctx context.Context, hash string, opts Options) (map[sink.Format][]byte, bool) {
	hooks := observability.Cache()
	artifacts := make(map[sink.Format][]byte, len(opts.Formats))
	for _, f := range opts.Formats {
		key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(f))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			hooks.OnCacheError(ctx, keyTypeArtifact, err)
			r.Logger.Warn("cache lookup failed", "format", f, "err", err)
			return nil, false
		}
		if !hit {
			hooks.OnCacheMiss(ctx, keyTypeArtifact)
			return nil, false
		}
		hooks.OnCacheHit(ctx, keyTypeArtifact)
		artifacts[f] = data
	}
	return artifacts, true
}

func (r *Runner) store(ctx context.Context, hash string, opts Options, artifacts map[sink.Format][]byte) {
	hooks := observability.Cache()
	for f, data := range artifacts {
		key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(f))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			hooks.OnCacheError(ctx, keyTypeArtifact, err)
			r.Logger.Warn("cache store failed", "format", f, "err", err)
			continue
		}
		hooks.OnCacheSet(ctx, keyTypeArtifact, len(data))
	}
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
