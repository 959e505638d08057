// Package pipeline runs a generation end to end: validate the
// configuration, compose the image, encode every requested format, and
// cache the encoded artifacts.
//
// The CLI and the HTTP server both go through [Runner] so they share one
// code path for defaults, caching and logging.
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Config:  cfg,
//	    Formats: []sink.Format{sink.FormatPNG, sink.FormatJSON},
//	})
//	if err != nil {
//	    return err
//	}
//	png := result.Artifacts[sink.FormatPNG]
//
// Only runs with a fixed seed are cached. A run with seed zero draws a
// random seed, reports it in [Result.Seed], and always regenerates.
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mondrian/pkg/cache"
	"github.com/matzehuels/mondrian/pkg/compose"
	"github.com/matzehuels/mondrian/pkg/config"
	"github.com/matzehuels/mondrian/pkg/sink"
)

// =============================================================================
// Options
// =============================================================================

// Options configures one pipeline run.
type Options struct {
	Config config.Config `json:"config"`

	// Formats to encode. Empty means the format implied by Config.
	Formats []sink.Format `json:"formats,omitempty"`

	// NoCache skips both lookup and store.
	NoCache bool `json:"no_cache,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result is the output of a pipeline run.
type Result struct {
	// Composition is nil when every artifact came from the cache.
	Composition *compose.Composition

	// Seed is the seed actually used, including a randomly drawn one.
	Seed uint64

	// Artifacts holds the encoded bytes keyed by format.
	Artifacts map[sink.Format][]byte

	Stats Stats

	// CacheHit is true when every artifact came from the cache.
	CacheHit bool
}

// Stats records timing and size information.
type Stats struct {
	Leaves      int
	Border      uint32
	ComposeTime time.Duration
	EncodeTime  time.Duration
	Bytes       int
}

// ValidateAndSetDefaults validates the configuration and fills in the
// format list and logger. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.Config.Validate(); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		f, err := o.Config.OutputFormat()
		if err != nil {
			return err
		}
		o.Formats = []sink.Format{f}
	}
	for _, f := range o.Formats {
		if _, err := sink.ParseFormat(string(f)); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Cacheable reports whether the run's artifacts may be cached.
func (o *Options) Cacheable() bool {
	return o.Config.Seed != 0 && !o.NoCache
}

// ArtifactKeyOpts returns the cache key options for one format.
func (o *Options) ArtifactKeyOpts(f sink.Format) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: string(f)}
	if f != sink.FormatJSON && o.Config.Scale > 0 && o.Config.Scale < 1 {
		opts.Scale = o.Config.Scale
	}
	if f == sink.FormatJPEG {
		opts.Quality = o.Config.Quality
	}
	return opts
}

// compositionIdentity is everything that determines the painted pixels.
// Colors are normalized to hex so that "red" and "#ff0000" share entries.
type compositionIdentity struct {
	Width    uint32   `json:"w"`
	Height   uint32   `json:"h"`
	Levels   int      `json:"l"`
	Colors   []string `json:"c"`
	Weights  []uint32 `json:"p"`
	Seed     uint64   `json:"s"`
	RatioMin float64  `json:"rmin"`
	RatioMax float64  `json:"rmax"`
}

// CompositionHash returns a content hash of the settings that determine
// the composition for seed.
func CompositionHash(cfg config.Config, seed uint64) (string, error) {
	pal, err := cfg.ColorPalette()
	if err != nil {
		return "", err
	}
	split := cfg.Split
	if split == (config.Split{}) {
		split = config.Default().Split
	}
	id := compositionIdentity{
		Width:    cfg.Width,
		Height:   cfg.Height,
		Levels:   cfg.Levels,
		Colors:   pal.Hex(),
		Weights:  pal.Weights(),
		Seed:     seed,
		RatioMin: split.RatioMin,
		RatioMax: split.RatioMax,
	}
	h, err := cache.HashValue(id)
	if err != nil {
		return "", fmt.Errorf("composition hash: %w", err)
	}
	return h, nil
}
