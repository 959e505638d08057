// Package config holds the user-facing settings of a generation run.
//
// Settings come from three layers: [Default], an optional TOML file read by
// [Load], and command-line flags applied by the CLI. A file only overrides the
// keys it sets; unknown keys are rejected so typos do not pass silently.
//
//	width   = 1920
//	height  = 1080
//	levels  = 7
//	palette = ["#ffffff", "red", "#ff0", "0000ff"]
//	weights = [10, 2, 1, 1]
//	seed    = 42
//	output  = "art/mondrian.png"
//
//	[split]
//	ratio_min = 0.3
//	ratio_max = 0.7
package config

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/mondrian/pkg/compose"
	apperr "github.com/matzehuels/mondrian/pkg/errors"
	"github.com/matzehuels/mondrian/pkg/palette"
	"github.com/matzehuels/mondrian/pkg/partition"
	"github.com/matzehuels/mondrian/pkg/sink"
)

// =============================================================================
// Defaults
// =============================================================================

const (
	DefaultWidth  = 4096
	DefaultHeight = 2160
	DefaultLevels = 5
	DefaultOutput = "mondrian.png"

	// MaxLevels bounds the subdivision depth. 2^24 leaves is already far
	// more than any canvas within the dimension limit can show.
	MaxLevels = 24
)

// =============================================================================
// Config
// =============================================================================

// Config is one generation run as the user describes it.
type Config struct {
	Width   uint32   `toml:"width" json:"width" bson:"width"`
	Height  uint32   `toml:"height" json:"height" bson:"height"`
	Levels  int      `toml:"levels" json:"levels" bson:"levels"`
	Palette []string `toml:"palette" json:"palette" bson:"palette"`
	Weights []uint32 `toml:"weights,omitempty" json:"weights,omitempty" bson:"weights,omitempty"`
	// Seed zero means a fresh random seed per run.
	Seed    uint64  `toml:"seed,omitempty" json:"seed,string,omitempty" bson:"seed,omitempty"`
	Output  string  `toml:"output" json:"-" bson:"-"`
	Format  string  `toml:"format,omitempty" json:"format,omitempty" bson:"format,omitempty"`
	Workers int     `toml:"workers,omitempty" json:"-" bson:"-"`
	Scale   float64 `toml:"scale,omitempty" json:"scale,omitempty" bson:"scale,omitempty"`
	Quality int     `toml:"quality,omitempty" json:"quality,omitempty" bson:"quality,omitempty"`
	Split   Split   `toml:"split" json:"split" bson:"split"`
}

// Split tunes the partition ratio range.
type Split struct {
	RatioMin float64 `toml:"ratio_min" json:"ratio_min" bson:"ratio_min"`
	RatioMax float64 `toml:"ratio_max" json:"ratio_max" bson:"ratio_max"`
}

// Default returns the reference configuration.
func Default() Config {
	return Config{
		Width:   DefaultWidth,
		Height:  DefaultHeight,
		Levels:  DefaultLevels,
		Palette: append([]string(nil), palette.DefaultColors...),
		Weights: append([]uint32(nil), palette.DefaultWeights...),
		Output:  DefaultOutput,
		Scale:   1,
		Quality: sink.DefaultJPEGQuality,
		Split: Split{
			RatioMin: partition.DefaultRatioMin,
			RatioMax: partition.DefaultRatioMax,
		},
	}
}

// =============================================================================
// Loading
// =============================================================================

// Load reads a TOML file on top of [Default].
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, apperr.Wrap(apperr.ErrCodeNotFound, err, "config file %s not found", path)
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(string(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML text on top of [Default].
func Parse(data string) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return Config{}, apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, apperr.New(apperr.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	// A palette given without weights falls back to uniform weights rather
	// than inheriting the default weights of a different palette.
	if md.IsDefined("palette") && !md.IsDefined("weights") {
		cfg.Weights = nil
	}
	return cfg, nil
}

// Encode writes cfg as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// =============================================================================
// Validation and conversion
// =============================================================================

// Validate reports the first invalid setting. The generator core assumes a
// validated configuration.
func (c Config) Validate() error {
	if err := apperr.ValidateDimensions(c.Width, c.Height); err != nil {
		return err
	}
	if err := apperr.ValidateLevels(c.Levels, MaxLevels); err != nil {
		return err
	}
	if _, err := c.ColorPalette(); err != nil {
		return err
	}
	if _, err := c.OutputFormat(); err != nil {
		return err
	}
	if c.Scale < 0 || c.Scale > 1 {
		return apperr.New(apperr.ErrCodeInvalidConfig, "scale must be in (0, 1], got %g", c.Scale)
	}
	if c.Workers < 0 {
		return apperr.New(apperr.ErrCodeInvalidConfig, "workers cannot be negative, got %d", c.Workers)
	}
	if c.Quality < 0 || c.Quality > 100 {
		return apperr.New(apperr.ErrCodeInvalidConfig, "quality must be in [1, 100], got %d", c.Quality)
	}
	if s := c.Split; s != (Split{}) {
		if s.RatioMin <= 0 || s.RatioMax >= 1 || s.RatioMin > s.RatioMax {
			return apperr.New(apperr.ErrCodeInvalidConfig, "split ratios must satisfy 0 < ratio_min <= ratio_max < 1, got [%g, %g]", s.RatioMin, s.RatioMax)
		}
	}
	return nil
}

// ColorPalette parses the palette and weights.
func (c Config) ColorPalette() (palette.Palette, error) {
	if len(c.Palette) == 0 {
		return palette.Palette{}, apperr.New(apperr.ErrCodeInvalidColor, "palette cannot be empty")
	}
	return palette.Parse(c.Palette, c.Weights)
}

// OutputFormat returns the explicit format, or the one implied by the
// output path.
func (c Config) OutputFormat() (sink.Format, error) {
	if c.Format != "" {
		return sink.ParseFormat(c.Format)
	}
	if c.Output == "" {
		return sink.FormatPNG, nil
	}
	return sink.FormatFromPath(c.Output)
}

// SplitOptions converts the split table into partition options.
func (c Config) SplitOptions() []partition.Option {
	if c.Split == (Split{}) {
		return nil
	}
	return []partition.Option{partition.WithRatioRange(c.Split.RatioMin, c.Split.RatioMax)}
}

// Compose validates c and converts it into the generator's input.
func (c Config) Compose() (compose.Config, error) {
	if err := c.Validate(); err != nil {
		return compose.Config{}, err
	}
	pal, err := c.ColorPalette()
	if err != nil {
		return compose.Config{}, err
	}
	return compose.Config{
		Width:        c.Width,
		Height:       c.Height,
		Levels:       c.Levels,
		Palette:      pal,
		Seed:         c.Seed,
		Workers:      c.Workers,
		SplitOptions: c.SplitOptions(),
	}, nil
}

// SinkOptions returns the encoder options implied by c.
func (c Config) SinkOptions() []sink.Option {
	var opts []sink.Option
	if c.Scale > 0 && c.Scale < 1 {
		opts = append(opts, sink.WithScale(c.Scale))
	}
	if c.Quality > 0 {
		opts = append(opts, sink.WithQuality(c.Quality))
	}
	return opts
}
