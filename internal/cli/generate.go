package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mondrian/pkg/config"
	"github.com/matzehuels/mondrian/pkg/gallery"
	"github.com/matzehuels/mondrian/pkg/palette"
	"github.com/matzehuels/mondrian/pkg/pipeline"
	"github.com/matzehuels/mondrian/pkg/sink"
)

// =============================================================================
// Shared composition flags
// =============================================================================

// configFlags are the flags that describe a composition. They are layered
// over the defaults and an optional TOML file; only flags the user actually
// set take effect.
type configFlags struct {
	configPath string
	width      uint32
	height     uint32
	levels     int
	palette    string
	weights    string
	seed       uint64
	workers    int
}

func addConfigFlags(cmd *cobra.Command, f *configFlags) {
	fs := cmd.Flags()
	fs.StringVarP(&f.configPath, "config", "c", "", "TOML configuration file")
	fs.Uint32Var(&f.width, "width", config.DefaultWidth, "canvas width in pixels")
	fs.Uint32Var(&f.height, "height", config.DefaultHeight, "canvas height in pixels")
	fs.IntVarP(&f.levels, "levels", "l", config.DefaultLevels, "subdivision depth")
	fs.StringVarP(&f.palette, "palette", "p", "", "comma-separated colors (names or #rrggbb)")
	fs.StringVarP(&f.weights, "weights", "w", "", "comma-separated palette weights")
	fs.Uint64VarP(&f.seed, "seed", "s", 0, "random seed (0 picks one)")
	fs.IntVar(&f.workers, "workers", 0, "paint with this many goroutines")
}

// resolve builds the effective configuration: defaults, then the config
// file, then explicitly set flags.
func (f *configFlags) resolve(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return config.Config{}, err
		}
	}

	fs := cmd.Flags()
	if fs.Changed("width") {
		cfg.Width = f.width
	}
	if fs.Changed("height") {
		cfg.Height = f.height
	}
	if fs.Changed("levels") {
		cfg.Levels = f.levels
	}
	if fs.Changed("palette") {
		cfg.Palette = palette.SplitList(f.palette)
		cfg.Weights = nil
	}
	if fs.Changed("weights") {
		w, err := palette.ParseWeights(f.weights)
		if err != nil {
			return config.Config{}, err
		}
		cfg.Weights = w
	}
	if fs.Changed("seed") {
		cfg.Seed = f.seed
	}
	if fs.Changed("workers") {
		cfg.Workers = f.workers
	}
	return cfg, nil
}

// =============================================================================
// Generate
// =============================================================================

type generateFlags struct {
	configFlags
	output  string
	formats []string
	scale   float64
	quality int
	noCache bool
	record  bool
}

func addGenerateFlags(cmd *cobra.Command, f *generateFlags) {
	addConfigFlags(cmd, &f.configFlags)
	fs := cmd.Flags()
	fs.StringVarP(&f.output, "output", "o", config.DefaultOutput, "output file")
	fs.StringSliceVarP(&f.formats, "format", "f", nil, "output formats: "+strings.Join(formatNames(), ", "))
	fs.Float64Var(&f.scale, "scale", 1, "downscale raster output by this factor")
	fs.IntVar(&f.quality, "quality", sink.DefaultJPEGQuality, "JPEG quality (1-100)")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable the artifact cache")
	fs.BoolVar(&f.record, "record", false, "save the composition to the local gallery")
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	flags := &generateFlags{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a composition",
		Long: `Generate a Mondrian-style composition and write it to a file.

Settings are layered: built-in defaults, then --config, then flags.
Several formats can be written at once; each gets the output path with
its own extension.`,
		Example: `  mondrian generate
  mondrian generate --width 1920 --height 1080 --levels 7 -o art.png
  mondrian generate --seed 42 -f png,svg,json
  mondrian generate -p "#ffffff,#ff0000,#0000ff" -w 6,1,1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd, flags)
		},
	}
	addGenerateFlags(cmd, flags)
	return cmd
}

// resolve extends the composition settings with output settings.
func (f *generateFlags) resolve(cmd *cobra.Command) (config.Config, []sink.Format, error) {
	cfg, err := f.configFlags.resolve(cmd)
	if err != nil {
		return config.Config{}, nil, err
	}

	fs := cmd.Flags()
	if fs.Changed("output") {
		cfg.Output = f.output
	}
	if fs.Changed("scale") {
		cfg.Scale = f.scale
	}
	if fs.Changed("quality") {
		cfg.Quality = f.quality
	}

	var formats []sink.Format
	for _, name := range f.formats {
		format, err := sink.ParseFormat(name)
		if err != nil {
			return config.Config{}, nil, err
		}
		formats = append(formats, format)
	}
	if len(formats) > 0 {
		cfg.Format = string(formats[0])
	}
	return cfg, formats, nil
}

func (c *CLI) runGenerate(cmd *cobra.Command, flags *generateFlags) error {
	ctx := cmd.Context()

	cfg, formats, err := flags.resolve(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	runner, err := c.newRunner(flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Painting %dx%d at %d levels...", cfg.Width, cfg.Height, cfg.Levels))
	spinner.Start()

	result, err := runner.Execute(ctx, pipeline.Options{
		Config:  cfg,
		Formats: formats,
		NoCache: flags.noCache,
		Logger:  c.Logger,
	})
	if err != nil {
		spinner.StopWithError("Generation failed")
		return err
	}
	spinner.Stop()

	if len(formats) == 0 {
		f, _ := cfg.OutputFormat()
		formats = []sink.Format{f}
	}
	paths := make([]string, len(formats))
	for i, f := range formats {
		paths[i] = outputPath(cfg.Output, f, len(formats) > 1)
		if err := sink.Save(paths[i], result.Artifacts[f]); err != nil {
			return err
		}
	}

	printSuccess("Painted %dx%d canvas", cfg.Width, cfg.Height)
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.Leaves, result.Stats.Border, result.CacheHit)
	printKeyValue("Seed", strconv.FormatUint(result.Seed, 10))

	if flags.record {
		id, err := recordComposition(ctx, cfg, result)
		if err != nil {
			printWarning("Could not save to gallery: %v", err)
		} else {
			printKeyValue("Record", id)
		}
	}

	printNewline()
	printNextStep("Reproduce", replayCommand(cfg, result.Seed))
	return nil
}

func recordComposition(ctx context.Context, cfg config.Config, result *pipeline.Result) (string, error) {
	store, err := newGallery()
	if err != nil {
		return "", err
	}
	defer store.Close()

	rec := gallery.NewRecord(cfg, result.Seed, result.Stats.Leaves, result.Stats.Border)
	if err := store.Put(ctx, rec); err != nil {
		return "", err
	}
	return rec.ID, nil
}

// outputPath returns where format f is written. A path whose extension
// already names f is used as is; otherwise the extension is replaced. With
// a single format, an unrecognized extension is kept.
func outputPath(base string, f sink.Format, multi bool) string {
	pf, err := sink.FormatFromPath(base)
	switch {
	case err == nil && pf == f:
		return base
	case err != nil && !multi:
		return base
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + f.Extension()
}

// replayCommand returns the command line that reproduces a composition.
func replayCommand(cfg config.Config, seed uint64) string {
	parts := []string{appName,
		"--seed", strconv.FormatUint(seed, 10),
		"--width", strconv.FormatUint(uint64(cfg.Width), 10),
		"--height", strconv.FormatUint(uint64(cfg.Height), 10),
		"--levels", strconv.Itoa(cfg.Levels),
	}
	if !slices.Equal(cfg.Palette, palette.DefaultColors) {
		parts = append(parts, "--palette", strconv.Quote(strings.Join(cfg.Palette, ",")))
	}
	if len(cfg.Weights) > 0 && !slices.Equal(cfg.Weights, palette.DefaultWeights) {
		ws := make([]string, len(cfg.Weights))
		for i, w := range cfg.Weights {
			ws[i] = strconv.FormatUint(uint64(w), 10)
		}
		parts = append(parts, "--weights", strings.Join(ws, ","))
	}
	return strings.Join(parts, " ")
}

func formatNames() []string {
	names := make([]string, len(sink.Formats))
	for i, f := range sink.Formats {
		names[i] = string(f)
	}
	return names
}
