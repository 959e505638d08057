package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	apperr "github.com/matzehuels/mondrian/pkg/errors"
	"github.com/matzehuels/mondrian/pkg/gallery"
	"github.com/matzehuels/mondrian/pkg/pipeline"
	"github.com/matzehuels/mondrian/pkg/sink"
)

// galleryCommand creates the gallery command for compositions saved with
// --record.
func (c *CLI) galleryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gallery",
		Short: "Browse and replay recorded compositions",
	}

	cmd.AddCommand(c.galleryListCommand())
	cmd.AddCommand(c.galleryShowCommand())
	cmd.AddCommand(c.galleryReplayCommand())
	cmd.AddCommand(c.galleryDeleteCommand())
	cmd.AddCommand(c.galleryPathCommand())

	return cmd
}

func (c *CLI) galleryListCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded compositions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newGallery()
			if err != nil {
				return err
			}
			defer store.Close()

			recs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				printInfo("Gallery is empty")
				printDetail("Record a composition with: %s --record", appName)
				return nil
			}
			for _, r := range recs {
				fmt.Printf("%s  %s  %s\n",
					StyleHighlight.Render(r.ID),
					StyleDim.Render(r.CreatedAt.Local().Format("2006-01-02 15:04")),
					StyleValue.Render(fmt.Sprintf("%dx%d L%d seed %d", r.Config.Width, r.Config.Height, r.Config.Levels, r.Seed)),
				)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", gallery.DefaultListLimit, "maximum number of records")
	return cmd
}

func (c *CLI) galleryShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show the settings of a recorded composition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := loadRecord(cmd, args[0])
			if err != nil {
				return err
			}
			cfg := rec.ReplayConfig()
			printKeyValue("ID", rec.ID)
			printKeyValue("Created", rec.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			printKeyValue("Canvas", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height))
			printKeyValue("Levels", strconv.Itoa(cfg.Levels))
			printKeyValue("Seed", strconv.FormatUint(rec.Seed, 10))
			printKeyValue("Rectangles", strconv.Itoa(rec.Leaves))
			printKeyValue("Border", fmt.Sprintf("%dpx", rec.Border))
			printKeyValue("Palette", strings.Join(cfg.Palette, ", "))
			printNewline()
			printNextStep("Replay", fmt.Sprintf("%s gallery replay %s", appName, rec.ID))
			return nil
		},
	}
}

func (c *CLI) galleryReplayCommand() *cobra.Command {
	var (
		output  string
		formats []string
	)
	cmd := &cobra.Command{
		Use:   "replay <id>",
		Short: "Regenerate a recorded composition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rec, err := loadRecord(cmd, args[0])
			if err != nil {
				return err
			}

			cfg := rec.ReplayConfig()
			if output != "" {
				cfg.Output = output
			} else {
				cfg.Output = rec.ID + ".png"
			}
			var fs []sink.Format
			for _, name := range formats {
				f, err := sink.ParseFormat(name)
				if err != nil {
					return err
				}
				fs = append(fs, f)
			}
			if len(fs) == 0 {
				f, err := cfg.OutputFormat()
				if err != nil {
					return err
				}
				fs = []sink.Format{f}
			}
			cfg.Format = string(fs[0])

			runner, err := c.newRunner(false)
			if err != nil {
				return err
			}
			defer runner.Close()

			spinner := newSpinnerWithContext(ctx, "Replaying "+rec.ID+"...")
			spinner.Start()
			result, err := runner.Execute(ctx, pipeline.Options{Config: cfg, Formats: fs, Logger: c.Logger})
			if err != nil {
				spinner.StopWithError("Replay failed")
				return err
			}
			spinner.Stop()

			printSuccess("Replayed %s", rec.ID)
			for _, f := range fs {
				path := outputPath(cfg.Output, f, len(fs) > 1)
				if err := sink.Save(path, result.Artifacts[f]); err != nil {
					return err
				}
				printFile(path)
			}
			printStats(result.Stats.Leaves, result.Stats.Border, result.CacheHit)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <id>.png)")
	cmd.Flags().StringSliceVarP(&formats, "format", "f", nil, "output formats")
	return cmd
}

func (c *CLI) galleryDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a recorded composition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newGallery()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				if errors.Is(err, gallery.ErrNotFound) {
					return apperr.Wrap(apperr.ErrCodeNotFound, err, "no record %s", args[0])
				}
				return err
			}
			printSuccess("Deleted %s", args[0])
			return nil
		},
	}
}

func (c *CLI) galleryPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the gallery directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := galleryDir()
			if err != nil {
				return fmt.Errorf("get gallery dir: %w", err)
			}
			fmt.Println(dir)
			return nil
		},
	}
}

func loadRecord(cmd *cobra.Command, id string) (*gallery.Record, error) {
	store, err := newGallery()
	if err != nil {
		return nil, err
	}
	defer store.Close()

	rec, err := store.Get(cmd.Context(), id)
	if errors.Is(err, gallery.ErrNotFound) {
		return nil, apperr.Wrap(apperr.ErrCodeNotFound, err, "no record %s", id)
	}
	return rec, err
}
