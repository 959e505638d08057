package cli

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	apperr "github.com/matzehuels/mondrian/pkg/errors"
	"github.com/matzehuels/mondrian/pkg/pipeline"
	"github.com/matzehuels/mondrian/pkg/render/treeviz"
	"github.com/matzehuels/mondrian/pkg/sink"
)

// treeCommand creates the tree command, which draws the partition tree of a
// composition as a node-link diagram.
func (c *CLI) treeCommand() *cobra.Command {
	flags := &configFlags{}
	var (
		output   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Draw the partition tree of a composition",
		Long: `Draw the binary partition tree behind a composition. Leaves are filled
with the color they were painted; internal nodes show the split axis.

The output format follows the file extension: .dot writes Graphviz source,
.svg and .png are rendered with Graphviz.`,
		Example: `  mondrian tree --seed 42 -o tree.svg
  mondrian tree --seed 42 --levels 3 --detailed -o tree.dot`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}

			runner, err := c.newRunner(true)
			if err != nil {
				return err
			}
			defer runner.Close()

			comp, err := runner.Compose(ctx, pipeline.Options{Config: cfg, Logger: c.Logger})
			if err != nil {
				return err
			}

			prog := newProgress(c.Logger)
			dot := treeviz.ToDOT(comp.Tree, comp.Fills, treeviz.Options{Detailed: detailed})
			var data []byte
			switch ext := strings.ToLower(filepath.Ext(output)); ext {
			case ".dot", ".gv":
				data = []byte(dot)
			case ".svg":
				data, err = treeviz.RenderSVG(ctx, dot)
			case ".png":
				data, err = treeviz.RenderPNG(ctx, dot)
			default:
				return apperr.New(apperr.ErrCodeInvalidFormat, "unsupported tree format %q (use .dot, .svg or .png)", ext)
			}
			if err != nil {
				return fmt.Errorf("render tree: %w", err)
			}
			if err := sink.Save(output, data); err != nil {
				return err
			}
			prog.done("Rendered tree")

			printSuccess("Drew partition tree")
			printFile(output)
			printStats(comp.Tree.LeafCount(), comp.Border, false)
			printKeyValue("Seed", strconv.FormatUint(comp.Seed, 10))
			return nil
		},
	}

	addConfigFlags(cmd, flags)
	cmd.Flags().StringVarP(&output, "output", "o", "tree.svg", "output file (.dot, .svg or .png)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "label nodes with depth, area and palette index")
	return cmd
}
