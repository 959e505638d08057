package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mondrian/pkg/compose"
	"github.com/matzehuels/mondrian/pkg/palette"
)

// paletteCommand creates the palette command.
func (c *CLI) paletteCommand() *cobra.Command {
	flags := &configFlags{}
	var samples int

	cmd := &cobra.Command{
		Use:   "palette",
		Short: "Show the effective palette and its weights",
		Long: `Show the palette a composition would use, with each color's weight and
its share of the total. With --samples, draw that many colors using the
configured seed and report how often each one came up.`,
		Example: `  mondrian palette
  mondrian palette -p "white,red,#f5c400,navy" -w 8,2,1,1
  mondrian palette --samples 10000 --seed 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			pal, err := cfg.ColorPalette()
			if err != nil {
				return err
			}

			var counts []int
			if samples > 0 {
				seed := cfg.Seed
				if seed == 0 {
					seed = compose.RandomSeed()
				}
				counts = samplePalette(pal, seed, samples)
				c.Logger.Debug("sampled palette", "samples", samples, "seed", seed)
			}

			printPalette(pal, counts)
			return nil
		},
	}

	addConfigFlags(cmd, flags)
	cmd.Flags().IntVar(&samples, "samples", 0, "draw this many colors and show the observed frequencies")
	return cmd
}

// samplePalette draws n palette indices and counts them.
func samplePalette(pal palette.Palette, seed uint64, n int) []int {
	counts := make([]int, pal.Len())
	s := pal.Sampler()
	rng := compose.NewRNG(seed)
	for range n {
		counts[s.Sample(rng)]++
	}
	return counts
}

func printPalette(pal palette.Palette, counts []int) {
	weights := pal.Weights()
	var total uint64
	for _, w := range weights {
		total += uint64(w)
	}
	var drawn int
	for _, n := range counts {
		drawn += n
	}

	fmt.Println(StyleTitle.Render("Palette"))
	for i, hex := range pal.Hex() {
		share := 100 * float64(weights[i]) / float64(total)
		line := fmt.Sprintf("  %s %s  %s %s",
			swatch(hex, 4),
			StyleValue.Render(hex),
			StyleNumber.Render(fmt.Sprintf("%4d", weights[i])),
			StyleDim.Render(fmt.Sprintf("%5.1f%%", share)),
		)
		if counts != nil && drawn > 0 {
			line += StyleDim.Render("  observed ") + StyleNumber.Render(fmt.Sprintf("%5.1f%%", 100*float64(counts[i])/float64(drawn)))
		}
		fmt.Println(line)
	}
	if counts != nil {
		printDetail("%s samples", strconv.Itoa(drawn))
	}
}
