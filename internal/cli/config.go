package cli

import (
	"bytes"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mondrian/pkg/sink"
)

// configCommand creates the config command, which prints the effective
// configuration as TOML.
func (c *CLI) configCommand() *cobra.Command {
	flags := &generateFlags{}
	var write string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Long: `Print the configuration a generate run with the same flags would use,
after layering defaults, --config and flags. The result is validated and can
be saved with --write and passed back with --config.`,
		Example: `  mondrian config > mondrian.toml
  mondrian config --levels 8 -p "white,red,blue" --write art.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := cfg.Encode(&buf); err != nil {
				return err
			}
			if write == "" {
				_, err := os.Stdout.Write(buf.Bytes())
				return err
			}
			if err := sink.Save(write, buf.Bytes()); err != nil {
				return err
			}
			printSuccess("Wrote configuration")
			printFile(write)
			printNewline()
			printNextStep("Generate", appName+" --config "+write)
			return nil
		},
	}

	addGenerateFlags(cmd, flags)
	cmd.Flags().StringVar(&write, "write", "", "write the configuration to this file instead of stdout")
	return cmd
}
