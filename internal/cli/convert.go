package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	bulletio "github.com/matzehuels/bullet/pkg/io"
	"github.com/matzehuels/bullet/pkg/pipeline"
)

// convertCommand creates the convert command for translating chart files
// between input formats.
func (c *CLI) convertCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "convert [chart file]",
		Short: "Convert a chart file between JSON, TOML and Excel",
		Long: `Convert a chart file between input formats.

Any input format can be read; JSON and Excel (.xlsx) can be written. The
chart is validated before it is written. "-o -" prints JSON to stdout.`,
		Example: `  bullet convert revenue.toml -o revenue.json
  bullet convert revenue.json -o revenue.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := pipeline.Load(args[0])
			if err != nil {
				return err
			}
			if _, err := pipeline.ComputeLayout(in); err != nil {
				return err
			}
			if output == stdoutPath {
				return bulletio.WriteJSON(in, os.Stdout)
			}
			if err := bulletio.Export(in, output); err != nil {
				return fmt.Errorf("convert: %w", err)
			}
			printSuccess("Converted %s", args[0])
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", `output file (.json or .xlsx), or "-" for JSON on stdout`)
	_ = cmd.MarkFlagRequired("output")

	return cmd
}
