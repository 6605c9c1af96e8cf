package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bullet/pkg/pipeline"
)

// layoutCommand creates the layout command for inspecting a computed layout.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		asJSON  bool
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "layout [chart file]",
		Short: "Print the computed axis layout of a chart",
		Long: `Print the computed axis layout of a chart.

The summary shows the axis range, the derived or explicit scale, the track
split between negative and positive values, and one row per positioned
item. --json prints the layout exactly as the json format renders it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], asJSON, noCache, refresh)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the layout as JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute a cached layout")

	return cmd
}

// runLayout loads the chart, computes its layout and prints it.
func (c *CLI) runLayout(ctx context.Context, input string, asJSON, noCache, refresh bool) error {
	in, err := pipeline.Load(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := c.defaultOptions()
	opts.Refresh = refresh
	l, hit, err := runner.ComputeLayoutWithCacheInfo(ctx, in, opts)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(l)
	}

	fmt.Println(StyleTitle.Render(input))
	printLayout(l)
	printStats(len(l.Items), hit)
	printNewline()
	printNextStep("Render", appName+" render "+input)
	return nil
}
