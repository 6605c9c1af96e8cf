package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bullet/pkg/pipeline"
)

// stdoutPath is the --output value that writes a single artifact to stdout.
const stdoutPath = "-"

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string // output file (single format) or base path
	formats string // comma-separated output formats
	reveal  string // none, pre or shown
	noCache bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderOpts
	var opts pipeline.Options

	cmd := &cobra.Command{
		Use:   "render [chart file]",
		Short: "Render a bullet chart",
		Long: `Render a bullet chart to one or more output formats.

The chart file is JSON, TOML or Excel (.json, .toml, .xlsx); "-" reads JSON
from stdin. Each format is written next to the input as <name>.<format>
unless --output is given.

Bullet charts (-t bullet) render to svg, html, png, pdf, json and txt.
Table breakdowns (-t table) render to svg, png, pdf, dot and json.

Layouts and artifacts are cached; --refresh recomputes them.`,
		Example: `  bullet render revenue.toml
  bullet render revenue.json -f svg,png --theme dark
  bullet render revenue.json -f html --reveal pre -o chart.html
  bullet render revenue.json -t table -f dot -o -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defaults := c.defaultOptions()
			merged, err := mergeRenderFlags(cmd, defaults, opts, flags)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], merged, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", `output file (single format), base path, or "-" for stdout`)
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output format(s), comma-separated (default from config: svg)")
	cmd.Flags().StringVarP(&opts.VizType, "type", "t", "", "visualization type: bullet (default), table")
	cmd.Flags().StringVar(&opts.Theme, "theme", "", "colour theme: light (default), dark")
	cmd.Flags().StringVar(&flags.reveal, "reveal", "", "reveal state: none (default), pre, shown")
	cmd.Flags().IntVar(&opts.Width, "width", 0, "output width in pixels")
	cmd.Flags().IntVar(&opts.Height, "height", 0, "output height in pixels")
	cmd.Flags().Float64Var(&opts.Scale, "scale", 0, "PNG resolution multiplier")
	cmd.Flags().IntVar(&opts.Columns, "columns", 0, "text output width in characters")
	cmd.Flags().StringVar(&opts.WrapperClass, "wrapper-class", "", "extra CSS class on the HTML wrapper")
	cmd.Flags().BoolVar(&opts.Document, "document", false, "emit a standalone HTML page")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute cached layouts and artifacts")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")

	return cmd
}

// mergeRenderFlags applies the flags the user set on top of the configured
// defaults and validates the result.
func mergeRenderFlags(cmd *cobra.Command, defaults, set pipeline.Options, flags renderOpts) (pipeline.Options, error) {
	opts := defaults
	changed := cmd.Flags().Changed
	if changed("type") {
		opts.VizType = set.VizType
	}
	if changed("theme") {
		opts.Theme = set.Theme
	}
	if changed("width") {
		opts.Width = set.Width
	}
	if changed("height") {
		opts.Height = set.Height
	}
	if changed("scale") {
		opts.Scale = set.Scale
	}
	if changed("columns") {
		opts.Columns = set.Columns
	}
	opts.WrapperClass = set.WrapperClass
	opts.Document = set.Document
	opts.Refresh = set.Refresh

	if changed("format") {
		opts.Formats = parseFormats(flags.formats)
	}
	if opts.VizType == pipeline.VizTypeTable && !changed("format") {
		opts.Formats = tableFormats(opts.Formats)
	}

	reveal, err := pipeline.ParseReveal(flags.reveal)
	if err != nil {
		return opts, err
	}
	opts.Reveal = reveal

	if err := opts.ValidateForRender(); err != nil {
		return opts, err
	}
	if flags.output == stdoutPath && len(opts.Formats) != 1 {
		return opts, fmt.Errorf("--output - needs exactly one format, got %s", strings.Join(opts.Formats, ","))
	}
	return opts, nil
}

// tableFormats drops configured default formats that the table
// visualization cannot produce, falling back to svg.
func tableFormats(formats []string) []string {
	var out []string
	for _, f := range formats {
		if slices.Contains(pipeline.ValidFormats[pipeline.VizTypeTable], f) {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		out = []string{pipeline.FormatSVG}
	}
	return out
}

// runRender loads the chart, runs the pipeline and writes every artifact.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, flags renderOpts) error {
	ctx = withLogger(ctx, c.Logger)
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	in, err := pipeline.Load(input)
	if err != nil {
		return err
	}
	logger.Debugf("Loaded %s", input)

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", strings.Join(opts.Formats, ", ")))
	spinner.Start()

	result, err := runner.Execute(ctx, in, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if flags.output == stdoutPath {
		_, err := os.Stdout.Write(result.Artifacts[opts.Formats[0]])
		return err
	}

	paths := outputPaths(input, flags.output, opts.Formats)
	for _, format := range opts.Formats {
		if err := writeArtifact(paths[format], result.Artifacts[format]); err != nil {
			return err
		}
	}
	prog.done(fmt.Sprintf("Rendered %d artifact(s)", len(opts.Formats)))

	printSuccess("Render complete")
	for _, format := range opts.Formats {
		printFile(paths[format])
	}
	printStats(result.Stats.ItemCount, result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	return nil
}

// outputPaths maps each format to its output file.
//
// A single format with an explicit --output is written there verbatim.
// Otherwise every format is written to <base>.<format>, where base is
// --output (minus a known format extension) or the input path without its
// extension.
func outputPaths(input, output string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if output != "" && len(formats) == 1 {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// basePath derives the base output path from the output and input paths.
func basePath(output, input string) string {
	if output == "" {
		if input == stdoutPath {
			return "chart"
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := strings.TrimPrefix(filepath.Ext(output), ".")
	if _, ok := knownExtensions[ext]; ok {
		return strings.TrimSuffix(output, "."+ext)
	}
	return output
}

var knownExtensions = map[string]struct{}{
	pipeline.FormatSVG:  {},
	pipeline.FormatHTML: {},
	pipeline.FormatPNG:  {},
	pipeline.FormatPDF:  {},
	pipeline.FormatJSON: {},
	pipeline.FormatText: {},
	pipeline.FormatDOT:  {},
}

// writeArtifact writes data to path, creating parent directories.
func writeArtifact(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
