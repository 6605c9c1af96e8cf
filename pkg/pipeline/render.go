package pipeline

import (
	"context"
	stderrors "errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/bullet/pkg/bullet"
	"github.com/matzehuels/bullet/pkg/errors"
	"github.com/matzehuels/bullet/pkg/render"
	"github.com/matzehuels/bullet/pkg/render/sink"
	"github.com/matzehuels/bullet/pkg/render/table"
)

// Render generates output artifacts in the requested formats.
// Formats are rendered concurrently; the first failure cancels the rest.
func Render(ctx context.Context, l *bullet.Layout, opts Options) (map[string][]byte, error) {
	if l == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no layout to render")
	}
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	var (
		mu        sync.Mutex
		artifacts = make(map[string][]byte, len(opts.Formats))
	)
	g, gctx := errgroup.WithContext(ctx)

	// The table DOT source is shared by every table format.
	var dot string
	if opts.IsTable() {
		dot = table.ToDOT(l, table.Options{Theme: opts.ThemeStyle()})
	}

	for _, format := range opts.Formats {
		g.Go(func() error {
			var (
				data []byte
				err  error
			)
			if opts.IsTable() {
				data, err = renderTable(gctx, l, dot, format, opts)
			} else {
				data, err = renderBullet(gctx, l, format, opts)
			}
			if err != nil {
				return renderError(format, err)
			}
			mu.Lock()
			artifacts[format] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

// renderBullet renders the chart itself.
func renderBullet(ctx context.Context, l *bullet.Layout, format string, opts Options) ([]byte, error) {
	theme := opts.ThemeStyle()
	svgOpts := []sink.SVGOption{
		sink.WithTheme(theme),
		sink.WithSize(opts.Width, opts.Height),
		sink.WithReveal(opts.Reveal),
	}

	switch format {
	case FormatSVG:
		return sink.RenderSVG(l, svgOpts...), nil
	case FormatHTML:
		htmlOpts := []sink.HTMLOption{
			sink.WithHTMLTheme(theme),
			sink.WithHTMLReveal(opts.Reveal),
			sink.WithWrapperClass(opts.WrapperClass),
		}
		if opts.Document {
			htmlOpts = append(htmlOpts, sink.WithDocument())
		}
		return sink.RenderHTML(l, htmlOpts...)
	case FormatPNG:
		return sink.RenderPNG(l,
			sink.WithPNGTheme(theme),
			sink.WithPNGSize(opts.Width, opts.Height),
			sink.WithPNGReveal(opts.Reveal),
			sink.WithScale(opts.Scale))
	case FormatPDF:
		return sink.RenderPDF(ctx, l, sink.WithPDFSVGOptions(svgOpts...))
	case FormatJSON:
		return sink.RenderJSON(l, sink.WithJSONTheme(theme.Name), sink.WithJSONReveal(opts.Reveal))
	case FormatText:
		return []byte(sink.RenderText(l,
			sink.WithTextTheme(theme),
			sink.WithColumns(opts.Columns),
			sink.WithPlain(),
			sink.WithLegend())), nil
	}
	return nil, ValidateFormat(VizTypeBullet, format)
}

// renderTable renders the Graphviz breakdown of the layout.
func renderTable(ctx context.Context, l *bullet.Layout, dot, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return table.RenderSVG(ctx, dot)
	case FormatPNG:
		return table.RenderPNG(ctx, dot, opts.Scale)
	case FormatPDF:
		return table.RenderPDF(ctx, dot)
	case FormatJSON:
		return sink.RenderJSON(l, sink.WithJSONTheme(opts.Theme))
	}
	return nil, ValidateFormat(VizTypeTable, format)
}

// RenderEmpty renders the placeholder shown while a chart awaits data.
// Only HTML has a placeholder.
func RenderEmpty(opts Options) ([]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	htmlOpts := []sink.HTMLOption{
		sink.WithHTMLTheme(opts.ThemeStyle()),
		sink.WithWrapperClass(opts.WrapperClass),
	}
	if opts.Document {
		htmlOpts = append(htmlOpts, sink.WithDocument())
	}
	return sink.RenderEmptyHTML(htmlOpts...)
}

// renderError assigns a code to a renderer failure.
func renderError(format string, err error) error {
	switch {
	case errors.GetCode(err) != "":
		return err
	case stderrors.Is(err, render.ErrConverterMissing):
		return errors.Wrap(errors.ErrCodeUnsupported, err, "%s output requires rsvg-convert", format)
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.Wrap(errors.ErrCodeTimeout, err, "render %s timed out", format)
	case stderrors.Is(err, context.Canceled):
		return err
	}
	return errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
}
