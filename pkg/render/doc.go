// Package render turns bullet chart layouts into output formats.
//
// # Overview
//
// Layouts come from [bullet.Configure]; this package tree only draws them:
//
//   - [sink]: native renderers for the bullet visualization (HTML, SVG,
//     PNG, PDF, JSON, terminal text)
//   - [table]: a Graphviz breakdown of every series as an HTML-like table
//   - [styles]: light and dark colour themes shared by all renderers
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). PDF output of both
// visualizations goes through [ToPDF]:
//
//	svg := sink.RenderSVG(layout, sink.WithTheme(styles.Dark))
//	pdf, err := render.ToPDF(ctx, svg)
//
// [bullet.Configure]: github.com/matzehuels/bullet/pkg/bullet.Configure
// [sink]: github.com/matzehuels/bullet/pkg/render/sink
// [table]: github.com/matzehuels/bullet/pkg/render/table
// [styles]: github.com/matzehuels/bullet/pkg/render/styles
package render
