// Package table renders a bullet chart as a Graphviz breakdown diagram.
//
// # Overview
//
// The table visualization is a companion to the bullet chart itself. It
// shows the track split into its negative, zero and positive regions, and
// below it one row per positioned item with its series, style tag, value,
// bucket, width and offset. Every row carries a swatch in the item's theme
// colour, so the diagram doubles as a legend.
//
// # Usage
//
//	dot := table.ToDOT(l, table.Options{Theme: styles.Light})
//	svg, err := table.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := table.RenderPDF(ctx, dot)
//	png, err := table.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # DOT Format
//
// Both nodes use Graphviz HTML-like labels. The DOT source can be saved
// and processed with external Graphviz tools.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package table
