// Package sink provides output format renderers for bullet chart layouts.
//
// # Overview
//
// A "sink" transforms a computed [bullet.Layout] into a final output format:
//
//   - HTML: markup with the three track sections, CSS transitions and hover events
//   - SVG: static vector output drawn with svgo
//   - PNG: native rasterisation, no external tools
//   - PDF: print-ready output (requires rsvg-convert)
//   - JSON: the layout itself, for external renderers
//   - Text: a coloured single-line bar for terminals
//
// # HTML Output
//
// [RenderHTML] mirrors the structure a browser component would produce:
// a wrapper div, then negative, zero and positive sections sized with
// calc(percent - marker) widths. Items are absolutely positioned divs with
// their bucket class, internal style tag (val1, secondaryVal2, scale, ...),
// focus classes and caller class. Labels that are [template.HTML] are
// emitted verbatim; every other label is escaped.
//
//	html, err := sink.RenderHTML(l,
//	    sink.WithHTMLTheme(styles.Dark),
//	    sink.WithWrapperClass("kpi"),
//	    sink.WithDocument(),
//	)
//
// With [WithDocument], the output is a standalone page whose script
// dispatches bullet:itemover and bullet:itemout events carrying the item ID.
//
// # Reveal
//
// Renderers accept a tri-state reveal flag. Unset renders the chart as is;
// false renders the pre-reveal state with every bar collapsed to zero width;
// true renders the revealed state (in HTML, the transition target).
//
// # Pixel Geometry
//
// SVG and PNG share one pixel frame: a label row, the bar band and a row
// for the zero label. Track regions come from [bullet.Track.Pixels].
//
// [bullet.Layout]: github.com/matzehuels/bullet/pkg/bullet.Layout
// [bullet.Track.Pixels]: github.com/matzehuels/bullet/pkg/bullet.Track.Pixels
package sink
