package table

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/bullet/pkg/bullet"
	"github.com/matzehuels/bullet/pkg/render"
	"github.com/matzehuels/bullet/pkg/render/styles"
)

// DefaultTrackWidth is the width of the track node in points.
const DefaultTrackWidth = 360

// Options configures breakdown rendering.
type Options struct {
	Theme styles.Theme
	// TrackWidth is the width of the track node in points.
	TrackWidth float64
}

func (o Options) withDefaults() Options {
	if o.Theme.Name == "" {
		o.Theme = styles.Light
	}
	if o.TrackWidth <= 0 {
		o.TrackWidth = DefaultTrackWidth
	}
	return o
}

// ToDOT converts a layout to Graphviz DOT: a track node and a breakdown
// node joined by an edge. The result can be rendered using [RenderSVG],
// [RenderPDF], or [RenderPNG].
func ToDOT(l *bullet.Layout, opts Options) string {
	opts = opts.withDefaults()
	t := opts.Theme

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	fmt.Fprintf(&buf, "  bgcolor=%q;\n", t.Background)
	fmt.Fprintf(&buf, "  node [shape=plain, fontname=%q, fontsize=11, fontcolor=%q];\n", fontName(t), t.Text)
	fmt.Fprintf(&buf, "  edge [color=%q, arrowhead=none, style=dashed];\n", t.ScaleLabel)
	buf.WriteString("  ranksep=0.3;\n")
	buf.WriteString("\n")

	fmt.Fprintf(&buf, "  track [label=<%s>];\n", trackTable(l, opts))
	fmt.Fprintf(&buf, "  items [label=<%s>];\n", itemsTable(l, t))
	buf.WriteString("\n")
	buf.WriteString("  track -> items;\n")
	buf.WriteString("}\n")
	return buf.String()
}

func trackTable(l *bullet.Layout, opts Options) string {
	t := opts.Theme
	var b strings.Builder
	b.WriteString(`<TABLE BORDER="0" CELLBORDER="0" CELLSPACING="0" CELLPADDING="0">`)
	cols := 1
	if !l.Degenerate {
		cols = max(1, visibleRegions(l.Track))
	}
	fmt.Fprintf(&b, `<TR><TD COLSPAN="%d" CELLPADDING="4">%s</TD></TR>`, cols, esc(trackCaption(l)))

	if l.Degenerate {
		fmt.Fprintf(&b, `<TR><TD WIDTH="%d" HEIGHT="18" BGCOLOR=%q></TD></TR>`, int(opts.TrackWidth), t.Scale)
		b.WriteString(`</TABLE>`)
		return b.String()
	}

	neg, zero, pos := l.Track.Pixels(opts.TrackWidth)
	b.WriteString("<TR>")
	if l.Track.Negative.Visible {
		fmt.Fprintf(&b, `<TD WIDTH="%d" HEIGHT="18" BGCOLOR=%q></TD>`, cellWidth(neg), t.Scale)
	}
	if l.Track.Zero.Visible {
		fmt.Fprintf(&b, `<TD WIDTH="%d" HEIGHT="18" BGCOLOR=%q></TD>`, cellWidth(zero), t.ZeroLine)
	}
	if l.Track.Positive.Visible {
		fmt.Fprintf(&b, `<TD WIDTH="%d" HEIGHT="18" BGCOLOR=%q></TD>`, cellWidth(pos), t.Scale)
	}
	b.WriteString("</TR></TABLE>")
	return b.String()
}

func visibleRegions(t bullet.Track) int {
	n := 0
	for _, r := range []bullet.TrackBucket{t.Negative, t.Zero, t.Positive} {
		if r.Visible {
			n++
		}
	}
	return n
}

// trackCaption summarises the range and region percentages.
func trackCaption(l *bullet.Layout) string {
	parts := []string{fmt.Sprintf("range %s .. %s (total %s)",
		bullet.FormatValue(l.Range.Min), bullet.FormatValue(l.Range.Max), bullet.FormatValue(l.Range.Total))}
	if l.Degenerate {
		return parts[0] + ": no extent"
	}
	if l.Track.Negative.Visible {
		parts = append(parts, "negative "+pct(l.Track.Negative.Percent)+"%")
	}
	if l.Track.Zero.Visible {
		parts = append(parts, "zero marker")
	}
	if l.Track.Positive.Visible {
		parts = append(parts, "positive "+pct(l.Track.Positive.Percent)+"%")
	}
	return strings.Join(parts, " | ")
}

var itemColumns = []string{"", "series", "tag", "value", "bucket", "width %", "offset %", "label"}

func itemsTable(l *bullet.Layout, t styles.Theme) string {
	var b strings.Builder
	b.WriteString(`<TABLE BORDER="1" CELLBORDER="1" CELLSPACING="0" CELLPADDING="4">`)
	b.WriteString("<TR>")
	for _, c := range itemColumns {
		// Graphviz rejects an empty <B></B>.
		if c == "" {
			b.WriteString("<TD></TD>")
			continue
		}
		fmt.Fprintf(&b, "<TD><B>%s</B></TD>", esc(c))
	}
	b.WriteString("</TR>")

	for _, it := range l.Items {
		width := pct(it.WidthPercent)
		if it.IsTarget() {
			width = "-"
		}
		label := it.Item.Label.String()
		if label == "" {
			label = it.Item.ID
		}
		fmt.Fprintf(&b, `<TR><TD WIDTH="12" BGCOLOR=%q></TD>`, t.Fill(it.StyleTag))
		for _, cell := range []string{
			string(it.Series),
			it.StyleTag,
			bullet.FormatValue(it.Item.Value),
			it.Sign.String(),
			width,
			pct(it.OffsetPercent),
			label,
		} {
			fmt.Fprintf(&b, "<TD>%s</TD>", esc(cell))
		}
		b.WriteString("</TR>")
	}
	b.WriteString("</TABLE>")
	return b.String()
}

func cellWidth(px float64) int { return max(1, int(px+0.5)) }

func pct(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }

// esc escapes text for a Graphviz HTML-like label.
func esc(s string) string {
	s = html.EscapeString(s)
	return strings.ReplaceAll(s, "\n", "<BR/>")
}

func fontName(t styles.Theme) string {
	name, _, _ := strings.Cut(t.FontFamily, ",")
	return strings.TrimSpace(name)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's svg element with one whose viewBox
// starts at the origin, so the output scales cleanly when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
