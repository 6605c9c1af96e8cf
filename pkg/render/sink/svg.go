package sink

import (
	"bytes"
	"fmt"
	"html"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/matzehuels/bullet/pkg/bullet"
	"github.com/matzehuels/bullet/pkg/render/styles"
)

// svgUnit is the number of user units per pixel; svgo takes integer
// coordinates, so drawing at a finer grid keeps narrow bars accurate.
const svgUnit = 10

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	theme         styles.Theme
	width, height int
	reveal        *bool
	background    bool
}

func WithTheme(t styles.Theme) SVGOption   { return func(r *svgRenderer) { r.theme = t } }
func WithSize(w, h int) SVGOption          { return func(r *svgRenderer) { r.width, r.height = w, h } }
func WithReveal(reveal *bool) SVGOption    { return func(r *svgRenderer) { r.reveal = reveal } }
func WithTransparentBackground() SVGOption { return func(r *svgRenderer) { r.background = false } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{theme: styles.Light, background: true}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG renders the layout as a static SVG image.
func RenderSVG(l *bullet.Layout, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	f := newFrame(r.width, r.height)
	_, collapsed := revealState(r.reveal)
	tr, boxes := place(l, f, collapsed)

	var buf bytes.Buffer
	w, h := int(f.width), int(f.height)
	canvas := svg.New(&buf)
	canvas.Startview(w, h, 0, 0, w*svgUnit, h*svgUnit)
	canvas.Gstyle(fmt.Sprintf("font-family:%s;font-size:%dpx", r.theme.FontFamily, int(fontSize*svgUnit)))

	if r.background {
		canvas.Rect(0, 0, w*svgUnit, h*svgUnit, fill(r.theme.Background))
	}

	for _, b := range boxes {
		renderSVGItem(canvas, r.theme, b)
	}

	if l.Track.Zero.Visible {
		canvas.Rect(u(tr.zeroX), u(f.bandTop()), max(1, u(tr.zeroW)), u(f.bandHeight()),
			`class="zero-line"`, fill(r.theme.ZeroLine))
		canvas.Text(u(tr.zeroX+tr.zeroW/2), u(f.height-3), "0",
			`class="zero-label"`, `text-anchor="middle"`, fill(r.theme.ZeroLabel))
	}

	if !collapsed {
		for _, b := range boxes {
			renderSVGLabel(canvas, r.theme, f, b)
		}
	}

	canvas.Gend()
	canvas.End()
	return buf.Bytes()
}

func renderSVGItem(canvas *svg.SVG, t styles.Theme, b box) {
	it := b.item
	attrs := []string{fmt.Sprintf(`class="%s"`, html.EscapeString(itemClasses(it)))}
	if it.Item.ID != "" {
		attrs = append(attrs, fmt.Sprintf(`data-id="%s"`, html.EscapeString(it.Item.ID)))
	}
	if it.Item.Unfocused {
		attrs = append(attrs, fmt.Sprintf(`opacity="%s"`, fmtNum(t.UnfocusedOpacity)))
	}
	canvas.Group(attrs...)
	if it.Item.Tooltip != "" {
		canvas.Title(it.Item.Tooltip)
	}

	rect := []string{fill(t.Fill(it.StyleTag))}
	if it.Item.Focused {
		rect = append(rect, fmt.Sprintf(`stroke="%s"`, t.Focus), fmt.Sprintf(`stroke-width="%d"`, 2*svgUnit))
	}
	canvas.Rect(u(b.x), u(b.y), max(1, u(b.w)), u(b.h), rect...)
	canvas.Gend()
}

func renderSVGLabel(canvas *svg.SVG, t styles.Theme, f frame, b box) {
	if b.item.IsTarget() || b.item.Item.Label.Empty() {
		return
	}
	x, end := labelAnchor(b)
	anchor := `text-anchor="start"`
	if end {
		anchor = `text-anchor="end"`
	}
	canvas.Text(u(x), u(labelRow-3), b.item.Item.Label.String(),
		`class="scale-label"`, anchor, fill(t.ScaleLabel))
}

func fill(c string) string { return fmt.Sprintf(`fill="%s"`, c) }

// u converts pixels to integer user units.
func u(px float64) int { return int(math.Round(px * svgUnit)) }
