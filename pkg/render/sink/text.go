package sink

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/bullet/pkg/bullet"
	"github.com/matzehuels/bullet/pkg/render/styles"
)

// DefaultColumns is the width of the terminal bar.
const DefaultColumns = 60

// Glyphs per series; later entries win when items overlap.
var glyphs = map[bullet.Series]rune{
	bullet.SeriesScale:     '░',
	bullet.SeriesValues:    '█',
	bullet.SeriesSecondary: '▄',
	bullet.SeriesTarget:    '┃',
}

var seriesRank = map[bullet.Series]int{
	bullet.SeriesScale:     1,
	bullet.SeriesValues:    2,
	bullet.SeriesSecondary: 3,
	bullet.SeriesTarget:    4,
}

// TextOption configures terminal rendering.
type TextOption func(*textRenderer)

type textRenderer struct {
	theme   styles.Theme
	columns int
	plain   bool
	legend  bool
}

func WithTextTheme(t styles.Theme) TextOption { return func(r *textRenderer) { r.theme = t } }
func WithColumns(n int) TextOption            { return func(r *textRenderer) { r.columns = n } }

// WithPlain disables colour, leaving only glyphs.
func WithPlain() TextOption { return func(r *textRenderer) { r.plain = true } }

// WithLegend appends a line with the resolved range.
func WithLegend() TextOption { return func(r *textRenderer) { r.legend = true } }

type cell struct {
	glyph rune
	tag   string
	rank  int
}

// RenderText renders the layout as a single line of block glyphs.
func RenderText(l *bullet.Layout, opts ...TextOption) string {
	r := textRenderer{theme: styles.Light, columns: DefaultColumns}
	for _, opt := range opts {
		opt(&r)
	}
	if r.columns < 8 {
		r.columns = 8
	}

	f := frame{width: float64(r.columns), height: 3 * labelRow}
	tr, boxes := place(l, f, false)
	cells := make([]cell, r.columns)
	for i := range cells {
		cells[i] = cell{glyph: ' '}
	}

	for _, b := range boxes {
		rank := seriesRank[b.item.Series]
		set := func(i int) {
			if i >= 0 && i < len(cells) && rank >= cells[i].rank {
				cells[i] = cell{glyph: glyphs[b.item.Series], tag: b.item.StyleTag, rank: rank}
			}
		}
		if b.item.IsTarget() {
			x := b.x
			if b.item.Sign == bullet.Negative {
				x += targetWidth - 1
			}
			set(int(math.Floor(x)))
			continue
		}
		first, last := int(math.Round(b.x)), int(math.Round(b.x+b.w))-1
		for i := first; i <= max(first, last); i++ {
			set(i)
		}
	}
	if l.Track.Zero.Visible {
		for i := int(tr.zeroX); float64(i) < tr.zeroX+tr.zeroW; i++ {
			if i >= 0 && i < len(cells) && cells[i].rank < seriesRank[bullet.SeriesTarget] {
				cells[i] = cell{glyph: '│', tag: "zero", rank: seriesRank[bullet.SeriesTarget]}
			}
		}
	}

	var b strings.Builder
	for _, c := range cells {
		b.WriteString(r.paint(c))
	}
	if r.legend {
		legend := fmt.Sprintf("min %s  max %s  total %s",
			bullet.FormatValue(l.Range.Min), bullet.FormatValue(l.Range.Max), bullet.FormatValue(l.Range.Total))
		if !r.plain {
			legend = lipgloss.NewStyle().Foreground(lipgloss.Color(r.theme.ScaleLabel)).Render(legend)
		}
		b.WriteString("\n")
		b.WriteString(legend)
	}
	return b.String()
}

func (r textRenderer) paint(c cell) string {
	s := string(c.glyph)
	if r.plain || c.tag == "" {
		return s
	}
	colour := r.theme.Fill(c.tag)
	if c.tag == "zero" {
		colour = r.theme.ZeroLine
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(colour)).Render(s)
}
