package sink

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/matzehuels/bullet/pkg/bullet"
	"github.com/matzehuels/bullet/pkg/render/styles"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	theme         styles.Theme
	width, height int
	scale         float64
	reveal        *bool
}

func WithPNGTheme(t styles.Theme) PNGOption { return func(r *pngRenderer) { r.theme = t } }
func WithPNGSize(w, h int) PNGOption        { return func(r *pngRenderer) { r.width, r.height = w, h } }
func WithPNGReveal(reveal *bool) PNGOption  { return func(r *pngRenderer) { r.reveal = reveal } }

// WithScale multiplies the output resolution; 2 produces a retina image.
func WithScale(s float64) PNGOption { return func(r *pngRenderer) { r.scale = s } }

// RenderPNG rasterises the layout natively. Labels use a fixed 7x13 bitmap
// face, so scaling enlarges bars but not text.
func RenderPNG(l *bullet.Layout, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{theme: styles.Light, scale: 1}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 {
		r.scale = 1
	}

	f := newFrame(r.width, r.height)
	_, collapsed := revealState(r.reveal)
	tr, boxes := place(l, f, collapsed)

	c := &pngCanvas{
		img:   image.NewRGBA(image.Rect(0, 0, int(f.width*r.scale+0.5), int(f.height*r.scale+0.5))),
		scale: float32(r.scale),
	}
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(styles.MustRGBA(r.theme.Background)), image.Point{}, draw.Src)

	for _, b := range boxes {
		col := color.NRGBA(styles.MustRGBA(r.theme.Fill(b.item.StyleTag)))
		if b.item.Item.Unfocused {
			col.A = uint8(255 * r.theme.UnfocusedOpacity)
		}
		w := max(b.w, 1)
		c.fill(b.x, b.y, w, b.h, col)
		if b.item.Item.Focused {
			c.outline(b.x, b.y, w, b.h, color.NRGBA(styles.MustRGBA(r.theme.Focus)))
		}
	}

	if l.Track.Zero.Visible {
		c.fill(tr.zeroX, f.bandTop(), max(tr.zeroW, 1), f.bandHeight(), color.NRGBA(styles.MustRGBA(r.theme.ZeroLine)))
		c.text(tr.zeroX+tr.zeroW/2, f.height-3, "0", textCenter, styles.MustRGBA(r.theme.ZeroLabel))
	}

	if !collapsed {
		for _, b := range boxes {
			if b.item.IsTarget() || b.item.Item.Label.Empty() {
				continue
			}
			x, end := labelAnchor(b)
			align := textStart
			if end {
				align = textEnd
			}
			c.text(x, labelRow-3, b.item.Item.Label.String(), align, styles.MustRGBA(r.theme.ScaleLabel))
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, c.img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

type textAlign int

const (
	textStart textAlign = iota
	textCenter
	textEnd
)

// pngCanvas draws in frame pixels and scales to the image.
type pngCanvas struct {
	img   *image.RGBA
	scale float32
}

func (c *pngCanvas) fill(x, y, w, h float64, col color.NRGBA) {
	if w <= 0 || h <= 0 {
		return
	}
	b := c.img.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	x0, y0 := float32(x)*c.scale, float32(y)*c.scale
	x1, y1 := float32(x+w)*c.scale, float32(y+h)*c.scale
	z.MoveTo(x0, y0)
	z.LineTo(x1, y0)
	z.LineTo(x1, y1)
	z.LineTo(x0, y1)
	z.ClosePath()
	z.Draw(c.img, b, image.NewUniform(col), image.Point{})
}

func (c *pngCanvas) outline(x, y, w, h float64, col color.NRGBA) {
	const t = 2.0
	c.fill(x-t, y-t, w+2*t, t, col)
	c.fill(x-t, y+h, w+2*t, t, col)
	c.fill(x-t, y, t, h, col)
	c.fill(x+w, y, t, h, col)
}

func (c *pngCanvas) text(x, y float64, s string, align textAlign, col color.RGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: c.img, Src: image.NewUniform(col), Face: face}
	adv := d.MeasureString(s)
	px := fixed.Int26_6(x * float64(c.scale) * 64)
	switch align {
	case textCenter:
		px -= adv / 2
	case textEnd:
		px -= adv
	}
	if px < 0 {
		px = 0
	}
	if limit := fixed.I(c.img.Bounds().Dx()); px+adv > limit {
		px = max(limit-adv, 0)
	}
	d.Dot = fixed.Point26_6{X: px, Y: fixed.Int26_6(y * float64(c.scale) * 64)}
	d.DrawString(s)
}
