package sink

import (
	"math"

	"github.com/matzehuels/bullet/pkg/bullet"
)

// Default pixel size of raster and vector output.
const (
	DefaultWidth  = 600
	DefaultHeight = 72
)

const (
	labelRow    = 14.0 // label row above the band and zero label row below
	targetWidth = 3.0
	fontSize    = 11.0
)

// Vertical placement of each series within the band, as fractions of the
// band height: top, height.
var bands = map[bullet.Series][2]float64{
	bullet.SeriesScale:     {0, 1},
	bullet.SeriesValues:    {0.15, 0.45},
	bullet.SeriesSecondary: {0.68, 0.2},
	bullet.SeriesTarget:    {0.08, 0.84},
}

// frame is the pixel canvas for one chart.
type frame struct {
	width, height float64
}

func newFrame(width, height int) frame {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return frame{width: float64(width), height: math.Max(float64(height), 3*labelRow)}
}

func (f frame) bandTop() float64    { return labelRow }
func (f frame) bandHeight() float64 { return f.height - 2*labelRow }

// track is the pixel extent of the three regions.
type track struct {
	negX, negW   float64
	zeroX, zeroW float64
	posX, posW   float64
}

func newTrack(t bullet.Track, width float64) track {
	neg, zero, pos := t.Pixels(width)
	return track{
		negX: 0, negW: neg,
		zeroX: neg, zeroW: zero,
		posX: neg + zero, posW: pos,
	}
}

// box is a positioned rectangle for one layout item.
type box struct {
	x, y, w, h float64
	item       bullet.LayoutItem
}

// place converts every layout item to pixels. Items that would have no
// visible area are dropped; in the pre-reveal state only targets remain.
func place(l *bullet.Layout, f frame, collapsed bool) (track, []box) {
	tr := newTrack(l.Track, f.width)
	bh := f.bandHeight()
	boxes := make([]box, 0, len(l.Items))

	for _, it := range l.Items {
		band := bands[it.Series]
		b := box{y: f.bandTop() + band[0]*bh, h: band[1] * bh, item: it}

		if it.IsTarget() {
			b.w = targetWidth
			switch it.Sign {
			case bullet.Negative:
				b.x = tr.negX + tr.negW - it.OffsetPercent/100*tr.negW - targetWidth
			case bullet.Positive:
				b.x = tr.posX + it.OffsetPercent/100*tr.posW
			default:
				b.x = tr.zeroX + tr.zeroW/2 - targetWidth/2
			}
			boxes = append(boxes, b)
			continue
		}

		if collapsed || it.Sign == bullet.Zero || it.WidthPercent == 0 {
			continue
		}
		switch it.Sign {
		case bullet.Negative:
			b.w = it.WidthPercent / 100 * tr.negW
			b.x = tr.negX + tr.negW - it.OffsetPercent/100*tr.negW - b.w
		case bullet.Positive:
			b.w = it.WidthPercent / 100 * tr.posW
			b.x = tr.posX + it.OffsetPercent/100*tr.posW
		}
		boxes = append(boxes, b)
	}
	return tr, boxes
}

// labelAnchor returns where an item's label goes: the outer end of its bar.
func labelAnchor(b box) (x float64, end bool) {
	if b.item.Sign == bullet.Negative {
		return b.x, false
	}
	return b.x + b.w, true
}

// revealState normalises the tri-state reveal flag into the cache token
// and whether bars are collapsed.
func revealState(reveal *bool) (token string, collapsed bool) {
	switch {
	case reveal == nil:
		return "", false
	case *reveal:
		return "shown", false
	}
	return "pre", true
}

// RevealToken returns the cache key token for a reveal flag.
func RevealToken(reveal *bool) string {
	t, _ := revealState(reveal)
	return t
}
