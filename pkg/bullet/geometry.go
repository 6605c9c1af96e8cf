package bullet

import (
	"fmt"
	"math"
)

// ZeroMarkerPixels is the fixed width of the zero marker.
const ZeroMarkerPixels = 2

// Series identifies which input set an item came from.
type Series string

const (
	SeriesScale     Series = "scale"
	SeriesValues    Series = "values"
	SeriesSecondary Series = "secondary_values"
	SeriesTarget    Series = "target"
)

// renderOrder is the drawing order within each sign bucket.
var renderOrder = []Series{SeriesScale, SeriesValues, SeriesSecondary, SeriesTarget}

// Anchor is the track edge an item's offset is measured from.
type Anchor string

const (
	AnchorNone  Anchor = ""      // zero bucket
	AnchorLeft  Anchor = "left"  // positive items, measured from the zero line rightwards
	AnchorRight Anchor = "right" // negative items, measured from the zero line leftwards
)

// StyleTag returns the internal style class for position index of series.
func StyleTag(series Series, index int) string {
	switch series {
	case SeriesValues:
		return fmt.Sprintf("val%d", index+1)
	case SeriesSecondary:
		return fmt.Sprintf("secondaryVal%d", index+1)
	case SeriesTarget:
		if index == 0 {
			return "primaryTarget"
		}
		return "secondaryTarget"
	}
	return "scale"
}

// TrackBucket is one region of the track. A renderer sizes it as
// Percent of the track width minus PixelAdjust pixels.
type TrackBucket struct {
	Visible     bool    `json:"visible"`
	Percent     float64 `json:"percent"`
	PixelAdjust float64 `json:"pixel_adjust,omitempty"`
}

// Track describes the three regions of the axis.
type Track struct {
	Negative TrackBucket `json:"negative"`
	Zero     TrackBucket `json:"zero"` // Percent is always 0
	Positive TrackBucket `json:"positive"`
	// MarkerPixels is the width of the zero marker, 0 when it is hidden.
	MarkerPixels float64 `json:"marker_pixels"`
	// Full is set when the positive region spans the whole track.
	Full bool `json:"full,omitempty"`
}

// Pixels converts the track to pixel widths for a track width px wide.
// Widths never go below zero.
func (t Track) Pixels(width float64) (neg, zero, pos float64) {
	size := func(b TrackBucket) float64 {
		if !b.Visible {
			return 0
		}
		return math.Max(0, b.Percent/100*width-b.PixelAdjust)
	}
	return size(t.Negative), t.MarkerPixels, size(t.Positive)
}

// ComputeGeometry derives the track and per-item geometry from r and b.
//
// Within a sign bucket, each series stacks from the zero line in input
// order: an item's width is its magnitude relative to the side's extreme,
// and its offset is the sum of the widths before it. Targets are placed at
// their own magnitude and have no width. Zero items have neither.
//
// When r has no extent every percentage is zero.
func ComputeGeometry(r Range, b Buckets) Layout {
	negatives := r.Min < 0
	positives := r.Max > 0
	marker := b.hasZeros() || negatives

	l := Layout{Range: r, Degenerate: r.Degenerate()}
	if marker {
		l.Track.MarkerPixels = ZeroMarkerPixels
		l.Track.Zero.Visible = true
	}
	if !l.Degenerate {
		if negatives {
			l.Track.Negative = TrackBucket{
				Visible:     true,
				Percent:     math.Abs(r.Min) / r.Total * 100,
				PixelAdjust: l.Track.MarkerPixels,
			}
		}
		if positives {
			l.Track.Positive = TrackBucket{Visible: true, Percent: r.Max / r.Total * 100}
			if marker {
				l.Track.Positive.PixelAdjust = l.Track.MarkerPixels
			} else {
				l.Track.Positive.Percent = 100
				l.Track.Full = true
			}
		}
	}

	for _, sign := range []Sign{Negative, Zero, Positive} {
		extreme := r.Max
		if sign == Negative {
			extreme = math.Abs(r.Min)
		}
		for _, series := range renderOrder {
			bucket := b.series(series)
			l.Items = append(l.Items, place(series, sign, bucket.Side(sign), extreme)...)
		}
	}
	return l
}

func (b Buckets) series(s Series) Bucket {
	switch s {
	case SeriesScale:
		return b.Scale
	case SeriesValues:
		return b.Values
	case SeriesSecondary:
		return b.Secondary
	}
	return b.Targets
}

func place(series Series, sign Sign, entries []Entry, extreme float64) []LayoutItem {
	items := make([]LayoutItem, 0, len(entries))
	var stacked float64
	for _, e := range entries {
		li := LayoutItem{
			Item:     e.Item,
			Series:   series,
			Index:    e.Index,
			StyleTag: StyleTag(series, e.Index),
			Sign:     sign,
		}
		if sign != Zero {
			li.Anchor = AnchorLeft
			if sign == Negative {
				li.Anchor = AnchorRight
			}
			ratio := 0.0
			if extreme > 0 {
				ratio = math.Abs(e.Item.Value) / extreme * 100
			}
			if series == SeriesTarget {
				li.OffsetPercent = ratio
			} else {
				li.WidthPercent = ratio
				li.OffsetPercent = stacked
				stacked += ratio
			}
		}
		items = append(items, li)
	}
	return items
}
