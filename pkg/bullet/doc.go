// Package bullet computes the layout of a bullet chart.
//
// # Overview
//
// A bullet chart compares one or more current values against up to two
// target markers and a background scale, all placed on one linear axis that
// may extend to both sides of zero. This package owns the arithmetic of that
// axis and nothing else: it never draws. Renderers in the sink packages
// consume the [Layout] it produces.
//
// Layout computation runs in three stages:
//
//  1. Range resolution ([ResolveRange]): find the most negative and most
//     positive extent the axis must show. Stacked values can combine, so
//     every subset sum of a value set is considered, not just the items.
//  2. Bucketing ([Bucketize]): partition each series by sign into
//     negative, zero and positive buckets, preserving input order.
//  3. Geometry ([ComputeGeometry]): turn every bucketed item into a width
//     and an offset, in percent of its side of the track.
//
// [Configure] runs the validation gate and all three stages:
//
//	l, err := bullet.Configure(bullet.Input{
//	    Values:          []bullet.Item{{Value: 10}},
//	    SecondaryValues: []bullet.Item{{Value: 3}, {Value: 9}},
//	    PrimaryTarget:   &bullet.Item{Value: 8},
//	})
//	if err != nil {
//	    return err // *ValidationError
//	}
//	for _, it := range l.Items {
//	    fmt.Println(it.StyleTag, it.WidthPercent, it.OffsetPercent)
//	}
//
// # Track
//
// The track is split into a negative region, a fixed-width zero marker and a
// positive region. Region widths are percentages of the whole track; the
// marker is [ZeroMarkerPixels] wide and is shown whenever any item is exactly
// zero or the negative region exists. Renderers subtract the marker from the
// visible regions (see [TrackBucket.PixelAdjust]).
//
// # Stacking
//
// Items of the same series and sign are drawn edge to edge starting at the
// zero line: negatives grow leftwards, positives rightwards. An item's width
// is its magnitude relative to its side's extreme; its offset is the sum of
// the widths stacked before it. Targets are markers and are positioned
// independently.
//
// # Immutability
//
// Caller items are never modified. Each [LayoutItem] carries a copy of its
// source [Item] along with the derived style tag and geometry, so repeated
// calls with shared inputs always produce identical layouts. All functions
// are pure and safe for concurrent use.
package bullet
