package bullet

import "math"

// Range is the extent of the axis. Min is never positive and Max never
// negative, since zero is always on the axis.
type Range struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Total float64 `json:"total"`
}

// Degenerate reports whether the axis has no extent.
func (r Range) Degenerate() bool { return r.Total == 0 }

// ResolveRange validates in and returns the axis range it needs.
//
// The candidates are zero, every item of both value sets, every subset sum
// of each value set (stacked bars can reach any combination of same-signed
// values), both targets and the scale. A missing scale is derived by
// [ResolveScale].
func ResolveRange(in Input) (Range, error) {
	if err := Validate(in); err != nil {
		return Range{}, err
	}
	scale, _ := ResolveScale(in)
	return resolveRange(in, scale), nil
}

func resolveRange(in Input, scale Item) Range {
	lo, hi := 0.0, 0.0
	add := func(v float64) {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	for _, set := range [][]Item{in.Values, in.SecondaryValues} {
		for _, v := range subsetSums(set) {
			add(v)
		}
	}
	for _, t := range in.Targets() {
		add(t.Value)
	}
	add(scale.Value)
	return Range{Min: lo, Max: hi, Total: math.Abs(hi - lo)}
}

// subsetSums returns the sum of every non-empty subset of items, singletons
// included. Sets are capped at MaxValues, so there are at most 7 sums.
func subsetSums(items []Item) []float64 {
	n := len(items)
	if n == 0 {
		return nil
	}
	sums := make([]float64, 0, 1<<n-1)
	for mask := 1; mask < 1<<n; mask++ {
		var s float64
		for i := range n {
			if mask&(1<<i) != 0 {
				s += items[i].Value
			}
		}
		sums = append(sums, s)
	}
	return sums
}
