package bullet

// Sign is the side of the axis an item sits on.
type Sign int8

const (
	Negative Sign = -1
	Zero     Sign = 0
	Positive Sign = 1
)

// SignOf classifies v.
func SignOf(v float64) Sign {
	switch {
	case v < 0:
		return Negative
	case v > 0:
		return Positive
	}
	return Zero
}

// String returns "negative", "zero" or "positive".
func (s Sign) String() string {
	switch s {
	case Negative:
		return "negative"
	case Positive:
		return "positive"
	}
	return "zero"
}

// MarshalText encodes the sign by name.
func (s Sign) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a sign name. Unknown names decode as Zero.
func (s *Sign) UnmarshalText(b []byte) error {
	switch string(b) {
	case "negative":
		*s = Negative
	case "positive":
		*s = Positive
	default:
		*s = Zero
	}
	return nil
}

// Entry is an item together with its position in the series it came from.
type Entry struct {
	Index int
	Item  Item
}

// Bucket is a sign partition of one series. Each slice keeps input order.
type Bucket struct {
	Negatives []Entry
	Zeros     []Entry
	Positives []Entry
}

// Bucketize partitions items by sign. Every item lands in exactly one
// slice and relative order is preserved.
func Bucketize(items []Item) Bucket {
	var b Bucket
	for i, it := range items {
		b.add(Entry{Index: i, Item: it})
	}
	return b
}

func (b *Bucket) add(e Entry) {
	switch SignOf(e.Item.Value) {
	case Negative:
		b.Negatives = append(b.Negatives, e)
	case Positive:
		b.Positives = append(b.Positives, e)
	default:
		b.Zeros = append(b.Zeros, e)
	}
}

// Side returns the entries with sign s.
func (b Bucket) Side(s Sign) []Entry {
	switch s {
	case Negative:
		return b.Negatives
	case Positive:
		return b.Positives
	}
	return b.Zeros
}

// Len returns the number of entries across all three sides.
func (b Bucket) Len() int { return len(b.Negatives) + len(b.Zeros) + len(b.Positives) }

// Buckets holds the partition of every series of a chart.
type Buckets struct {
	Scale     Bucket
	Values    Bucket
	Secondary Bucket
	Targets   Bucket // primary target at index 0, secondary at 1
}

// BucketInput partitions every series of in. scale is the resolved scale.
func BucketInput(in Input, scale Item) Buckets {
	return Buckets{
		Scale:     Bucketize([]Item{scale}),
		Values:    Bucketize(in.Values),
		Secondary: Bucketize(in.SecondaryValues),
		Targets:   bucketTargets(in),
	}
}

// bucketTargets keeps the secondary target at index 1 even when the primary
// is absent, so its style tag stays stable.
func bucketTargets(in Input) Bucket {
	var b Bucket
	for i, t := range []*Item{in.PrimaryTarget, in.SecondaryTarget} {
		if t == nil {
			continue
		}
		b.add(Entry{Index: i, Item: *t})
	}
	return b
}

// hasZeros reports whether any series has a zero-valued item.
func (b Buckets) hasZeros() bool {
	return len(b.Scale.Zeros)+len(b.Values.Zeros)+len(b.Secondary.Zeros)+len(b.Targets.Zeros) > 0
}
