package bullet

// LayoutItem is a positioned copy of an input item.
type LayoutItem struct {
	Item     Item   `json:"item"`
	Series   Series `json:"series"`
	Index    int    `json:"index"`
	StyleTag string `json:"style_tag"`
	Sign     Sign   `json:"sign"`
	// WidthPercent is relative to the item's side of the track.
	WidthPercent float64 `json:"width_percent"`
	// OffsetPercent is the distance from the zero line, measured towards Anchor.
	OffsetPercent float64 `json:"offset_percent"`
	Anchor        Anchor  `json:"anchor,omitempty"`
}

// IsTarget reports whether the item is a target marker.
func (li LayoutItem) IsTarget() bool { return li.Series == SeriesTarget }

// Layout is the complete, renderer-independent description of a chart.
// Items are in render order: negative, zero then positive bucket, and
// within each bucket scale, values, secondary values, targets.
type Layout struct {
	Range        Range        `json:"range"`
	Scale        Item         `json:"scale"`
	ScaleDerived bool         `json:"scale_derived,omitempty"`
	Track        Track        `json:"track"`
	Items        []LayoutItem `json:"items"`
	Degenerate   bool         `json:"degenerate,omitempty"`
}

// Configure validates in and computes its layout. It is the single entry
// point for building and rebuilding a chart; in is never modified.
func Configure(in Input) (*Layout, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	scale, derived := ResolveScale(in)
	l := ComputeGeometry(resolveRange(in, scale), BucketInput(in, scale))
	l.Scale = scale
	l.ScaleDerived = derived
	return &l, nil
}

// Bucket returns the items in bucket s, in render order.
func (l *Layout) Bucket(s Sign) []LayoutItem {
	var out []LayoutItem
	for _, it := range l.Items {
		if it.Sign == s {
			out = append(out, it)
		}
	}
	return out
}

// Series returns the items of series s, in render order.
func (l *Layout) Series(s Series) []LayoutItem {
	var out []LayoutItem
	for _, it := range l.Items {
		if it.Series == s {
			out = append(out, it)
		}
	}
	return out
}

// Find returns the first item with the given ID.
func (l *Layout) Find(id string) (LayoutItem, bool) {
	if id == "" {
		return LayoutItem{}, false
	}
	for _, it := range l.Items {
		if it.Item.ID == id {
			return it, true
		}
	}
	return LayoutItem{}, false
}
