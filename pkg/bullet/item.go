package bullet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// MaxValues is the largest number of items accepted in a value set.
const MaxValues = 3

// Item is one renderable datum: a value, a target or the scale.
type Item struct {
	ID        string  `json:"id,omitempty"`
	Value     float64 `json:"value"`
	Class     string  `json:"class,omitempty"`   // caller-supplied style class
	Tooltip   string  `json:"tooltip,omitempty"` // hover text
	Label     Label   `json:"label"`
	Focused   bool    `json:"focused,omitempty"`
	Unfocused bool    `json:"unfocused,omitempty"`
}

// Input is the full set of data for one bullet chart.
//
// Values and SecondaryValues hold at most [MaxValues] items each and are
// drawn as stacked bars. PrimaryTarget is required. When Scale is nil it is
// derived from SecondaryValues (see [ResolveScale]).
type Input struct {
	Values          []Item `json:"values"`
	SecondaryValues []Item `json:"secondary_values"`
	PrimaryTarget   *Item  `json:"primary_target"`
	SecondaryTarget *Item  `json:"secondary_target,omitempty"`
	Scale           *Item  `json:"scale,omitempty"`
}

// Targets returns the present targets, primary first.
func (in Input) Targets() []Item {
	targets := make([]Item, 0, 2)
	if in.PrimaryTarget != nil {
		targets = append(targets, *in.PrimaryTarget)
	}
	if in.SecondaryTarget != nil {
		targets = append(targets, *in.SecondaryTarget)
	}
	return targets
}

// Clone returns a deep copy of the input's item slices and pointers.
// Label fragments are shared, since the package never looks inside them.
func (in Input) Clone() Input {
	out := Input{
		Values:          append([]Item(nil), in.Values...),
		SecondaryValues: append([]Item(nil), in.SecondaryValues...),
	}
	if in.PrimaryTarget != nil {
		t := *in.PrimaryTarget
		out.PrimaryTarget = &t
	}
	if in.SecondaryTarget != nil {
		t := *in.SecondaryTarget
		out.SecondaryTarget = &t
	}
	if in.Scale != nil {
		s := *in.Scale
		out.Scale = &s
	}
	return out
}

// ResolveScale returns the scale item for in and whether it was derived.
//
// An explicit scale is returned as-is. Otherwise the scale value is the sum
// of all secondary values, labelled "$<sum>" with tooltip "Scale: <sum>".
func ResolveScale(in Input) (Item, bool) {
	if in.Scale != nil {
		return *in.Scale, false
	}
	var sum float64
	for _, it := range in.SecondaryValues {
		sum += it.Value
	}
	text := FormatValue(sum)
	return Item{
		Value:   sum,
		Tooltip: "Scale: " + text,
		Label:   TextLabel("$" + text),
	}, true
}

// FormatValue formats v with the shortest representation that round-trips.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// =============================================================================
// Label
// =============================================================================

// LabelKind discriminates the content of a [Label].
type LabelKind uint8

const (
	LabelNone     LabelKind = iota // no label
	LabelText                      // plain text
	LabelFragment                  // opaque renderer content
)

// Label is display content attached to an item: either plain text or an
// opaque fragment that only a renderer knows how to interpret (for example
// pre-built markup). This package threads labels through untouched.
type Label struct {
	kind     LabelKind
	text     string
	fragment any
}

// TextLabel returns a plain text label.
func TextLabel(s string) Label { return Label{kind: LabelText, text: s} }

// FragmentLabel returns a label holding renderer-specific content.
func FragmentLabel(f any) Label {
	if f == nil {
		return Label{}
	}
	return Label{kind: LabelFragment, fragment: f}
}

// Kind reports which variant l holds.
func (l Label) Kind() LabelKind { return l.kind }

// Text returns the text of a text label.
func (l Label) Text() (string, bool) { return l.text, l.kind == LabelText }

// Fragment returns the content of a fragment label.
func (l Label) Fragment() (any, bool) { return l.fragment, l.kind == LabelFragment }

// Empty reports whether there is nothing to display.
func (l Label) Empty() bool {
	return l.kind == LabelNone || (l.kind == LabelText && l.text == "")
}

// String returns the text, or the default formatting of a fragment.
func (l Label) String() string {
	switch l.kind {
	case LabelText:
		return l.text
	case LabelFragment:
		if raw, ok := l.fragment.(json.RawMessage); ok {
			return string(raw)
		}
		return fmt.Sprint(l.fragment)
	}
	return ""
}

// MarshalJSON encodes text labels as strings and fragments as their own
// JSON encoding. An absent label encodes as null.
func (l Label) MarshalJSON() ([]byte, error) {
	switch l.kind {
	case LabelText:
		return json.Marshal(l.text)
	case LabelFragment:
		return json.Marshal(l.fragment)
	}
	return []byte("null"), nil
}

// UnmarshalJSON decodes a JSON string as a text label and any other non-null
// value as a fragment holding the raw JSON.
func (l *Label) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*l = Label{}
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = TextLabel(s)
	default:
		*l = FragmentLabel(json.RawMessage(bytes.Clone(data)))
	}
	return nil
}
