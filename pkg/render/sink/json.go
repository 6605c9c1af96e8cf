package sink

import (
	"encoding/json"

	"github.com/matzehuels/bullet/pkg/bullet"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	theme  string
	reveal *bool
}

// WithJSONTheme records the theme name so external renderers can match it.
func WithJSONTheme(name string) JSONOption { return func(r *jsonRenderer) { r.theme = name } }

// WithJSONReveal records the reveal state.
func WithJSONReveal(reveal *bool) JSONOption { return func(r *jsonRenderer) { r.reveal = reveal } }

type jsonOutput struct {
	*bullet.Layout
	Theme  string `json:"theme,omitempty"`
	Reveal string `json:"reveal,omitempty"`
}

// RenderJSON exports the layout as a pretty-printed JSON document: the
// resolved range, track percentages and every positioned item in render
// order. The output decodes back into a [bullet.Layout].
func RenderJSON(l *bullet.Layout, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	return json.MarshalIndent(jsonOutput{
		Layout: l,
		Theme:  r.theme,
		Reveal: RevealToken(r.reveal),
	}, "", "  ")
}
