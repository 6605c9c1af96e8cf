// Package styles defines the colour themes shared by the bullet renderers.
package styles

import (
	"fmt"
	"image/color"
	"slices"
	"strconv"
	"strings"
)

// Theme names.
const (
	NameLight = "light"
	NameDark  = "dark"
)

// Theme is a palette for one chart. Colours are "#rrggbb" strings so they
// can go straight into CSS, SVG attributes and lipgloss.
type Theme struct {
	Name       string
	Background string
	Text       string

	Scale      string
	ScaleLabel string
	ZeroLine   string
	ZeroLabel  string

	Values          [3]string // val1..val3
	Secondary       [3]string // secondaryVal1..secondaryVal3
	PrimaryTarget   string
	SecondaryTarget string

	Focus            string  // outline of focused items
	UnfocusedOpacity float64 // opacity of unfocused items
	FontFamily       string
}

// Light is the default theme.
var Light = Theme{
	Name:             NameLight,
	Background:       "#ffffff",
	Text:             "#333333",
	Scale:            "#e6e6e6",
	ScaleLabel:       "#555555",
	ZeroLine:         "#333333",
	ZeroLabel:        "#555555",
	Values:           [3]string{"#2b6cb0", "#4299e1", "#90cdf4"},
	Secondary:        [3]string{"#718096", "#a0aec0", "#cbd5e0"},
	PrimaryTarget:    "#1a202c",
	SecondaryTarget:  "#c53030",
	Focus:            "#f6ad55",
	UnfocusedOpacity: 0.4,
	FontFamily:       "Helvetica, Arial, sans-serif",
}

// Dark lightens the elements that would vanish on a dark page: the zero
// line and the zero and scale labels.
var Dark = func() Theme {
	t := Light
	t.Name = NameDark
	t.Background = "#1f2430"
	t.Text = "#e2e8f0"
	t.Scale = "#3a4150"
	t.ScaleLabel = "#cbd5e0"
	t.ZeroLine = "#e2e8f0"
	t.ZeroLabel = "#cbd5e0"
	t.PrimaryTarget = "#f7fafc"
	return t
}()

var themes = map[string]Theme{
	NameLight: Light,
	NameDark:  Dark,
}

// ByName returns the theme called name. The empty name selects Light.
func ByName(name string) (Theme, bool) {
	if name == "" {
		return Light, true
	}
	t, ok := themes[strings.ToLower(name)]
	return t, ok
}

// Names returns the registered theme names, sorted.
func Names() []string {
	names := make([]string, 0, len(themes))
	for n := range themes {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Fill returns the fill colour for an internal style tag such as "val2",
// "secondaryVal1", "primaryTarget" or "scale".
func (t Theme) Fill(tag string) string {
	switch {
	case tag == "scale":
		return t.Scale
	case tag == "primaryTarget":
		return t.PrimaryTarget
	case tag == "secondaryTarget":
		return t.SecondaryTarget
	case strings.HasPrefix(tag, "secondaryVal"):
		return pick(t.Secondary, strings.TrimPrefix(tag, "secondaryVal"))
	case strings.HasPrefix(tag, "val"):
		return pick(t.Values, strings.TrimPrefix(tag, "val"))
	}
	return t.Text
}

func pick(palette [3]string, pos string) string {
	n, err := strconv.Atoi(pos)
	if err != nil || n < 1 || n > len(palette) {
		return palette[0]
	}
	return palette[n-1]
}

// ParseHex parses a "#rgb" or "#rrggbb" colour.
func ParseHex(s string) (color.RGBA, error) {
	c := color.RGBA{A: 0xff}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return c, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return c, fmt.Errorf("invalid colour %q", s)
	}
	c.R, c.G, c.B = uint8(v>>16), uint8(v>>8), uint8(v)
	return c, nil
}

// MustRGBA is ParseHex for palette constants; invalid input yields black.
func MustRGBA(s string) color.RGBA {
	c, _ := ParseHex(s)
	return c
}
