package table

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/bullet/pkg/bullet"
	"github.com/matzehuels/bullet/pkg/render/styles"
)

func configure(t *testing.T, in bullet.Input) *bullet.Layout {
	t.Helper()
	l, err := bullet.Configure(in)
	if err != nil {
		t.Fatalf("Configure() error: %v", err)
	}
	return l
}

func mixed(t *testing.T) *bullet.Layout {
	return configure(t, bullet.Input{
		Values:          []bullet.Item{{Value: 5}, {Value: -3, Label: bullet.TextLabel("<loss>")}},
		SecondaryValues: []bullet.Item{{Value: 2}},
		PrimaryTarget:   &bullet.Item{ID: "goal", Value: 4},
	})
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(mixed(t), Options{})

	for _, want := range []string{
		"digraph G {",
		"track -> items;",
		"range -3 .. 5 (total 8) | negative 37.5% | zero marker | positive 62.5%",
		`COLSPAN="3"`,
		`BGCOLOR="#2b6cb0"`,
		"&lt;loss&gt;",
		"<TD>goal</TD>",
		"<TD>primaryTarget</TD>",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q", want)
		}
	}
	if strings.Contains(dot, "<loss>") {
		t.Error("labels must be escaped")
	}
	if strings.Contains(dot, "<B></B>") {
		t.Error("empty header cells must not hold markup")
	}

	// header plus one row per item
	rows := strings.Count(dot, "<TR>")
	if want := 2 + 1 + len(mixed(t).Items); rows != want {
		t.Errorf("rows = %d, want %d", rows, want)
	}
}

func TestToDOTTheme(t *testing.T) {
	dot := ToDOT(mixed(t), Options{Theme: styles.Dark})
	if !strings.Contains(dot, `bgcolor="`+styles.Dark.Background+`"`) {
		t.Error("dark background not applied")
	}
	if !strings.Contains(dot, `fontname="Helvetica"`) {
		t.Error("font family should use the first family name")
	}
}

func TestToDOTTrackOnlyPositive(t *testing.T) {
	l := configure(t, bullet.Input{
		Values:          []bullet.Item{{Value: 3}},
		SecondaryValues: []bullet.Item{{Value: 4}},
		PrimaryTarget:   &bullet.Item{Value: 2},
		Scale:           &bullet.Item{Value: 4},
	})
	dot := ToDOT(l, Options{TrackWidth: 200})
	if !strings.Contains(dot, `COLSPAN="1"`) {
		t.Error("caption should span the single region")
	}
	if !strings.Contains(dot, `<TD WIDTH="200" HEIGHT="18"`) {
		t.Error("positive region should fill the track")
	}
	if strings.Contains(dot, "zero marker") {
		t.Error("zero marker should be hidden")
	}
}

func TestToDOTDegenerate(t *testing.T) {
	l := configure(t, bullet.Input{
		Values:          []bullet.Item{{Value: 0}},
		SecondaryValues: []bullet.Item{{Value: 0}},
		PrimaryTarget:   &bullet.Item{Value: 0},
	})
	dot := ToDOT(l, Options{})
	if !strings.Contains(dot, "no extent") {
		t.Errorf("degenerate layout not marked:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s", got)
	}

	plain := []byte("<svg><g/></svg>")
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("svg without viewBox should be unchanged")
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(mixed(t), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `) {
		t.Errorf("unexpected svg header: %.200s", svg)
	}
	for _, want := range []string{"primaryTarget", "series", "&lt;loss&gt;", "62.5"} {
		if !strings.Contains(string(svg), want) {
			t.Errorf("svg breakdown missing %q", want)
		}
	}
}

func TestRenderSVGInvalidDOT(t *testing.T) {
	if _, err := RenderSVG(context.Background(), "digraph {"); err == nil {
		t.Error("expected parse error")
	}
}
