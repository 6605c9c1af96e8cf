package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"
	"image/png"
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/matzehuels/bullet/pkg/bullet"
	"github.com/matzehuels/bullet/pkg/render"
	"github.com/matzehuels/bullet/pkg/render/styles"
)

// mixedLayout spans -3..5 with the zero marker shown.
func mixedLayout(t *testing.T) *bullet.Layout {
	t.Helper()
	l, err := bullet.Configure(bullet.Input{
		Values: []bullet.Item{
			{ID: "a", Value: 5, Label: bullet.FragmentLabel(template.HTML("<b>five</b>"))},
			{ID: "b", Value: -3, Label: bullet.TextLabel("<i>minus</i>"), Class: "warn"},
		},
		SecondaryValues: []bullet.Item{{Value: 2}},
		PrimaryTarget:   &bullet.Item{ID: "t", Value: 4, Tooltip: "Target"},
	})
	if err != nil {
		t.Fatalf("Configure() error: %v", err)
	}
	return l
}

func positiveLayout(t *testing.T) *bullet.Layout {
	t.Helper()
	l, err := bullet.Configure(bullet.Input{
		Values:          []bullet.Item{{Value: 3}},
		SecondaryValues: []bullet.Item{{Value: 1}},
		PrimaryTarget:   &bullet.Item{Value: 2},
	})
	if err != nil {
		t.Fatalf("Configure() error: %v", err)
	}
	return l
}

func parseHTML(t *testing.T, data []byte) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func TestRenderHTMLSections(t *testing.T) {
	out, err := RenderHTML(mixedLayout(t), WithWrapperClass("kpi"))
	if err != nil {
		t.Fatalf("RenderHTML() error: %v", err)
	}
	doc := parseHTML(t, out)

	if n := doc.Find("div.bullet.kpi").Length(); n != 1 {
		t.Fatalf("wrapper count = %d, want 1", n)
	}

	tests := []struct {
		selector string
		style    string
	}{
		{"section.negative-bucket", "width: calc(37.5% - 2px)"},
		{"section.zero-bucket", "width: 2px"},
		{"section.positive-bucket", "width: calc(62.5% - 2px)"},
	}
	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			got, _ := doc.Find(tt.selector).Attr("style")
			if got != tt.style {
				t.Errorf("style = %q, want %q", got, tt.style)
			}
		})
	}
	if doc.Find("section.zero-bucket").HasClass("is-hidden") {
		t.Error("zero bucket should be visible when negatives exist")
	}
	if got := doc.Find("p.zero-label").Text(); got != "0" {
		t.Errorf("zero label = %q, want 0", got)
	}
}

func TestRenderHTMLItems(t *testing.T) {
	out, err := RenderHTML(mixedLayout(t))
	if err != nil {
		t.Fatalf("RenderHTML() error: %v", err)
	}
	doc := parseHTML(t, out)

	if n := doc.Find(".positive-bucket > div").Length(); n != 4 {
		t.Errorf("positive items = %d, want 4 (scale, value, secondary, target)", n)
	}

	neg := doc.Find(".negative-bucket > div.val2")
	if style, _ := neg.Attr("style"); style != "right: 0%; width: 100%" {
		t.Errorf("negative value style = %q", style)
	}
	if !neg.HasClass("warn") || !neg.HasClass("negative") {
		t.Errorf("negative value classes = %q", neg.AttrOr("class", ""))
	}
	if got := neg.Find("label").Text(); got != "<i>minus</i>" {
		t.Errorf("text label = %q, want escaped markup", got)
	}
	if neg.Find("label i").Length() != 0 {
		t.Error("text label must not be parsed as markup")
	}

	pos := doc.Find(`.positive-bucket > div[data-id="a"]`)
	if got := pos.Find("label b").Text(); got != "five" {
		t.Errorf("fragment label = %q, want five", got)
	}
	if style, _ := pos.Attr("style"); style != "left: 0%; width: 100%" {
		t.Errorf("value style = %q", style)
	}

	target := doc.Find(".positive-bucket > div.primaryTarget")
	if style, _ := target.Attr("style"); style != "left: 80%" {
		t.Errorf("target style = %q, want left: 80%%", style)
	}
	if title, _ := target.Attr("title"); title != "Target" {
		t.Errorf("target title = %q", title)
	}
	if target.Find("label").Length() != 0 {
		t.Error("targets carry no label")
	}

	if got := doc.Find(".positive-bucket > div.scale label").Text(); got != "$2" {
		t.Errorf("derived scale label = %q, want $2", got)
	}
}

func TestRenderHTMLFocusClasses(t *testing.T) {
	l, err := bullet.Configure(bullet.Input{
		Values: []bullet.Item{
			{ID: "both", Value: 3, Focused: true, Unfocused: true},
			{ID: "on", Value: 1, Focused: true},
			{ID: "off", Value: 1, Unfocused: true},
		},
		SecondaryValues: []bullet.Item{{Value: 2}},
		PrimaryTarget:   &bullet.Item{Value: 2},
	})
	if err != nil {
		t.Fatalf("Configure() error: %v", err)
	}
	out, err := RenderHTML(l)
	if err != nil {
		t.Fatalf("RenderHTML() error: %v", err)
	}
	doc := parseHTML(t, out)

	tests := []struct {
		id                 string
		focused, unfocused bool
	}{
		{"both", true, true},
		{"on", true, false},
		{"off", false, true},
	}
	for _, tt := range tests {
		sel := doc.Find(`div[data-id="` + tt.id + `"]`)
		if sel.Length() != 1 {
			t.Fatalf("item %q not rendered", tt.id)
		}
		if sel.HasClass("focused") != tt.focused || sel.HasClass("unfocused") != tt.unfocused {
			t.Errorf("item %q classes = %q", tt.id, sel.AttrOr("class", ""))
		}
	}
}

func TestRenderHTMLHiddenZeroBucket(t *testing.T) {
	out, err := RenderHTML(positiveLayout(t))
	if err != nil {
		t.Fatalf("RenderHTML() error: %v", err)
	}
	doc := parseHTML(t, out)
	if !doc.Find("section.zero-bucket").HasClass("is-hidden") {
		t.Error("zero bucket should be hidden")
	}
	if style := doc.Find("section.positive-bucket").AttrOr("style", ""); style != "width: 100%" {
		t.Errorf("positive style = %q, want width: 100%%", style)
	}
	if style := doc.Find("section.negative-bucket").AttrOr("style", ""); style != "" {
		t.Errorf("negative style = %q, want none", style)
	}
}

func TestRenderHTMLRevealAndTheme(t *testing.T) {
	pre := false
	out, err := RenderHTML(mixedLayout(t), WithHTMLReveal(&pre), WithHTMLTheme(styles.Dark))
	if err != nil {
		t.Fatalf("RenderHTML() error: %v", err)
	}
	doc := parseHTML(t, out)

	if n := doc.Find("section.pre-reveal").Length(); n != 3 {
		t.Errorf("pre-reveal sections = %d, want 3", n)
	}
	if !doc.Find("p.zero-label").HasClass("use-dark-theme") {
		t.Error("dark theme should mark the zero label")
	}
	if got := doc.Find("div.bullet").AttrOr("data-theme", ""); got != styles.NameDark {
		t.Errorf("data-theme = %q", got)
	}
}

func TestRenderHTMLDocument(t *testing.T) {
	out, err := RenderHTML(mixedLayout(t), WithDocument(), WithTitle("Q3 <revenue>"))
	if err != nil {
		t.Fatalf("RenderHTML() error: %v", err)
	}
	s := string(out)
	for _, want := range []string{"<!DOCTYPE html>", "bullet:item", ".bullet .val1 { background: #2b6cb0; }"} {
		if !strings.Contains(s, want) {
			t.Errorf("document missing %q", want)
		}
	}
	if got := parseHTML(t, out).Find("title").Text(); got != "Q3 <revenue>" {
		t.Errorf("title = %q", got)
	}
}

func TestRenderEmptyHTML(t *testing.T) {
	out, err := RenderEmptyHTML(WithWrapperClass("kpi"))
	if err != nil {
		t.Fatalf("RenderEmptyHTML() error: %v", err)
	}
	doc := parseHTML(t, out)
	if got := doc.Find("div.bullet.kpi > div").Text(); got != EmptyMessage {
		t.Errorf("message = %q", got)
	}
	if doc.Find("section").Length() != 0 {
		t.Error("empty chart has no sections")
	}
}

func TestFmtNum(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{100, "100"},
		{37.5, "37.5"},
		{100.0 / 3, "33.3333"},
		{-0.00001, "0"},
		{2, "2"},
	}
	for _, tt := range tests {
		if got := fmtNum(tt.in); got != tt.want {
			t.Errorf("fmtNum(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderSVG(t *testing.T) {
	out := string(RenderSVG(mixedLayout(t)))

	for _, want := range []string{
		"<svg",
		`viewBox="0 0 6000 720"`,
		"<title>Target</title>",
		`data-id="a"`,
		`class="zero-line"`,
		"&lt;i&gt;minus&lt;/i&gt;",
		`fill="#2b6cb0"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("svg missing %q", want)
		}
	}
	if strings.Contains(out, "<i>") {
		t.Error("svg labels must be escaped")
	}
}

func TestRenderSVGPreReveal(t *testing.T) {
	pre := false
	out := string(RenderSVG(mixedLayout(t), WithReveal(&pre), WithSize(300, 60)))
	if strings.Contains(out, "minus") {
		t.Error("pre-reveal output should have no labels")
	}
	if strings.Contains(out, `class="negative val2`) {
		t.Error("pre-reveal output should have no value bars")
	}
	if !strings.Contains(out, "primaryTarget") {
		t.Error("targets stay visible before reveal")
	}
}

func TestPlace(t *testing.T) {
	l := mixedLayout(t)
	tr, boxes := place(l, newFrame(600, 72), false)

	if tr.negW != 223 || tr.zeroW != 2 || tr.posW != 373 {
		t.Fatalf("track = %+v", tr)
	}
	for _, b := range boxes {
		switch b.item.StyleTag {
		case "val2":
			if b.x != 0 || b.w != 223 {
				t.Errorf("negative bar x=%v w=%v, want 0 and 223", b.x, b.w)
			}
		case "val1":
			if b.x != 225 || b.w != 373 {
				t.Errorf("positive bar x=%v w=%v, want 225 and 373", b.x, b.w)
			}
		case "primaryTarget":
			if want := 225 + 0.8*373; math.Abs(b.x-want) > 1e-9 {
				t.Errorf("target x = %v, want %v", b.x, want)
			}
		}
	}
}

func TestRevealToken(t *testing.T) {
	yes, no := true, false
	tests := []struct {
		in   *bool
		want string
	}{
		{nil, ""},
		{&yes, "shown"},
		{&no, "pre"},
	}
	for _, tt := range tests {
		if got := RevealToken(tt.in); got != tt.want {
			t.Errorf("RevealToken() = %q, want %q", got, tt.want)
		}
	}
}

func TestRenderPNG(t *testing.T) {
	data, err := RenderPNG(mixedLayout(t))
	if err != nil {
		t.Fatalf("RenderPNG() error: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() error: %v", err)
	}
	if b := img.Bounds(); b.Dx() != DefaultWidth || b.Dy() != DefaultHeight {
		t.Errorf("bounds = %v", b)
	}

	tests := []struct {
		name string
		x, y int
		want string
	}{
		{"background", 5, 65, styles.Light.Background},
		{"positive value", 450, 30, styles.Light.Values[0]},
		{"negative value", 100, 30, styles.Light.Values[1]},
		{"zero line", 224, 30, styles.Light.ZeroLine},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b, _ := img.At(tt.x, tt.y).RGBA()
			want := styles.MustRGBA(tt.want)
			if uint8(r>>8) != want.R || uint8(g>>8) != want.G || uint8(b>>8) != want.B {
				t.Errorf("pixel (%d,%d) = %v, want %s", tt.x, tt.y, img.At(tt.x, tt.y), tt.want)
			}
		})
	}
}

func TestRenderPNGScale(t *testing.T) {
	data, err := RenderPNG(positiveLayout(t), WithScale(2), WithPNGSize(200, 50))
	if err != nil {
		t.Fatalf("RenderPNG() error: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() error: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 100 {
		t.Errorf("bounds = %v, want 400x100", b)
	}
}

func TestRenderPDF(t *testing.T) {
	if !render.HasConverter() {
		t.Skip("rsvg-convert not installed")
	}
	data, err := RenderPDF(context.Background(), mixedLayout(t))
	if err != nil {
		t.Fatalf("RenderPDF() error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("output is not a PDF")
	}
}

func TestRenderJSON(t *testing.T) {
	l := mixedLayout(t)
	yes := true
	data, err := RenderJSON(l, WithJSONTheme("dark"), WithJSONReveal(&yes))
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}

	var back bullet.Layout
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}
	if back.Range != l.Range {
		t.Errorf("Range = %+v, want %+v", back.Range, l.Range)
	}
	if back.Track != l.Track {
		t.Errorf("Track = %+v, want %+v", back.Track, l.Track)
	}
	if len(back.Items) != len(l.Items) {
		t.Errorf("Items = %d, want %d", len(back.Items), len(l.Items))
	}

	var meta struct {
		Theme  string `json:"theme"`
		Reveal string `json:"reveal"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}
	if meta.Theme != "dark" || meta.Reveal != "shown" {
		t.Errorf("meta = %+v", meta)
	}
}

func TestRenderText(t *testing.T) {
	out := RenderText(mixedLayout(t), WithPlain(), WithColumns(40), WithLegend())
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if n := utf8.RuneCountInString(lines[0]); n != 40 {
		t.Errorf("bar width = %d, want 40", n)
	}
	for _, glyph := range []string{"█", "┃", "│"} {
		if !strings.Contains(lines[0], glyph) {
			t.Errorf("bar %q missing %q", lines[0], glyph)
		}
	}
	if lines[1] != "min -3  max 5  total 8" {
		t.Errorf("legend = %q", lines[1])
	}
}

func TestRenderTextWithoutMarker(t *testing.T) {
	out := RenderText(positiveLayout(t), WithPlain(), WithColumns(20))
	if strings.Contains(out, "│") {
		t.Errorf("bar %q should have no zero marker", out)
	}
	if strings.HasPrefix(out, " ") {
		t.Errorf("bar %q should start at the left edge", out)
	}
}
