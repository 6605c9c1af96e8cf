package pipeline

import (
	"context"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/bullet/pkg/bullet"
	"github.com/matzehuels/bullet/pkg/cache"
	"github.com/matzehuels/bullet/pkg/errors"
	"github.com/matzehuels/bullet/pkg/observability"
	"github.com/matzehuels/bullet/pkg/render/sink"
)

// memCache is an in-memory cache.Cache for tests.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	c.sets++
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

func sampleInput() bullet.Input {
	return bullet.Input{
		Values:          []bullet.Item{{ID: "rev", Value: 270, Label: bullet.TextLabel("Revenue")}},
		SecondaryValues: []bullet.Item{{Value: 150}, {Value: 100}},
		PrimaryTarget:   &bullet.Item{Value: 250, Tooltip: "Plan"},
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		vizType string
		format  string
		wantErr bool
	}{
		{VizTypeBullet, "svg", false},
		{VizTypeBullet, "html", false},
		{VizTypeBullet, "png", false},
		{VizTypeBullet, "pdf", false},
		{VizTypeBullet, "json", false},
		{VizTypeBullet, "txt", false},
		{VizTypeBullet, "dot", true},
		{VizTypeTable, "dot", false},
		{VizTypeTable, "html", true},
		{VizTypeBullet, "SVG", true}, // case-sensitive
		{VizTypeBullet, "", true},
		{"pie", "svg", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.vizType, tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q, %q) error = %v, wantErr %v", tt.vizType, tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats(VizTypeBullet, []string{"svg", "html"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	err := ValidateFormats(VizTypeBullet, []string{"svg", "invalid"})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
	// Empty slice is valid
	if err := ValidateFormats(VizTypeTable, nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateVizTypeAndTheme(t *testing.T) {
	if err := ValidateVizType("bullet"); err != nil {
		t.Error(err)
	}
	if err := ValidateVizType("gauge"); !errors.Is(err, errors.ErrCodeInvalidVizType) {
		t.Errorf("error = %v, want INVALID_VIZ_TYPE", err)
	}
	if err := ValidateTheme("dark"); err != nil {
		t.Error(err)
	}
	if err := ValidateTheme("sepia"); !errors.Is(err, errors.ErrCodeInvalidTheme) {
		t.Errorf("error = %v, want INVALID_THEME", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}
	if opts.VizType != VizTypeBullet || opts.Theme != "light" {
		t.Errorf("opts = %+v", opts)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v", opts.Formats)
	}
	if opts.Width != DefaultWidth || opts.Height != DefaultHeight || opts.Scale != DefaultScale || opts.Columns != DefaultColumns {
		t.Errorf("sizes = %d %d %v %d", opts.Width, opts.Height, opts.Scale, opts.Columns)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Theme: "DARK"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	first := opts
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Theme != "dark" || first.Theme != opts.Theme || first.Width != opts.Width {
		t.Errorf("second call changed options: %+v vs %+v", first, opts)
	}
}

func TestOptionsInvalid(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"viz type", Options{VizType: "pie"}, errors.ErrCodeInvalidVizType},
		{"format", Options{Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"theme", Options{Theme: "neon"}, errors.ErrCodeInvalidTheme},
		{"width", Options{Width: MaxDimension + 1}, errors.ErrCodeInvalidInput},
		{"height", Options{Height: -1}, errors.ErrCodeInvalidInput},
		{"scale", Options{Scale: 20}, errors.ErrCodeInvalidInput},
		{"wrapper class", Options{WrapperClass: "w-1/2"}, errors.ErrCodeInvalidClass},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	reveal := false
	opts := Options{Theme: "dark", Reveal: &reveal, WrapperClass: "wide", Document: true}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	got := opts.ArtifactKeyOpts(FormatHTML)
	want := cache.ArtifactKeyOpts{
		VizType:      VizTypeBullet,
		Format:       FormatHTML,
		Theme:        "dark",
		Reveal:       "pre",
		Width:        DefaultWidth,
		Height:       DefaultHeight,
		Scale:        DefaultScale,
		Columns:      DefaultColumns,
		WrapperClass: "wide",
		Document:     true,
	}
	if got != want {
		t.Errorf("ArtifactKeyOpts() = %+v, want %+v", got, want)
	}
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		FormatSVG:  "image/svg+xml",
		FormatPNG:  "image/png",
		FormatHTML: "text/html; charset=utf-8",
		"bogus":    "application/octet-stream",
	}
	for format, want := range tests {
		if got := ContentType(format); got != want {
			t.Errorf("ContentType(%q) = %q, want %q", format, got, want)
		}
	}
}

func TestComputeLayoutErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*bullet.Input)
		code   errors.Code
		want   string
	}{
		{"no values", func(in *bullet.Input) { in.Values = nil }, errors.ErrCodeInvalidInput, "values"},
		{"no target", func(in *bullet.Input) { in.PrimaryTarget = nil }, errors.ErrCodeInvalidInput, "primary_target"},
		{"bad class", func(in *bullet.Input) { in.Values[0].Class = "a<b" }, errors.ErrCodeInvalidClass, "values[0]"},
		{"bad id", func(in *bullet.Input) { in.PrimaryTarget.ID = `x"y` }, errors.ErrCodeInvalidInput, "primary_target"},
		{"oversized before class", func(in *bullet.Input) {
			in.Values = []bullet.Item{{Value: 1}, {Value: 2}, {Value: 3}, {Value: 4, Class: "a<b"}}
		}, errors.ErrCodeInvalidInput, "at most 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := sampleInput()
			tt.mutate(&in)
			_, err := ComputeLayout(in)
			if !errors.Is(err, tt.code) {
				t.Fatalf("error = %v, want %s", err, tt.code)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should name %q", err, tt.want)
			}
		})
	}
}

func TestCacheable(t *testing.T) {
	in := sampleInput()
	if !Cacheable(in) {
		t.Error("text labels are cacheable")
	}
	in.Values[0].Label = bullet.FragmentLabel(template.HTML("<b>270</b>"))
	if Cacheable(in) {
		t.Error("Go-built fragments are not cacheable")
	}
}

func TestRunnerExecute(t *testing.T) {
	c := newMemCache()
	runner := NewRunner(c, nil, nil)
	opts := Options{Formats: []string{FormatSVG, FormatHTML, FormatJSON, FormatText}}

	first, err := runner.Execute(context.Background(), sampleInput(), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("first run should miss: %+v", first.CacheInfo)
	}
	if first.InputHash == "" || first.Stats.ItemCount != 4 {
		t.Errorf("result = %+v", first)
	}
	if len(first.Artifacts) != 4 {
		t.Fatalf("artifacts = %d, want 4", len(first.Artifacts))
	}
	if !strings.Contains(string(first.Artifacts[FormatSVG]), "<svg") {
		t.Error("svg artifact missing svg element")
	}
	if !strings.Contains(string(first.Artifacts[FormatHTML]), "Revenue") {
		t.Error("html artifact missing label")
	}
	if !strings.Contains(string(first.Artifacts[FormatText]), "min 0  max 270  total 270") {
		t.Errorf("text artifact = %q", first.Artifacts[FormatText])
	}

	second, err := runner.Execute(context.Background(), sampleInput(), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit: %+v", second.CacheInfo)
	}
	if string(second.Artifacts[FormatHTML]) != string(first.Artifacts[FormatHTML]) {
		t.Error("cached html differs from rendered html")
	}
	if second.Layout.Range != first.Layout.Range {
		t.Errorf("cached range = %+v, want %+v", second.Layout.Range, first.Layout.Range)
	}
}

func TestRunnerPartialCache(t *testing.T) {
	c := newMemCache()
	runner := NewRunner(c, nil, nil)
	ctx := context.Background()

	if _, err := runner.Execute(ctx, sampleInput(), Options{Formats: []string{FormatSVG}}); err != nil {
		t.Fatal(err)
	}
	res, err := runner.Execute(ctx, sampleInput(), Options{Formats: []string{FormatSVG, FormatJSON}})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.RenderHit {
		t.Error("json was never rendered, render should not be a full hit")
	}
	if len(res.Artifacts) != 2 {
		t.Errorf("artifacts = %v", len(res.Artifacts))
	}
}

func TestRunnerRefresh(t *testing.T) {
	runner := NewRunner(newMemCache(), nil, nil)
	ctx := context.Background()
	if _, err := runner.Execute(ctx, sampleInput(), Options{}); err != nil {
		t.Fatal(err)
	}
	res, err := runner.Execute(ctx, sampleInput(), Options{Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.LayoutHit || res.CacheInfo.RenderHit {
		t.Errorf("refresh should bypass the cache: %+v", res.CacheInfo)
	}
}

func TestRunnerSkipsUncacheableInput(t *testing.T) {
	c := newMemCache()
	runner := NewRunner(c, nil, nil)
	in := sampleInput()
	in.Values[0].Label = bullet.FragmentLabel(template.HTML("<em>270</em>"))

	res, err := runner.Execute(context.Background(), in, Options{Formats: []string{FormatHTML}})
	if err != nil {
		t.Fatal(err)
	}
	if c.sets != 0 {
		t.Errorf("cache writes = %d, want 0", c.sets)
	}
	if !strings.Contains(string(res.Artifacts[FormatHTML]), "<em>270</em>") {
		t.Error("fragment should be rendered as markup")
	}
}

func TestRunnerTable(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	res, err := runner.Execute(context.Background(), sampleInput(), Options{
		VizType: VizTypeTable,
		Formats: []string{FormatDOT, FormatJSON},
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.HasPrefix(string(res.Artifacts[FormatDOT]), "digraph") {
		t.Errorf("dot = %.40s", res.Artifacts[FormatDOT])
	}
	if !strings.Contains(string(res.Artifacts[FormatJSON]), `"range"`) {
		t.Error("json should describe the layout")
	}
}

func TestRunnerInvalidInput(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	in := sampleInput()
	in.Values = append(in.Values, bullet.Item{Value: 1}, bullet.Item{Value: 2}, bullet.Item{Value: 3})
	_, err := runner.Execute(context.Background(), in, Options{})
	if !errors.IsValidation(err) {
		t.Errorf("error = %v, want a validation error", err)
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	observability.NoopCacheHooks
	mu                 sync.Mutex
	layouts, renders   int
	hits, misses, sets int
}

func (h *recordingHooks) OnLayoutComplete(context.Context, int, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.layouts++
}

func (h *recordingHooks) OnRenderComplete(context.Context, string, []string, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.renders++
}

func (h *recordingHooks) OnCacheHit(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits++
}

func (h *recordingHooks) OnCacheMiss(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.misses++
}

func (h *recordingHooks) OnCacheSet(context.Context, string, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sets++
}

func TestRunnerHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	t.Cleanup(observability.Reset)

	runner := NewRunner(newMemCache(), nil, nil)
	for range 2 {
		if _, err := runner.Execute(context.Background(), sampleInput(), Options{}); err != nil {
			t.Fatal(err)
		}
	}
	if hooks.layouts != 2 || hooks.renders != 2 {
		t.Errorf("layouts = %d, renders = %d", hooks.layouts, hooks.renders)
	}
	// first run: layout and svg miss then set; second run: both hit
	if hooks.misses != 2 || hooks.sets != 2 || hooks.hits != 2 {
		t.Errorf("misses = %d, sets = %d, hits = %d", hooks.misses, hooks.sets, hooks.hits)
	}
}

func TestRenderEmpty(t *testing.T) {
	out, err := RenderEmpty(Options{Formats: []string{FormatHTML}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), sink.EmptyMessage) {
		t.Errorf("placeholder = %s", out)
	}
}

func TestRenderNilLayout(t *testing.T) {
	if _, err := Render(context.Background(), nil, Options{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v", err)
	}
}

func TestParse(t *testing.T) {
	in, err := Parse([]byte(`{"values":[{"value":1}],"secondary_values":[{"value":2}],"primary_target":{"value":1}}`), "json")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(in.Values) != 1 || in.PrimaryTarget == nil {
		t.Errorf("in = %+v", in)
	}

	if _, err := Parse([]byte("{"), "json"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
	if _, err := Parse(nil, "yaml"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chart.toml")
	data := "[[values]]\nvalue = 3\n\n[[secondary_values]]\nvalue = 4\n\n[primary_target]\nvalue = 2\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	in, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(in.Values) != 1 || in.Values[0].Value != 3 {
		t.Errorf("in = %+v", in)
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
	if _, err := Load(filepath.Join(dir, "chart.yaml")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
}

func TestLoadExamples(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "..", "examples", "*"))
	if err != nil || len(paths) == 0 {
		t.Fatalf("no example charts found: %v", err)
	}
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			in, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if _, err := ComputeLayout(in); err != nil {
				t.Errorf("ComputeLayout() error: %v", err)
			}
		})
	}
}

func TestParseReveal(t *testing.T) {
	tests := []struct {
		in   string
		want string
		err  bool
	}{
		{"", "", false},
		{"none", "", false},
		{"pre", "pre", false},
		{"false", "pre", false},
		{"Shown", "shown", false},
		{"true", "shown", false},
		{"later", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseReveal(tt.in)
			if (err != nil) != tt.err {
				t.Fatalf("ParseReveal(%q) error = %v", tt.in, err)
			}
			if err != nil {
				if !errors.Is(err, errors.ErrCodeInvalidInput) {
					t.Errorf("error code = %q", errors.GetCode(err))
				}
				return
			}
			if tok := sink.RevealToken(got); tok != tt.want {
				t.Errorf("ParseReveal(%q) = %s, want %s", tt.in, tok, tt.want)
			}
		})
	}
}
