// Package pipeline provides the chart pipeline shared by the CLI and the
// HTTP API.
//
// This package implements the complete load → layout → render pipeline.
// By centralizing this logic, every entry point validates, caches and
// renders charts the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Decode a chart input from a JSON, TOML or Excel file
//  2. Layout: Validate the input and compute its [bullet.Layout]
//  3. Render: Generate output in the requested formats, concurrently
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	in, err := pipeline.Load("chart.toml")
//	result, err := runner.Execute(ctx, in, pipeline.Options{
//	    Formats: []string{"svg", "html"},
//	    Theme:   "dark",
//	})
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	l, err := runner.ComputeLayout(ctx, in, opts)
//	artifacts, err := runner.Render(ctx, l, opts)
//
// # Visualization Types
//
// "bullet" renders the chart itself (svg, html, png, pdf, json, txt).
// "table" renders a Graphviz breakdown of the layout (svg, png, pdf, dot,
// json).
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bullet/pkg/bullet"
	"github.com/matzehuels/bullet/pkg/cache"
	"github.com/matzehuels/bullet/pkg/errors"
	"github.com/matzehuels/bullet/pkg/render/sink"
	"github.com/matzehuels/bullet/pkg/render/styles"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default output width in pixels.
	DefaultWidth = sink.DefaultWidth

	// DefaultHeight is the default output height in pixels.
	DefaultHeight = sink.DefaultHeight

	// DefaultScale is the default PNG resolution multiplier.
	DefaultScale = 2.0

	// DefaultColumns is the default width of text output.
	DefaultColumns = sink.DefaultColumns

	// MaxDimension bounds width and height.
	MaxDimension = 10000
)

// Visualization types.
const (
	VizTypeBullet = "bullet"
	VizTypeTable  = "table"
)

// DefaultVizType is the default visualization type.
const DefaultVizType = VizTypeBullet

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatHTML = "html"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatText = "txt"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats per visualization type.
var ValidFormats = map[string][]string{
	VizTypeBullet: {FormatSVG, FormatHTML, FormatPNG, FormatPDF, FormatJSON, FormatText},
	VizTypeTable:  {FormatSVG, FormatPNG, FormatPDF, FormatDOT, FormatJSON},
}

var contentTypes = map[string]string{
	FormatSVG:  "image/svg+xml",
	FormatHTML: "text/html; charset=utf-8",
	FormatPNG:  "image/png",
	FormatPDF:  "application/pdf",
	FormatJSON: "application/json",
	FormatText: "text/plain; charset=utf-8",
	FormatDOT:  "text/vnd.graphviz; charset=utf-8",
}

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	if ct, ok := contentTypes[format]; ok {
		return ct
	}
	return "application/octet-stream"
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the chart pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Render options
	VizType      string   `json:"viz_type,omitempty"`
	Formats      []string `json:"formats,omitempty"`
	Theme        string   `json:"theme,omitempty"`
	Reveal       *bool    `json:"reveal,omitempty"` // nil renders immediately; false pre-reveal; true revealed
	Width        int      `json:"width,omitempty"`
	Height       int      `json:"height,omitempty"`
	Scale        float64  `json:"scale,omitempty"`   // PNG resolution multiplier
	Columns      int      `json:"columns,omitempty"` // text output width
	WrapperClass string   `json:"wrapper_class,omitempty"`
	Document     bool     `json:"document,omitempty"` // standalone HTML page
	Refresh      bool     `json:"refresh,omitempty"`  // bypass cached layouts and artifacts

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Layout is the computed chart layout.
	Layout *bullet.Layout

	// InputHash is the content hash of the input.
	InputHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ItemCount  int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateVizType checks that a visualization type is valid.
func ValidateVizType(vizType string) error {
	if _, ok := ValidFormats[vizType]; !ok {
		return errors.New(errors.ErrCodeInvalidVizType,
			"invalid viz_type: %q (must be one of: bullet, table)", vizType)
	}
	return nil
}

// ValidateFormat checks that a format is supported by a visualization type.
func ValidateFormat(vizType, format string) error {
	valid, ok := ValidFormats[vizType]
	if !ok {
		return ValidateVizType(vizType)
	}
	if !slices.Contains(valid, format) {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format for %s: %q (must be one of: %s)", vizType, format, strings.Join(valid, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are supported by a visualization type.
func ValidateFormats(vizType string, formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(vizType, f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateTheme checks that a theme exists.
func ValidateTheme(theme string) error {
	if _, ok := styles.ByName(theme); !ok {
		return errors.New(errors.ErrCodeInvalidTheme,
			"invalid theme: %q (must be one of: %s)", theme, strings.Join(styles.Names(), ", "))
	}
	return nil
}

// ParseReveal maps a reveal name onto the three reveal states: "none"
// (or empty) renders immediately, "pre" waits to be revealed and "shown"
// is already revealed. "false" and "true" are accepted as aliases.
func ParseReveal(v string) (*bool, error) {
	switch strings.ToLower(v) {
	case "", "none":
		return nil, nil
	case "pre", "false":
		b := false
		return &b, nil
	case "shown", "true":
		b := true
		return &b, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "invalid reveal: %q (must be one of: none, pre, shown)", v)
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks all fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if o.VizType == "" {
		o.VizType = DefaultVizType
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Theme == "" {
		o.Theme = styles.NameLight
	}
	o.Theme = strings.ToLower(o.Theme)
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Columns == 0 {
		o.Columns = DefaultColumns
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	if err := ValidateFormats(o.VizType, o.Formats); err != nil {
		return err
	}
	if err := ValidateTheme(o.Theme); err != nil {
		return err
	}
	if o.Width < 0 || o.Height < 0 || o.Width > MaxDimension || o.Height > MaxDimension {
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid size %dx%d (must be between 1 and %d)", o.Width, o.Height, MaxDimension)
	}
	if o.Scale < 0 || o.Scale > 8 {
		return errors.New(errors.ErrCodeInvalidInput, "invalid scale %v (must be between 0 and 8)", o.Scale)
	}
	return errors.ValidateClassName(o.WrapperClass)
}

// IsTable returns true if this is a table visualization.
func (o *Options) IsTable() bool {
	return o.VizType == VizTypeTable
}

// ThemeStyle returns the selected theme, falling back to light.
func (o *Options) ThemeStyle() styles.Theme {
	t, ok := styles.ByName(o.Theme)
	if !ok {
		return styles.Light
	}
	return t
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		VizType:      o.VizType,
		Format:       format,
		Theme:        o.Theme,
		Reveal:       sink.RevealToken(o.Reveal),
		Width:        o.Width,
		Height:       o.Height,
		Scale:        o.Scale,
		Columns:      o.Columns,
		WrapperClass: o.WrapperClass,
		Document:     o.Document,
	}
}

// String summarises the options for log output.
func (o *Options) String() string {
	return fmt.Sprintf("%s %s theme=%s %dx%d", o.VizType, strings.Join(o.Formats, ","), o.Theme, o.Width, o.Height)
}
