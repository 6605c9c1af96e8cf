// Package pkg provides the core libraries for bullet chart layout and rendering.
//
// # Overview
//
// A bullet chart is a single horizontal axis carrying stacked value bars,
// stacked secondary bars, up to two target markers and a scale. Values may
// be negative: the axis then splits into a negative and a positive region
// around a zero line. The pkg directory is organized into three areas:
//
//  1. [bullet] - Domain logic (validation, sign bucketing, axis range, geometry)
//  2. [render] - Output sinks (HTML, SVG, PNG, PDF, JSON, text, Graphviz table)
//  3. [pipeline] - Orchestration (load → layout → render) with caching
//
// # Architecture
//
// The typical data flow:
//
//	Chart file (JSON, TOML, XLSX)
//	         ↓
//	    [io] package (decode bullet.Input)
//	         ↓
//	    [bullet] package (Configure: validate + compute Layout)
//	         ↓
//	    [render/sink] or [render/table] (artifacts)
//
// # Quick Start
//
//	in := bullet.Input{
//	    Values:          []bullet.Item{{Value: 270, Label: bullet.TextLabel("Revenue")}},
//	    SecondaryValues: []bullet.Item{{Value: 150}, {Value: 100}},
//	    PrimaryTarget:   &bullet.Item{Value: 250},
//	}
//	l, err := bullet.Configure(in)
//	if err != nil {
//	    return err
//	}
//	svg := sink.RenderSVG(l, sink.WithTheme(styles.Dark))
//
// # Main Packages
//
// [bullet] - The renderer-independent layout engine. [bullet.Configure] is
// the only entry point; it never mutates its input and always returns a
// fresh [bullet.Layout].
//
// [render/sink] - Native renderers for the layout. The HTML sink produces
// the three-bucket markup with hover events; SVG uses svgo; PNG rasterises
// with golang.org/x/image; PDF converts the SVG with rsvg-convert.
//
// [render/table] - A Graphviz HTML-table breakdown of every positioned item.
//
// [render/styles] - Light and dark colour themes.
//
// [io] - Chart input in JSON, TOML and Excel form.
//
// ## Infrastructure
//
// [pipeline] - The load → layout → render pipeline used by the CLI and the
// HTTP API, so both validate, cache and render identically.
//
// [cache] - Layout and artifact caching with file, Redis and MongoDB backends.
//
// [config] - Settings from bullet.toml and BULLET_* environment variables.
//
// [errors] - Coded errors shared by the CLI and the API.
//
// [observability] - Pluggable hooks for pipeline, cache and HTTP events.
//
// # Testing
//
//	go test ./pkg/...                 # All tests
//	go test ./pkg/bullet/...          # Layout engine only
//	go test -run Example ./pkg/...    # Examples only
//
// [bullet]: https://pkg.go.dev/github.com/matzehuels/bullet/pkg/bullet
// [bullet.Configure]: https://pkg.go.dev/github.com/matzehuels/bullet/pkg/bullet#Configure
// [bullet.Layout]: https://pkg.go.dev/github.com/matzehuels/bullet/pkg/bullet#Layout
// [render]: https://pkg.go.dev/github.com/matzehuels/bullet/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/bullet/pkg/render/sink
// [render/table]: https://pkg.go.dev/github.com/matzehuels/bullet/pkg/render/table
// [render/styles]: https://pkg.go.dev/github.com/matzehuels/bullet/pkg/render/styles
// [io]: https://pkg.go.dev/github.com/matzehuels/bullet/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/bullet/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/bullet/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/bullet/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/bullet/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/bullet/pkg/observability
package pkg
