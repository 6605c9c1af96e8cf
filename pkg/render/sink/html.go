package sink

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/matzehuels/bullet/pkg/bullet"
	"github.com/matzehuels/bullet/pkg/render/styles"
)

// EmptyMessage is shown in place of a chart that has no data yet.
const EmptyMessage = "[Bullet chart awaiting data...]"

// HTMLOption configures HTML rendering.
type HTMLOption func(*htmlRenderer)

type htmlRenderer struct {
	theme        styles.Theme
	wrapperClass string
	reveal       *bool
	document     bool
	title        string
}

// WithHTMLTheme selects the colour theme.
func WithHTMLTheme(t styles.Theme) HTMLOption { return func(r *htmlRenderer) { r.theme = t } }

// WithWrapperClass adds a class to the outer element, typically to size it.
func WithWrapperClass(c string) HTMLOption { return func(r *htmlRenderer) { r.wrapperClass = c } }

// WithHTMLReveal sets the reveal state; see the package documentation.
func WithHTMLReveal(reveal *bool) HTMLOption { return func(r *htmlRenderer) { r.reveal = reveal } }

// WithDocument emits a standalone page with stylesheet and event script.
func WithDocument() HTMLOption { return func(r *htmlRenderer) { r.document = true } }

// WithTitle sets the page title used by WithDocument.
func WithTitle(t string) HTMLOption { return func(r *htmlRenderer) { r.title = t } }

func newHTMLRenderer(opts ...HTMLOption) htmlRenderer {
	r := htmlRenderer{theme: styles.Light, title: "Bullet chart"}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// htmlItem is the view model of one positioned element.
type htmlItem struct {
	Class   string
	Style   template.CSS
	Tooltip string
	ID      string
	Label   any    // string or template.HTML
	Bucket  string // label classes: sign and theme
}

type htmlSection struct {
	Class string
	Style template.CSS
	Items []htmlItem
}

type htmlView struct {
	WrapperClass   string
	Theme          string
	Negative       htmlSection
	Zero           htmlSection
	Positive       htmlSection
	ZeroLabel      string
	ZeroLabelClass string
	Empty          bool
	Message        string
}

var htmlTmpl = template.Must(template.New("bullet").Parse(`
{{- define "items"}}{{range .}}
      <div class="{{.Class}}" style="{{.Style}}"{{with .Tooltip}} title="{{.}}"{{end}}{{with .ID}} data-id="{{.}}"{{end}}>
        {{- if .Label}}<label class="{{.Bucket}} scale-label">{{.Label}}</label>{{end -}}
      </div>{{end}}{{end -}}
<div class="{{.WrapperClass}}" data-theme="{{.Theme}}">
{{- if .Empty}}
  <div>{{.Message}}</div>
{{- else}}
  <div class="all-buckets">
    <section class="{{.Negative.Class}}" style="{{.Negative.Style}}">
      {{- template "items" .Negative.Items}}
    </section>
    <section class="{{.Zero.Class}}" style="{{.Zero.Style}}">
      {{- template "items" .Zero.Items}}
      <p class="{{.ZeroLabelClass}}">{{.ZeroLabel}}</p>
    </section>
    <section class="{{.Positive.Class}}" style="{{.Positive.Style}}">
      {{- template "items" .Positive.Items}}
    </section>
  </div>
{{- end}}
</div>
`))

// RenderHTML renders the layout as HTML markup.
func RenderHTML(l *bullet.Layout, opts ...HTMLOption) ([]byte, error) {
	r := newHTMLRenderer(opts...)
	view := r.view(l)
	return r.execute(view)
}

// RenderEmptyHTML renders the placeholder shown before data arrives.
func RenderEmptyHTML(opts ...HTMLOption) ([]byte, error) {
	r := newHTMLRenderer(opts...)
	return r.execute(htmlView{
		WrapperClass: r.wrapperClasses(),
		Theme:        r.theme.Name,
		Empty:        true,
		Message:      EmptyMessage,
	})
}

func (r htmlRenderer) execute(view htmlView) ([]byte, error) {
	var body bytes.Buffer
	if err := htmlTmpl.Execute(&body, view); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	if !r.document {
		return bytes.TrimSpace(body.Bytes()), nil
	}

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&buf, "<title>%s</title>\n", template.HTMLEscapeString(r.title))
	fmt.Fprintf(&buf, "<style>%s</style>\n", stylesheet(r.theme))
	buf.WriteString("</head>\n<body>\n")
	buf.Write(bytes.TrimSpace(body.Bytes()))
	fmt.Fprintf(&buf, "\n<script>%s</script>\n</body>\n</html>\n", hoverScript)
	return buf.Bytes(), nil
}

func (r htmlRenderer) wrapperClasses() string {
	return joinClasses("bullet", r.wrapperClass)
}

func (r htmlRenderer) view(l *bullet.Layout) htmlView {
	_, collapsed := revealState(r.reveal)
	dark := r.theme.Name == styles.NameDark
	pre := ""
	if collapsed {
		pre = "pre-reveal"
	}
	darkClass := ""
	if dark {
		darkClass = "use-dark-theme"
	}

	t := l.Track
	v := htmlView{
		WrapperClass:   r.wrapperClasses(),
		Theme:          r.theme.Name,
		ZeroLabel:      "0",
		ZeroLabelClass: joinClasses("zero-label", darkClass),
		Negative:       htmlSection{Class: joinClasses("negative-bucket", pre)},
		Zero:           htmlSection{Class: joinClasses("zero-bucket", pre, darkClass)},
		Positive:       htmlSection{Class: joinClasses("positive-bucket", pre)},
	}
	if !t.Zero.Visible {
		v.Zero.Class = joinClasses(v.Zero.Class, "is-hidden")
	} else {
		v.Zero.Style = template.CSS(fmt.Sprintf("width: %spx", fmtNum(t.MarkerPixels)))
	}
	if t.Negative.Visible {
		v.Negative.Style = sectionWidth(t.Negative)
	}
	if t.Positive.Visible {
		v.Positive.Style = sectionWidth(t.Positive)
	}

	for _, it := range l.Items {
		hi := htmlItem{
			Class:   itemClasses(it),
			Style:   itemStyle(it),
			Tooltip: it.Item.Tooltip,
			ID:      it.Item.ID,
			Bucket:  joinClasses(it.Sign.String(), darkClass),
		}
		if !it.IsTarget() {
			hi.Label = labelContent(it.Item.Label)
		}
		switch it.Sign {
		case bullet.Negative:
			v.Negative.Items = append(v.Negative.Items, hi)
		case bullet.Positive:
			v.Positive.Items = append(v.Positive.Items, hi)
		default:
			v.Zero.Items = append(v.Zero.Items, hi)
		}
	}
	return v
}

func sectionWidth(b bullet.TrackBucket) template.CSS {
	if b.PixelAdjust == 0 {
		return template.CSS(fmt.Sprintf("width: %s%%", fmtNum(b.Percent)))
	}
	return template.CSS(fmt.Sprintf("width: calc(%s%% - %spx)", fmtNum(b.Percent), fmtNum(b.PixelAdjust)))
}

func itemClasses(it bullet.LayoutItem) string {
	var focused, unfocused string
	if it.Item.Focused {
		focused = "focused"
	}
	if it.Item.Unfocused {
		unfocused = "unfocused"
	}
	return joinClasses(it.Sign.String(), it.StyleTag, focused, unfocused, it.Item.Class)
}

func itemStyle(it bullet.LayoutItem) template.CSS {
	var parts []string
	if it.Anchor != bullet.AnchorNone {
		parts = append(parts, fmt.Sprintf("%s: %s%%", it.Anchor, fmtNum(it.OffsetPercent)))
	}
	if !it.IsTarget() {
		parts = append(parts, fmt.Sprintf("width: %s%%", fmtNum(it.WidthPercent)))
	}
	return template.CSS(strings.Join(parts, "; "))
}

// labelContent passes trusted markup through and stringifies the rest.
func labelContent(l bullet.Label) any {
	if l.Empty() {
		return nil
	}
	if f, ok := l.Fragment(); ok {
		if h, ok := f.(template.HTML); ok {
			return h
		}
	}
	return l.String()
}

func joinClasses(classes ...string) string {
	var out []string
	for _, c := range classes {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return strings.Join(out, " ")
}

// fmtNum formats a CSS number with at most four decimals.
func fmtNum(v float64) string {
	s := strconv.FormatFloat(v, 'f', 4, 64)
	s = strings.TrimSuffix(strings.TrimRight(s, "0"), ".")
	if s == "-0" {
		return "0"
	}
	return s
}

func stylesheet(t styles.Theme) string {
	var b strings.Builder
	fmt.Fprintf(&b, `
.bullet { position: relative; height: 40px; margin: 16px 0; font-family: %s; background: %s; }
.bullet .all-buckets { display: flex; width: 100%%; height: 100%%; }
.bullet section { position: relative; height: 100%%; }
.bullet .zero-bucket { background: %s; }
.bullet .is-hidden { display: none; }
.bullet section > div { position: absolute; transition: width 0.6s ease-out; }
.bullet .pre-reveal > div { width: 0 !important; }
.bullet .scale { top: 0; height: 100%%; background: %s; }
.bullet .val1, .bullet .val2, .bullet .val3 { top: 15%%; height: 45%%; }
.bullet .secondaryVal1, .bullet .secondaryVal2, .bullet .secondaryVal3 { top: 68%%; height: 20%%; }
.bullet .primaryTarget, .bullet .secondaryTarget { top: 8%%; height: 84%%; width: 3px; }
.bullet .zero .primaryTarget, .bullet .zero .secondaryTarget { left: 0; }
.bullet .focused { outline: 2px solid %s; z-index: 1; }
.bullet .unfocused { opacity: %s; }
.bullet label { position: absolute; bottom: 100%%; font-size: 11px; white-space: nowrap; color: %s; }
.bullet .positive label { right: 0; }
.bullet .negative label { left: 0; }
.bullet .zero-label { position: absolute; top: 100%%; margin: 0; font-size: 11px; transform: translateX(-50%%); color: %s; }
`, t.FontFamily, t.Background, t.ZeroLine, t.Scale, t.Focus, fmtNum(t.UnfocusedOpacity), t.ScaleLabel, t.ZeroLabel)

	for i, c := range t.Values {
		fmt.Fprintf(&b, ".bullet .val%d { background: %s; }\n", i+1, c)
	}
	for i, c := range t.Secondary {
		fmt.Fprintf(&b, ".bullet .secondaryVal%d { background: %s; }\n", i+1, c)
	}
	fmt.Fprintf(&b, ".bullet .primaryTarget { background: %s; }\n", t.PrimaryTarget)
	fmt.Fprintf(&b, ".bullet .secondaryTarget { background: %s; }\n", t.SecondaryTarget)
	return b.String()
}

// hoverScript re-dispatches mouse hover on items as bubbling custom events.
const hoverScript = `
document.querySelectorAll('.bullet [data-id]').forEach(function (el) {
  ['mouseover', 'mouseout'].forEach(function (type) {
    el.addEventListener(type, function () {
      el.dispatchEvent(new CustomEvent('bullet:item' + type.slice(5), {
        bubbles: true, detail: { id: el.dataset.id }
      }));
    });
  });
});`
