package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/bullet/pkg/bullet"
	"github.com/matzehuels/bullet/pkg/pipeline"
	"github.com/matzehuels/bullet/pkg/render/sink"
	"github.com/matzehuels/bullet/pkg/render/styles"
)

// revealFrames is the number of animation steps of a reveal.
const revealFrames = 20

// revealInterval is the delay between reveal animation steps.
const revealInterval = 25 * time.Millisecond

var (
	previewHelpStyle    = lipgloss.NewStyle().Foreground(colorDim)
	previewTooltipStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorGray).
				Padding(0, 1)
)

// previewCommand creates the preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var theme string

	cmd := &cobra.Command{
		Use:   "preview [chart file]",
		Short: "Explore a chart interactively in the terminal",
		Long: `Explore a chart interactively in the terminal.

Keys:
  ←/→ or tab   move focus between items
  esc          clear focus
  r            replay the reveal animation
  t            toggle light/dark theme
  q            quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if theme == "" {
				theme = c.defaultOptions().Theme
			}
			in, err := pipeline.Load(args[0])
			if err != nil {
				return err
			}
			m, err := newPreviewModel(args[0], in, theme)
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(m, tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().StringVar(&theme, "theme", "", "initial colour theme: light, dark")

	return cmd
}

// =============================================================================
// previewModel - Interactive chart explorer
// =============================================================================

// revealTickMsg advances the reveal animation.
type revealTickMsg struct{}

// previewModel is the bubbletea model for the preview command. Focus
// changes rebuild the layout through bullet.Configure with the focus
// flags set on a copy of the input.
type previewModel struct {
	title   string
	input   bullet.Input
	layout  *bullet.Layout
	theme   styles.Theme
	columns int

	// focus indexes focusable(); -1 means nothing is focused.
	focus int
	// frame counts reveal steps; revealFrames means fully revealed.
	frame int
}

func newPreviewModel(title string, in bullet.Input, theme string) (previewModel, error) {
	t, ok := styles.ByName(strings.ToLower(theme))
	if !ok {
		t = styles.Light
	}
	l, err := bullet.Configure(in)
	if err != nil {
		return previewModel{}, err
	}
	return previewModel{
		title:   title,
		input:   in,
		layout:  l,
		theme:   t,
		columns: sink.DefaultColumns,
		focus:   -1,
		frame:   revealFrames,
	}, nil
}

func (m previewModel) Init() tea.Cmd {
	return nil
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "right", "l", "tab":
			return m.moveFocus(1), nil
		case "left", "h", "shift+tab":
			return m.moveFocus(-1), nil
		case "esc":
			return m.setFocus(-1), nil
		case "t":
			if m.theme.Name == styles.NameDark {
				m.theme = styles.Light
			} else {
				m.theme = styles.Dark
			}
		case "r":
			m.frame = 0
			return m, revealTick()
		}
	case tea.WindowSizeMsg:
		m.columns = max(msg.Width-4, 20)
	case revealTickMsg:
		if m.frame < revealFrames {
			m.frame++
			if m.frame < revealFrames {
				return m, revealTick()
			}
		}
	}
	return m, nil
}

func (m previewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.title))
	b.WriteString("\n\n")
	b.WriteString(sink.RenderText(m.revealed(), sink.WithTextTheme(m.theme), sink.WithColumns(m.columns), sink.WithLegend()))
	b.WriteString("\n\n")

	if it, ok := m.focused(); ok {
		b.WriteString(previewTooltipStyle.Render(tooltip(it)))
		b.WriteString("\n")
	}
	b.WriteString(previewHelpStyle.Render(fmt.Sprintf("←/→ focus  esc clear  r reveal  t theme (%s)  q quit", m.theme.Name)))
	return b.String()
}

// focusable returns the layout items the cursor can land on. The scale
// is excluded.
func (m previewModel) focusable() []bullet.LayoutItem {
	var out []bullet.LayoutItem
	for _, it := range m.layout.Items {
		if it.Series != bullet.SeriesScale {
			out = append(out, it)
		}
	}
	return out
}

func (m previewModel) focused() (bullet.LayoutItem, bool) {
	items := m.focusable()
	if m.focus < 0 || m.focus >= len(items) {
		return bullet.LayoutItem{}, false
	}
	return items[m.focus], true
}

func (m previewModel) moveFocus(delta int) previewModel {
	n := len(m.focusable())
	if n == 0 {
		return m
	}
	next := m.focus + delta
	switch {
	case m.focus < 0 && delta < 0:
		next = n - 1
	case next < 0:
		next = n - 1
	case next >= n:
		next = 0
	}
	return m.setFocus(next)
}

// setFocus moves the cursor to index i of focusable() and rebuilds the
// layout with the matching focus flags.
func (m previewModel) setFocus(i int) previewModel {
	target, ok := bullet.LayoutItem{}, false
	if items := m.focusable(); i >= 0 && i < len(items) {
		target, ok = items[i], true
	}

	in := m.input.Clone()
	mark := func(series bullet.Series, idx int, it *bullet.Item) {
		it.Focused = ok && series == target.Series && idx == target.Index
		it.Unfocused = ok && !it.Focused
	}
	for j := range in.Values {
		mark(bullet.SeriesValues, j, &in.Values[j])
	}
	for j := range in.SecondaryValues {
		mark(bullet.SeriesSecondary, j, &in.SecondaryValues[j])
	}
	for j, t := range []*bullet.Item{in.PrimaryTarget, in.SecondaryTarget} {
		if t != nil {
			mark(bullet.SeriesTarget, j, t)
		}
	}

	l, err := bullet.Configure(in)
	if err != nil {
		// Focus flags never affect validity.
		return m
	}
	m.input = in
	m.layout = l
	m.focus = i
	if !ok {
		m.focus = -1
	}
	return m
}

// revealed returns the layout as it looks at the current animation frame:
// bar widths and offsets grow from the zero line, targets stay in place.
func (m previewModel) revealed() *bullet.Layout {
	if m.frame >= revealFrames {
		return m.layout
	}
	f := float64(m.frame) / revealFrames
	l := *m.layout
	l.Items = make([]bullet.LayoutItem, len(m.layout.Items))
	for i, it := range m.layout.Items {
		if !it.IsTarget() {
			it.WidthPercent *= f
			it.OffsetPercent *= f
		}
		l.Items[i] = it
	}
	return &l
}

func revealTick() tea.Cmd {
	return tea.Tick(revealInterval, func(time.Time) tea.Msg { return revealTickMsg{} })
}

// tooltip describes a focused item: its tooltip when set, otherwise its
// label and value.
func tooltip(it bullet.LayoutItem) string {
	head := StyleValue.Render(it.StyleTag) + " " + StyleNumber.Render(bullet.FormatValue(it.Item.Value))
	body := it.Item.Tooltip
	if body == "" {
		body = it.Item.Label.String()
	}
	if body == "" {
		return head
	}
	return head + "\n" + body
}
