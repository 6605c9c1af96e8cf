package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/bullet/pkg/bullet"
	"github.com/matzehuels/bullet/pkg/render/styles"
)

func previewInput() bullet.Input {
	return bullet.Input{
		Values:          []bullet.Item{{ID: "rev", Value: 270, Label: bullet.TextLabel("Revenue")}},
		SecondaryValues: []bullet.Item{{Value: 150}, {Value: -100, Tooltip: "refunds"}},
		PrimaryTarget:   &bullet.Item{Value: 250},
	}
}

func newTestPreview(t *testing.T) previewModel {
	t.Helper()
	m, err := newPreviewModel("revenue.json", previewInput(), "light")
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func press(m previewModel, key tea.KeyMsg) previewModel {
	next, _ := m.Update(key)
	return next.(previewModel)
}

var (
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyLeft  = tea.KeyMsg{Type: tea.KeyLeft}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestPreviewFocusCycling(t *testing.T) {
	m := newTestPreview(t)
	n := len(m.focusable())
	if n != 4 {
		t.Fatalf("focusable items = %d, want 4", n)
	}

	m = press(m, keyRight)
	first, ok := m.focused()
	if !ok || !first.Item.Focused {
		t.Fatalf("first item should be focused, got %+v", first)
	}
	for _, it := range m.focusable() {
		if it.StyleTag != first.StyleTag && !it.Item.Unfocused {
			t.Errorf("%s should be unfocused", it.StyleTag)
		}
	}

	for range n {
		m = press(m, keyRight)
	}
	if again, _ := m.focused(); again.StyleTag != first.StyleTag || again.Sign != first.Sign {
		t.Errorf("focus should wrap around to %s, got %s", first.StyleTag, again.StyleTag)
	}

	m = press(m, keyEsc)
	if _, ok := m.focused(); ok {
		t.Error("esc should clear focus")
	}
	for _, it := range m.layout.Items {
		if it.Item.Focused || it.Item.Unfocused {
			t.Errorf("%s keeps focus flags after esc", it.StyleTag)
		}
	}
}

func TestPreviewFocusBackwards(t *testing.T) {
	m := press(newTestPreview(t), keyLeft)
	items := m.focusable()
	if got, _ := m.focused(); got.StyleTag != items[len(items)-1].StyleTag {
		t.Errorf("left from no focus should select the last item, got %s", got.StyleTag)
	}
}

func TestPreviewTooltip(t *testing.T) {
	m := newTestPreview(t)
	for range len(m.focusable()) {
		m = press(m, keyRight)
		if it, _ := m.focused(); it.Item.Tooltip == "refunds" {
			if !strings.Contains(m.View(), "refunds") {
				t.Error("view should show the focused item's tooltip")
			}
			return
		}
	}
	t.Fatal("item with tooltip never focused")
}

func TestPreviewThemeToggle(t *testing.T) {
	m := press(newTestPreview(t), runeKey('t'))
	if m.theme.Name != styles.NameDark {
		t.Errorf("theme = %s, want dark", m.theme.Name)
	}
	m = press(m, runeKey('t'))
	if m.theme.Name != styles.NameLight {
		t.Errorf("theme = %s, want light", m.theme.Name)
	}
}

func TestPreviewReveal(t *testing.T) {
	m := newTestPreview(t)
	next, cmd := m.Update(runeKey('r'))
	m = next.(previewModel)
	if cmd == nil || m.frame != 0 {
		t.Fatalf("reveal should restart the animation (frame=%d)", m.frame)
	}

	start := m.revealed()
	for _, it := range start.Items {
		if !it.IsTarget() && it.WidthPercent != 0 {
			t.Errorf("%s width = %v at frame 0, want 0", it.StyleTag, it.WidthPercent)
		}
	}

	for range revealFrames {
		next, _ = m.Update(revealTickMsg{})
		m = next.(previewModel)
	}
	if m.frame != revealFrames || m.revealed() != m.layout {
		t.Errorf("animation should finish at frame %d, got %d", revealFrames, m.frame)
	}
}

func TestPreviewWindowSize(t *testing.T) {
	next, _ := newTestPreview(t).Update(tea.WindowSizeMsg{Width: 100, Height: 20})
	if got := next.(previewModel).columns; got != 96 {
		t.Errorf("columns = %d, want 96", got)
	}
	next, _ = newTestPreview(t).Update(tea.WindowSizeMsg{Width: 10, Height: 20})
	if got := next.(previewModel).columns; got != 20 {
		t.Errorf("columns = %d, want minimum 20", got)
	}
}

func TestPreviewQuit(t *testing.T) {
	_, cmd := newTestPreview(t).Update(runeKey('q'))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
