package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/discrete/pkg/group"
)

// kleinGroup is the Klein four-group: g0 and g1 commute.
func kleinGroup(t *testing.T) *group.Group {
	t.Helper()
	g, err := group.New(4, 2,
		[]group.Point{1, 2, 0, 3, 3, 0, 2, 1},
		[]group.Word{{}, {0}, {1}, {0, 1}})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func press(m exploreModel, keys ...tea.KeyMsg) exploreModel {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(exploreModel)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestExploreApplyGenerators(t *testing.T) {
	m := press(newExploreModel(kleinGroup(t)), runes("0"), runes("1"))

	if m.current != 3 {
		t.Errorf("current = %d, want 3", m.current)
	}
	if got := m.path.String(); got != "0 1" {
		t.Errorf("path = %q, want %q", got, "0 1")
	}
	if len(m.trail) != 2 {
		t.Errorf("trail length = %d, want 2", len(m.trail))
	}
}

func TestExploreBackAndReset(t *testing.T) {
	m := press(newExploreModel(kleinGroup(t)), runes("0"), runes("1"))

	m = press(m, tea.KeyMsg{Type: tea.KeyBackspace})
	if m.current != 1 || len(m.path) != 1 {
		t.Errorf("after back: current = %d, path = %v, want 1 and [0]", m.current, m.path)
	}

	m = press(m, runes("r"))
	if m.current != group.Identity || len(m.path) != 0 || len(m.trail) != 0 {
		t.Errorf("after reset: current = %d, path = %v, trail = %v", m.current, m.path, m.trail)
	}

	// Back at the identity is a no-op.
	m = press(m, runes("u"))
	if m.current != group.Identity {
		t.Errorf("back at identity moved to %d", m.current)
	}
}

func TestExploreInvalidGenerator(t *testing.T) {
	m := press(newExploreModel(kleinGroup(t)), runes("5"))

	if m.current != group.Identity {
		t.Errorf("current = %d, want identity", m.current)
	}
	if !strings.Contains(m.message, "no generator g5") {
		t.Errorf("message = %q", m.message)
	}

	m = press(m, runes("0"))
	if m.message != "" {
		t.Errorf("message should clear on the next key, got %q", m.message)
	}
}

func TestExploreUndefinedEntry(t *testing.T) {
	g, err := group.New(2, 1, []group.Point{1, group.None}, []group.Word{{}, {0}})
	if err != nil {
		t.Fatal(err)
	}
	m := press(newExploreModel(g), runes("0"), runes("0"))

	if m.current != 1 {
		t.Errorf("current = %d, want 1", m.current)
	}
	if !strings.Contains(m.message, "undefined") {
		t.Errorf("message = %q, want undefined entry notice", m.message)
	}
}

func TestExploreQuit(t *testing.T) {
	m := newExploreModel(kleinGroup(t))
	for _, k := range []tea.KeyMsg{runes("q"), {Type: tea.KeyCtrlC}, {Type: tea.KeyEsc}} {
		_, cmd := m.Update(k)
		if cmd == nil {
			t.Errorf("%s should quit", k)
			continue
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s returned %T, want tea.QuitMsg", k, cmd())
		}
	}
}

func TestExploreView(t *testing.T) {
	m := press(newExploreModel(kleinGroup(t)), runes("1"))
	view := m.View()

	for _, want := range []string{"4 points", "point  2", "g0", "g1", "q quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}
