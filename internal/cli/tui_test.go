package cli

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func typeText(m EntityPickerModel, s string) EntityPickerModel {
	for _, r := range s {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(EntityPickerModel)
	}
	return m
}

func press(m EntityPickerModel, k tea.KeyType) (EntityPickerModel, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: k})
	return next.(EntityPickerModel), cmd
}

func TestEntityPickerSelect(t *testing.T) {
	m := NewEntityPickerModel("Select source entity", demoGraph(), "")
	m, _ = press(m, tea.KeyDown)
	m, cmd := press(m, tea.KeyEnter)
	if m.Selected != "IP: 192.168.1.1" {
		t.Errorf("Selected = %q", m.Selected)
	}
	if cmd == nil {
		t.Error("enter should quit")
	}
}

func TestEntityPickerFilter(t *testing.T) {
	m := NewEntityPickerModel("Select target entity", demoGraph(), "Domain: example.com")
	if len(m.visible) != 2 {
		t.Fatalf("excluded entity still listed: %d visible", len(m.visible))
	}

	m = typeText(m, "alice")
	if len(m.visible) != 1 {
		t.Fatalf("filter matched %d entities", len(m.visible))
	}
	m, _ = press(m, tea.KeyEnter)
	if m.Selected != "Person: Alice" {
		t.Errorf("Selected = %q", m.Selected)
	}
}

func TestEntityPickerNoMatch(t *testing.T) {
	m := typeText(NewEntityPickerModel("Pick", demoGraph(), ""), "zzz")
	m, cmd := press(m, tea.KeyEnter)
	if m.Selected != "" || cmd != nil {
		t.Error("enter with no matches should do nothing")
	}
	m, _ = press(m, tea.KeyBackspace)
	if m.Filter != "zz" {
		t.Errorf("Filter = %q", m.Filter)
	}
	if view := m.View(); view == "" {
		t.Error("empty view")
	}
}

func TestEntityPickerQuit(t *testing.T) {
	m := NewEntityPickerModel("Pick", demoGraph(), "")
	m, cmd := press(m, tea.KeyEsc)
	if cmd == nil || m.Selected != "" {
		t.Error("esc should quit without a selection")
	}
}
