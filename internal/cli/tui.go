package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/cybergraph/pkg/graph"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// EntityPickerModel - Interactive entity selection
// =============================================================================

// EntityPickerModel is the bubbletea model used by the path command to pick
// an entity when it was not given on the command line. Typing filters the
// list by substring; entities listed in Exclude are skipped.
type EntityPickerModel struct {
	Prompt   string
	Entities []graph.Entity
	Filter   string
	Cursor   int
	Offset   int
	Height   int
	Selected string

	visible []int
}

// NewEntityPickerModel creates a picker over the entities of g.
func NewEntityPickerModel(prompt string, g *graph.Graph, exclude string) EntityPickerModel {
	var entities []graph.Entity
	for _, e := range g.Entities() {
		if e.ID != exclude {
			entities = append(entities, e)
		}
	}
	m := EntityPickerModel{Prompt: prompt, Entities: entities, Height: 15}
	m.refilter()
	return m
}

func (m EntityPickerModel) Init() tea.Cmd {
	return nil
}

func (m EntityPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case tea.KeyDown:
			if m.Cursor < len(m.visible)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case tea.KeyEnter:
			if len(m.visible) == 0 {
				return m, nil
			}
			m.Selected = m.Entities[m.visible[m.Cursor]].ID
			return m, tea.Quit
		case tea.KeyBackspace:
			if m.Filter != "" {
				r := []rune(m.Filter)
				m.Filter = string(r[:len(r)-1])
				m.refilter()
			}
		case tea.KeyRunes, tea.KeySpace:
			m.Filter += string(msg.Runes)
			m.refilter()
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

// refilter recomputes the visible entities and resets the cursor.
func (m *EntityPickerModel) refilter() {
	m.visible = m.visible[:0]
	needle := strings.ToLower(m.Filter)
	for i, e := range m.Entities {
		if needle == "" || strings.Contains(strings.ToLower(e.ID), needle) {
			m.visible = append(m.visible, i)
		}
	}
	m.Cursor, m.Offset = 0, 0
}

func (m EntityPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Prompt))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("type to filter  ↑/↓ navigate  ⏎ select  esc quit"))
	b.WriteString("\n")
	b.WriteString(StyleHighlight.Render("> ") + m.Filter)
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.visible))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		e := m.Entities[m.visible[i]]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		typ, ok := e.Attrs.String("type")
		if !ok {
			typ = "N/A"
		}
		rows = append(rows, []string{cursor, e.ID, typ})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Entity", "Type").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleTableHeader
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	if len(m.visible) == 0 {
		b.WriteString(listDimStyle.Render("  no matching entities"))
	} else {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.visible))))
	}
	return b.String()
}

// pickEntity runs the picker and returns the chosen entity ID, or "" when
// the user quit without choosing.
func pickEntity(prompt string, g *graph.Graph, exclude string) (string, error) {
	final, err := tea.NewProgram(NewEntityPickerModel(prompt, g, exclude)).Run()
	if err != nil {
		return "", err
	}
	return final.(EntityPickerModel).Selected, nil
}
