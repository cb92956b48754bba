package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/areebaatariq/turnstyle-platform-sub001/internal/store"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// LookListModel - Interactive look selection
// =============================================================================

// LookSelection holds the result of the look selection.
type LookSelection struct {
	Look *store.Look
}

// LookListModel is the bubbletea model for interactive look selection.
type LookListModel struct {
	Looks    []store.Look
	Counts   map[string]int // look id -> item count
	Cursor   int
	Selected *LookSelection
	Height   int
	Offset   int
}

// NewLookListModel creates a new look list model.
func NewLookListModel(looks []store.Look, counts map[string]int) LookListModel {
	return LookListModel{
		Looks:  looks,
		Counts: counts,
		Cursor: 0,
		Height: 15,
		Offset: 0,
	}
}

func (m LookListModel) Init() tea.Cmd {
	return nil
}

func (m LookListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Looks)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			look := m.Looks[m.Cursor]
			m.Selected = &LookSelection{Look: &look}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m LookListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Look"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Looks) {
		end = len(m.Looks)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		l := m.Looks[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		composite := "✓"
		if l.CompositeImage == "" {
			composite = "—"
		}

		items := "—"
		if n, ok := m.Counts[l.ID]; ok {
			items = fmt.Sprintf("%d", n)
		}

		updated := formatRelativeTime(l.UpdatedAt)
		rows = append(rows, []string{cursor, l.Name, items, composite, updated})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Look", "Items", "Composite", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.Looks) {
				return lipgloss.NewStyle()
			}
			isCurrent := actualIdx == m.Cursor

			base := lipgloss.NewStyle()
			if col == 3 || col == 4 {
				if isCurrent {
					base = base.Foreground(colorGray)
				} else {
					base = base.Foreground(colorDim)
				}
			}

			if isCurrent {
				if col != 3 && col != 4 {
					return base.Foreground(colorGreen).Bold(true)
				}
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Looks))))

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "—"
	}

	diff := time.Since(t)

	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
