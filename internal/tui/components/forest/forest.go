package forest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/grove/internal/journal"
)

const gaugeWidth = 20

type Model struct {
	table table.Model
	view  *journal.ForestView
}

func New(width, height int) Model {
	columns := []table.Column{
		{Title: "Member", Width: 20},
		{Title: "Growth", Width: gaugeWidth},
		{Title: "%", Width: 4},
		{Title: "Posts", Width: 6},
		{Title: "Water", Width: 6},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(height),
		table.WithWidth(width),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return Model{table: t}
}

// SetForest replaces the rows with the given snapshot.
func (m *Model) SetForest(f journal.ForestView) {
	m.view = &f
	rows := make([]table.Row, 0, len(f.Trees))
	for _, tree := range f.Trees {
		filled := tree.Progress * gaugeWidth / 100
		rows = append(rows, table.Row{
			tree.DisplayName,
			strings.Repeat("█", filled) + strings.Repeat("░", gaugeWidth-filled),
			strconv.Itoa(tree.Progress),
			strconv.Itoa(tree.PostCount),
			strconv.Itoa(tree.WaterReceived),
		})
	}
	m.table.SetRows(rows)
}

func (m *Model) SetSize(width, height int) {
	m.table.SetWidth(width)
	// header, summary and MVP lines
	if height > 6 {
		m.table.SetHeight(height - 6)
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.view == nil {
		return "\n  Loading forest…"
	}
	f := m.view

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(f.Theme.Color)).
		Padding(1, 0).
		Render(fmt.Sprintf("🌳 %s forest · %s · day %d/%d", f.Theme.Name, f.Month, f.DayOfMonth, f.DaysInMonth))

	parts := []string{header}
	if len(f.Trees) == 0 {
		parts = append(parts, "Nobody has posted this month yet.")
	} else {
		parts = append(parts, m.table.View())
	}

	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	if f.Hidden > 0 {
		parts = append(parts, muted.Render(fmt.Sprintf("%d member(s) still to sprout", f.Hidden)))
	}
	if f.MVP != nil {
		parts = append(parts, fmt.Sprintf("🏆 Support MVP: %s (%d this week)", f.MVP.DisplayName, f.MVP.Given))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
