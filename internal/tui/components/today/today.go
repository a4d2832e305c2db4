package today

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/grove/internal/clock"
	"github.com/julianstephens/grove/internal/engagement"
	"github.com/julianstephens/grove/internal/journal"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Padding(1, 2)

	windowStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 2).
			Width(30)

	openStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	closedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	tierColors = map[engagement.Tier]lipgloss.Color{
		engagement.TierGood:    "42",
		engagement.TierWarning: "214",
		engagement.TierRisk:    "196",
	}
)

// Model shows both posting windows and, when a user is selected, their
// streak and health.
type Model struct {
	Windows []journal.WindowView
	Streak  *journal.StreakView
	Health  *journal.HealthView
	Actor   string
	width   int
	height  int
}

func New(actor string) Model {
	return Model{Actor: actor}
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) View() string {
	if len(m.Windows) == 0 {
		return titleStyle.Render("Loading…")
	}

	boxes := make([]string, 0, len(m.Windows))
	for _, w := range m.Windows {
		boxes = append(boxes, windowStyle.Render(renderWindow(w)))
	}

	sections := []string{
		titleStyle.Render(fmt.Sprintf("Today: %s  %s", m.Windows[0].Day, m.Windows[0].Local.Format("15:04"))),
		lipgloss.JoinHorizontal(lipgloss.Top, boxes...),
	}

	if m.Actor == "" {
		sections = append(sections, mutedStyle.Render("\n  Run with --as <user> to see your streak and health."))
	} else {
		sections = append(sections, m.renderStats())
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	return content
}

func renderWindow(w journal.WindowView) string {
	var status string
	switch w.Status {
	case clock.StatusOpen:
		status = openStyle.Render("OPEN") + " · closes in " + countdown(w)
	case clock.StatusBefore:
		status = closedStyle.Render("not yet") + " · opens in " + countdown(w)
	default:
		status = closedStyle.Render("closed") + " · reopens in " + countdown(w)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		strings.ToUpper(string(w.Kind)),
		mutedStyle.Render(w.Opens+" - "+w.Closes),
		status,
	)
}

func countdown(w journal.WindowView) string {
	mins := int(w.Until.Minutes())
	if mins < 60 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dh%02dm", mins/60, mins%60)
}

func (m Model) renderStats() string {
	var lines []string
	if m.Streak != nil {
		line := fmt.Sprintf("🔥 %d day streak", m.Streak.Days)
		if !m.Streak.PostedToday {
			line += mutedStyle.Render("  (post today to keep it going)")
		}
		lines = append(lines, line)
	}
	if m.Health != nil {
		tier := lipgloss.NewStyle().Foreground(tierColors[m.Health.Tier]).Render(string(m.Health.Tier))
		lines = append(lines, fmt.Sprintf("💚 health %d · %s", m.Health.Score, tier))
	}
	if len(lines) == 0 {
		return ""
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(strings.Join(lines, "\n"))
}
