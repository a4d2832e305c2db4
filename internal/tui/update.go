package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		// tabs and help take four lines
		m.today.SetSize(msg.Width, msg.Height-4)
		m.forest.SetSize(msg.Width-4, msg.Height-4)
		return m, nil

	case todayLoadedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.today.Windows = msg.windows
			m.today.Streak = msg.streak
			m.today.Health = msg.health
		}
		return m, nil

	case forestLoadedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.forest.SetForest(msg.forest)
		}
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.loadToday(), m.loadForest(), tick())

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % stateCount
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + stateCount) % stateCount
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			return m, tea.Batch(m.loadToday(), m.loadForest())
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}

	if m.state == StateForest {
		var cmd tea.Cmd
		m.forest, cmd = m.forest.Update(msg)
		return m, cmd
	}
	return m, nil
}
