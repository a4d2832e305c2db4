package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/grove/internal/constants"
	"github.com/julianstephens/grove/internal/journal"
	"github.com/julianstephens/grove/internal/tui/components/forest"
	"github.com/julianstephens/grove/internal/tui/components/today"
)

type SessionState int

const (
	StateToday SessionState = iota
	StateForest
	stateCount
)

var tabTitles = []string{"Today", "Forest"}

// RefreshInterval is how often the dashboard reloads on its own.
const RefreshInterval = time.Minute

const loadTimeout = 10 * time.Second

// Source is the slice of the journal service the dashboard reads.
type Source interface {
	Window(kind constants.EntryKind) (journal.WindowView, error)
	Streak(ctx context.Context, userID string) (journal.StreakView, error)
	Health(ctx context.Context, userID string) (journal.HealthView, error)
	Forest(ctx context.Context) (journal.ForestView, error)
}

type todayLoadedMsg struct {
	windows []journal.WindowView
	streak  *journal.StreakView
	health  *journal.HealthView
	err     error
}

type forestLoadedMsg struct {
	forest journal.ForestView
	err    error
}

type tickMsg time.Time

type Model struct {
	src      Source
	actor    string
	state    SessionState
	keys     KeyMap
	help     help.Model
	today    today.Model
	forest   forest.Model
	err      error
	quitting bool
	width    int
	height   int
}

func NewModel(src Source, actor string) Model {
	return Model{
		src:    src,
		actor:  actor,
		state:  StateToday,
		keys:   DefaultKeyMap(),
		help:   help.New(),
		today:  today.New(actor),
		forest: forest.New(0, 10),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadToday(), m.loadForest(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(RefreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) loadToday() tea.Cmd {
	src, actor := m.src, m.actor
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		var msg todayLoadedMsg
		for _, kind := range []constants.EntryKind{constants.EntryMorning, constants.EntryEvening} {
			w, err := src.Window(kind)
			if err != nil {
				return todayLoadedMsg{err: err}
			}
			msg.windows = append(msg.windows, w)
		}
		if actor == "" {
			return msg
		}

		streak, err := src.Streak(ctx, actor)
		if err != nil {
			return todayLoadedMsg{err: err}
		}
		health, err := src.Health(ctx, actor)
		if err != nil {
			return todayLoadedMsg{err: err}
		}
		msg.streak = &streak
		msg.health = &health
		return msg
	}
}

func (m Model) loadForest() tea.Cmd {
	src := m.src
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		f, err := src.Forest(ctx)
		return forestLoadedMsg{forest: f, err: err}
	}
}
