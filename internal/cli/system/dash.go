package system

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/grove/internal/cli"
	"github.com/julianstephens/grove/internal/tui"
)

type DashCmd struct{}

func (c *DashCmd) Run(ctx *cli.Context) error {
	p := tea.NewProgram(tui.NewModel(ctx.Service, ctx.Actor), tea.WithAltScreen(), tea.WithContext(ctx.Ctx))
	_, err := p.Run()
	return err
}
