package entries

import (
	"github.com/julianstephens/grove/internal/cli"
	"github.com/julianstephens/grove/internal/clock"
	"github.com/julianstephens/grove/internal/constants"
	"github.com/julianstephens/grove/internal/journal"
)

type WindowCmd struct {
	Kind string `arg:"" optional:"" help:"morning or evening. Both when omitted." enum:"morning,evening,"`
	JSON bool   `help:"Print JSON."`
}

func (c *WindowCmd) Run(ctx *cli.Context) error {
	kinds := []constants.EntryKind{constants.EntryMorning, constants.EntryEvening}
	if c.Kind != "" {
		kinds = []constants.EntryKind{constants.EntryKind(c.Kind)}
	}

	views := make([]journal.WindowView, 0, len(kinds))
	for _, k := range kinds {
		v, err := ctx.Service.Window(k)
		if err != nil {
			return err
		}
		views = append(views, v)
	}
	if c.JSON {
		return ctx.PrintJSON(views)
	}

	for _, v := range views {
		ctx.Printf("%-8s %s-%s  %s\n", v.Kind, v.Opens, v.Closes, Describe(v))
	}
	return nil
}

// Describe renders a window's state as a short sentence.
func Describe(v journal.WindowView) string {
	switch v.Status {
	case clock.StatusOpen:
		return "open, closes in " + cli.FormatCountdown(v.Until)
	case clock.StatusBefore:
		return "opens in " + cli.FormatCountdown(v.Until)
	default:
		return "closed, reopens in " + cli.FormatCountdown(v.Until)
	}
}
