package stats

import (
	"fmt"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/grove/internal/cli"
	"github.com/julianstephens/grove/internal/engagement"
)

const barWidth = 20

var tierStyles = map[engagement.Tier]lipgloss.Style{
	engagement.TierGood:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	engagement.TierWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	engagement.TierRisk:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
}

type HealthCmd struct {
	User string `arg:"" optional:"" help:"User to score. Defaults to --as."`
	JSON bool   `help:"Print JSON."`
}

func (c *HealthCmd) Run(ctx *cli.Context) error {
	user, err := target(ctx, c.User)
	if err != nil {
		return err
	}
	h, err := ctx.Service.Health(ctx.Ctx, user)
	if err != nil {
		return err
	}
	if c.JSON {
		return ctx.PrintJSON(h)
	}

	ctx.Printf("Health for %s: %d (%s)\n", h.UserID, h.Score, tierStyles[h.Tier].Render(string(h.Tier)))
	ctx.Printf("  7-day   %s %.1f\n", cli.Bar(int(h.Frequency7/engagement.Frequency7Weight), barWidth), h.Frequency7)
	ctx.Printf("  30-day  %s %.1f\n", cli.Bar(int(h.Frequency30/engagement.Frequency30Weight), barWidth), h.Frequency30)
	ctx.Printf("  recency %s %.1f\n", cli.Bar(int(h.Recency/engagement.RecencyWeight), barWidth), h.Recency)
	if h.DaysSinceActivity != nil {
		ctx.Printf("  last post %d day(s) ago\n", *h.DaysSinceActivity)
	} else {
		ctx.Println("  no posts yet")
	}
	return nil
}

type StreakCmd struct {
	User string `arg:"" optional:"" help:"User to check. Defaults to --as."`
	JSON bool   `help:"Print JSON."`
}

func (c *StreakCmd) Run(ctx *cli.Context) error {
	user, err := target(ctx, c.User)
	if err != nil {
		return err
	}
	s, err := ctx.Service.Streak(ctx.Ctx, user)
	if err != nil {
		return err
	}
	if c.JSON {
		return ctx.PrintJSON(s)
	}

	ctx.Printf("🔥 %s: %d day streak", s.UserID, s.Days)
	if !s.PostedToday {
		ctx.Printf(" (nothing posted yet on %s)", s.Today)
	}
	ctx.Println()
	return nil
}

type ForestCmd struct {
	JSON bool `help:"Print JSON."`
}

func (c *ForestCmd) Run(ctx *cli.Context) error {
	f, err := ctx.Service.Forest(ctx.Ctx)
	if err != nil {
		return err
	}
	if c.JSON {
		return ctx.PrintJSON(f)
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(f.Theme.Color))
	ctx.Println(title.Render(fmt.Sprintf("🌳 %s forest · %s · day %d of %d", f.Theme.Name, f.Month, f.DayOfMonth, f.DaysInMonth)))
	if len(f.Trees) == 0 {
		ctx.Println("Nobody has posted this month yet.")
	} else {
		w := tabwriter.NewWriter(ctx.Out, 0, 0, 2, ' ', 0)
		for _, t := range f.Trees {
			fmt.Fprintf(w, "%s\t%s\t%3d\t💧%d\n", t.DisplayName, cli.Bar(t.Progress, barWidth), t.Progress, t.WaterReceived)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	if f.Hidden > 0 {
		ctx.Printf("%d member(s) have not posted this month.\n", f.Hidden)
	}
	if f.MVP != nil {
		ctx.Printf("Support MVP: %s (%d waterings this week) %s\n", f.MVP.DisplayName, f.MVP.Given, f.Theme.Fruit)
	}
	return nil
}

func target(ctx *cli.Context, user string) (string, error) {
	if user != "" {
		return user, nil
	}
	return ctx.RequireActor()
}
