package social

import (
	"fmt"
	"text/tabwriter"

	"github.com/julianstephens/grove/internal/cli"
	"github.com/julianstephens/grove/internal/constants"
	"github.com/julianstephens/grove/internal/journal"
)

type WaterCmd struct {
	Target string `arg:"" help:"User whose tree to water."`
}

func (c *WaterCmd) Run(ctx *cli.Context) error {
	actor, err := ctx.RequireActor()
	if err != nil {
		return err
	}
	w, err := ctx.Service.Water(ctx.Ctx, actor, c.Target)
	if err != nil {
		return err
	}
	ctx.Printf("💧 Watered %s's tree for %s\n", w.TargetUser, w.Day)
	return nil
}

type CheerCmd struct {
	PostID string `arg:"" help:"Entry or goal ID."`
	Kind   string `help:"Kind of post." enum:"morning,evening,goal" default:"morning" short:"k"`
}

func (c *CheerCmd) Run(ctx *cli.Context) error {
	actor, err := ctx.RequireActor()
	if err != nil {
		return err
	}
	cheer, err := ctx.Service.Cheer(ctx.Ctx, actor, c.PostID, constants.PostKind(c.Kind))
	if err != nil {
		return err
	}
	ctx.Printf("🎉 Cheered %s post %s\n", cheer.PostKind, cheer.PostID)
	return nil
}

type CheersCmd struct {
	PostID string `arg:"" help:"Entry or goal ID."`
	Kind   string `help:"Kind of post." enum:"morning,evening,goal" default:"morning" short:"k"`
	JSON   bool   `help:"Print JSON."`
}

func (c *CheersCmd) Run(ctx *cli.Context) error {
	views, err := ctx.Service.ListCheers(ctx.Ctx, ctx.Actor, c.PostID, constants.PostKind(c.Kind))
	if err != nil {
		return err
	}
	if c.JSON {
		return ctx.PrintJSON(views)
	}
	if len(views) == 0 {
		ctx.Println("No cheers yet.")
		return nil
	}

	w := tabwriter.NewWriter(ctx.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FROM\tWHEN")
	for _, v := range views {
		fmt.Fprintf(w, "%s\t%s\n", v.DisplayName, v.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

type CoachCmd struct {
	User       string `arg:"" help:"User being coached."`
	Day        string `arg:"" help:"Day (YYYY-MM-DD)."`
	Correction string `help:"Correction note."`
	Prompt     string `help:"Prompt for the next entry."`
	Show       bool   `help:"Show the existing note instead of writing one."`
}

func (c *CoachCmd) Run(ctx *cli.Context) error {
	if c.Show {
		a, err := ctx.Service.GetAnnotation(ctx.Ctx, c.User, c.Day)
		if err != nil {
			return err
		}
		if a.Correction != "" {
			ctx.Printf("Correction: %s\n", a.Correction)
		}
		if a.Prompt != "" {
			ctx.Printf("Prompt:     %s\n", a.Prompt)
		}
		return nil
	}

	actor, err := ctx.RequireActor()
	if err != nil {
		return err
	}
	a, err := ctx.Service.Annotate(ctx.Ctx, journal.AnnotateInput{
		CoachID:    actor,
		UserID:     c.User,
		Day:        c.Day,
		Correction: c.Correction,
		Prompt:     c.Prompt,
	})
	if err != nil {
		return err
	}
	ctx.Printf("✓ Note saved for %s on %s\n", a.UserID, a.Day)
	return nil
}

type GoalCmd struct {
	Period string `arg:"" help:"weekly or monthly." enum:"weekly,monthly"`
	Text   string `arg:"" optional:"" help:"Goal text. Shows the current goal when omitted."`
	Shared bool   `help:"Share the goal so others can cheer it."`
}

func (c *GoalCmd) Run(ctx *cli.Context) error {
	actor, err := ctx.RequireActor()
	if err != nil {
		return err
	}
	period := constants.GoalPeriod(c.Period)

	if c.Text == "" {
		g, err := ctx.Service.GetGoal(ctx.Ctx, actor, period)
		if err != nil {
			return err
		}
		ctx.Printf("%s goal (%s): %s\n", g.Period, g.PeriodKey, g.Text)
		return nil
	}

	g, err := ctx.Service.SetGoal(ctx.Ctx, journal.GoalInput{UserID: actor, Period: period, Text: c.Text, Shared: c.Shared})
	if err != nil {
		return err
	}
	ctx.Printf("✓ %s goal set for %s (%s)\n", g.Period, g.PeriodKey, g.ID)
	return nil
}
