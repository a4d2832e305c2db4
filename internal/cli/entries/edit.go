package entries

import (
	"errors"

	"github.com/julianstephens/grove/internal/cli"
	"github.com/julianstephens/grove/internal/journal"
)

type EditCmd struct {
	ID         string `arg:"" help:"Entry ID."`
	Content    string `help:"Replacement text." short:"c"`
	Score      int    `help:"New score from 1 to 10." short:"s"`
	ClearScore bool   `help:"Remove the score."`
	Share      bool   `help:"Share the entry." xor:"share"`
	Unshare    bool   `help:"Stop sharing the entry." xor:"share"`
}

func (c *EditCmd) Run(ctx *cli.Context) error {
	actor, err := ctx.RequireActor()
	if err != nil {
		return err
	}

	in := journal.EditInput{EntryID: c.ID, UserID: actor, ClearScore: c.ClearScore}
	if c.Content != "" {
		in.Content = &c.Content
	}
	if c.Score != 0 {
		in.Score = &c.Score
	}
	if c.Share || c.Unshare {
		shared := c.Share
		in.Shared = &shared
	}
	if in.Content == nil && in.Score == nil && in.Shared == nil && !in.ClearScore {
		return errors.New("nothing to change: pass --content, --score, --clear-score, --share or --unshare")
	}

	entry, err := ctx.Service.EditEntry(ctx.Ctx, in)
	if err != nil {
		return err
	}
	ctx.Printf("✓ %s entry for %s updated\n", entry.Kind, entry.Day)
	return nil
}
