package entries

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"github.com/julianstephens/grove/internal/cli"
	"github.com/julianstephens/grove/internal/constants"
	"github.com/julianstephens/grove/internal/journal"
)

type PostCmd struct {
	Kind    string `arg:"" help:"morning or evening." enum:"morning,evening"`
	Content string `help:"Entry text. Prompts interactively when empty and stdin is a terminal." short:"c"`
	Score   int    `help:"Self-rating from 1 to 10 (0 leaves it unset)." short:"s"`
	Shared  bool   `help:"Share the entry with the group so others can cheer it."`
}

func (c *PostCmd) Run(ctx *cli.Context) error {
	actor, err := ctx.RequireActor()
	if err != nil {
		return err
	}
	kind := constants.EntryKind(c.Kind)

	if strings.TrimSpace(c.Content) == "" {
		if !isatty.IsTerminal(os.Stdin.Fd()) {
			return errors.New("--content is required when stdin is not a terminal")
		}
		if err := c.prompt(kind); err != nil {
			return err
		}
	}

	in := journal.PostInput{UserID: actor, Kind: kind, Content: c.Content, Shared: c.Shared}
	if c.Score != 0 {
		score := c.Score
		in.Score = &score
	}

	res, err := ctx.Service.PostEntry(ctx.Ctx, in)
	if err != nil {
		return err
	}
	if res.Created {
		ctx.Printf("✓ %s entry saved for %s (%s)\n", kind, res.Entry.Day, res.Entry.ID)
	} else {
		ctx.Printf("✓ %s entry for %s updated\n", kind, res.Entry.Day)
	}
	return nil
}

// prompt fills Content, Score and Shared from an interactive form.
func (c *PostCmd) prompt(kind constants.EntryKind) error {
	title := "How did the morning start?"
	if kind == constants.EntryEvening {
		title = "How did the day go?"
	}
	scoreStr := ""
	if c.Score != 0 {
		scoreStr = strconv.Itoa(c.Score)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title(title).
				CharLimit(constants.MaxContentRunes).
				Value(&c.Content).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("entry cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Score (1-10, blank to skip)").
				Value(&scoreStr).
				Validate(func(s string) error {
					if s == "" {
						return nil
					}
					n, err := strconv.Atoi(s)
					if err != nil || n < constants.MinScore || n > constants.MaxScore {
						return fmt.Errorf("enter a number from %d to %d", constants.MinScore, constants.MaxScore)
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Share with the group?").
				Value(&c.Shared),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	if scoreStr != "" {
		c.Score, _ = strconv.Atoi(scoreStr)
	}
	return nil
}
