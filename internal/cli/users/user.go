package users

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/julianstephens/grove/internal/cli"
)

type UserAddCmd struct {
	Name   string `arg:"" help:"Display name."`
	ID     string `help:"User ID. Generated when omitted."`
	Avatar string `help:"Avatar URL."`
}

func (c *UserAddCmd) Run(ctx *cli.Context) error {
	u, err := ctx.Service.AddUser(ctx.Ctx, c.ID, c.Name, c.Avatar)
	if err != nil {
		return err
	}
	ctx.Printf("Added user %s (%s)\n", u.DisplayName, u.ID)
	return nil
}

type UserRenameCmd struct {
	ID   string `arg:"" help:"User ID."`
	Name string `arg:"" help:"New display name."`
}

func (c *UserRenameCmd) Run(ctx *cli.Context) error {
	u, err := ctx.Service.RenameUser(ctx.Ctx, c.ID, c.Name)
	if err != nil {
		return err
	}
	ctx.Printf("Renamed %s to %s\n", u.ID, u.DisplayName)
	return nil
}

type UserListCmd struct {
	JSON bool `help:"Print JSON."`
}

func (c *UserListCmd) Run(ctx *cli.Context) error {
	list, err := ctx.Service.ListUsers(ctx.Ctx)
	if err != nil {
		return err
	}
	if c.JSON {
		return ctx.PrintJSON(list)
	}
	if len(list) == 0 {
		ctx.Println("No users yet. Add one with 'grove user add <name>'.")
		return nil
	}

	w := tabwriter.NewWriter(ctx.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tJOINED")
	fmt.Fprintln(w, strings.Repeat("-", 2)+"\t"+strings.Repeat("-", 4)+"\t"+strings.Repeat("-", 6))
	for _, u := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\n", u.ID, u.DisplayName, u.CreatedAt.Format("2006-01-02"))
	}
	return w.Flush()
}
