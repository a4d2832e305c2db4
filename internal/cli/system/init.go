package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/grove/internal/cli"
)

type InitCmd struct {
	Force bool `help:"Delete an existing SQLite database before initializing."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	location := ctx.Location
	if location == "" {
		location = ctx.Config.Store
	}
	if c.Force {
		if cli.BackendOf(location) != cli.BackendSQLite {
			return fmt.Errorf("--force only applies to SQLite stores")
		}
		if _, err := os.Stat(location); err == nil {
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(location); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			ctx.Printf("Deleted existing database at: %s\n", location)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(ctx.Ctx); err != nil {
		return err
	}
	ctx.Printf("Initialized grove storage at: %s\n", ctx.Store.Describe())
	return nil
}
