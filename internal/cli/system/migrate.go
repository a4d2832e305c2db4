package system

import (
	"context"
	"fmt"

	"github.com/julianstephens/grove/internal/cli"
	"github.com/julianstephens/grove/internal/cli/backups"
)

// migrator is implemented by the SQL stores.
type migrator interface {
	Migrate(ctx context.Context, logFn func(string)) (int, error)
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	m, ok := ctx.Store.(migrator)
	if !ok {
		// Document stores have no schema; Init ensures their indexes.
		if err := ctx.Store.Init(ctx.Ctx); err != nil {
			return fmt.Errorf("failed to ensure indexes: %w", err)
		}
		ctx.Println("Indexes are up to date.")
		return nil
	}

	if err := snapshotBeforeMigrate(ctx); err != nil {
		return err
	}

	count, err := m.Migrate(ctx.Ctx, func(msg string) {
		ctx.Println(msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		ctx.Println("No migrations to apply. Database is up to date.")
	} else {
		ctx.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}

// snapshotBeforeMigrate backs up a SQLite journal that has pending migrations.
func snapshotBeforeMigrate(ctx *cli.Context) error {
	sv, ok := ctx.Store.(schemaVersioner)
	if !ok || cli.BackendOf(ctx.Location) != cli.BackendSQLite {
		return nil
	}
	current, latest, err := sv.SchemaVersion(ctx.Ctx)
	if err != nil || current >= latest {
		// Migrate reports read errors itself
		return nil
	}
	mgr, err := backups.Manager(ctx)
	if err != nil {
		return err
	}
	snap, err := mgr.Create(ctx.Ctx)
	if err != nil {
		return fmt.Errorf("failed to back up before migrating: %w", err)
	}
	ctx.Printf("Backed up schema v%d to %s\n", current, snap.Path)
	return nil
}
