package backups

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/julianstephens/grove/internal/backup"
	"github.com/julianstephens/grove/internal/cli"
)

// Manager returns the backup manager for the context's store. Only SQLite
// stores can be snapshotted.
func Manager(ctx *cli.Context) (*backup.Manager, error) {
	if cli.BackendOf(ctx.Location) != cli.BackendSQLite {
		return nil, fmt.Errorf("backups are only supported for SQLite stores (store is %s)", ctx.Store.Describe())
	}
	return backup.NewManager(ctx.Location, ctx.Config.BackupRetention, ctx.Service.Clock()), nil
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	mgr, err := Manager(ctx)
	if err != nil {
		return err
	}
	info, err := mgr.Create(ctx.Ctx)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Backup created: %s (%s)\n", info.Path, humanSize(info.Size))
	return nil
}

type BackupListCmd struct {
	JSON bool `help:"Print JSON."`
}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr, err := Manager(ctx)
	if err != nil {
		return err
	}
	list, err := mgr.List()
	if err != nil {
		return err
	}
	if c.JSON {
		return ctx.PrintJSON(list)
	}
	if len(list) == 0 {
		ctx.Printf("No backups in %s\n", mgr.Dir())
		return nil
	}

	w := tabwriter.NewWriter(ctx.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTAKEN (UTC)\tSIZE")
	for _, b := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\n", filepath.Base(b.Path), b.TakenAt.Format("2006-01-02 15:04:05"), humanSize(b.Size))
	}
	return w.Flush()
}

type BackupRestoreCmd struct {
	Path string `arg:"" help:"Backup file, or its name inside the backups directory."`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr, err := Manager(ctx)
	if err != nil {
		return err
	}
	path := c.Path
	if filepath.Base(path) == path {
		if candidate := filepath.Join(mgr.Dir(), path); fileExists(candidate) {
			path = candidate
		}
	}

	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close database before restore: %w", err)
	}
	safety, err := mgr.Restore(ctx.Ctx, path)
	if err != nil {
		return err
	}
	if safety.Path != "" {
		ctx.Printf("Saved the previous database as %s\n", filepath.Base(safety.Path))
	}
	ctx.Printf("✓ Restored %s\n", path)
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
