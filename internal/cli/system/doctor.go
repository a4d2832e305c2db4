package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/grove/internal/cli"
	"github.com/julianstephens/grove/internal/cli/backups"
	"github.com/julianstephens/grove/internal/constants"
	"github.com/julianstephens/grove/internal/keyring"
)

// schemaVersioner is implemented by the SQL stores.
type schemaVersioner interface {
	SchemaVersion(ctx context.Context) (current, latest int, err error)
}

type DoctorCmd struct{}

type check struct {
	name string
	// needsStore skips the check when the store could not be reached.
	needsStore bool
	// warnOnly reports a failure without failing the run.
	warnOnly bool
	run      func(*cli.Context) error
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	checks := []check{
		{name: "Configuration", run: checkConfig},
		{name: "Store reachable", run: checkStoreReachable},
		{name: "Schema version", needsStore: true, run: checkSchemaVersion},
		{name: "Reference clock", run: checkReferenceClock},
		{name: "Backups", warnOnly: true, run: checkBackups},
		{name: "OS keyring", warnOnly: true, run: checkKeyring},
		{name: "API server", warnOnly: true, run: checkServeProcess},
	}

	hasError := false
	storeReachable := true
	for _, c := range checks {
		if c.needsStore && !storeReachable {
			ctx.Printf("⊘ %s: SKIPPED (store not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
			if c.name == "Store reachable" {
				storeReachable = false
			}
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkConfig(ctx *cli.Context) error {
	return ctx.Config.Validate()
}

func checkStoreReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(ctx.Ctx); err != nil {
		return fmt.Errorf("failed to load store %s: %w", ctx.Store.Describe(), err)
	}
	pingCtx, cancel := context.WithTimeout(ctx.Ctx, 5*time.Second)
	defer cancel()
	if err := ctx.Store.Ping(pingCtx); err != nil {
		return fmt.Errorf("failed to ping store: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	sv, ok := ctx.Store.(schemaVersioner)
	if !ok {
		return nil
	}
	current, latest, err := sv.SchemaVersion(ctx.Ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current < latest {
		return fmt.Errorf("schema version %d is behind %d, run 'grove migrate'", current, latest)
	}
	if current > latest {
		return fmt.Errorf("schema version %d is newer than this binary supports (%d)", current, latest)
	}
	return nil
}

func checkReferenceClock(ctx *cli.Context) error {
	now := ctx.Service.Clock().Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	p := ctx.Service.Policy()
	if err := p.Morning.Validate(); err != nil {
		return fmt.Errorf("morning window: %w", err)
	}
	if err := p.Evening.Validate(); err != nil {
		return fmt.Errorf("evening window: %w", err)
	}
	ctx.Printf("   reference time %s (morning %s, evening %s)\n",
		p.Local(now).Format("2006-01-02 15:04 MST"),
		p.WindowStatus(constants.EntryMorning, now),
		p.WindowStatus(constants.EntryEvening, now))
	return nil
}

func checkBackups(ctx *cli.Context) error {
	if cli.BackendOf(ctx.Location) != cli.BackendSQLite {
		ctx.Println("   not a SQLite store, use the database's own backup tooling")
		return nil
	}
	mgr, err := backups.Manager(ctx)
	if err != nil {
		return err
	}
	list, err := mgr.List()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return fmt.Errorf("no backups in %s, run 'grove backup'", mgr.Dir())
	}
	ctx.Printf("   %d backup(s), newest %s\n", len(list), list[0].TakenAt.Format("2006-01-02 15:04"))
	return nil
}

func checkKeyring(*cli.Context) error {
	if !keyring.IsAvailable() {
		return errors.New("OS keyring is not available; connection strings must come from the config or environment")
	}
	return nil
}

func checkServeProcess(ctx *cli.Context) error {
	addr, pid, err := findServeProcess(ServeLockPath())
	if errors.Is(err, errNoServeLock) {
		ctx.Println("   no running 'grove serve' found")
		return nil
	}
	if err != nil {
		return err
	}
	ctx.Printf("   'grove serve' running on %s (pid %d)\n", addr, pid)
	return nil
}
