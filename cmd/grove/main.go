package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/grove/internal/cli"
	"github.com/julianstephens/grove/internal/cli/backups"
	"github.com/julianstephens/grove/internal/cli/entries"
	"github.com/julianstephens/grove/internal/cli/social"
	"github.com/julianstephens/grove/internal/cli/stats"
	"github.com/julianstephens/grove/internal/cli/system"
	"github.com/julianstephens/grove/internal/cli/users"
	"github.com/julianstephens/grove/internal/config"
	"github.com/julianstephens/grove/internal/constants"
	grerrors "github.com/julianstephens/grove/internal/errors"
	"github.com/julianstephens/grove/internal/lock"
	"github.com/julianstephens/grove/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"path" default:"~/.config/grove/grove.yaml"`
	Store   string `help:"SQLite path, PostgreSQL or MongoDB connection string. For PostgreSQL, credentials must NOT be embedded in the connection string. Use the OS keyring or .pgpass instead."`
	As      string `help:"Act as this user." env:"GROVE_USER"`
	Debug   bool   `help:"Enable debug logging."`

	Init    system.InitCmd    `cmd:"" help:"Initialize grove storage."`
	Migrate system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Serve   system.ServeCmd   `cmd:"" help:"Serve the HTTP API."`
	Dash    system.DashCmd    `cmd:"" help:"Launch the interactive dashboard." default:"1"`
	Backup  struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Snapshot the SQLite journal." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List snapshots."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Replace the journal with a snapshot."`
	} `cmd:"" help:"Manage SQLite journal backups."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a connection string in the OS keyring."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove a connection string from the OS keyring."`
		Status system.KeyringStatusCmd `cmd:"" help:"Show stored connection strings (masked)."`
	} `cmd:"" help:"Manage connection strings in the OS keyring."`
	User struct {
		Add    users.UserAddCmd    `cmd:"" help:"Add a user."`
		Rename users.UserRenameCmd `cmd:"" help:"Change a user's display name."`
		List   users.UserListCmd   `cmd:"" help:"List users."`
	} `cmd:"" help:"Manage users."`
	Post   entries.PostCmd   `cmd:"" help:"Write today's morning or evening entry."`
	Edit   entries.EditCmd   `cmd:"" help:"Edit one of your entries."`
	Window entries.WindowCmd `cmd:"" help:"Show posting window status."`
	Water  social.WaterCmd   `cmd:"" help:"Water another member's tree."`
	Cheer  social.CheerCmd   `cmd:"" help:"Cheer a shared post."`
	Cheers social.CheersCmd  `cmd:"" help:"List cheers on a post."`
	Coach  social.CoachCmd   `cmd:"" help:"Write or show a coaching note."`
	Goal   social.GoalCmd    `cmd:"" help:"Set or show your weekly or monthly goal."`
	Health stats.HealthCmd   `cmd:"" help:"Show a member's engagement health."`
	Streak stats.StreakCmd   `cmd:"" help:"Show a member's posting streak."`
	Forest stats.ForestCmd   `cmd:"" help:"Show this month's forest."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Morning and evening journaling with a shared forest"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	grerrors.Fatal(run(kctx))
}

func run(kctx *kong.Context) error {
	command := kctx.Command()

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}
	if CLI.Debug {
		cfg.Debug = true
	}
	if err := logger.Init(logger.Config{
		Debug:  cfg.Debug,
		LogDir: cfg.LogDir,
		Stderr: strings.HasPrefix(command, "serve"),
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	location, fromKeyring, err := cli.ResolveStore(CLI.Store, cfg)
	if err != nil {
		return err
	}
	store, err := cli.OpenStore(location, fromKeyring)
	if err != nil {
		return err
	}

	opts := cli.Options{Location: location, Actor: strings.TrimSpace(CLI.As)}
	if !needsSharedLock(command) {
		opts.Locker = lock.NewLocal()
	}
	appCtx, err := cli.NewContext(context.Background(), cfg, store, opts)
	if err != nil {
		store.Close()
		return err
	}
	defer func() {
		if err := appCtx.Close(); err != nil {
			logger.Warn("Failed to close resources", "error", err)
		}
	}()

	if needsLoad(command) {
		if err := store.Load(appCtx.Ctx); err != nil {
			return err
		}
	}

	return kctx.Run(appCtx)
}

// needsLoad reports whether command reads or writes journal data.
func needsLoad(command string) bool {
	for _, prefix := range []string{"init", "doctor", "keyring", "backup restore"} {
		if strings.HasPrefix(command, prefix) {
			return false
		}
	}
	return true
}

// needsSharedLock reports whether command can record waterings, which must be
// serialised across processes.
func needsSharedLock(command string) bool {
	return strings.HasPrefix(command, "water") || strings.HasPrefix(command, "serve")
}
