package system

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/julianstephens/grove/internal/cli"
	"github.com/julianstephens/grove/internal/cli/clitest"
	"github.com/julianstephens/grove/internal/config"
	"github.com/julianstephens/grove/internal/lock"
	"github.com/julianstephens/grove/internal/storage/sqlite"
)

func setupTestInitDB(t *testing.T) (*cli.Context, string) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	cfg := config.Default()
	cfg.Store = dbPath

	ctx, err := cli.NewContext(context.Background(), cfg, sqlite.NewStore(dbPath), cli.Options{
		Location: dbPath,
		Locker:   lock.NewLocal(),
		Out:      &discard{},
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ctx.Close() })
	return ctx, dbPath
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestInitCmd_Success(t *testing.T) {
	ctx, dbPath := setupTestInitDB(t)

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init command failed: %v", err)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file was not created at %s", dbPath)
	}
}

func TestInitCmd_Idempotent(t *testing.T) {
	ctx, _ := setupTestInitDB(t)

	cmd := &InitCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("second init failed: %v", err)
	}
}

func TestInitCmd_ForceWipesData(t *testing.T) {
	ctx, _ := clitest.New(t, clitest.Morning, "")
	clitest.AddUsers(t, ctx, "alice")

	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("init --force failed: %v", err)
	}
	users, err := ctx.Service.ListUsers(ctx.Ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 0 {
		t.Errorf("expected an empty store after --force, got %d users", len(users))
	}
}

func TestInitCmd_ForceRejectsRemoteStores(t *testing.T) {
	ctx, _ := setupTestInitDB(t)
	ctx.Location = "mongodb://localhost/grove"

	if err := (&InitCmd{Force: true}).Run(ctx); err == nil {
		t.Error("expected --force to be rejected for a non-SQLite store")
	}
}

func TestMigrateCmd_UpToDate(t *testing.T) {
	ctx, out := clitest.New(t, clitest.Morning, "")

	if err := (&MigrateCmd{}).Run(ctx); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if got := out.String(); got == "" {
		t.Error("migrate should report its result")
	}
}
