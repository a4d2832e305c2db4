// Package clitest builds command contexts over a throwaway SQLite store.
package clitest

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/grove/internal/cli"
	"github.com/julianstephens/grove/internal/clock"
	"github.com/julianstephens/grove/internal/config"
	"github.com/julianstephens/grove/internal/lock"
	"github.com/julianstephens/grove/internal/storage/sqlite"
)

// Morning is 07:00 on 2026-05-11 in the reference timezone.
var Morning = time.Date(2026, 5, 10, 22, 0, 0, 0, time.UTC)

// New returns an initialised context at now acting as actor, plus the buffer
// that receives command output.
func New(t testing.TB, now time.Time, actor string) (*cli.Context, *bytes.Buffer) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "grove.db")
	store := sqlite.NewStore(path)
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	cfg := config.Default()
	cfg.Store = path
	cfg.LogDir = ""

	out := &bytes.Buffer{}
	ctx, err := cli.NewContext(context.Background(), cfg, store, cli.Options{
		Location: path,
		Clock:    clock.Fixed{T: now},
		Locker:   lock.NewLocal(),
		Actor:    actor,
		Out:      out,
	})
	if err != nil {
		t.Fatalf("failed to build context: %v", err)
	}
	t.Cleanup(func() { ctx.Close() })
	return ctx, out
}

// AddUsers creates each id with its capitalised name.
func AddUsers(t testing.TB, ctx *cli.Context, ids ...string) {
	t.Helper()
	for _, id := range ids {
		if _, err := ctx.Service.AddUser(ctx.Ctx, id, strings.ToUpper(id[:1])+id[1:], ""); err != nil {
			t.Fatalf("AddUser(%s): %v", id, err)
		}
	}
}
