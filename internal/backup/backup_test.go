package backup

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/grove/internal/storage/sqlite"
)

type stepClock struct{ t time.Time }

func (c *stepClock) Now() time.Time { return c.t }

func setupJournal(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "grove.db")
	store := sqlite.NewStore(dbPath)
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	if _, err := store.GetDB().Exec(
		`INSERT INTO users (id, display_name, avatar_url, created_at, updated_at) VALUES ('alice', 'Alice', '', '2026-05-01T00:00:00Z', '2026-05-01T00:00:00Z')`,
	); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}
	return dbPath
}

func countUsers(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		t.Fatalf("failed to count users in %s: %v", path, err)
	}
	return n
}

func TestCreate(t *testing.T) {
	dbPath := setupJournal(t)
	clk := &stepClock{t: time.Date(2026, 5, 11, 7, 30, 15, 0, time.UTC)}
	mgr := NewManager(dbPath, 0, clk)

	info, err := mgr.Create(context.Background())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if filepath.Base(info.Path) != "grove-20260511-073015.db" {
		t.Errorf("backup name = %s", filepath.Base(info.Path))
	}
	if info.Size == 0 {
		t.Error("backup should not be empty")
	}
	if got := countUsers(t, info.Path); got != 1 {
		t.Errorf("backup has %d users, want 1", got)
	}

	// same second gets a counter suffix
	again, err := mgr.Create(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(again.Path) != "grove-20260511-073015-1.db" {
		t.Errorf("collision name = %s", filepath.Base(again.Path))
	}
}

func TestCreateRejectsForeignDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("CREATE TABLE notes (id INTEGER)"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	if _, err := NewManager(path, 0, nil).Create(context.Background()); err == nil {
		t.Error("expected an error backing up a non-grove database")
	}
}

func TestCreateMissingDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"), 0, nil)
	if _, err := mgr.Create(context.Background()); err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("err = %v, want missing database error", err)
	}
}

func TestListAndPrune(t *testing.T) {
	dbPath := setupJournal(t)
	clk := &stepClock{t: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)}
	mgr := NewManager(dbPath, 3, clk)

	for i := 0; i < 5; i++ {
		if _, err := mgr.Create(context.Background()); err != nil {
			t.Fatal(err)
		}
		clk.t = clk.t.Add(time.Hour)
	}
	// stray files are ignored
	if err := os.WriteFile(filepath.Join(mgr.Dir(), "notes.txt"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	list, err := mgr.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("List() returned %d backups, want 3", len(list))
	}
	want := time.Date(2026, 5, 1, 4, 0, 0, 0, time.UTC)
	if !list[0].TakenAt.Equal(want) {
		t.Errorf("newest = %v, want %v", list[0].TakenAt, want)
	}
	if !list[2].TakenAt.Equal(want.Add(-2 * time.Hour)) {
		t.Errorf("oldest kept = %v", list[2].TakenAt)
	}
}

func TestListWithoutDirectory(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "grove.db"), 0, nil)
	list, err := mgr.List()
	if err != nil || len(list) != 0 {
		t.Errorf("List() = %v, %v; want empty", list, err)
	}
}

func TestRestore(t *testing.T) {
	dbPath := setupJournal(t)
	clk := &stepClock{t: time.Date(2026, 5, 11, 7, 0, 0, 0, time.UTC)}
	mgr := NewManager(dbPath, 0, clk)

	snap, err := mgr.Create(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("DELETE FROM users"); err != nil {
		t.Fatal(err)
	}
	db.Close()
	if got := countUsers(t, dbPath); got != 0 {
		t.Fatalf("setup: %d users remain", got)
	}

	clk.t = clk.t.Add(time.Minute)
	safety, err := mgr.Restore(context.Background(), snap.Path)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if got := countUsers(t, dbPath); got != 1 {
		t.Errorf("restored database has %d users, want 1", got)
	}
	if safety.Path == "" || countUsers(t, safety.Path) != 0 {
		t.Error("restore should snapshot the pre-restore database")
	}
	if _, err := os.Stat(dbPath + ".restore.tmp"); !os.IsNotExist(err) {
		t.Error("temporary restore file left behind")
	}
}

func TestRestoreInvalidBackup(t *testing.T) {
	dbPath := setupJournal(t)
	mgr := NewManager(dbPath, 0, nil)

	bogus := filepath.Join(t.TempDir(), "grove-20260101-000000.db")
	if err := os.WriteFile(bogus, []byte("not a database"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Restore(context.Background(), bogus); err == nil {
		t.Error("expected an error restoring garbage")
	}
	if _, err := mgr.Restore(context.Background(), filepath.Join(t.TempDir(), "nope.db")); err == nil {
		t.Error("expected an error restoring a missing file")
	}
	if got := countUsers(t, dbPath); got != 1 {
		t.Errorf("database changed after failed restore: %d users", got)
	}
}
