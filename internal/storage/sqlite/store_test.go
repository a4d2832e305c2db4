package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/grove/internal/storage/storagetest"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "nested", "grove.db"))
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreConformance(t *testing.T) {
	storagetest.Run(t, setupTestStore(t))
}

func TestLoadRequiresInit(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "absent.db"))
	err := store.Load(context.Background())
	if err == nil || !strings.Contains(err.Error(), "init") {
		t.Errorf("expected not-initialized error, got %v", err)
	}
}

func TestInitIsIdempotentAndLoadValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grove.db")
	ctx := context.Background()

	first := NewStore(path)
	if err := first.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := first.Init(ctx); err != nil {
		t.Fatalf("second Init failed: %v", err)
	}
	current, latest, err := first.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if current != latest || current == 0 {
		t.Errorf("SchemaVersion = %d/%d", current, latest)
	}
	first.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database file missing: %v", err)
	}

	second := NewStore(path)
	if err := second.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer second.Close()
	if second.GetDB() == nil {
		t.Error("GetDB returned nil after Load")
	}
	if !strings.HasSuffix(second.Describe(), "grove.db") {
		t.Errorf("Describe = %q", second.Describe())
	}
}

func TestTimestampsCompareLexically(t *testing.T) {
	a := time.Date(2026, 1, 2, 3, 4, 5, 600, time.UTC)
	b := a.Add(time.Nanosecond * 400)
	c := time.Date(2026, 1, 2, 12, 4, 5, 0, time.FixedZone("UTC+9", 9*3600))

	if !(formatTime(a) < formatTime(b)) {
		t.Errorf("%s should sort before %s", formatTime(a), formatTime(b))
	}
	if len(formatTime(a)) != len(formatTime(c)) {
		t.Error("timestamps must be fixed width")
	}
	parsed, err := parseTime("created_at", formatTime(c))
	if err != nil || !parsed.Equal(c) {
		t.Errorf("round trip = %v, %v", parsed, err)
	}
}
