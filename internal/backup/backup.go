// Package backup snapshots and restores SQLite journal databases.
package backup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/grove/internal/clock"
	"github.com/julianstephens/grove/internal/constants"
	"github.com/julianstephens/grove/internal/logger"
)

const (
	DefaultRetention = constants.DefaultBackupRetention
	DirName          = "backups"
	filePrefix       = constants.AppName + "-"
	fileSuffix       = ".db"
	stampFormat      = "20060102-150405"
)

// Info describes one snapshot on disk.
type Info struct {
	Path    string    `json:"path"`
	TakenAt time.Time `json:"taken_at"`
	Size    int64     `json:"size"`
}

// Manager keeps snapshots of one database in a sibling backups/ directory.
type Manager struct {
	dbPath    string
	dir       string
	retention int
	clock     clock.Clock
}

// NewManager returns a manager for dbPath. retention <= 0 uses DefaultRetention.
func NewManager(dbPath string, retention int, clk clock.Clock) *Manager {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &Manager{
		dbPath:    dbPath,
		dir:       filepath.Join(filepath.Dir(dbPath), DirName),
		retention: retention,
		clock:     clk,
	}
}

func (m *Manager) Dir() string {
	return m.dir
}

// Create writes a consistent snapshot with VACUUM INTO and prunes the oldest
// snapshots beyond the retention limit.
func (m *Manager) Create(ctx context.Context) (Info, error) {
	info, err := m.create(ctx)
	if err != nil {
		return Info{}, err
	}
	if err := m.prune(); err != nil {
		logger.Warn("Failed to prune old backups", "dir", m.dir, "error", err)
	}
	return info, nil
}

func (m *Manager) create(ctx context.Context) (Info, error) {
	if _, err := os.Stat(m.dbPath); err != nil {
		return Info{}, fmt.Errorf("database does not exist: %s", m.dbPath)
	}
	if err := os.MkdirAll(m.dir, 0700); err != nil {
		return Info{}, fmt.Errorf("failed to create backup directory: %w", err)
	}

	takenAt := m.clock.Now().UTC().Truncate(time.Second)
	dest, err := m.freePath(takenAt)
	if err != nil {
		return Info{}, err
	}

	src, err := sql.Open("sqlite", m.dbPath+"?mode=ro")
	if err != nil {
		return Info{}, fmt.Errorf("failed to open database: %w", err)
	}
	defer src.Close()

	if err := checkJournal(ctx, src); err != nil {
		return Info{}, fmt.Errorf("refusing to back up %s: %w", m.dbPath, err)
	}
	if _, err := src.ExecContext(ctx, "VACUUM INTO ?", dest); err != nil {
		return Info{}, fmt.Errorf("failed to write backup: %w", err)
	}

	st, err := os.Stat(dest)
	if err != nil {
		return Info{}, err
	}
	logger.Info("Backup created", "path", dest, "bytes", st.Size())
	return Info{Path: dest, TakenAt: takenAt, Size: st.Size()}, nil
}

// freePath picks grove-<stamp>.db, adding -N when a snapshot already exists
// for that second.
func (m *Manager) freePath(t time.Time) (string, error) {
	base := filePrefix + t.Format(stampFormat)
	for n := 0; n < 100; n++ {
		name := base + fileSuffix
		if n > 0 {
			name = fmt.Sprintf("%s-%d%s", base, n, fileSuffix)
		}
		p := filepath.Join(m.dir, name)
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			return p, nil
		}
	}
	return "", errors.New("failed to generate unique backup filename")
}

// List returns snapshots newest first. Files that do not follow the naming
// scheme are ignored.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []Info{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var out []Info
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		takenAt, ok := parseName(e.Name())
		if !ok {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Info{Path: filepath.Join(m.dir, e.Name()), TakenAt: takenAt, Size: fi.Size()})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].TakenAt.Equal(out[j].TakenAt) {
			return out[i].TakenAt.After(out[j].TakenAt)
		}
		return out[i].Path > out[j].Path
	})
	return out, nil
}

func parseName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
	if len(stamp) > len(stampFormat) {
		// collision counter
		stamp = stamp[:len(stampFormat)]
	}
	t, err := time.Parse(stampFormat, stamp)
	return t, err == nil
}

func (m *Manager) prune() error {
	list, err := m.List()
	if err != nil {
		return err
	}
	for i := m.retention; i < len(list); i++ {
		if err := os.Remove(list[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", list[i].Path, err)
		}
	}
	return nil
}

// Restore replaces the database with the snapshot at path. The current
// database is snapshotted first, outside retention pruning. The caller must
// have closed any open handle on the database.
func (m *Manager) Restore(ctx context.Context, path string) (Info, error) {
	if err := verify(ctx, path); err != nil {
		return Info{}, fmt.Errorf("backup %s is not usable: %w", path, err)
	}

	var safety Info
	if _, err := os.Stat(m.dbPath); err == nil {
		safety, err = m.create(ctx)
		if err != nil {
			return Info{}, fmt.Errorf("failed to back up current database before restore: %w", err)
		}
	}

	tmp := m.dbPath + ".restore.tmp"
	if err := copyFile(path, tmp); err != nil {
		os.Remove(tmp)
		return Info{}, fmt.Errorf("failed to copy backup: %w", err)
	}
	if err := os.Rename(tmp, m.dbPath); err != nil {
		os.Remove(tmp)
		return Info{}, fmt.Errorf("failed to restore database: %w", err)
	}
	logger.Info("Database restored", "from", path, "safety_backup", safety.Path)
	return safety, nil
}

func verify(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()
	return checkJournal(ctx, db)
}

// checkJournal confirms db is a grove database by reading its schema version.
func checkJournal(ctx context.Context, db *sql.DB) error {
	var version int
	if err := db.QueryRowContext(ctx, "SELECT version FROM schema_version").Scan(&version); err != nil {
		return fmt.Errorf("not a %s database: %w", constants.AppName, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.ReadFrom(in); err != nil {
		return err
	}
	return out.Sync()
}
