package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/grove/internal/config"
	"github.com/julianstephens/grove/internal/constants"
)

var (
	findProcessFunc = ps.FindProcess
	getpidFunc      = os.Getpid
)

var errNoServeLock = errors.New("no serve lockfile")

// ServeLockPath is where a running `grove serve` records "addr|pid".
func ServeLockPath() string {
	return filepath.Join(config.ExpandPath(constants.DefaultConfigDir), constants.ServeLockfileName)
}

func writeServeLock(path, addr string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create lockfile directory: %w", err)
	}
	content := fmt.Sprintf("%s|%d", addr, getpidFunc())
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write serve lockfile: %w", err)
	}
	return nil
}

// findServeProcess reads the lockfile and confirms its PID is a live grove
// process. A stale lockfile is reported as an error.
func findServeProcess(path string) (string, int, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", 0, errNoServeLock
	}
	if err != nil {
		return "", 0, fmt.Errorf("failed to read serve lockfile: %w", err)
	}

	parts := strings.Split(strings.TrimSpace(string(data)), "|")
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("malformed serve lockfile %s", path)
	}
	pid, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, fmt.Errorf("invalid pid in serve lockfile: %w", err)
	}

	process, err := findProcessFunc(pid)
	if err != nil {
		return "", 0, fmt.Errorf("failed to look up pid %d: %w", pid, err)
	}
	if process == nil {
		return "", 0, fmt.Errorf("stale serve lockfile: pid %d is not running", pid)
	}
	if !strings.HasPrefix(process.Executable(), constants.AppName) {
		return "", 0, fmt.Errorf("stale serve lockfile: pid %d is %s", pid, process.Executable())
	}
	return parts[0], pid, nil
}
