package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Ning0612/cptrash/internal/lock"
)

// ErrNotRunning is returned when no watcher is recorded for an account
var ErrNotRunning = errors.New("no scheduled sweep is running")

// PIDFile records the process that runs scheduled sweeps for one account
type PIDFile struct {
	path string
}

// NewPIDFile creates a PID file manager at an explicit path
func NewPIDFile(path string) *PIDFile {
	return &PIDFile{path: path}
}

// ForAccount returns the PID file of account's watcher inside dataDir
func ForAccount(dataDir, account string) *PIDFile {
	return NewPIDFile(filepath.Join(dataDir, "watch-"+lock.SafeName(account)+".pid"))
}

// Path returns the PID file location
func (p *PIDFile) Path() string {
	return p.path
}

// Write records the current process, replacing a PID file left by a dead one
func (p *PIDFile) Write() error {
	if pid, err := p.Read(); err == nil {
		if pid != os.Getpid() && isProcessRunning(pid) {
			return fmt.Errorf("scheduled sweep already running as PID %d (%s)", pid, p.path)
		}
		// 殘留的 PID 檔
		os.Remove(p.path)
	}

	if err := os.MkdirAll(filepath.Dir(p.path), 0755); err != nil {
		return fmt.Errorf("failed to create PID directory: %w", err)
	}
	content := strconv.Itoa(os.Getpid()) + "\n"
	if err := os.WriteFile(p.path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	return nil
}

// Read returns the recorded PID
func (p *PIDFile) Read() (int, error) {
	content, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrNotRunning
		}
		return 0, fmt.Errorf("failed to read PID file: %w", err)
	}

	pidStr := strings.TrimSpace(string(content))
	pid, err := strconv.Atoi(pidStr)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid PID in %s: %q", p.path, pidStr)
	}
	return pid, nil
}

// Remove deletes the PID file; a missing file is not an error
func (p *PIDFile) Remove() error {
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// IsRunning reports whether the recorded process is alive
func (p *PIDFile) IsRunning() (bool, error) {
	pid, err := p.Read()
	if err != nil {
		return false, err
	}
	return isProcessRunning(pid), nil
}

// Stop asks the recorded watcher to finish. A dead watcher's file is
// cleaned up and reported as ErrNotRunning.
func (p *PIDFile) Stop() (int, error) {
	pid, err := p.Read()
	if err != nil {
		return 0, err
	}
	if pid == os.Getpid() {
		return 0, fmt.Errorf("refusing to stop the current process")
	}
	if !isProcessRunning(pid) {
		p.Remove()
		return pid, ErrNotRunning
	}
	return pid, killProcess(pid)
}
