//go:build !windows

package daemon

import (
	"fmt"
	"os"
	"syscall"
)

// isProcessRunning checks if a process is running on Unix systems
func isProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	// signal 0 只檢查行程是否存在
	err = process.Signal(syscall.Signal(0))
	return err == nil
}

// killProcess sends a termination signal to a process on Unix systems
func killProcess(pid int) error {
	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process %d: %w", pid, err)
	}

	// SIGTERM 讓 watcher 走正常的中斷流程
	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to signal process %d: %w", pid, err)
	}

	return nil
}
