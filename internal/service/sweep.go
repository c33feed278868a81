package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Ning0612/cptrash/internal/adapter"
	"github.com/Ning0612/cptrash/internal/adapter/cpanel"
	"github.com/Ning0612/cptrash/internal/browser"
	"github.com/Ning0612/cptrash/internal/config"
	"github.com/Ning0612/cptrash/internal/core/traversal"
	"github.com/Ning0612/cptrash/internal/domain"
	"github.com/Ning0612/cptrash/internal/lock"
	"github.com/Ning0612/cptrash/internal/logger"
	"github.com/Ning0612/cptrash/internal/progress"
	"github.com/Ning0612/cptrash/internal/report"
	"github.com/Ning0612/cptrash/internal/state"
)

// folderRetryDelay is slept before reloading for a second folder delete attempt
const folderRetryDelay = 1 * time.Second

// Connector opens a directory view on the trash root.
// The returned close function releases whatever backs the view.
type Connector func(ctx context.Context, root string) (adapter.DirectoryView, func(), error)

// Result is the outcome of one sweep
type Result struct {
	RunID     int64
	Account   string
	Root      string
	Mode      domain.Mode
	StartTime time.Time
	EndTime   time.Time
	Report    *report.Run
}

// Elapsed returns how long the sweep took
func (r *Result) Elapsed() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// SweepService orchestrates one sweep: lock, browser, login, walk, history
type SweepService struct {
	config    *config.Config
	lock      *lock.FileLock
	stateMgr  *state.Manager
	reporter  progress.Reporter
	connect   Connector
	timing    cpanel.Timing
	loginOpts cpanel.LoginOptions
	onResult  func(*Result, error)
}

// NewSweepService creates a sweep service for a fully resolved config
func NewSweepService(cfg *config.Config) (*SweepService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := cfg.RequireCredentials(); err != nil {
		return nil, err
	}

	fileLock, err := lock.NewFileLock(cfg.DataDir, cfg.Account())
	if err != nil {
		return nil, fmt.Errorf("failed to create file lock: %w", err)
	}

	stateMgr, err := state.NewManager(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create state manager: %w", err)
	}

	loginOpts := cpanel.DefaultLoginOptions()
	loginOpts.DebugDir = filepath.Join(cfg.DataDir, "debug")

	s := &SweepService{
		config:    cfg,
		lock:      fileLock,
		stateMgr:  stateMgr,
		timing:    cpanel.DefaultTiming(cfg.Timeout),
		loginOpts: loginOpts,
	}
	s.connect = s.connectBrowser
	return s, nil
}

// SetProgressReporter sets the progress reporter for sweeps
func (s *SweepService) SetProgressReporter(reporter progress.Reporter) {
	s.reporter = reporter
}

// OnResult registers a callback invoked after every RunSweep
func (s *SweepService) OnResult(fn func(*Result, error)) {
	s.onResult = fn
}

// getReporter returns the current progress reporter or a null reporter
func (s *SweepService) getReporter() progress.Reporter {
	if s.reporter != nil {
		return s.reporter
	}
	return progress.NullReporter{}
}

// Sweep empties the configured trash once and records the run in history.
// The returned Result is nil only when the lock could not be acquired.
func (s *SweepService) Sweep(ctx context.Context) (*Result, error) {
	root := s.config.Trash()
	log := logger.Get().With("account", s.config.Account(), "root", root)

	log.Debug("acquiring lock")
	if err := s.lock.Acquire(root); err != nil {
		log.Error("failed to acquire sweep lock", "error", err)
		return nil, fmt.Errorf("failed to acquire sweep lock: %w", err)
	}
	defer func() {
		if err := s.lock.Release(); err != nil {
			log.Error("failed to release sweep lock", "error", err)
		}
	}()

	result := &Result{
		Account:   s.config.Account(),
		Root:      root,
		Mode:      s.config.Mode(),
		StartTime: time.Now(),
		Report:    report.New(),
	}

	if binder, ok := s.reporter.(progress.CounterBinder); ok {
		binder.BindCounters(result.Report)
	}

	err := s.sweep(ctx, root, result.Report)
	result.EndTime = time.Now()

	record := state.NewRecord(result.Account, root, result.Mode, result.StartTime, result.EndTime, result.Report, err)
	id, saveErr := s.stateMgr.SaveRun(record)
	if saveErr != nil {
		log.Warn("failed to save run history", "error", saveErr)
	}
	result.RunID = id

	if err != nil {
		log.Error("sweep failed", "error", err,
			"folders_scanned", result.Report.FoldersScanned(),
			"total_deleted", result.Report.TotalDeleted())
		return result, err
	}

	log.Info("sweep completed",
		"status", record.Status,
		"folders_scanned", result.Report.FoldersScanned(),
		"total_deleted", result.Report.TotalDeleted(),
		"elapsed", result.Elapsed().Round(time.Millisecond))
	return result, nil
}

func (s *SweepService) sweep(ctx context.Context, root string, run *report.Run) error {
	view, closeView, err := s.connect(ctx, root)
	if err != nil {
		return err
	}
	defer closeView()

	engine := traversal.NewEngine(view, run, traversal.Options{
		Mode:       s.config.Mode(),
		MaxDepth:   s.config.MaxDepth,
		RetryDelay: folderRetryDelay,
		Progress:   s.getReporter(),
	})
	return engine.Run(ctx)
}

// connectBrowser launches the browser, logs in and opens the File Manager
func (s *SweepService) connectBrowser(ctx context.Context, root string) (adapter.DirectoryView, func(), error) {
	installed, err := s.ResolveBrowser()
	if err != nil {
		return nil, nil, err
	}

	session, err := browser.Launch(ctx, browser.Options{
		ExecPath:      installed.Path,
		Headless:      s.config.Headless,
		LaunchTimeout: s.loginOpts.NavigationTimeout,
	})
	if err != nil {
		return nil, nil, err
	}

	creds := cpanel.Credentials{
		URL:      s.config.URL,
		Username: s.config.Username,
		Password: s.config.Password,
	}
	if err := cpanel.Login(ctx, session, creds, s.loginOpts); err != nil {
		session.Close()
		return nil, nil, err
	}

	view := cpanel.New(session, root, s.timing)
	if err := view.Open(ctx, s.config.URL, s.config.Theme); err != nil {
		session.Close()
		return nil, nil, err
	}
	return view, session.Close, nil
}

// ResolveBrowser returns the configured browser, or the first installed one
func (s *SweepService) ResolveBrowser() (browser.Installed, error) {
	if s.config.BrowserPath != "" {
		return browser.Resolve(config.ExpandPath(s.config.BrowserPath))
	}
	found := browser.Detect()
	if len(found) == 0 {
		return browser.Installed{}, fmt.Errorf("%w: install Chrome, Chromium or Edge, or set --browser-path", domain.ErrBrowserNotFound)
	}
	return found[0], nil
}

// RunSweep implements scheduler.SweepRunner
func (s *SweepService) RunSweep(ctx context.Context) error {
	result, err := s.Sweep(ctx)
	if s.onResult != nil {
		s.onResult(result, err)
	}
	return err
}

// History returns recent runs for the configured account
func (s *SweepService) History(limit int) ([]state.RunRecord, error) {
	return s.stateMgr.GetHistory(s.config.Account(), limit)
}

// LastSuccess returns the last successful live sweep for the account, or nil
func (s *SweepService) LastSuccess() (*state.RunRecord, error) {
	return s.stateMgr.GetLastSuccess(s.config.Account())
}

// IsLocked checks if another sweep of the account is in progress
func (s *SweepService) IsLocked() bool {
	return s.lock.IsLocked()
}

// GetLockHolder returns information about the current lock holder
func (s *SweepService) GetLockHolder() (*lock.LockInfo, error) {
	return s.lock.GetHolder()
}

// ForceUnlock forcibly releases the account lock (use with caution)
func (s *SweepService) ForceUnlock() error {
	return s.lock.ForceRelease()
}

// Close releases all resources
func (s *SweepService) Close() error {
	var errs []error
	if s.lock != nil {
		if err := s.lock.Release(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.stateMgr != nil {
		if err := s.stateMgr.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
