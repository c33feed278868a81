package progress

import (
	"fmt"
	"regexp"
	"sync"
	"time"
)

// Action describes what the sweep is doing to the current directory
type Action string

const (
	ActionScanning  Action = "Scanning"
	ActionEntering  Action = "Entering"
	ActionReturning Action = "Returning to"
	ActionDeleting  Action = "Deleting"
)

// Reporter receives progress notifications from the traversal engine
type Reporter interface {
	// Step reports the action being taken on a remote directory
	Step(action Action, path string)
	// Detail reports a step with an extra subject, e.g. a folder or file count
	Detail(action Action, path, detail string)
}

// Counters is the read side of a run report
type Counters interface {
	FoldersScanned() int
	TotalDeleted() int
}

// CounterBinder is implemented by reporters that show run counters.
// The sweep binds its report once the run starts.
type CounterBinder interface {
	BindCounters(counters Counters)
}

// Callback is a function that receives progress updates
type Callback func(update Update)

// Update represents a progress update
type Update struct {
	Action         Action
	Path           string
	ShortPath      string
	Detail         string
	FoldersScanned int
	TotalDeleted   int
	Elapsed        time.Duration
}

// CallbackReporter implements Reporter with a callback function
type CallbackReporter struct {
	callback Callback
	counters Counters
	mu       sync.Mutex
	start    time.Time
	last     Update
}

// NewCallbackReporter creates a new CallbackReporter
// counters may be nil, in which case counts are reported as zero
func NewCallbackReporter(counters Counters, callback Callback) *CallbackReporter {
	return &CallbackReporter{
		callback: callback,
		counters: counters,
		start:    time.Now(),
	}
}

// BindCounters replaces the counters read on every update
func (r *CallbackReporter) BindCounters(counters Counters) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters = counters
}

// Step reports the action being taken on path
func (r *CallbackReporter) Step(action Action, path string) {
	r.Detail(action, path, "")
}

// Detail reports the action being taken on path with an extra subject
func (r *CallbackReporter) Detail(action Action, path, detail string) {
	r.mu.Lock()
	update := Update{
		Action:    action,
		Path:      path,
		ShortPath: Truncate(ShortenPath(path), 50),
		Detail:    detail,
		Elapsed:   time.Since(r.start),
	}
	if r.counters != nil {
		update.FoldersScanned = r.counters.FoldersScanned()
		update.TotalDeleted = r.counters.TotalDeleted()
	}
	r.last = update
	callback := r.callback
	r.mu.Unlock()

	// Call callback outside lock to prevent deadlock
	if callback != nil {
		callback(update)
	}
}

// Last returns the most recent update
func (r *CallbackReporter) Last() Update {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// NullReporter is a no-op reporter
type NullReporter struct{}

func (NullReporter) Step(action Action, path string)           {}
func (NullReporter) Detail(action Action, path, detail string) {}

var (
	linuxHome = regexp.MustCompile(`^/home/[^/]+`)
	macHome   = regexp.MustCompile(`^/Users/[^/]+`)
)

// ShortenPath replaces a leading /home/<user> or /Users/<user> with ~
func ShortenPath(path string) string {
	path = linuxHome.ReplaceAllString(path, "~")
	return macHome.ReplaceAllString(path, "~")
}

// Truncate keeps the tail of s so the result is at most max characters
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max || max <= 3 {
		return s
	}
	return "..." + string(r[len(r)-(max-3):])
}

// FormatLine renders an update as a single status line, e.g.
// "Deleting 3 files in ~/.trash/a | 2 folders | 7 items"
func FormatLine(u Update) string {
	subject := u.ShortPath
	if u.Detail != "" {
		subject = fmt.Sprintf("%s in %s", u.Detail, u.ShortPath)
	}
	return fmt.Sprintf("%s %s | %d folders | %d items", u.Action, subject, u.FoldersScanned, u.TotalDeleted)
}
