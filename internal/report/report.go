package report

import (
	"sync"

	"github.com/Ning0612/cptrash/internal/domain"
)

// Entry is one line of the deletion log
type Entry struct {
	// Path is the remote directory the entry describes
	Path string

	// Items is the number of items deleted, counted, or 0
	Items int

	// Status is the outcome for the directory
	Status domain.Status
}

// Run holds the counters and ordered deletion log of a single sweep.
// A fresh Run is created per sweep; the traversal engine is its only writer.
type Run struct {
	mu             sync.RWMutex
	foldersScanned int
	totalDeleted   int
	entries        []Entry
}

// New creates an empty run report
func New() *Run {
	return &Run{}
}

// Scanned records that one more directory was entered
func (r *Run) Scanned() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.foldersScanned++
}

// AddDeleted adds n to the deleted (or would-be-deleted) total
// Negative values are ignored so the counter never decreases
func (r *Run) AddDeleted(n int) {
	if n <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.totalDeleted += n
}

// Append adds a log entry; entries are never modified afterwards
func (r *Run) Append(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

// FoldersScanned returns the number of directories entered
func (r *Run) FoldersScanned() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.foldersScanned
}

// TotalDeleted returns the number of items deleted (or found, in dry run)
func (r *Run) TotalDeleted() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.totalDeleted
}

// Entries returns a copy of the log in visitation order
func (r *Run) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// CountByStatus returns how many log entries have each status
func (r *Run) CountByStatus() map[domain.Status]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[domain.Status]int)
	for _, e := range r.entries {
		counts[e.Status]++
	}
	return counts
}

// HasFailures returns true if any directory ended as failed
func (r *Run) HasFailures() bool {
	return r.CountByStatus()[domain.StatusFailed] > 0
}
