package domain

// Status is the outcome recorded for one visited directory
type Status string

const (
	// StatusDeleted means files in the directory were removed
	StatusDeleted Status = "deleted"

	// StatusSkipped means removal was suppressed (dry run or traversal guard)
	StatusSkipped Status = "skipped"

	// StatusEmpty means the directory listed no entries
	StatusEmpty Status = "empty"

	// StatusFailed means files were present but could not be removed
	StatusFailed Status = "failed"
)

// IsValid checks if the status is a known value
func (s Status) IsValid() bool {
	switch s {
	case StatusDeleted, StatusSkipped, StatusEmpty, StatusFailed:
		return true
	}
	return false
}

// Mode selects whether destructive operations are performed
// It is fixed before traversal starts
type Mode int

const (
	// ModeLive deletes items
	ModeLive Mode = iota

	// ModeDryRun lists and navigates but only counts what would be deleted
	ModeDryRun
)

// String returns the string representation of the mode
func (m Mode) String() string {
	if m == ModeDryRun {
		return "dry-run"
	}
	return "live"
}

// IsDryRun returns true for ModeDryRun
func (m Mode) IsDryRun() bool {
	return m == ModeDryRun
}
