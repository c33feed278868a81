package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/Ning0612/cptrash/internal/state"
)

func TestHistoryTable(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	records := []state.RunRecord{
		{
			ID:             2,
			Account:        "alice@example.com:2083",
			Mode:           "live",
			Status:         state.StatusFailed,
			StartTime:      now.Add(-2 * time.Hour),
			EndTime:        now.Add(-2*time.Hour + 3*time.Second),
			Error:          "login failed",
			FoldersScanned: 0,
		},
		{
			ID:             1,
			Account:        "alice@example.com:2083",
			Mode:           "dry-run",
			Status:         state.StatusSuccess,
			StartTime:      now.Add(-72 * time.Hour),
			EndTime:        now.Add(-72*time.Hour + 90*time.Second),
			FoldersScanned: 12,
			ItemsDeleted:   1234,
		},
	}

	got := plain(HistoryTable(records, now))
	for _, want := range []string{
		"ID", "WHEN", "STATUS",
		"2 hours ago", "3 days ago",
		"dry-run", "failed", "1,234", "1m30s",
		"#2: login failed",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected %q in history:\n%s", want, got)
		}
	}
	if strings.Contains(got, "#1:") {
		t.Errorf("Successful runs should not print an error line:\n%s", got)
	}
}

func TestHistoryTable_Empty(t *testing.T) {
	if got := plain(HistoryTable(nil, time.Now())); !strings.Contains(got, "No sweeps recorded yet.") {
		t.Errorf("Unexpected empty history: %q", got)
	}
}

func TestLastSuccessLine(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if got := LastSuccessLine(nil, now); !strings.Contains(got, "not been emptied") {
		t.Errorf("Unexpected line without history: %q", got)
	}

	record := &state.RunRecord{EndTime: now.Add(-72 * time.Hour), ItemsDeleted: 5000}
	if got := LastSuccessLine(record, now); got != "Last emptied 3 days ago (5,000 items)" {
		t.Errorf("Unexpected line: %q", got)
	}
}
