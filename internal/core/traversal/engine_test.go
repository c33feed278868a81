package traversal

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Ning0612/cptrash/internal/domain"
	"github.com/Ning0612/cptrash/internal/progress"
	"github.com/Ning0612/cptrash/internal/report"
)

const root = "/home/alice/.trash"

func runEngine(t *testing.T, view *fakeView, opts Options) *report.Run {
	t.Helper()
	run := report.New()
	if err := NewEngine(view, run, opts).Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return run
}

func assertEntries(t *testing.T, got []report.Entry, expected []report.Entry) {
	t.Helper()
	if len(got) != len(expected) {
		t.Fatalf("Expected %d log entries, got %d: %+v", len(expected), len(got), got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("entry %d: expected %+v, got %+v", i, expected[i], got[i])
		}
	}
}

func indexOf(events []string, event string) int {
	for i, e := range events {
		if e == event {
			return i
		}
	}
	return -1
}

func TestRun_EmptyRoot(t *testing.T) {
	view := newFakeView(root)

	run := runEngine(t, view, Options{Mode: domain.ModeLive})

	assertEntries(t, run.Entries(), []report.Entry{{Path: root, Items: 0, Status: domain.StatusEmpty}})
	if run.FoldersScanned() != 1 {
		t.Errorf("Expected 1 folder scanned, got %d", run.FoldersScanned())
	}
	if run.TotalDeleted() != 0 {
		t.Errorf("Expected 0 deleted, got %d", run.TotalDeleted())
	}
}

func TestRun_Nested(t *testing.T) {
	a := root + "/A"
	view := newFakeView(root).folder(root, "A").file(root, "B.txt").file(a, "one.txt").file(a, "two.txt")

	run := runEngine(t, view, Options{Mode: domain.ModeLive})

	assertEntries(t, run.Entries(), []report.Entry{
		{Path: a, Items: 2, Status: domain.StatusDeleted},
		{Path: root, Items: 1, Status: domain.StatusDeleted},
	})
	if run.TotalDeleted() != 4 {
		t.Errorf("Expected 4 deleted, got %d", run.TotalDeleted())
	}
	if run.FoldersScanned() != 2 {
		t.Errorf("Expected 2 folders scanned, got %d", run.FoldersScanned())
	}
	if got := view.dirs[root]; len(got) != 0 {
		t.Errorf("Expected root to be empty, got %v", got)
	}
}

func TestRun_PostOrder(t *testing.T) {
	a := root + "/A"
	b := a + "/B"
	view := newFakeView(root).
		folder(root, "A").
		folder(a, "B").file(a, "a.txt").
		file(b, "b.txt")

	runEngine(t, view, Options{Mode: domain.ModeLive})
	events := view.eventsCopy()

	deleteB := indexOf(events, "delete "+b)
	deleteA := indexOf(events, "delete "+a)
	if deleteB < 0 || deleteA < 0 {
		t.Fatalf("Expected both folders to be deleted, events: %v", events)
	}
	if i := indexOf(events, "delete "+b+"/b.txt"); i < 0 || i > deleteB {
		t.Errorf("Expected b.txt to be deleted before B, events: %v", events)
	}
	if i := indexOf(events, "delete "+a+"/a.txt"); i < 0 || i > deleteA {
		t.Errorf("Expected a.txt to be deleted before A, events: %v", events)
	}
	if deleteB > deleteA {
		t.Errorf("Expected B to be deleted before A, events: %v", events)
	}
	if indexOf(events, "navigate "+b) > deleteA {
		t.Errorf("Expected B to be entered before A is deleted")
	}
}

func TestRun_Idempotent(t *testing.T) {
	a := root + "/A"
	view := newFakeView(root).folder(root, "A").file(a, "x").file(root, "y")

	runEngine(t, view, Options{Mode: domain.ModeLive})
	second := runEngine(t, view, Options{Mode: domain.ModeLive})

	assertEntries(t, second.Entries(), []report.Entry{{Path: root, Items: 0, Status: domain.StatusEmpty}})
	if second.TotalDeleted() != 0 {
		t.Errorf("Expected 0 deleted on second run, got %d", second.TotalDeleted())
	}
}

func TestRun_Conservation(t *testing.T) {
	view := newFakeView(root).
		folder(root, "d1").folder(root, "d2").
		file(root, "f1").file(root, "f2").file(root, "f3")

	run := runEngine(t, view, Options{Mode: domain.ModeLive})

	if run.TotalDeleted() != 5 {
		t.Errorf("Expected f+d = 5 deleted, got %d", run.TotalDeleted())
	}
	assertEntries(t, run.Entries(), []report.Entry{
		{Path: root + "/d1", Items: 0, Status: domain.StatusEmpty},
		{Path: root + "/d2", Items: 0, Status: domain.StatusEmpty},
		{Path: root, Items: 3, Status: domain.StatusDeleted},
	})
}

func TestRun_DryRunLeavesTreeIntact(t *testing.T) {
	a := root + "/A"
	view := newFakeView(root).folder(root, "A").file(root, "B.txt").file(a, "one.txt").file(a, "two.txt")
	before := view.snapshot()

	run := runEngine(t, view, Options{Mode: domain.ModeDryRun})

	if after := view.snapshot(); after != before {
		t.Errorf("Dry run changed the tree:\nbefore:\n%s\nafter:\n%s", before, after)
	}
	for _, e := range view.eventsCopy() {
		if strings.HasPrefix(e, "delete ") {
			t.Errorf("Unexpected deletion under dry run: %s", e)
		}
	}
	if run.TotalDeleted() != 4 {
		t.Errorf("Expected 4 would-be deletions, got %d", run.TotalDeleted())
	}
	assertEntries(t, run.Entries(), []report.Entry{
		{Path: a, Items: 2, Status: domain.StatusSkipped},
		{Path: root, Items: 1, Status: domain.StatusSkipped},
	})
}

func TestRun_PartialFailureContinues(t *testing.T) {
	x := root + "/X"
	y := root + "/Y"
	view := newFakeView(root).
		folder(root, "X").folder(root, "Y").
		file(x, "1").file(x, "2").file(x, "3").
		file(y, "keep-going")
	view.failSelect[x] = true

	run := runEngine(t, view, Options{Mode: domain.ModeLive})

	assertEntries(t, run.Entries(), []report.Entry{
		{Path: x, Items: 0, Status: domain.StatusFailed},
		{Path: y, Items: 1, Status: domain.StatusDeleted},
	})
	if !run.HasFailures() {
		t.Error("Expected report to carry a failure")
	}
}

func TestRun_RetryThenSuccess(t *testing.T) {
	view := newFakeView(root).file(root, "a").file(root, "b").file(root, "c")
	view.survive[root+"/c"] = 1

	run := runEngine(t, view, Options{Mode: domain.ModeLive})

	assertEntries(t, run.Entries(), []report.Entry{{Path: root, Items: 3, Status: domain.StatusDeleted}})
	if run.TotalDeleted() != 3 {
		t.Errorf("Expected 3 deleted, got %d", run.TotalDeleted())
	}
}

func TestRun_RetryCountsOnlyWhatWasRemoved(t *testing.T) {
	view := newFakeView(root).file(root, "a").file(root, "b").file(root, "c")
	view.survive[root+"/c"] = 2

	run := runEngine(t, view, Options{Mode: domain.ModeLive})

	assertEntries(t, run.Entries(), []report.Entry{{Path: root, Items: 2, Status: domain.StatusDeleted}})
	if run.TotalDeleted() != 2 {
		t.Errorf("Expected 2 deleted, got %d", run.TotalDeleted())
	}
}

func TestRun_FolderDeleteRetriesAfterReload(t *testing.T) {
	view := newFakeView(root).folder(root, "A")
	view.singleFails[root] = 1

	run := runEngine(t, view, Options{Mode: domain.ModeLive})

	if view.reloads != 1 {
		t.Errorf("Expected 1 reload, got %d", view.reloads)
	}
	if run.TotalDeleted() != 1 {
		t.Errorf("Expected folder to be counted once, got %d", run.TotalDeleted())
	}
}

func TestRun_FolderDeleteGivesUp(t *testing.T) {
	a := root + "/A"
	view := newFakeView(root).folder(root, "A").file(a, "x").file(root, "f")
	view.singleFails[root] = 2

	run := runEngine(t, view, Options{Mode: domain.ModeLive})

	if run.TotalDeleted() != 2 {
		t.Errorf("Expected x and f to be counted, got %d", run.TotalDeleted())
	}
	if len(view.dirs[root]) != 1 || view.dirs[root][0].Name != "A" {
		t.Errorf("Expected A to remain, got %v", view.dirs[root])
	}
	assertEntries(t, run.Entries(), []report.Entry{
		{Path: a, Items: 1, Status: domain.StatusDeleted},
		{Path: a, Items: 0, Status: domain.StatusFailed},
		{Path: root, Items: 1, Status: domain.StatusDeleted},
	})
	if !run.HasFailures() {
		t.Error("Expected the kept folder to mark the run as failed")
	}
}

func TestRun_NavigationErrorIsFatal(t *testing.T) {
	view := newFakeView(root).folder(root, "A").folder(root, "B")
	view.failNav[root+"/A"] = true

	err := NewEngine(view, report.New(), Options{Mode: domain.ModeLive}).Run(context.Background())

	var navErr *domain.NavigationError
	if !errors.As(err, &navErr) || navErr.Path != root+"/A" {
		t.Fatalf("Expected NavigationError for A, got %v", err)
	}
	if indexOf(view.eventsCopy(), "navigate "+root+"/B") >= 0 {
		t.Error("Expected walk to stop at the fatal error")
	}
}

func TestRun_MaxDepth(t *testing.T) {
	a := root + "/A"
	b := a + "/B"
	view := newFakeView(root).
		folder(root, "A").file(root, "top").
		folder(a, "B").file(a, "mid").
		file(b, "deep")

	run := runEngine(t, view, Options{Mode: domain.ModeLive, MaxDepth: 1})

	assertEntries(t, run.Entries(), []report.Entry{
		{Path: b, Items: 0, Status: domain.StatusSkipped},
		{Path: a, Items: 1, Status: domain.StatusDeleted},
		{Path: root, Items: 1, Status: domain.StatusDeleted},
	})
	if indexOf(view.eventsCopy(), "navigate "+b) >= 0 {
		t.Error("Expected B not to be entered")
	}
	if len(view.dirs[b]) != 1 {
		t.Errorf("Expected B to keep its content, got %v", view.dirs[b])
	}
	if len(view.dirs[root]) != 1 || view.dirs[root][0].Name != "A" {
		t.Errorf("Expected only A to remain at root, got %v", view.dirs[root])
	}
}

func TestRun_Cancelled(t *testing.T) {
	a := root + "/A"
	view := newFakeView(root).folder(root, "A").file(a, "x").file(root, "y")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	view.onNavigate = func(path string) {
		if path == a {
			cancel()
		}
	}

	err := NewEngine(view, report.New(), Options{Mode: domain.ModeLive}).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if len(view.dirs[a]) != 1 {
		t.Errorf("Expected nothing deleted after cancellation, got %v", view.dirs[a])
	}
}

func TestRun_DuplicateNamesCountEveryRow(t *testing.T) {
	tests := []struct {
		name    string
		mode    domain.Mode
		folders bool
		status  domain.Status
	}{
		{"dry run", domain.ModeDryRun, false, domain.StatusSkipped},
		{"select all", domain.ModeLive, false, domain.StatusDeleted},
		{"by name", domain.ModeLive, true, domain.StatusDeleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := newFakeView(root).file(root, "dup").file(root, "dup").file(root, "other")
			if tt.folders {
				// a folder that cannot be removed keeps select-all out of play
				view.folder(root, "keep").file(root+"/keep", "x")
				view.singleFails[root] = 2
			}

			run := runEngine(t, view, Options{Mode: tt.mode})

			want := 3
			if tt.folders {
				want = 4
			}
			if run.TotalDeleted() != want {
				t.Errorf("Expected %d, got %d", want, run.TotalDeleted())
			}
			entries := run.Entries()
			last := entries[len(entries)-1]
			if last.Path != root || last.Items != 3 || last.Status != tt.status {
				t.Errorf("Expected {%s 3 %s}, got %+v", root, tt.status, last)
			}
			if tt.mode == domain.ModeLive {
				_, files := domain.Partition(view.dirs[root])
				if len(files) != 0 {
					t.Errorf("Expected every duplicate row removed, got %v", files)
				}
			}
		})
	}
}

func TestRun_ReportsProgress(t *testing.T) {
	a := root + "/A"
	view := newFakeView(root).folder(root, "A").file(a, "x")

	var actions []string
	run := report.New()
	reporter := progress.NewCallbackReporter(run, func(u progress.Update) {
		actions = append(actions, string(u.Action)+" "+u.Path)
	})

	if err := NewEngine(view, run, Options{Mode: domain.ModeLive, Progress: reporter}).Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	expected := []string{
		"Scanning " + root,
		"Entering " + a,
		"Scanning " + a,
		"Deleting " + a,
		"Returning to " + root,
		"Deleting " + root,
	}
	if strings.Join(actions, "\n") != strings.Join(expected, "\n") {
		t.Errorf("Unexpected progress:\n%s\nexpected:\n%s", strings.Join(actions, "\n"), strings.Join(expected, "\n"))
	}
}
