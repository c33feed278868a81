package traversal

import (
	"context"
	"fmt"
	"time"

	"github.com/Ning0612/cptrash/internal/adapter"
	"github.com/Ning0612/cptrash/internal/domain"
	"github.com/Ning0612/cptrash/internal/logger"
	"github.com/Ning0612/cptrash/internal/progress"
	"github.com/Ning0612/cptrash/internal/report"
)

// DefaultMaxDepth bounds how deep the walk descends below the root
const DefaultMaxDepth = 64

// Options configures a sweep
type Options struct {
	Mode domain.Mode

	// MaxDepth is the deepest folder level entered below the root; 0 = unlimited
	MaxDepth int

	// RetryDelay is slept before the reload that precedes a second folder delete
	RetryDelay time.Duration

	Progress progress.Reporter
}

// Engine empties a remote directory tree depth-first, deleting every
// folder only after its contents are gone
type Engine struct {
	view   adapter.DirectoryView
	report *report.Run
	opts   Options
}

// NewEngine creates an engine that records into run
func NewEngine(view adapter.DirectoryView, run *report.Run, opts Options) *Engine {
	if opts.Progress == nil {
		opts.Progress = progress.NullReporter{}
	}
	return &Engine{
		view:   view,
		report: run,
		opts:   opts,
	}
}

type frameState int

const (
	stateEnter frameState = iota
	stateFolders
	stateAfterChild
	stateFiles
)

// frame is one directory on the walk stack
type frame struct {
	path  string
	depth int
	state frameState

	folders      []domain.Entry
	initialFiles int
	next         int // index into folders

	// kept: something below this directory was intentionally left in place
	kept      bool
	childKept bool
}

// Run walks the tree rooted at the view's current directory.
// Only navigation errors and cancellation end it early.
func (e *Engine) Run(ctx context.Context) error {
	root := e.view.CurrentPath(ctx)
	log := logger.Get().With("root", root, "mode", e.opts.Mode.String())
	log.Info("sweep started")

	stack := []*frame{{path: root}}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			log.Warn("sweep interrupted", "depth", len(stack)-1)
			return err
		}

		top := stack[len(stack)-1]
		switch top.state {
		case stateEnter:
			if !e.enter(ctx, top) {
				stack = pop(stack)
			}

		case stateFolders:
			if top.next >= len(top.folders) {
				top.state = stateFiles
				continue
			}

			folder := top.folders[top.next]
			child := domain.JoinPath(top.path, folder.Name)
			if e.opts.MaxDepth > 0 && top.depth+1 > e.opts.MaxDepth {
				log.Warn("folder deeper than max depth, leaving it in place", "path", child, "max_depth", e.opts.MaxDepth)
				e.report.Append(report.Entry{Path: child, Items: 0, Status: domain.StatusSkipped})
				top.kept = true
				top.next++
				continue
			}

			e.opts.Progress.Step(progress.ActionEntering, child)
			if err := e.view.Navigate(ctx, child); err != nil {
				return err
			}
			top.state = stateAfterChild
			stack = append(stack, &frame{path: child, depth: top.depth + 1})

		case stateAfterChild:
			e.opts.Progress.Step(progress.ActionReturning, top.path)
			if err := e.view.Navigate(ctx, top.path); err != nil {
				return err
			}

			folder := top.folders[top.next]
			if top.childKept {
				log.Warn("folder still holds skipped content, not deleting it", "path", domain.JoinPath(top.path, folder.Name))
				top.kept = true
			} else if err := e.deleteFolder(ctx, top, folder); err != nil {
				return err
			}
			top.childKept = false
			top.next++
			top.state = stateFolders

		case stateFiles:
			e.deleteFiles(ctx, top)
			stack = pop(stack)
		}
	}

	log.Info("sweep finished",
		"folders_scanned", e.report.FoldersScanned(),
		"total_deleted", e.report.TotalDeleted())
	return nil
}

// pop removes the top frame and hands its kept flag to the parent
func pop(stack []*frame) []*frame {
	top := stack[len(stack)-1]
	stack = stack[:len(stack)-1]
	if len(stack) > 0 && top.kept {
		stack[len(stack)-1].childKept = true
	}
	return stack
}

// enter lists the directory; it returns false when there is nothing to do
func (e *Engine) enter(ctx context.Context, f *frame) bool {
	e.report.Scanned()
	e.opts.Progress.Step(progress.ActionScanning, f.path)

	entries := e.view.List(ctx, true)
	if len(entries) == 0 {
		e.report.Append(report.Entry{Path: f.path, Items: 0, Status: domain.StatusEmpty})
		return false
	}

	_, duplicates := domain.Dedupe(entries)
	for _, name := range duplicates {
		logger.Get().Warn("duplicate name in listing, only the first row is selected by name", "path", f.path, "name", name)
	}

	// a folder name can only be entered once
	folders, _ := domain.Partition(entries)
	f.folders, _ = domain.Dedupe(folders)
	f.initialFiles = domain.CountFiles(entries)
	f.state = stateFolders
	return true
}

// deleteFolder removes an emptied child folder from the parent listing
func (e *Engine) deleteFolder(ctx context.Context, f *frame, folder domain.Entry) error {
	if e.opts.Mode.IsDryRun() {
		e.report.AddDeleted(1)
		return nil
	}

	e.opts.Progress.Detail(progress.ActionDeleting, f.path, "folder "+folder.Name)
	deleted := e.view.SelectAndDeleteSingle(ctx, folder.Name, false)
	if !deleted {
		if !sleep(ctx, e.opts.RetryDelay) {
			return ctx.Err()
		}
		if err := e.view.Reload(ctx); err != nil {
			return err
		}
		deleted = e.view.SelectAndDeleteSingle(ctx, folder.Name, false)
	}

	if !deleted {
		path := domain.JoinPath(f.path, folder.Name)
		logger.Get().Warn("failed to delete folder", "path", path)
		e.report.Append(report.Entry{Path: path, Items: 0, Status: domain.StatusFailed})
		return nil
	}

	e.view.WaitStable(ctx)
	e.report.AddDeleted(1)
	return nil
}

// deleteFiles removes the files left in the directory once its folders are handled
func (e *Engine) deleteFiles(ctx context.Context, f *frame) {
	// rows are counted as listed, names are selected once
	folders, files := domain.Partition(e.view.List(ctx, true))
	fileCount := len(files)
	files, _ = domain.Dedupe(files)

	if fileCount == 0 {
		if f.initialFiles > 0 {
			status := domain.StatusDeleted
			if e.opts.Mode.IsDryRun() {
				status = domain.StatusSkipped
			}
			e.report.Append(report.Entry{Path: f.path, Items: f.initialFiles, Status: status})
		}
		return
	}

	if e.opts.Mode.IsDryRun() {
		e.report.AddDeleted(fileCount)
		e.report.Append(report.Entry{Path: f.path, Items: fileCount, Status: domain.StatusSkipped})
		return
	}

	e.opts.Progress.Detail(progress.ActionDeleting, f.path, fmt.Sprintf("%d files", fileCount))
	log := logger.Get().With("path", f.path)

	if !e.selectFiles(ctx, folders, files) {
		log.Warn("could not select files", "files", fileCount)
		e.report.Append(report.Entry{Path: f.path, Items: 0, Status: domain.StatusFailed})
		return
	}
	e.view.DeleteSelected(ctx)

	remaining := e.remainingFiles(ctx)
	deleted := max(fileCount-len(remaining), 0)
	e.report.AddDeleted(deleted)

	if len(remaining) > 0 {
		log.Debug("files remain after delete, retrying once", "remaining", len(remaining))
		// folders that were kept are still listed, so stay away from select-all
		retry, _ := domain.Dedupe(remaining)
		if e.selectFiles(ctx, folders, retry) {
			e.view.DeleteSelected(ctx)
			after := e.remainingFiles(ctx)
			removed := max(len(remaining)-len(after), 0)
			e.report.AddDeleted(removed)
			deleted += removed
			if len(after) > 0 {
				log.Warn("files survived the retry", "remaining", len(after))
			}
		}
	}

	status := domain.StatusDeleted
	if deleted == 0 {
		status = domain.StatusFailed
		log.Warn("no files were deleted", "files", fileCount)
	}
	e.report.Append(report.Entry{Path: f.path, Items: deleted, Status: status})
}

// selectFiles selects files, using the bulk control only when no folder is
// listed alongside them
func (e *Engine) selectFiles(ctx context.Context, folders, files []domain.Entry) bool {
	if len(folders) == 0 && e.view.SelectAll(ctx) {
		return true
	}
	return e.view.SelectByName(ctx, files)
}

func (e *Engine) remainingFiles(ctx context.Context) []domain.Entry {
	_, files := domain.Partition(e.view.List(ctx, true))
	return files
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
