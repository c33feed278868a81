package cpanel

import (
	"context"

	"github.com/Ning0612/cptrash/internal/domain"
	"github.com/Ning0612/cptrash/internal/logger"
)

// SelectAll clicks the bulk "Select All" affordance
func (v *View) SelectAll(ctx context.Context) bool {
	name, ok := v.run(ctx, selectAllStrategies, LabelSelectAll)
	if !ok {
		logger.Get().Debug("select all affordance not found")
		return false
	}

	logger.Get().Debug("selected all rows", "strategy", name)
	sleep(ctx, v.timing.ActionDelay)
	return true
}

// SelectByName toggles the row of each entry into the selected state.
// Only the first row carrying a name is considered.
func (v *View) SelectByName(ctx context.Context, entries []domain.Entry) bool {
	selected := 0
	for _, e := range entries {
		if ctx.Err() != nil {
			break
		}
		name, ok := v.run(ctx, selectRowStrategies, e.Name)
		if !ok {
			logger.Get().Debug("row not selectable", "name", e.Name)
			continue
		}
		logger.Get().Debug("row selected", "name", e.Name, "strategy", name)
		selected++
		sleep(ctx, v.timing.ActionDelay)
	}

	logger.Get().Debug("selected by name", "selected", selected, "requested", len(entries))
	return selected > 0
}

// DeleteSelected triggers the delete action and confirms the dialog.
// It does not verify that anything was removed.
func (v *View) DeleteSelected(ctx context.Context) {
	if !sleep(ctx, v.timing.PreDeleteDelay) {
		return
	}

	action, ok := v.run(ctx, deleteStrategies)
	if !ok {
		logger.Get().Debug("delete action not available")
		return
	}

	if !sleep(ctx, v.timing.ConfirmDelay) {
		return
	}

	confirm, ok := v.run(ctx, confirmStrategies, LabelDeleteFiles)
	if !ok {
		logger.Get().Debug("delete confirmation not found", "action", action)
	} else {
		logger.Get().Debug("delete confirmed", "action", action, "confirm", confirm)
	}

	sleep(ctx, v.timing.DeleteSettleDelay)
}

// SelectAndDeleteSingle deletes exactly one named row.
// In dry-run it only proves the row is selectable.
func (v *View) SelectAndDeleteSingle(ctx context.Context, name string, dryRun bool) bool {
	if !sleep(ctx, v.timing.SinglePreDelay) {
		return false
	}

	var cleared int
	if err := v.page.Call(ctx, clearSelectionScript, &cleared); err != nil {
		logger.Get().Debug("failed to clear selection", "error", err)
	}

	if !v.markRow(ctx, name) {
		if !sleep(ctx, v.timing.SingleRetryDelay) {
			return false
		}
		if !v.markRow(ctx, name) {
			logger.Get().Debug("row not found for single delete", "name", name)
			return false
		}
	}

	if dryRun {
		return true
	}

	v.DeleteSelected(ctx)
	sleep(ctx, v.timing.SinglePostDelay)
	return true
}

func (v *View) markRow(ctx context.Context, name string) bool {
	var ok bool
	if err := v.page.Call(ctx, markRowScript, &ok, name); err != nil {
		logger.Get().Debug("row selection errored", "name", name, "error", err)
		return false
	}
	return ok
}
