package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Ning0612/cptrash/internal/domain"
	"github.com/Ning0612/cptrash/internal/progress"
	"github.com/Ning0612/cptrash/internal/report"
)

const (
	maxPathWidth = 50
	itemsWidth   = 7
	statusWidth  = 8
)

// StatusLabel returns the summary label for a log entry status
func StatusLabel(s domain.Status) string {
	switch s {
	case domain.StatusDeleted:
		return theme.success.Render("✓ done")
	case domain.StatusSkipped:
		return theme.warning.Render("○ skip")
	case domain.StatusEmpty:
		return theme.muted.Render("- empty")
	default:
		return theme.danger.Render("✗ fail")
	}
}

// SummaryTable renders the deletion log as PATH / ITEMS / STATUS columns
func SummaryTable(entries []report.Entry) string {
	if len(entries) == 0 {
		return theme.muted.Render("  No items found in trash.") + "\n"
	}

	paths := make([]string, len(entries))
	width := 4
	for i, e := range entries {
		paths[i] = progress.ShortenPath(e.Path)
		width = max(width, len([]rune(paths[i])))
	}
	width = min(width, maxPathWidth)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.header.Render("  " + pad("PATH", width) + "  " + fmt.Sprintf("%*s", itemsWidth, "ITEMS") + "  STATUS"))
	b.WriteString("\n")
	b.WriteString(theme.muted.Render("  " + strings.Repeat("─", width) + "  " + strings.Repeat("─", itemsWidth) + "  " + strings.Repeat("─", statusWidth)))
	b.WriteString("\n")

	for i, e := range entries {
		path := pad(progress.Truncate(paths[i], width), width)
		items := fmt.Sprintf("%*d", itemsWidth, e.Items)
		b.WriteString("  " + theme.path.Render(path) + "  " + theme.count.Render(items) + "  " + StatusLabel(e.Status))
		b.WriteString("\n")
	}
	return b.String()
}

// CompletionLine is the one-line result printed when the spinner stops
func CompletionLine(run *report.Run, mode domain.Mode) string {
	verb := "deleted"
	if mode.IsDryRun() {
		verb = "found"
	}
	return theme.success.Render("✔") + fmt.Sprintf(" Processed %d folders, %d items %s", run.FoldersScanned(), run.TotalDeleted(), verb)
}

// SummaryBox renders the boxed end-of-run summary
func SummaryBox(run *report.Run, mode domain.Mode, elapsed time.Duration) string {
	title := "✅ Cleanup Complete!"
	itemsLabel := "Items deleted"
	border := lipgloss.Color("42")
	if mode.IsDryRun() {
		title = "🔍 Dry Run Complete!"
		itemsLabel = "Items found"
		border = lipgloss.Color("214")
	}

	var b strings.Builder
	b.WriteString(theme.header.Render(title) + "\n\n")
	b.WriteString(fmt.Sprintf("📁 Folders scanned: %s\n", theme.count.Render(fmt.Sprint(run.FoldersScanned()))))
	b.WriteString(fmt.Sprintf("🗑️  %s: %s\n", itemsLabel, theme.success.Render(fmt.Sprint(run.TotalDeleted()))))
	b.WriteString(fmt.Sprintf("⏱️  Time taken: %s", theme.warning.Render(fmt.Sprintf("%.1fs", elapsed.Seconds()))))
	if failed := run.CountByStatus()[domain.StatusFailed]; failed > 0 {
		b.WriteString("\n" + theme.danger.Render(fmt.Sprintf("⚠️  %d folder(s) could not be fully emptied", failed)))
	}
	if mode.IsDryRun() {
		b.WriteString("\n\n" + theme.muted.Render("Run without --dry-run to delete"))
	}

	return theme.box.BorderForeground(border).Render(b.String())
}

// pad right-pads s with spaces to width runes
func pad(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
