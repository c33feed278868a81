package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/Ning0612/cptrash/internal/state"
)

// HistoryTable renders past runs, newest first, with times relative to now
func HistoryTable(records []state.RunRecord, now time.Time) string {
	if len(records) == 0 {
		return theme.muted.Render("  No sweeps recorded yet.") + "\n"
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			fmt.Sprint(r.ID),
			humanize.RelTime(r.StartTime, now, "ago", "from now"),
			r.Account,
			r.Mode,
			r.Status,
			humanize.Comma(int64(r.FoldersScanned)),
			humanize.Comma(int64(r.ItemsDeleted)),
			r.Duration().Round(100 * time.Millisecond).String(),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(theme.muted).
		Headers("ID", "WHEN", "ACCOUNT", "MODE", "STATUS", "FOLDERS", "ITEMS", "DURATION").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return style.Inherit(theme.header)
			}
			if col == 4 && row >= 0 && row < len(records) && records[row].Status == state.StatusFailed {
				return style.Inherit(theme.danger)
			}
			return style
		})

	var b strings.Builder
	b.WriteString(t.String() + "\n")

	for _, r := range records {
		if r.Error != "" {
			b.WriteString(theme.danger.Render(fmt.Sprintf("  #%d: %s", r.ID, r.Error)) + "\n")
		}
	}
	return b.String()
}

// LastSuccessLine describes when the account's trash was last emptied
func LastSuccessLine(record *state.RunRecord, now time.Time) string {
	if record == nil {
		return "Trash has not been emptied by cptrash yet"
	}
	return fmt.Sprintf("Last emptied %s (%s items)",
		humanize.RelTime(record.EndTime, now, "ago", "from now"),
		humanize.Comma(int64(record.ItemsDeleted)))
}
