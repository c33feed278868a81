package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Banner prints the program name and tagline
func Banner(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, theme.title.Render("  cptrash"))
	fmt.Fprintln(w, theme.muted.Render("  cPanel File Manager Trash Cleanup"))
	fmt.Fprintln(w)
}

// DryRunNotice prints the boxed dry-run warning
func DryRunNotice(w io.Writer) {
	box := theme.box.
		Padding(0, 1).
		BorderForeground(lipgloss.Color("214")).
		Render(theme.warning.Render("🔍 DRY RUN MODE - No files will be deleted"))
	fmt.Fprintln(w, box)
	fmt.Fprintln(w)
}

// Errorln prints a one-line error message
func Errorln(w io.Writer, err error) {
	fmt.Fprintln(w, theme.danger.Render("Error:"), err.Error())
}
