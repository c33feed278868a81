package ui

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/Ning0612/cptrash/internal/logger"
	"github.com/Ning0612/cptrash/internal/progress"
)

// Task is the work run behind the spinner. It reports through r.
type Task func(ctx context.Context, r progress.Reporter) error

type progressMsg progress.Update

type doneMsg struct{ err error }

type spinnerModel struct {
	spinner spinner.Model
	title   string
	line    string
	done    bool
	err     error
}

func newSpinnerModel(title string) spinnerModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	return spinnerModel{spinner: sp, title: title}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case progressMsg:
		m.line = renderUpdate(progress.Update(msg))
	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	line := m.line
	if line == "" {
		line = m.title
	}
	return m.spinner.View() + " " + line + "\n"
}

// renderUpdate colours the path and counters of a progress line
func renderUpdate(u progress.Update) string {
	subject := theme.count.Render(u.ShortPath)
	if u.Detail != "" {
		subject = u.Detail + " in " + subject
	}
	return fmt.Sprintf("%s %s %s", u.Action, subject,
		theme.muted.Render(fmt.Sprintf("| %d folders | %d items", u.FoldersScanned, u.TotalDeleted)))
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// RunWithSpinner runs task while a spinner on out shows its latest progress.
// When out is not a terminal every update is printed as a plain line instead.
func RunWithSpinner(ctx context.Context, out io.Writer, title string, task Task) error {
	if !IsTerminal(out) {
		fmt.Fprintln(out, title)
		reporter := progress.NewCallbackReporter(nil, func(u progress.Update) {
			fmt.Fprintln(out, "  "+progress.FormatLine(u))
		})
		return task(ctx, reporter)
	}

	p := tea.NewProgram(newSpinnerModel(title),
		tea.WithOutput(out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	reporter := progress.NewCallbackReporter(nil, func(u progress.Update) {
		p.Send(progressMsg(u))
	})

	result := make(chan error, 1)
	go func() {
		err := task(ctx, reporter)
		result <- err
		p.Send(doneMsg{err: err})
	}()

	if _, err := p.Run(); err != nil {
		// the task keeps running without a display
		logger.Get().Warn("progress display failed", "error", err)
	}
	return <-result
}
