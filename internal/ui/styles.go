package ui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title   lipgloss.Style
	muted   lipgloss.Style
	header  lipgloss.Style
	path    lipgloss.Style
	count   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	danger  lipgloss.Style
	box     lipgloss.Style
}

var theme = styles{
	title:   lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true),
	muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	header:  lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true),
	path:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	count:   lipgloss.NewStyle().Foreground(lipgloss.Color("86")),
	success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	danger:  lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
	box: lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		Padding(1, 2),
}
