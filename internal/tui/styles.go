package tui

import "github.com/charmbracelet/lipgloss"

const faceWidth = 28

type styles struct {
	examine lipgloss.Style
	pressed lipgloss.Style
	custom  lipgloss.Style
	caption lipgloss.Style
	detail  lipgloss.Style
	title   lipgloss.Style
	help    lipgloss.Style
}

func defaultStyles() styles {
	face := lipgloss.NewStyle().
		Width(faceWidth).
		Height(5).
		Align(lipgloss.Center, lipgloss.Center).
		Padding(0, 1)

	return styles{
		examine: face.
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Foreground(lipgloss.Color("252")),
		pressed: face.
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("205")).
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("205")).
			MarginLeft(1).
			MarginTop(1),
		custom: face.
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("42")).
			Foreground(lipgloss.Color("42")),
		caption: lipgloss.NewStyle().Bold(true),
		detail:  lipgloss.NewStyle().Faint(true),
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).MarginBottom(1),
		help:    lipgloss.NewStyle().Faint(true).MarginTop(1),
	}
}
