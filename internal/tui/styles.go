package tui

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))

	userLabelStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	assistantLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	userTextStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	statusStyle         = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245"))
	toggleStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("236"))
	errorStyle          = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("1"))

	cardTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	suggestionStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	suggestionSelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6"))
	tickerStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
)
