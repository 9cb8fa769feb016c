package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	promptStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("238")).Padding(0, 2)
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	barFullStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	barEmptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// progressWidth is the number of cells in the progress bar.
const progressWidth = 30
