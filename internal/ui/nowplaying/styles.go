package nowplaying

import "github.com/charmbracelet/lipgloss"

const (
	playSymbol    = "▶"
	pauseSymbol   = "⏸"
	stopSymbol    = "■"
	loadingSymbol = "…"
	errorSymbol   = "✗"
	shuffleSymbol = "⤮"
	repeatSymbol  = "⟳"
	repeatOneMark = "¹"
)

var (
	accent = lipgloss.Color("#a78bfa")
	fgBase = lipgloss.Color("#c0c0c0")
	fgDim  = lipgloss.Color("#808080")
	fgErr  = lipgloss.Color("#ff5555")
	border = lipgloss.Color("240")
)

var (
	barStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(border)

	titleStyle    = lipgloss.NewStyle().Foreground(fgBase).Bold(true)
	artistStyle   = lipgloss.NewStyle().Foreground(fgDim)
	metaStyle     = lipgloss.NewStyle().Foreground(fgDim)
	timeStyle     = lipgloss.NewStyle().Foreground(fgDim)
	activeStyle   = lipgloss.NewStyle().Foreground(accent).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(fgErr)
	filledStyle   = lipgloss.NewStyle().Foreground(accent)
	emptyBarStyle = lipgloss.NewStyle().Foreground(border)
)
