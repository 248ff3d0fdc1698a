package tui

import "github.com/charmbracelet/lipgloss"

// Colors using AdaptiveColor for light/dark terminal support.
var (
	colorWhite  = lipgloss.AdaptiveColor{Light: "0", Dark: "15"}
	colorDim    = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}
	colorGreen  = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
	colorRed    = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	colorYellow = lipgloss.AdaptiveColor{Light: "136", Dark: "220"}
	colorBlue   = lipgloss.AdaptiveColor{Light: "25", Dark: "39"}
)

// Layout styles.
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Background(lipgloss.AdaptiveColor{Light: "235", Dark: "236"})

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
)

// Control and status styles.
var (
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	labelStyle    = lipgloss.NewStyle().Foreground(colorDim)
	valueStyle    = lipgloss.NewStyle().Foreground(colorWhite)
	onStyle       = lipgloss.NewStyle().Foreground(colorGreen)
	offStyle      = lipgloss.NewStyle().Foreground(colorDim)
	warnStyle     = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	pendingStyle  = lipgloss.NewStyle().Foreground(colorYellow)
)
