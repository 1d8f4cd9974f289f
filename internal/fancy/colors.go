// Package fancy provides pretty printing utilities and styling for CLI output
package fancy

import "github.com/charmbracelet/lipgloss"

// Terminal colors shared by the kindling console output
var (
	ColorBlue     = lipgloss.Color("39")
	ColorPurple   = lipgloss.Color("35")
	ColorMagenta  = lipgloss.Color("201")
	ColorOrange   = lipgloss.Color("208")
	ColorGreen    = lipgloss.Color("82")
	ColorYellow   = lipgloss.Color("228")
	ColorCyan     = lipgloss.Color("45")
	ColorRed      = lipgloss.Color("196")
	ColorGray     = lipgloss.Color("250")
	ColorWhite    = lipgloss.Color("15")
	ColorDarkGray = lipgloss.Color("240")
)
