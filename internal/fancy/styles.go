package fancy

import "github.com/charmbracelet/lipgloss"

var (
	RootStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(ColorGray).
			Italic(true)

	BranchStyle = lipgloss.NewStyle().
			Foreground(ColorDarkGray)

	ComponentStyle = lipgloss.NewStyle().
			Foreground(ColorCyan)

	RouteStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	ModuleStyle = lipgloss.NewStyle().
			Foreground(ColorMagenta)

	ServiceStyle = lipgloss.NewStyle().
			Foreground(ColorPurple)

	RoutableStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	MiddlewareStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	ValidStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)
)

// RouteText styles a route path or ident
func RouteText(text string) string {
	return RouteStyle.Render(text)
}

// ModuleText styles a module ident
func ModuleText(text string) string {
	return ModuleStyle.Render(text)
}

// ServiceText styles a service provider section
func ServiceText(text string) string {
	return ServiceStyle.Render(text)
}

// RoutableText styles a routable type
func RoutableText(text string) string {
	return RoutableStyle.Render(text)
}

// MiddlewareText styles a middleware ident
func MiddlewareText(text string) string {
	return MiddlewareStyle.Render(text)
}

// ValidText styles a success message
func ValidText(text string) string {
	return ValidStyle.Render(text)
}

// ErrorText styles an error message
func ErrorText(text string) string {
	return ErrorStyle.Render(text)
}

// PathText styles file system paths
func PathText(text string) string {
	return InfoStyle.Render(text)
}
