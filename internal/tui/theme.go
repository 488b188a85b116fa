package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

// ResolveTheme returns NoColorTheme when NO_COLOR is set, else the default.
func ResolveTheme() Theme {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return NoColorTheme()
	}
	return DefaultTheme()
}

// NoColorTheme returns a theme with empty colors. Lipgloss treats empty
// strings as "no color", so everything renders as plain text.
func NoColorTheme() Theme {
	empty := lipgloss.AdaptiveColor{Light: "", Dark: ""}
	return Theme{
		Primary:    empty,
		Secondary:  empty,
		Success:    empty,
		Warning:    empty,
		Error:      empty,
		Muted:      empty,
		Background: empty,
		Foreground: empty,
		Border:     empty,
	}
}
