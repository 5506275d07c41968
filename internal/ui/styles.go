package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	dark "github.com/thiagokokada/dark-mode-go"
)

// Theme bundles every style the selector and list printer use. It is built
// once at startup and passed by value into the UI; nothing in this package
// keeps theme state.
type Theme struct {
	Name string

	Title       lipgloss.Style
	Hint        lipgloss.Style
	FilterLine  lipgloss.Style
	CheckboxOn  lipgloss.Style
	CheckboxOff lipgloss.Style
	ItemOn      lipgloss.Style
	ItemOff     lipgloss.Style
	Footer      lipgloss.Style
	Success     lipgloss.Style
	ListAlt1    lipgloss.Style
	ListAlt2    lipgloss.Style
}

// Dark Theme - Tokyo Night
var darkColors = struct {
	Text, TextDim, Accent, Green, Cyan, Comment lipgloss.Color
}{
	Text:    lipgloss.Color("#c0caf5"),
	TextDim: lipgloss.Color("#787fa0"),
	Accent:  lipgloss.Color("#7aa2f7"),
	Green:   lipgloss.Color("#9ece6a"),
	Cyan:    lipgloss.Color("#7dcfff"),
	Comment: lipgloss.Color("#787fa0"),
}

// Light Theme - Tokyo Night Light variant
var lightColors = struct {
	Text, TextDim, Accent, Green, Cyan, Comment lipgloss.Color
}{
	Text:    lipgloss.Color("#343b58"),
	TextDim: lipgloss.Color("#6a6d7c"),
	Accent:  lipgloss.Color("#34548a"),
	Green:   lipgloss.Color("#485e30"),
	Cyan:    lipgloss.Color("#166775"),
	Comment: lipgloss.Color("#6a6d7c"),
}

// DarkTheme returns the dark color scheme.
func DarkTheme() Theme {
	c := darkColors
	return Theme{
		Name:        "dark",
		Title:       lipgloss.NewStyle().Foreground(c.Accent).Bold(true),
		Hint:        lipgloss.NewStyle().Foreground(c.Comment),
		FilterLine:  lipgloss.NewStyle().Foreground(c.TextDim),
		CheckboxOn:  lipgloss.NewStyle().Foreground(c.Green),
		CheckboxOff: lipgloss.NewStyle().Foreground(c.TextDim),
		ItemOn:      lipgloss.NewStyle().Foreground(c.Text),
		ItemOff:     lipgloss.NewStyle().Foreground(c.Text),
		Footer:      lipgloss.NewStyle().Foreground(c.Accent),
		Success:     lipgloss.NewStyle().Foreground(c.Green).Bold(true),
		ListAlt1:    lipgloss.NewStyle().Foreground(c.Cyan),
		ListAlt2:    lipgloss.NewStyle().Foreground(c.Green),
	}
}

// LightTheme returns the light color scheme.
func LightTheme() Theme {
	c := lightColors
	return Theme{
		Name:        "light",
		Title:       lipgloss.NewStyle().Foreground(c.Accent).Bold(true),
		Hint:        lipgloss.NewStyle().Foreground(c.Comment),
		FilterLine:  lipgloss.NewStyle().Foreground(c.TextDim),
		CheckboxOn:  lipgloss.NewStyle().Foreground(c.Green),
		CheckboxOff: lipgloss.NewStyle().Foreground(c.TextDim),
		ItemOn:      lipgloss.NewStyle().Foreground(c.Text),
		ItemOff:     lipgloss.NewStyle().Foreground(c.Text),
		Footer:      lipgloss.NewStyle().Foreground(c.Accent),
		Success:     lipgloss.NewStyle().Foreground(c.Green).Bold(true),
		ListAlt1:    lipgloss.NewStyle().Foreground(c.Cyan),
		ListAlt2:    lipgloss.NewStyle().Foreground(c.Green),
	}
}

// ResolveTheme maps a configured theme name ("dark", "light", "system") to a
// Theme. "system" asks the OS first and falls back to probing the terminal
// background.
func ResolveTheme(name string) Theme {
	switch name {
	case "light":
		return LightTheme()
	case "dark":
		return DarkTheme()
	default:
		if isDark, err := dark.IsDarkMode(); err == nil {
			if isDark {
				return DarkTheme()
			}
			return LightTheme()
		}
		if termenv.HasDarkBackground() {
			return DarkTheme()
		}
		return LightTheme()
	}
}
