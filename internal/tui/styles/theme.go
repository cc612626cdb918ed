// Package styles defines the roomview terminal palettes.
package styles

import "github.com/charmbracelet/lipgloss"

// BaseColors defines global UI colors.
type BaseColors struct {
	Background string
	Foreground string
	Muted      string
	Accent     string
}

// BandColors are the alternating block backgrounds.
type BandColors struct {
	Primary   string
	Secondary string
}

// TextColors style block text.
type TextColors struct {
	Header string
	Body   string
}

// ChromeColors defines non-content UI colors.
type ChromeColors struct {
	Header          string
	Footer          string
	ScrollbarTrack  string
	ScrollbarThumb  string
	Error           string
	StatusFetching  string
	StatusExhausted string
}

// Theme defines the roomview style tokens.
type Theme struct {
	Name         string
	AgentPalette []string // identity colors for avatars (ANSI-256 codes)

	Base   BaseColors
	Band   BandColors
	Text   TextColors
	Chrome ChromeColors
}

// Themes lists available palettes by name.
var Themes = map[string]Theme{
	"default":       DefaultTheme,
	"high-contrast": HighContrastTheme,
}

// ByName returns the named theme, falling back to the default.
func ByName(name string) (Theme, bool) {
	theme, ok := Themes[name]
	if !ok {
		return DefaultTheme, false
	}
	return theme, true
}

func (t Theme) HeaderStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Chrome.Header)).Bold(true)
}

func (t Theme) FooterStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Chrome.Footer))
}

func (t Theme) MutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Base.Muted))
}

func (t Theme) ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Chrome.Error)).Bold(true)
}

func (t Theme) ScrollbarTrackStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Chrome.ScrollbarTrack))
}

func (t Theme) ScrollbarThumbStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Chrome.ScrollbarThumb))
}
