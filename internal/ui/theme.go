package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines colors for the UI.
type Theme struct {
	Name string

	Background string
	Surface    string
	Border     string

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Text: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)),

		MutedText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),

		FaintText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Faint)),

		AccentText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)),

		SuccessText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)).
			Bold(true),

		WarningText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)),

		DangerText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Danger)).
			Bold(true),

		InfoText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Info)),

		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)).
			Padding(0, 1),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Border)).
			Padding(0, 1),

		background: t.Background,
		success:    t.Success,
		danger:     t.Danger,
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	Header lipgloss.Style
	Footer lipgloss.Style
	Panel  lipgloss.Style

	background string
	success    string
	danger     string
}

// Badge renders the connectivity badge.
func (s Styles) Badge(connectable bool) string {
	label, color := "CONNECTED", s.success
	if !connectable {
		label, color = "DISCONNECTED", s.danger
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.background)).
		Background(lipgloss.Color(color)).
		Bold(true).
		Padding(0, 1).
		Render(label)
}

// Theme definitions

var themes = map[string]Theme{
	"Midnight": midnightTheme(),
	"Daylight": daylightTheme(),
	"Mono":     monoTheme(),
}

var themeOrder = []string{"Midnight", "Daylight", "Mono"}

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return midnightTheme()
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return themeOrder
}

func midnightTheme() Theme {
	// Nightfox palette: https://github.com/EdenEast/nightfox.nvim
	return Theme{
		Name:       "Midnight",
		Background: "#131a24",
		Surface:    "#192330",
		Border:     "#39506d",
		Text:       "#cdcecf",
		Muted:      "#738091",
		Faint:      "#71839b",
		Accent:     "#719cd6",
		Success:    "#81b29a",
		Warning:    "#dbc074",
		Danger:     "#c94f6d",
		Info:       "#63cdcf",
	}
}

func daylightTheme() Theme {
	// Dayfox palette
	return Theme{
		Name:       "Daylight",
		Background: "#f6f2ee",
		Surface:    "#e4dcd4",
		Border:     "#bdbfc2",
		Text:       "#3d2b5a",
		Muted:      "#837a72",
		Faint:      "#a7a09a",
		Accent:     "#2848a9",
		Success:    "#396847",
		Warning:    "#ac5402",
		Danger:     "#a5222f",
		Info:       "#287980",
	}
}

func monoTheme() Theme {
	return Theme{
		Name:       "Mono",
		Background: "#000000",
		Surface:    "#1c1c1c",
		Border:     "#585858",
		Text:       "#e4e4e4",
		Muted:      "#8a8a8a",
		Faint:      "#626262",
		Accent:     "#ffffff",
		Success:    "#d0d0d0",
		Warning:    "#bcbcbc",
		Danger:     "#ffffff",
		Info:       "#a8a8a8",
	}
}
