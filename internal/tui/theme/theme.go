// Package theme defines color themes for the rupee dashboard.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines the color roles used throughout the TUI.
type Theme struct {
	Name          string
	Background    lipgloss.Color // Main app background
	Surface       lipgloss.Color // Card/panel backgrounds
	SurfaceHover  lipgloss.Color // Highlighted surface (active tab, selected row)
	SurfaceBright lipgloss.Color // Extra bright surface for emphasis
	Border        lipgloss.Color // Subtle borders
	BorderBright  lipgloss.Color // Prominent borders (cards, focus)
	BorderAccent  lipgloss.Color // Accent-colored borders for focus states
	TextDim       lipgloss.Color // Lowest contrast text (hints, disabled)
	TextMuted     lipgloss.Color // Secondary text (labels, metadata)
	TextPrimary   lipgloss.Color // Primary content text
	Accent        lipgloss.Color // Primary accent (links, active states)
	AccentBright  lipgloss.Color // Brighter accent for emphasis
	AccentDim     lipgloss.Color // Dimmed accent for backgrounds
	Green         lipgloss.Color
	GreenBright   lipgloss.Color
	Orange        lipgloss.Color
	Red           lipgloss.Color
	Blue          lipgloss.Color
	BlueBright    lipgloss.Color
	Yellow        lipgloss.Color
	Magenta       lipgloss.Color
	Cyan          lipgloss.Color
}

// Active is the currently selected theme.
var Active = FlexokiDark

// FlexokiDark is the default theme - warm, paper-inspired dark theme.
var FlexokiDark = Theme{
	Name:          "flexoki-dark",
	Background:    lipgloss.Color("#100F0F"),
	Surface:       lipgloss.Color("#1C1B1A"),
	SurfaceHover:  lipgloss.Color("#282726"),
	SurfaceBright: lipgloss.Color("#343331"),
	Border:        lipgloss.Color("#403E3C"),
	BorderBright:  lipgloss.Color("#575653"),
	BorderAccent:  lipgloss.Color("#3AA99F"),
	TextDim:       lipgloss.Color("#575653"),
	TextMuted:     lipgloss.Color("#878580"),
	TextPrimary:   lipgloss.Color("#FFFCF0"),
	Accent:        lipgloss.Color("#3AA99F"),
	AccentBright:  lipgloss.Color("#5BC8BE"),
	AccentDim:     lipgloss.Color("#1A3533"),
	Green:         lipgloss.Color("#879A39"),
	GreenBright:   lipgloss.Color("#A3B859"),
	Orange:        lipgloss.Color("#DA702C"),
	Red:           lipgloss.Color("#D14D41"),
	Blue:          lipgloss.Color("#4385BE"),
	BlueBright:    lipgloss.Color("#6BA3D6"),
	Yellow:        lipgloss.Color("#D0A215"),
	Magenta:       lipgloss.Color("#CE5D97"),
	Cyan:          lipgloss.Color("#24837B"),
}

// Saffron is a warm light-on-dark theme built around saffron, white and green.
var Saffron = Theme{
	Name:          "saffron",
	Background:    lipgloss.Color("#14120F"),
	Surface:       lipgloss.Color("#1F1B16"),
	SurfaceHover:  lipgloss.Color("#2C261F"),
	SurfaceBright: lipgloss.Color("#3A3229"),
	Border:        lipgloss.Color("#4A4035"),
	BorderBright:  lipgloss.Color("#6B5D4D"),
	BorderAccent:  lipgloss.Color("#FF9933"),
	TextDim:       lipgloss.Color("#6B5D4D"),
	TextMuted:     lipgloss.Color("#A89880"),
	TextPrimary:   lipgloss.Color("#FAF5EB"),
	Accent:        lipgloss.Color("#FF9933"),
	AccentBright:  lipgloss.Color("#FFB866"),
	AccentDim:     lipgloss.Color("#3D2A14"),
	Green:         lipgloss.Color("#3FA34D"),
	GreenBright:   lipgloss.Color("#6BC777"),
	Orange:        lipgloss.Color("#E8772E"),
	Red:           lipgloss.Color("#E0473E"),
	Blue:          lipgloss.Color("#3B6FB6"),
	BlueBright:    lipgloss.Color("#6A95D1"),
	Yellow:        lipgloss.Color("#E5B532"),
	Magenta:       lipgloss.Color("#C25B9C"),
	Cyan:          lipgloss.Color("#2F9C95"),
}

// Terminal uses ANSI 16 colors only - maximum compatibility.
var Terminal = Theme{
	Name:          "terminal",
	Background:    lipgloss.Color("0"),
	Surface:       lipgloss.Color("0"),
	SurfaceHover:  lipgloss.Color("8"),
	SurfaceBright: lipgloss.Color("8"),
	Border:        lipgloss.Color("8"),
	BorderBright:  lipgloss.Color("7"),
	BorderAccent:  lipgloss.Color("6"),
	TextDim:       lipgloss.Color("8"),
	TextMuted:     lipgloss.Color("7"),
	TextPrimary:   lipgloss.Color("15"),
	Accent:        lipgloss.Color("6"),
	AccentBright:  lipgloss.Color("14"),
	AccentDim:     lipgloss.Color("0"),
	Green:         lipgloss.Color("2"),
	GreenBright:   lipgloss.Color("10"),
	Orange:        lipgloss.Color("3"),
	Red:           lipgloss.Color("1"),
	Blue:          lipgloss.Color("4"),
	BlueBright:    lipgloss.Color("12"),
	Yellow:        lipgloss.Color("3"),
	Magenta:       lipgloss.Color("5"),
	Cyan:          lipgloss.Color("6"),
}

// All available themes.
var All = []Theme{FlexokiDark, Saffron, Terminal}

// ByName returns a theme by its name, defaulting to FlexokiDark.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}

// Names lists the theme names in display order.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}

// ForUsage picks a color for a 0-100 budget usage level.
func (t Theme) ForUsage(pct float64) lipgloss.Color {
	switch {
	case pct >= 100:
		return t.Red
	case pct >= 80:
		return t.Orange
	case pct >= 60:
		return t.Yellow
	default:
		return t.Green
	}
}

// ForKind picks a color for a notification kind.
func (t Theme) ForKind(kind string) lipgloss.Color {
	switch kind {
	case "error":
		return t.Red
	case "warning":
		return t.Orange
	case "success":
		return t.Green
	default:
		return t.Blue
	}
}

// ForSign colors money in green and money out in red.
func (t Theme) ForSign(v float64) lipgloss.Color {
	if v < 0 {
		return t.Red
	}
	return t.Green
}
