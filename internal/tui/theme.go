package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme/palette helpers.
//
// The viewer must stay readable on both light and dark terminal backgrounds,
// so colors are adaptive and "faint" styling only applies on dark terminals
// (faint text on light backgrounds often becomes illegible).

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted    lipgloss.TerminalColor = ac("240", "243")
	colorAxisFg   lipgloss.TerminalColor = ac("240", "245")
	colorRowLabel lipgloss.TerminalColor = ac("235", "252")

	// Event bar palette, keyed by the event's configured color name.
	barPalette = map[string]lipgloss.AdaptiveColor{
		"blue":   ac("27", "33"),
		"green":  ac("28", "40"),
		"teal":   ac("30", "44"),
		"orange": ac("166", "214"),
		"purple": ac("91", "135"),
		"red":    ac("124", "203"),
	}
	barDefault = ac("239", "250")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleAxis() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorAxisFg)
}

func styleRowLabel() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorRowLabel).Bold(true)
}

func styleBar(color string) lipgloss.Style {
	c, ok := barPalette[color]
	if !ok {
		c = barDefault
	}
	return lipgloss.NewStyle().Foreground(c)
}

// styleBarBlock colors a run of bar cells. Bars are background-filled so the
// event name reads as text over the bar.
func styleBarBlock(color string) lipgloss.Style {
	c, ok := barPalette[color]
	if !ok {
		c = barDefault
	}
	return lipgloss.NewStyle().Background(c).Foreground(ac("255", "235"))
}

// applyColorProfilePreference sets Lip Gloss's color profile for the
// interactive viewer. Only NO_COLOR is honored explicitly; otherwise we
// follow the terminal's capabilities, trusting COLORTERM/TERM when they
// report more than the detector found.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	profile := termenv.ColorProfile()
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") {
		if profile == termenv.Ascii || profile == termenv.ANSI {
			profile = termenv.ANSI256
		}
	}
	lipgloss.SetColorProfile(profile)
}
