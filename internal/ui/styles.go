package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
// - Default (white/black): primary text
// - Accent (terracotta #D08770): highlights, paths, collection names
// - Muted (gray): secondary info, hints
// - No colored success/error symbols, unicode markers only

const defaultAccent = "#D08770"

var (
	accentColor = defaultAccent

	// Accent style for file paths and collection references
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(defaultAccent))

	// Muted style for secondary info and hints
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))

	// Bold style for emphasis
	Bold = lipgloss.NewStyle().Bold(true)

	// AccentBold combines accent color with bold
	AccentBold = lipgloss.NewStyle().Foreground(lipgloss.Color(defaultAccent)).Bold(true)
)

// ConfigureTheme applies the user's accent color preference. An empty value
// keeps the built-in accent; "none", "off", or "default" disable it.
func ConfigureTheme(accent string) {
	if strings.TrimSpace(accent) == "" {
		return
	}
	if color, ok := normalizeAccentColor(accent); ok {
		accentColor = color
		Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(color))
		AccentBold = lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
		return
	}
	accentColor = ""
	Accent = lipgloss.NewStyle()
	AccentBold = lipgloss.NewStyle().Bold(true)
}

// AccentColor reports the active accent color, if one is configured.
func AccentColor() (string, bool) {
	if accentColor == "" {
		return "", false
	}
	return accentColor, true
}

// normalizeAccentColor accepts ANSI 256 codes ("39") and hex colors
// ("#7aa2f7", "#abc") and rejects everything else.
func normalizeAccentColor(value string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch v {
	case "", "none", "off", "default":
		return "", false
	}

	if strings.HasPrefix(v, "#") {
		hex := v[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) != 6 {
			return "", false
		}
		for i := 0; i < len(hex); i++ {
			c := hex[i]
			if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
				return "", false
			}
		}
		return "#" + hex, true
	}

	n, err := strconv.Atoi(v)
	if err != nil || n < 0 || n > 255 {
		return "", false
	}
	return strconv.Itoa(n), true
}
