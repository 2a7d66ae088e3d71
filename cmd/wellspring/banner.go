package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	bannerDimStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	bannerDropStyle    = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	bannerRippleStyle  = lipgloss.NewStyle().Foreground(colorPrimaryLight)
	bannerTitleStyle   = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	bannerTaglineStyle = lipgloss.NewStyle().Foreground(colorPrimaryDark).Italic(true)
	bannerVersionStyle = lipgloss.NewStyle().Foreground(colorMuted)
)

// renderBanner draws a drop falling into rippling water.
func renderBanner() string {
	drop := bannerDropStyle.Render("💧")
	ripple := bannerRippleStyle.Render("~")
	dot := bannerDimStyle.Render("·")
	title := bannerTitleStyle.Render("WELLSPRING")

	wave := func(n int) string {
		parts := make([]string, n)
		for i := range parts {
			parts[i] = ripple
		}
		return strings.Join(parts, " ")
	}

	lines := []string{
		"           " + drop,
		"       " + dot + "   " + wave(3) + "   " + dot,
		"    " + dot + "  " + title + "  " + dot,
		"       " + dot + " " + wave(5) + " " + dot,
	}
	return strings.Join(lines, "\n")
}

func renderBannerWithTagline() string {
	tagline := bannerTaglineStyle.Render("    know what fills your cup")
	ver := bannerVersionStyle.Render("           " + version)
	return strings.Join([]string{renderBanner(), tagline, ver}, "\n")
}
