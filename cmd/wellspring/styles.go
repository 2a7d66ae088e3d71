package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"
)

// Brand color palette
var (
	// Primary brand colors (spring teal)
	colorPrimary      = lipgloss.Color("#2BA8A0") // Spring Teal - main brand
	colorPrimaryLight = lipgloss.Color("#5CCFC7") // Light Teal - highlights
	colorPrimaryDark  = lipgloss.Color("#1E7A74") // Dark Teal - active states

	// Neutral colors
	colorText  = lipgloss.Color("#F2F3F3")
	colorMuted = lipgloss.Color("240")

	// State colors
	colorSuccess = lipgloss.Color("#22C55E")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
)

// Styles
var (
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(colorPrimary)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	labelStyle   = lipgloss.NewStyle().Foreground(colorPrimaryLight).Bold(true)
	valueStyle   = lipgloss.NewStyle().Foreground(colorText)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimaryDark).
			Padding(0, 1)
	panelTitleStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	errorPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorError).
			Padding(0, 1)
	tableHeaderStyle = lipgloss.NewStyle().Foreground(colorPrimaryLight).Bold(true).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// Icons
const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "⚠"
	iconInfo    = "●"
)

// Tests override TTY detection through testIsTTYOverride.
var (
	testIsTTYMutex    sync.Mutex
	testIsTTYOverride *bool
)

// isTTY returns true if stdout is a terminal
func isTTY() bool {
	testIsTTYMutex.Lock()
	override := testIsTTYOverride
	testIsTTYMutex.Unlock()
	if override != nil {
		return *override
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// printStyled prints a message with an icon, applying style only in TTY mode
func printStyled(w io.Writer, icon string, style lipgloss.Style, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if isTTY() {
		fmt.Fprintf(w, "%s %s\n", style.Render(icon), msg)
	} else {
		fmt.Fprintf(w, "%s %s\n", icon, msg)
	}
}

func printSuccess(w io.Writer, format string, args ...interface{}) {
	printStyled(w, iconSuccess, successStyle, format, args...)
}

func printError(w io.Writer, format string, args ...interface{}) {
	printStyled(w, iconError, errorStyle, format, args...)
}

func printWarning(w io.Writer, format string, args ...interface{}) {
	printStyled(w, iconWarning, warningStyle, format, args...)
}

func printInfo(w io.Writer, format string, args ...interface{}) {
	printStyled(w, iconInfo, infoStyle, format, args...)
}

// printMuted prints muted/secondary text
func printMuted(w io.Writer, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if isTTY() {
		fmt.Fprintln(w, mutedStyle.Render(msg))
	} else {
		fmt.Fprintln(w, msg)
	}
}

// printField prints "label value" with the label styled.
func printField(w io.Writer, label, value string) {
	if isTTY() {
		fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(label), valueStyle.Render(value))
	} else {
		fmt.Fprintf(w, "  %s %s\n", label, value)
	}
}

// renderTable renders rows under headers. TTY output gets rounded borders;
// otherwise columns are padded plain text.
func renderTable(headers []string, rows [][]string) string {
	if !isTTY() {
		return renderPlainTable(headers, rows)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorPrimaryDark)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		})
	for _, r := range rows {
		t.Row(r...)
	}
	return t.String()
}

func renderPlainTable(headers []string, rows [][]string) string {
	cols := len(headers)
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	widths := make([]int, cols)
	measure := func(r []string) {
		for i, c := range r {
			if n := lipgloss.Width(c); n > widths[i] {
				widths[i] = n
			}
		}
	}
	measure(headers)
	for _, r := range rows {
		measure(r)
	}

	var sb strings.Builder
	writeRow := func(r []string) {
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(r) {
				cell = r[i]
			}
			if i == cols-1 {
				sb.WriteString(cell)
			} else {
				sb.WriteString(cell + strings.Repeat(" ", widths[i]-lipgloss.Width(cell)+2))
			}
		}
		sb.WriteString("\n")
	}
	if len(headers) > 0 {
		writeRow(headers)
	}
	for _, r := range rows {
		writeRow(r)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// renderPanel renders content in a bordered box with an optional title.
func renderPanel(title, content string) string {
	content = strings.TrimRight(content, "\n")
	if !isTTY() {
		if title == "" {
			return content
		}
		return title + "\n" + content
	}
	body := content
	if title != "" {
		body = panelTitleStyle.Render(title) + "\n" + content
	}
	return panelStyle.Render(body)
}

// renderErrorPanel renders an error with optional context and suggestion.
func renderErrorPanel(msg, context, suggestion string) string {
	var sb strings.Builder
	sb.WriteString(msg)
	if context != "" {
		sb.WriteString("\n\nContext: " + context)
	}
	if suggestion != "" {
		sb.WriteString("\nSuggestion: " + suggestion)
	}
	if !isTTY() {
		return sb.String()
	}
	return errorPanelStyle.Render(errorStyle.Render(iconError+" ") + sb.String())
}

// renderMarkdown renders markdown content with glamour
func renderMarkdown(content string) string {
	if !isTTY() || !hasMarkdown(content) {
		return content
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return content
	}

	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimSpace(rendered)
}

// hasMarkdown checks if content contains markdown-like syntax
// Ordered from most specific to least to reduce false positives
func hasMarkdown(content string) bool {
	markers := []string{
		"```",
		"## ",
		"# ",
		"**",
		"| ",
		"1. ",
		"- ",
		"* ",
		"](http",
		"`",
	}
	for _, marker := range markers {
		if strings.Contains(content, marker) {
			return true
		}
	}
	return false
}

// heatShades maps a 0-5 productivity score onto a block character.
var heatShades = []string{"·", "░", "▒", "▓", "█"}

var heatStyles = []lipgloss.Style{
	lipgloss.NewStyle().Foreground(colorMuted),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#3B6E6A")),
	lipgloss.NewStyle().Foreground(colorPrimaryDark),
	lipgloss.NewStyle().Foreground(colorPrimary),
	lipgloss.NewStyle().Foreground(colorPrimaryLight),
}

// heatCell renders one heatmap cell; count 0 renders as blank.
func heatCell(score float64, count int) string {
	if count == 0 {
		return " "
	}
	i := int(score / 5 * float64(len(heatShades)))
	if i >= len(heatShades) {
		i = len(heatShades) - 1
	}
	if i < 0 {
		i = 0
	}
	if isTTY() {
		return heatStyles[i].Render(heatShades[i])
	}
	return heatShades[i]
}
