package main

import (
	"text/template"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// Top-level command groups, in help order.
const (
	groupTrack   = "track"
	groupInsight = "insight"
	groupData    = "data"
)

var (
	helpSectionStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	helpNameStyle    = lipgloss.NewStyle().Foreground(colorPrimaryLight)
)

// styledIfTTY wraps a style so piped help stays plain text.
func styledIfTTY(style lipgloss.Style) func(string) string {
	return func(s string) string {
		if !isTTY() {
			return s
		}
		return style.Render(s)
	}
}

var helpFuncs = template.FuncMap{
	"section": styledIfTTY(helpSectionStyle),
	"name":    styledIfTTY(helpNameStyle),
	"dim":     styledIfTTY(mutedStyle),
}

// The command list is grouped when the command defines groups (the root
// does) and flat otherwise.
const helpTemplate = `{{with .Long}}{{. | trimTrailingWhitespaces}}

{{end}}{{if or .Runnable .HasSubCommands}}{{section "Usage:"}}
  {{name .CommandPath}}{{if .HasAvailableSubCommands}} {{dim "<command>"}}{{end}}{{if .HasAvailableFlags}} {{dim "[flags]"}}{{end}}

{{end}}{{if .HasExample}}{{section "Examples:"}}
{{.Example | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableSubCommands}}{{$cmds := .Commands}}{{if eq (len .Groups) 0}}{{section "Commands:"}}
{{range $cmds}}{{if .IsAvailableCommand}}  {{name (rpad .Name .NamePadding)}} {{.Short}}
{{end}}{{end}}
{{else}}{{range $g := .Groups}}{{section $g.Title}}
{{range $cmds}}{{if and (eq .GroupID $g.ID) .IsAvailableCommand}}  {{name (rpad .Name .NamePadding)}} {{.Short}}
{{end}}{{end}}
{{end}}{{if not .AllChildCommandsHaveGroup}}{{section "Other:"}}
{{range $cmds}}{{if and (eq .GroupID "") .IsAvailableCommand}}  {{name (rpad .Name .NamePadding)}} {{.Short}}
{{end}}{{end}}
{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}{{section "Flags:"}}
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableInheritedFlags}}{{section "Global Flags:"}}
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableSubCommands}}{{dim "Run"}} {{name (printf "%s <command> --help" .CommandPath)}} {{dim "for details on a command."}}
{{end}}`

// initHelp registers the template functions and applies the help template
// to cmd and all of its descendants. Run it once every command is added.
func initHelp(cmd *cobra.Command) {
	for k, fn := range helpFuncs {
		cobra.AddTemplateFunc(k, fn)
	}
	var apply func(*cobra.Command)
	apply = func(c *cobra.Command) {
		c.SetHelpTemplate(helpTemplate)
		for _, sub := range c.Commands() {
			apply(sub)
		}
	}
	apply(cmd)
}
