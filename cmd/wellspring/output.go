package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hyperengineering/wellspring"
	"github.com/spf13/cobra"
)

// outputAsJSON writes any value as formatted JSON to the command's stdout.
func outputAsJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputText prints text to the command's stdout.
func outputText(cmd *cobra.Command, format string, args ...interface{}) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

// outputError prints an error to w. Entry validation errors get a panel
// naming the offending field.
func outputError(w io.Writer, err error) {
	var ee *wellspring.EntryError
	if errors.As(err, &ee) {
		fmt.Fprintln(w, renderErrorPanel(
			"Invalid check-in",
			fmt.Sprintf("%s: %s", ee.Field, ee.Message),
			"Mood values are 0 to 5; counts and hours must be non-negative.",
		))
		return
	}
	fmt.Fprintf(w, "Error: %s\n", err)
}

func formatMood(m wellspring.Mood) string {
	return fmt.Sprintf("%.1f %.1f %.1f %.1f", m.Positivity, m.Energy, m.Focus, m.Stress)
}

func formatSigned(v float64, valid bool) string {
	if !valid {
		return "n/a"
	}
	return fmt.Sprintf("%+.2f", v)
}

func shortID(id string) string {
	if len(id) > 10 {
		return id[:10]
	}
	return id
}

// outputScoreLines prints the two composite indices for one check-in.
func outputScoreLines(w io.Writer, s *wellspring.CompositeScore) {
	if s.Mood.Valid {
		printField(w, "Mood composite:", fmt.Sprintf("%+.2f (vs %d check-ins)", s.Mood.Value, s.Mood.Samples))
	} else {
		printField(w, "Mood composite:", "n/a")
		printMuted(w, "  %s", s.Mood.Reason)
	}
	if s.Success.Valid {
		printField(w, "Daily success:", fmt.Sprintf("%+.2f", s.Success.Value))
		printMuted(w, "  learning %+.2f | recovery %+.2f | connection %+.2f",
			s.Success.LearningMomentum.ZScore,
			s.Success.RecoveryIndex.ZScore,
			s.Success.Connection.ZScore)
	} else {
		printField(w, "Daily success:", "n/a")
		printMuted(w, "  %s", s.Success.Reason)
	}
}

func outputEntries(cmd *cobra.Command, entries []wellspring.Entry, loc *time.Location) error {
	if outputJSON {
		if entries == nil {
			entries = []wellspring.Entry{}
		}
		return outputAsJSON(cmd, entries)
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		printWarning(out, "No check-ins found.")
		printMuted(out, "Record one with: wellspring checkin -p 3 -e 3 -f 3 -s 2")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Timestamp.In(loc).Format("2006-01-02 15:04"),
			string(e.TimeOfDay),
			formatMood(e.Mood),
			strings.Join(e.Tags, ","),
			shortID(e.ID),
		})
	}
	printInfo(out, "Check-ins (%d):", len(entries))
	fmt.Fprintln(out, renderTable([]string{"WHEN", "TIME OF DAY", "P E F S", "TAGS", "ID"}, rows))
	return nil
}

func outputTips(cmd *cobra.Command, tips []wellspring.SessionTip) error {
	if outputJSON {
		if tips == nil {
			tips = []wellspring.SessionTip{}
		}
		return outputAsJSON(cmd, tips)
	}

	out := cmd.OutOrStdout()
	if len(tips) == 0 {
		printWarning(out, "No tips match right now.")
		return nil
	}

	for i, t := range tips {
		marker := ""
		if t.Favorited {
			marker = " ★"
		}
		printInfo(out, "[%s] %s%s", t.Ref, t.Tip.Title, marker)
		printMuted(out, "    %s priority | %d min | score %d", t.Tip.Priority, t.Tip.DurationMinutes, t.Score)
		fmt.Fprintln(out, indent(renderMarkdown(t.Tip.Action), "    "))
		if len(t.Matched) > 0 {
			conds := make([]string, len(t.Matched))
			for j, c := range t.Matched {
				conds[j] = c.String()
			}
			printMuted(out, "    because %s", strings.Join(conds, ", "))
		}
		if i < len(tips)-1 {
			fmt.Fprintln(out)
		}
	}
	return nil
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}

// formatRelativeTime formats a time as a relative string (e.g., "2h ago")
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return fmt.Sprintf("%dw ago", int(d.Hours()/24/7))
	}
}

// formatBytes formats a byte count as a human-readable string.
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
