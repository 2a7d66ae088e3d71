package mcp

import (
	"fmt"
	"strings"
	"time"

	"github.com/hyperengineering/wellspring"
)

func formatCheckIn(res *wellspring.CheckInResult) string {
	var sb strings.Builder
	e := res.Entry

	sb.WriteString(fmt.Sprintf("Checked in: %s\n", e.ID))
	sb.WriteString(fmt.Sprintf("Time: %s (%s)\n", e.Timestamp.Format("2006-01-02 15:04"), e.TimeOfDay))
	sb.WriteString(fmt.Sprintf("Mood: positivity %.1f, energy %.1f, focus %.1f, stress %.1f\n",
		e.Mood.Positivity, e.Mood.Energy, e.Mood.Focus, e.Mood.Stress))
	if len(e.Tags) > 0 {
		sb.WriteString(fmt.Sprintf("Tags: %s\n", strings.Join(e.Tags, ", ")))
	}
	sb.WriteString("\n")
	writeScore(&sb, &res.Score)
	return sb.String()
}

func writeScore(sb *strings.Builder, s *wellspring.CompositeScore) {
	if s.Mood.Valid {
		sb.WriteString(fmt.Sprintf("Mood Composite: %+.2f (vs %d check-ins)\n", s.Mood.Value, s.Mood.Samples))
	} else {
		sb.WriteString(fmt.Sprintf("Mood Composite: n/a, %s\n", s.Mood.Reason))
	}
	if s.Success.Valid {
		sb.WriteString(fmt.Sprintf("Daily Success: %+.2f (learning %+.2f, recovery %+.2f, connection %+.2f)\n",
			s.Success.Value,
			s.Success.LearningMomentum.ZScore,
			s.Success.RecoveryIndex.ZScore,
			s.Success.Connection.ZScore))
	} else {
		sb.WriteString(fmt.Sprintf("Daily Success: n/a, %s\n", s.Success.Reason))
	}
}

func formatScores(scores []wellspring.CompositeScore) string {
	if len(scores) == 0 {
		return "No check-ins yet."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Scores for %d check-ins:\n\n", len(scores)))
	for i := range scores {
		s := &scores[i]
		sb.WriteString(fmt.Sprintf("[%s] %s\n", s.EntryID, s.TimeOfDay))
		sb.WriteString("  ")
		if s.Mood.Valid {
			sb.WriteString(fmt.Sprintf("mood %+.2f", s.Mood.Value))
		} else {
			sb.WriteString("mood n/a")
		}
		sb.WriteString(" | ")
		if s.Success.Valid {
			sb.WriteString(fmt.Sprintf("success %+.2f", s.Success.Value))
		} else {
			sb.WriteString("success n/a")
		}
		sb.WriteString("\n")
		if !s.Mood.Valid {
			sb.WriteString(fmt.Sprintf("  %s\n", s.Mood.Reason))
		}
	}
	return sb.String()
}

func formatStreak(st wellspring.Streak) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Current streak: %d days", st.Current))
	switch {
	case st.IsActive:
		sb.WriteString(" (checked in today)")
	case st.Current > 0:
		sb.WriteString(" (check in today to keep it)")
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Longest streak: %d days\n", st.Longest))
	if st.LastEntry != nil {
		sb.WriteString(fmt.Sprintf("Last check-in: %s\n", st.LastEntry.Format("2006-01-02 15:04")))
	}
	sb.WriteString(fmt.Sprintf("Days logged: %d\n", st.Days))
	return sb.String()
}

func formatDrivers(records []wellspring.DriverRecord) string {
	if len(records) == 0 {
		return fmt.Sprintf("No drivers yet. Tags need at least %d check-ins with and without them.", wellspring.DefaultDriverMinOccurrences)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Drivers (%d tags):\n\n", len(records)))
	for _, d := range records {
		sb.WriteString(fmt.Sprintf("  %-20s %-8s mood %+.2f | success %+.2f | %s confidence\n",
			d.Tag, d.Effect, d.MoodImpact, d.SuccessImpact, d.Confidence))
		sb.WriteString(fmt.Sprintf("    %d with, %d without\n", d.WithCount, d.WithoutCount))
	}
	return sb.String()
}

func formatHeatmap(hm wellspring.Heatmap) string {
	if hm.Filled() == 0 {
		return "No check-ins yet."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Heatmap: %d of 168 hours filled\n\n", hm.Filled()))
	sb.WriteString("Peaks:\n")
	for _, p := range hm.Peaks {
		sb.WriteString(fmt.Sprintf("  %s %02d:00  %.1f/5 (%d check-ins)\n", p.Weekday, p.Hour, p.Score, p.Count))
	}
	sb.WriteString("\nLows:\n")
	for _, p := range hm.Lows {
		sb.WriteString(fmt.Sprintf("  %s %02d:00  %.1f/5 (%d check-ins)\n", p.Weekday, p.Hour, p.Score, p.Count))
	}
	return sb.String()
}

func formatTips(tips []wellspring.SessionTip) string {
	if len(tips) == 0 {
		return "No tips match right now."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Tips (%d):\n\n", len(tips)))
	for _, t := range tips {
		sb.WriteString(fmt.Sprintf("[%s] %s (%s, %d min, score %d)\n",
			t.Ref, t.Tip.Title, t.Tip.Priority, t.Tip.DurationMinutes, t.Score))
		sb.WriteString(fmt.Sprintf("  %s\n", truncate(t.Tip.Action, 200)))
		if t.Favorited {
			sb.WriteString("  ★ favorite\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatRelativeTime formats a timestamp as relative time (e.g., "2h ago").
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	duration := time.Since(t)
	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		return fmt.Sprintf("%dm ago", int(duration.Minutes()))
	case duration < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(duration.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(duration.Hours()/24))
	}
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
