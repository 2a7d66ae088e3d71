package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var streakCmd = &cobra.Command{
	Use:   "streak",
	Short: "Show consecutive-day check-in streaks",
	Long: `Show the current and longest runs of days with at least one check-in.

A streak that ended yesterday still counts as current until today is over.

Example:
  wellspring streak
  wellspring streak --tz Europe/Berlin --json`,
	RunE: runStreak,
}

func runStreak(cmd *cobra.Command, args []string) error {
	client, err := openClient()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	st, err := client.Streak(cmd.Context())
	if err != nil {
		return fmt.Errorf("streak: %w", err)
	}

	if outputJSON {
		return outputAsJSON(cmd, st)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Current: %d days\n", st.Current))
	sb.WriteString(fmt.Sprintf("Longest: %d days\n", st.Longest))
	sb.WriteString(fmt.Sprintf("Days logged: %d", st.Days))
	if st.LastEntry != nil {
		sb.WriteString(fmt.Sprintf("\nLast check-in: %s", st.LastEntry.In(client.Location()).Format("Mon Jan 2 15:04")))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderPanel("Streak", sb.String()))
	switch {
	case st.IsActive:
		printSuccess(out, "Checked in today")
	case st.Current > 0:
		printWarning(out, "Check in today to keep your %d-day streak", st.Current)
	}
	return nil
}
