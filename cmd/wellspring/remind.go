package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hyperengineering/wellspring/internal/reminder"
	"github.com/spf13/cobra"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Nudge when today has no check-in",
	Long: `Run a reminder on a cron schedule. Each time it fires, wellspring checks
whether today already has a check-in and prints a nudge if not.

The schedule uses standard 5-field cron syntax in the --tz time zone.

Examples:
  wellspring remind                        # every day at 20:00
  wellspring remind --schedule "0 12,20 * * *"
  wellspring remind --once                 # check now and exit`,
	RunE: runRemind,
}

var (
	remindSchedule string
	remindOnce     bool
)

func init() {
	remindCmd.Flags().StringVar(&remindSchedule, "schedule", reminder.DefaultSchedule, "Cron schedule for reminders")
	remindCmd.Flags().BoolVar(&remindOnce, "once", false, "Check once and exit")
	rootCmd.AddCommand(remindCmd)
}

func resetRemindFlags() {
	remindSchedule = reminder.DefaultSchedule
	remindOnce = false
}

func runRemind(cmd *cobra.Command, args []string) error {
	client, err := openClient()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	out := cmd.OutOrStdout()
	svc := reminder.NewService(remindSchedule, client, client.Location())
	svc.OnNudge = func(n reminder.Nudge) error {
		if outputJSON {
			return outputAsJSON(cmd, n)
		}
		printWarning(out, "%s", n.Message)
		return nil
	}

	if remindOnce {
		n, err := svc.Check(cmd.Context())
		if err != nil {
			return fmt.Errorf("check streak: %w", err)
		}
		if n == nil {
			if outputJSON {
				return outputAsJSON(cmd, struct {
					CheckedIn bool `json:"checked_in"`
				}{true})
			}
			printSuccess(out, "Already checked in today")
			return nil
		}
		return svc.OnNudge(*n)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := svc.Start(ctx); err != nil {
		return err
	}
	if !outputJSON {
		printInfo(out, "Reminders scheduled (%s). Press Ctrl+C to stop.", svc.Schedule())
	}
	<-ctx.Done()
	svc.Stop()
	return nil
}
