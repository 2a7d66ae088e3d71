package main

import (
	"fmt"

	"github.com/hyperengineering/wellspring"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show a full wellness report",
	Long: `Combine today's scores, streak, drivers, power hours, and suggestions
into one report, rendered as markdown in a terminal.

Example:
  wellspring report
  wellspring report --tips 5 --json`,
	RunE: runReport,
}

var reportTips int

func init() {
	reportCmd.Flags().IntVar(&reportTips, "tips", wellspring.DefaultMaxTips, "Number of suggestions")
}

func runReport(cmd *cobra.Command, args []string) error {
	client, err := openClient()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	var report *wellspring.Report
	err = runWithSpinner(cmd.ErrOrStderr(), "Analyzing check-ins", func() error {
		var rerr error
		report, rerr = client.Report(cmd.Context(), reportTips)
		return rerr
	})
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}

	if outputJSON {
		return outputAsJSON(cmd, report)
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderMarkdown(report.Markdown()))
	return nil
}
