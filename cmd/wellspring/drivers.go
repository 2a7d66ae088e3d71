package main

import (
	"fmt"

	"github.com/hyperengineering/wellspring"
	"github.com/spf13/cobra"
)

var driversCmd = &cobra.Command{
	Use:   "drivers",
	Short: "Show which activities move your mood",
	Long: `Rank tags by how much your Mood Composite and Daily Success Score
differ on days with and without them, over the last 28 days.

Example:
  wellspring drivers
  wellspring drivers --tag exercise --json`,
	RunE: runDrivers,
}

var driversTag string

func init() {
	driversCmd.Flags().StringVar(&driversTag, "tag", "", "Only show this tag")
}

func runDrivers(cmd *cobra.Command, args []string) error {
	client, err := openClient()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	records, err := client.Drivers(cmd.Context())
	if err != nil {
		return fmt.Errorf("analyze drivers: %w", err)
	}
	if driversTag != "" {
		rec, ok := wellspring.DriversForTag(records, driversTag)
		records = nil
		if ok {
			records = []wellspring.DriverRecord{rec}
		}
	}

	if outputJSON {
		if records == nil {
			records = []wellspring.DriverRecord{}
		}
		return outputAsJSON(cmd, records)
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		printWarning(out, "No drivers yet.")
		printMuted(out, "Tags need at least %d check-ins with them and without them in the window.", wellspring.DefaultDriverMinOccurrences)
		return nil
	}

	rows := make([][]string, 0, len(records))
	for _, d := range records {
		rows = append(rows, []string{
			d.Tag,
			string(d.Effect),
			fmt.Sprintf("%+.2f", d.MoodImpact),
			fmt.Sprintf("%+.2f", d.SuccessImpact),
			string(d.Confidence),
			fmt.Sprintf("%d/%d", d.WithCount, d.WithoutCount),
		})
	}
	printInfo(out, "Drivers (%d tags):", len(records))
	fmt.Fprintln(out, renderTable([]string{"TAG", "EFFECT", "MOOD Δ", "SUCCESS Δ", "CONFIDENCE", "WITH/WITHOUT"}, rows))
	return nil
}
