package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/hyperengineering/wellspring"
	"github.com/spf13/cobra"
)

var heatmapCmd = &cobra.Command{
	Use:   "heatmap",
	Short: "Show productivity by weekday and hour",
	Long: `Average productivity (0-5, from the Mood Composite) for every weekday
and hour you have checked in, with your peak and low hours.

Example:
  wellspring heatmap
  wellspring heatmap --json`,
	RunE: runHeatmap,
}

func runHeatmap(cmd *cobra.Command, args []string) error {
	client, err := openClient()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	hm, err := client.Heatmap(cmd.Context())
	if err != nil {
		return fmt.Errorf("heatmap: %w", err)
	}

	if outputJSON {
		return outputAsJSON(cmd, hm)
	}

	out := cmd.OutOrStdout()
	if hm.Filled() == 0 {
		printWarning(out, "No check-ins yet.")
		return nil
	}

	fmt.Fprintln(out, renderHeatGrid(&hm))
	fmt.Fprintln(out)
	printInfo(out, "Peak hours:")
	for _, p := range hm.Peaks {
		fmt.Fprintf(out, "  %s %02d:00  %.1f/5 (%d check-ins)\n", p.Weekday, p.Hour, p.Score, p.Count)
	}
	printInfo(out, "Low hours:")
	for _, p := range hm.Lows {
		fmt.Fprintf(out, "  %s %02d:00  %.1f/5 (%d check-ins)\n", p.Weekday, p.Hour, p.Score, p.Count)
	}
	return nil
}

// renderHeatGrid draws one row per weekday and one column per hour.
func renderHeatGrid(hm *wellspring.Heatmap) string {
	var sb strings.Builder
	sb.WriteString("     ")
	for h := 0; h < 24; h += 3 {
		sb.WriteString(fmt.Sprintf("%-3d", h))
	}
	sb.WriteString("\n")
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		sb.WriteString(wd.String()[:3] + "  ")
		for h := 0; h < 24; h++ {
			c := hm.Cell(wd, h)
			sb.WriteString(heatCell(c.Score, c.Count))
		}
		if wd < time.Saturday {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
