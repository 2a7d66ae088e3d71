package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hyperengineering/wellspring"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show profile statistics",
	Long: `Display statistics about the active profile's check-in database.

Example:
  wellspring stats
  wellspring stats --health`,
	RunE: runStats,
}

var statsHealth bool

func init() {
	statsCmd.Flags().BoolVar(&statsHealth, "health", false, "Include health check")
}

// StatsResult for JSON output.
type StatsResult struct {
	Profile string                   `json:"profile"`
	Path    string                   `json:"path"`
	Stats   *wellspring.StoreStats   `json:"stats"`
	Health  *wellspring.HealthStatus `json:"health,omitempty"`
}

func runStats(cmd *cobra.Command, args []string) error {
	client, err := openClient()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	stats, err := client.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	var health *wellspring.HealthStatus
	if statsHealth {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		h := client.HealthCheck(ctx)
		health = &h
	}

	if outputJSON {
		return outputAsJSON(cmd, StatsResult{
			Profile: client.Profile(),
			Path:    client.Store().Path(),
			Stats:   stats,
			Health:  health,
		})
	}

	out := cmd.OutOrStdout()
	var b strings.Builder
	fmt.Fprintf(&b, "Profile:        %s\n", client.Profile())
	fmt.Fprintf(&b, "Check-ins:      %d\n", stats.EntryCount)
	fmt.Fprintf(&b, "Distinct tags:  %d\n", stats.TagCount)
	fmt.Fprintf(&b, "Schema version: %s\n", stats.SchemaVersion)
	if stats.EntryCount > 0 {
		fmt.Fprintf(&b, "First:          %s\n", stats.FirstEntry.In(client.Location()).Format("2006-01-02 15:04"))
		fmt.Fprintf(&b, "Last:           %s (%s)", stats.LastEntry.In(client.Location()).Format("2006-01-02 15:04"), formatRelativeTime(stats.LastEntry))
	} else {
		b.WriteString("Last:           never")
	}
	fmt.Fprintln(out, renderPanel("Profile Statistics", b.String()))

	if health != nil {
		fmt.Fprintln(out)
		if health.Healthy {
			printSuccess(out, "Healthy")
		} else {
			printError(out, "Unhealthy")
		}
		fmt.Fprintf(out, "  Store OK: %v\n", health.StoreOK)
		if health.Error != "" {
			fmt.Fprintf(out, "  Error:    %s\n", health.Error)
		}
	}
	return nil
}
