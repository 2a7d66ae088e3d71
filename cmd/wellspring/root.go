package main

import (
	"fmt"

	"github.com/hyperengineering/wellspring"
	"github.com/spf13/cobra"
)

var (
	cfgDBPath  string
	cfgProfile string
	cfgTZ      string
	cfgDebug   bool
	outputJSON bool
)

var rootCmd = &cobra.Command{
	Use:   "wellspring",
	Short: "Wellspring - personal wellness check-ins and insights",
	Long: `Wellspring records short mood check-ins and turns them into personal insight.

Each check-in rates positivity, energy, focus, and stress from 0 to 5, with
optional activity tags and daily metrics. Wellspring scores every check-in
against your own baseline, tracks streaks, finds the activities that move
your mood, maps your productive hours, and suggests small next steps.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		if isTTY() {
			fmt.Fprintln(out, renderBannerWithTagline())
			fmt.Fprintln(out)
		}
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDBPath, "db-path", "", "Path to the SQLite database (default: profile database)")
	rootCmd.PersistentFlags().StringVar(&cfgProfile, "profile", "", "Profile to use (default: $WELLSPRING_PROFILE or 'default')")
	rootCmd.PersistentFlags().StringVar(&cfgTZ, "tz", "", "IANA time zone for calendar days (default: $WELLSPRING_TZ or local)")
	rootCmd.PersistentFlags().BoolVar(&cfgDebug, "debug", false, "Write debug logs to stderr")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output as JSON")

	rootCmd.AddGroup(
		&cobra.Group{ID: groupTrack, Title: "Check in:"},
		&cobra.Group{ID: groupInsight, Title: "Insights:"},
		&cobra.Group{ID: groupData, Title: "Data and profiles:"},
	)
	setGroup(groupTrack, checkinCmd, entriesCmd, tipsCmd, remindCmd)
	setGroup(groupInsight, scoresCmd, streakCmd, driversCmd, heatmapCmd, reportCmd)
	setGroup(groupData, exportCmd, importCmd, statsCmd, profileCmd, mcpCmd, versionCmd)

	rootCmd.AddCommand(checkinCmd)
	rootCmd.AddCommand(entriesCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(streakCmd)
	rootCmd.AddCommand(driversCmd)
	rootCmd.AddCommand(heatmapCmd)
	rootCmd.AddCommand(tipsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(profileCmd)
}

func setGroup(id string, cmds ...*cobra.Command) {
	for _, c := range cmds {
		c.GroupID = id
	}
}

// loadConfig merges environment configuration with command-line flags.
// Flags take precedence.
func loadConfig() wellspring.Config {
	cfg := wellspring.ConfigFromEnv()

	if cfgDBPath != "" {
		cfg.LocalPath = cfgDBPath
	}
	if cfgProfile != "" {
		cfg.Profile = cfgProfile
		if cfgDBPath == "" {
			// An explicit profile wins over WELLSPRING_DB_PATH.
			cfg.LocalPath = ""
		}
	}
	if cfgTZ != "" {
		cfg.Location = cfgTZ
	}
	if cfgDebug {
		cfg.Debug = true
	}
	return cfg
}

// openClient creates a client from the merged configuration.
func openClient() (*wellspring.Client, error) {
	client, err := wellspring.New(loadConfig())
	if err != nil {
		return nil, fmt.Errorf("initialize client: %w", err)
	}
	return client, nil
}

// resetFlags restores every flag variable to its default. Cobra does not
// reset flag values between Execute calls in the same process.
func resetFlags() {
	cfgDBPath, cfgProfile, cfgTZ = "", "", ""
	cfgDebug, outputJSON = false, false

	resetCheckinFlags()
	resetEntriesFlags()
	resetScoresFlags()
	resetImportFlags()
	resetProfileFlags()
	resetRemindFlags()
	driversTag = ""
	tipsMax = wellspring.DefaultMaxTips
	reportTips = wellspring.DefaultMaxTips
	exportOutputPath, exportFormat = "", ""
	statsHealth = false
}
