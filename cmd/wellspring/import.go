package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hyperengineering/wellspring"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import check-ins from a file",
	Long: `Import check-ins into the active profile from a JSON or CSV file.

Merge strategies for check-ins that already exist (by id):
  skip    - keep the existing check-in
  replace - overwrite it with the imported version
  merge   - keep it, adding imported tags and missing metrics (default)

CSV files need at least timestamp, positivity, energy, focus, and stress
columns; other columns from 'wellspring export' are optional.

Examples:
  wellspring import -i backup.json
  wellspring import -i checkins.csv --merge-strategy skip
  wellspring import -i backup.json --dry-run`,
	RunE: runImport,
}

var (
	importInputPath     string
	importMergeStrategy string
	importDryRun        bool
	importFormat        string
)

func init() {
	importCmd.Flags().StringVarP(&importInputPath, "input", "i", "", "Input file path (required)")
	importCmd.Flags().StringVar(&importMergeStrategy, "merge-strategy", "merge", "Merge strategy: skip, replace, merge")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Preview import without making changes")
	importCmd.Flags().StringVar(&importFormat, "format", "", "Override format detection: json, csv")
}

func resetImportFlags() {
	importInputPath, importFormat = "", ""
	importMergeStrategy = "merge"
	importDryRun = false
}

// ImportResultOutput for JSON output.
type ImportResultOutput struct {
	Profile   string   `json:"profile"`
	InputFile string   `json:"input_file"`
	Format    string   `json:"format"`
	Strategy  string   `json:"merge_strategy"`
	DryRun    bool     `json:"dry_run"`
	Total     int      `json:"total"`
	Created   int      `json:"created"`
	Merged    int      `json:"merged"`
	Skipped   int      `json:"skipped"`
	Invalid   int      `json:"invalid"`
	Errors    []string `json:"errors,omitempty"`
	Duration  string   `json:"duration"`
}

func runImport(cmd *cobra.Command, args []string) error {
	if importInputPath == "" {
		return fmt.Errorf("--input is required")
	}
	strategy, err := wellspring.ParseMergeStrategy(importMergeStrategy)
	if err != nil {
		return err
	}

	format := strings.ToLower(importFormat)
	if format == "" {
		format = detectFormat(importInputPath)
	}
	if format != "json" && format != "csv" {
		return fmt.Errorf("cannot import %q: use a .json or .csv file, or --format", importInputPath)
	}

	f, err := os.Open(importInputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("input file not found: %s", importInputPath)
		}
		return fmt.Errorf("open input: %w", err)
	}
	defer func() { _ = f.Close() }()

	client, err := openClient()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	out := cmd.OutOrStdout()
	if !outputJSON {
		if importDryRun {
			printInfo(out, "Previewing import into profile '%s' from %s...", client.Profile(), importInputPath)
		} else {
			printInfo(out, "Importing into profile '%s' from %s...", client.Profile(), importInputPath)
		}
		fmt.Fprintf(out, "  Format: %s\n", strings.ToUpper(format))
		fmt.Fprintf(out, "  Strategy: %s\n", strategy)
	}

	ctx := cmd.Context()
	start := time.Now()
	var result *wellspring.ImportResult
	switch format {
	case "json":
		result, err = client.Store().ImportJSON(ctx, f, strategy, importDryRun)
	case "csv":
		result, err = client.Store().ImportCSV(ctx, f, client.Location(), strategy, importDryRun)
	}
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	duration := time.Since(start)

	if outputJSON {
		return outputAsJSON(cmd, ImportResultOutput{
			Profile:   client.Profile(),
			InputFile: importInputPath,
			Format:    format,
			Strategy:  string(strategy),
			DryRun:    importDryRun,
			Total:     result.Total,
			Created:   result.Created,
			Merged:    result.Merged,
			Skipped:   result.Skipped,
			Invalid:   result.Invalid,
			Errors:    result.Errors,
			Duration:  duration.Round(time.Millisecond).String(),
		})
	}

	would := ""
	if importDryRun {
		would = "Would "
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  Total check-ins: %d\n", result.Total)
	fmt.Fprintf(out, "  %s%s: %d\n", would, verbCase(importDryRun, "create", "Created"), result.Created)
	if strategy == wellspring.MergeStrategySkip {
		fmt.Fprintf(out, "  %s%s: %d\n", would, verbCase(importDryRun, "skip", "Skipped"), result.Skipped)
	} else {
		fmt.Fprintf(out, "  %s%s: %d\n", would, verbCase(importDryRun, "merge", "Merged"), result.Merged)
	}
	fmt.Fprintf(out, "  Invalid: %d\n", result.Invalid)

	if len(result.Errors) > 0 {
		fmt.Fprintln(out)
		printWarning(out, "Errors encountered:")
		const maxErrors = 10
		for i, e := range result.Errors {
			if i >= maxErrors {
				fmt.Fprintf(out, "  ... and %d more errors\n", len(result.Errors)-maxErrors)
				break
			}
			fmt.Fprintf(out, "  - %s\n", e)
		}
	}

	fmt.Fprintln(out)
	if importDryRun {
		printMuted(out, "Dry-run complete. No changes made.")
	} else {
		printSuccess(out, "Import complete.")
	}
	return nil
}

func verbCase(dryRun bool, future, past string) string {
	if dryRun {
		return future
	}
	return past
}
