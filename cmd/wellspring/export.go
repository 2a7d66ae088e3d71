package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hyperengineering/wellspring"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export check-ins to a file",
	Long: `Export every check-in of the active profile.

Formats:
  json    - metadata envelope plus entries, streamed (default for .json)
  csv     - one row per check-in, tags joined with ';' (default for .csv)
  sqlite  - a standalone copy of the database (default for .db, .sqlite)

Examples:
  wellspring export -o backup.json
  wellspring export -o checkins.csv
  wellspring export -o snapshot.db --profile work`,
	RunE: runExport,
}

var (
	exportOutputPath string
	exportFormat     string
)

func init() {
	exportCmd.Flags().StringVarP(&exportOutputPath, "output", "o", "", "Output file path (required)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "Export format: json, csv, sqlite (default: from extension)")
}

// ExportResult for JSON output.
type ExportResult struct {
	Profile    string `json:"profile"`
	Format     string `json:"format"`
	EntryCount int    `json:"entry_count"`
	FilePath   string `json:"file_path"`
	FileSize   int64  `json:"file_size"`
	Duration   string `json:"duration"`
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportOutputPath == "" {
		return fmt.Errorf("--output is required")
	}
	format := strings.ToLower(exportFormat)
	if format == "" {
		format = detectFormat(exportOutputPath)
	}
	if format != "json" && format != "csv" && format != "sqlite" {
		return fmt.Errorf("invalid format %q: must be 'json', 'csv', or 'sqlite'", format)
	}

	client, err := openClient()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	ctx := cmd.Context()
	s := client.Store()
	count, err := s.EntryCount(ctx)
	if err != nil {
		return fmt.Errorf("count entries: %w", err)
	}

	out := cmd.OutOrStdout()
	if !outputJSON {
		printInfo(out, "Exporting profile '%s' to %s...", client.Profile(), exportOutputPath)
		fmt.Fprintf(out, "  Format: %s\n", strings.ToUpper(format))
	}

	start := time.Now()
	if err := ensureParentDir(exportOutputPath); err != nil {
		return err
	}
	switch format {
	case "json":
		err = exportToFile(exportOutputPath, func(f *os.File) error {
			return s.ExportJSON(ctx, client.Profile(), f)
		})
	case "csv":
		err = exportToFile(exportOutputPath, func(f *os.File) error {
			return s.ExportCSV(ctx, f)
		})
	case "sqlite":
		err = exportSQLite(ctx, s, exportOutputPath)
	}
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	duration := time.Since(start)

	var size int64
	if fi, statErr := os.Stat(exportOutputPath); statErr == nil {
		size = fi.Size()
	}

	if outputJSON {
		return outputAsJSON(cmd, ExportResult{
			Profile:    client.Profile(),
			Format:     format,
			EntryCount: count,
			FilePath:   exportOutputPath,
			FileSize:   size,
			Duration:   duration.Round(time.Millisecond).String(),
		})
	}

	var summary strings.Builder
	summary.WriteString(fmt.Sprintf("Check-ins: %d\n", count))
	summary.WriteString(fmt.Sprintf("File size: %s\n", formatBytes(size)))
	summary.WriteString(fmt.Sprintf("Duration:  %s\n", duration.Round(time.Millisecond)))
	summary.WriteString(fmt.Sprintf("Output:    %s", exportOutputPath))
	fmt.Fprintln(out, renderPanel("Export Summary", summary.String()))
	printSuccess(out, "Export complete")
	return nil
}

// detectFormat maps a file extension to an export/import format.
func detectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".csv":
		return "csv"
	case ".db", ".sqlite", ".sqlite3":
		return "sqlite"
	default:
		return ""
	}
}

// ensureParentDir creates the parent directory of path if it doesn't exist.
func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	return nil
}

// exportToFile creates path and streams into it, removing it on failure.
func exportToFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("sync file: %w", err)
	}
	return f.Close()
}

func exportSQLite(ctx context.Context, s *wellspring.Store, destPath string) error {
	if _, err := os.Stat(destPath); err == nil {
		return fmt.Errorf("%s already exists", destPath)
	}
	return s.ExportSQLite(ctx, destPath)
}
