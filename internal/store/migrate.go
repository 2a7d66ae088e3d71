package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LegacyDBPath returns where pre-profile releases kept their database:
// ./data/checkins.db relative to the working directory.
func LegacyDBPath() string {
	cwd, _ := os.Getwd()
	return filepath.Join(cwd, "data", "checkins.db")
}

// MigrationResult reports what MigrateLegacyDatabase did.
type MigrationResult struct {
	Migrated   bool
	SourcePath string
	DestPath   string
}

// MigrateLegacyDatabase copies an existing single-file database into the
// default profile under root. Nothing happens when the default profile
// already has a database or no source exists. sourcePath defaults to
// LegacyDBPath. The source is left in place.
func MigrateLegacyDatabase(sourcePath, root string) (MigrationResult, error) {
	dest := ProfileDBPathIn(root, DefaultProfile)
	if _, err := os.Stat(dest); err == nil {
		return MigrationResult{}, nil
	}

	if sourcePath == "" {
		sourcePath = LegacyDBPath()
	}
	info, err := os.Stat(sourcePath)
	if os.IsNotExist(err) {
		return MigrationResult{}, nil
	}
	if err != nil {
		return MigrationResult{}, fmt.Errorf("stat legacy database: %w", err)
	}
	if info.IsDir() {
		return MigrationResult{}, fmt.Errorf("legacy database %s is a directory", sourcePath)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return MigrationResult{}, fmt.Errorf("create default profile directory: %w", err)
	}
	if err := copyFile(sourcePath, dest); err != nil {
		return MigrationResult{}, fmt.Errorf("copy database: %w", err)
	}

	return MigrationResult{Migrated: true, SourcePath: sourcePath, DestPath: dest}, nil
}

// copyFile copies src to dst and fsyncs it. A partial dst is removed on failure.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		cerr := out.Close()
		if err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
